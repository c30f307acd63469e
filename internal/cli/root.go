package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/ascend/internal/clock"
	"github.com/sadopc/ascend/internal/config"
	"github.com/sadopc/ascend/internal/logging"
	"github.com/sadopc/ascend/internal/store"
	"github.com/sadopc/ascend/internal/suggest"
	"github.com/sadopc/ascend/internal/tracker"
	"github.com/sadopc/ascend/internal/tui"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	dbPath     string
}

func newRootCmd(version string) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "ascend",
		Short: "ascend - tasks, focus sessions and drift in your terminal",
		Long: `ascend tracks a pipeline of tasks and subtasks, times focus sessions
against them, logs wellness breaks and notices when you drift away.

Run without a subcommand to open the terminal UI.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd.Context(), flags)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default ~/.config/ascend/config.yaml)")
	root.PersistentFlags().StringVar(&flags.dbPath, "db", "", "database path (overrides db_path)")

	root.AddCommand(newStatsCmd(flags))
	root.AddCommand(newExportCmd(flags))
	root.AddCommand(newConfigCmd(flags))
	root.AddCommand(newVersionCmd(version))
	return root
}

// Execute runs the root command
func Execute(version string) error {
	if err := newRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// session is everything a command needs once config is resolved.
type session struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *store.Store
	tracker *tracker.Tracker
	closers []io.Closer
}

func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i].Close()
	}
}

func openSession(flags *globalFlags, c clock.Clock) (*session, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.dbPath != "" {
		cfg.DBPath = flags.dbPath
	}

	logger, logCloser, err := logging.OpenFile(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, logger: logger, closers: []io.Closer{logCloser}}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	s.store = st
	s.closers = append(s.closers, st)

	doc, err := st.LoadDocument()
	if err != nil {
		if !errors.Is(err, store.ErrCorruptDocument) {
			s.Close()
			return nil, err
		}
		logger.Warn("starting with an empty document", "err", err)
	}

	s.tracker = tracker.New(doc,
		tracker.WithClock(c),
		tracker.WithLogger(logger),
		tracker.WithDriftConfig(cfg.DriftSettings()),
		tracker.WithPersister(st),
	)
	logger.Debug("session opened", "db", cfg.DBPath, "tasks", len(doc.Tasks), "activities", len(doc.Activities))
	return s, nil
}

// focusLength and laneBuffer prefer values saved from the Settings view and
// otherwise follow the config file.
func (s *session) focusLength() time.Duration {
	return tracker.ClampFocusDuration(s.store.FocusLength(s.cfg.FocusLength()))
}

func (s *session) laneBuffer() time.Duration {
	return s.store.LaneBuffer(s.cfg.LaneBuffer())
}

func newSuggester(ctx context.Context, cfg *config.Config, logger *slog.Logger) suggest.Suggester {
	if !cfg.AIEnabled() {
		return suggest.Noop{}
	}
	g, err := suggest.NewGemini(ctx, cfg.AI.APIKey, cfg.AI.Model, cfg.AITimeout(), logger)
	if err != nil {
		logger.Warn("ai suggestions disabled", "err", err)
		return suggest.Noop{}
	}
	return g
}

func runUI(ctx context.Context, flags *globalFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openSession(flags, clock.Real{})
	if err != nil {
		return err
	}
	defer s.Close()

	app := tui.NewApp(appOptions(ctx, s, flags))

	s.logger.Info("ui started")
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	s.logger.Info("ui stopped")
	return nil
}

func appOptions(ctx context.Context, s *session, flags *globalFlags) tui.Options {
	exportDir, err := os.Getwd()
	if err != nil {
		exportDir = "."
	}

	cfgPath := flags.configPath
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}
	ai := "off (set GEMINI_API_KEY)"
	if s.cfg.AIEnabled() {
		ai = s.cfg.AI.Model
	}
	drift := s.cfg.DriftSettings()

	return tui.Options{
		Tracker:     s.tracker,
		Store:       s.store,
		Suggester:   newSuggester(ctx, s.cfg, s.logger),
		Clock:       clock.Real{},
		Logger:      s.logger,
		ExportDir:   exportDir,
		FocusLength: s.cfg.FocusLength(),
		LaneBuffer:  s.cfg.LaneBuffer(),
		Info: []tui.InfoLine{
			{Label: "Config file", Value: cfgPath},
			{Label: "Database", Value: s.cfg.DBPath},
			{Label: "Log file", Value: s.cfg.LogFile},
			{Label: "AI subtasks", Value: ai},
			{Label: "Drift alert after", Value: drift.Buffer.String() + " + " + drift.AlertThreshold.String()},
		},
	}
}
