package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/ascend/internal/clock"
	"github.com/sadopc/ascend/internal/export"
)

const dateLayout = "2006-01-02"

func newExportCmd(flags *globalFlags) *cobra.Command {
	var format, out, date string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export one day's timeline as CSV or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			day, err := parseDay(date, time.Now())
			if err != nil {
				return err
			}

			s, err := openSession(flags, clock.Real{})
			if err != nil {
				return err
			}
			defer s.Close()

			tl := s.tracker.Timeline(day, s.laneBuffer())
			path, err := export.Write(tl, f, ".", out)
			if err != nil {
				return err
			}
			s.logger.Info("export", "format", f, "path", path, "entries", len(tl.Entries))
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", len(tl.Entries), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatCSV), "output format: csv or json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default ascend-<date>.<format> in the current directory)")
	cmd.Flags().StringVarP(&date, "date", "d", "", "day to export as YYYY-MM-DD (default today)")
	return cmd
}

// parseDay reads a local calendar date; empty means today.
func parseDay(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	day, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return day, nil
}
