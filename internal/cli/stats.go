package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/ascend/internal/clock"
	"github.com/sadopc/ascend/internal/tracker"
)

func newStatsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print pipeline progress and today's time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(flags, clock.Real{})
			if err != nil {
				return err
			}
			defer s.Close()

			now := time.Now()
			buffer := s.laneBuffer()
			tl := s.tracker.Timeline(now, buffer)
			printStats(cmd.OutOrStdout(), s.tracker.Stats(), tl, s.focusLength(), buffer)
			return nil
		},
	}
}

func printStats(out io.Writer, st tracker.Stats, tl tracker.Timeline, focus, buffer time.Duration) {
	fmt.Fprintf(out, "Ascent      %d%%\n", int(st.OverallScore+0.5))
	fmt.Fprintf(out, "Tasks       %d/%d completed\n", st.CompletedTasks, st.TotalTasks)
	fmt.Fprintf(out, "Subtasks    %d/%d completed (%d%%)\n", st.CompletedSubtasks, st.TotalSubtasks, int(st.SubtaskIntegrity*100+0.5))
	fmt.Fprintf(out, "Focus time  %s\n", formatSeconds(st.TotalTimeSpent))
	fmt.Fprintf(out, "Focus block %d min\n", int(focus/time.Minute))

	fmt.Fprintf(out, "\n%s\n", tl.DayStart.Format("Mon Jan 02, 2006"))
	if len(tl.Totals) == 0 {
		fmt.Fprintln(out, "  nothing recorded")
		return
	}
	fmt.Fprintf(out, "  %d lane(s), buffer %s\n", tl.Lanes, buffer)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, t := range tl.Totals {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%dx\n", t.Label, t.Kind, formatSeconds(t.Duration), t.Count)
	}
	w.Flush()
}

func formatSeconds(secs int64) string {
	d := time.Duration(secs) * time.Second
	return fmt.Sprintf("%dh %02dm", int(d.Hours()), int(d.Minutes())%60)
}
