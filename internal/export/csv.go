package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/ascend/internal/tracker"
)

var csvHeader = []string{"Kind", "Label", "Detail", "Start", "End", "Duration (s)", "Duration", "Lane"}

// ToCSV writes one row per timeline entry to path.
func ToCSV(tl tracker.Timeline, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()
	return WriteCSV(f, tl)
}

func WriteCSV(out io.Writer, tl tracker.Timeline) error {
	w := csv.NewWriter(out)

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, e := range tl.Entries {
		row := []string{
			e.Kind.String(),
			e.Label,
			e.Detail,
			e.Start.Local().Format(time.RFC3339),
			e.End.Local().Format(time.RFC3339),
			strconv.FormatInt(e.Duration, 10),
			formatDuration(e.Duration),
			strconv.Itoa(e.Lane),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
