package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sadopc/ascend/internal/tracker"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Day        string      `json:"day"`
	Lanes      int         `json:"lanes"`
	Count      int         `json:"count"`
	Entries    []jsonEntry `json:"entries"`
	Totals     []jsonTotal `json:"totals"`
}

type jsonEntry struct {
	Kind        string `json:"kind"`
	Label       string `json:"label"`
	Detail      string `json:"detail,omitempty"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	DurationSec int64  `json:"duration_seconds"`
	Duration    string `json:"duration"`
	Lane        int    `json:"lane"`
}

type jsonTotal struct {
	Label       string `json:"label"`
	Kind        string `json:"kind"`
	DurationSec int64  `json:"duration_seconds"`
	Duration    string `json:"duration"`
	Count       int    `json:"count"`
}

// ToJSON writes the timeline entries and per-label totals to path.
func ToJSON(tl tracker.Timeline, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create json file: %w", err)
	}
	defer f.Close()
	return WriteJSON(f, tl)
}

func WriteJSON(w io.Writer, tl tracker.Timeline) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Day:        tl.DayStart.Format("2006-01-02"),
		Lanes:      tl.Lanes,
		Count:      len(tl.Entries),
		Entries:    []jsonEntry{},
		Totals:     []jsonTotal{},
	}

	for _, e := range tl.Entries {
		export.Entries = append(export.Entries, jsonEntry{
			Kind:        e.Kind.String(),
			Label:       e.Label,
			Detail:      e.Detail,
			StartTime:   e.Start.Local().Format(time.RFC3339),
			EndTime:     e.End.Local().Format(time.RFC3339),
			DurationSec: e.Duration,
			Duration:    formatDuration(e.Duration),
			Lane:        e.Lane,
		})
	}
	for _, t := range tl.Totals {
		export.Totals = append(export.Totals, jsonTotal{
			Label:       t.Label,
			Kind:        t.Kind.String(),
			DurationSec: t.Duration,
			Duration:    formatDuration(t.Duration),
			Count:       t.Count,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
