package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sadopc/ascend/internal/tracker"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

var Formats = []Format{FormatCSV, FormatJSON}

// ParseFormat accepts "csv" or "json" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv or json)", s)
}

// DefaultFilename is ascend-YYYY-MM-DD.<ext> for the timeline's day.
func DefaultFilename(tl tracker.Timeline, f Format) string {
	return fmt.Sprintf("ascend-%s.%s", tl.DayStart.Format("2006-01-02"), f)
}

// Write dispatches to the writer for f. An empty path writes DefaultFilename
// into dir. It returns the path written.
func Write(tl tracker.Timeline, f Format, dir, path string) (string, error) {
	if path == "" {
		path = filepath.Join(dir, DefaultFilename(tl, f))
	}
	var err error
	switch f {
	case FormatCSV:
		err = ToCSV(tl, path)
	case FormatJSON:
		err = ToJSON(tl, path)
	default:
		err = fmt.Errorf("unknown export format %q", f)
	}
	if err != nil {
		return "", err
	}
	return path, nil
}
