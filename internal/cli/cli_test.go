package cli

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/ascend/internal/clock"
	"github.com/sadopc/ascend/internal/store"
	"github.com/sadopc/ascend/internal/tracker"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("HOME", dir)
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("ASCEND_AI_API_KEY", "")
	t.Setenv("ASCEND_DB_PATH", "")
	t.Setenv("ASCEND_LOG_FILE", "")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd("1.2.3")
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// seed writes a document with one task and one activity today.
func seed(t *testing.T, dbPath string) {
	t.Helper()
	s, err := store.New(dbPath)
	require.NoError(t, err)
	defer s.Close()

	dayStart, _ := tracker.DayBounds(time.Now())
	start := dayStart.Add(time.Minute)
	doc := tracker.Document{
		Tasks: []tracker.Task{{
			ID:             "t1",
			Title:          "Write report",
			Percentage:     50,
			Subtasks:       []tracker.Subtask{{ID: "s1", Title: "Outline", IsCompleted: true}, {ID: "s2", Title: "Draft"}},
			CreatedAt:      start,
			TotalTimeSpent: 5400,
		}},
		Activities: []tracker.ActivitySession{{
			ID:        "a1",
			Type:      tracker.ActivityFood,
			StartTime: start,
			EndTime:   start.Add(30 * time.Minute),
			Duration:  1800,
		}},
	}
	require.NoError(t, s.Save(doc))
}

func TestVersion(t *testing.T) {
	isolate(t)
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "ascend 1.2.3\n", out)
}

func TestStats(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "ascend.db")
	seed(t, db)

	out, err := run(t, "--db", db, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Ascent      50%")
	assert.Contains(t, out, "Tasks       0/1 completed")
	assert.Contains(t, out, "Subtasks    1/2 completed (50%)")
	assert.Contains(t, out, "Focus time  1h 30m")
	assert.Contains(t, out, "Food")
	assert.Contains(t, out, "0h 30m")
}

func TestStatsEmptyDatabase(t *testing.T) {
	dir := isolate(t)
	out, err := run(t, "--db", filepath.Join(dir, "fresh.db"), "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Tasks       0/0 completed")
	assert.Contains(t, out, "nothing recorded")
}

func TestStatsUsesDefaultPaths(t *testing.T) {
	dir := isolate(t)
	_, err := run(t, "stats")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "config", "ascend", "ascend.db"))
	assert.FileExists(t, filepath.Join(dir, "config", "ascend", "ascend.log"))
}

func TestExportJSON(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "ascend.db")
	seed(t, db)
	outPath := filepath.Join(dir, "day.json")

	out, err := run(t, "--db", db, "export", "--format", "json", "--out", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 entries to "+outPath)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Contains(t, string(data), "Food")
}

func TestExportCSVForDate(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "ascend.db")
	seed(t, db)
	outPath := filepath.Join(dir, "old.csv")

	out, err := run(t, "--db", db, "export", "--date", "2001-02-03", "--out", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 0 entries")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 1, "only the header for an empty day")
}

func TestExportRejectsBadInput(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "ascend.db")

	_, err := run(t, "--db", db, "export", "--format", "xml")
	assert.Error(t, err)

	_, err = run(t, "--db", db, "export", "--date", "03/02/2001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM-DD")
}

func TestParseDay(t *testing.T) {
	now := time.Date(2026, 5, 1, 15, 0, 0, 0, time.Local)
	got, err := parseDay("", now)
	require.NoError(t, err)
	assert.Equal(t, now, got)

	got, err = parseDay("2026-04-30", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 30, 0, 0, 0, 0, time.Local), got)
}

func TestConfigInitShowPath(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(dir, "ascend.yaml")

	out, err := run(t, "--config", cfgPath, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, cfgPath)
	assert.FileExists(t, cfgPath)

	_, err = run(t, "--config", cfgPath, "config", "init")
	require.Error(t, err, "init must not overwrite without --force")

	_, err = run(t, "--config", cfgPath, "config", "init", "--force")
	require.NoError(t, err)

	out, err = run(t, "--config", cfgPath, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "buffer_seconds: 120")
	assert.Contains(t, out, "alert_threshold_seconds: 600")
	assert.Contains(t, out, "default_minutes: 25")

	out, err = run(t, "--config", cfgPath, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, cfgPath+"\n", out)
}

func TestConfigShowMasksAPIKey(t *testing.T) {
	isolate(t)
	t.Setenv("GEMINI_API_KEY", "secret-key")

	out, err := run(t, "config", "show")
	require.NoError(t, err)
	assert.NotContains(t, out, "secret-key")
	assert.Contains(t, out, "(set)")
}

func TestConfigShowMissingExplicitFile(t *testing.T) {
	dir := isolate(t)
	_, err := run(t, "--config", filepath.Join(dir, "nope.yaml"), "config", "show")
	assert.Error(t, err)
}

func TestCorruptDocumentStartsEmpty(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "ascend.db")
	s, err := store.New(db)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	raw, err := sql.Open("sqlite", db)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO documents (key, body) VALUES ('state', '{not json')`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	out, err := run(t, "--db", db, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Tasks       0/0 completed")
}

// seedAdjacent adds a nap two minutes after seed's meal ends, so the lane
// buffer decides whether both share a lane.
func seedAdjacent(t *testing.T, dbPath string) {
	t.Helper()
	seed(t, dbPath)
	s, err := store.New(dbPath)
	require.NoError(t, err)
	defer s.Close()

	doc, err := s.LoadDocument()
	require.NoError(t, err)
	start := doc.Activities[0].EndTime.Add(2 * time.Minute)
	doc.Activities = append(doc.Activities, tracker.ActivitySession{
		ID:        "a2",
		Type:      tracker.ActivityNap,
		StartTime: start,
		EndTime:   start.Add(10 * time.Minute),
		Duration:  600,
	})
	require.NoError(t, s.Save(doc))
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "ascend.yaml")
	content := `
timeline:
  lane_buffer_seconds: 300
focus:
  default_minutes: 40
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func csvLanes(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	var lanes []string
	for _, row := range rows[1:] {
		lanes = append(lanes, row[len(row)-1])
	}
	return lanes
}

func TestStatsFollowsConfigPreferences(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "ascend.db")
	seedAdjacent(t, db)

	out, err := run(t, "--db", db, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Focus block 25 min")
	assert.Contains(t, out, "1 lane(s), buffer 1m0s")

	cfgPath := writeConfig(t, dir)
	out, err = run(t, "--config", cfgPath, "--db", db, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Focus block 40 min")
	assert.Contains(t, out, "2 lane(s), buffer 5m0s")
}

func TestSavedPreferencesBeatConfig(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "ascend.db")
	seedAdjacent(t, db)
	cfgPath := writeConfig(t, dir)

	s, err := store.New(db)
	require.NoError(t, err)
	require.NoError(t, s.SetFocusLength(30*time.Minute))
	require.NoError(t, s.SetLaneBuffer(0))
	require.NoError(t, s.Close())

	out, err := run(t, "--config", cfgPath, "--db", db, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Focus block 30 min")
	assert.Contains(t, out, "1 lane(s), buffer 0s")
}

func TestExportLanesFollowConfig(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "ascend.db")
	seedAdjacent(t, db)

	plain := filepath.Join(dir, "plain.csv")
	_, err := run(t, "--db", db, "export", "--out", plain)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "0"}, csvLanes(t, plain))

	wide := filepath.Join(dir, "wide.csv")
	_, err = run(t, "--config", writeConfig(t, dir), "--db", db, "export", "--out", wide)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1"}, csvLanes(t, wide))
}

func TestAppOptionsCarryConfigDefaults(t *testing.T) {
	dir := isolate(t)
	flags := &globalFlags{configPath: writeConfig(t, dir), dbPath: filepath.Join(dir, "ascend.db")}
	s, err := openSession(flags, clock.Real{})
	require.NoError(t, err)
	defer s.Close()

	o := appOptions(context.Background(), s, flags)
	assert.Equal(t, 40*time.Minute, o.FocusLength)
	assert.Equal(t, 300*time.Second, o.LaneBuffer)
	assert.Equal(t, flags.configPath, o.Info[0].Value)
	assert.Equal(t, flags.dbPath, o.Info[1].Value)
}
