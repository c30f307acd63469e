package store

import (
	"fmt"
	"strconv"
	"time"
)

// Preference rows exist only once the user saves them; until then callers
// fall back to the configured defaults.
const (
	SettingFocusMinutes      = "focus_minutes"
	SettingLaneBufferSeconds = "lane_buffer_seconds"
)

type Setting struct {
	Key   string
	Value string
}

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// intSetting returns the stored integer or def when the row is missing or
// unparseable.
func (s *Store) intSetting(key string, def int) int {
	raw, err := s.GetSetting(key)
	if err != nil {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// FocusLength is the countdown length the focus view starts with.
func (s *Store) FocusLength(def time.Duration) time.Duration {
	return time.Duration(s.intSetting(SettingFocusMinutes, int(def/time.Minute))) * time.Minute
}

func (s *Store) SetFocusLength(d time.Duration) error {
	return s.SetSetting(SettingFocusMinutes, strconv.Itoa(int(d/time.Minute)))
}

// LaneBuffer is the minimum gap between two timeline entries sharing a lane.
func (s *Store) LaneBuffer(def time.Duration) time.Duration {
	n := s.intSetting(SettingLaneBufferSeconds, int(def/time.Second))
	if n < 0 {
		n = 0
	}
	return time.Duration(n) * time.Second
}

func (s *Store) SetLaneBuffer(d time.Duration) error {
	if d < 0 {
		d = 0
	}
	return s.SetSetting(SettingLaneBufferSeconds, strconv.Itoa(int(d/time.Second)))
}

// Overrides reports which preference keys have a saved row.
func (s *Store) Overrides() (map[string]bool, error) {
	all, err := s.GetAllSettings()
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(all))
	for _, st := range all {
		out[st.Key] = true
	}
	return out, nil
}
