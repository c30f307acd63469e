package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/ascend/internal/tracker"
)

const documentKey = "state"

// ErrCorruptDocument means the persisted blob could not be decoded. The
// accompanying document is empty and safe to use.
var ErrCorruptDocument = errors.New("corrupt persisted document")

// LoadDocument reads the persisted state. A missing row yields an empty
// document and no error.
func (s *Store) LoadDocument() (tracker.Document, error) {
	var body string
	err := s.db.QueryRow(`SELECT body FROM documents WHERE key = ?`, documentKey).Scan(&body)
	if err == sql.ErrNoRows {
		return tracker.Document{}, nil
	}
	if err != nil {
		return tracker.Document{}, fmt.Errorf("load document: %w", err)
	}

	var doc tracker.Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return tracker.Document{}, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}
	for i := range doc.Tasks {
		if doc.Tasks[i].Subtasks == nil {
			doc.Tasks[i].Subtasks = []tracker.Subtask{}
		}
	}
	return doc, nil
}

// Save writes the whole document, replacing the previous one.
func (s *Store) Save(doc tracker.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.Exec(
		`INSERT INTO documents (key, body, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		documentKey, string(body), now,
	)
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// DocumentUpdatedAt reports when the document was last written.
func (s *Store) DocumentUpdatedAt() (time.Time, error) {
	var updated string
	err := s.db.QueryRow(`SELECT updated_at FROM documents WHERE key = ?`, documentKey).Scan(&updated)
	if err != nil {
		return time.Time{}, fmt.Errorf("document updated_at: %w", err)
	}
	t, err := time.Parse(time.RFC3339, updated)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse updated_at %q: %w", updated, err)
	}
	return t, nil
}
