// Package journal persists accepted updates to SQLite for diagnostics and
// later inspection. It sits beside the listener's consumer, never between
// the webhook and the consumer.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Veetaha/teloxide/internal/config"
	"github.com/Veetaha/teloxide/updates"
)

// Journal is an append-only record of accepted updates.
type Journal struct {
	db *sql.DB
}

// Entry is one journaled update.
type Entry struct {
	ID         string
	UpdateID   int64
	Kind       string
	Body       json.RawMessage
	BodyHash   string
	ReceivedAt time.Time
}

// Open opens (and creates if needed) the journal database at path and
// ensures the schema exists.
func Open(ctx context.Context, path string) (*Journal, error) {
	if path == "" {
		return nil, fmt.Errorf("journal path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(pctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}

	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS update_journal (
  id          TEXT PRIMARY KEY,
  update_id   INTEGER NOT NULL,
  kind        TEXT NOT NULL,
  body        JSON NOT NULL,
  body_hash   TEXT NOT NULL,
  received_at TEXT NOT NULL
);`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap journal: %w", err)
	}
	if _, err := db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_update_journal_update_id ON update_journal(update_id);`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap journal index: %w", err)
	}

	return &Journal{db: db}, nil
}

// Record appends one accepted update.
func (j *Journal) Record(ctx context.Context, upd updates.Update) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := j.db.ExecContext(ctx, `
INSERT INTO update_journal(id, update_id, kind, body, body_hash, received_at)
VALUES(?, ?, ?, ?, ?, ?);
`, uuid.NewString(), upd.ID, upd.Kind, string(upd.Raw), config.BodyFingerprint(upd.Raw), now)
	if err != nil {
		return fmt.Errorf("journal update %d: %w", upd.ID, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx, `
SELECT id, update_id, kind, body, body_hash, received_at
FROM update_journal
ORDER BY received_at DESC, rowid DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e         Entry
			body      string
			receivedS string
		)
		if err := rows.Scan(&e.ID, &e.UpdateID, &e.Kind, &body, &e.BodyHash, &receivedS); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		e.Body = json.RawMessage(body)
		if t, err := time.Parse(time.RFC3339Nano, receivedS); err == nil {
			e.ReceivedAt = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
