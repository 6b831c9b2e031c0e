// Package journal keeps a SQLite log of provisioning outcomes. The CSV
// store only holds the latest content id per record; the journal is the
// audit trail of every cycle, resolved or not.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"acecast/internal/provision"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS provision_log (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	outcome    TEXT NOT NULL,
	content_id TEXT NOT NULL DEFAULT '',
	detail     TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
)`

// Entry is one journaled provisioning outcome.
type Entry struct {
	Name      string
	Outcome   string
	ContentID string
	Detail    string
	CreatedAt string
}

// Journal implements provision.Journal backed by SQLite.
type Journal struct {
	db *sql.DB
}

var _ provision.Journal = (*Journal)(nil)

// Open opens (creating if needed) the journal database at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create journal table: %w", err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record inserts one provisioning result.
func (j *Journal) Record(res provision.Result) error {
	detail := ""
	switch {
	case len(res.Violations) > 0:
		detail = res.Violations[0]
	case res.Err != nil:
		detail = res.Err.Error()
	}
	_, err := j.db.Exec(
		`INSERT INTO provision_log (name, outcome, content_id, detail, created_at) VALUES (?, ?, ?, ?, ?)`,
		res.Name, res.Outcome(), res.ContentID, detail,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	rows, err := j.db.Query(
		`SELECT name, outcome, content_id, detail, created_at
		 FROM provision_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.Outcome, &e.ContentID, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return entries, nil
}
