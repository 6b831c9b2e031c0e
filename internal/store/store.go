// Package store persists event records as a flat CSV file: a fixed header
// row followed by one record per row. The file is the single source of
// truth for records; updates go through an atomic rewrite of the whole
// file so a crash never leaves a half-written store.
package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"acecast/internal/event"
)

// SchemaMismatchError reports a row whose field count disagrees with the
// declared header.
type SchemaMismatchError struct {
	Want int
	Got  int
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("row has %d fields, header declares %d", e.Got, e.Want)
}

// Store is a CSV-backed record set. It is not safe for concurrent use;
// the provisioning engine is its sole writer.
type Store struct {
	path string
}

// Open returns a Store at path, creating the file with a header-only body
// (and any missing parent directories) if it does not exist.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat store file: %w", err)
		}
		s := &Store{path: path}
		if err := s.RewriteAll(nil); err != nil {
			return nil, err
		}
		return s, nil
	}
	return &Store{path: path}, nil
}

// Path returns the backing file location.
func (s *Store) Path() string { return s.path }

// Rows returns all data rows (the header excluded) in file order. A row
// whose arity disagrees with the header fails the whole read with a
// SchemaMismatchError.
func (s *Store) Rows() ([][]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open store file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // arity checked below for a typed error

	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("store file %s is missing its header", s.path)
	}
	rows := all[1:]
	for _, row := range rows {
		if len(row) != len(event.Header) {
			return nil, &SchemaMismatchError{Want: len(event.Header), Got: len(row)}
		}
	}
	return rows, nil
}

// Load returns all records. Rows with unparsable numeric fields are
// returned as-is with zero values; callers that care run event.FromRow
// on Rows() themselves.
func (s *Store) Load() ([]event.Record, error) {
	rows, err := s.Rows()
	if err != nil {
		return nil, err
	}
	recs := make([]event.Record, 0, len(rows))
	for _, row := range rows {
		rec, _ := event.FromRow(row)
		recs = append(recs, rec)
	}
	return recs, nil
}

// Append adds one record to the end of the store.
func (s *Store) Append(rec event.Record) error {
	row := rec.Row()
	if len(row) != len(event.Header) {
		return &SchemaMismatchError{Want: len(event.Header), Got: len(row)}
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open store file for append: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(row); err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	return nil
}

// RewriteAll atomically replaces the store with header + rows, writing to
// a temp file and renaming it into place.
func (s *Store) RewriteAll(rows [][]string) error {
	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("write temp store file %q: %w", tmp, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(event.Header); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write store header: %w", err)
	}
	for _, row := range rows {
		if len(row) != len(event.Header) {
			_ = f.Close()
			_ = os.Remove(tmp)
			return &SchemaMismatchError{Want: len(event.Header), Got: len(row)}
		}
		if err := w.Write(row); err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
			return fmt.Errorf("write store row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("flush store file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close temp store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace store file %q: %w", s.path, err)
	}
	return nil
}

// SetContentID rewrites the store with the named record's content_id
// column replaced. Every other field of every row is carried through
// unchanged. Unknown names are a no-op rewrite.
func (s *Store) SetContentID(name, contentID string) error {
	rows, err := s.Rows()
	if err != nil {
		return err
	}
	for _, row := range rows {
		if row[event.NameColumn] == name {
			row[event.ContentIDColumn] = contentID
		}
	}
	return s.RewriteAll(rows)
}
