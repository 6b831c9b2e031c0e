package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"acecast/internal/event"
)

func testRecord(name string, port int) event.Record {
	return event.Record{
		Name:        name,
		Title:       "Title of " + name,
		Port:        port,
		AccessToken: "tok",
		Tracker:     "udp://tracker.example:1337/announce",
		Source:      "http://origin/" + name,
		Host:        "10.0.0.5",
		Bitrate:     600000,
	}
}

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "events.csv"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestOpenCreatesHeaderOnlyFile(t *testing.T) {
	s := openTemp(t)

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("read store: %v", err)
	}
	got := strings.TrimSpace(string(data))
	want := strings.Join(event.Header, ",")
	if got != want {
		t.Errorf("new store content = %q, want header %q", got, want)
	}

	rows, err := s.Rows()
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("new store has %d rows, want 0", len(rows))
	}
}

func TestAppendAndLoad(t *testing.T) {
	s := openTemp(t)

	r1 := testRecord("demo", 8642)
	r2 := testRecord("other", 8643)
	if err := s.Append(r1); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append(r2); err != nil {
		t.Fatalf("Append: %v", err)
	}

	recs, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0] != r1 || recs[1] != r2 {
		t.Errorf("loaded records differ: %+v, %+v", recs[0], recs[1])
	}
}

func TestRowsSchemaMismatch(t *testing.T) {
	s := openTemp(t)

	f, err := os.OpenFile(s.Path(), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open for append: %v", err)
	}
	if _, err := f.WriteString("short,row\n"); err != nil {
		t.Fatalf("write short row: %v", err)
	}
	_ = f.Close()

	_, err = s.Rows()
	var mismatch *SchemaMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Rows error = %v, want SchemaMismatchError", err)
	}
	if mismatch.Got != 2 || mismatch.Want != len(event.Header) {
		t.Errorf("mismatch = %+v, want Got=2 Want=%d", mismatch, len(event.Header))
	}
}

func TestSetContentIDTouchesOnlyMatchingRow(t *testing.T) {
	s := openTemp(t)

	for i, name := range []string{"alpha", "beta", "gamma"} {
		rec := testRecord(name, 8642+i)
		rec.ContentID = "old-" + name
		if err := s.Append(rec); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	before, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("read store: %v", err)
	}

	if err := s.SetContentID("beta", "abc123"); err != nil {
		t.Fatalf("SetContentID: %v", err)
	}

	after, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("read store: %v", err)
	}

	beforeLines := strings.Split(strings.TrimSpace(string(before)), "\n")
	afterLines := strings.Split(strings.TrimSpace(string(after)), "\n")
	if len(beforeLines) != len(afterLines) {
		t.Fatalf("line count changed: %d -> %d", len(beforeLines), len(afterLines))
	}
	for i := range beforeLines {
		changed := beforeLines[i] != afterLines[i]
		isBeta := strings.HasPrefix(beforeLines[i], "beta,")
		if isBeta && !changed {
			t.Errorf("beta row unchanged: %q", afterLines[i])
		}
		if !isBeta && changed {
			t.Errorf("row %d changed unexpectedly: %q -> %q", i, beforeLines[i], afterLines[i])
		}
	}

	recs, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if recs[1].ContentID != "abc123" {
		t.Errorf("beta content id = %q, want abc123", recs[1].ContentID)
	}
}

func TestSetContentIDLeavesNoTempFile(t *testing.T) {
	s := openTemp(t)
	if err := s.Append(testRecord("demo", 8642)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.SetContentID("demo", "abc123"); err != nil {
		t.Fatalf("SetContentID: %v", err)
	}
	if _, err := os.Stat(s.Path() + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("temp file left behind: stat err = %v", err)
	}
}

func TestQuotedFieldsSurviveRewrite(t *testing.T) {
	s := openTemp(t)

	rec := testRecord("demo", 8642)
	rec.Title = `Final, "the" rematch`
	if err := s.Append(rec); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.SetContentID("demo", "abc123"); err != nil {
		t.Fatalf("SetContentID: %v", err)
	}

	recs, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if recs[0].Title != rec.Title {
		t.Errorf("title = %q, want %q", recs[0].Title, rec.Title)
	}
}
