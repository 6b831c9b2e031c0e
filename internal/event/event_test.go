package event

import (
	"reflect"
	"strings"
	"testing"
)

func validRecord() Record {
	return Record{
		Name:        "demo",
		Title:       "Demo Channel",
		Port:        8642,
		AccessToken: "12345",
		Tracker:     DefaultTracker,
		Source:      "http://origin/stream",
		Host:        "10.0.0.5",
		Bitrate:     600000,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Record)
		want   []string // substrings expected in the violation list, in order
	}{
		{
			name:   "valid record has no violations",
			mutate: func(r *Record) {},
		},
		{
			name:   "port 8642 accepted",
			mutate: func(r *Record) { r.Port = 8642 },
		},
		{
			name:   "port 80 rejected",
			mutate: func(r *Record) { r.Port = 80 },
			want:   []string{"port"},
		},
		{
			name:   "port above range rejected",
			mutate: func(r *Record) { r.Port = 70000 },
			want:   []string{"port"},
		},
		{
			name:   "empty name rejected",
			mutate: func(r *Record) { r.Name = "" },
			want:   []string{"name"},
		},
		{
			name:   "name with spaces rejected",
			mutate: func(r *Record) { r.Name = "my event" },
			want:   []string{"name"},
		},
		{
			name:   "name with dots rejected",
			mutate: func(r *Record) { r.Name = "my.event" },
			want:   []string{"name"},
		},
		{
			name:   "hyphens and underscores allowed in name",
			mutate: func(r *Record) { r.Name = "my-event_2" },
		},
		{
			name:   "ipv6 host accepted",
			mutate: func(r *Record) { r.Host = "2001:db8::1" },
		},
		{
			name:   "domain host accepted",
			mutate: func(r *Record) { r.Host = "stream.example.com" },
		},
		{
			name:   "host with illegal characters rejected",
			mutate: func(r *Record) { r.Host = "bad_host!" },
			want:   []string{"host"},
		},
		{
			name:   "empty host rejected",
			mutate: func(r *Record) { r.Host = "" },
			want:   []string{"host"},
		},
		{
			name:   "negative bitrate rejected",
			mutate: func(r *Record) { r.Bitrate = -1 },
			want:   []string{"bitrate"},
		},
		{
			name:   "bitrate above cap rejected",
			mutate: func(r *Record) { r.Bitrate = 10_000_001 },
			want:   []string{"bitrate"},
		},
		{
			name:   "zero bitrate accepted",
			mutate: func(r *Record) { r.Bitrate = 0 },
		},
		{
			name:   "blank title rejected",
			mutate: func(r *Record) { r.Title = "   " },
			want:   []string{"title"},
		},
		{
			name:   "blank source rejected",
			mutate: func(r *Record) { r.Source = " " },
			want:   []string{"source"},
		},
		{
			name: "all checks evaluated, not short-circuited",
			mutate: func(r *Record) {
				r.Name = ""
				r.Port = 80
				r.Host = ""
				r.Bitrate = -1
				r.Title = ""
				r.Source = ""
			},
			want: []string{"name", "port", "host", "bitrate", "title", "source"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validRecord()
			tt.mutate(&rec)

			got := rec.Validate()
			if len(got) != len(tt.want) {
				t.Fatalf("got %d violations %v, want %d", len(got), got, len(tt.want))
			}
			for i, substr := range tt.want {
				if !strings.Contains(got[i], substr) {
					t.Errorf("violation %d = %q, want mention of %q", i, got[i], substr)
				}
			}
		})
	}
}

func TestValidateIdempotent(t *testing.T) {
	rec := validRecord()
	rec.Port = 80
	rec.Title = ""

	first := rec.Validate()
	second := rec.Validate()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated Validate calls differ: %v vs %v", first, second)
	}
}

func TestFromRow(t *testing.T) {
	row := validRecord().Row()
	rec, violations := FromRow(row)
	if len(violations) != 0 {
		t.Fatalf("unexpected violations: %v", violations)
	}
	if rec != validRecord() {
		t.Errorf("round trip mismatch: got %+v", rec)
	}
}

func TestFromRowNumericConformance(t *testing.T) {
	row := validRecord().Row()
	row[2] = "eighty"
	row[7] = "6e5"

	_, violations := FromRow(row)
	if len(violations) != 2 {
		t.Fatalf("got violations %v, want 2", violations)
	}
	if !strings.Contains(violations[0], "port") {
		t.Errorf("first violation %q should mention port", violations[0])
	}
	if !strings.Contains(violations[1], "bitrate") {
		t.Errorf("second violation %q should mention bitrate", violations[1])
	}
}

func TestFromRowArity(t *testing.T) {
	_, violations := FromRow([]string{"just", "three", "fields"})
	if len(violations) != 1 {
		t.Fatalf("got violations %v, want exactly 1", violations)
	}
}
