package provision

import "fmt"

// IndexError reports a batch request naming a record that does not exist.
// It aborts the whole batch before any container operation runs.
// Index is zero-based; the message shows the user-facing 1-based value.
type IndexError struct {
	Index int
	Count int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("record %d out of range (store has %d records)", e.Index+1, e.Count)
}

// Result is the outcome of one record's provisioning cycle. Exactly one
// of the failure fields is populated on failure: Violations when the
// record never reached the runtime, Err for a cycle that started and
// failed or polled out.
type Result struct {
	Name       string
	ContentID  string
	Violations []string
	Err        error
}

// Failed reports whether the cycle ended without a committed content id.
func (r Result) Failed() bool {
	return r.Err != nil || len(r.Violations) > 0
}

// Outcome is a single-word classification used by the journal and the
// CLI summary.
func (r Result) Outcome() string {
	switch {
	case len(r.Violations) > 0:
		return "invalid"
	case r.Err != nil:
		return "failed"
	case r.ContentID == "":
		return "unresolved"
	default:
		return "resolved"
	}
}

// BatchReport aggregates the per-record results of one engine run, in
// request order.
type BatchReport struct {
	Results []Result
}

// Failed counts records that did not commit a content id.
func (b BatchReport) Failed() int {
	n := 0
	for _, r := range b.Results {
		if r.Failed() {
			n++
		}
	}
	return n
}
