// Package provision drives the per-record container lifecycle: evict any
// stale container, sanitize the data volume, launch a fresh instance,
// poll it for a content id and commit the id back to the record store.
// Records are processed strictly one at a time; a record's failure is
// reported and the batch moves on.
package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"acecast/internal/check"
	"acecast/internal/event"
	"acecast/internal/launch"
	"acecast/internal/monitor"
)

const (
	// settleDelay gives the daemon time to register the new container
	// before the id lookup.
	settleDelay = 10 * time.Second
	// runtimeOpTimeout bounds each individual runtime call. The original
	// tooling had no bound here; 60s is deliberately generous since a
	// cold stop can take a while.
	runtimeOpTimeout = 60 * time.Second
)

// Engine reconciles event records against the container runtime.
type Engine struct {
	Store    Store
	Runtime  Runtime
	Poller   Poller
	Sanitize Sanitizer
	Journal  Journal       // optional
	Image    string        // defaults to launch.DefaultImage
	Settle   time.Duration // defaults to settleDelay
	Delay    monitor.Delay // injected for tests; defaults to monitor.Sleep
}

// Run provisions the records at the given zero-based indices, in order.
// An out-of-range index aborts the whole batch with an IndexError before
// any container operation; every other failure is scoped to its record
// and collected into the report.
func (e *Engine) Run(ctx context.Context, indices []int) (BatchReport, error) {
	check.Assert(e.Store != nil, "Engine.Run: Store must not be nil")
	check.Assert(e.Runtime != nil, "Engine.Run: Runtime must not be nil")
	check.Assert(e.Poller != nil, "Engine.Run: Poller must not be nil")

	rows, err := e.Store.Rows()
	if err != nil {
		return BatchReport{}, fmt.Errorf("load records: %w", err)
	}
	for _, idx := range indices {
		if idx < 0 || idx >= len(rows) {
			return BatchReport{}, &IndexError{Index: idx, Count: len(rows)}
		}
	}

	var report BatchReport
	for _, idx := range indices {
		res := e.provisionOne(ctx, rows[idx])
		if res.Err != nil {
			slog.Error("provisioning failed", "record", res.Name, "err", res.Err)
		}
		e.journal(res)
		report.Results = append(report.Results, res)
	}
	return report, nil
}

// provisionOne runs the full cycle for one record. Steps run in a fixed
// order; eviction failures are fatal to the record, sanitizer failures
// are not (leftover temp files are tolerable, a duplicate container is
// not).
func (e *Engine) provisionOne(ctx context.Context, row []string) Result {
	rec, violations := event.FromRow(row)
	violations = append(violations, rec.Validate()...)
	res := Result{Name: rec.Name}
	if len(violations) > 0 {
		res.Violations = violations
		return res
	}

	slog.Info("Provisioning event.", "record", rec.Name, "port", rec.Port)

	if err := e.evict(ctx, rec.Name); err != nil {
		res.Err = fmt.Errorf("evict stale container: %w", err)
		return res
	}

	if n, err := e.sanitize(launch.VolumeName(rec.Name)); err != nil {
		slog.Warn("volume sanitize failed", "record", rec.Name, "err", err)
	} else if n > 0 {
		slog.Info("Removed residual volume files.", "record", rec.Name, "count", n)
	}

	spec := launch.Build(rec, e.Image)
	id, err := e.withOpTimeout(ctx, func(opCtx context.Context) (string, error) {
		return e.Runtime.Run(opCtx, spec)
	})
	if err != nil {
		res.Err = fmt.Errorf("launch: %w", err)
		return res
	}
	slog.Info("Container launched.", "record", rec.Name, "id", shortID(id))

	if err := e.delay(ctx, e.settle()); err != nil {
		res.Err = err
		return res
	}

	// Re-resolve by name: the id the daemon reports after settling is the
	// one the instance actually runs under.
	id, err = e.resolve(ctx, rec.Name)
	if err != nil {
		res.Err = err
		return res
	}

	report, err := e.Poller.Poll(ctx, rec.Port)
	if err != nil {
		var exhausted *monitor.ExhaustedError
		if errors.As(err, &exhausted) {
			res.Err = fmt.Errorf("content id for %s (container %s): %w", rec.Name, shortID(id), err)
			return res
		}
		res.Err = err
		return res
	}

	if err := e.Store.SetContentID(rec.Name, report.ContentID); err != nil {
		res.Err = fmt.Errorf("commit content id: %w", err)
		return res
	}
	res.ContentID = report.ContentID
	slog.Info("Content id committed.", "record", rec.Name, "content_id", report.ContentID)
	return res
}

// evict stops and removes any existing container with the record's name.
// A clean slate is a precondition for the launch, so failures propagate.
func (e *Engine) evict(ctx context.Context, name string) error {
	id, found, err := e.find(ctx, name)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	slog.Info("Removing stale container.", "record", name, "id", shortID(id))

	if _, err := e.withOpTimeout(ctx, func(opCtx context.Context) (string, error) {
		return "", e.Runtime.Stop(opCtx, id)
	}); err != nil {
		return err
	}
	if _, err := e.withOpTimeout(ctx, func(opCtx context.Context) (string, error) {
		return "", e.Runtime.Remove(opCtx, id)
	}); err != nil {
		return err
	}
	return nil
}

func (e *Engine) resolve(ctx context.Context, name string) (string, error) {
	id, found, err := e.find(ctx, name)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("container %s vanished after launch", name)
	}
	return id, nil
}

func (e *Engine) find(ctx context.Context, name string) (string, bool, error) {
	opCtx, cancel := context.WithTimeout(ctx, runtimeOpTimeout)
	defer cancel()
	return e.Runtime.FindByName(opCtx, name)
}

func (e *Engine) withOpTimeout(ctx context.Context, op func(context.Context) (string, error)) (string, error) {
	opCtx, cancel := context.WithTimeout(ctx, runtimeOpTimeout)
	defer cancel()
	return op(opCtx)
}

func (e *Engine) sanitize(volumeName string) (int, error) {
	if e.Sanitize == nil {
		return 0, nil
	}
	return e.Sanitize(volumeName)
}

func (e *Engine) journal(res Result) {
	if e.Journal == nil {
		return
	}
	if err := e.Journal.Record(res); err != nil {
		slog.Warn("journal write failed", "record", res.Name, "err", err)
	}
}

func (e *Engine) settle() time.Duration {
	if e.Settle > 0 {
		return e.Settle
	}
	return settleDelay
}

func (e *Engine) delay(ctx context.Context, d time.Duration) error {
	if e.Delay != nil {
		return e.Delay(ctx, d)
	}
	return monitor.Sleep(ctx, d)
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
