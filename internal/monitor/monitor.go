// Package monitor discovers a running instance's content id by polling
// its HTTP status endpoint. The engine inside the container assigns the
// id asynchronously after startup, so the poller is a bounded-retry loop:
// warmup delay, then up to Attempts GETs with a delay between them, first
// usable answer wins.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// sentinelContentID is the engine's own "not assigned yet" marker; a
// response carrying it is treated the same as a missing content id.
const sentinelContentID = "No encontrado"

// Report is one usable answer from the status endpoint. DownloadHash may
// be empty; ContentID never is.
type Report struct {
	ContentID    string
	DownloadHash string
}

// Policy bounds the poll loop. The defaults match the engine image's
// observed startup behavior.
type Policy struct {
	Attempts int           // HTTP attempts before giving up
	Warmup   time.Duration // wait before the first attempt
	Interval time.Duration // wait between attempts
	Timeout  time.Duration // per-attempt HTTP timeout
}

// DefaultPolicy is 10 attempts, 15s warmup, 5s interval, 10s timeout.
func DefaultPolicy() Policy {
	return Policy{
		Attempts: 10,
		Warmup:   15 * time.Second,
		Interval: 5 * time.Second,
		Timeout:  10 * time.Second,
	}
}

// ExhaustedError reports a poll loop that ran out of attempts without a
// usable content id.
type ExhaustedError struct {
	Attempts int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("no content id after %d attempts", e.Attempts)
}

// Delay blocks for d or until ctx is cancelled.
// Production: Sleep. Testing: a recording no-op.
type Delay func(ctx context.Context, d time.Duration) error

// Sleep implements Delay with a real timer.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Poller queries an instance's status endpoint.
type Poller struct {
	Client *http.Client // defaults to http.DefaultClient
	Host   string       // defaults to localhost
	Policy Policy
	Delay  Delay // defaults to Sleep
}

// statusBody is the endpoint's JSON shape; both fields are optional.
type statusBody struct {
	ContentID    string `json:"content_id"`
	DownloadHash string `json:"download_hash"`
}

// Poll runs the bounded-retry loop against the instance on port. It
// returns the first report with a non-sentinel content id, or an
// ExhaustedError once all attempts are spent. Transport failures,
// non-200 statuses, unparsable bodies and sentinel ids all consume one
// attempt and continue.
func (p *Poller) Poll(ctx context.Context, port int) (Report, error) {
	policy := p.Policy
	if policy.Attempts <= 0 {
		policy = DefaultPolicy()
	}
	url := fmt.Sprintf("http://%s:%d/app/%d/monitor", p.host(), port, port)

	slog.Info("Waiting for instance startup.", "port", port, "warmup", policy.Warmup)
	if err := p.delay(ctx, policy.Warmup); err != nil {
		return Report{}, err
	}

	for attempt := 1; attempt <= policy.Attempts; attempt++ {
		if attempt > 1 {
			if err := p.delay(ctx, policy.Interval); err != nil {
				return Report{}, err
			}
		}

		report, ok := p.attempt(ctx, url, policy.Timeout, attempt, policy.Attempts)
		if ok {
			return report, nil
		}
	}
	return Report{}, &ExhaustedError{Attempts: policy.Attempts}
}

func (p *Poller) attempt(ctx context.Context, url string, timeout time.Duration, attempt, attempts int) (Report, bool) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		slog.Warn("build status request", "attempt", attempt, "err", err)
		return Report{}, false
	}
	resp, err := p.client().Do(req)
	if err != nil {
		slog.Warn("status endpoint unreachable", "attempt", attempt, "of", attempts, "err", err)
		return Report{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("unexpected status code", "attempt", attempt, "code", resp.StatusCode)
		return Report{}, false
	}

	var body statusBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		slog.Warn("undecodable status body", "attempt", attempt, "err", err)
		return Report{}, false
	}
	if body.ContentID == "" || body.ContentID == sentinelContentID {
		slog.Warn("content id not assigned yet", "attempt", attempt, "of", attempts)
		return Report{}, false
	}
	return Report{ContentID: body.ContentID, DownloadHash: body.DownloadHash}, true
}

func (p *Poller) client() *http.Client {
	if p.Client != nil {
		return p.Client
	}
	return http.DefaultClient
}

func (p *Poller) host() string {
	if p.Host != "" {
		return p.Host
	}
	return "localhost"
}

func (p *Poller) delay(ctx context.Context, d time.Duration) error {
	if p.Delay != nil {
		return p.Delay(ctx, d)
	}
	return Sleep(ctx, d)
}
