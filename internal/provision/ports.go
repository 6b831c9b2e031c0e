package provision

import (
	"context"

	"acecast/internal/launch"
	"acecast/internal/monitor"
)

// Store abstracts the record store.
// Production: store.Store. Testing: in-memory fake.
type Store interface {
	// Rows returns all data rows in header column order.
	Rows() ([][]string, error)
	// SetContentID commits one record's resolved content id, leaving
	// every other field and row untouched.
	SetContentID(name, contentID string) error
}

// Runtime abstracts container engine operations.
// Production: infra/docker.Runtime. Testing: scripted fake.
type Runtime interface {
	FindByName(ctx context.Context, name string) (id string, found bool, err error)
	Stop(ctx context.Context, id string) error
	Remove(ctx context.Context, id string) error
	Run(ctx context.Context, spec launch.Spec) (id string, err error)
}

// Poller abstracts content-id discovery.
// Production: monitor.Poller. Testing: scripted fake.
type Poller interface {
	Poll(ctx context.Context, port int) (monitor.Report, error)
}

// Sanitizer clears residual files from a named data volume.
// Production: volume.Sanitize.
type Sanitizer func(volumeName string) (removed int, err error)

// Journal records per-record outcomes for later inspection. Optional;
// journal failures never fail a cycle.
type Journal interface {
	Record(res Result) error
}
