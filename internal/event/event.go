// Package event defines the persisted streaming-event record and its
// validation rules. A Record is one row of the CSV store; everything but
// ContentID is immutable once written, ContentID is rewritten by each
// successful provisioning cycle.
package event

import (
	"fmt"
	"net/netip"
	"regexp"
	"strconv"
	"strings"
)

// Defaults applied when a field is left empty during record creation.
// These mirror the engine image's conventional settings.
const (
	DefaultPort    = 8642
	DefaultTracker = "udp://tracker.opentrackr.org:1337/announce"
	DefaultBitrate = 697587
	DefaultToken   = "12345"
)

const (
	minPort    = 1024
	maxPort    = 65535
	maxBitrate = 10_000_000
)

var (
	nameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	// DNS name: dot-separated labels, 1-63 chars each, alphanumeric with
	// internal hyphens.
	domainRe = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)
)

// Header is the store's column layout, in persisted order.
var Header = []string{
	"name", "title", "port", "service_access_token",
	"tracker", "source", "host", "bitrate", "content_id",
}

// Column indices into Header. Kept next to Header so a reorder is caught
// in one place.
const (
	colName = iota
	colTitle
	colPort
	colToken
	colTracker
	colSource
	colHost
	colBitrate
	colContentID
)

// NameColumn and ContentIDColumn expose the two columns the store patches.
const (
	NameColumn      = colName
	ContentIDColumn = colContentID
)

// Record is one streaming event: the declarative inputs for a container
// plus the content id resolved at runtime.
type Record struct {
	Name        string
	Title       string
	Port        int
	AccessToken string
	Tracker     string
	Source      string
	Host        string
	Bitrate     int
	ContentID   string
}

// Row renders the record in Header order.
func (r Record) Row() []string {
	return []string{
		r.Name,
		r.Title,
		strconv.Itoa(r.Port),
		r.AccessToken,
		r.Tracker,
		r.Source,
		r.Host,
		strconv.Itoa(r.Bitrate),
		r.ContentID,
	}
}

// FromRow parses a store row into a Record. Unparsable numeric fields are
// reported as violations rather than errors so a malformed row flows
// through the same reporting path as an out-of-range one; the affected
// field is left at its zero value.
func FromRow(row []string) (Record, []string) {
	if len(row) != len(Header) {
		return Record{}, []string{fmt.Sprintf("row has %d fields, want %d", len(row), len(Header))}
	}

	rec := Record{
		Name:        row[colName],
		Title:       row[colTitle],
		AccessToken: row[colToken],
		Tracker:     row[colTracker],
		Source:      row[colSource],
		Host:        row[colHost],
		ContentID:   row[colContentID],
	}

	var violations []string
	if port, err := strconv.Atoi(strings.TrimSpace(row[colPort])); err != nil {
		violations = append(violations, fmt.Sprintf("port %q is not an integer", row[colPort]))
	} else {
		rec.Port = port
	}
	if bitrate, err := strconv.Atoi(strings.TrimSpace(row[colBitrate])); err != nil {
		violations = append(violations, fmt.Sprintf("bitrate %q is not an integer", row[colBitrate]))
	} else {
		rec.Bitrate = bitrate
	}
	return rec, violations
}

// Validate returns the list of constraint violations, empty when the
// record is valid. Every check runs; the list order is fixed. Pure and
// side-effect free.
func (r Record) Validate() []string {
	var violations []string
	if r.Name == "" || !nameRe.MatchString(r.Name) {
		violations = append(violations, "name must use only letters, digits, hyphens and underscores")
	}
	if r.Port < minPort || r.Port > maxPort {
		violations = append(violations, fmt.Sprintf("port must be between %d and %d", minPort, maxPort))
	}
	if !validHost(r.Host) {
		violations = append(violations, "host must be a valid IP address or domain name")
	}
	if r.Bitrate < 0 || r.Bitrate > maxBitrate {
		violations = append(violations, fmt.Sprintf("bitrate must be between 0 and %d", maxBitrate))
	}
	if strings.TrimSpace(r.Title) == "" {
		violations = append(violations, "title must not be empty")
	}
	if strings.TrimSpace(r.Source) == "" {
		violations = append(violations, "source must not be empty")
	}
	return violations
}

func validHost(host string) bool {
	if host == "" {
		return false
	}
	if _, err := netip.ParseAddr(host); err == nil {
		return true
	}
	return domainRe.MatchString(host)
}
