// Package launch maps a validated event record to the container launch
// spec: image, name, port publishing, data volume and the exact engine
// argument sequence. The mapping is a pure function of the record so two
// runs of the same record always produce the same container.
package launch

import (
	"strconv"

	"acecast/internal/event"
)

// DefaultImage is the streaming engine image launched for every event.
const DefaultImage = "lob666/acestreamengine"

// DataDir is the in-container path the named volume is bound to; the
// engine publishes and caches under it.
const DataDir = "/data"

// volumePrefix namespaces per-event volumes; the sanitizer resolves host
// paths from the same prefix.
const volumePrefix = "acestreamengine_"

// VolumeName returns the named data volume for an event.
func VolumeName(name string) string { return volumePrefix + name }

// Spec is a runtime-neutral description of one container to launch. The
// Docker adapter translates it to engine API types.
type Spec struct {
	Name   string
	Image  string
	Port   int      // published on both tcp and udp, host port == container port
	Volume string   // named volume bound to DataDir
	Args   []string // engine command, fixed order
}

// Build produces the launch spec for a record. The argument sequence has
// a fixed length and flag order for any record; no flag is conditionally
// omitted.
func Build(rec event.Record, image string) Spec {
	if image == "" {
		image = DefaultImage
	}
	port := strconv.Itoa(rec.Port)
	return Spec{
		Name:   rec.Name,
		Image:  image,
		Port:   rec.Port,
		Volume: VolumeName(rec.Name),
		Args: []string{
			"--port", port,
			"--tracker", rec.Tracker,
			"--stream-source",
			"--name", rec.Name,
			"--title", rec.Title,
			"--publish-dir", DataDir,
			"--cache-dir", DataDir,
			"--skip-internal-tracker",
			"--quality", "HD",
			"--category", "amateur",
			"--service-access-token", rec.AccessToken,
			"--service-remote-access",
			"--log-debug", "1",
			"--max-peers", "6",
			"--max-upload-slots", "6",
			"--source-read-timeout", "15",
			"--source-reconnect-interval", "1",
			"--host", rec.Host,
			"--source", rec.Source,
			"--bitrate", strconv.Itoa(rec.Bitrate),
		},
	}
}
