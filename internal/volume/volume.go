// Package volume clears residual files out of an event's data volume
// before a re-provision. Only the engine's own artifact types survive;
// everything else in the volume root is treated as leftover temp state.
package volume

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Extensions that are never removed. .acelive is the published stream
// descriptor, .sauth the engine's auth state.
var allowedExts = map[string]bool{
	".acelive": true,
	".sauth":   true,
}

// Sanitize removes non-allow-listed regular files from the host directory
// backing the named volume and returns the number removed. Unsupported
// platforms and missing directories are a no-op, not an error.
func Sanitize(volumeName string) (int, error) {
	dir := hostPath(volumeName)
	if dir == "" {
		slog.Warn("volume cleanup not supported on this platform", "volume", volumeName)
		return 0, nil
	}
	return SanitizeDir(dir)
}

// SanitizeDir sweeps one directory. Direct children only; subdirectories
// and allow-listed files are never touched. Individual removal failures
// are logged and skipped.
func SanitizeDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("volume directory does not exist", "dir", dir)
			return 0, nil
		}
		return 0, fmt.Errorf("read volume directory: %w", err)
	}

	removed := 0
	for _, ent := range entries {
		if !ent.Type().IsRegular() {
			continue
		}
		if allowedExts[filepath.Ext(ent.Name())] {
			continue
		}
		p := filepath.Join(dir, ent.Name())
		if err := os.Remove(p); err != nil {
			slog.Error("remove residual file", "path", p, "err", err)
			continue
		}
		slog.Debug("removed residual file", "path", p)
		removed++
	}
	return removed, nil
}
