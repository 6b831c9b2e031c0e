//go:build !linux && !windows

package volume

// hostPath has no resolution rule on this platform; Sanitize becomes a
// logged no-op.
func hostPath(string) string { return "" }
