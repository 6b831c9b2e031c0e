//go:build linux

package volume

// hostPath resolves the directory Docker backs a named volume with.
func hostPath(volumeName string) string {
	return "/var/lib/docker/volumes/" + volumeName + "/_data"
}
