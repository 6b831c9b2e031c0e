//go:build windows

package volume

// hostPath resolves a named volume through the Docker Desktop WSL share.
func hostPath(volumeName string) string {
	return `\\wsl.localhost\docker-desktop\mnt\docker-desktop-disk\data\docker\volumes\` + volumeName + `\_data`
}
