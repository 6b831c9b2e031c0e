// Package docker adapts the Docker Engine API to the small container
// surface the provisioning engine needs: exact-name lookup, stop, remove
// and detached run. The adapter never retries; retry policy belongs to
// the engine and the poller.
package docker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"acecast/internal/launch"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// CommandError wraps a failed runtime operation with the daemon's
// diagnostic text.
type CommandError struct {
	Op  string
	Err error
}

func (e *CommandError) Error() string { return fmt.Sprintf("docker %s: %v", e.Op, e.Err) }
func (e *CommandError) Unwrap() error { return e.Err }

// Runtime wraps a Docker API client.
type Runtime struct {
	cli client.APIClient
}

// NewRuntime creates a Runtime with a client from the environment.
func NewRuntime() (*Runtime, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return &Runtime{cli: cli}, nil
}

// NewRuntimeFromClient wraps an existing client. Tests pass a fake.
func NewRuntimeFromClient(cli client.APIClient) *Runtime {
	return &Runtime{cli: cli}
}

// FindByName returns the id of the container with exactly the given name,
// running or not. found is false when no such container exists.
func (r *Runtime) FindByName(ctx context.Context, name string) (id string, found bool, err error) {
	list, err := r.cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("name", "^"+name+"$")),
	})
	if err != nil {
		return "", false, &CommandError{Op: "list", Err: err}
	}
	// The name filter is a regexp over names with their leading slash;
	// match exactly to avoid prefix collisions like "demo" vs "demo2".
	for _, c := range list {
		for _, n := range c.Names {
			if strings.TrimPrefix(n, "/") == name {
				return c.ID, true, nil
			}
		}
	}
	return "", false, nil
}

// Stop stops a container by id.
func (r *Runtime) Stop(ctx context.Context, id string) error {
	if err := r.cli.ContainerStop(ctx, id, container.StopOptions{}); err != nil {
		return &CommandError{Op: "stop", Err: err}
	}
	return nil
}

// Remove removes a stopped container by id.
func (r *Runtime) Remove(ctx context.Context, id string) error {
	if err := r.cli.ContainerRemove(ctx, id, container.RemoveOptions{}); err != nil {
		return &CommandError{Op: "remove", Err: err}
	}
	return nil
}

// Run creates and starts a detached container from the launch spec,
// returning its id. If the image is missing locally it is pulled and the
// create retried once.
func (r *Runtime) Run(ctx context.Context, spec launch.Spec) (string, error) {
	cfg, hostCfg := translate(spec)

	resp, err := r.cli.ContainerCreate(ctx, cfg, hostCfg, nil, (*ocispec.Platform)(nil), spec.Name)
	if err != nil {
		if !errdefs.IsNotFound(err) {
			return "", &CommandError{Op: "create", Err: err}
		}
		if err := r.pullImage(ctx, spec.Image); err != nil {
			return "", err
		}
		resp, err = r.cli.ContainerCreate(ctx, cfg, hostCfg, nil, nil, spec.Name)
		if err != nil {
			return "", &CommandError{Op: "create", Err: err}
		}
	}

	if err := r.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return "", &CommandError{Op: "start", Err: err}
	}
	return resp.ID, nil
}

func (r *Runtime) pullImage(ctx context.Context, img string) error {
	slog.Info("Pulling image.", "image", img)
	resp, err := r.cli.ImagePull(ctx, img, image.PullOptions{})
	if err != nil {
		return &CommandError{Op: "pull", Err: err}
	}
	defer resp.Close()
	if _, err := io.Copy(io.Discard, resp); err != nil {
		return &CommandError{Op: "pull", Err: fmt.Errorf("read response: %w", err)}
	}
	return nil
}

// translate maps the runtime-neutral spec onto engine API types: dual
// tcp/udp publish on the event port and the named data volume.
func translate(spec launch.Spec) (*container.Config, *container.HostConfig) {
	hostPort := strconv.Itoa(spec.Port)
	tcp := nat.Port(hostPort + "/tcp")
	udp := nat.Port(hostPort + "/udp")

	cfg := &container.Config{
		Image: spec.Image,
		Cmd:   spec.Args,
		ExposedPorts: nat.PortSet{
			tcp: struct{}{},
			udp: struct{}{},
		},
	}
	hostCfg := &container.HostConfig{
		RestartPolicy: container.RestartPolicy{Name: container.RestartPolicyUnlessStopped},
		PortBindings: nat.PortMap{
			tcp: []nat.PortBinding{{HostPort: hostPort}},
			udp: []nat.PortBinding{{HostPort: hostPort}},
		},
		Mounts: []mount.Mount{{
			Type:   mount.TypeVolume,
			Source: spec.Volume,
			Target: launch.DataDir,
		}},
	}
	return cfg, hostCfg
}
