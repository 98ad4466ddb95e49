package toolchain

import (
	"context"
	"fmt"
)

// Docker runs the dependency-pinning container.
type Docker struct {
	runner Runner
}

// NewDocker creates a docker toolchain entry.
func NewDocker(runner Runner) *Docker { return &Docker{runner: runner} }

// Available reports whether the docker daemon is reachable.
func (d *Docker) Available(ctx context.Context) bool {
	res, err := d.runner.Run(ctx, Command{Program: "docker", Args: []string{"info"}})
	return err == nil && res.Ok()
}

// Pin regenerates the dependency-pinning file by resolving requirements.in
// inside a clean container matching the layer's Python version. This is the
// single docker command from the project README.
func (d *Docker) Pin(ctx context.Context, dir, image string) error {
	script := "python -m pip install --quiet --disable-pip-version-check -r requirements.in && " +
		"python -m pip freeze > requirements.txt"
	res, err := d.runner.Run(ctx, Command{
		Program: "docker",
		Args: []string{
			"run", "--rm",
			"-v", dir + ":/opt/build",
			"-w", "/opt/build",
			image,
			"sh", "-c", script,
		},
	})
	if err != nil {
		return err
	}
	if !res.Ok() {
		return fmt.Errorf("pin container exited %d: %s", res.ExitCode, tail(res.Stderr, 10))
	}
	return nil
}
