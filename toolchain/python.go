package toolchain

import (
	"context"
	"fmt"
	"strings"
)

// Python wraps the target Python interpreter.
type Python struct {
	runner Runner
	binary string
}

// NewPython creates a Python toolchain entry for the given binary
// (python3 when empty).
func NewPython(runner Runner, binary string) *Python {
	if binary == "" {
		binary = "python3"
	}
	return &Python{runner: runner, binary: binary}
}

// Binary returns the interpreter command name.
func (p *Python) Binary() string { return p.binary }

// Version reports the interpreter version, e.g. "3.8.10".
func (p *Python) Version(ctx context.Context) (string, error) {
	res, err := p.runner.Run(ctx, Command{Program: p.binary, Args: []string{"--version"}})
	if err != nil {
		return "", fmt.Errorf("checking %s availability: %w", p.binary, err)
	}
	if !res.Ok() {
		return "", fmt.Errorf("%s --version exited %d: %s", p.binary, res.ExitCode, tail(res.Stderr, 3))
	}

	// Python 2 printed the version on stderr; handle both.
	out := strings.TrimSpace(res.Stdout)
	if out == "" {
		out = strings.TrimSpace(res.Stderr)
	}
	version := strings.TrimPrefix(out, "Python ")
	if version == out || version == "" {
		return "", fmt.Errorf("unexpected %s --version output: %q", p.binary, out)
	}
	return version, nil
}

// CheckVersion verifies the interpreter matches the configured major.minor
// version.
func (p *Python) CheckVersion(ctx context.Context, want string) (string, error) {
	got, err := p.Version(ctx)
	if err != nil {
		return "", err
	}
	if got != want && !strings.HasPrefix(got, want+".") {
		return got, fmt.Errorf("python version mismatch: have %s, want %s", got, want)
	}
	return got, nil
}

// Module runs `python -m <module> <args...>` in the given directory.
func (p *Python) Module(ctx context.Context, dir, module string, args ...string) (*Result, error) {
	cmdArgs := append([]string{"-m", module}, args...)
	return p.runner.Run(ctx, Command{Program: p.binary, Args: cmdArgs, Dir: dir})
}
