package toolchain

import (
	"context"
	"fmt"
)

// pytest exit codes that the pipeline cares about.
const (
	pytestTestsFailed = 1
	pytestNoTests     = 5
)

// Pip installs Python dependencies through the target interpreter.
type Pip struct {
	py *Python
}

// NewPip wraps pip for the given interpreter.
func NewPip(py *Python) *Pip { return &Pip{py: py} }

// Install runs pip install against a requirements file.
func (p *Pip) Install(ctx context.Context, dir, requirements string) error {
	res, err := p.py.Module(ctx, dir, "pip", "install", "--disable-pip-version-check", "-r", requirements)
	if err != nil {
		return err
	}
	if !res.Ok() {
		return fmt.Errorf("pip install -r %s exited %d: %s", requirements, res.ExitCode, tail(res.Stderr, 5))
	}
	return nil
}

// Pylint runs the static analyzer.
type Pylint struct {
	py *Python
}

// NewPylint wraps pylint for the given interpreter.
func NewPylint(py *Python) *Pylint { return &Pylint{py: py} }

// Run lints the given target path. Any nonzero exit fails the run.
func (l *Pylint) Run(ctx context.Context, dir, target string) error {
	res, err := l.py.Module(ctx, dir, "pylint", target)
	if err != nil {
		return err
	}
	if !res.Ok() {
		return fmt.Errorf("pylint %s exited %d:\n%s", target, res.ExitCode, tail(res.Stdout, 20))
	}
	return nil
}

// Pytest runs the unit test suite.
type Pytest struct {
	py *Python
}

// NewPytest wraps pytest for the given interpreter.
func NewPytest(py *Python) *Pytest { return &Pytest{py: py} }

// TestsFailedError reports that the suite ran but had failing tests, which
// maps to the unstable outcome rather than a hard failure.
type TestsFailedError struct {
	Output string
}

func (e *TestsFailedError) Error() string {
	return "unit tests failed:\n" + e.Output
}

// Run executes pytest against the given tests path. A missing suite is
// tolerated and reported via the bool return.
func (t *Pytest) Run(ctx context.Context, dir, tests string) (bool, error) {
	res, err := t.py.Module(ctx, dir, "pytest", tests)
	if err != nil {
		return false, err
	}
	switch res.ExitCode {
	case 0:
		return true, nil
	case pytestTestsFailed:
		return true, &TestsFailedError{Output: tail(res.Stdout, 20)}
	case pytestNoTests:
		return false, nil
	default:
		return true, fmt.Errorf("pytest %s exited %d: %s", tests, res.ExitCode, tail(res.Stderr, 5))
	}
}
