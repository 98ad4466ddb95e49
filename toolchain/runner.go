// Package toolchain runs the external tools the pipeline depends on:
// the Python interpreter, pip, pylint, pytest, and docker.
package toolchain

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/cr-imson-co/layer-updater/pipeline"
)

// Command describes a single external command invocation.
type Command struct {
	Program string
	Args    []string
	Dir     string
	Env     map[string]string
}

// Result holds the captured output of a finished command. A nonzero
// ExitCode is not an error at this level; callers classify it.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Ok reports whether the command exited zero.
func (r *Result) Ok() bool { return r.ExitCode == 0 }

// Runner executes external commands. The exec-backed implementation is
// ExecRunner; tests substitute fakes.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExecRunner runs commands via os/exec, merging Command.Env over the
// current environment and streaming stderr lines through the logger.
type ExecRunner struct {
	Log pipeline.Logger
}

// NewExecRunner creates a runner that logs tool stderr at debug level.
func NewExecRunner(log pipeline.Logger) *ExecRunner {
	return &ExecRunner{Log: log}
}

// Run executes the command and captures its output. The returned error is
// reserved for failures to start or I/O problems; command failure is
// reported through Result.ExitCode.
func (r *ExecRunner) Run(ctx context.Context, c Command) (*Result, error) {
	if c.Program == "" {
		return nil, fmt.Errorf("empty command")
	}

	cmd := exec.CommandContext(ctx, c.Program, c.Args...)
	cmd.Dir = c.Dir

	env := os.Environ()
	for k, v := range c.Env {
		env = append(env, k+"="+v)
	}
	cmd.Env = env

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", c.Program, err)
	}

	var errBuf bytes.Buffer
	scanner := bufio.NewScanner(stderr)
	// Tool tracebacks can emit very long single lines; the default 64KB
	// token limit would truncate the captured stderr that error messages
	// are built from.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		errBuf.WriteString(line)
		errBuf.WriteByte('\n')
		if r.Log != nil {
			r.Log.Debug(c.Program, map[string]any{"stderr": line})
		}
	}
	scanErr := scanner.Err()

	res := &Result{Stdout: stdout.String(), Stderr: errBuf.String()}
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			return nil, fmt.Errorf("running %s: %w", c.Program, err)
		}
	}
	if scanErr != nil {
		return nil, fmt.Errorf("reading %s stderr: %w", c.Program, scanErr)
	}
	return res, nil
}

// tail returns the final lines of tool output for error messages.
func tail(s string, n int) string {
	if s == "" {
		return s
	}
	lines := bytes.Split(bytes.TrimSpace([]byte(s)), []byte("\n"))
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return string(bytes.Join(lines, []byte("\n")))
}
