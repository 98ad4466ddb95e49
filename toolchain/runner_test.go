package toolchain

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/cr-imson-co/layer-updater/pipeline"
)

func discardLogger() pipeline.Logger {
	return pipeline.NewJSONLogger(io.Discard, false)
}

func TestExecRunner_CapturesStdout(t *testing.T) {
	r := NewExecRunner(discardLogger())
	res, err := r.Run(context.Background(), Command{Program: "sh", Args: []string{"-c", "echo hello"}})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !res.Ok() {
		t.Fatalf("ExitCode = %d, want 0", res.ExitCode)
	}
	if strings.TrimSpace(res.Stdout) != "hello" {
		t.Errorf("Stdout = %q, want hello", res.Stdout)
	}
}

func TestExecRunner_NonzeroExitIsNotAnError(t *testing.T) {
	r := NewExecRunner(discardLogger())
	res, err := r.Run(context.Background(), Command{Program: "sh", Args: []string{"-c", "exit 3"}})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
}

func TestExecRunner_MergesEnv(t *testing.T) {
	r := NewExecRunner(discardLogger())
	res, err := r.Run(context.Background(), Command{
		Program: "sh",
		Args:    []string{"-c", `printf %s "$LAYERCI_TEST_VAR"`},
		Env:     map[string]string{"LAYERCI_TEST_VAR": "injected"},
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Stdout != "injected" {
		t.Errorf("Stdout = %q, want injected", res.Stdout)
	}
}

func TestExecRunner_CapturesStderr(t *testing.T) {
	r := NewExecRunner(discardLogger())
	res, err := r.Run(context.Background(), Command{Program: "sh", Args: []string{"-c", "echo warning >&2"}})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if strings.TrimSpace(res.Stderr) != "warning" {
		t.Errorf("Stderr = %q, want warning", res.Stderr)
	}
}

func TestExecRunner_LongStderrLine(t *testing.T) {
	r := NewExecRunner(discardLogger())
	// A single 128KB stderr line exceeds bufio's default token limit;
	// it must still be captured in full.
	script := `i=0; while [ $i -lt 2048 ]; do printf '0123456789012345678901234567890123456789012345678901234567890123'; i=$((i+1)); done >&2`
	res, err := r.Run(context.Background(), Command{Program: "sh", Args: []string{"-c", script}})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got := len(strings.TrimSpace(res.Stderr)); got != 2048*64 {
		t.Errorf("captured stderr = %d bytes, want %d", got, 2048*64)
	}
}

func TestExecRunner_MissingProgram(t *testing.T) {
	r := NewExecRunner(discardLogger())
	if _, err := r.Run(context.Background(), Command{Program: "layerci-does-not-exist"}); err == nil {
		t.Error("Run() error = nil, want start failure")
	}
}

func TestTail(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short output untouched", "one\ntwo", 5, "one\ntwo"},
		{"long output truncated", "a\nb\nc\nd", 2, "c\nd"},
		{"empty", "", 3, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tail(tt.in, tt.n); got != tt.want {
				t.Errorf("tail() = %q, want %q", got, tt.want)
			}
		})
	}
}
