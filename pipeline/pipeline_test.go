package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/cr-imson-co/layer-updater/config"
)

type recordedStage struct {
	name string
	err  error
	log  *[]string
}

func (s *recordedStage) Name() string { return s.name }

func (s *recordedStage) Execute(ctx context.Context, bc *BuildContext) error {
	*s.log = append(*s.log, s.name)
	return s.err
}

func testContext() *BuildContext {
	cfg := &config.Config{}
	return NewBuildContext(Options{}, cfg, NewJSONLogger(io.Discard, false))
}

func TestPipeline_RunsStagesInOrder(t *testing.T) {
	var order []string
	p := New(
		&recordedStage{name: "first", log: &order},
		&recordedStage{name: "second", log: &order},
		&recordedStage{name: "third", log: &order},
	)

	if err := p.Run(context.Background(), testContext()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	want := []string{"first", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("executed %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("stage %d = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestPipeline_StopsOnFirstError(t *testing.T) {
	var order []string
	boom := errors.New("boom")
	p := New(
		&recordedStage{name: "ok", log: &order},
		&recordedStage{name: "broken", err: boom, log: &order},
		&recordedStage{name: "never", log: &order},
	)

	err := p.Run(context.Background(), testContext())
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want wrapped %v", err, boom)
	}
	if len(order) != 2 {
		t.Errorf("executed %v, want to stop after broken", order)
	}
}

func TestPipeline_ErrorNamesStage(t *testing.T) {
	var order []string
	p := New(&recordedStage{name: "lint", err: errors.New("bad"), log: &order})

	err := p.Run(context.Background(), testContext())
	if err == nil || err.Error() != "stage lint: bad" {
		t.Errorf("Run() error = %v, want stage-prefixed message", err)
	}
}

func TestPipeline_CancelledContext(t *testing.T) {
	var order []string
	p := New(&recordedStage{name: "never", log: &order})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Run(ctx, testContext())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if len(order) != 0 {
		t.Errorf("executed %v, want none after cancellation", order)
	}
}

func TestOutcomeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Outcome
	}{
		{"nil is success", nil, OutcomeSuccess},
		{"unstable sentinel", fmt.Errorf("stage unit-tests: %w", ErrUnstable), OutcomeUnstable},
		{"cancellation", fmt.Errorf("aborted: %w", context.Canceled), OutcomeCanceled},
		{"anything else fails", errors.New("zip exploded"), OutcomeFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OutcomeFor(tt.err); got != tt.want {
				t.Errorf("OutcomeFor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOutcome_String(t *testing.T) {
	if OutcomeUnstable.String() != "unstable" {
		t.Errorf("OutcomeUnstable.String() = %q", OutcomeUnstable.String())
	}
	if OutcomeFailed.String() != "failed" {
		t.Errorf("OutcomeFailed.String() = %q", OutcomeFailed.String())
	}
}
