// Package pipeline provides a sequential stage-based execution pipeline.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnstable marks a run whose build steps succeeded but whose unit tests
// failed. Unstable runs are treated as failed for commit-status purposes.
var ErrUnstable = errors.New("run is unstable")

// Stage is a single unit of work in a build pipeline.
type Stage interface {
	Name() string
	Execute(ctx context.Context, bc *BuildContext) error
}

// Pipeline executes a sequence of stages in order.
type Pipeline struct {
	stages []Stage
}

// New creates a Pipeline from the given stages.
func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Run executes each stage sequentially. It stops on the first error.
func (p *Pipeline) Run(ctx context.Context, bc *BuildContext) error {
	for _, s := range p.stages {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("pipeline cancelled before stage %s: %w", s.Name(), err)
		}
		start := time.Now()
		bc.Log.Info("stage started", map[string]any{"stage": s.Name()})
		if err := s.Execute(ctx, bc); err != nil {
			bc.Log.Error("stage failed", map[string]any{
				"stage":    s.Name(),
				"duration": time.Since(start).String(),
				"error":    err.Error(),
			})
			return fmt.Errorf("stage %s: %w", s.Name(), err)
		}
		bc.Log.Info("stage finished", map[string]any{
			"stage":    s.Name(),
			"duration": time.Since(start).String(),
		})
	}
	return nil
}
