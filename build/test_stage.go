package build

import (
	"context"
	"errors"
	"fmt"

	"github.com/cr-imson-co/layer-updater/pipeline"
	"github.com/cr-imson-co/layer-updater/toolchain"
)

// TestStage runs the unit test suite. Failing tests mark the run unstable;
// any other pytest problem is a hard failure.
type TestStage struct {
	Pytest *toolchain.Pytest
}

func (s *TestStage) Name() string { return "unit-tests" }

func (s *TestStage) Execute(ctx context.Context, bc *pipeline.BuildContext) error {
	ran, err := s.Pytest.Run(ctx, bc.Opts.WorkDir, bc.Config.QA.Tests)
	if err != nil {
		var failed *toolchain.TestsFailedError
		if errors.As(err, &failed) {
			return fmt.Errorf("%v: %w", failed, pipeline.ErrUnstable)
		}
		return err
	}
	if !ran {
		bc.AddWarning(fmt.Sprintf("no tests collected under %s", bc.Config.QA.Tests))
		bc.Log.Warn("no tests collected", map[string]any{"tests": bc.Config.QA.Tests})
	}
	return nil
}
