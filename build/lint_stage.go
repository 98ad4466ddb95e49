package build

import (
	"context"

	"github.com/cr-imson-co/layer-updater/pipeline"
	"github.com/cr-imson-co/layer-updater/toolchain"
)

// LintStage runs pylint over the layer sources.
type LintStage struct {
	Pylint *toolchain.Pylint
}

func (s *LintStage) Name() string { return "lint" }

func (s *LintStage) Execute(ctx context.Context, bc *pipeline.BuildContext) error {
	if !bc.Config.LintEnabled() {
		bc.Log.Info("lint disabled, skipping", nil)
		return nil
	}
	return s.Pylint.Run(ctx, bc.Opts.WorkDir, bc.Config.Layer.Source)
}
