package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cr-imson-co/layer-updater/pipeline"
	"github.com/cr-imson-co/layer-updater/toolchain"
)

// DepsStage installs the pinned dependencies needed to lint and test the
// layer sources.
type DepsStage struct {
	Pip *toolchain.Pip
}

func (s *DepsStage) Name() string { return "install-dependencies" }

func (s *DepsStage) Execute(ctx context.Context, bc *pipeline.BuildContext) error {
	requirements := bc.Config.QA.Requirements
	if _, err := os.Stat(filepath.Join(bc.Opts.WorkDir, requirements)); err != nil {
		return fmt.Errorf("pinned requirements file %s: %w", requirements, err)
	}
	return s.Pip.Install(ctx, bc.Opts.WorkDir, requirements)
}
