// Package build implements the layer pipeline stages.
package build

import (
	"context"

	"github.com/cr-imson-co/layer-updater/pipeline"
	"github.com/cr-imson-co/layer-updater/toolchain"
)

// PrepareStage verifies the target Python interpreter is present and is the
// version the layer is built against.
type PrepareStage struct {
	Python *toolchain.Python
}

func (s *PrepareStage) Name() string { return "prepare" }

func (s *PrepareStage) Execute(ctx context.Context, bc *pipeline.BuildContext) error {
	version, err := s.Python.CheckVersion(ctx, bc.Config.Python.Version)
	if err != nil {
		return err
	}
	bc.Log.Info("interpreter ready", map[string]any{
		"binary":  s.Python.Binary(),
		"version": version,
	})
	return nil
}
