package build

import (
	"context"
	"path/filepath"

	"github.com/cr-imson-co/layer-updater/layer"
	"github.com/cr-imson-co/layer-updater/pipeline"
)

// LayoutStage assembles the site-packages directory tree the packaging
// format expects.
type LayoutStage struct{}

func (s *LayoutStage) Name() string { return "assemble-layout" }

func (s *LayoutStage) Execute(ctx context.Context, bc *pipeline.BuildContext) error {
	src := filepath.Join(bc.Opts.WorkDir, bc.Config.Layer.Source)

	count, err := layer.Assemble(src, bc.Opts.ScratchDir, bc.Config.Python.Version, bc.Config.Layer.Name)
	if err != nil {
		return err
	}

	bc.SiteDir = bc.Opts.ScratchDir
	bc.FileCount = count
	bc.Log.Info("layer layout assembled", map[string]any{
		"files": count,
		"path":  layer.SitePackagesPath(bc.Config.Python.Version, bc.Config.Layer.Name),
	})
	return nil
}
