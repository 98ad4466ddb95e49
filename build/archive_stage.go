package build

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/cr-imson-co/layer-updater/layer"
	"github.com/cr-imson-co/layer-updater/pipeline"
)

// ArchiveStage zips the assembled layout into the layer artifact.
type ArchiveStage struct{}

func (s *ArchiveStage) Name() string { return "archive" }

func (s *ArchiveStage) Execute(ctx context.Context, bc *pipeline.BuildContext) error {
	if bc.SiteDir == "" {
		return fmt.Errorf("no assembled layout to archive")
	}

	zipPath := filepath.Join(bc.Opts.ArtifactDir, bc.Config.ArchiveName())
	size, err := layer.Archive(bc.SiteDir, zipPath)
	if err != nil {
		return err
	}

	bc.ArchivePath = zipPath
	bc.ArchiveSize = size
	bc.AddArtifact(zipPath)
	bc.Log.Info("layer archived", map[string]any{
		"archive": bc.Config.ArchiveName(),
		"bytes":   size,
	})
	return nil
}
