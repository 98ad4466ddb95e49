package build

import (
	"context"
	"path/filepath"
	"time"

	"github.com/cr-imson-co/layer-updater/layer"
	"github.com/cr-imson-co/layer-updater/pipeline"
)

// ManifestFileName is the manifest written next to the layer archive.
const ManifestFileName = "layer-manifest.json"

// ManifestStage records what was built, and whether it was published, as
// JSON in the artifact directory.
type ManifestStage struct{}

func (s *ManifestStage) Name() string { return "write-manifest" }

func (s *ManifestStage) Execute(ctx context.Context, bc *pipeline.BuildContext) error {
	m := &layer.Manifest{
		LayerName:     bc.Config.Layer.Name,
		RunID:         bc.RunID,
		Branch:        bc.Branch,
		PythonVersion: bc.Config.Python.Version,
		Archive:       filepath.Base(bc.ArchivePath),
		SizeBytes:     bc.ArchiveSize,
		FileCount:     bc.FileCount,
		BuiltAt:       time.Now().UTC().Format(time.RFC3339),

		Published:       bc.Published,
		UploadedTo:      bc.UploadedTo,
		LayerVersionArn: bc.LayerVersionArn,
		LayerVersion:    bc.LayerVersion,
	}
	return layer.WriteManifest(filepath.Join(bc.Opts.ArtifactDir, ManifestFileName), m)
}
