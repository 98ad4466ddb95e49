package pipeline

import (
	"github.com/cr-imson-co/layer-updater/config"
)

// Options carries shared directory layout for all pipeline stages.
type Options struct {
	// WorkDir is the checked-out project root.
	WorkDir string
	// ScratchDir is the per-run scratch area; removed after every outcome.
	ScratchDir string
	// ArtifactDir is where archived artifacts land; it survives cleanup.
	ArtifactDir string
	// ConfigPath is the path the config was loaded from.
	ConfigPath string
}

// BuildContext carries all state through the layer build pipeline.
type BuildContext struct {
	Opts   Options
	Config *config.Config
	Log    Logger

	RunID  string
	Branch string
	CI     bool

	Artifacts []string
	Warnings  []string

	// Build products, populated as stages run.
	SiteDir     string
	ArchivePath string
	ArchiveSize int64
	FileCount   int

	// Publish results; zero values mean the publish stage was skipped.
	Published       bool
	UploadedTo      string
	LayerVersionArn string
	LayerVersion    int64
}

// NewBuildContext creates a BuildContext with the given options.
func NewBuildContext(opts Options, cfg *config.Config, log Logger) *BuildContext {
	return &BuildContext{Opts: opts, Config: cfg, Log: log}
}

// AddArtifact records an archived artifact path.
func (bc *BuildContext) AddArtifact(path string) {
	bc.Artifacts = append(bc.Artifacts, path)
}

// AddWarning appends a warning message to the build context.
func (bc *BuildContext) AddWarning(msg string) {
	bc.Warnings = append(bc.Warnings, msg)
}
