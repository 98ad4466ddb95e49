package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cr-imson-co/layer-updater/build"
	"github.com/cr-imson-co/layer-updater/config"
	"github.com/cr-imson-co/layer-updater/internal/tui"
	"github.com/cr-imson-co/layer-updater/pipeline"
	"github.com/cr-imson-co/layer-updater/toolchain"
)

var (
	branchOverride string
	skipPublish    bool
	keepScratch    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the layer build pipeline",
	Long:  "Run executes the pipeline stages in order: prepare, QA, build layer, archive. The archive stage publishes only on the primary branch.",
	RunE:  runPipeline,
}

func init() {
	runCmd.Flags().StringVar(&branchOverride, "branch", "", "branch under build (defaults to $GIT_BRANCH)")
	runCmd.Flags().BoolVar(&skipPublish, "skip-publish", false, "never publish, even on the primary branch")
	runCmd.Flags().BoolVar(&keepScratch, "keep-scratch", false, "keep the scratch directory for debugging")
}

// Swapped out by tests.
var (
	newToolRunner = func(log pipeline.Logger) toolchain.Runner {
		return toolchain.NewExecRunner(log)
	}
	newPublishStage = build.NewPublishStage
)

func runPipeline(cmd *cobra.Command, args []string) error {
	cfgPath, err := resolveConfigPath()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if schemaErrs, err := config.ValidateYAML(data); err != nil {
		return err
	} else if len(schemaErrs) > 0 {
		for _, e := range schemaErrs {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", e)
		}
		return fmt.Errorf("config validation failed: %d error(s)", len(schemaErrs))
	}
	cfg, err := config.Parse(data)
	if err != nil {
		return err
	}
	config.ApplyEnv(cfg, os.Getenv)

	ci := config.ReadCIEnv(os.Getenv)
	branch := branchOverride
	if branch == "" {
		branch = ci.Branch
	}
	workDir := workspaceDir
	if workDir == "" {
		workDir = ci.Workspace
	}
	if workDir == "" {
		workDir = filepath.Dir(cfgPath)
	}

	runID := uuid.NewString()
	// Every line of the run's output carries the run ID.
	logger := pipeline.NewJSONLogger(os.Stderr, verbose).With(map[string]any{"run_id": runID})

	// Concurrent builds of the pipeline are disabled outright.
	release, err := pipeline.AcquireLock(workDir)
	if err != nil {
		return err
	}
	defer release() //nolint:errcheck

	scratchRoot := filepath.Join(workDir, ".layerci")
	opts := pipeline.Options{
		WorkDir:     workDir,
		ScratchDir:  filepath.Join(scratchRoot, "build"),
		ArtifactDir: filepath.Join(workDir, "dist"),
		ConfigPath:  cfgPath,
	}
	for _, dir := range []string{opts.ScratchDir, opts.ArtifactDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	// Scratch cleanup runs after every outcome.
	if !keepScratch {
		defer func() {
			if err := os.RemoveAll(scratchRoot); err != nil {
				logger.Warn("scratch cleanup failed", map[string]any{"error": err.Error()})
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep := newReporter(cfg, logger, os.Getenv)
	rep.running(ctx, runID)

	runner := newToolRunner(logger)
	py := toolchain.NewPython(runner, cfg.Python.Binary)

	stages := []pipeline.Stage{
		&build.PrepareStage{Python: py},
		&build.DepsStage{Pip: toolchain.NewPip(py)},
		&build.LintStage{Pylint: toolchain.NewPylint(py)},
		&build.TestStage{Pytest: toolchain.NewPytest(py)},
		&build.LayoutStage{},
		&build.ArchiveStage{},
	}
	if !skipPublish {
		stages = append(stages, newPublishStage())
	}
	stages = append(stages, &build.ManifestStage{})

	bc := pipeline.NewBuildContext(opts, cfg, logger)
	bc.RunID = runID
	bc.Branch = branch
	bc.CI = ci.CI

	logger.Info("pipeline starting", map[string]any{
		"layer":  cfg.Layer.Name,
		"branch": branch,
	})
	runErr := pipeline.New(stages...).Run(ctx, bc)
	outcome := pipeline.OutcomeFor(runErr)

	rep.finished(outcome, bc, runErr)

	for _, w := range bc.Warnings {
		fmt.Fprintf(os.Stderr, "WARNING: %s\n", w)
	}
	if tui.Interactive() {
		fmt.Println(tui.RenderSummary(outcome.String(), summaryRows(bc)))
	}

	if runErr != nil {
		return fmt.Errorf("pipeline %s: %w", outcome, runErr)
	}
	logger.Info("pipeline finished", map[string]any{
		"artifacts": len(bc.Artifacts),
	})
	return nil
}

func resolveConfigPath() (string, error) {
	cfgPath := cfgFile
	if !filepath.IsAbs(cfgPath) {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting working directory: %w", err)
		}
		cfgPath = filepath.Join(wd, cfgPath)
	}
	return cfgPath, nil
}

func summaryRows(bc *pipeline.BuildContext) []tui.Row {
	rows := []tui.Row{
		{Key: "layer", Value: bc.Config.Layer.Name},
		{Key: "run", Value: bc.RunID},
	}
	if bc.ArchivePath != "" {
		rows = append(rows, tui.Row{Key: "archive", Value: filepath.Base(bc.ArchivePath)})
	}
	if bc.Published {
		rows = append(rows, tui.Row{Key: "published", Value: fmt.Sprintf("v%d (%s)", bc.LayerVersion, bc.LayerVersionArn)})
	}
	return rows
}
