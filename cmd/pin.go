package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cr-imson-co/layer-updater/config"
	"github.com/cr-imson-co/layer-updater/pipeline"
	"github.com/cr-imson-co/layer-updater/toolchain"
)

var pinImage string

var pinCmd = &cobra.Command{
	Use:   "pin",
	Short: "Regenerate the pinned requirements file",
	Long:  "Pin resolves requirements.in inside a clean container matching the layer's Python version and rewrites requirements.txt.",
	RunE:  runPin,
}

func init() {
	pinCmd.Flags().StringVar(&pinImage, "image", "", "container image override (default python:<version>)")
}

func runPin(cmd *cobra.Command, args []string) error {
	cfgPath, err := resolveConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	workDir := workspaceDir
	if workDir == "" {
		workDir = filepath.Dir(cfgPath)
	}

	logger := pipeline.NewJSONLogger(os.Stderr, verbose)
	docker := toolchain.NewDocker(toolchain.NewExecRunner(logger))
	if !docker.Available(cmd.Context()) {
		return fmt.Errorf("docker is not available; ensure it is installed and running")
	}

	image := pinImage
	if image == "" {
		image = "python:" + cfg.Python.Version
	}

	if err := docker.Pin(cmd.Context(), workDir, image); err != nil {
		return fmt.Errorf("pinning requirements: %w", err)
	}

	fmt.Printf("Pinned requirements written to %s\n", filepath.Join(workDir, "requirements.txt"))
	return nil
}
