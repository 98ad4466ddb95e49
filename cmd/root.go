// Package cmd implements the layerci CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile      string
	verbose      bool
	workspaceDir string
)

var rootCmd = &cobra.Command{
	Use:   "layerci",
	Short: "Build, publish, and roll out Lambda layers",
	Long:  "layerci builds a Python Lambda layer archive, publishes it, and retargets downstream functions to the newest layer version.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".layerci.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&workspaceDir, "workspace", "w", "", "workspace directory (defaults to $WORKSPACE, then the config file's directory)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(pinCmd)
	rootCmd.AddCommand(retargetCmd)
}

// SetVersionInfo sets the version and commit for display.
func SetVersionInfo(version, commit string) {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("layerci %s (commit: %s)\n", version, commit))
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
