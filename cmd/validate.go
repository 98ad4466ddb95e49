package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cr-imson-co/layer-updater/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the layerci config file",
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfgPath, err := resolveConfigPath()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	schemaErrs, err := config.ValidateYAML(data)
	if err != nil {
		return err
	}
	if len(schemaErrs) > 0 {
		for _, e := range schemaErrs {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", e)
		}
		return fmt.Errorf("config validation failed: %d error(s)", len(schemaErrs))
	}

	cfg, err := config.Parse(data)
	if err != nil {
		return err
	}

	fmt.Printf("Config valid: layer %s (python %s, runtimes %v)\n",
		cfg.Layer.Name, cfg.Python.Version, cfg.Layer.Runtimes)
	return nil
}
