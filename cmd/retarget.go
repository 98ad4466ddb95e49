package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cr-imson-co/layer-updater/cloud"
	"github.com/cr-imson-co/layer-updater/config"
	"github.com/cr-imson-co/layer-updater/notify"
	"github.com/cr-imson-co/layer-updater/pipeline"
	"github.com/cr-imson-co/layer-updater/updater"
)

var (
	retargetLayer     string
	retargetRuntime   string
	retargetFunctions []string
)

var retargetCmd = &cobra.Command{
	Use:   "retarget",
	Short: "Point functions at the newest layer version",
	Long:  "Retarget finds every Lambda function on the given runtime that uses the layer and rewrites its layer list to the newest published version, preserving layer order.",
	RunE:  runRetarget,
}

func init() {
	retargetCmd.Flags().StringVar(&retargetLayer, "layer", "", "layer name (defaults to layer.name from config)")
	retargetCmd.Flags().StringVar(&retargetRuntime, "runtime", "", "target runtime, e.g. python3.8 (defaults to the config's primary runtime)")
	retargetCmd.Flags().StringSliceVar(&retargetFunctions, "function", nil, "restrict to specific function names (repeatable)")
}

func runRetarget(cmd *cobra.Command, args []string) error {
	logger := pipeline.NewJSONLogger(os.Stderr, verbose)

	layerName, runtime, region, notifiers := retargetDefaults(logger)
	if layerName == "" {
		return fmt.Errorf("a layer name to update must be specified (--layer)")
	}
	if runtime == "" {
		return fmt.Errorf("a target runtime must be specified (--runtime)")
	}

	ctx := cmd.Context()
	awsCfg, err := cloud.LoadConfig(ctx, region)
	if err != nil {
		return err
	}

	u := updater.New(awsCfg, logger)
	report, err := u.Retarget(ctx, updater.Request{
		LayerName:     layerName,
		Runtime:       runtime,
		FunctionNames: retargetFunctions,
	})
	if err != nil {
		// Best-effort emergency flare before surfacing the error.
		notify.Broadcast(ctx, notifiers, notify.Message{
			Level: notify.LevelError,
			Text:  fmt.Sprintf("λ! %s retarget failed: %v", layerName, err),
		}, logger)
		return fmt.Errorf("retargeting %s: %w", layerName, err)
	}

	fmt.Printf("Retarget complete: %d examined, %d using layer, %d updated to v%d\n",
		report.Examined, report.Matched, len(report.Updated), report.BestVersion.Version)
	if len(report.Updated) > 0 {
		fmt.Printf("Updated: %s\n", strings.Join(report.Updated, ", "))
	}
	return nil
}

// retargetDefaults pulls fallback values from the config file when one is
// present; retarget also works standalone with explicit flags.
func retargetDefaults(logger pipeline.Logger) (layerName, runtime, region string, notifiers []notify.Notifier) {
	layerName = retargetLayer
	runtime = retargetRuntime

	cfgPath, err := resolveConfigPath()
	if err != nil {
		return layerName, runtime, "", nil
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Debug("no usable config for retarget defaults", map[string]any{"error": err.Error()})
		if v := os.Getenv("AWS_DEFAULT_REGION"); v != "" {
			region = v
		}
		return layerName, runtime, region, nil
	}
	config.ApplyEnv(cfg, os.Getenv)

	if layerName == "" {
		layerName = cfg.Layer.Name
	}
	if runtime == "" {
		runtime = cfg.Runtime()
	}
	region = cfg.Publish.Region
	return layerName, runtime, region, newReporter(cfg, logger, os.Getenv).notifiers
}
