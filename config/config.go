// Package config holds configuration types for .layerci.yaml.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level .layerci.yaml configuration.
type Config struct {
	Layer   LayerConfig   `yaml:"layer"`
	Python  PythonConfig  `yaml:"python"`
	QA      QAConfig      `yaml:"qa,omitempty"`
	Publish PublishConfig `yaml:"publish,omitempty"`
	Notify  NotifyConfig  `yaml:"notify,omitempty"`
}

// LayerConfig describes the Lambda layer being built.
type LayerConfig struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	License     string   `yaml:"license,omitempty"`
	Source      string   `yaml:"source"`
	Runtimes    []string `yaml:"runtimes,omitempty"`
}

// PythonConfig selects the interpreter the QA and layout stages target.
type PythonConfig struct {
	Version string `yaml:"version"`
	Binary  string `yaml:"binary,omitempty"`
}

// QAConfig configures the dependency install, lint, and test steps.
type QAConfig struct {
	Requirements string `yaml:"requirements,omitempty"`
	Lint         *bool  `yaml:"lint,omitempty"`
	Tests        string `yaml:"tests,omitempty"`
}

// PublishConfig configures the branch-gated archive stage.
type PublishConfig struct {
	Bucket          string `yaml:"bucket,omitempty"`
	KeyPrefix       string `yaml:"key_prefix,omitempty"`
	Region          string `yaml:"region,omitempty"`
	UpdaterFunction string `yaml:"updater_function,omitempty"`
	PrimaryBranch   string `yaml:"primary_branch,omitempty"`
}

// NotifyConfig selects the chat channels notified about run outcomes.
type NotifyConfig struct {
	Channels []string `yaml:"channels,omitempty"`
}

// Load reads and parses a .layerci.yaml file from the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading layerci config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses raw YAML bytes into a Config, validates required fields, and
// applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing layerci config: %w", err)
	}

	if cfg.Layer.Name == "" {
		return nil, fmt.Errorf("layerci config: layer.name is required")
	}
	if cfg.Layer.Source == "" {
		return nil, fmt.Errorf("layerci config: layer.source is required")
	}
	if cfg.Python.Version == "" {
		return nil, fmt.Errorf("layerci config: python.version is required")
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Python.Binary == "" {
		c.Python.Binary = "python3"
	}
	if c.QA.Requirements == "" {
		c.QA.Requirements = "requirements.txt"
	}
	if c.QA.Tests == "" {
		c.QA.Tests = "tests"
	}
	if c.Publish.KeyPrefix == "" {
		c.Publish.KeyPrefix = "layers/"
	}
	if c.Publish.UpdaterFunction == "" {
		c.Publish.UpdaterFunction = "layer_updater"
	}
	if c.Publish.PrimaryBranch == "" {
		c.Publish.PrimaryBranch = "main"
	}
	if len(c.Layer.Runtimes) == 0 {
		c.Layer.Runtimes = []string{"python" + c.Python.Version}
	}
}

// LintEnabled reports whether the lint step should run. It defaults to on.
func (c *Config) LintEnabled() bool {
	return c.QA.Lint == nil || *c.QA.Lint
}

// ArchiveName returns the artifact filename, e.g. crimsoncore-lambda-layer.zip.
func (c *Config) ArchiveName() string {
	return c.Layer.Name + "-lambda-layer.zip"
}

// ArchiveKey returns the S3 object key the artifact is uploaded under.
func (c *Config) ArchiveKey() string {
	return c.Publish.KeyPrefix + c.ArchiveName()
}

// Runtime returns the primary target runtime, e.g. python3.8.
func (c *Config) Runtime() string {
	return c.Layer.Runtimes[0]
}
