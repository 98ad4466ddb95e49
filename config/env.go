package config

import "strings"

// CIEnv carries values injected by the CI platform rather than the config
// file: they change per build, not per project.
type CIEnv struct {
	CI        bool
	Branch    string
	Workspace string
}

// ReadCIEnv reads CI platform variables through the given lookup func.
// Branch names arrive as <remote>/<branch>; only the known remote prefix
// is stripped (origin/main -> main), never path segments of the branch
// name itself, so feature/main stays distinct from main.
func ReadCIEnv(getenv func(string) string) CIEnv {
	branch := strings.TrimPrefix(getenv("GIT_BRANCH"), "origin/")
	return CIEnv{
		CI:        getenv("CI") != "",
		Branch:    branch,
		Workspace: getenv("WORKSPACE"),
	}
}

// ApplyEnv overlays environment variables onto a loaded Config. Environment
// values win over file values so the CI server can inject per-deployment
// settings without touching the repository.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if v := getenv("LAYER_NAME"); v != "" {
		cfg.Layer.Name = v
	}
	if v := getenv("LAYER_DESCRIPTION"); v != "" {
		cfg.Layer.Description = v
	}
	if v := getenv("LAYER_LICENSE"); v != "" {
		cfg.Layer.License = v
	}
	if v := getenv("BUCKET_NAME"); v != "" {
		cfg.Publish.Bucket = v
	}
	if v := getenv("AWS_DEFAULT_REGION"); v != "" {
		cfg.Publish.Region = v
	}
	if v := getenv("UPDATER_FUNCTION_NAME"); v != "" {
		cfg.Publish.UpdaterFunction = v
	}
}
