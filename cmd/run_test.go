package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cr-imson-co/layer-updater/build"
	"github.com/cr-imson-co/layer-updater/pipeline"
	"github.com/cr-imson-co/layer-updater/toolchain"
)

// fakeRunner answers every toolchain invocation with a canned result, so the
// whole pipeline can run without Python installed.
type fakeRunner struct {
	results map[string]*toolchain.Result
	calls   []string
}

func (f *fakeRunner) Run(_ context.Context, c toolchain.Command) (*toolchain.Result, error) {
	key := strings.TrimSpace(c.Program + " " + strings.Join(c.Args, " "))
	f.calls = append(f.calls, key)
	if res, ok := f.results[key]; ok {
		return res, nil
	}
	return &toolchain.Result{}, nil
}

func healthyRunner() *fakeRunner {
	return &fakeRunner{results: map[string]*toolchain.Result{
		"python3 --version": {Stdout: "Python 3.8.10\n"},
	}}
}

const testLayerConfig = `
layer:
  name: crimsoncore
  source: src
python:
  version: "3.8"
publish:
  bucket: layer-bucket
  primary_branch: main
`

// setupWorkspace writes a minimal layer project and points the command's
// package state at it. All mutated state is restored on cleanup.
func setupWorkspace(t *testing.T, runner toolchain.Runner) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		".layerci.yaml":      testLayerConfig,
		"requirements.txt":   "boto3==1.14.0\n",
		"src/lambda_core.py": "CORE = True\n",
	}
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	origCfg, origWS, origBranch := cfgFile, workspaceDir, branchOverride
	origRunner, origPublish := newToolRunner, newPublishStage
	origSkip, origKeep := skipPublish, keepScratch
	t.Cleanup(func() {
		cfgFile, workspaceDir, branchOverride = origCfg, origWS, origBranch
		newToolRunner, newPublishStage = origRunner, origPublish
		skipPublish, keepScratch = origSkip, origKeep
	})

	cfgFile = filepath.Join(dir, ".layerci.yaml")
	workspaceDir = dir
	branchOverride = "feature/no-publish"
	skipPublish = false
	keepScratch = false
	newToolRunner = func(pipeline.Logger) toolchain.Runner { return runner }

	// CI platform variables would leak real credentials into the run.
	for _, v := range []string{"GIT_BRANCH", "WORKSPACE", "GITLAB_URL", "BUCKET_NAME", "LAYER_NAME"} {
		t.Setenv(v, "")
	}

	return dir
}

func TestRunPipeline_NonPrimaryBranch(t *testing.T) {
	runner := healthyRunner()
	dir := setupWorkspace(t, runner)

	newPublishStage = func() *build.PublishStage {
		return &build.PublishStage{
			Clients: func(context.Context, string) (build.ObjectStore, build.LayerPublisher, error) {
				t.Fatal("AWS clients created on a non-primary branch")
				return nil, nil, nil
			},
		}
	}

	if err := runPipeline(runCmd, nil); err != nil {
		t.Fatalf("runPipeline() error: %v", err)
	}

	// Exactly one artifact: the layer archive, plus its manifest alongside.
	if _, err := os.Stat(filepath.Join(dir, "dist", "crimsoncore-lambda-layer.zip")); err != nil {
		t.Errorf("layer archive missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "dist", build.ManifestFileName)); err != nil {
		t.Errorf("manifest missing: %v", err)
	}

	// Scratch space is removed after every outcome; artifacts survive.
	if _, err := os.Stat(filepath.Join(dir, ".layerci")); !os.IsNotExist(err) {
		t.Error("scratch directory not cleaned up")
	}
	// The lock is released when the run finishes.
	if _, err := os.Stat(filepath.Join(dir, ".layerci.lock")); !os.IsNotExist(err) {
		t.Error("pipeline lock not released")
	}

	wantCalls := []string{
		"python3 --version",
		"python3 -m pip install --disable-pip-version-check -r requirements.txt",
		"python3 -m pylint src",
		"python3 -m pytest tests",
	}
	for i, want := range wantCalls {
		if i >= len(runner.calls) || runner.calls[i] != want {
			t.Fatalf("toolchain calls = %v, want prefix %v", runner.calls, wantCalls)
		}
	}
}

func TestRunPipeline_UnstableTests(t *testing.T) {
	runner := healthyRunner()
	runner.results["python3 -m pytest tests"] = &toolchain.Result{ExitCode: 1, Stdout: "1 failed\n"}
	dir := setupWorkspace(t, runner)
	skipPublish = true

	err := runPipeline(runCmd, nil)
	if err == nil {
		t.Fatal("runPipeline() error = nil, want unstable")
	}
	if !errors.Is(err, pipeline.ErrUnstable) {
		t.Errorf("error = %v, want ErrUnstable", err)
	}
	if !strings.Contains(err.Error(), "unstable") {
		t.Errorf("error message %q does not name the outcome", err)
	}

	// Failing tests stop the run before anything is archived.
	if _, err := os.Stat(filepath.Join(dir, "dist", "crimsoncore-lambda-layer.zip")); !os.IsNotExist(err) {
		t.Error("archive produced despite failing tests")
	}
	// Cleanup runs after failures too.
	if _, err := os.Stat(filepath.Join(dir, ".layerci")); !os.IsNotExist(err) {
		t.Error("scratch directory not cleaned up after an unstable run")
	}
}

func TestRunPipeline_BadInterpreter(t *testing.T) {
	runner := &fakeRunner{results: map[string]*toolchain.Result{
		"python3 --version": {Stdout: "Python 3.11.2\n"},
	}}
	setupWorkspace(t, runner)
	skipPublish = true

	if err := runPipeline(runCmd, nil); err == nil {
		t.Fatal("runPipeline() error = nil, want version mismatch")
	}
	// Prepare fails before any later stage runs.
	if len(runner.calls) != 1 {
		t.Errorf("toolchain calls = %v, want only the version probe", runner.calls)
	}
}

func TestRunPipeline_SchemaRejectsConfig(t *testing.T) {
	setupWorkspace(t, healthyRunner())
	dir := filepath.Dir(cfgFile)
	bad := "layer:\n  name: crimsoncore\n  source: src\npython:\n  version: \"3.8\"\nunknown_section: true\n"
	if err := os.WriteFile(filepath.Join(dir, ".layerci.yaml"), []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := runPipeline(runCmd, nil); err == nil {
		t.Error("runPipeline() error = nil for a config with unknown keys")
	}
}
