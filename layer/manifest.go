package layer

import (
	"encoding/json"
	"fmt"
	"os"
)

// Manifest records metadata about a built layer archive.
type Manifest struct {
	LayerName     string `json:"layer_name"`
	RunID         string `json:"run_id"`
	Branch        string `json:"branch,omitempty"`
	PythonVersion string `json:"python_version"`
	Archive       string `json:"archive"`
	SizeBytes     int64  `json:"size_bytes"`
	FileCount     int    `json:"file_count"`
	BuiltAt       string `json:"built_at"`

	Published       bool   `json:"published"`
	UploadedTo      string `json:"uploaded_to,omitempty"`
	LayerVersionArn string `json:"layer_version_arn,omitempty"`
	LayerVersion    int64  `json:"layer_version,omitempty"`
}

// WriteManifest writes the build manifest as JSON to the given path.
func WriteManifest(path string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling layer manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing layer manifest: %w", err)
	}
	return nil
}

// ReadManifest reads a build manifest from the given path.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading layer manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing layer manifest: %w", err)
	}
	return &m, nil
}
