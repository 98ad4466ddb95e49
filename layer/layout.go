// Package layer assembles and archives the Lambda layer directory layout.
package layer

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SitePackagesPath returns the directory layout Lambda expects for a Python
// layer, e.g. python/lib/python3.8/site-packages/crimsoncore.
func SitePackagesPath(pythonVersion, layerName string) string {
	return filepath.Join("python", "lib", "python"+pythonVersion, "site-packages", layerName)
}

// Assemble copies the layer's Python sources from srcDir into the
// site-packages layout under destRoot. Only .py files are packaged. It
// returns the number of files copied.
func Assemble(srcDir, destRoot, pythonVersion, layerName string) (int, error) {
	target := filepath.Join(destRoot, SitePackagesPath(pythonVersion, layerName))
	if err := os.MkdirAll(target, 0o755); err != nil {
		return 0, fmt.Errorf("creating layer layout: %w", err)
	}

	count := 0
	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".py") {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		dest := filepath.Join(target, rel)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		if err := copyFile(path, dest); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("assembling layer from %s: %w", srcDir, err)
	}
	if count == 0 {
		return 0, fmt.Errorf("no python sources found under %s", srcDir)
	}
	return count, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
