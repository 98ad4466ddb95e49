package layer

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Archive zips the assembled layout rooted at rootDir into zipPath.
// Entry names are slash-separated and relative to rootDir, so the archive
// unpacks to python/lib/... as Lambda requires. Returns the archive size.
func Archive(rootDir, zipPath string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(zipPath), 0o755); err != nil {
		return 0, fmt.Errorf("creating artifact directory: %w", err)
	}

	out, err := os.Create(zipPath)
	if err != nil {
		return 0, fmt.Errorf("creating archive %s: %w", zipPath, err)
	}

	zw := zip.NewWriter(out)
	walkErr := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(rootDir, path)
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		hdr, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		hdr.Method = zip.Deflate

		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		_, err = io.Copy(w, f)
		f.Close()
		return err
	})
	if walkErr != nil {
		zw.Close()
		out.Close()
		return 0, fmt.Errorf("archiving %s: %w", rootDir, walkErr)
	}

	if err := zw.Close(); err != nil {
		out.Close()
		return 0, fmt.Errorf("finalizing archive: %w", err)
	}
	if err := out.Close(); err != nil {
		return 0, fmt.Errorf("writing archive: %w", err)
	}

	info, err := os.Stat(zipPath)
	if err != nil {
		return 0, fmt.Errorf("checking archive: %w", err)
	}
	return info.Size(), nil
}
