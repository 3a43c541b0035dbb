package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Disk stores objects as plain files under a data directory.
type Disk struct {
	dataDir string
}

// NewDisk creates the data directory if needed.
func NewDisk(dataDir string) (*Disk, error) {
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}
	return &Disk{dataDir: dataDir}, nil
}

func (d *Disk) DataDir() string {
	return d.dataDir
}

// Save writes r to a temp file, fsyncs and renames it into place so a crash
// mid-write never leaves a half-written object under the final path.
func (d *Disk) Save(_ context.Context, path string, r io.Reader) (int64, error) {
	fullPath := filepath.Join(d.dataDir, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return 0, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	tmpPath := fullPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}

	size, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to write data: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return 0, fmt.Errorf("fsync failed: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to rename into place: %w", err)
	}
	return size, nil
}

func (d *Disk) Open(_ context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(d.dataDir, filepath.FromSlash(path)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("object not found: %s", path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}

// Remove deletes the file. A missing file is a no-op success.
func (d *Disk) Remove(_ context.Context, path string) error {
	err := os.Remove(filepath.Join(d.dataDir, filepath.FromSlash(path)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

func (d *Disk) Exists(_ context.Context, path string) bool {
	_, err := os.Stat(filepath.Join(d.dataDir, filepath.FromSlash(path)))
	return err == nil
}

// List walks the tree under prefix and returns relative keys.
func (d *Disk) List(_ context.Context, prefix string) ([]string, error) {
	root := filepath.Join(d.dataDir, filepath.FromSlash(prefix))
	var keys []string

	err := filepath.WalkDir(root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(d.dataDir, p)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}
	return keys, nil
}
