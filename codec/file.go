package codec

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

// ReadFile reads a whole payload file. A missing file is reported as
// ErrNotFound with the path in the message.
func ReadFile(fsys afero.Fs, path string) ([]byte, error) {
	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// CheckTarget reports whether path may be written. A directory is always
// rejected with ErrIsDir; an existing file is rejected with ErrConflict
// unless overwrite is set. It returns whether the file already exists.
func CheckTarget(fsys afero.Fs, path string, overwrite bool) (bool, error) {
	info, err := fsys.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return true, fmt.Errorf("%w: %s", ErrIsDir, path)
	}
	if !overwrite {
		return true, fmt.Errorf("%w: %s already exists", ErrConflict, path)
	}
	return true, nil
}

// WriteFile writes data to path through a temporary file in the same
// directory that is renamed into place once fully written and synced.
// Parent directories are created as needed.
func WriteFile(fsys afero.Fs, path string, data []byte, overwrite bool) error {
	if _, err := CheckTarget(fsys, path, overwrite); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(fsys, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = fsys.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = fsys.Remove(tmpPath)
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = fsys.Remove(tmpPath)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	if err := fsys.Rename(tmpPath, path); err != nil {
		_ = fsys.Remove(tmpPath)
		return fmt.Errorf("failed to rename %s into place: %w", path, err)
	}
	return nil
}
