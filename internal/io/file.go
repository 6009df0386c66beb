package ioutils

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// PartSuffix marks temporary files of in-progress downloads.
const PartSuffix = ".part"

// FileExists reports whether path could be stat'ed. A path that cannot be
// inspected (permission denied, a file in place of a parent directory) is
// not reported as existing.
//
// Example:
//
//	if FileExists(scene.Path) {
//	    // skip download
//	}
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it into place, so readers never observe a partly written file.
//
// The file is created with mode 0644. On failure no file is left behind.
//
// Example:
//
//	err := WriteFileAtomic("/data/2024-01-01/manifest.txt", []byte(urls))
func WriteFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*"+PartSuffix)
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// RemoveStaleParts deletes leftover temporary download files in dir, as
// left by a process that was killed mid-transfer. Only hidden files ending
// in PartSuffix and not modified for longer than olderThan are touched, so
// the live transfer of another process sharing dir is kept. It returns the
// removed file names.
//
// Example:
//
//	removed, err := RemoveStaleParts("daily_sar_images/2024-01-01", time.Minute)
func RemoveStaleParts(dir string, olderThan time.Duration) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	cutoff := time.Now().Add(-olderThan)
	var removed []string
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || !strings.HasPrefix(name, ".") || !strings.HasSuffix(name, PartSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return removed, err
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return removed, err
		}
		removed = append(removed, name)
	}
	return removed, nil
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
//
// Example:
//
//	err := EnsureDir("daily_sar_images/2024-01-01")
//	// Creates daily_sar_images and daily_sar_images/2024-01-01 if needed
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
