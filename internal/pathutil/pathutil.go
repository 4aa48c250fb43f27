// Package pathutil provides utilities for path resolution and inspection.
package pathutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ExpandTilde expands ~ to the user's home directory.
// Returns the path unchanged if it doesn't start with ~.
func ExpandTilde(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if path == "~" {
		return os.UserHomeDir()
	}

	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}

	return path, nil
}

// Absolute expands ~ and makes path absolute relative to the working directory.
func Absolute(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path is empty")
	}
	expanded, err := ExpandTilde(path)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return abs, nil
}

// Exists returns true if the path exists on the filesystem.
// A dangling symlink counts as existing.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// ExistsAndIsDir returns true if the path exists and is a directory.
func ExistsAndIsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ExistsAndIsFile returns true if the path exists and is a regular file.
// Symlinks are followed.
func ExistsAndIsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// DirSize sums the sizes of regular files under root. Symlinks are not
// followed and do not count.
func DirSize(root string) (int64, error) {
	var total int64
	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to measure %s: %w", root, err)
	}
	return total, nil
}
