package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/substantialcattle5/ghanima/internal/constants"
)

// EnsureDirectory ensures a directory exists, creating it if necessary
func EnsureDirectory(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, constants.StandardDirPerms)
	} else if err != nil {
		return err
	}
	return nil
}

// ListUserDirectories returns the per-user cache directories directly under
// sourceRoot, sorted by name for a stable visit order.
func ListUserDirectories(sourceRoot string) ([]string, error) {
	entries, err := os.ReadDir(sourceRoot)
	if err != nil {
		return nil, fmt.Errorf("read source root %s: %w", sourceRoot, err)
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, filepath.Join(sourceRoot, entry.Name()))
		}
	}
	sort.Strings(dirs)

	return dirs, nil
}

// IsRegularFile reports whether path currently exists as a regular file,
// without following symlinks.
func IsRegularFile(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode().IsRegular()
}

// IsSymlink reports whether path is a symbolic link.
func IsSymlink(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}
