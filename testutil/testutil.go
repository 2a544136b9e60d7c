// Package testutil provides common testing utilities for Ghanima
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// CreateTestFile creates a test file with specified content
func CreateTestFile(t *testing.T, dir, filename, content string) string {
	t.Helper()
	filePath := filepath.Join(dir, filename)

	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	if err := os.WriteFile(filePath, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", filePath, err)
	}

	return filePath
}

// CreateUserCache lays out a fake per-user cache directory with one target
// category folder and returns the category path.
func CreateUserCache(t *testing.T, sourceRoot, user, category string) string {
	t.Helper()
	dir := filepath.Join(sourceRoot, user, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("Failed to create user cache %s: %v", dir, err)
	}
	return dir
}

// Backdate sets a path's atime and mtime to the given timestamp.
func Backdate(t *testing.T, path string, stamp time.Time) {
	t.Helper()
	if err := os.Chtimes(path, stamp, stamp); err != nil {
		t.Fatalf("Failed to backdate %s: %v", path, err)
	}
}
