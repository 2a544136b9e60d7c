// Package policy decides which directories and files a consolidation run
// visits. Both checks fail open: when metadata cannot be read the policy
// answers "process", preferring reprocessing over missing new content.
package policy

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ScanPolicy holds the thresholds for one consolidation run. It is built
// once from the resolved configuration and read-only for the whole run.
type ScanPolicy struct {
	// LastRun is the timestamp of the last fully completed run, or nil when
	// no run has completed yet.
	LastRun *time.Time

	// MinFileSize is the smallest eligible file size in bytes. A file of
	// exactly MinFileSize is eligible.
	MinFileSize int64

	// SkipPatterns are substrings; a file whose base name contains any of
	// them is never processed.
	SkipPatterns []string
}

// ShouldEnterDirectory reports whether dir needs to be revisited. Without a
// prior run it is always true; otherwise true iff the directory's own mtime
// is strictly after the last run. Only the directory's own mtime is checked,
// never its descendants': a file added inside an unchanged parent whose mtime
// was not bumped will be skipped until the parent changes.
func (p *ScanPolicy) ShouldEnterDirectory(dir string) bool {
	if p.LastRun == nil {
		return true
	}

	info, err := os.Stat(dir)
	if err != nil {
		// Fail open on metadata errors.
		return true
	}

	return info.ModTime().After(*p.LastRun)
}

// ShouldProcessFile reports whether the file at path is eligible. info may be
// nil, in which case the file is stat'ed here; a stat failure fails open.
func (p *ScanPolicy) ShouldProcessFile(path string, info os.FileInfo) bool {
	if info == nil {
		var err error
		info, err = os.Stat(path)
		if err != nil {
			return true
		}
	}

	if info.Size() < p.MinFileSize {
		return false
	}

	name := filepath.Base(path)
	for _, pattern := range p.SkipPatterns {
		if strings.Contains(name, pattern) {
			return false
		}
	}

	return true
}
