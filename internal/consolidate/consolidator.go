/*
Copyright © 2025 SubstantialCattle5, nilaysharan.com
*/

// Package consolidate implements the end-to-end rewrite: fingerprint each
// eligible cache file, register or reuse a storage object, replace the
// source with a symlink, and persist the mapping.
package consolidate

import (
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/substantialcattle5/ghanima/internal/config"
	"github.com/substantialcattle5/ghanima/internal/fingerprint"
	"github.com/substantialcattle5/ghanima/internal/fs"
	"github.com/substantialcattle5/ghanima/internal/index"
	"github.com/substantialcattle5/ghanima/internal/names"
	"github.com/substantialcattle5/ghanima/internal/policy"
	"github.com/substantialcattle5/ghanima/internal/progress"
)

// RunResult summarizes one consolidation pass.
type RunResult struct {
	RunID          string
	FilesProcessed int
	FilesSkipped   int
	BytesReclaimed int64
	Errors         int
	StartedAt      time.Time
	FinishedAt     time.Time
}

// Consolidator drives one run over all user directories. It owns no shared
// mutable state besides the index handle; at most one run may be active
// against a given storage root and index at a time, because the
// move/replace-with-link sequence is not atomic.
type Consolidator struct {
	cfg      *config.Config
	index    *index.Index
	policy   *policy.ScanPolicy
	progress *progress.Manager
}

// New builds a Consolidator. pm may be nil; progress reporting never changes
// run behavior.
func New(cfg *config.Config, ix *index.Index, scan *policy.ScanPolicy, pm *progress.Manager) *Consolidator {
	return &Consolidator{
		cfg:      cfg,
		index:    ix,
		policy:   scan,
		progress: pm,
	}
}

// Run executes one synchronous, single-threaded consolidation pass. Per-file
// failures are counted and skipped; index failures abort the run, since the
// index's integrity takes precedence over progress.
func (c *Consolidator) Run() (*RunResult, error) {
	result := &RunResult{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}

	storageRoot := c.cfg.StorageRoot()
	if err := fs.EnsureDirectory(storageRoot); err != nil {
		return result, fmt.Errorf("create storage root: %w", err)
	}

	userDirs, err := fs.ListUserDirectories(c.cfg.SourceRoot())
	if err != nil {
		return result, err
	}

	c.progress.InitDirectoryProgress(len(userDirs), "Consolidating user caches")
	defer c.progress.Finish()

	for _, userDir := range userDirs {
		if !c.policy.ShouldEnterDirectory(userDir) {
			c.progress.DirectoryDone()
			continue
		}
		c.progress.DirectoryEntered(userDir)

		for _, target := range c.cfg.Settings.TargetFolders {
			targetDir := filepath.Join(userDir, target)
			info, err := os.Stat(targetDir)
			if err != nil || !info.IsDir() {
				continue
			}
			if !c.policy.ShouldEnterDirectory(targetDir) {
				continue
			}

			storageDir := filepath.Join(storageRoot, target)
			if err := fs.EnsureDirectory(storageDir); err != nil {
				return result, fmt.Errorf("create storage category %s: %w", target, err)
			}

			if err := c.consolidateTree(targetDir, storageDir, result); err != nil {
				return result, err
			}
		}

		c.progress.DirectoryDone()
	}

	result.FinishedAt = time.Now()
	return result, nil
}

// consolidateTree walks one category subtree. Only a fatal (index or walk
// infrastructure) error is returned; file-level trouble is absorbed into the
// result counters.
func (c *Consolidator) consolidateTree(targetDir, storageDir string, result *RunResult) error {
	return filepath.WalkDir(targetDir, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, the walk continues.
			c.progress.FileSkippedVerbose(path, err)
			result.Errors++
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			// Symlinks from earlier runs land here too.
			return nil
		}

		info, ierr := d.Info()
		if ierr != nil {
			info = nil
		}
		if !c.policy.ShouldProcessFile(path, info) {
			result.FilesSkipped++
			return nil
		}

		return c.consolidateFile(path, storageDir, result)
	})
}

// consolidateFile performs the rewrite protocol for a single source file.
// It returns an error only for index failures, which abort the run.
func (c *Consolidator) consolidateFile(srcPath, storageDir string, result *RunResult) error {
	digest, err := fingerprint.File(srcPath)
	if err != nil {
		c.progress.FileSkippedVerbose(srcPath, err)
		result.Errors++
		return nil
	}

	dest, found, err := c.index.LookupStorageCopy(digest, storageDir)
	if err != nil {
		return err
	}

	preserve := c.cfg.Settings.PreserveOriginals

	if found {
		// The content already has a canonical copy; the source file's bytes
		// are about to be reclaimed by the relink below.
		if !preserve {
			if info, serr := os.Lstat(srcPath); serr == nil {
				result.BytesReclaimed += info.Size()
			}
		}
	} else {
		name := names.ResolveStorageName(filepath.Base(srcPath), digest)
		dest = filepath.Join(storageDir, name)

		if preserve {
			err = fs.CopyFile(srcPath, dest)
		} else {
			err = fs.MoveFile(srcPath, dest)
		}
		if err != nil {
			c.progress.FileSkippedVerbose(srcPath, err)
			result.Errors++
			return nil
		}

		// The storage object gets its own row so future runs resolve this
		// digest without touching the filesystem.
		mtime := time.Now()
		if info, serr := os.Stat(dest); serr == nil {
			mtime = info.ModTime()
		}
		if err := c.index.Upsert(digest, dest, mtime); err != nil {
			return err
		}
	}

	if !preserve {
		if err := fs.ReplaceWithSymlink(srcPath, dest); err != nil {
			c.progress.FileSkippedVerbose(srcPath, err)
			result.Errors++
			return nil
		}
	}

	// Record the source path (not the storage path) for this processing
	// event, with the mtime observed at link time.
	mtime := time.Now()
	if info, serr := os.Stat(srcPath); serr == nil {
		mtime = info.ModTime()
	}
	if err := c.index.Upsert(digest, srcPath, mtime); err != nil {
		return err
	}

	result.FilesProcessed++
	return nil
}
