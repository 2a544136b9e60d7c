/*
Copyright © 2025 SubstantialCattle5, nilaysharan.com
*/
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/substantialcattle5/ghanima/internal/config"
	"github.com/substantialcattle5/ghanima/internal/consolidate"
	"github.com/substantialcattle5/ghanima/internal/index"
	"github.com/substantialcattle5/ghanima/internal/policy"
	"github.com/substantialcattle5/ghanima/internal/progress"
	"github.com/substantialcattle5/ghanima/internal/ui"
)

var rescanAll bool

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one consolidation pass",
	Long: `Walk every user directory under the configured source root, fingerprint
eligible media files, consolidate distinct content into the storage tree, and
replace duplicate copies with symbolic links.

Directories whose modification time predates the last completed run are
skipped; use --full to revisit everything regardless.

Examples:
  ghanima run
  ghanima run --full
  ghanima run --quiet`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := resolveConfigPath(cmd)
		if err != nil {
			return err
		}

		quiet, _ := cmd.Flags().GetBool("quiet")
		verbose, _ := cmd.Flags().GetBool("verbose")

		result, err := runConsolidation(configPath, progress.Options{
			Quiet:   quiet,
			Verbose: verbose,
		})
		if err != nil {
			return err
		}

		if !quiet {
			ui.PrintRunSummary(result)
		}
		return nil
	},
}

// runConsolidation loads the configuration, performs one pass, and persists
// the last-run timestamp after a fully successful run.
func runConsolidation(configPath string, opts progress.Options) (*consolidate.RunResult, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %v", err)
	}

	// A missing or unparseable timestamp yields nil, which revisits
	// everything (fail open).
	lastRun := cfg.LastRunTime()
	if rescanAll {
		lastRun = nil
	}

	ix, err := index.Open(cfg.IndexPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open hash index: %v", err)
	}
	defer ix.Close()

	scan := &policy.ScanPolicy{
		LastRun:      lastRun,
		MinFileSize:  cfg.MinFileSizeBytes(),
		SkipPatterns: cfg.Settings.SkipPatterns,
	}

	consolidator := consolidate.New(cfg, ix, scan, progress.NewManager(opts))
	result, err := consolidator.Run()
	if err != nil {
		return result, err
	}

	// Per-file errors do not block the timestamp; only a fatal error does.
	cfg.SetLastRun(time.Now())
	if err := config.Save(configPath, cfg); err != nil {
		return result, fmt.Errorf("run completed but failed to record last-run timestamp: %v", err)
	}

	return result, nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&rescanAll, "full", false, "Ignore the last-run timestamp and revisit every directory")
}
