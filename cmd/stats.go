/*
Copyright © 2025 SubstantialCattle5, nilaysharan.com
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/substantialcattle5/ghanima/internal/config"
	"github.com/substantialcattle5/ghanima/internal/index"
	"github.com/substantialcattle5/ghanima/internal/ui"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show hash-index statistics",
	Long: `Display statistics straight from the hash index:

- Number of distinct content digests
- Total tracked paths (storage objects plus linked sources)
- Estimated space reclaimed by deduplication

Example:
  ghanima stats`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := resolveConfigPath(cmd)
		if err != nil {
			return err
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %v", err)
		}

		ix, err := index.Open(cfg.IndexPath())
		if err != nil {
			return fmt.Errorf("failed to open hash index: %v", err)
		}
		defer ix.Close()

		stats, err := ix.CollectStats(cfg.StorageRoot())
		if err != nil {
			return fmt.Errorf("failed to collect statistics: %v", err)
		}

		saved, err := estimateSavedBytes(ix, cfg.StorageRoot())
		if err != nil {
			return fmt.Errorf("failed to estimate savings: %v", err)
		}

		ui.PrintIndexStats(stats, saved)
		return nil
	},
}

// estimateSavedBytes sums, per digest, the storage object's size times the
// number of source copies beyond the first: every duplicate past the first
// now shares the single canonical copy. Storage objects that cannot be
// stat'ed (moved or deleted out-of-band) are skipped.
func estimateSavedBytes(ix *index.Index, storageRoot string) (int64, error) {
	storage, sources, err := ix.StoragePathsByDigest(storageRoot)
	if err != nil {
		return 0, err
	}

	var saved int64
	for digest, path := range storage {
		count := sources[digest]
		if count <= 1 {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		saved += (count - 1) * info.Size()
	}

	return saved, nil
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
