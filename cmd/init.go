/*
Copyright © 2025 SubstantialCattle5, nilaysharan.com
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/substantialcattle5/ghanima/internal/config"
	"github.com/substantialcattle5/ghanima/internal/fs"
	"github.com/substantialcattle5/ghanima/internal/ui"
)

var (
	sourceRoot  string
	storageRoot string
	minFileSize int
	skipList    []string
	preserve    bool
	categories  []string
	forceInit   bool
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Bootstrap the Ghanima configuration file",
	Long: `Create the Ghanima configuration file and the storage root directory.

The configuration names the per-user source tree to scan, the storage root
that will hold consolidated content, and the scan policy (minimum file size,
skip patterns, target category folders).

Examples:
  # Default config at ~/.ghanima.yaml
  ghanima init --source "~/WeChat Files" --storage ~/ghanima-storage

  # Keep originals in place, only copy into storage
  ghanima init --source "~/WeChat Files" --storage ~/ghanima-storage --preserve

  # Skip partial downloads and thumbnails below 5 MB
  ghanima init --source "~/WeChat Files" --storage ~/ghanima-storage \
    --min-size 5 --skip .tmp --skip Thumb

  # Overwrite an existing configuration
  ghanima init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit(cmd)
	},
}

func runInit(cmd *cobra.Command) error {
	configPath, err := resolveConfigPath(cmd)
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); err == nil && !forceInit {
		confirmPrompt := promptui.Prompt{
			Label:     fmt.Sprintf("Configuration already exists at %s, overwrite", configPath),
			IsConfirm: true,
			Default:   "n",
		}
		if _, err := confirmPrompt.Run(); err != nil {
			if err == promptui.ErrAbort {
				fmt.Println("Init cancelled.")
				return nil
			}
			return fmt.Errorf("confirmation failed: %v", err)
		}
	}

	cfg := config.Default(sourceRoot, storageRoot)
	cfg.Settings.MinFileSize = minFileSize
	cfg.Settings.SkipPatterns = skipList
	cfg.Settings.PreserveOriginals = preserve
	if len(categories) > 0 {
		cfg.Settings.TargetFolders = categories
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %v", err)
	}

	if err := config.Save(configPath, cfg); err != nil {
		return fmt.Errorf("failed to write configuration: %v", err)
	}

	if err := fs.EnsureDirectory(cfg.StorageRoot()); err != nil {
		return fmt.Errorf("failed to create storage root: %v", err)
	}

	ui.PrintInitMessage(configPath, cfg)
	return nil
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&sourceRoot, "source", "~/WeChat Files", "Root directory holding one cache directory per user")
	initCmd.Flags().StringVar(&storageRoot, "storage", "~/ghanima-storage", "Root directory for consolidated storage")
	initCmd.Flags().IntVar(&minFileSize, "min-size", 1, "Minimum eligible file size in megabytes")
	initCmd.Flags().StringSliceVar(&skipList, "skip", nil, "Substring patterns; matching file names are never processed")
	initCmd.Flags().BoolVar(&preserve, "preserve", false, "Copy originals into storage instead of moving and linking")
	initCmd.Flags().StringSliceVar(&categories, "target-folders", nil, "Category subfolders to scan (default FileStorage,Image,Video)")
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing configuration without asking")
}
