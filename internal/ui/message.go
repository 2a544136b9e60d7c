package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/substantialcattle5/ghanima/internal/config"
	"github.com/substantialcattle5/ghanima/internal/consolidate"
	"github.com/substantialcattle5/ghanima/internal/index"
	"github.com/substantialcattle5/ghanima/util"
)

// PrintInitMessage reports a freshly bootstrapped configuration.
func PrintInitMessage(configPath string, cfg *config.Config) {
	separator := strings.Repeat("─", 50)

	fmt.Println("\n✅ Ghanima configuration created!")
	fmt.Println(separator)

	fmt.Println("📂 Paths:")
	fmt.Printf("  • Config:   %s\n", configPath)
	fmt.Printf("  • Source:   %s\n", cfg.Paths.Source)
	fmt.Printf("  • Storage:  %s\n", cfg.Paths.Storage)

	fmt.Println("\n⚙️  Settings:")
	fmt.Printf("  • Min file size:  %d MB\n", cfg.Settings.MinFileSize)
	fmt.Printf("  • Categories:     %s\n", strings.Join(cfg.Settings.TargetFolders, ", "))
	fmt.Printf("  • Preserve mode:  %v\n", cfg.Settings.PreserveOriginals)

	fmt.Println("\n" + separator)
	fmt.Println("🚀 Next Steps:")
	fmt.Println("\n1️⃣ Review the configuration file and adjust paths if needed.")
	fmt.Println("\n2️⃣ Run a consolidation pass:")
	fmt.Println("   ghanima run")
	fmt.Println("\n3️⃣ Inspect the results:")
	fmt.Println("   ghanima stats")
}

// PrintRunSummary reports the outcome of one consolidation pass.
func PrintRunSummary(result *consolidate.RunResult) {
	separator := strings.Repeat("─", 50)

	fmt.Println("\nRun Summary")
	fmt.Println(separator)
	fmt.Printf("%s Run ID:          %s\n", color.GreenString("✓"), result.RunID)
	fmt.Printf("%s Files processed: %d\n", color.GreenString("✓"), result.FilesProcessed)
	fmt.Printf("%s Files skipped:   %d\n", color.GreenString("✓"), result.FilesSkipped)
	fmt.Printf("%s Space reclaimed: %s\n", color.GreenString("✓"),
		util.HumanReadableSize(result.BytesReclaimed))
	fmt.Printf("%s Duration:        %s\n", color.GreenString("✓"),
		result.FinishedAt.Sub(result.StartedAt).Round(10*time.Millisecond).String())

	if result.Errors > 0 {
		fmt.Printf("%s Skipped with errors: %d (see --verbose for details)\n",
			color.YellowString("⚠"), result.Errors)
	}
}

// PrintIndexStats reports hash-index statistics.
func PrintIndexStats(stats *index.Stats, savedBytes int64) {
	separator := strings.Repeat("─", 50)

	fmt.Println("\nHash Index Statistics")
	fmt.Println(separator)
	fmt.Printf("Distinct digests:   %d\n", stats.DistinctDigests)
	fmt.Printf("Tracked paths:      %d\n", stats.TotalPaths)
	fmt.Printf("Storage objects:    %d\n", stats.StorageObjects)
	fmt.Printf("Linked sources:     %d\n", stats.LinkedSources)
	fmt.Printf("Estimated savings:  %s\n", color.GreenString(util.HumanReadableSize(savedBytes)))
}
