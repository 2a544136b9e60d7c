package progress

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Options configures progress reporting behavior
type Options struct {
	Quiet   bool
	Verbose bool
}

// Manager reports per-directory progress for a consolidation run. All
// methods are safe on a nil Manager, and quiet mode suppresses the bar
// entirely; neither changes what the run does.
type Manager struct {
	options Options
	dirBar  *progressbar.ProgressBar
}

// NewManager creates a new progress manager
func NewManager(options Options) *Manager {
	return &Manager{options: options}
}

// InitDirectoryProgress initializes the bar over the user directories a run
// will visit.
func (pm *Manager) InitDirectoryProgress(totalDirs int, description string) {
	if pm == nil || pm.options.Quiet {
		return
	}

	pm.dirBar = progressbar.NewOptions(totalDirs,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(50),
		progressbar.OptionThrottle(65),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			// #nosec G104 - progress bar completion message is not critical
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
	)
}

// DirectoryEntered announces the directory being scanned (verbose only).
func (pm *Manager) DirectoryEntered(dir string) {
	if pm == nil || !pm.options.Verbose || pm.options.Quiet {
		return
	}
	fmt.Fprintf(os.Stderr, "Scanning %s\n", dir)
}

// DirectoryDone advances the bar by one user directory.
func (pm *Manager) DirectoryDone() {
	if pm == nil || pm.dirBar == nil {
		return
	}
	// #nosec G104 - bar advancement failure is cosmetic
	pm.dirBar.Add(1)
}

// FileSkippedVerbose reports a skipped file when verbose output is on.
func (pm *Manager) FileSkippedVerbose(path string, reason error) {
	if pm == nil || !pm.options.Verbose || pm.options.Quiet {
		return
	}
	fmt.Fprintf(os.Stderr, "Warning: skipping %s: %v\n", path, reason)
}

// Finish completes the bar if one is active.
func (pm *Manager) Finish() {
	if pm == nil || pm.dirBar == nil {
		return
	}
	// #nosec G104
	pm.dirBar.Finish()
}
