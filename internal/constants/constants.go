package constants

// File permissions
const (
	StandardDirPerms  = 0o755 // Standard directory permissions
	StandardFilePerms = 0o644 // Standard file permissions
)

// Configuration defaults
const (
	DefaultConfigFileName = ".ghanima.yaml"
	DefaultMinFileSizeMB  = 1
)

// Storage layout
const (
	IndexFileName = "file_hashes.db"

	// DigestPrefixLength is the number of hex characters of the content
	// digest appended to a storage file name for collision safety.
	DigestPrefixLength = 5
)

// DefaultTargetFolders are the per-user cache subdirectories scanned when the
// configuration does not name its own set.
var DefaultTargetFolders = []string{"FileStorage", "Image", "Video"}
