package util

import "fmt"

// HumanReadableSize formats a byte count for display. Whole bytes below 1 KB
// are printed as-is; larger values get one decimal place, capped at TB.
func HumanReadableSize(size int64) string {
	if size < 1024 {
		return fmt.Sprintf("%d B", size)
	}

	units := []string{"KB", "MB", "GB", "TB"}
	value := float64(size)
	unit := ""

	for _, u := range units {
		value /= 1024
		unit = u
		if value < 1024 {
			break
		}
	}

	return fmt.Sprintf("%.1f %s", value, unit)
}
