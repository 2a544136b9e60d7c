// Package names derives collision-safe, human-legible storage file names.
package names

import (
	"regexp"
	"strings"

	"github.com/substantialcattle5/ghanima/internal/constants"
)

// counterSuffix matches a duplicate-counter suffix like " (2)" sitting
// immediately before the file extension, e.g. "IMG_0001 (2).jpg".
var counterSuffix = regexp.MustCompile(` \(\d+\)(\.[^.]+)$`)

// ResolveStorageName strips any trailing duplicate-counter suffix from
// originalName and appends an underscore plus a short digest prefix before
// the extension, preserving the extension exactly.
//
// Different content sharing the same stripped name and the same digest prefix
// is not further disambiguated; with a 5-character hex prefix that collision
// is accepted as negligible.
func ResolveStorageName(originalName, digest string) string {
	base := counterSuffix.ReplaceAllString(originalName, "$1")

	prefix := digest
	if len(prefix) > constants.DigestPrefixLength {
		prefix = prefix[:constants.DigestPrefixLength]
	}

	dot := strings.LastIndex(base, ".")
	if dot <= 0 {
		// No extension (or a dotfile like ".nomedia"): suffix goes at the end.
		return base + "_" + prefix
	}

	return base[:dot] + "_" + prefix + base[dot:]
}
