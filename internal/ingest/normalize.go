// Package ingest implements the data reconciliation core: resolving
// scraped titles to canonical movies, merging weekly snapshots into the
// ledger without duplicates, and recording daily showtime counts.
package ingest

import (
	"regexp"
	"strings"
)

// Scraped titles use ASCII and full-width parentheses interchangeably, so
// both forms are stripped.  Year annotations are removed first so that a
// bare "(2024)" never survives as part of the comparison key.
var (
	yearParen   = regexp.MustCompile(`[(（]\d{4}[)）]`)
	anyParen    = regexp.MustCompile(`[(（][^)）]*[)）]`)
	titleSpaces = strings.NewReplacer(" ", "", "　", "", "\t", "")
)

// NormalizeTitle reduces a raw scraped title to a comparison key: year
// parentheticals, remaining parentheticals (format/edition annotations
// such as "(IMAX)" or "（數位版）") and all whitespace, full-width
// included, are removed.  The empty string is returned for empty input;
// callers must treat an empty key as "never matches".
func NormalizeTitle(raw string) string {
	if raw == "" {
		return ""
	}
	s := yearParen.ReplaceAllString(raw, "")
	s = anyParen.ReplaceAllString(s, "")
	s = titleSpaces.Replace(s)
	return strings.TrimSpace(s)
}
