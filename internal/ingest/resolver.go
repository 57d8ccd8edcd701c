package ingest

import (
	"strings"
	"unicode/utf8"

	"github.com/twfilmdata/boxoffice/internal/model"
)

// MatchKind names the strategy that matched a scraped title to a known
// movie.  Keeping the strategies as explicit variants makes their
// precedence and guard conditions testable in isolation.
type MatchKind int

const (
	// MatchNone means no known movie matched; the caller decides
	// whether to create a new one.
	MatchNone MatchKind = iota
	// MatchExact is raw string equality against a movie's display name.
	MatchExact
	// MatchNormalized is equality of the normalized comparison keys.
	MatchNormalized
	// MatchContainment is a substring relation between normalized keys,
	// in either direction, guarded by a minimum length on both sides.
	MatchContainment
)

// containmentMinRunes is the guard on the containment strategy: both
// normalized keys must be at least this many runes long.  Known
// limitation: short unrelated titles sharing a substring (franchise
// prefixes in particular) can still absorb one another; the guard is
// kept as-is rather than tightened because stricter disambiguation
// would regress legitimate subtitle/edition matches.
const containmentMinRunes = 2

// Resolve matches a raw scraped title against the supplied known movies.
// Strategies are tried in order of decreasing precision and the first
// hit wins: exact name equality, then normalized-key equality, then
// containment.  Candidates are scanned in input order, so the first
// qualifying movie is returned.  Resolve never modifies its inputs.
func Resolve(rawTitle string, known []*model.Movie) (*model.Movie, MatchKind) {
	for _, m := range known {
		if m.Name == rawTitle {
			return m, MatchExact
		}
	}

	norm := NormalizeTitle(rawTitle)
	if norm == "" {
		return nil, MatchNone
	}

	for _, m := range known {
		if NormalizeTitle(m.Name) == norm {
			return m, MatchNormalized
		}
	}

	if utf8.RuneCountInString(norm) >= containmentMinRunes {
		for _, m := range known {
			nk := NormalizeTitle(m.Name)
			if utf8.RuneCountInString(nk) < containmentMinRunes {
				continue
			}
			if strings.Contains(nk, norm) || strings.Contains(norm, nk) {
				return m, MatchContainment
			}
		}
	}

	return nil, MatchNone
}
