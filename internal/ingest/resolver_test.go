package ingest

import (
	"testing"

	"github.com/twfilmdata/boxoffice/internal/model"
)

func movies(names ...string) []*model.Movie {
	out := make([]*model.Movie, len(names))
	for i, n := range names {
		out[i] = &model.Movie{ID: uint64(i + 1), Name: n}
	}
	return out
}

func TestResolvePrecedence(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		known    []string
		wantName string
		wantKind MatchKind
	}{
		{
			name:     "exact beats everything",
			raw:      "沙丘",
			known:    []string{"沙丘 (2024)", "沙丘"},
			wantName: "沙丘",
			wantKind: MatchExact,
		},
		{
			name:     "normalized equality across year annotation",
			raw:      "沙丘 (2024)",
			known:    []string{"奧本海默", "沙丘"},
			wantName: "沙丘",
			wantKind: MatchNormalized,
		},
		{
			name:     "normalized equality across fullwidth edition",
			raw:      "鐵達尼號（數位版）",
			known:    []string{"鐵達尼號"},
			wantName: "鐵達尼號",
			wantKind: MatchNormalized,
		},
		{
			name:     "containment raw inside known",
			raw:      "捍衛戰士",
			known:    []string{"捍衛戰士獨行俠"},
			wantName: "捍衛戰士獨行俠",
			wantKind: MatchContainment,
		},
		{
			name:     "containment known inside raw",
			raw:      "捍衛戰士獨行俠",
			known:    []string{"捍衛戰士"},
			wantName: "捍衛戰士",
			wantKind: MatchContainment,
		},
		{
			name:     "first candidate in input order wins",
			raw:      "戰士",
			known:    []string{"捍衛戰士", "神鬼戰士"},
			wantName: "捍衛戰士",
			wantKind: MatchContainment,
		},
		{
			name:     "no match",
			raw:      "奧本海默",
			known:    []string{"沙丘", "捍衛戰士"},
			wantKind: MatchNone,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, kind := Resolve(tc.raw, movies(tc.known...))
			if kind != tc.wantKind {
				t.Fatalf("Resolve(%q) kind = %v, want %v", tc.raw, kind, tc.wantKind)
			}
			if tc.wantKind == MatchNone {
				if got != nil {
					t.Fatalf("Resolve(%q) = %q, want nil", tc.raw, got.Name)
				}
				return
			}
			if got == nil || got.Name != tc.wantName {
				t.Fatalf("Resolve(%q) = %v, want %q", tc.raw, got, tc.wantName)
			}
		})
	}
}

// Single-rune keys must never containment-match: a one-character title
// is a substring of far too many others.
func TestResolveContainmentLengthGuard(t *testing.T) {
	if _, kind := Resolve("鬼", movies("鬼滅之刃")); kind != MatchNone {
		t.Errorf("single-rune raw title matched with kind %v", kind)
	}
	if _, kind := Resolve("片", movies("片名")); kind != MatchNone {
		t.Errorf("%q absorbed %q with kind %v", "片名", "片", kind)
	}
	if _, kind := Resolve("鬼滅之刃", movies("鬼")); kind != MatchNone {
		t.Errorf("single-rune known title matched with kind %v", kind)
	}
	// Both sides at the minimum length still match.
	if _, kind := Resolve("鬼滅", movies("鬼滅之刃")); kind != MatchContainment {
		t.Errorf("two-rune containment = %v, want MatchContainment", kind)
	}
}

func TestResolveEmptyNormalizedKey(t *testing.T) {
	// A title that normalizes to nothing must not match anything.
	if _, kind := Resolve("（數位版）", movies("數位版之歌")); kind != MatchNone {
		t.Errorf("empty normalized key matched with kind %v", kind)
	}
}
