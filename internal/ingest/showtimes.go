package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/twfilmdata/boxoffice/internal/model"
)

// ShowtimeStore is the slice of the storage collaborator needed for
// daily showtime rows.
type ShowtimeStore interface {
	Insert(ctx context.Context, s *model.DailyShowtime) error
}

// ShowtimeRow is one scraped (title, region, count) observation for a
// single day.  The title is whatever the showtime source displayed and
// must be resolved against known movies before it can be stored.
type ShowtimeRow struct {
	Title  string
	Region string
	Count  int
}

// ShowtimeResult counts the outcomes of one showtime scrape run.
type ShowtimeResult struct {
	Matched   int `json:"matched"`
	Unmatched int `json:"unmatched"`
	Recorded  int `json:"showtimes_recorded"`
}

// IngestShowtimes stores showtime counts for the given date.  Unlike
// weekly ingestion it never creates movies: a showtime source sees
// titles that are not in weekly reporting yet, and a count with no
// ledger identity is not worth a canonical row.  Unmatched titles are
// counted and skipped.  Rows are written as-is; duplicate observations
// across runs on the same day are tolerated.
func (rc *Reconciler) IngestShowtimes(ctx context.Context, store ShowtimeStore, rows []ShowtimeRow, day time.Time) (ShowtimeResult, error) {
	var res ShowtimeResult

	known, err := rc.movies.ListAll(ctx)
	if err != nil {
		return res, fmt.Errorf("load known movies: %w", err)
	}

	// Resolve each distinct title once; showtime pages repeat titles
	// across regions.
	resolved := make(map[string]*model.Movie)
	for _, row := range rows {
		if row.Count < 0 {
			continue
		}
		movie, seen := resolved[row.Title]
		if !seen {
			m, kind := Resolve(row.Title, known)
			if kind == MatchNone {
				log.Printf("ingest: showtime title %q matched no movie", row.Title)
				resolved[row.Title] = nil
				res.Unmatched++
				continue
			}
			resolved[row.Title] = m
			movie = m
			res.Matched++
		}
		if movie == nil {
			continue
		}
		if err := store.Insert(ctx, &model.DailyShowtime{
			MovieID:       movie.ID,
			Date:          day,
			Region:        row.Region,
			ShowtimeCount: row.Count,
		}); err != nil {
			return res, fmt.Errorf("insert showtime for movie %d: %w", movie.ID, err)
		}
		res.Recorded += row.Count
	}

	return res, nil
}
