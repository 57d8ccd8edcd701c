package ingest

import (
	"context"
	"fmt"

	"github.com/twfilmdata/boxoffice/internal/model"
)

// BackfillStore extends the ledger surface with the scan/update pair
// the cumulative-tickets backfill needs.
type BackfillStore interface {
	// ListByMovie returns a movie's records ordered by
	// report_date_start ascending.
	ListByMovie(ctx context.Context, movieID uint64) ([]*model.WeeklyRecord, error)
	// UpdateCumulativeTickets overwrites one record's derived total.
	UpdateCumulativeTickets(ctx context.Context, recordID uint64, value int64) error
}

// BackfillCumulativeTickets recomputes every movie's cumulative ticket
// column from a full ascending scan of its history.  For records
// ingested in chronological order the pass is a no-op: the incremental
// derivation at ingestion time produces the same running sums.  It
// exists for ledgers whose history was backfilled out of order.
func (rc *Reconciler) BackfillCumulativeTickets(ctx context.Context, store BackfillStore) (int, error) {
	movies, err := rc.movies.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("load movies: %w", err)
	}

	updated := 0
	for _, m := range movies {
		records, err := store.ListByMovie(ctx, m.ID)
		if err != nil {
			return updated, fmt.Errorf("list records for movie %d: %w", m.ID, err)
		}
		var running int64
		for _, r := range records {
			if r.WeeklyTickets.Valid {
				running += r.WeeklyTickets.Int64
			}
			if r.CumulativeTickets.Valid && r.CumulativeTickets.Int64 == running {
				continue
			}
			if err := store.UpdateCumulativeTickets(ctx, r.ID, running); err != nil {
				return updated, fmt.Errorf("update record %d: %w", r.ID, err)
			}
			updated++
		}
	}
	return updated, nil
}
