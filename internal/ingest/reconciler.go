package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/twfilmdata/boxoffice/internal/model"
)

// ErrAlreadyRunning is returned when an ingestion run is triggered while
// another one is still active.
var ErrAlreadyRunning = errors.New("ingestion already running")

// MovieStore is the slice of the storage collaborator the reconciler
// needs for canonical movie identities.
type MovieStore interface {
	// ListAll returns every known movie.  The reconciler loads this set
	// once per batch and resolves every row against it in memory.
	ListAll(ctx context.Context) ([]*model.Movie, error)
	// Create inserts a movie and populates its ID.
	Create(ctx context.Context, m *model.Movie) error
}

// LedgerStore is the slice of the storage collaborator the reconciler
// needs for the weekly ledger.
type LedgerStore interface {
	// Exists reports whether a record already exists for the tuple.
	Exists(ctx context.Context, movieID uint64, start, end time.Time) (bool, error)
	// Insert persists a new weekly record.
	Insert(ctx context.Context, r *model.WeeklyRecord) error
	// SumWeeklyTicketsBefore sums weekly tickets over a movie's records
	// with report_date_start strictly before the given date.
	SumWeeklyTicketsBefore(ctx context.Context, movieID uint64, before time.Time) (int64, error)
}

// BatchResult counts the per-record outcomes of one ingestion batch.
// Skipped rows are not errors: they are the expected outcome of
// re-running ingestion over an already-scraped week.
type BatchResult struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
	Movies   int `json:"new_movies"`
}

// Reconciler merges scraped weekly snapshots into the ledger.  It is
// idempotent at (movie, period) granularity and derives cumulative
// ticket counts when the source omits them.
type Reconciler struct {
	movies MovieStore
	ledger LedgerStore
}

// NewReconciler wires the reconciler to its storage collaborators.
func NewReconciler(movies MovieStore, ledger LedgerStore) *Reconciler {
	return &Reconciler{movies: movies, ledger: ledger}
}

// IngestBatch reconciles one scrape run's rows against the ledger for
// the reporting window [start, end].  The known-movie set is loaded once
// for the whole batch.  A malformed row is counted and skipped; a
// storage failure aborts the batch, which is safe to retry because
// already-inserted periods will be skipped as duplicates on the re-run.
func (rc *Reconciler) IngestBatch(ctx context.Context, rows []map[string]any, start, end time.Time) (BatchResult, error) {
	var res BatchResult

	known, err := rc.movies.ListAll(ctx)
	if err != nil {
		return res, fmt.Errorf("load known movies: %w", err)
	}

	for i, row := range rows {
		rec := ParseRawRecord(row)
		if rec.Title == "" {
			log.Printf("ingest: row %d has no title, skipping", i)
			res.Failed++
			continue
		}

		movie, kind := Resolve(rec.Title, known)
		if kind == MatchNone {
			movie = newMovie(rec)
			if err := rc.movies.Create(ctx, movie); err != nil {
				return res, fmt.Errorf("create movie %q: %w", rec.Title, err)
			}
			known = append(known, movie)
			res.Movies++
		}

		dup, err := rc.ledger.Exists(ctx, movie.ID, start, end)
		if err != nil {
			return res, fmt.Errorf("duplicate check for movie %d: %w", movie.ID, err)
		}
		if dup {
			res.Skipped++
			continue
		}

		wr := &model.WeeklyRecord{
			MovieID:           movie.ID,
			ReportDateStart:   start,
			ReportDateEnd:     end,
			TheaterCount:      nullFrom(rec.TheaterCount),
			WeeklyRevenue:     nullFrom(rec.WeeklyRevenue),
			CumulativeRevenue: nullFrom(rec.CumulativeRevenue),
			WeeklyTickets:     nullFrom(rec.WeeklyTickets),
			CumulativeTickets: nullFrom(rec.CumulativeTickets),
		}
		if !wr.CumulativeTickets.Valid {
			cum, err := rc.cumulativeTickets(ctx, movie.ID, start, rec.WeeklyTickets)
			if err != nil {
				return res, err
			}
			wr.CumulativeTickets = sql.NullInt64{Int64: cum, Valid: true}
		}

		if err := rc.ledger.Insert(ctx, wr); err != nil {
			return res, fmt.Errorf("insert weekly record for movie %d: %w", movie.ID, err)
		}
		res.Inserted++
	}

	return res, nil
}

// cumulativeTickets derives the running ticket total as of a record's
// week: the sum of all earlier weekly tickets plus the new week's own.
// Computing it this way at ingestion time yields the same value as one
// full backfill pass over the movie's history in ascending order.
func (rc *Reconciler) cumulativeTickets(ctx context.Context, movieID uint64, start time.Time, weekly *int64) (int64, error) {
	prev, err := rc.ledger.SumWeeklyTicketsBefore(ctx, movieID, start)
	if err != nil {
		return 0, fmt.Errorf("sum prior tickets for movie %d: %w", movieID, err)
	}
	if weekly != nil {
		prev += *weekly
	}
	return prev, nil
}

// newMovie builds a canonical movie from a raw record.  The country
// alias table is applied here and nowhere else.
func newMovie(rec RawRecord) *model.Movie {
	m := &model.Movie{Name: rec.Title}
	if rec.Country != "" {
		m.Country = sql.NullString{String: NormalizeCountry(rec.Country), Valid: true}
	}
	if rec.Distributor != "" {
		m.Distributor = sql.NullString{String: rec.Distributor, Valid: true}
	}
	if rec.ReleaseDate != nil {
		m.ReleaseDate = sql.NullTime{Time: *rec.ReleaseDate, Valid: true}
	}
	return m
}

func nullFrom(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
