package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/twfilmdata/boxoffice/internal/model"
)

// ShowtimeRepo encapsulates database queries over daily showtime rows.
type ShowtimeRepo struct {
	db *sql.DB
}

// NewShowtimeRepo constructs a ShowtimeRepo with the provided DB handle.
func NewShowtimeRepo(db *sql.DB) *ShowtimeRepo {
	return &ShowtimeRepo{db: db}
}

// Insert persists one showtime observation.  Duplicate rows for the
// same (movie, date, region) across scrape runs are allowed; showtime
// counting is additive signal, not a deduplicated ledger.
func (r *ShowtimeRepo) Insert(ctx context.Context, s *model.DailyShowtime) error {
	const q = `INSERT INTO daily_showtimes (movie_id, date, region, showtime_count) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.MovieID, s.Date, s.Region, s.ShowtimeCount)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// RegionCount is one region's showtime total for a movie and date.
type RegionCount struct {
	Region string `json:"region"`
	Count  int64  `json:"count"`
}

// SummaryForMovie sums a movie's showtime counts per region for one
// date.  Backs the per-movie showtime block of the details endpoint.
func (r *ShowtimeRepo) SummaryForMovie(ctx context.Context, movieID uint64, date time.Time) ([]RegionCount, int64, error) {
	const q = `SELECT region, SUM(showtime_count) FROM daily_showtimes
	           WHERE movie_id = ? AND date = ?
	           GROUP BY region ORDER BY SUM(showtime_count) DESC`
	rows, err := r.db.QueryContext(ctx, q, movieID, date)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []RegionCount
	var total int64
	for rows.Next() {
		var rc RegionCount
		if err := rows.Scan(&rc.Region, &rc.Count); err != nil {
			return nil, 0, err
		}
		out = append(out, rc)
		total += rc.Count
	}
	return out, total, rows.Err()
}
