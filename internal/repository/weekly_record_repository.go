package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/twfilmdata/boxoffice/internal/model"
)

// WeeklyRecordRepo encapsulates all database queries over the weekly
// ledger.  Rows are append-mostly: inserts by ingestion, updates only
// for the derived cumulative-tickets backfill.
type WeeklyRecordRepo struct {
	db *sql.DB
}

// NewWeeklyRecordRepo constructs a WeeklyRecordRepo with the provided
// DB handle.
func NewWeeklyRecordRepo(db *sql.DB) *WeeklyRecordRepo {
	return &WeeklyRecordRepo{db: db}
}

// Exists reports whether a record already exists for the
// (movie, start, end) tuple.  This check is what makes ingestion
// idempotent at per-period granularity.
func (r *WeeklyRecordRepo) Exists(ctx context.Context, movieID uint64, start, end time.Time) (bool, error) {
	const q = `SELECT 1 FROM weekly_records WHERE movie_id = ? AND report_date_start = ? AND report_date_end = ? LIMIT 1`
	var one int
	err := r.db.QueryRowContext(ctx, q, movieID, start, end).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Insert persists a new weekly record and populates its ID.
func (r *WeeklyRecordRepo) Insert(ctx context.Context, w *model.WeeklyRecord) error {
	const q = `INSERT INTO weekly_records
	           (movie_id, report_date_start, report_date_end, theater_count,
	            weekly_revenue, cumulative_revenue, weekly_tickets, cumulative_tickets)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, w.MovieID, w.ReportDateStart, w.ReportDateEnd,
		w.TheaterCount, w.WeeklyRevenue, w.CumulativeRevenue, w.WeeklyTickets, w.CumulativeTickets)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	w.ID = uint64(id)
	return nil
}

// SumWeeklyTicketsBefore sums weekly tickets over a movie's records
// whose report_date_start is strictly before the given date.  Used to
// derive cumulative tickets at ingestion time.
func (r *WeeklyRecordRepo) SumWeeklyTicketsBefore(ctx context.Context, movieID uint64, before time.Time) (int64, error) {
	const q = `SELECT COALESCE(SUM(weekly_tickets), 0) FROM weekly_records
	           WHERE movie_id = ? AND report_date_start < ?`
	var sum int64
	err := r.db.QueryRowContext(ctx, q, movieID, before).Scan(&sum)
	return sum, err
}

// ListByMovie returns a movie's full history ordered by
// report_date_start ascending.
func (r *WeeklyRecordRepo) ListByMovie(ctx context.Context, movieID uint64) ([]*model.WeeklyRecord, error) {
	const q = `SELECT id, movie_id, report_date_start, report_date_end, theater_count,
	                  weekly_revenue, cumulative_revenue, weekly_tickets, cumulative_tickets
	           FROM weekly_records WHERE movie_id = ? ORDER BY report_date_start ASC`
	rows, err := r.db.QueryContext(ctx, q, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.WeeklyRecord
	for rows.Next() {
		w := new(model.WeeklyRecord)
		if err := rows.Scan(&w.ID, &w.MovieID, &w.ReportDateStart, &w.ReportDateEnd, &w.TheaterCount,
			&w.WeeklyRevenue, &w.CumulativeRevenue, &w.WeeklyTickets, &w.CumulativeTickets); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// UpdateCumulativeTickets overwrites one record's derived running
// total.  Only the backfill pass calls this.
func (r *WeeklyRecordRepo) UpdateCumulativeTickets(ctx context.Context, recordID uint64, value int64) error {
	const q = `UPDATE weekly_records SET cumulative_tickets = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, value, recordID)
	return err
}

// DistinctWeekEnds returns every distinct report_date_end in the
// ledger, newest first.  Backs the week selector.
func (r *WeeklyRecordRepo) DistinctWeekEnds(ctx context.Context) ([]time.Time, error) {
	const q = `SELECT DISTINCT report_date_end FROM weekly_records ORDER BY report_date_end DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
