package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/twfilmdata/boxoffice/internal/stats"
)

// StatsRepo implements the aggregation query surface consumed by the
// stats service.  Every ledger filter tests report_date_start against
// an inclusive [start, end] window: that single field decides which
// period a record belongs to, so a reporting week straddling a month
// or year boundary is attributed to exactly one period.
type StatsRepo struct {
	db *sql.DB
}

// NewStatsRepo constructs a StatsRepo with the provided DB handle.
func NewStatsRepo(db *sql.DB) *StatsRepo {
	return &StatsRepo{db: db}
}

// Compile-time check that StatsRepo satisfies the service's contract.
var _ stats.Store = (*StatsRepo)(nil)

// SumWeeklyRevenue sums weekly_revenue (never cumulative_revenue, which
// is a running total and would inflate period figures) over records
// whose report_date_start lies in [start, end].
func (r *StatsRepo) SumWeeklyRevenue(ctx context.Context, start, end time.Time) (int64, error) {
	const q = `SELECT COALESCE(SUM(weekly_revenue), 0) FROM weekly_records
	           WHERE report_date_start >= ? AND report_date_start <= ?`
	var sum int64
	err := r.db.QueryRowContext(ctx, q, start, end).Scan(&sum)
	return sum, err
}

// TotalWeeklyRevenue sums weekly_revenue over the entire ledger.
func (r *StatsRepo) TotalWeeklyRevenue(ctx context.Context) (int64, error) {
	const q = `SELECT COALESCE(SUM(weekly_revenue), 0) FROM weekly_records`
	var sum int64
	err := r.db.QueryRowContext(ctx, q).Scan(&sum)
	return sum, err
}

// CountDistinctMovies counts distinct movie ids active in the window.
func (r *StatsRepo) CountDistinctMovies(ctx context.Context, start, end time.Time) (int, error) {
	const q = `SELECT COUNT(DISTINCT movie_id) FROM weekly_records
	           WHERE report_date_start >= ? AND report_date_start <= ?`
	var n int
	err := r.db.QueryRowContext(ctx, q, start, end).Scan(&n)
	return n, err
}

// CountMovies counts every canonical movie.
func (r *StatsRepo) CountMovies(ctx context.Context) (int, error) {
	const q = `SELECT COUNT(*) FROM movies`
	var n int
	err := r.db.QueryRowContext(ctx, q).Scan(&n)
	return n, err
}

// PeriodRankings sums revenue and tickets per movie inside the window,
// highest revenue first; ties fall back to movie id for a stable order.
func (r *StatsRepo) PeriodRankings(ctx context.Context, start, end time.Time) ([]stats.RankingRow, error) {
	const q = `SELECT m.id, m.name, m.release_date,
	                  COALESCE(SUM(w.weekly_revenue), 0), COALESCE(SUM(w.weekly_tickets), 0)
	           FROM weekly_records w JOIN movies m ON w.movie_id = m.id
	           WHERE w.report_date_start >= ? AND w.report_date_start <= ?
	           GROUP BY m.id, m.name, m.release_date
	           ORDER BY COALESCE(SUM(w.weekly_revenue), 0) DESC, m.id ASC`
	return r.queryRankings(ctx, q, start, end)
}

// AllTimeRankings ranks movies by MAX(cumulative_revenue): the
// authoritative source-supplied running total, not a re-summation of
// weekly deltas.
func (r *StatsRepo) AllTimeRankings(ctx context.Context, limit int) ([]stats.RankingRow, error) {
	const q = `SELECT m.id, m.name, m.release_date,
	                  COALESCE(MAX(w.cumulative_revenue), 0), COALESCE(MAX(w.cumulative_tickets), 0)
	           FROM weekly_records w JOIN movies m ON w.movie_id = m.id
	           GROUP BY m.id, m.name, m.release_date
	           ORDER BY COALESCE(MAX(w.cumulative_revenue), 0) DESC, m.id ASC
	           LIMIT ?`
	return r.queryRankings(ctx, q, limit)
}

func (r *StatsRepo) queryRankings(ctx context.Context, q string, args ...any) ([]stats.RankingRow, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []stats.RankingRow
	for rows.Next() {
		var rr stats.RankingRow
		var release sql.NullTime
		if err := rows.Scan(&rr.MovieID, &rr.Name, &release, &rr.Revenue, &rr.Tickets); err != nil {
			return nil, err
		}
		if release.Valid {
			t := release.Time
			rr.ReleaseDate = &t
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

// MinReportDateStart returns the earliest ledger date.
func (r *StatsRepo) MinReportDateStart(ctx context.Context) (time.Time, bool, error) {
	const q = `SELECT MIN(report_date_start) FROM weekly_records`
	var t sql.NullTime
	if err := r.db.QueryRowContext(ctx, q).Scan(&t); err != nil {
		return time.Time{}, false, err
	}
	return t.Time, t.Valid, nil
}

// MaxReportDateEnd returns the latest reporting week end.
func (r *StatsRepo) MaxReportDateEnd(ctx context.Context) (time.Time, bool, error) {
	const q = `SELECT MAX(report_date_end) FROM weekly_records`
	var t sql.NullTime
	if err := r.db.QueryRowContext(ctx, q).Scan(&t); err != nil {
		return time.Time{}, false, err
	}
	return t.Time, t.Valid, nil
}

// MarketShareByRegion sums showtime counts per region for one date,
// largest first.
func (r *StatsRepo) MarketShareByRegion(ctx context.Context, date time.Time) ([]stats.RegionShare, error) {
	const q = `SELECT region, SUM(showtime_count) FROM daily_showtimes
	           WHERE date = ? GROUP BY region ORDER BY SUM(showtime_count) DESC`
	rows, err := r.db.QueryContext(ctx, q, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []stats.RegionShare
	for rows.Next() {
		var rs stats.RegionShare
		if err := rows.Scan(&rs.Region, &rs.Count); err != nil {
			return nil, err
		}
		out = append(out, rs)
	}
	return out, rows.Err()
}

// RecentTrend returns the n most recent distinct reporting week ends
// that recorded positive revenue, newest first.  Weeks without data are
// absent, not zero-filled.
func (r *StatsRepo) RecentTrend(ctx context.Context, n int) ([]stats.TrendPoint, error) {
	const q = `SELECT report_date_end, SUM(weekly_revenue) FROM weekly_records
	           WHERE weekly_revenue > 0
	           GROUP BY report_date_end
	           ORDER BY report_date_end DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []stats.TrendPoint
	for rows.Next() {
		var tp stats.TrendPoint
		if err := rows.Scan(&tp.End, &tp.Revenue); err != nil {
			return nil, err
		}
		out = append(out, tp)
	}
	return out, rows.Err()
}

// WeeklyRevenueRows returns every ledger row joined with its movie name.
func (r *StatsRepo) WeeklyRevenueRows(ctx context.Context) ([]stats.WeeklyRevenueRow, error) {
	const q = `SELECT w.report_date_start, w.report_date_end, COALESCE(w.weekly_revenue, 0), m.name
	           FROM weekly_records w JOIN movies m ON w.movie_id = m.id
	           ORDER BY w.report_date_end DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []stats.WeeklyRevenueRow
	for rows.Next() {
		var wr stats.WeeklyRevenueRow
		if err := rows.Scan(&wr.Start, &wr.End, &wr.Revenue, &wr.MovieName); err != nil {
			return nil, err
		}
		out = append(out, wr)
	}
	return out, rows.Err()
}

// RevenueByCountryForWeek sums weekly revenue per movie country for the
// reporting week ending at end.  Movies without a country are excluded.
func (r *StatsRepo) RevenueByCountryForWeek(ctx context.Context, end time.Time) ([]stats.CountryRevenue, error) {
	const q = `SELECT m.country, COALESCE(SUM(w.weekly_revenue), 0)
	           FROM weekly_records w JOIN movies m ON w.movie_id = m.id
	           WHERE w.report_date_end = ? AND m.country IS NOT NULL
	           GROUP BY m.country
	           ORDER BY COALESCE(SUM(w.weekly_revenue), 0) DESC`
	rows, err := r.db.QueryContext(ctx, q, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []stats.CountryRevenue
	for rows.Next() {
		var cr stats.CountryRevenue
		if err := rows.Scan(&cr.Country, &cr.Revenue); err != nil {
			return nil, err
		}
		out = append(out, cr)
	}
	return out, rows.Err()
}

// SumRevenueByWeekEnd sums weekly revenue for one reporting week.
func (r *StatsRepo) SumRevenueByWeekEnd(ctx context.Context, end time.Time) (int64, error) {
	const q = `SELECT COALESCE(SUM(weekly_revenue), 0) FROM weekly_records WHERE report_date_end = ?`
	var sum int64
	err := r.db.QueryRowContext(ctx, q, end).Scan(&sum)
	return sum, err
}

// SumRevenueByEndBetween sums weekly revenue over records whose
// report_date_end lies in [from, to].
func (r *StatsRepo) SumRevenueByEndBetween(ctx context.Context, from, to time.Time) (int64, error) {
	const q = `SELECT COALESCE(SUM(weekly_revenue), 0) FROM weekly_records
	           WHERE report_date_end >= ? AND report_date_end <= ?`
	var sum int64
	err := r.db.QueryRowContext(ctx, q, from, to).Scan(&sum)
	return sum, err
}

// CountActiveMovies counts distinct movies above the revenue floor in
// one reporting week.
func (r *StatsRepo) CountActiveMovies(ctx context.Context, end time.Time, minRevenue int64) (int, error) {
	const q = `SELECT COUNT(DISTINCT movie_id) FROM weekly_records
	           WHERE report_date_end = ? AND weekly_revenue > ?`
	var n int
	err := r.db.QueryRowContext(ctx, q, end, minRevenue).Scan(&n)
	return n, err
}

// CountReleasesBetween counts movies released inside [from, to].
func (r *StatsRepo) CountReleasesBetween(ctx context.Context, from, to time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM movies
	           WHERE release_date IS NOT NULL AND release_date >= ? AND release_date <= ?`
	var n int
	err := r.db.QueryRowContext(ctx, q, from, to).Scan(&n)
	return n, err
}
