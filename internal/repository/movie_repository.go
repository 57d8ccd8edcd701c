package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/twfilmdata/boxoffice/internal/model"
)

// mainMarkets backs the "其他" country filter: a movie is "other" when
// its country is outside every named market bucket.
var mainMarkets = []string{"台灣", "美國", "日本", "韓國", "香港", "泰國", "越南", "馬來西亞", "新加坡", "印尼", "菲律賓", "東南亞"}

// MovieRepo encapsulates all database queries over canonical movies.
// It depends on a sql.DB connection pool configured at startup.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the provided DB handle,
// allowing dependency injection at startup and in tests.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

// ListAll returns every movie ordered by id.  The reconciler loads this
// set once per ingestion batch and resolves all rows against it in
// memory, so ingestion never queries per scraped row.
func (r *MovieRepo) ListAll(ctx context.Context) ([]*model.Movie, error) {
	const q = `SELECT id, name, release_date, country, distributor FROM movies ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Movie
	for rows.Next() {
		m := new(model.Movie)
		if err := rows.Scan(&m.ID, &m.Name, &m.ReleaseDate, &m.Country, &m.Distributor); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetByID fetches a movie by primary key.  It returns ErrMovieNotFound
// when no row exists.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	const q = `SELECT id, name, release_date, country, distributor FROM movies WHERE id = ?`
	m := new(model.Movie)
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&m.ID, &m.Name, &m.ReleaseDate, &m.Country, &m.Distributor); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return m, nil
}

// GetByName fetches a movie by its exact display name.
func (r *MovieRepo) GetByName(ctx context.Context, name string) (*model.Movie, error) {
	const q = `SELECT id, name, release_date, country, distributor FROM movies WHERE name = ?`
	m := new(model.Movie)
	if err := r.db.QueryRowContext(ctx, q, name).Scan(&m.ID, &m.Name, &m.ReleaseDate, &m.Country, &m.Distributor); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return m, nil
}

// Create inserts a new movie and populates its auto-assigned ID.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	const q = `INSERT INTO movies (name, release_date, country, distributor) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, m.Name, m.ReleaseDate, m.Country, m.Distributor)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// RenameCountry rewrites one country value across all movies and
// returns the number of rows touched.  It backs the data-quality
// remediation endpoint; regular ingestion normalizes countries at
// creation time instead.
func (r *MovieRepo) RenameCountry(ctx context.Context, from, to string) (int64, error) {
	const q = `UPDATE movies SET country = ? WHERE country = ?`
	res, err := r.db.ExecContext(ctx, q, to, from)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MovieWeekRow is one movie joined with one week's ledger figures, as
// returned by the listing queries.
type MovieWeekRow struct {
	ID                uint64
	Name              string
	ReleaseDate       sql.NullTime
	Country           sql.NullString
	Distributor       sql.NullString
	WeeklyRevenue     sql.NullInt64
	CumulativeRevenue sql.NullInt64
	TheaterCount      sql.NullInt64
	WeeklyTickets     sql.NullInt64
	ReportDateStart   sql.NullTime
	ReportDateEnd     sql.NullTime
}

// ListOptions filters and paginates the movie listing.
type ListOptions struct {
	Search  string // substring match on name; switches to global search
	Country string // exact country, or "其他" for everything else
	SortBy  string // "weekly_revenue" (default) or "cumulative_revenue"
	Page    int
	Limit   int
}

// ListLatestWeek returns the movie board for the most recent reporting
// week, ordered by the requested revenue column.  When a search term is
// given the query switches to a global per-movie search using MAX
// aggregates over the movie's whole history, matching how clients use
// the board (browse the week, or find a title anywhere in time).
// The second return value is the total row count before pagination.
func (r *MovieRepo) ListLatestWeek(ctx context.Context, opts ListOptions) ([]MovieWeekRow, int, error) {
	order := "weekly_revenue"
	if opts.SortBy == "cumulative_revenue" {
		order = "cumulative_revenue"
	}
	if opts.Limit <= 0 {
		opts.Limit = 500
	}
	if opts.Page <= 0 {
		opts.Page = 1
	}
	offset := (opts.Page - 1) * opts.Limit

	where := []string{"1=1"}
	args := []any{}
	if opts.Search == "" {
		where = append(where, "w.report_date_start = (SELECT MAX(report_date_start) FROM weekly_records)")
	} else {
		where = append(where, "m.name LIKE ?")
		args = append(args, "%"+opts.Search+"%")
	}
	switch {
	case opts.Country == "" || opts.Country == "所有國家":
	case opts.Country == "其他":
		ph := strings.TrimSuffix(strings.Repeat("?,", len(mainMarkets)), ",")
		where = append(where, fmt.Sprintf("m.country NOT IN (%s)", ph))
		for _, c := range mainMarkets {
			args = append(args, c)
		}
	default:
		where = append(where, "m.country = ?")
		args = append(args, opts.Country)
	}
	cond := strings.Join(where, " AND ")

	sel := `SELECT m.id, m.name, m.release_date, m.country, m.distributor,
	               w.weekly_revenue, w.cumulative_revenue, w.theater_count, w.weekly_tickets,
	               w.report_date_start, w.report_date_end
	        FROM movies m JOIN weekly_records w ON m.id = w.movie_id
	        WHERE ` + cond
	countQ := `SELECT COUNT(*) FROM movies m JOIN weekly_records w ON m.id = w.movie_id WHERE ` + cond
	if opts.Search != "" {
		sel = `SELECT m.id, m.name, m.release_date, m.country, m.distributor,
		              MAX(w.weekly_revenue) AS weekly_revenue, MAX(w.cumulative_revenue) AS cumulative_revenue,
		              MAX(w.theater_count) AS theater_count, MAX(w.weekly_tickets) AS weekly_tickets,
		              MAX(w.report_date_start) AS report_date_start, MAX(w.report_date_end) AS report_date_end
		       FROM movies m JOIN weekly_records w ON m.id = w.movie_id
		       WHERE ` + cond + ` GROUP BY m.id`
		countQ = `SELECT COUNT(DISTINCT m.id) FROM movies m JOIN weekly_records w ON m.id = w.movie_id WHERE ` + cond
	}
	sel += fmt.Sprintf(" ORDER BY %s DESC LIMIT ? OFFSET ?", order)

	var total int
	if err := r.db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, sel, append(args, opts.Limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []MovieWeekRow
	for rows.Next() {
		var mw MovieWeekRow
		if err := rows.Scan(&mw.ID, &mw.Name, &mw.ReleaseDate, &mw.Country, &mw.Distributor,
			&mw.WeeklyRevenue, &mw.CumulativeRevenue, &mw.TheaterCount, &mw.WeeklyTickets,
			&mw.ReportDateStart, &mw.ReportDateEnd); err != nil {
			return nil, 0, err
		}
		out = append(out, mw)
	}
	return out, total, rows.Err()
}
