// This file defines the movie browsing handlers: the weekly board,
// per-movie detail with full ledger history, trajectory comparison and
// the week selector.  Responses expose sanitized field names; nullable
// ledger figures serialize as null rather than zero so clients can
// distinguish "not reported" from "reported zero".
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/twfilmdata/boxoffice/internal/model"
	"github.com/twfilmdata/boxoffice/internal/repository"
)

// MovieHandler aggregates the repositories needed for movie browsing.
type MovieHandler struct {
	Movies    *repository.MovieRepo
	Records   *repository.WeeklyRecordRepo
	Showtimes *repository.ShowtimeRepo
}

// movieRow is one entry of the weekly board.
type movieRow struct {
	ID                uint64 `json:"id"`
	Name              string `json:"name"`
	ReleaseDate       string `json:"release_date,omitempty"`
	Country           string `json:"country,omitempty"`
	Distributor       string `json:"distributor,omitempty"`
	WeeklyRevenue     *int64 `json:"weekly_revenue"`
	CumulativeRevenue *int64 `json:"cumulative_revenue"`
	TheaterCount      *int64 `json:"theater_count"`
	WeeklyTickets     *int64 `json:"tickets"`
}

// List handles GET /v1/movies: the latest reporting week's board, or a
// global per-movie search when ?search= is given.  Supports country
// filtering (including the 其他 bucket), pagination and sorting by
// weekly or cumulative revenue.
func (h *MovieHandler) List(c echo.Context) error {
	opts := repository.ListOptions{
		Search:  strings.TrimSpace(c.QueryParam("search")),
		Country: c.QueryParam("country"),
		SortBy:  c.QueryParam("sort_by"),
	}
	opts.Page, _ = strconv.Atoi(c.QueryParam("page"))
	opts.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if opts.Limit > 1000 {
		opts.Limit = 1000
	}

	rows, total, err := h.Movies.ListLatestWeek(c.Request().Context(), opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	out := make([]movieRow, 0, len(rows))
	for _, r := range rows {
		mr := movieRow{
			ID:                r.ID,
			Name:              r.Name,
			Country:           r.Country.String,
			Distributor:       r.Distributor.String,
			WeeklyRevenue:     nullableInt(r.WeeklyRevenue.Int64, r.WeeklyRevenue.Valid),
			CumulativeRevenue: nullableInt(r.CumulativeRevenue.Int64, r.CumulativeRevenue.Valid),
			TheaterCount:      nullableInt(r.TheaterCount.Int64, r.TheaterCount.Valid),
			WeeklyTickets:     nullableInt(r.WeeklyTickets.Int64, r.WeeklyTickets.Valid),
		}
		if r.ReleaseDate.Valid {
			mr.ReleaseDate = r.ReleaseDate.Time.Format("2006-01-02")
		}
		out = append(out, mr)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 500
	}
	page := opts.Page
	if page <= 0 {
		page = 1
	}
	return c.JSON(http.StatusOK, echo.Map{
		"movies":      out,
		"total":       total,
		"page":        page,
		"limit":       limit,
		"total_pages": (total + limit - 1) / limit,
	})
}

// historyRow is one week of a movie's ledger history.
type historyRow struct {
	Year              int    `json:"year"`
	Week              int    `json:"week"`
	StartDate         string `json:"start_date"`
	EndDate           string `json:"end_date"`
	WeeklyRevenue     *int64 `json:"weekly_revenue"`
	CumulativeRevenue *int64 `json:"cumulative_revenue"`
	WeeklyTickets     *int64 `json:"weekly_tickets"`
	CumulativeTickets *int64 `json:"cumulative_tickets"`
	TheaterCount      *int64 `json:"theater_count"`
}

// Details handles GET /v1/movies/:id: metadata, the full weekly
// history in chronological order, and today's showtime summary.
func (h *MovieHandler) Details(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	movie, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	records, err := h.Records.ListByMovie(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	history := make([]historyRow, 0, len(records))
	for _, r := range records {
		year, week := r.ReportDateEnd.ISOWeek()
		history = append(history, historyRow{
			Year:              year,
			Week:              week,
			StartDate:         r.ReportDateStart.Format("2006-01-02"),
			EndDate:           r.ReportDateEnd.Format("2006-01-02"),
			WeeklyRevenue:     nullableInt(r.WeeklyRevenue.Int64, r.WeeklyRevenue.Valid),
			CumulativeRevenue: nullableInt(r.CumulativeRevenue.Int64, r.CumulativeRevenue.Valid),
			WeeklyTickets:     nullableInt(r.WeeklyTickets.Int64, r.WeeklyTickets.Valid),
			CumulativeTickets: nullableInt(r.CumulativeTickets.Int64, r.CumulativeTickets.Valid),
			TheaterCount:      nullableInt(r.TheaterCount.Int64, r.TheaterCount.Valid),
		})
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	byRegion, totalShowtimes, err := h.Showtimes.SummaryForMovie(ctx, id, today)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if byRegion == nil {
		byRegion = []repository.RegionCount{}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"info":    movieInfo(movie),
		"history": history,
		"showtime_stats": echo.Map{
			"date":        today.Format("2006-01-02"),
			"total_count": totalShowtimes,
			"by_region":   byRegion,
		},
	})
}

// trajectoryPoint is one relative week of a movie's run.
type trajectoryPoint struct {
	WeekNum    int    `json:"week_num"`
	Revenue    *int64 `json:"revenue"`
	Cumulative *int64 `json:"cumulative"`
	Date       string `json:"date"`
}

// Trajectory handles GET /v1/movies/trajectory?ids=1,2,3: each movie's
// run aligned by relative week for side-by-side comparison.  Unknown
// ids are silently dropped.
func (h *MovieHandler) Trajectory(c echo.Context) error {
	ctx := c.Request().Context()
	var result []echo.Map
	for _, part := range strings.Split(c.QueryParam("ids"), ",") {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		movie, err := h.Movies.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrMovieNotFound) {
				continue
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		records, err := h.Records.ListByMovie(ctx, id)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		points := make([]trajectoryPoint, 0, len(records))
		for i, r := range records {
			points = append(points, trajectoryPoint{
				WeekNum:    i + 1,
				Revenue:    nullableInt(r.WeeklyRevenue.Int64, r.WeeklyRevenue.Valid),
				Cumulative: nullableInt(r.CumulativeRevenue.Int64, r.CumulativeRevenue.Valid),
				Date:       r.ReportDateEnd.Format("2006-01-02"),
			})
		}
		result = append(result, echo.Map{"id": movie.ID, "name": movie.Name, "data": points})
	}
	if result == nil {
		result = []echo.Map{}
	}
	return c.JSON(http.StatusOK, result)
}

// Weeks handles GET /v1/weeks: every (ISO year, week) combination
// present in the ledger, newest first.  Backs the week selector.
func (h *MovieHandler) Weeks(c echo.Context) error {
	ends, err := h.Records.DistinctWeekEnds(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	type weekOption struct {
		Year  int    `json:"year"`
		Week  int    `json:"week"`
		Label string `json:"label"`
	}
	seen := make(map[[2]int]bool)
	out := make([]weekOption, 0, len(ends))
	for _, end := range ends {
		year, week := end.ISOWeek()
		key := [2]int{year, week}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, weekOption{
			Year:  year,
			Week:  week,
			Label: strconv.Itoa(year) + " 第" + strconv.Itoa(week) + "週",
		})
	}
	return c.JSON(http.StatusOK, out)
}

func movieInfo(m *model.Movie) echo.Map {
	info := echo.Map{"id": m.ID, "name": m.Name}
	if m.ReleaseDate.Valid {
		info["release_date"] = m.ReleaseDate.Time.Format("2006-01-02")
	}
	if m.Country.Valid {
		info["country"] = m.Country.String
	}
	if m.Distributor.Valid {
		info["distributor"] = m.Distributor.String
	}
	return info
}

func nullableInt(v int64, valid bool) *int64 {
	if !valid {
		return nil
	}
	return &v
}
