// This file defines handlers for the aggregation endpoints: period
// statistics, the week-over-week market series, the dashboard and the
// showtime rollups.  All of them are read-only and return zero-valued
// summaries (never errors) for periods without data; only a malformed
// period specification is a client error.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/twfilmdata/boxoffice/internal/stats"
)

// StatsHandler serves the aggregate views computed by the stats service.
type StatsHandler struct {
	Stats *stats.Service
}

// GetPeriodStats handles GET /v1/stats/period?type=&year=&number=.
// type is one of week|month|year|all_time; year is required except for
// all_time; number selects the ISO week or month and is required for
// those kinds.
func (h *StatsHandler) GetPeriodStats(c echo.Context) error {
	kind := stats.PeriodKind(c.QueryParam("type"))

	var year, number int
	if kind != stats.KindAllTime {
		y, err := strconv.Atoi(c.QueryParam("year"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "year required"})
		}
		year = y
		switch kind {
		case stats.KindWeek, stats.KindMonth:
			n, err := strconv.Atoi(c.QueryParam("number"))
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "number required for type=" + string(kind)})
			}
			number = n
		}
	}

	out, err := h.Stats.PeriodStats(c.Request().Context(), kind, year, number)
	if err != nil {
		if errors.Is(err, stats.ErrBadPeriod) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, out)
}

// GetWeeklyStats handles GET /v1/stats/weekly: the full week-over-week
// market series, newest week first.
func (h *StatsHandler) GetWeeklyStats(c echo.Context) error {
	out, err := h.Stats.WeeklyMarketStats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, out)
}

// GetDashboard handles GET /v1/dashboard.
func (h *StatsHandler) GetDashboard(c echo.Context) error {
	out, err := h.Stats.Dashboard(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, out)
}

// GetMarketShare handles GET /v1/stats/market-share?date=YYYY-MM-DD.
// The date defaults to today.
func (h *StatsHandler) GetMarketShare(c echo.Context) error {
	date := time.Now().UTC().Truncate(24 * time.Hour)
	if raw := c.QueryParam("date"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date"})
		}
		date = d
	}
	shares, err := h.Stats.MarketShare(c.Request().Context(), date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if shares == nil {
		shares = []stats.RegionShare{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"date":         date.Format("2006-01-02"),
		"market_share": shares,
	})
}

// GetTrend handles GET /v1/stats/trend?n=: the n most recent reporting
// weeks with data, oldest first for charting.
func (h *StatsHandler) GetTrend(c echo.Context) error {
	n := 4
	if raw := c.QueryParam("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 52 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid n"})
		}
		n = v
	}
	out, err := h.Stats.Trend(c.Request().Context(), n)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if out == nil {
		out = []stats.TrendWeek{}
	}
	return c.JSON(http.StatusOK, echo.Map{"trend": out})
}
