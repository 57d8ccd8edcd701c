package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/twfilmdata/boxoffice/internal/ingest"
	"github.com/twfilmdata/boxoffice/internal/repository"
)

// AdminHandler exposes the operational endpoints behind JWT auth:
// manual scrape trigger, scrape status, and the data remediation jobs.
type AdminHandler struct {
	Runner     *ingest.Runner
	Reconciler *ingest.Reconciler
	Movies     *repository.MovieRepo
	Records    *repository.WeeklyRecordRepo
	Showtimes  *repository.ShowtimeRepo
}

// TriggerScrape handles POST /v1/admin/scrape.  The run executes in
// the background; a second trigger while one is in flight is refused
// rather than queued.
func (h *AdminHandler) TriggerScrape(c echo.Context) error {
	if err := h.Runner.Trigger(); err != nil {
		if errors.Is(err, ingest.ErrAlreadyRunning) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "scrape already running"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start scrape"})
	}
	return c.JSON(http.StatusAccepted, echo.Map{"status": "started"})
}

// ScrapeStatus handles GET /v1/admin/scrape/status.
func (h *AdminHandler) ScrapeStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Runner.Status())
}

// BackfillTickets handles POST /v1/admin/backfill-tickets: recomputes
// every movie's cumulative ticket column from its weekly figures.
func (h *AdminHandler) BackfillTickets(c echo.Context) error {
	updated, err := h.Reconciler.BackfillCumulativeTickets(c.Request().Context(), h.Records)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "backfill failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "updated": updated})
}

// showtimeIngestRequest is one showtime scrape run's payload.
type showtimeIngestRequest struct {
	Date string `json:"date"`
	Rows []struct {
		Title  string `json:"title"`
		Region string `json:"region"`
		Count  int    `json:"count"`
	} `json:"rows"`
}

// IngestShowtimes handles POST /v1/admin/showtimes: stores one day's
// scraped showtime counts.  Titles that match no known movie are
// counted and skipped, never created.
func (h *AdminHandler) IngestShowtimes(c echo.Context) error {
	var req showtimeIngestRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date"})
	}
	rows := make([]ingest.ShowtimeRow, 0, len(req.Rows))
	for _, r := range req.Rows {
		rows = append(rows, ingest.ShowtimeRow{Title: r.Title, Region: r.Region, Count: r.Count})
	}
	res, err := h.Reconciler.IngestShowtimes(c.Request().Context(), h.Showtimes, rows, day)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "showtime ingestion failed"})
	}
	return c.JSON(http.StatusOK, res)
}

// countryFixRequest names one alias rewrite to apply to stored movies.
type countryFixRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// FixCountries handles POST /v1/admin/fix-countries.  With an empty
// body it applies the built-in alias table; with {"from","to"} it
// applies a single rewrite.
func (h *AdminHandler) FixCountries(c echo.Context) error {
	ctx := c.Request().Context()

	var req countryFixRequest
	if err := c.Bind(&req); err == nil && req.From != "" && req.To != "" {
		n, err := h.Movies.RenameCountry(ctx, req.From, req.To)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "updated": n})
	}

	var total int64
	for from, to := range ingest.CountryAliases() {
		n, err := h.Movies.RenameCountry(ctx, from, to)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
		total += n
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "updated": total})
}
