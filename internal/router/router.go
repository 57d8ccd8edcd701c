package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/twfilmdata/boxoffice/internal/handler"    // import the handlers that implement business logic
	"github.com/twfilmdata/boxoffice/internal/middleware" // import middleware for caching, rate limiting and JWT auth
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated browse endpoints.  These
// are the read side of the service: the weekly board, per-movie detail,
// aggregated statistics and the dashboard.  The caller supplies the
// middleware chain (response cache, rate limit) to apply to the group;
// pass none to serve uncached.
func RegisterPublic(e *echo.Echo, m *handler.MovieHandler, s *handler.StatsHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/v1", mw...)

	// Movie browsing.  Echo matches the static /movies/trajectory path
	// ahead of the dynamic /movies/:id.
	g.GET("/movies", m.List)
	g.GET("/movies/trajectory", m.Trajectory)
	g.GET("/movies/:id", m.Details)
	// Week selector: every (year, week) combination present in the ledger.
	g.GET("/weeks", m.Weeks)

	// Aggregated statistics.
	g.GET("/stats/period", s.GetPeriodStats)
	g.GET("/stats/weekly", s.GetWeeklyStats)
	g.GET("/stats/market-share", s.GetMarketShare)
	g.GET("/stats/trend", s.GetTrend)
	g.GET("/dashboard", s.GetDashboard)
}

// RegisterAuth registers the login endpoint and the JWT-protected admin
// group.  Unauthenticated operations live under /v1/auth, while the
// operational endpoints live under /v1/admin and require a valid access
// token signed with jwtSecret.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, ad *handler.AdminHandler, jwtSecret string) {
	// Login exchanges admin credentials for a short-lived access token.
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)

	// Every handler registered on the admin group executes the JWTAuth
	// middleware before being invoked.
	admin := e.Group("/v1/admin")
	admin.Use(middleware.JWTAuth(jwtSecret))
	// Kick off an ingestion run in the background, or report 409 when
	// one is already in flight.
	admin.POST("/scrape", ad.TriggerScrape)
	admin.GET("/scrape/status", ad.ScrapeStatus)
	// Showtime counts arrive as a pushed payload rather than a
	// scheduled pull.
	admin.POST("/showtimes", ad.IngestShowtimes)
	// Data remediation jobs.
	admin.POST("/backfill-tickets", ad.BackfillTickets)
	admin.POST("/fix-countries", ad.FixCountries)
}
