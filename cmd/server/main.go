package main // Entry point package

import (
	"context" // Context for startup and background jobs
	"log"     // Logging library
	"time"    // Used by the scrape completion callback

	"github.com/joho/godotenv" // Loads .env files into the environment
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/twfilmdata/boxoffice/internal/config"     // Internal config loader
	"github.com/twfilmdata/boxoffice/internal/database"   // MySQL connection and schema
	"github.com/twfilmdata/boxoffice/internal/handler"    // HTTP handlers
	"github.com/twfilmdata/boxoffice/internal/ingest"     // Reconciler and scrape runner
	"github.com/twfilmdata/boxoffice/internal/middleware" // Cache, rate limit, JWT
	"github.com/twfilmdata/boxoffice/internal/queue"      // Scrape event consumer
	"github.com/twfilmdata/boxoffice/internal/repository" // Data access layer
	"github.com/twfilmdata/boxoffice/internal/router"     // Route registration
	queue_publisher "github.com/twfilmdata/boxoffice/internal/service"
	"github.com/twfilmdata/boxoffice/internal/source" // Weekly export source client
	"github.com/twfilmdata/boxoffice/internal/stats"  // Aggregation service
)

func main() {
	// Load .env when present; real deployments set variables directly.
	if err := godotenv.Load(); err != nil {
		log.Println("main: no .env file found, relying on environment")
	}

	cfg := config.Load()
	scrapeCfg := config.LoadScrapeConfig()
	cacheCfg := config.LoadCacheConfig()
	rlCfg := config.LoadRateLimitConfig()

	// Open MySQL and make sure the schema exists before serving.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("main: open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("main: ensure schema: %v", err)
	}

	// Redis backs the response cache and the rate limiter.
	rdb := config.NewRedisClient()

	// Repositories.
	movieRepo := repository.NewMovieRepo(db)
	recordRepo := repository.NewWeeklyRecordRepo(db)
	showtimeRepo := repository.NewShowtimeRepo(db)
	statsRepo := repository.NewStatsRepo(db)

	// Ingestion: reconciler plus the single-flight runner.  Completed
	// runs publish an audit event; publish failures are logged by the
	// publisher and never fail the run.
	reconciler := ingest.NewReconciler(movieRepo, recordRepo)
	src := source.NewHTTPSource(scrapeCfg.SourceURL)
	runner := ingest.NewRunner(reconciler, src, scrapeCfg.FetchTimeout, func(start, end time.Time, res ingest.BatchResult) {
		_ = queue_publisher.PublishScrapeCompleted(context.Background(), queue.ScrapeCompletedEvent{
			PeriodStart: start.Format("2006-01-02"),
			PeriodEnd:   end.Format("2006-01-02"),
			Inserted:    res.Inserted,
			Skipped:     res.Skipped,
			Failed:      res.Failed,
			NewMovies:   res.Movies,
			FinishedAt:  time.Now().UTC().Format(time.RFC3339),
		})
	})
	// Daily scheduled run plus the audit log consumer, both in the
	// background for the life of the process.
	runner.StartScheduler(ctx, scrapeCfg.Hour, scrapeCfg.Location)
	go func() {
		if err := queue.StartScrapeConsumer(); err != nil {
			log.Printf("main: scrape consumer stopped: %v", err)
		}
	}()

	// Handlers.
	movieHandler := &handler.MovieHandler{Movies: movieRepo, Records: recordRepo, Showtimes: showtimeRepo}
	statsHandler := &handler.StatsHandler{Stats: stats.NewService(statsRepo)}
	authHandler := &handler.AuthHandler{Cfg: cfg}
	adminHandler := &handler.AdminHandler{Runner: runner, Reconciler: reconciler, Movies: movieRepo, Records: recordRepo, Showtimes: showtimeRepo}

	e := echo.New()
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	// Public read endpoints get the Redis response cache and the token
	// bucket rate limiter; both fail open when Redis is unreachable.
	var publicMW []echo.MiddlewareFunc
	if rlCfg.Enabled {
		publicMW = append(publicMW, middleware.NewTokenBucket(rlCfg, rdb))
	}
	if cacheCfg.Enabled {
		publicMW = append(publicMW, middleware.NewRedisCache(cacheCfg, rdb))
	}

	router.RegisterRoutes(e)
	router.RegisterPublic(e, movieHandler, statsHandler, publicMW...)
	router.RegisterAuth(e, authHandler, adminHandler, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
