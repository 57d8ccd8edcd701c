package config

import (
	"log"
	"time"
)

// ScrapeConfig controls the weekly ingestion job.  The source does not
// tolerate concurrent sessions, so the runner enforces single-flight;
// FetchTimeout bounds one source fetch so a stuck source fails the
// batch instead of hanging it.
type ScrapeConfig struct {
	SourceURL    string         // endpoint serving the weekly export rows
	FetchTimeout time.Duration  // per-fetch deadline
	Hour         int            // local hour of the daily scheduled run
	Location     *time.Location // timezone of the schedule
}

// LoadScrapeConfig reads the scrape settings from the environment.
// Defaults: 2 minute fetch timeout, daily run at 03:00 Asia/Taipei.
func LoadScrapeConfig() ScrapeConfig {
	tz := getenv("SCRAPE_TZ", "Asia/Taipei")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %q, falling back to UTC", tz)
		loc = time.UTC
	}
	return ScrapeConfig{
		SourceURL:    getenv("SCRAPE_SOURCE_URL", ""),
		FetchTimeout: parseDur(getenv("SCRAPE_FETCH_TIMEOUT", "2m")),
		Hour:         atoi(getenv("SCRAPE_HOUR", "3")),
		Location:     loc,
	}
}
