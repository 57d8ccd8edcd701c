package model

import "time"

// DailyShowtime records how many screenings a movie had in one
// administrative region on one calendar date.  Rows are written once
// per scrape run; duplicates across runs on the same day are tolerated
// as additive signal and deliberately not deduplicated.
//
// Fields:
//  ID            – primary key identifier.
//  MovieID       – owning movie.
//  Date          – calendar date the screenings occurred on.
//  Region        – administrative region label (e.g. "台北", "高雄").
//  ShowtimeCount – non-negative number of screenings counted.
type DailyShowtime struct {
	ID            uint64    // daily_showtimes.id
	MovieID       uint64    // daily_showtimes.movie_id
	Date          time.Time // daily_showtimes.date
	Region        string    // daily_showtimes.region
	ShowtimeCount int       // daily_showtimes.showtime_count
}
