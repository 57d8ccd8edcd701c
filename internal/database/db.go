package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// schema holds the three-table layout: canonical movies, the weekly
// ledger and daily showtime counts.  utf8mb4 is required for the
// Chinese titles the sources produce.  The unique key on
// (movie_id, report_date_start, report_date_end) backs the ledger's
// idempotency invariant at the storage level; daily_showtimes has no
// such key on purpose, duplicate observations are additive signal.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS movies (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		release_date DATE NULL,
		country VARCHAR(64) NULL,
		distributor VARCHAR(255) NULL,
		KEY idx_movies_name (name),
		KEY idx_movies_release_date (release_date)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS weekly_records (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		movie_id BIGINT UNSIGNED NOT NULL,
		report_date_start DATE NOT NULL,
		report_date_end DATE NOT NULL,
		theater_count BIGINT NULL,
		weekly_revenue BIGINT NULL,
		cumulative_revenue BIGINT NULL,
		weekly_tickets BIGINT NULL,
		cumulative_tickets BIGINT NULL,
		UNIQUE KEY uq_weekly_period (movie_id, report_date_start, report_date_end),
		KEY idx_weekly_start (report_date_start),
		KEY idx_weekly_end (report_date_end),
		CONSTRAINT fk_weekly_movie FOREIGN KEY (movie_id) REFERENCES movies(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS daily_showtimes (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		movie_id BIGINT UNSIGNED NOT NULL,
		date DATE NOT NULL,
		region VARCHAR(64) NOT NULL,
		showtime_count INT NOT NULL,
		KEY idx_showtimes_date (date),
		KEY idx_showtimes_movie_date (movie_id, date),
		CONSTRAINT fk_showtime_movie FOREIGN KEY (movie_id) REFERENCES movies(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates the tables when they do not exist yet.  All
// statements are idempotent so startup is safe against an already
// provisioned database.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
