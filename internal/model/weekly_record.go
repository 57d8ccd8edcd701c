package model

import (
	"database/sql"
	"time"
)

// WeeklyRecord is one row of the weekly ledger: a single movie's box
// office figures for one inclusive Monday–Sunday reporting window.
// The ledger holds at most one row per (movie_id, report_date_start,
// report_date_end) tuple; ingestion upholds that invariant so re-runs
// over already-scraped weeks insert nothing.
//
// Fields:
//  ID                – primary key identifier.
//  MovieID           – owning movie.
//  ReportDateStart   – first day of the reporting window (Monday).
//  ReportDateEnd     – last day of the reporting window (Sunday).
//  TheaterCount      – number of theaters showing the movie that week.
//  WeeklyRevenue     – revenue earned inside the window.
//  CumulativeRevenue – running total as reported by the source.
//  WeeklyTickets     – tickets sold inside the window.
//  CumulativeTickets – running ticket total; derived by summation when
//                      the source does not supply it.
type WeeklyRecord struct {
	ID                uint64        // weekly_records.id
	MovieID           uint64        // weekly_records.movie_id
	ReportDateStart   time.Time     // weekly_records.report_date_start
	ReportDateEnd     time.Time     // weekly_records.report_date_end
	TheaterCount      sql.NullInt64 // weekly_records.theater_count
	WeeklyRevenue     sql.NullInt64 // weekly_records.weekly_revenue
	CumulativeRevenue sql.NullInt64 // weekly_records.cumulative_revenue
	WeeklyTickets     sql.NullInt64 // weekly_records.weekly_tickets
	CumulativeTickets sql.NullInt64 // weekly_records.cumulative_tickets
}
