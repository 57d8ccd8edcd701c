// Package queue defines message payloads exchanged over the message broker.
package queue

// ScrapeCompletedEvent is published after a weekly ingestion batch
// finishes successfully.  It carries enough information for downstream
// consumers to log or alert without querying the primary database.
type ScrapeCompletedEvent struct {
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	Inserted    int    `json:"inserted"`
	Skipped     int    `json:"skipped"`
	Failed      int    `json:"failed"`
	NewMovies   int    `json:"new_movies"`
	FinishedAt  string `json:"finished_at"`
}
