package ingest

import (
	"context"
	"log"
	"sync"
	"time"
)

// Source is the scraping collaborator: it produces one batch of raw
// weekly rows together with the reporting window they cover.  How the
// rows are obtained (browser automation, file export, open data API) is
// outside this package; implementations must honor the context so a
// fetch cannot hang an ingestion run.
type Source interface {
	FetchWeekly(ctx context.Context) (rows []map[string]any, start, end time.Time, err error)
}

// Status is a snapshot of the runner's state, exposed via the admin API
// instead of a bare module-level boolean.
type Status struct {
	Running      bool         `json:"running"`
	LastStarted  *time.Time   `json:"last_started,omitempty"`
	LastFinished *time.Time   `json:"last_finished,omitempty"`
	LastResult   *BatchResult `json:"last_result,omitempty"`
	LastError    string       `json:"last_error,omitempty"`
}

// Runner owns the single-flight coordination around ingestion: at most
// one run is active at a time, and a trigger while one is running is
// rejected, not queued.  The scraped source does not tolerate
// concurrent sessions.
type Runner struct {
	rec          *Reconciler
	src          Source
	fetchTimeout time.Duration
	onCompleted  func(start, end time.Time, res BatchResult)

	mu           sync.Mutex
	running      bool
	lastStarted  time.Time
	lastFinished time.Time
	lastResult   *BatchResult
	lastErr      string
}

// NewRunner builds a runner.  onCompleted, when non-nil, is invoked
// after every successful run (used to publish the scrape.completed
// event); failures in the callback must not affect the run itself.
func NewRunner(rec *Reconciler, src Source, fetchTimeout time.Duration, onCompleted func(start, end time.Time, res BatchResult)) *Runner {
	if fetchTimeout <= 0 {
		fetchTimeout = 2 * time.Minute
	}
	return &Runner{rec: rec, src: src, fetchTimeout: fetchTimeout, onCompleted: onCompleted}
}

// Trigger starts an ingestion run in the background.  It returns
// ErrAlreadyRunning when a run is already active.
func (r *Runner) Trigger() error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	r.running = true
	r.lastStarted = time.Now().UTC()
	r.mu.Unlock()

	go r.run()
	return nil
}

// Status returns a copy of the runner's current state.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Status{Running: r.running, LastError: r.lastErr, LastResult: r.lastResult}
	if !r.lastStarted.IsZero() {
		t := r.lastStarted
		s.LastStarted = &t
	}
	if !r.lastFinished.IsZero() {
		t := r.lastFinished
		s.LastFinished = &t
	}
	return s
}

func (r *Runner) run() {
	defer func() {
		r.mu.Lock()
		r.running = false
		r.lastFinished = time.Now().UTC()
		r.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), r.fetchTimeout)
	rows, start, end, err := r.src.FetchWeekly(ctx)
	cancel()
	if err != nil {
		log.Printf("ingest: source fetch failed: %v", err)
		r.finish(nil, err)
		return
	}

	res, err := r.rec.IngestBatch(context.Background(), rows, start, end)
	if err != nil {
		log.Printf("ingest: batch failed after %d inserts: %v", res.Inserted, err)
		r.finish(&res, err)
		return
	}

	log.Printf("ingest: batch %s..%s done: %d inserted, %d skipped, %d failed, %d new movies",
		start.Format("2006-01-02"), end.Format("2006-01-02"),
		res.Inserted, res.Skipped, res.Failed, res.Movies)
	r.finish(&res, nil)

	if r.onCompleted != nil {
		r.onCompleted(start, end, res)
	}
}

func (r *Runner) finish(res *BatchResult, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastResult = res
	if err != nil {
		r.lastErr = err.Error()
	} else {
		r.lastErr = ""
	}
}

// StartScheduler triggers one run per day at the given hour in loc,
// until ctx is cancelled.  A tick that lands while a run is still
// active is skipped by the single-flight guard.
func (r *Runner) StartScheduler(ctx context.Context, hour int, loc *time.Location) {
	go func() {
		for {
			now := time.Now().In(loc)
			next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, loc)
			if !next.After(now) {
				next = next.AddDate(0, 0, 1)
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(next.Sub(now)):
			}
			if err := r.Trigger(); err != nil {
				log.Printf("ingest: scheduled run skipped: %v", err)
			}
		}
	}()
}
