package ingest

import (
	"context"
	"errors"
	"testing"
	"time"
)

// blockingSource holds FetchWeekly until release is closed, so tests
// can observe the runner mid-flight.
type blockingSource struct {
	release chan struct{}
	rows    []map[string]any
}

func (s *blockingSource) FetchWeekly(ctx context.Context) ([]map[string]any, time.Time, time.Time, error) {
	select {
	case <-s.release:
	case <-ctx.Done():
		return nil, time.Time{}, time.Time{}, ctx.Err()
	}
	return s.rows, day(2024, 3, 4), day(2024, 3, 10), nil
}

func waitIdle(t *testing.T, r *Runner) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if !r.Status().Running {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("runner still running after 5s")
}

func TestRunnerSingleFlight(t *testing.T) {
	store := newMemStore()
	src := &blockingSource{
		release: make(chan struct{}),
		rows:    []map[string]any{{"片名": "沙丘", "金額": 1000}},
	}
	r := NewRunner(NewReconciler(store, store), src, time.Minute, nil)

	if err := r.Trigger(); err != nil {
		t.Fatalf("first trigger: %v", err)
	}
	if err := r.Trigger(); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second trigger = %v, want ErrAlreadyRunning", err)
	}
	if !r.Status().Running {
		t.Error("status not running while source is blocked")
	}

	close(src.release)
	waitIdle(t, r)

	st := r.Status()
	if st.LastResult == nil || st.LastResult.Inserted != 1 {
		t.Fatalf("last result = %+v, want 1 inserted", st.LastResult)
	}
	if st.LastError != "" {
		t.Errorf("last error = %q, want empty", st.LastError)
	}
	if st.LastStarted == nil || st.LastFinished == nil {
		t.Error("timestamps missing from status")
	}

	// The slot is free again after completion.
	src.release = make(chan struct{})
	close(src.release)
	if err := r.Trigger(); err != nil {
		t.Fatalf("trigger after completion: %v", err)
	}
	waitIdle(t, r)
}

func TestRunnerRecordsSourceFailure(t *testing.T) {
	store := newMemStore()
	failing := sourceFunc(func(ctx context.Context) ([]map[string]any, time.Time, time.Time, error) {
		return nil, time.Time{}, time.Time{}, errors.New("scrape session refused")
	})
	r := NewRunner(NewReconciler(store, store), failing, time.Minute, nil)

	if err := r.Trigger(); err != nil {
		t.Fatalf("trigger: %v", err)
	}
	waitIdle(t, r)

	st := r.Status()
	if st.LastError == "" {
		t.Error("source failure not recorded in status")
	}
	if st.LastResult != nil {
		t.Errorf("last result = %+v, want nil after fetch failure", st.LastResult)
	}
}

func TestRunnerOnCompletedCallback(t *testing.T) {
	store := newMemStore()
	src := &blockingSource{
		release: make(chan struct{}),
		rows:    []map[string]any{{"片名": "沙丘", "金額": 1000}},
	}
	close(src.release)

	done := make(chan BatchResult, 1)
	r := NewRunner(NewReconciler(store, store), src, time.Minute, func(start, end time.Time, res BatchResult) {
		done <- res
	})
	if err := r.Trigger(); err != nil {
		t.Fatalf("trigger: %v", err)
	}
	select {
	case res := <-done:
		if res.Inserted != 1 {
			t.Errorf("callback result = %+v, want 1 inserted", res)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("onCompleted never invoked")
	}
}

// sourceFunc adapts a function to the Source interface.
type sourceFunc func(ctx context.Context) ([]map[string]any, time.Time, time.Time, error)

func (f sourceFunc) FetchWeekly(ctx context.Context) ([]map[string]any, time.Time, time.Time, error) {
	return f(ctx)
}
