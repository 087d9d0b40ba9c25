package poll

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"TickBoard/internal/domain/models"
	xhttp "TickBoard/pkg/http"
	"TickBoard/pkg/logger"
)

const snapshotBody = `{"timestamp": "2021-11-08T10:00:00Z", "stocks": [{"stock_id": "MLECE.FR", "current_price": 8.0, "trading_time": "10:00:00"}]}`

func TestHTTPSourceFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(snapshotBody))
	}))
	t.Cleanup(srv.Close)

	src := NewHTTPSource(srv.URL, xhttp.NewClient(xhttp.WithTimeout(time.Second)))
	snap, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(snap.Stocks) != 1 || snap.Stocks[0].StockID != "MLECE.FR" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestHTTPSourceFetchMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"timestamp": "2021-11-08T10:00:00Z"}`))
	}))
	t.Cleanup(srv.Close)

	src := NewHTTPSource(srv.URL, xhttp.NewClient())
	if _, err := src.Fetch(context.Background()); !errors.Is(err, models.ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
}

func TestHTTPSourceFetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	src := NewHTTPSource(srv.URL, xhttp.NewClient())
	_, err := src.Fetch(context.Background())
	if err == nil {
		t.Fatalf("expected error on 503")
	}
	if errors.Is(err, models.ErrMalformedPayload) {
		t.Fatalf("transport failure must not classify as malformed")
	}
}

type countingSource struct {
	calls atomic.Int64
	err   error
}

func (s *countingSource) Fetch(ctx context.Context) (*models.Snapshot, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return &models.Snapshot{Timestamp: time.Now().UTC()}, nil
}

func TestPollerTicksAtFixedInterval(t *testing.T) {
	src := &countingSource{}
	p := NewPoller(src, 20*time.Millisecond, logger.Nop())
	p.Start(context.Background())
	defer p.Stop()

	got := 0
	deadline := time.After(2 * time.Second)
	for got < 3 {
		select {
		case res := <-p.Results():
			if res.Err != nil {
				t.Fatalf("unexpected error: %v", res.Err)
			}
			got++
		case <-deadline:
			t.Fatalf("only %d results before deadline", got)
		}
	}
}

func TestPollerReportsFailuresAndKeepsTicking(t *testing.T) {
	src := &countingSource{err: errors.New("boom")}
	p := NewPoller(src, 20*time.Millisecond, logger.Nop())
	p.Start(context.Background())
	defer p.Stop()

	deadline := time.After(2 * time.Second)
	for i := 0; i < 2; i++ {
		select {
		case res := <-p.Results():
			if res.Err == nil {
				t.Fatalf("expected failure result")
			}
		case <-deadline:
			t.Fatalf("poller stopped ticking after a failure")
		}
	}
}

func TestPollerStartStopIdempotent(t *testing.T) {
	src := &countingSource{}
	p := NewPoller(src, 10*time.Millisecond, logger.Nop())
	p.Start(context.Background())
	p.Start(context.Background())
	p.Stop()
	p.Stop()

	// After Stop no further requests are issued.
	time.Sleep(30 * time.Millisecond)
	before := src.calls.Load()
	time.Sleep(50 * time.Millisecond)
	if after := src.calls.Load(); after != before {
		t.Fatalf("poller kept fetching after stop: %d -> %d", before, after)
	}
}
