package poll

import (
	"context"
	"fmt"
	"sync"
	"time"

	"TickBoard/internal/domain/models"
	drepo "TickBoard/internal/domain/repository"
	xhttp "TickBoard/pkg/http"
	"TickBoard/pkg/logger"
)

// Result is one polling outcome: either a validated snapshot or the
// request failure.
type Result struct {
	Snapshot *models.Snapshot
	Err      error
}

// HTTPSource fetches the complete current snapshot from the feed's
// request/response endpoint. Responses are validated exactly like push
// messages.
type HTTPSource struct {
	url    string
	client *xhttp.Client
}

// NewHTTPSource creates a SnapshotSource over the shared HTTP client.
func NewHTTPSource(url string, client *xhttp.Client) *HTTPSource {
	return &HTTPSource{url: url, client: client}
}

// Fetch requests and validates one snapshot.
func (s *HTTPSource) Fetch(ctx context.Context) (*models.Snapshot, error) {
	body, err := s.client.GetBytes(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	return models.ParseSnapshot(body)
}

// Poller drives the pull path on a fixed period regardless of the
// previous request's outcome. In-flight requests are neither queued nor
// aborted; a slow response simply resolves whenever it does and the
// collector decides whether it is still fresh.
type Poller struct {
	source   drepo.SnapshotSource
	interval time.Duration
	log      *logger.Logger

	results chan Result

	mu      sync.Mutex
	cancel  context.CancelFunc
	started bool
}

// NewPoller creates a poller with the given fixed interval.
func NewPoller(source drepo.SnapshotSource, interval time.Duration, log *logger.Logger) *Poller {
	if interval <= 0 {
		interval = time.Second
	}
	return &Poller{
		source:   source,
		interval: interval,
		log:      log,
		results:  make(chan Result, 16),
	}
}

// Results returns the channel of polling outcomes.
func (p *Poller) Results() <-chan Result { return p.results }

// Start begins ticking. Idempotent: a second Start is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.started = true
	p.mu.Unlock()

	go p.run(runCtx)
}

// Stop halts further requests. Idempotent. In-flight requests are left to
// resolve; their results are simply ignored once nobody reads them.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return
	}
	p.cancel()
	p.cancel = nil
	p.started = false
}

func (p *Poller) run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			go p.fetchOnce(ctx)
		}
	}
}

func (p *Poller) fetchOnce(ctx context.Context) {
	snap, err := p.source.Fetch(ctx)
	res := Result{Snapshot: snap, Err: err}
	if err != nil && ctx.Err() != nil {
		return
	}
	select {
	case p.results <- res:
	case <-ctx.Done():
	}
}
