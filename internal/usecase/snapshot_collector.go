package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"TickBoard/internal/domain/models"
	drepo "TickBoard/internal/domain/repository"
	"TickBoard/internal/service/poll"
	"TickBoard/pkg/logger"
)

const requestFailedPrefix = "request failed: "

// SnapshotCollector ties the push channel and the polling fallback to the
// board. A single goroutine consumes every completion (message arrival,
// state transition, poll result), so snapshot replacement and alert
// history updates are serialized the way a single event loop would run
// them. Completions are treated as latest-observed-wins: the board's
// timestamp guard decides, not arrival order.
type SnapshotCollector struct {
	stream   drepo.SnapshotStream
	poller   *poll.Poller
	board    *Board
	dedup    *AlertDeduplicator
	notifier drepo.Notifier
	metrics  drepo.Metrics
	log      *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewSnapshotCollector creates a collector. poller may be nil when the
// pull path is disabled.
func NewSnapshotCollector(
	stream drepo.SnapshotStream,
	poller *poll.Poller,
	board *Board,
	dedup *AlertDeduplicator,
	notifier drepo.Notifier,
	metrics drepo.Metrics,
	log *logger.Logger,
) *SnapshotCollector {
	return &SnapshotCollector{
		stream:   stream,
		poller:   poller,
		board:    board,
		dedup:    dedup,
		notifier: notifier,
		metrics:  metrics,
		log:      log,
	}
}

// Start launches the stream, the poller, and the consuming loop.
func (c *SnapshotCollector) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	if err := c.stream.Start(runCtx); err != nil {
		cancel()
		return err
	}
	if c.poller != nil {
		c.poller.Start(runCtx)
	}
	go c.consume(runCtx)
	return nil
}

// Shutdown idempotently tears everything down: the loop, the poller's
// timer, and the socket. A leaked timer or socket would keep doing work
// against a dead view.
func (c *SnapshotCollector) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()

	if c.poller != nil {
		c.poller.Stop()
	}
	if err := c.stream.Close(); err != nil {
		return err
	}
	if c.notifier != nil {
		return c.notifier.Close()
	}
	return nil
}

func (c *SnapshotCollector) consume(ctx context.Context) {
	var pollResults <-chan poll.Result
	if c.poller != nil {
		pollResults = c.poller.Results()
	}
	for {
		select {
		case <-ctx.Done():
			return
		case st := <-c.stream.States():
			c.board.SetConnection(st)
			if st.Phase == models.PhaseClosed {
				c.log.Warn("push channel closed", logger.String("reason", st.Reason))
			}
		case snap := <-c.stream.Snapshots():
			c.apply(ctx, snap, "push")
		case res := <-pollResults:
			c.handlePollResult(ctx, res)
		}
	}
}

func (c *SnapshotCollector) handlePollResult(ctx context.Context, res poll.Result) {
	if res.Err != nil {
		if errors.Is(res.Err, models.ErrMalformedPayload) {
			c.metrics.RecordError("malformed")
			c.log.Warn("dropping malformed poll response", logger.Error(res.Err))
			// Surfaced only when there has never been a valid message to show.
			if c.board.Current() == nil {
				c.board.SetBanner(requestFailedPrefix + res.Err.Error())
			}
			return
		}
		c.metrics.RecordError("poll")
		c.log.Warn("poll request failed", logger.Error(res.Err))
		c.board.SetBanner(requestFailedPrefix + res.Err.Error())
		return
	}

	if c.apply(ctx, res.Snapshot, "poll") {
		if strings.HasPrefix(c.board.Status().Banner, requestFailedPrefix) {
			c.board.SetBanner("")
		}
	}
}

func (c *SnapshotCollector) apply(ctx context.Context, snap *models.Snapshot, source string) bool {
	if !c.board.Apply(snap) {
		c.metrics.RecordSnapshotDropped("stale")
		return false
	}
	c.metrics.RecordSnapshotApplied(source, len(snap.Stocks))
	for _, r := range snap.Stocks {
		c.metrics.RecordLastPrice(r.StockID, r.CurrentPrice)
	}

	for _, ev := range c.dedup.Process(snap) {
		c.metrics.RecordAlert(string(ev.Breakout))
		if c.notifier == nil {
			continue
		}
		if err := c.notifier.Notify(ctx, ev); err != nil {
			c.metrics.RecordError("notify")
			c.log.Error("alert notification failed",
				logger.String("stock_id", ev.StockID), logger.Error(err))
		}
	}
	return true
}
