package feed

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"TickBoard/internal/domain/models"
	drepo "TickBoard/internal/domain/repository"
	"TickBoard/pkg/logger"

	"github.com/gorilla/websocket"
)

// Stream implements a SnapshotStream backed by the feed's WebSocket push
// channel. It owns the full connection lifecycle: Connecting -> Open on a
// successful handshake, Open -> Closed on a transport error or remote
// close, Closed -> Connecting after a fixed backoff. The retry loop is
// unbounded; the client never gives up permanently.
type Stream struct {
	url              string
	reconnectDelay   time.Duration
	handshakeTimeout time.Duration
	log              *logger.Logger
	metrics          drepo.Metrics

	snapshots chan *models.Snapshot
	states    chan models.ConnectionState

	mu        sync.Mutex
	runCancel context.CancelFunc
	conn      *websocket.Conn
	connected atomic.Bool
}

// New creates a new feed Stream.
func New(url string, reconnectDelay, handshakeTimeout time.Duration, log *logger.Logger, metrics drepo.Metrics) drepo.SnapshotStream {
	if reconnectDelay <= 0 {
		reconnectDelay = 5 * time.Second
	}
	return &Stream{
		url:              url,
		reconnectDelay:   reconnectDelay,
		handshakeTimeout: handshakeTimeout,
		log:              log,
		metrics:          metrics,
		snapshots:        make(chan *models.Snapshot, 16),
		states:           make(chan models.ConnectionState, 8),
	}
}

// Start launches the connection loop. Calling Start again supersedes and
// discards any prior in-flight attempt; only one connection is live at a
// time. The superseded socket is closed here so its read loop does not
// linger until the next frame.
func (s *Stream) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.runCancel != nil {
		s.runCancel()
	}
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
		s.connected.Store(false)
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.runCancel = cancel
	s.mu.Unlock()

	go s.run(runCtx)
	return nil
}

// Snapshots returns the channel of validated inbound snapshots.
func (s *Stream) Snapshots() <-chan *models.Snapshot { return s.snapshots }

// States returns the channel of connection state transitions.
func (s *Stream) States() <-chan models.ConnectionState { return s.states }

// IsConnected reports whether the push channel is open.
func (s *Stream) IsConnected() bool { return s.connected.Load() }

// Close is the idempotent teardown: it stops the retry loop and releases
// the socket.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runCancel != nil {
		s.runCancel()
		s.runCancel = nil
	}
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	s.connected.Store(false)
	return nil
}

func (s *Stream) run(ctx context.Context) {
	first := true
	for {
		if !first {
			if !sleep(ctx, s.reconnectDelay) {
				return
			}
			s.metrics.RecordReconnect()
		}
		first = false

		s.publishState(ctx, models.Connecting())

		dialer := websocket.Dialer{HandshakeTimeout: s.handshakeTimeout}
		conn, _, err := dialer.DialContext(ctx, s.url, nil)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.metrics.RecordError("connect")
			s.log.Warn("feed: connect failed", logger.Error(err), logger.String("url", s.url))
			s.publishState(ctx, models.Closed(err.Error()))
			continue
		}

		s.setConn(conn)
		s.connected.Store(true)
		s.log.Info("feed: connected", logger.String("url", s.url))
		s.publishState(ctx, models.Open())

		err = s.readLoop(ctx, conn)
		s.clearConn(conn)
		_ = conn.Close()

		if ctx.Err() != nil {
			return
		}
		reason := "remote close"
		if err != nil {
			reason = err.Error()
		}
		s.metrics.RecordError("stream")
		s.log.Warn("feed: connection lost", logger.String("reason", reason))
		s.publishState(ctx, models.Closed(reason))
	}
}

// readLoop consumes frames until the connection fails. Malformed frames
// are dropped without touching the current snapshot.
func (s *Stream) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		snap, perr := models.ParseSnapshot(raw)
		if perr != nil {
			s.metrics.RecordError("malformed")
			s.log.Warn("feed: dropping malformed message", logger.Error(perr))
			continue
		}
		select {
		case s.snapshots <- snap:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Stream) setConn(conn *websocket.Conn) {
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
}

// clearConn releases conn only if it is still the current one, so a
// superseded run cannot clobber the connection of its replacement.
func (s *Stream) clearConn(conn *websocket.Conn) {
	s.mu.Lock()
	if s.conn == conn {
		s.conn = nil
		s.connected.Store(false)
	}
	s.mu.Unlock()
}

func (s *Stream) publishState(ctx context.Context, st models.ConnectionState) {
	select {
	case s.states <- st:
	case <-ctx.Done():
	}
}

// sleep waits d or until ctx is done; returns false when cancelled.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
