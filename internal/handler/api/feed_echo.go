package api

import (
	"encoding/json"
	"net/http"
	"time"

	"TickBoard/internal/service/ratelimit"
	"TickBoard/internal/service/replay"
	xlogger "TickBoard/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// FeedEchoHandler exposes the replay feed: the push channel at
// /ws/stocks and the request/response snapshot endpoint the polling
// fallback consumes. Both endpoints serve the same wire shape.
type FeedEchoHandler struct {
	logger   *xlogger.Logger
	bc       *replay.Broadcaster
	limiter  *ratelimit.Limiter
	capacity float64
	refill   float64
	upgrader websocket.Upgrader
}

func NewFeedEchoHandler(logger *xlogger.Logger, bc *replay.Broadcaster, capacity, refillPerSec float64) *FeedEchoHandler {
	if capacity <= 0 {
		capacity = 5
	}
	if refillPerSec <= 0 {
		refillPerSec = 1
	}
	return &FeedEchoHandler{
		logger:   logger,
		bc:       bc,
		limiter:  ratelimit.New(),
		capacity: capacity,
		refill:   refillPerSec,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 10 * time.Second,
			CheckOrigin:      func(*http.Request) bool { return true },
		},
	}
}

func (h *FeedEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/stocks", h.Stream)
	e.GET("/api/snapshot", h.Snapshot)
	e.GET("/healthz", h.Health)
}

// Stream upgrades the request and pushes snapshots until the client goes
// away. The current snapshot is sent immediately on connect so a fresh
// client does not wait for the next tick.
func (h *FeedEchoHandler) Stream(c echo.Context) error {
	if !h.limiter.Allow(c.RealIP(), h.capacity, h.refill) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many connection attempts")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err))
		return nil
	}

	if snap := h.bc.Current(); snap != nil {
		payload, merr := json.Marshal(snap)
		if merr == nil {
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if werr := conn.WriteMessage(websocket.TextMessage, payload); werr != nil {
				_ = conn.Close()
				return nil
			}
		}
	}

	hub := h.bc.Hub()
	hub.Add(conn)
	// Block reading until the peer disconnects; inbound content is ignored.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	hub.Remove(conn)
	return nil
}

// Snapshot returns the bare current snapshot in the shared wire shape.
func (h *FeedEchoHandler) Snapshot(c echo.Context) error {
	snap := h.bc.Current()
	if snap == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "no snapshot yet")
	}
	return c.JSON(http.StatusOK, snap)
}

func (h *FeedEchoHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
