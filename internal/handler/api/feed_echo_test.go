package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"TickBoard/internal/domain/models"
	"TickBoard/internal/service/replay"
	"TickBoard/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const replayCSV = `ID,SecType,Last,Trading time,Trading date
ALORA.FR,E,10.0,10:00:00,2021-11-08
ALORA.FR,E,11.0,10:00:01,2021-11-08
`

func newFeedServer(t *testing.T, started bool) (*httptest.Server, *replay.Broadcaster) {
	t.Helper()
	src := replay.NewSource("replay.csv", nil, 38, 100)
	if err := src.LoadReader(strings.NewReader(replayCSV)); err != nil {
		t.Fatalf("load: %v", err)
	}
	bc := replay.NewBroadcaster(src, replay.NewHub(logger.Nop()), time.Hour, logger.Nop())
	if started {
		bc.Start(context.Background())
		t.Cleanup(bc.Stop)
	}

	e := echo.New()
	NewFeedEchoHandler(logger.Nop(), bc, 100, 100).RegisterRoutes(e)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv, bc
}

func TestSnapshotEndpointBeforeFirstTick(t *testing.T) {
	srv, _ := newFeedServer(t, false)
	resp, err := http.Get(srv.URL + "/api/snapshot")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status %d, want 503", resp.StatusCode)
	}
}

func TestSnapshotEndpointServesWireShape(t *testing.T) {
	srv, _ := newFeedServer(t, true)
	resp, err := http.Get(srv.URL + "/api/snapshot")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	// The endpoint serves the exact shape the polling client validates.
	snap, perr := models.ParseSnapshot(body)
	if perr != nil {
		t.Fatalf("snapshot body failed wire validation: %v", perr)
	}
	if len(snap.Stocks) != 1 || snap.Stocks[0].StockID != "ALORA.FR" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestStreamSendsInitialSnapshot(t *testing.T) {
	srv, _ := newFeedServer(t, true)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/stocks"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read initial snapshot: %v", err)
	}
	snap, perr := models.ParseSnapshot(raw)
	if perr != nil {
		t.Fatalf("initial frame failed validation: %v", perr)
	}
	if len(snap.Stocks) != 1 {
		t.Fatalf("unexpected initial snapshot %+v", snap)
	}
}

func TestStreamRateLimited(t *testing.T) {
	src := replay.NewSource("replay.csv", nil, 38, 100)
	if err := src.LoadReader(strings.NewReader(replayCSV)); err != nil {
		t.Fatalf("load: %v", err)
	}
	bc := replay.NewBroadcaster(src, replay.NewHub(logger.Nop()), time.Hour, logger.Nop())

	e := echo.New()
	// One token, refilled far too slowly to matter in this test.
	NewFeedEchoHandler(logger.Nop(), bc, 1, 0.0001).RegisterRoutes(e)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/stocks"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("first dial: %v", err)
	}
	defer conn.Close()

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatalf("second dial must be throttled")
	}
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %+v", resp)
	}
}
