package replay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"TickBoard/internal/domain/models"
	"TickBoard/pkg/logger"

	"github.com/gorilla/websocket"
)

// dialHubClient connects one WebSocket client to the hub through a test
// server and returns the client side of the connection.
func dialHubClient(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		hub.Add(conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(logger.Nop())
	client := dialHubClient(t, hub)

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.ClientCount() != 1 {
		t.Fatalf("client never registered")
	}

	snap := &models.Snapshot{
		Timestamp: time.Date(2021, 11, 8, 10, 0, 0, 0, time.UTC),
		Stocks:    []models.StockRecord{{StockID: "ALORA.FR", CurrentPrice: 12.5}},
	}
	hub.Broadcast(snap)

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	got, err := models.ParseSnapshot(raw)
	if err != nil {
		t.Fatalf("broadcast frame must parse as a snapshot: %v", err)
	}
	if len(got.Stocks) != 1 || got.Stocks[0].StockID != "ALORA.FR" {
		t.Fatalf("unexpected frame %+v", got)
	}
}

func TestHubDropsDeadClient(t *testing.T) {
	hub := NewHub(logger.Nop())
	client := dialHubClient(t, hub)

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	client.Close()

	snap := &models.Snapshot{Timestamp: time.Now().UTC(), Stocks: []models.StockRecord{}}
	// Writes to a closed peer eventually fail; the hub prunes on error.
	deadline = time.Now().Add(2 * time.Second)
	for hub.ClientCount() > 0 && time.Now().Before(deadline) {
		hub.Broadcast(snap)
		time.Sleep(10 * time.Millisecond)
	}
	if hub.ClientCount() != 0 {
		t.Fatalf("dead client never pruned")
	}
}

func TestHubRemoveTwice(t *testing.T) {
	hub := NewHub(logger.Nop())
	client := dialHubClient(t, hub)

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	hub.mu.Lock()
	var conn *websocket.Conn
	for c := range hub.clients {
		conn = c
	}
	hub.mu.Unlock()

	hub.Remove(conn)
	hub.Remove(conn)
	if hub.ClientCount() != 0 {
		t.Fatalf("client count %d", hub.ClientCount())
	}
	_ = client
}

func TestBroadcasterServesCurrentImmediately(t *testing.T) {
	csvData := `ID,SecType,Last,Trading time,Trading date
ALORA.FR,E,10.0,10:00:00,2021-11-08
ALORA.FR,E,11.0,10:00:01,2021-11-08
`
	src := NewSource("test.csv", nil, 38, 100)
	if err := src.LoadReader(strings.NewReader(csvData)); err != nil {
		t.Fatalf("load: %v", err)
	}
	b := NewBroadcaster(src, NewHub(logger.Nop()), time.Hour, logger.Nop())
	if b.Current() != nil {
		t.Fatalf("current must be nil before start")
	}

	b.Start(context.Background())
	defer b.Stop()

	cur := b.Current()
	if cur == nil || len(cur.Stocks) != 1 {
		t.Fatalf("first snapshot not generated on start: %+v", cur)
	}
	// Idempotent start must not advance the replay.
	b.Start(context.Background())
	if src.Generated() != 1 {
		t.Fatalf("second start re-ticked the source: %d", src.Generated())
	}

	b.Stop()
	b.Stop()
}
