package usecase

import (
	"testing"
	"time"

	"TickBoard/internal/domain/models"
)

func TestBoardApplyReplacesWholesale(t *testing.T) {
	b := NewBoard()
	if b.Current() != nil {
		t.Fatalf("fresh board must have no snapshot")
	}

	t0 := time.Date(2021, 11, 8, 10, 0, 0, 0, time.UTC)
	first := snapAt(t0,
		models.StockRecord{StockID: "A", CurrentPrice: 1},
		models.StockRecord{StockID: "B", CurrentPrice: 2},
	)
	if !b.Apply(first) {
		t.Fatalf("first snapshot rejected")
	}

	second := snapAt(t0.Add(time.Second), models.StockRecord{StockID: "C", CurrentPrice: 3})
	if !b.Apply(second) {
		t.Fatalf("newer snapshot rejected")
	}
	cur := b.Current()
	if len(cur.Stocks) != 1 || cur.Stocks[0].StockID != "C" {
		t.Fatalf("replacement must not merge: %+v", cur.Stocks)
	}
}

func TestBoardApplyRejectsStale(t *testing.T) {
	b := NewBoard()
	t0 := time.Date(2021, 11, 8, 10, 0, 5, 0, time.UTC)
	b.Apply(snapAt(t0, models.StockRecord{StockID: "A", CurrentPrice: 5}))

	if b.Apply(snapAt(t0.Add(-2*time.Second), models.StockRecord{StockID: "A", CurrentPrice: 1})) {
		t.Fatalf("older snapshot must be rejected")
	}
	if b.Current().Stocks[0].CurrentPrice != 5 {
		t.Fatalf("stale snapshot overwrote the board")
	}

	// Equal timestamps are accepted; the later completion wins.
	if !b.Apply(snapAt(t0, models.StockRecord{StockID: "A", CurrentPrice: 6})) {
		t.Fatalf("equal-timestamp snapshot rejected")
	}
}

func TestBoardApplyNil(t *testing.T) {
	b := NewBoard()
	if b.Apply(nil) {
		t.Fatalf("nil snapshot applied")
	}
}

func TestBoardConnectionBanner(t *testing.T) {
	b := NewBoard()
	if st := b.Status(); st.Connection.Phase != models.PhaseConnecting || st.Banner != "" {
		t.Fatalf("fresh board status %+v", st)
	}

	b.SetConnection(models.Closed("read: connection reset"))
	st := b.Status()
	if st.Connection.Phase != models.PhaseClosed || st.Connection.Reason != "read: connection reset" {
		t.Fatalf("closed state not recorded: %+v", st)
	}
	if st.Banner != "connection error" {
		t.Fatalf("closed must raise the banner, got %q", st.Banner)
	}

	// Connecting does not clear the banner; only a successful open does.
	b.SetConnection(models.Connecting())
	if st := b.Status(); st.Banner != "connection error" {
		t.Fatalf("connecting cleared the banner prematurely")
	}

	b.SetConnection(models.Open())
	if st := b.Status(); st.Banner != "" {
		t.Fatalf("open must clear the banner, got %q", st.Banner)
	}
}

func TestBoardSetBanner(t *testing.T) {
	b := NewBoard()
	b.SetBanner("request failed: 503")
	if st := b.Status(); st.Banner != "request failed: 503" {
		t.Fatalf("banner %q", st.Banner)
	}
	b.SetBanner("")
	if st := b.Status(); st.Banner != "" {
		t.Fatalf("banner not cleared")
	}
}
