package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrMalformedPayload marks an inbound message that failed structural
// validation. Such a message is dropped; the current snapshot stays as is.
var ErrMalformedPayload = errors.New("malformed payload")

// Breakout is the backend-determined crossover classification for a symbol.
// The empty value means no breakout was reported at this tick.
type Breakout string

const (
	BreakoutNone    Breakout = ""
	BreakoutBullish Breakout = "BULLISH_BREAKOUT"
	BreakoutBearish Breakout = "BEARISH_BREAKOUT"
)

// Valid reports whether b is one of the known classifications.
func (b Breakout) Valid() bool {
	return b == BreakoutNone || b == BreakoutBullish || b == BreakoutBearish
}

// Present reports whether a breakout was reported at all.
func (b Breakout) Present() bool { return b != BreakoutNone }

// Severity maps the variant to a fixed alert severity label.
func (b Breakout) Severity() string {
	switch b {
	case BreakoutBullish:
		return "info"
	case BreakoutBearish:
		return "warning"
	default:
		return "none"
	}
}

// StockRecord is one symbol's latest observation as reported by the feed.
// PriceChange and PriceChangePercent are pointers so that an absent value
// stays distinguishable from an explicit zero.
type StockRecord struct {
	StockID            string   `json:"stock_id"`
	SecType            string   `json:"sec_type,omitempty"`
	CurrentPrice       float64  `json:"current_price"`
	EMA38              float64  `json:"ema38"`
	EMA100             float64  `json:"ema100"`
	Breakout           Breakout `json:"breakout,omitempty"`
	PriceChange        *float64 `json:"price_change,omitempty"`
	PriceChangePercent *float64 `json:"price_change_percent,omitempty"`
	TradingTime        string   `json:"trading_time"`
}

// Snapshot is the complete state of all reported symbols at one instant.
// A new message always produces a wholly new Snapshot; it is never merged
// into or mutated after construction.
type Snapshot struct {
	Timestamp time.Time     `json:"timestamp"`
	Stocks    []StockRecord `json:"stocks"`
}

// wireSnapshot distinguishes a missing stocks array from an empty one.
type wireSnapshot struct {
	Timestamp string         `json:"timestamp"`
	Stocks    *[]StockRecord `json:"stocks"`
}

// ParseSnapshot parses and structurally validates an inbound message. Push
// and pull paths share this validation: a missing stocks array, a record
// without stock_id, a negative price, an unknown breakout value, or a
// duplicate stock_id all reject the whole message with ErrMalformedPayload.
func ParseSnapshot(raw []byte) (*Snapshot, error) {
	var w wireSnapshot
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if w.Stocks == nil {
		return nil, fmt.Errorf("%w: stocks array missing", ErrMalformedPayload)
	}

	ts, err := time.Parse(time.RFC3339, w.Timestamp)
	if err != nil {
		ts, err = time.Parse(time.RFC3339Nano, w.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("%w: bad timestamp %q", ErrMalformedPayload, w.Timestamp)
		}
	}

	seen := make(map[string]struct{}, len(*w.Stocks))
	for i := range *w.Stocks {
		r := &(*w.Stocks)[i]
		if r.StockID == "" {
			return nil, fmt.Errorf("%w: record %d has empty stock_id", ErrMalformedPayload, i)
		}
		if r.CurrentPrice < 0 {
			return nil, fmt.Errorf("%w: %s has negative price", ErrMalformedPayload, r.StockID)
		}
		if !r.Breakout.Valid() {
			return nil, fmt.Errorf("%w: %s has unknown breakout %q", ErrMalformedPayload, r.StockID, r.Breakout)
		}
		if _, dup := seen[r.StockID]; dup {
			return nil, fmt.Errorf("%w: duplicate stock_id %s", ErrMalformedPayload, r.StockID)
		}
		seen[r.StockID] = struct{}{}
	}

	return &Snapshot{Timestamp: ts, Stocks: *w.Stocks}, nil
}

// MarshalJSON emits the wire shape consumed by ParseSnapshot.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	stocks := s.Stocks
	if stocks == nil {
		stocks = []StockRecord{}
	}
	return json.Marshal(struct {
		Timestamp string        `json:"timestamp"`
		Stocks    []StockRecord `json:"stocks"`
	}{
		Timestamp: s.Timestamp.Format(time.RFC3339Nano),
		Stocks:    stocks,
	})
}
