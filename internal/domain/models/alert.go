package models

import "time"

// AlertEvent is a one-shot, user-facing notification that a symbol entered
// a breakout state. Emitted at most once per entering transition.
type AlertEvent struct {
	StockID      string    `json:"stock_id"`
	Breakout     Breakout  `json:"breakout"`
	Severity     string    `json:"severity"`
	CurrentPrice float64   `json:"current_price"`
	At           time.Time `json:"at"`
}
