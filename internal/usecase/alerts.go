package usecase

import (
	"time"

	"TickBoard/internal/domain/models"
)

// AlertDeduplicator decides which symbols newly entered a breakout
// condition and should surface a one-shot notification. It keeps the
// last-seen breakout classification per symbol; the history is never
// exposed outside this component.
type AlertDeduplicator struct {
	history map[string]models.Breakout
}

// NewAlertDeduplicator creates an empty deduplicator.
func NewAlertDeduplicator() *AlertDeduplicator {
	return &AlertDeduplicator{history: make(map[string]models.Breakout)}
}

// Process compares every reported record against the stored breakout
// value and returns one AlertEvent per entering transition. The stored
// value is updated for every reported record whether or not an event
// fired. Symbols absent from the snapshot keep their history untouched,
// so state persists across ticks where a symbol is not reported. No event
// fires on steady state or when a breakout clears.
func (d *AlertDeduplicator) Process(snap *models.Snapshot) []models.AlertEvent {
	if snap == nil {
		return nil
	}
	var events []models.AlertEvent
	for _, r := range snap.Stocks {
		prev := d.history[r.StockID]
		if r.Breakout.Present() && r.Breakout != prev {
			events = append(events, models.AlertEvent{
				StockID:      r.StockID,
				Breakout:     r.Breakout,
				Severity:     r.Breakout.Severity(),
				CurrentPrice: r.CurrentPrice,
				At:           time.Now().UTC(),
			})
		}
		if r.Breakout.Present() {
			d.history[r.StockID] = r.Breakout
		} else {
			delete(d.history, r.StockID)
		}
	}
	return events
}
