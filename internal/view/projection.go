// Package view derives the presentation views from the current snapshot.
// Everything here is a pure function of its input: no mutation, no
// network access.
package view

import (
	"time"

	"TickBoard/internal/domain/models"
)

// PriceClass is the visual class for a price change value.
type PriceClass string

const (
	ClassUp   PriceClass = "up"
	ClassDown PriceClass = "down"
)

// Summary holds the counters shown above the tables.
type Summary struct {
	TotalStocks     int    `json:"total_stocks"`
	ActiveBreakouts int    `json:"active_breakouts"`
	LastUpdate      string `json:"last_update"`
}

// Summarize computes the summary counters for a snapshot. A nil snapshot
// yields the zero summary.
func Summarize(snap *models.Snapshot) Summary {
	if snap == nil {
		return Summary{}
	}
	return Summary{
		TotalStocks:     len(snap.Stocks),
		ActiveBreakouts: countBreakouts(snap),
		LastUpdate:      snap.Timestamp.Format(time.RFC3339),
	}
}

func countBreakouts(snap *models.Snapshot) int {
	n := 0
	for _, r := range snap.Stocks {
		if r.Breakout.Present() {
			n++
		}
	}
	return n
}

// AllRows returns the records in snapshot order.
func AllRows(snap *models.Snapshot) []models.StockRecord {
	if snap == nil {
		return nil
	}
	return snap.Stocks
}

// BreakoutRows returns the records filtered to those with a breakout
// present, preserving snapshot order.
func BreakoutRows(snap *models.Snapshot) []models.StockRecord {
	if snap == nil {
		return nil
	}
	rows := make([]models.StockRecord, 0, len(snap.Stocks))
	for _, r := range snap.Stocks {
		if r.Breakout.Present() {
			rows = append(rows, r)
		}
	}
	return rows
}

// ClassifyChange maps a price change to its visual class. This is a total
// function: a strictly positive change is up; zero, negative, and absent
// all classify as down.
func ClassifyChange(change *float64) PriceClass {
	if change != nil && *change > 0 {
		return ClassUp
	}
	return ClassDown
}
