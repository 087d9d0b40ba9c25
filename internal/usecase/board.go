package usecase

import (
	"sync"

	"TickBoard/internal/domain/models"
)

// Status is the user-visible condition of the board: the connection
// state plus the error banner text, empty when healthy.
type Status struct {
	Connection models.ConnectionState `json:"connection"`
	Banner     string                 `json:"banner,omitempty"`
}

// Board owns the single current snapshot and the error banner. A new
// valid snapshot replaces the previous one wholesale; readers always see
// a complete snapshot, never a partial merge.
type Board struct {
	mu      sync.RWMutex
	current *models.Snapshot
	status  Status
}

// NewBoard creates an empty board in the connecting state.
func NewBoard() *Board {
	return &Board{status: Status{Connection: models.Connecting()}}
}

// Apply installs snap as the current snapshot unless it is older than
// what is already displayed. Out-of-order completions are resolved by
// timestamp so a stale response cannot overwrite a fresher snapshot.
// Returns false when the snapshot was rejected as stale.
func (b *Board) Apply(snap *models.Snapshot) bool {
	if snap == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current != nil && snap.Timestamp.Before(b.current.Timestamp) {
		return false
	}
	b.current = snap
	return true
}

// Current returns the current snapshot, or nil before the first valid
// message.
func (b *Board) Current() *models.Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.current
}

// SetConnection records a connection state transition and adjusts the
// banner: entering closed sets "connection error", entering open clears
// whatever banner was showing.
func (b *Board) SetConnection(st models.ConnectionState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status.Connection = st
	switch st.Phase {
	case models.PhaseClosed:
		b.status.Banner = "connection error"
	case models.PhaseOpen:
		b.status.Banner = ""
	}
}

// SetBanner sets the error banner without touching the connection state.
func (b *Board) SetBanner(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status.Banner = text
}

// Status returns the current user-visible status.
func (b *Board) Status() Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.status
}
