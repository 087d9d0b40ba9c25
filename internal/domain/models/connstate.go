package models

// ConnectionPhase identifies where the push channel is in its lifecycle.
type ConnectionPhase string

const (
	PhaseConnecting ConnectionPhase = "connecting"
	PhaseOpen       ConnectionPhase = "open"
	PhaseClosed     ConnectionPhase = "closed"
)

// ConnectionState is owned exclusively by the transport connection. Reason
// is set only in the closed phase.
type ConnectionState struct {
	Phase  ConnectionPhase `json:"phase"`
	Reason string          `json:"reason,omitempty"`
}

// Connecting returns the state for an in-flight dial attempt.
func Connecting() ConnectionState { return ConnectionState{Phase: PhaseConnecting} }

// Open returns the state for an established push channel.
func Open() ConnectionState { return ConnectionState{Phase: PhaseOpen} }

// Closed returns the state for a dropped or failed channel.
func Closed(reason string) ConnectionState {
	return ConnectionState{Phase: PhaseClosed, Reason: reason}
}
