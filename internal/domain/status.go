// Match status state machine.
//
// Valid status graph:
//
//	ACTIVE ──► CONTACTED ──► INTERVIEWING ──► HIRED
//	   │            │              │
//	   └────────────┴──────────────┴────────► REJECTED
//
// HIRED and REJECTED are terminal states.
package domain

import "fmt"

// MatchStatus values mirror the match_status enum in PostgreSQL.
type MatchStatus string

const (
	StatusActive       MatchStatus = "active"
	StatusContacted    MatchStatus = "contacted"
	StatusInterviewing MatchStatus = "interviewing"
	StatusHired        MatchStatus = "hired"
	StatusRejected     MatchStatus = "rejected"
)

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[MatchStatus][]MatchStatus{
	StatusActive:       {StatusContacted, StatusRejected},
	StatusContacted:    {StatusInterviewing, StatusRejected},
	StatusInterviewing: {StatusHired, StatusRejected},
	// HIRED and REJECTED are terminal — no outgoing transitions
}

// ParseMatchStatus converts a raw string to a MatchStatus, returning an error
// for unknown values.
func ParseMatchStatus(s string) (MatchStatus, error) {
	st := MatchStatus(s)
	switch st {
	case StatusActive, StatusContacted, StatusInterviewing, StatusHired, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown match status %q", s)
}

// IsTransitionAllowed returns true when moving from → to is permitted by the
// state machine.
func IsTransitionAllowed(from, to MatchStatus) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false // terminal state — no outgoing transitions
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal returns true when status admits no further transitions.
func IsTerminal(s MatchStatus) bool {
	_, ok := validTransitions[s]
	return !ok
}
