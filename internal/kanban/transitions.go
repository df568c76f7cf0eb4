// Package kanban implements the application state machine.
//
// Valid status graph:
//
//	TO_APPLY ──► APPLIED ──► INTERVIEW ──► OFFER ──► HIRED
//	    │            │             │           │
//	    └────────────┴─────────────┴───────────┴──► REJECTED
//
// HIRED and REJECTED are terminal. No skip-level jumps, no backward
// moves, no self-transitions.
package kanban

import "fmt"

// Status values mirror the application_status enum in PostgreSQL.
type Status string

const (
	StatusToApply   Status = "TO_APPLY"
	StatusApplied   Status = "APPLIED"
	StatusInterview Status = "INTERVIEW"
	StatusOffer     Status = "OFFER"
	StatusHired     Status = "HIRED"
	StatusRejected  Status = "REJECTED"
)

// InitialStatus is the single entry point of the state machine. Every new
// application starts here, whether it came from triage or a manual add.
const InitialStatus = StatusToApply

// AllStatuses lists every status, in board order.
var AllStatuses = []Status{
	StatusToApply, StatusApplied, StatusInterview,
	StatusOffer, StatusHired, StatusRejected,
}

// validTransitions lists every allowed (from → to) pair. Absent source
// keys are terminal states.
var validTransitions = map[Status][]Status{
	StatusToApply:   {StatusApplied, StatusRejected},
	StatusApplied:   {StatusInterview, StatusRejected},
	StatusInterview: {StatusOffer, StatusRejected},
	StatusOffer:     {StatusHired, StatusRejected},
}

// ParseStatus converts a raw string to a Status. The match is exact and
// case-sensitive: lowercase or padded variants are rejected.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusToApply, StatusApplied, StatusInterview, StatusOffer, StatusHired, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// IsTransitionAllowed reports whether moving from → to is permitted.
func IsTransitionAllowed(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s has no outgoing transitions.
func IsTerminal(s Status) bool {
	return len(validTransitions[s]) == 0
}

// IsHired reports whether s is HIRED, which triggers search-config archival.
func IsHired(s Status) bool { return s == StatusHired }
