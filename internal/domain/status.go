package domain

import "fmt"

// Status is the lifecycle state of a service. The server enforces no
// transition graph: any valid status may replace any other.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// statusCycle is the quick-toggle order offered by clients.
var statusCycle = []Status{
	StatusDraft,
	StatusPending,
	StatusConfirmed,
	StatusCompleted,
	StatusCancelled,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, c := range statusCycle {
		if s == c {
			return true
		}
	}
	return false
}

// ParseStatus returns the Status named by s or an ErrValidation.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: status must be one of draft, pending, confirmed, completed, cancelled", ErrValidation)
	}
	return st, nil
}

// NextStatus returns the status that follows s in the client toggle cycle
// draft -> pending -> confirmed -> completed -> cancelled -> draft.
// Unknown statuses restart the cycle at draft.
//
// This is a client convenience. Update accepts any valid status regardless of
// what NextStatus would return.
func NextStatus(s Status) Status {
	for i, c := range statusCycle {
		if c == s {
			return statusCycle[(i+1)%len(statusCycle)]
		}
	}
	return StatusDraft
}
