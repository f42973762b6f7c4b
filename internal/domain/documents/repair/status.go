package repair

import (
	"strings"

	"repairdesk/internal/core/apperror"
)

// Status is the lifecycle state of a repair order.
type Status string

const (
	StatusReceived  Status = "RECEIVED"
	StatusStarted   Status = "STARTED"
	StatusCompleted Status = "COMPLETED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

var defaultLabels = map[Status]string{
	StatusReceived:  "Ricevuto",
	StatusStarted:   "In Lavorazione",
	StatusCompleted: "Completato",
	StatusDelivered: "Consegnato",
	StatusCancelled: "Annullato",
}

// predecessors lists, per target status, the statuses it may be entered from.
var predecessors = map[Status][]Status{
	StatusReceived:  nil,
	StatusStarted:   {StatusReceived},
	StatusCompleted: {StatusStarted},
	StatusDelivered: {StatusCompleted},
	StatusCancelled: {StatusReceived, StatusStarted},
}

// ParseStatus converts a status code into a Status.
func ParseStatus(code string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(code)))
	if _, ok := defaultLabels[s]; !ok {
		return "", apperror.NewValidation("unknown repair status").WithDetail("status", code)
	}
	return s, nil
}

// Label returns the default display label.
func (s Status) Label() string {
	return defaultLabels[s]
}

// IsTerminal reports whether structural edits are frozen in this status.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusDelivered
}

// CanTransition reports whether the order may move from one status to
// another. Re-entering the current status is always allowed.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, p := range predecessors[to] {
		if p == from {
			return true
		}
	}
	return false
}

// ValidateTransition returns a validation error if from -> to is not allowed.
func ValidateTransition(from, to Status) error {
	if !CanTransition(from, to) {
		return apperror.NewInvalidTransition(string(from), string(to))
	}
	return nil
}

// Priority orders repairs in the technician queue.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// ParsePriority converts p into a Priority. Empty means normal.
func ParsePriority(p string) (Priority, error) {
	switch v := Priority(strings.ToLower(strings.TrimSpace(p))); v {
	case "":
		return PriorityNormal, nil
	case PriorityLow, PriorityNormal, PriorityHigh:
		return v, nil
	}
	return "", apperror.NewValidation("unknown priority").WithDetail("priority", p)
}
