// Package domain provides core business rules for the agreements bounded context.
package domain

import "fmt"

// Status is the lifecycle state of an agreement.
type Status string

const (
	StatusActive     Status = "ACTIVE"
	StatusPaused     Status = "PAUSED"
	StatusTerminated Status = "TERMINATED"
)

// Action is a lifecycle transition request.
type Action string

const (
	ActionPause     Action = "pause"
	ActionResume    Action = "resume"
	ActionTerminate Action = "terminate"
)

// transitions is the full table of allowed lifecycle moves. Pairs absent from
// the table are invalid. TERMINATED is absorbing: no action ever leaves it.
var transitions = map[Status]map[Action]Status{
	StatusActive: {
		ActionPause:     StatusPaused,
		ActionTerminate: StatusTerminated,
	},
	StatusPaused: {
		ActionResume:    StatusActive,
		ActionTerminate: StatusTerminated,
	},
	StatusTerminated: {},
}

// IsValidStatus reports whether s is a known lifecycle status.
func IsValidStatus(s Status) bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether action is allowed from the given status.
func CanTransition(status Status, action Action) bool {
	_, ok := transitions[status][action]
	return ok
}

// NextStatus returns the status reached by applying action, or ok=false when
// the transition is invalid.
func NextStatus(status Status, action Action) (Status, bool) {
	next, ok := transitions[status][action]
	return next, ok
}

// InvalidReason returns an actionable message for a rejected transition, or
// "" when the transition is allowed. Terminated agreements and redundant
// actions get specific messages; anything else names the current status.
func InvalidReason(status Status, action Action) string {
	if CanTransition(status, action) {
		return ""
	}

	if status == StatusTerminated {
		return fmt.Sprintf("cannot %s a terminated agreement", action)
	}

	switch {
	case status == StatusPaused && action == ActionPause:
		return "already paused"
	case status == StatusActive && action == ActionResume:
		return "already active"
	}

	return fmt.Sprintf("cannot %s an agreement in status %s", action, status)
}
