package lifecycle

import (
	"fmt"
	"time"

	"github.com/featrack/featrack/internal/types"
)

// UnknownStateError is returned when a transition names a state outside the
// enumerated lifecycle. This is a caller bug; retrying with the same
// arguments cannot succeed.
type UnknownStateError struct {
	State types.State
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("unknown state: %q", string(e.State))
}

// UnknownTriggerError is returned when a transition names a trigger outside
// the enumerated origins. Like UnknownStateError, this is a caller bug and
// must be rejected before anything reaches the history.
type UnknownTriggerError struct {
	Trigger types.Trigger
}

func (e *UnknownTriggerError) Error() string {
	return fmt.Sprintf("unknown trigger: %q (want command, agent, or manual)", string(e.Trigger))
}

// TerminalStateError is returned when a transition is requested from the
// archived state. Archived features never move again.
type TerminalStateError struct {
	From types.State
}

func (e *TerminalStateError) Error() string {
	return fmt.Sprintf("%s is terminal: no transitions allowed", e.From)
}

// IllegalTransitionError is returned when the requested destination is not
// reachable from the current state. Both states are named so the caller can
// pick a legal intermediate transition instead.
type IllegalTransitionError struct {
	From types.State
	To   types.State
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition %s -> %s (allowed: %v)",
		e.From, e.To, types.AllowedDestinations(e.From))
}

// ClockSkewError is returned when a new record's timestamp would precede the
// last recorded timestamp. The caller should retry with a corrected clock;
// records are never silently reordered.
type ClockSkewError struct {
	Last time.Time
	Now  time.Time
}

func (e *ClockSkewError) Error() string {
	return fmt.Sprintf("clock skew: now %s precedes last recorded transition %s",
		e.Now.Format(time.RFC3339), e.Last.Format(time.RFC3339))
}
