// Package lifecycle validates and applies feature state transitions.
//
// Validate is a pure function over the static transition graph in the types
// package. Apply is the only code path that grows a feature's history;
// persistence stays out of this package so callers can batch several
// mutations into one atomic write.
package lifecycle

import (
	"time"

	"github.com/featrack/featrack/internal/types"
)

// Validate checks whether a feature currently in state current may move to
// next. It returns nil when the transition is legal, or one of
// UnknownStateError, TerminalStateError, IllegalTransitionError.
func Validate(current, next types.State) error {
	if !next.IsValid() {
		return &UnknownStateError{State: next}
	}
	if !current.IsValid() {
		return &UnknownStateError{State: current}
	}
	if current.IsTerminal() {
		return &TerminalStateError{From: current}
	}
	if !types.CanTransition(current, next) {
		return &IllegalTransitionError{From: current, To: next}
	}
	return nil
}

// Apply validates the transition, appends a history record, and moves the
// feature into next. The record timestamp must not precede the last recorded
// transition; a backwards clock surfaces as ClockSkewError rather than being
// coerced. The trigger must be one of the enumerated origins: a bad trigger
// is rejected here so it can never reach the persisted history, where it
// would fail validation on every later load. The feature is only mutated on
// success.
func Apply(f *types.Feature, next types.State, trigger types.Trigger, notes string, now time.Time) error {
	if err := Validate(f.State, next); err != nil {
		return err
	}
	if !trigger.IsValid() {
		return &UnknownTriggerError{Trigger: trigger}
	}
	if last := f.LastTransition(); last != nil && now.Before(last.Timestamp) {
		return &ClockSkewError{Last: last.Timestamp, Now: now}
	}
	f.StateHistory = append(f.StateHistory, types.TransitionRecord{
		State:       next,
		Timestamp:   now,
		TriggeredBy: trigger,
		Notes:       notes,
	})
	f.State = next
	return nil
}

// NewFeature creates a feature in the planned state with its initial
// history record. This is the planning action's entry point.
func NewFeature(id, title string, createdAt time.Time, trigger types.Trigger) *types.Feature {
	return &types.Feature{
		ID:        id,
		Title:     title,
		State:     types.StatePlanned,
		CreatedAt: createdAt,
		StateHistory: []types.TransitionRecord{
			{State: types.StatePlanned, Timestamp: createdAt, TriggeredBy: trigger},
		},
	}
}
