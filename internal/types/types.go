// Package types defines core data structures for the ft feature tracker.
package types

import (
	"fmt"
	"time"
)

// State represents a feature's position in the delivery lifecycle.
type State string

// Lifecycle state constants
const (
	StatePlanned    State = "planned"
	StateInProgress State = "in_progress"
	StateTesting    State = "testing"
	StateReview     State = "review"
	StateDeployed   State = "deployed"
	StateSummarised State = "summarised"
	StateArchived   State = "archived" // terminal: no outgoing transitions
)

// AllStates lists every lifecycle state in forward order.
var AllStates = []State{
	StatePlanned,
	StateInProgress,
	StateTesting,
	StateReview,
	StateDeployed,
	StateSummarised,
	StateArchived,
}

// IsValid checks if the state value is one of the enumerated lifecycle states.
func (s State) IsValid() bool {
	switch s {
	case StatePlanned, StateInProgress, StateTesting, StateReview,
		StateDeployed, StateSummarised, StateArchived:
		return true
	}
	return false
}

// IsTerminal returns true for states with no outgoing transitions.
func (s State) IsTerminal() bool {
	return s == StateArchived
}

// transitions is the directed transition graph: source -> allowed destinations.
// Archived is reachable from every non-terminal state but is a one-way sink.
// Self-loops are never allowed; idempotent retries are the caller's problem.
var transitions = map[State][]State{
	StatePlanned:    {StateInProgress, StateArchived},
	StateInProgress: {StateTesting, StatePlanned, StateArchived},
	StateTesting:    {StateReview, StateInProgress, StateArchived},
	StateReview:     {StateDeployed, StateInProgress, StateArchived},
	StateDeployed:   {StateSummarised, StateInProgress, StateArchived},
	StateSummarised: {StateArchived},
	StateArchived:   {},
}

// AllowedDestinations returns the states legally reachable from s.
// The returned slice must not be mutated by callers.
func AllowedDestinations(s State) []State {
	return transitions[s]
}

// CanTransition reports whether the edge from -> to exists in the
// transition graph. Unknown states have no edges.
func CanTransition(from, to State) bool {
	for _, dest := range transitions[from] {
		if dest == to {
			return true
		}
	}
	return false
}

// Trigger identifies what initiated a transition.
type Trigger string

// Trigger origin constants
const (
	TriggerCommand Trigger = "command"
	TriggerAgent   Trigger = "agent"
	TriggerManual  Trigger = "manual"
)

// IsValid checks if the trigger value is one of the enumerated origins.
func (t Trigger) IsValid() bool {
	switch t {
	case TriggerCommand, TriggerAgent, TriggerManual:
		return true
	}
	return false
}

// TransitionRecord is one entry in a feature's append-only state history.
type TransitionRecord struct {
	State       State     `json:"state"`
	Timestamp   time.Time `json:"timestamp"`
	TriggeredBy Trigger   `json:"triggeredBy"`
	Notes       string    `json:"notes,omitempty"`
}

// MigratedNotes marks history records synthesized from legacy milestone
// timestamps. Histories whose first record carries this marker are exempt
// from adjacent-pair legality checks (legacy data never recorded the
// intermediate testing/review states, so synthesized histories may jump).
const MigratedNotes = "migrated"

// Feature represents a tracked unit of work moving through the lifecycle.
type Feature struct {
	ID           string             `json:"featureID"`
	Title        string             `json:"title"`
	State        State              `json:"state,omitempty"`
	StateHistory []TransitionRecord `json:"stateHistory,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`

	// Legacy milestone fields retained for backward compatibility.
	// They are inputs to migration inference only; once State and
	// StateHistory are populated they are no longer authoritative.
	UserStoriesCreated     *time.Time `json:"userStoriesCreated,omitempty"`
	UserStoriesImplemented *time.Time `json:"userStoriesImplemented,omitempty"`
	IsSummarised           bool       `json:"isSummarised,omitempty"`
	SummarisedAt           *time.Time `json:"summarisedAt,omitempty"`
}

// IsMigrated returns true once the feature carries the current
// state-and-history schema. Records loaded from disk without it must pass
// through migration before callers see them.
func (f *Feature) IsMigrated() bool {
	return f.State != "" && len(f.StateHistory) > 0
}

// LastTransition returns the most recent history record, or nil for a
// feature that has not been migrated yet.
func (f *Feature) LastTransition() *TransitionRecord {
	if len(f.StateHistory) == 0 {
		return nil
	}
	return &f.StateHistory[len(f.StateHistory)-1]
}

// hasSyntheticHistory reports whether the history was produced by
// migration rather than recorded live.
func (f *Feature) hasSyntheticHistory() bool {
	return len(f.StateHistory) > 0 && f.StateHistory[0].Notes == MigratedNotes
}

// Validate checks the at-rest invariants for a migrated feature:
//
//  1. history is non-empty and starts in planned
//  2. history timestamps are non-decreasing
//  3. the last record's state equals the feature's state
//  4. every adjacent record pair is a legal transition; synthesized
//     migration histories only need 1-3
func (f *Feature) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("featureID is required")
	}
	if f.Title == "" {
		return fmt.Errorf("title is required")
	}
	if !f.State.IsValid() {
		return fmt.Errorf("invalid state: %s", f.State)
	}
	if len(f.StateHistory) == 0 {
		return fmt.Errorf("state history must not be empty")
	}
	if first := f.StateHistory[0].State; first != StatePlanned {
		return fmt.Errorf("state history must start in %s (got %s)", StatePlanned, first)
	}
	for i, rec := range f.StateHistory {
		if !rec.State.IsValid() {
			return fmt.Errorf("state history[%d]: invalid state %s", i, rec.State)
		}
		if !rec.TriggeredBy.IsValid() {
			return fmt.Errorf("state history[%d]: invalid trigger %s", i, rec.TriggeredBy)
		}
		if i == 0 {
			continue
		}
		prev := f.StateHistory[i-1]
		if rec.Timestamp.Before(prev.Timestamp) {
			return fmt.Errorf("state history[%d]: timestamp %s precedes %s",
				i, rec.Timestamp.Format(time.RFC3339), prev.Timestamp.Format(time.RFC3339))
		}
		if !f.hasSyntheticHistory() && !CanTransition(prev.State, rec.State) {
			return fmt.Errorf("state history[%d]: illegal transition %s -> %s", i, prev.State, rec.State)
		}
	}
	if last := f.LastTransition().State; last != f.State {
		return fmt.Errorf("state %s does not match last history record %s", f.State, last)
	}
	return nil
}

// Clone returns a deep copy of the feature. The store hands out clones so
// callers cannot mutate shared history slices behind its back.
func (f *Feature) Clone() *Feature {
	cp := *f
	if f.StateHistory != nil {
		cp.StateHistory = make([]TransitionRecord, len(f.StateHistory))
		copy(cp.StateHistory, f.StateHistory)
	}
	cp.UserStoriesCreated = cloneTime(f.UserStoriesCreated)
	cp.UserStoriesImplemented = cloneTime(f.UserStoriesImplemented)
	cp.SummarisedAt = cloneTime(f.SummarisedAt)
	return &cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
