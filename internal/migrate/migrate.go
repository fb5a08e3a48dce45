// Package migrate converts legacy timestamp-only feature records into the
// state-and-history schema.
//
// Legacy records carry optional milestone timestamps (user stories created,
// user stories implemented, summarised at) but no explicit state. Migration
// infers the current state from whichever milestones are present and
// synthesizes a history that is monotonic in time and ends at the inferred
// state. It runs once per record: already-migrated features pass through
// untouched, so the whole pass is idempotent.
package migrate

import (
	"fmt"
	"time"

	"github.com/featrack/featrack/internal/types"
)

// InvariantError is returned when legacy milestone timestamps cannot form a
// valid history (typically because they are non-monotonic). The raw fields
// are carried in the error so the record can be resolved by hand; migration
// never guesses its way past bad data.
type InvariantError struct {
	ID     string
	Reason string
	Fields map[string]string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("cannot migrate feature %s: %s (legacy fields: %v)", e.ID, e.Reason, e.Fields)
}

// milestone pairs a legacy timestamp field with the state it maps to.
// No legacy field records the testing or review states, so synthesized
// histories jump from in_progress to deployed. That gap is inherited from
// the legacy schema; inventing timestamps for it would be worse.
type milestone struct {
	field string
	state types.State
	at    *time.Time
}

func legacyMilestones(f *types.Feature) []milestone {
	return []milestone{
		{"userStoriesCreated", types.StateInProgress, f.UserStoriesCreated},
		{"userStoriesImplemented", types.StateDeployed, f.UserStoriesImplemented},
		{"summarisedAt", types.StateSummarised, f.SummarisedAt},
	}
}

// InferState derives the current state from legacy milestones, latest
// milestone first: summarised beats deployed beats in_progress; with no
// milestones at all the feature is still planned.
func InferState(f *types.Feature) types.State {
	switch {
	case f.SummarisedAt != nil:
		return types.StateSummarised
	case f.UserStoriesImplemented != nil:
		return types.StateDeployed
	case f.UserStoriesCreated != nil:
		return types.StateInProgress
	default:
		return types.StatePlanned
	}
}

// Migrate populates State and StateHistory on a legacy feature in place.
// Already-migrated features are left untouched. The synthesized history
// always starts with a planned record at CreatedAt; each later milestone
// present on the record appends one entry, except milestones whose
// timestamp equals the previous record's (zero-duration duplicates carry no
// information). The milestone that determines the inferred state is always
// appended so the history ends at the declared state.
func Migrate(f *types.Feature) error {
	if f.IsMigrated() {
		return nil
	}

	target := InferState(f)
	history := []types.TransitionRecord{{
		State:       types.StatePlanned,
		Timestamp:   f.CreatedAt,
		TriggeredBy: types.TriggerCommand,
		Notes:       types.MigratedNotes,
	}}

	for _, m := range legacyMilestones(f) {
		if m.at == nil {
			continue
		}
		prev := history[len(history)-1]
		if m.at.Before(prev.Timestamp) {
			return &InvariantError{
				ID:     f.ID,
				Reason: fmt.Sprintf("%s (%s) precedes prior milestone (%s)", m.field, m.at.Format(time.RFC3339), prev.Timestamp.Format(time.RFC3339)),
				Fields: rawLegacyFields(f),
			}
		}
		if m.at.Equal(prev.Timestamp) && m.state != target {
			continue
		}
		history = append(history, types.TransitionRecord{
			State:       m.state,
			Timestamp:   *m.at,
			TriggeredBy: types.TriggerCommand,
			Notes:       types.MigratedNotes,
		})
	}

	f.State = target
	f.StateHistory = history
	return nil
}

// rawLegacyFields renders the legacy inputs for error reporting.
func rawLegacyFields(f *types.Feature) map[string]string {
	fields := map[string]string{
		"createdAt":    f.CreatedAt.Format(time.RFC3339),
		"isSummarised": fmt.Sprintf("%t", f.IsSummarised),
	}
	for _, m := range legacyMilestones(f) {
		if m.at != nil {
			fields[m.field] = m.at.Format(time.RFC3339)
		}
	}
	return fields
}
