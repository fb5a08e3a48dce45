// Package query provides read-only filters over a loaded feature
// collection. Nothing here mutates or persists.
package query

import (
	"time"

	"github.com/featrack/featrack/internal/types"
)

// ByState returns features whose current state matches exactly.
func ByState(features []*types.Feature, state types.State) []*types.Feature {
	out := []*types.Feature{}
	for _, f := range features {
		if f.State == state {
			out = append(out, f)
		}
	}
	return out
}

// LastReached returns the timestamp of the most recent history record in
// which the feature entered target. States can be re-entered (in_progress
// after a review bounce, say), so the latest matching record wins.
func LastReached(f *types.Feature, target types.State) (time.Time, bool) {
	for i := len(f.StateHistory) - 1; i >= 0; i-- {
		if f.StateHistory[i].State == target {
			return f.StateHistory[i].Timestamp, true
		}
	}
	return time.Time{}, false
}

// RecentlyReached returns features whose history shows them entering
// target within the given duration of now.
func RecentlyReached(features []*types.Feature, target types.State, within time.Duration, now time.Time) []*types.Feature {
	out := []*types.Feature{}
	for _, f := range features {
		ts, ok := LastReached(f, target)
		if !ok {
			continue
		}
		if now.Sub(ts) <= within {
			out = append(out, f)
		}
	}
	return out
}
