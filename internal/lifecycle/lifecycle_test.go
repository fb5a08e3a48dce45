package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/featrack/featrack/internal/types"
)

var (
	t0 = time.Date(2025, 10, 19, 20, 30, 0, 0, time.UTC)
	t1 = t0.Add(1 * time.Hour)
)

// legalEdges is the full transition table. TestValidateExhaustive checks
// every (source, destination) pair in the state cross-product against it.
var legalEdges = map[types.State][]types.State{
	types.StatePlanned:    {types.StateInProgress, types.StateArchived},
	types.StateInProgress: {types.StateTesting, types.StatePlanned, types.StateArchived},
	types.StateTesting:    {types.StateReview, types.StateInProgress, types.StateArchived},
	types.StateReview:     {types.StateDeployed, types.StateInProgress, types.StateArchived},
	types.StateDeployed:   {types.StateSummarised, types.StateInProgress, types.StateArchived},
	types.StateSummarised: {types.StateArchived},
	types.StateArchived:   {},
}

func TestValidateExhaustive(t *testing.T) {
	for _, from := range types.AllStates {
		allowed := map[types.State]bool{}
		for _, to := range legalEdges[from] {
			allowed[to] = true
		}
		for _, to := range types.AllStates {
			err := Validate(from, to)
			if allowed[to] {
				if err != nil {
					t.Errorf("Validate(%s, %s) = %v, want nil", from, to, err)
				}
				continue
			}
			if err == nil {
				t.Errorf("Validate(%s, %s) = nil, want error", from, to)
			}
		}
	}
}

func TestValidateErrorTypes(t *testing.T) {
	var unknown *UnknownStateError
	if err := Validate(types.StatePlanned, "done"); !errors.As(err, &unknown) {
		t.Errorf("expected UnknownStateError, got %v", err)
	}
	if err := Validate("limbo", types.StatePlanned); !errors.As(err, &unknown) {
		t.Errorf("expected UnknownStateError for unknown source, got %v", err)
	}

	var terminal *TerminalStateError
	if err := Validate(types.StateArchived, types.StateInProgress); !errors.As(err, &terminal) {
		t.Errorf("expected TerminalStateError, got %v", err)
	}

	var illegal *IllegalTransitionError
	err := Validate(types.StatePlanned, types.StateDeployed)
	if !errors.As(err, &illegal) {
		t.Fatalf("expected IllegalTransitionError, got %v", err)
	}
	if illegal.From != types.StatePlanned || illegal.To != types.StateDeployed {
		t.Errorf("error names wrong pair: %s -> %s", illegal.From, illegal.To)
	}
}

func TestNoSelfLoopEverAllowed(t *testing.T) {
	for _, s := range types.AllStates {
		if err := Validate(s, s); err == nil {
			t.Errorf("Validate(%s, %s) = nil, want error", s, s)
		}
	}
}

func TestNewFeature(t *testing.T) {
	f := NewFeature("5", "Search", t0, types.TriggerCommand)

	if f.State != types.StatePlanned {
		t.Errorf("state = %s, want planned", f.State)
	}
	if len(f.StateHistory) != 1 {
		t.Fatalf("history length = %d, want 1", len(f.StateHistory))
	}
	first := f.StateHistory[0]
	if first.State != types.StatePlanned || !first.Timestamp.Equal(t0) || first.TriggeredBy != types.TriggerCommand {
		t.Errorf("unexpected initial record: %+v", first)
	}
	if err := f.Validate(); err != nil {
		t.Errorf("new feature fails validation: %v", err)
	}
}

func TestApplyAppendsAndUpdatesState(t *testing.T) {
	f := NewFeature("5", "Search", t0, types.TriggerCommand)

	if err := Apply(f, types.StateInProgress, types.TriggerCommand, "", t1); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if f.State != types.StateInProgress {
		t.Errorf("state = %s, want in_progress", f.State)
	}
	if len(f.StateHistory) != 2 {
		t.Fatalf("history length = %d, want 2", len(f.StateHistory))
	}
	if err := f.Validate(); err != nil {
		t.Errorf("feature fails validation after transition: %v", err)
	}
}

func TestApplyInvariantsHoldAcrossSequence(t *testing.T) {
	f := NewFeature("5", "Search", t0, types.TriggerCommand)
	sequence := []types.State{
		types.StateInProgress,
		types.StateTesting,
		types.StateInProgress, // bounced back
		types.StateTesting,
		types.StateReview,
		types.StateDeployed,
		types.StateSummarised,
		types.StateArchived,
	}

	now := t0
	for _, next := range sequence {
		now = now.Add(10 * time.Minute)
		if err := Apply(f, next, types.TriggerAgent, "", now); err != nil {
			t.Fatalf("Apply(%s): %v", next, err)
		}
		if err := f.Validate(); err != nil {
			t.Fatalf("invariants broken after %s: %v", next, err)
		}
	}
	if len(f.StateHistory) != len(sequence)+1 {
		t.Errorf("history length = %d, want %d", len(f.StateHistory), len(sequence)+1)
	}
}

func TestApplyRejectsIllegalWithoutMutation(t *testing.T) {
	f := NewFeature("5", "Search", t0, types.TriggerCommand)

	err := Apply(f, types.StateDeployed, types.TriggerCommand, "", t1)
	var illegal *IllegalTransitionError
	if !errors.As(err, &illegal) {
		t.Fatalf("expected IllegalTransitionError, got %v", err)
	}
	if f.State != types.StatePlanned || len(f.StateHistory) != 1 {
		t.Error("feature was mutated by a rejected transition")
	}
}

func TestApplyRejectsUnknownTrigger(t *testing.T) {
	f := NewFeature("5", "Search", t0, types.TriggerCommand)

	err := Apply(f, types.StateInProgress, types.Trigger("cron"), "", t1)
	var unknown *UnknownTriggerError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownTriggerError, got %v", err)
	}
	if unknown.Trigger != "cron" {
		t.Errorf("error names trigger %q, want cron", unknown.Trigger)
	}
	if f.State != types.StatePlanned || len(f.StateHistory) != 1 {
		t.Error("feature was mutated by a rejected trigger")
	}
	if err := f.Validate(); err != nil {
		t.Errorf("feature invalid after rejected trigger: %v", err)
	}
}

func TestApplyRejectsTerminal(t *testing.T) {
	f := NewFeature("old", "Legacy", t0, types.TriggerCommand)
	if err := Apply(f, types.StateArchived, types.TriggerManual, "", t1); err != nil {
		t.Fatalf("archiving: %v", err)
	}

	err := Apply(f, types.StateInProgress, types.TriggerManual, "", t1.Add(time.Hour))
	var terminal *TerminalStateError
	if !errors.As(err, &terminal) {
		t.Fatalf("expected TerminalStateError, got %v", err)
	}
	if len(f.StateHistory) != 2 {
		t.Error("terminal feature history grew")
	}
}

func TestApplyClockSkew(t *testing.T) {
	f := NewFeature("5", "Search", t0, types.TriggerCommand)

	err := Apply(f, types.StateInProgress, types.TriggerCommand, "", t0.Add(-time.Minute))
	var skew *ClockSkewError
	if !errors.As(err, &skew) {
		t.Fatalf("expected ClockSkewError, got %v", err)
	}
	if f.State != types.StatePlanned || len(f.StateHistory) != 1 {
		t.Error("feature was mutated despite clock skew")
	}

	// Equal timestamps are fine: non-decreasing, not strictly increasing
	if err := Apply(f, types.StateInProgress, types.TriggerCommand, "", t0); err != nil {
		t.Errorf("Apply with equal timestamp: %v", err)
	}
}
