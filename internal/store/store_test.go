package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/featrack/featrack/internal/lifecycle"
	"github.com/featrack/featrack/internal/migrate"
	"github.com/featrack/featrack/internal/types"
)

var created = time.Date(2025, 10, 19, 20, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "features.json"))
}

func TestLoadMissingFileIsEmptyCollection(t *testing.T) {
	s := newTestStore(t)
	features, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, features)
}

func TestCreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	f, err := s.Create(ctx, "5", "Search feature", created)
	require.NoError(t, err)
	assert.Equal(t, types.StatePlanned, f.State)
	require.Len(t, f.StateHistory, 1)
	assert.Equal(t, types.TriggerCommand, f.StateHistory[0].TriggeredBy)
	assert.True(t, f.StateHistory[0].Timestamp.Equal(created))

	got, err := s.Get(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, "Search feature", got.Title)

	_, err = s.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateRejectsDuplicateID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, "5", "First", created)
	require.NoError(t, err)
	_, err = s.Create(ctx, "5", "Second", created)
	assert.ErrorIs(t, err, ErrExists)
}

func TestRequestTransitionPersists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, "5", "Search", created)
	require.NoError(t, err)

	f, err := s.RequestTransition(ctx, "5", types.StateInProgress, types.TriggerCommand, "")
	require.NoError(t, err)
	assert.Equal(t, types.StateInProgress, f.State)
	assert.Len(t, f.StateHistory, 2)

	// Fresh store over the same file sees the transition
	reloaded, err := New(s.Path()).Get(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, types.StateInProgress, reloaded.State)
	assert.Len(t, reloaded.StateHistory, 2)
}

func TestRequestTransitionIllegalLeavesFileUntouched(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, "5", "Search", created)
	require.NoError(t, err)
	before, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	_, err = s.RequestTransition(ctx, "5", types.StateDeployed, types.TriggerCommand, "")
	var illegal *lifecycle.IllegalTransitionError
	require.ErrorAs(t, err, &illegal)
	assert.Equal(t, types.StatePlanned, illegal.From)
	assert.Equal(t, types.StateDeployed, illegal.To)

	after, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after, "rejected transition must not rewrite the collection")
}

func TestRequestTransitionTerminal(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, "old", "Archived feature", created)
	require.NoError(t, err)
	_, err = s.RequestTransition(ctx, "old", types.StateArchived, types.TriggerManual, "")
	require.NoError(t, err)

	_, err = s.RequestTransition(ctx, "old", types.StateInProgress, types.TriggerManual, "")
	var terminal *lifecycle.TerminalStateError
	assert.ErrorAs(t, err, &terminal)
}

func TestRequestTransitionUnknownFeature(t *testing.T) {
	s := newTestStore(t)
	_, err := s.RequestTransition(context.Background(), "ghost", types.StateInProgress, types.TriggerCommand, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRequestTransitionRejectsBadTriggerBeforeSave(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, "p", "Payments", created)
	require.NoError(t, err)
	before, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	_, err = s.RequestTransition(ctx, "p", types.StateInProgress, types.Trigger("cron"), "")
	var unknown *lifecycle.UnknownTriggerError
	require.ErrorAs(t, err, &unknown)

	// The bad record never reached disk; the collection stays readable
	after, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)

	f, err := New(s.Path()).Get(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, types.StatePlanned, f.State)
	assert.Len(t, f.StateHistory, 1)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, "a", "First", created)
	require.NoError(t, err)
	_, err = s.Create(ctx, "b", "Second", created.Add(time.Hour))
	require.NoError(t, err)
	_, err = s.RequestTransition(ctx, "a", types.StateInProgress, types.TriggerAgent, "picked up")
	require.NoError(t, err)

	features, err := s.Load(ctx)
	require.NoError(t, err)

	before, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, features))
	after, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	assert.Equal(t, string(before), string(after), "pure load/save cycle must not mutate the collection")
}

const legacyCollection = `[
  {
    "featureID": "12",
    "title": "Legacy search",
    "createdAt": "2025-10-15T00:00:00Z",
    "userStoriesCreated": "2025-10-15T00:00:00Z",
    "userStoriesImplemented": "2025-10-15T20:00:00Z",
    "isSummarised": true,
    "summarisedAt": "2025-10-15T20:15:00Z"
  },
  {
    "featureID": "13",
    "title": "Untouched legacy",
    "createdAt": "2025-10-16T09:00:00Z"
  }
]`

func TestLoadMigratesLegacyRecordsTransparently(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte(legacyCollection), 0600))

	features, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, features, 2)

	first := features[0]
	assert.Equal(t, types.StateSummarised, first.State)
	require.Len(t, first.StateHistory, 3)
	assert.Equal(t, types.StatePlanned, first.StateHistory[0].State)
	assert.Equal(t, types.StateDeployed, first.StateHistory[1].State)
	assert.Equal(t, types.StateSummarised, first.StateHistory[2].State)

	second := features[1]
	assert.Equal(t, types.StatePlanned, second.State)
	assert.Len(t, second.StateHistory, 1)
}

func TestMigrateBatchPass(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, os.WriteFile(s.Path(), []byte(legacyCollection), 0600))

	count, err := s.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// The rewrite persisted the new schema
	f, err := s.Get(ctx, "12")
	require.NoError(t, err)
	assert.True(t, f.IsMigrated())

	// Second pass has nothing left to do
	count, err = s.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestLoadSurfacesMigrationInvariantFailure(t *testing.T) {
	s := newTestStore(t)
	corrupt := `[{"featureID": "bad", "title": "Corrupt", "createdAt": "2025-10-15T10:00:00Z", "userStoriesCreated": "2025-10-15T02:00:00Z"}]`
	require.NoError(t, os.WriteFile(s.Path(), []byte(corrupt), 0600))

	_, err := s.Load(context.Background())
	var inv *migrate.InvariantError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, "bad", inv.ID)
}

func TestLoadSurfacesCorruptRecordTyped(t *testing.T) {
	s := newTestStore(t)
	corrupt := `[{
	  "featureID": "x",
	  "title": "Bad trigger",
	  "state": "planned",
	  "createdAt": "2025-10-15T10:00:00Z",
	  "stateHistory": [
	    {"state": "planned", "timestamp": "2025-10-15T10:00:00Z", "triggeredBy": "cron"}
	  ]
	}]`
	require.NoError(t, os.WriteFile(s.Path(), []byte(corrupt), 0600))

	_, err := s.Load(context.Background())
	var bad *CorruptRecordError
	require.ErrorAs(t, err, &bad)
	assert.Equal(t, "x", bad.ID)

	// Bad data is not retryable and must not look like a persistence failure
	var pe *PersistenceError
	assert.False(t, errors.As(err, &pe))
}

func TestLoadWrapsCorruptJSONAsPersistenceError(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0600))

	_, err := s.Load(context.Background())
	var pe *PersistenceError
	assert.ErrorAs(t, err, &pe)
}

func TestSaveIsAtomicReplacement(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, "a", "First", created)
	require.NoError(t, err)
	_, err = s.Create(ctx, "b", "Second", created)
	require.NoError(t, err)

	// No temp droppings left behind
	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp.", "leftover temp file %s", e.Name())
	}
}

func TestQueryByState(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, "a", "First", created)
	require.NoError(t, err)
	_, err = s.Create(ctx, "b", "Second", created)
	require.NoError(t, err)
	_, err = s.RequestTransition(ctx, "b", types.StateInProgress, types.TriggerCommand, "")
	require.NoError(t, err)

	planned, err := s.QueryByState(ctx, types.StatePlanned)
	require.NoError(t, err)
	require.Len(t, planned, 1)
	assert.Equal(t, "a", planned[0].ID)
}

func TestQueryRecentlyReached(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, "a", "First", created)
	require.NoError(t, err)
	_, err = s.RequestTransition(ctx, "a", types.StateInProgress, types.TriggerCommand, "")
	require.NoError(t, err)

	recent, err := s.QueryRecentlyReached(ctx, types.StateInProgress, time.Hour)
	require.NoError(t, err)
	require.Len(t, recent, 1)

	recent, err = s.QueryRecentlyReached(ctx, types.StateDeployed, time.Hour)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestRequestTransitionClockSkew(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, "a", "First", time.Now().UTC())
	require.NoError(t, err)

	// Force the store clock backwards past the creation record
	s.now = func() time.Time { return time.Now().UTC().Add(-time.Hour) }

	_, err = s.RequestTransition(ctx, "a", types.StateInProgress, types.TriggerCommand, "")
	var skew *lifecycle.ClockSkewError
	require.ErrorAs(t, err, &skew)

	// Corrected clock succeeds on retry
	s.now = func() time.Time { return time.Now().UTC() }
	_, err = s.RequestTransition(ctx, "a", types.StateInProgress, types.TriggerCommand, "")
	require.NoError(t, err)
}
