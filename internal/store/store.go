// Package store implements the persistence boundary for the feature
// collection: a single JSON file rewritten whole on every mutation.
//
// All mutations follow load -> mutate in memory -> save under an advisory
// write lock, so concurrent writers serialize and a lost update cannot
// occur. Reads go lockless; a slightly stale snapshot is acceptable for
// queries. Saves are atomic (temp file + rename), so an interrupted
// process never leaves a corrupt collection behind.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/featrack/featrack/internal/lifecycle"
	"github.com/featrack/featrack/internal/lockfile"
	"github.com/featrack/featrack/internal/migrate"
	"github.com/featrack/featrack/internal/query"
	"github.com/featrack/featrack/internal/types"
)

// ErrNotFound is returned when a requested feature does not exist.
var ErrNotFound = errors.New("feature not found")

// ErrExists is returned when creating a feature whose ID is already taken.
var ErrExists = errors.New("feature already exists")

// PersistenceError wraps a failure to read, lock, or atomically write the
// collection. It is the only error class worth a bounded caller retry; the
// in-memory mutation is always discarded, so retrying from a fresh load is
// safe.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// CorruptRecordError reports a record that fails at-rest validation. Unlike
// PersistenceError it is never worth a retry: the stored data itself is bad
// and needs manual resolution, the same way a migration invariant failure
// does.
type CorruptRecordError struct {
	ID  string
	Err error
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("feature %s failed validation: %v", e.ID, e.Err)
}

func (e *CorruptRecordError) Unwrap() error { return e.Err }

// FileStore persists the feature collection at a fixed path.
type FileStore struct {
	path string

	// now is swappable for tests.
	now func() time.Time
}

// New creates a store over the collection file at path. The file need not
// exist yet; a missing collection loads as empty.
func New(path string) *FileStore {
	return &FileStore{path: path, now: func() time.Time { return time.Now().UTC() }}
}

// Path returns the collection file path.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) lockPath() string { return s.path + ".lock" }

// Load reads the whole collection. Legacy records pass through migration
// before being returned, so callers never observe the pre-migration shape.
// Load takes no lock; mutating operations re-load under the write lock.
func (s *FileStore) Load(ctx context.Context) ([]*types.Feature, error) {
	if err := ctx.Err(); err != nil {
		return nil, &PersistenceError{Op: "load", Err: err}
	}
	data, err := os.ReadFile(s.path) // #nosec G304 - path fixed at store construction
	if os.IsNotExist(err) {
		return []*types.Feature{}, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load", Err: err}
	}
	return decodeCollection(data)
}

func decodeCollection(data []byte) ([]*types.Feature, error) {
	var features []*types.Feature
	if err := json.Unmarshal(data, &features); err != nil {
		return nil, &PersistenceError{Op: "load", Err: fmt.Errorf("parsing collection: %w", err)}
	}
	for _, f := range features {
		if err := migrate.Migrate(f); err != nil {
			// Migration invariant failures are not retryable; they name
			// the offending record's raw fields for manual resolution.
			return nil, err
		}
		if err := f.Validate(); err != nil {
			return nil, &CorruptRecordError{ID: f.ID, Err: err}
		}
	}
	return features, nil
}

// Save atomically rewrites the whole collection: write to a temp file in
// the same directory, then rename over the target. This is the only
// persistence path; there are no partial or streaming updates.
func (s *FileStore) Save(ctx context.Context, features []*types.Feature) error {
	if err := ctx.Err(); err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	data, err := json.MarshalIndent(features, "", "  ")
	if err != nil {
		return &PersistenceError{Op: "save", Err: fmt.Errorf("marshaling collection: %w", err)}
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	base := filepath.Base(s.path)
	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return &PersistenceError{Op: "save", Err: fmt.Errorf("creating temp file: %w", err)}
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()        // Best effort: may already be closed before rename
		_ = os.Remove(tmpPath) // Best effort: may already be renamed
	}()

	if _, err := tmp.Write(data); err != nil {
		return &PersistenceError{Op: "save", Err: fmt.Errorf("writing collection: %w", err)}
	}

	// Close before rename (required on Windows; double-close in defer is harmless)
	_ = tmp.Close()

	if err := os.Rename(tmpPath, s.path); err != nil {
		return &PersistenceError{Op: "save", Err: fmt.Errorf("replacing collection: %w", err)}
	}
	if err := os.Chmod(s.path, 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to set collection permissions: %v\n", err)
	}
	return nil
}

// withWriteLock runs fn while holding the exclusive collection lock.
func (s *FileStore) withWriteLock(ctx context.Context, op string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return &PersistenceError{Op: op, Err: err}
	}
	lock, err := lockfile.Acquire(s.lockPath())
	if err != nil {
		return &PersistenceError{Op: op, Err: err}
	}
	defer func() { _ = lock.Release() }()
	return fn()
}

// Create adds a new feature in the planned state with a single history
// record. Duplicate IDs are rejected with ErrExists.
func (s *FileStore) Create(ctx context.Context, id, title string, createdAt time.Time) (*types.Feature, error) {
	var created *types.Feature
	err := s.withWriteLock(ctx, "create", func() error {
		features, err := s.Load(ctx)
		if err != nil {
			return err
		}
		for _, f := range features {
			if f.ID == id {
				return fmt.Errorf("%w: %s", ErrExists, id)
			}
		}
		f := lifecycle.NewFeature(id, title, createdAt, types.TriggerCommand)
		if err := f.Validate(); err != nil {
			return err
		}
		if err := s.Save(ctx, append(features, f)); err != nil {
			return err
		}
		created = f.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// RequestTransition moves a feature to next under the write lock:
// load, validate and apply, save. On any failure the in-memory mutation is
// discarded and nothing is persisted.
func (s *FileStore) RequestTransition(ctx context.Context, id string, next types.State, trigger types.Trigger, notes string) (*types.Feature, error) {
	var updated *types.Feature
	err := s.withWriteLock(ctx, "transition", func() error {
		features, err := s.Load(ctx)
		if err != nil {
			return err
		}
		f := findByID(features, id)
		if f == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err := lifecycle.Apply(f, next, trigger, notes, s.now()); err != nil {
			return err
		}
		// Nothing that fails at-rest validation may reach disk: a bad
		// record would poison every subsequent load of the collection.
		if err := f.Validate(); err != nil {
			return &CorruptRecordError{ID: f.ID, Err: err}
		}
		if err := s.Save(ctx, features); err != nil {
			return err
		}
		updated = f.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Migrate runs a batch migration pass: every legacy record is converted and
// the collection rewritten. Returns the number of records migrated. Already
// current records are untouched, so running it again migrates zero.
func (s *FileStore) Migrate(ctx context.Context) (int, error) {
	migrated := 0
	err := s.withWriteLock(ctx, "migrate", func() error {
		data, err := os.ReadFile(s.path) // #nosec G304 - path fixed at store construction
		if os.IsNotExist(err) {
			return nil
		}
		if err != nil {
			return &PersistenceError{Op: "migrate", Err: err}
		}
		var features []*types.Feature
		if err := json.Unmarshal(data, &features); err != nil {
			return &PersistenceError{Op: "migrate", Err: fmt.Errorf("parsing collection: %w", err)}
		}
		for _, f := range features {
			if f.IsMigrated() {
				continue
			}
			if err := migrate.Migrate(f); err != nil {
				return err
			}
			if err := f.Validate(); err != nil {
				return &CorruptRecordError{ID: f.ID, Err: err}
			}
			migrated++
		}
		if migrated == 0 {
			return nil
		}
		return s.Save(ctx, features)
	})
	if err != nil {
		return 0, err
	}
	return migrated, nil
}

// Get returns a single feature by ID.
func (s *FileStore) Get(ctx context.Context, id string) (*types.Feature, error) {
	features, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if f := findByID(features, id); f != nil {
		return f, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// QueryByState returns features currently in the given state.
func (s *FileStore) QueryByState(ctx context.Context, state types.State) ([]*types.Feature, error) {
	features, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return query.ByState(features, state), nil
}

// QueryRecentlyReached returns features that entered target within the
// given duration of now.
func (s *FileStore) QueryRecentlyReached(ctx context.Context, target types.State, within time.Duration) ([]*types.Feature, error) {
	features, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return query.RecentlyReached(features, target, within, s.now()), nil
}

func findByID(features []*types.Feature, id string) *types.Feature {
	for _, f := range features {
		if f.ID == id {
			return f
		}
	}
	return nil
}
