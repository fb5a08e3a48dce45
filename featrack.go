// Package featrack provides a minimal public API for building Go tooling
// on top of the ft feature tracker.
//
// Most automation should drive the ft CLI directly. This package exports
// only the types and constructors needed by Go programs that want to read
// or mutate a feature collection programmatically.
package featrack

import (
	"github.com/featrack/featrack/internal/lifecycle"
	"github.com/featrack/featrack/internal/store"
	"github.com/featrack/featrack/internal/types"
)

// Core types for working with features
type (
	Feature          = types.Feature
	State            = types.State
	Trigger          = types.Trigger
	TransitionRecord = types.TransitionRecord
)

// Lifecycle state constants
const (
	StatePlanned    = types.StatePlanned
	StateInProgress = types.StateInProgress
	StateTesting    = types.StateTesting
	StateReview     = types.StateReview
	StateDeployed   = types.StateDeployed
	StateSummarised = types.StateSummarised
	StateArchived   = types.StateArchived
)

// Trigger constants
const (
	TriggerCommand = types.TriggerCommand
	TriggerAgent   = types.TriggerAgent
	TriggerManual  = types.TriggerManual
)

// Store provides collection access for Go extensions.
type Store = store.FileStore

// NewStore opens a feature collection file for programmatic access.
func NewStore(path string) *Store {
	return store.New(path)
}

// ValidateTransition reports whether a feature in state current may move
// to next, using the same rules as the CLI.
func ValidateTransition(current, next State) error {
	return lifecycle.Validate(current, next)
}
