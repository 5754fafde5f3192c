// Package activate switches the active runtime version. The engine orders
// its steps so persisted state is only updated after the host environment
// mutation succeeds.
package activate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"pyvm/internal/registry"
	"pyvm/internal/state"
)

var (
	// ErrMissingExecutable marks a registry entry whose runtime binary is gone.
	ErrMissingExecutable = errors.New("runtime executable missing")
	// ErrInsufficientPrivilege marks activation attempted without elevation.
	ErrInsufficientPrivilege = errors.New("activation requires elevated privilege")
	// ErrBackend marks a failure inside the activation backend.
	ErrBackend = errors.New("activation backend")
)

// Backend mutates the host's command-resolution configuration. Implementations
// must be idempotent: activating the same path twice yields the same result.
type Backend interface {
	Activate(runtimeRoot string) error
}

// Privilege reports whether the caller holds the elevated capability needed
// to mutate host-wide environment state. It is supplied at call time so the
// gating logic stays testable without elevation.
type Privilege func() bool

// Outcome reports what an activation attempt accomplished.
type Outcome struct {
	ID string
	// EnvironmentMutated is true once the backend ran successfully, even if
	// the subsequent commit failed.
	EnvironmentMutated bool
	// Committed is true once the active pointer was persisted.
	Committed bool
	// Note carries caller-facing guidance (new-session requirement, or the
	// recovery instruction after a commit failure).
	Note string
}

// Engine drives the activation state machine against injected collaborators.
type Engine struct {
	Store      state.Store
	Locker     state.Locker // optional
	Scanner    registry.Scanner
	Backend    Backend
	Privilege  Privilege
	Executable string
}

// Activate makes id the active version: validate the id and its executable,
// check privilege, invoke the backend, then commit the pointer. Failures
// before the backend step have zero side effects; a commit failure after a
// successful backend step is reported as the recognized inconsistency window.
func (e *Engine) Activate(ctx context.Context, id string) (Outcome, error) {
	outcome := Outcome{ID: id}

	unlock, err := e.lock(ctx)
	if err != nil {
		return outcome, err
	}
	defer unlock()

	// Validating.
	view, err := registry.Build(ctx, e.Store, e.Scanner)
	if err != nil {
		return outcome, err
	}
	rec, ok := view.Resolve(id)
	if !ok {
		return outcome, fmt.Errorf("%w: %s", registry.ErrUnknownVersion, id)
	}
	if _, ok := runtimeExecutable(rec.Path, e.Executable); !ok {
		return outcome, fmt.Errorf("%w: no %s under %s", ErrMissingExecutable, e.Executable, rec.Path)
	}

	// PrivilegeCheck. Nothing has been mutated up to this point.
	if e.Privilege == nil || !e.Privilege() {
		return outcome, ErrInsufficientPrivilege
	}

	// Mutating. The backend is the only step with external side effects; on
	// failure the prior active version remains authoritative.
	if err := e.Backend.Activate(rec.Path); err != nil {
		return outcome, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	outcome.EnvironmentMutated = true

	// Committing.
	st, err := e.Store.Load()
	if err != nil {
		return outcome, commitFailure(id, err)
	}
	st.SetCurrent(id)
	if err := e.Store.Save(st); err != nil {
		return outcome, commitFailure(id, err)
	}

	outcome.Committed = true
	outcome.Note = fmt.Sprintf("version %s is active; open a new shell session to pick up the change", id)
	return outcome, nil
}

// commitFailure wraps a persistence error with the explicit warning that the
// environment was already mutated even though persisted state was not.
func commitFailure(id string, err error) error {
	return fmt.Errorf(
		"commit active pointer for %s: %w (the environment may already reflect the new version; re-run `pyvm use %s` once the state file is writable)",
		id, err, id)
}

// runtimeExecutable locates the runtime binary inside an installation root.
func runtimeExecutable(root, executable string) (string, bool) {
	for _, candidate := range []string{
		filepath.Join(root, executable),
		filepath.Join(root, "bin", executable),
	} {
		info, err := os.Stat(candidate)
		if err == nil && info.Mode().IsRegular() {
			return candidate, true
		}
	}
	return "", false
}

func (e *Engine) lock(ctx context.Context) (func(), error) {
	if e.Locker == nil {
		return func() {}, nil
	}
	return e.Locker.Lock(ctx)
}
