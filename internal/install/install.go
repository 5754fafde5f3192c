// Package install acquires new runtime versions into the managed root and
// removes self-managed ones.
package install

import (
	"context"
	"errors"
	"fmt"
	"os"

	"pyvm/internal/paths"
	"pyvm/internal/registry"
	"pyvm/internal/state"
)

var (
	// ErrFetch marks a failure to obtain the distribution archive.
	ErrFetch = errors.New("fetch archive")
	// ErrUnpack marks a failure to extract the archive.
	ErrUnpack = errors.New("unpack archive")
	// ErrNotSelfManaged marks an uninstall of a version pyvm does not own.
	ErrNotSelfManaged = errors.New("version not managed by pyvm")
	// ErrRemoval marks a failure to delete a version's files.
	ErrRemoval = errors.New("remove version files")
)

// Fetcher obtains the distribution archive for a version id. On failure no
// partial file may remain at the returned path.
type Fetcher interface {
	Fetch(ctx context.Context, id, destDir string) (string, error)
}

// Unpacker extracts an archive into a directory, populating it fully before
// returning.
type Unpacker interface {
	Unpack(ctx context.Context, archivePath, destDir string) error
}

// Result reports the outcome of an install.
type Result string

const (
	// ResultInstalled means the version was fetched, unpacked, and recorded.
	ResultInstalled Result = "installed"
	// ResultAlreadyInstalled means the version was already self-managed and
	// no network or filesystem activity took place.
	ResultAlreadyInstalled Result = "already-installed"
)

// Manager orchestrates install and uninstall against an injected store and
// collaborators.
type Manager struct {
	Store    state.Store
	Locker   state.Locker // optional; nil skips cross-process locking
	Paths    paths.Paths
	Fetcher  Fetcher
	Unpacker Unpacker
	Scanner  registry.Scanner // optional; distinguishes unknown vs system-owned ids on uninstall
}

// Install acquires the requested version. It is idempotent: a version already
// in the self-managed set reports ResultAlreadyInstalled without touching the
// network or disk. Any mid-flight failure removes the version directory so no
// partial install is left on disk or in state.
func (m *Manager) Install(ctx context.Context, id string) (Result, error) {
	unlock, err := m.lock(ctx)
	if err != nil {
		return "", err
	}
	defer unlock()

	st, err := m.Store.Load()
	if err != nil {
		return "", err
	}
	if _, ok := st.Installed[id]; ok {
		return ResultAlreadyInstalled, nil
	}

	dir := m.Paths.VersionDir(id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create version directory: %w", err)
	}

	archive, err := m.Fetcher.Fetch(ctx, id, dir)
	if err != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}

	if err := m.Unpacker.Unpack(ctx, archive, dir); err != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("%w: %v", ErrUnpack, err)
	}
	// The archive has served its purpose once extracted.
	_ = os.Remove(archive)

	st.Installed[id] = dir
	if err := m.Store.Save(st); err != nil {
		_ = os.RemoveAll(dir)
		return "", err
	}
	return ResultInstalled, nil
}

// Uninstall removes a self-managed version's files and registry entry. It
// refuses ids pyvm does not own and records whose path escapes the managed
// versions directory. If the removed version was active, the pointer is
// cleared.
func (m *Manager) Uninstall(ctx context.Context, id string) error {
	unlock, err := m.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	st, err := m.Store.Load()
	if err != nil {
		return err
	}

	dir, ok := st.Installed[id]
	if !ok {
		if m.systemDetected(ctx, id) {
			return fmt.Errorf("%w: %s was detected on the host but not installed by pyvm", ErrNotSelfManaged, id)
		}
		return fmt.Errorf("%w: %s", registry.ErrUnknownVersion, id)
	}

	// A corrupted record must never let us delete files outside the managed tree.
	if !m.Paths.UnderVersions(dir) {
		return fmt.Errorf("%w: recorded path %s is outside the managed versions directory", ErrNotSelfManaged, dir)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("%w: %v", ErrRemoval, err)
	}

	delete(st.Installed, id)
	if st.CurrentID() == id {
		st.ClearCurrent()
	}
	return m.Store.Save(st)
}

func (m *Manager) lock(ctx context.Context) (func(), error) {
	if m.Locker == nil {
		return func() {}, nil
	}
	return m.Locker.Lock(ctx)
}

func (m *Manager) systemDetected(ctx context.Context, id string) bool {
	if m.Scanner == nil {
		return false
	}
	_, ok := m.Scanner.Scan(ctx)[id]
	return ok
}
