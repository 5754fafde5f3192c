// Package registry merges the persisted self-managed entries with runtimes
// discovered on the host into one consistent view.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"

	goversion "github.com/hashicorp/go-version"

	"pyvm/internal/state"
)

var (
	// ErrUnknownVersion marks an id that resolves to nothing in the merged view.
	ErrUnknownVersion = errors.New("unknown version")
	// ErrDanglingCurrent marks an active pointer that references no installed entry.
	ErrDanglingCurrent = errors.New("active version not present in registry")
)

// Provenance records who owns an installation.
type Provenance string

const (
	// SelfManaged entries live under the managed root and may be uninstalled.
	SelfManaged Provenance = "self-managed"
	// SystemDetected entries were found on the host and are read-only to pyvm.
	SystemDetected Provenance = "system"
)

// Record describes one known runtime installation.
type Record struct {
	ID         string     `json:"id"`
	Path       string     `json:"path"`
	Provenance Provenance `json:"provenance"`
}

// Scanner discovers system installations. Implementations are best-effort
// and must never mutate persistent state.
type Scanner interface {
	Scan(ctx context.Context) map[string]Record
}

// View is the merged registry computed fresh per invocation.
type View struct {
	Installed map[string]Record
	Current   string
	// Dangling is set when Current references no installed entry. The fault
	// is reported to callers rather than silently repaired.
	Dangling bool
}

// Item pairs a record with its active flag for listing.
type Item struct {
	Record
	Current bool `json:"current"`
}

// Build loads the persisted entries (authoritative, self-managed) and merges
// the scanner's system detections. On an id collision the self-managed record
// wins, since it is the one pyvm can act on.
func Build(ctx context.Context, store state.Store, scanner Scanner) (View, error) {
	st, err := store.Load()
	if err != nil {
		return View{}, err
	}

	view := View{Installed: map[string]Record{}, Current: st.CurrentID()}

	if scanner != nil {
		for id, rec := range scanner.Scan(ctx) {
			rec.Provenance = SystemDetected
			view.Installed[id] = rec
		}
	}

	for id, path := range st.Installed {
		view.Installed[id] = Record{ID: id, Path: path, Provenance: SelfManaged}
	}

	if view.Current != "" {
		if _, ok := view.Installed[view.Current]; !ok {
			view.Dangling = true
		}
	}
	return view, nil
}

// Resolve looks up an id in the merged view.
func (v View) Resolve(id string) (Record, bool) {
	rec, ok := v.Installed[id]
	return rec, ok
}

// CheckCurrent validates the active pointer against the merged view.
func (v View) CheckCurrent() error {
	if v.Dangling {
		return fmt.Errorf("%w: %s", ErrDanglingCurrent, v.Current)
	}
	return nil
}

// List returns the merged records ordered by version, each flagged with
// whether it is the active one. It is recomputed from the view on every call
// and succeeds on an empty registry.
func (v View) List() []Item {
	items := make([]Item, 0, len(v.Installed))
	for _, rec := range v.Installed {
		items = append(items, Item{Record: rec, Current: rec.ID == v.Current})
	}

	sort.Slice(items, func(i, j int) bool {
		return versionLess(items[i].ID, items[j].ID)
	})
	return items
}

// versionLess orders dotted version ids numerically, falling back to a
// lexical comparison when either side does not parse.
func versionLess(a, b string) bool {
	va, errA := goversion.NewVersion(a)
	vb, errB := goversion.NewVersion(b)
	if errA != nil || errB != nil {
		return a < b
	}
	if va.Equal(vb) {
		return a < b
	}
	return va.LessThan(vb)
}
