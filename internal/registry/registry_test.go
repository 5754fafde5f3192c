package registry

import (
	"context"
	"errors"
	"testing"

	"pyvm/internal/state"
)

type memStore struct {
	st  state.State
	err error
}

func (m *memStore) Load() (state.State, error) {
	if m.err != nil {
		return state.State{}, m.err
	}
	return m.st, nil
}

func (m *memStore) Save(st state.State) error {
	m.st = st
	return nil
}

type fakeScanner map[string]Record

func (f fakeScanner) Scan(context.Context) map[string]Record {
	out := make(map[string]Record, len(f))
	for id, rec := range f {
		out[id] = rec
	}
	return out
}

func TestBuildMergesSelfManagedOverSystem(t *testing.T) {
	st := state.Empty()
	st.Installed["3.11.0"] = "/managed/versions/3.11.0"
	store := &memStore{st: st}
	scanner := fakeScanner{
		"3.11.0": {ID: "3.11.0", Path: "/usr/lib/python/3.11.0"},
		"3.9.7":  {ID: "3.9.7", Path: "/usr/lib/python/3.9.7"},
	}

	view, err := Build(context.Background(), store, scanner)
	if err != nil {
		t.Fatal(err)
	}

	if len(view.Installed) != 2 {
		t.Fatalf("got %d entries, want 2", len(view.Installed))
	}

	rec := view.Installed["3.11.0"]
	if rec.Provenance != SelfManaged {
		t.Fatalf("collision resolved to %s, want self-managed", rec.Provenance)
	}
	if rec.Path != "/managed/versions/3.11.0" {
		t.Fatalf("got path %s", rec.Path)
	}

	if view.Installed["3.9.7"].Provenance != SystemDetected {
		t.Fatal("scanner record should be system-detected")
	}
}

func TestBuildDanglingCurrent(t *testing.T) {
	st := state.Empty()
	st.SetCurrent("3.12.0")
	store := &memStore{st: st}

	view, err := Build(context.Background(), store, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !view.Dangling {
		t.Fatal("expected dangling current")
	}
	if err := view.CheckCurrent(); !errors.Is(err, ErrDanglingCurrent) {
		t.Fatalf("got %v, want ErrDanglingCurrent", err)
	}
}

func TestBuildValidCurrent(t *testing.T) {
	st := state.Empty()
	st.Installed["3.11.0"] = "/managed/versions/3.11.0"
	st.SetCurrent("3.11.0")

	view, err := Build(context.Background(), &memStore{st: st}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if view.Dangling {
		t.Fatal("current resolves, should not be dangling")
	}
	if err := view.CheckCurrent(); err != nil {
		t.Fatal(err)
	}
}

func TestBuildPropagatesStoreError(t *testing.T) {
	wantErr := errors.New("boom")
	if _, err := Build(context.Background(), &memStore{err: wantErr}, nil); !errors.Is(err, wantErr) {
		t.Fatalf("got %v", err)
	}
}

func TestListOrdering(t *testing.T) {
	st := state.Empty()
	st.Installed["3.10.2"] = "/v/3.10.2"
	st.Installed["3.9.7"] = "/v/3.9.7"
	st.Installed["3.11.0"] = "/v/3.11.0"
	st.SetCurrent("3.10.2")

	view, err := Build(context.Background(), &memStore{st: st}, nil)
	if err != nil {
		t.Fatal(err)
	}

	items := view.List()
	got := make([]string, len(items))
	for i, item := range items {
		got[i] = item.ID
	}
	want := []string{"3.9.7", "3.10.2", "3.11.0"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got order %v, want %v", got, want)
		}
	}

	for _, item := range items {
		if item.Current != (item.ID == "3.10.2") {
			t.Fatalf("current flag wrong for %s", item.ID)
		}
	}
}

func TestListEmptyRegistry(t *testing.T) {
	view, err := Build(context.Background(), &memStore{st: state.Empty()}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if items := view.List(); len(items) != 0 {
		t.Fatalf("got %d items, want 0", len(items))
	}
}

func TestVersionLessFallback(t *testing.T) {
	if !versionLess("3.9.0", "3.10.0") {
		t.Fatal("numeric ordering expected")
	}
	// Unparsable ids fall back to lexical ordering.
	if !versionLess("abc", "abd") {
		t.Fatal("lexical fallback expected")
	}
}
