package state

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pyvm/internal/paths"
)

func newTestStore(t *testing.T) (*FileStore, paths.Paths) {
	t.Helper()
	p, err := paths.Resolve(filepath.Join(t.TempDir(), "home"))
	if err != nil {
		t.Fatal(err)
	}
	store, err := NewFileStore(p)
	if err != nil {
		t.Fatal(err)
	}
	return store, p
}

func TestNewFileStoreCreatesBaseDirs(t *testing.T) {
	_, p := newTestStore(t)

	for _, dir := range []string{p.Root, p.VersionsDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatal(err)
		}
		if !info.IsDir() {
			t.Fatalf("%s is not a directory", dir)
		}
	}
}

func TestLoadFirstRun(t *testing.T) {
	store, _ := newTestStore(t)

	st, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(st.Installed) != 0 {
		t.Fatalf("expected empty installed map, got %v", st.Installed)
	}
	if st.CurrentID() != "" {
		t.Fatalf("expected unset current, got %q", st.CurrentID())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)

	st := Empty()
	st.Installed["3.11.0"] = "/home/user/.pyvm/versions/3.11.0"
	st.SetCurrent("3.11.0")
	if err := store.Save(st); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Installed["3.11.0"] != st.Installed["3.11.0"] {
		t.Fatalf("got %v", loaded.Installed)
	}
	if loaded.CurrentID() != "3.11.0" {
		t.Fatalf("got current %q", loaded.CurrentID())
	}
}

func TestSaveWritesValidDocumentWithNullCurrent(t *testing.T) {
	store, p := newTestStore(t)

	if err := store.Save(Empty()); err != nil {
		t.Fatal(err)
	}

	contents, err := os.ReadFile(p.StateFile)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(contents, &raw); err != nil {
		t.Fatalf("state file is not valid JSON: %v", err)
	}
	if string(raw["current"]) != "null" {
		t.Fatalf("current should serialize as null, got %s", raw["current"])
	}
	if _, ok := raw["installed_versions"]; !ok {
		t.Fatal("installed_versions key missing")
	}
}

func TestSaveDoesNotLeaveTempFiles(t *testing.T) {
	store, p := newTestStore(t)

	if err := store.Save(Empty()); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(p.Root)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if entry.Name() != "config.json" && entry.Name() != "versions" {
			t.Fatalf("unexpected leftover entry %s", entry.Name())
		}
	}
}

func TestLoadCorruptFile(t *testing.T) {
	store, p := newTestStore(t)

	if err := os.WriteFile(p.StateFile, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := store.Load()
	if !errors.Is(err, ErrConfigCorrupt) {
		t.Fatalf("got %v, want ErrConfigCorrupt", err)
	}
}

func TestLoadWithRetryRecoverableFailure(t *testing.T) {
	store, p := newTestStore(t)

	// A corrupt file that stays corrupt reports unavailable.
	if err := os.WriteFile(p.StateFile, []byte("oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := store.LoadWithRetry(); err == nil {
		t.Fatal("expected error after retry")
	}

	// A valid file loads on the first attempt.
	if err := store.Save(Empty()); err != nil {
		t.Fatal(err)
	}
	if _, err := store.LoadWithRetry(); err != nil {
		t.Fatal(err)
	}
}

func TestLockExcludesSecondHolder(t *testing.T) {
	store, _ := newTestStore(t)

	release, err := store.Lock(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	if _, err := store.Lock(ctx); err == nil {
		t.Fatal("second lock should block until context expiry")
	}

	release()

	release2, err := store.Lock(context.Background())
	if err != nil {
		t.Fatalf("lock after release: %v", err)
	}
	release2()
}
