package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "pyvm.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Executable == "" {
		t.Fatal("default executable not applied")
	}
	if !cfg.ProbePathEnabled() {
		t.Fatal("probe_path should default to enabled")
	}
	if len(cfg.ScanRoots) == 0 {
		t.Fatal("default scan roots missing")
	}
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pyvm.yaml")
	contents := "executable: mypython\nscan_roots:\n  - /custom/pythons\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Executable != "mypython" {
		t.Fatalf("got executable %q", cfg.Executable)
	}
	if len(cfg.ScanRoots) != 1 || cfg.ScanRoots[0] != "/custom/pythons" {
		t.Fatalf("got scan roots %v", cfg.ScanRoots)
	}
	if _, ok := cfg.Downloads["default"]; !ok {
		t.Fatal("default download template not merged")
	}
}

func TestDownloadURL(t *testing.T) {
	t.Run("platform template wins", func(t *testing.T) {
		cfg := Default()
		key := runtime.GOOS + "-" + runtime.GOARCH
		cfg.Downloads[key] = "https://mirror.example/{version}.zip"

		url, err := cfg.DownloadURL("3.11.0")
		if err != nil {
			t.Fatal(err)
		}
		if url != "https://mirror.example/3.11.0.zip" {
			t.Fatalf("got %s", url)
		}
	})

	t.Run("falls back to default template", func(t *testing.T) {
		cfg := Default()
		url, err := cfg.DownloadURL("3.11.0")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(url, "3.11.0") {
			t.Fatalf("version not substituted: %s", url)
		}
	})

	t.Run("no template", func(t *testing.T) {
		cfg := Settings{Downloads: map[string]string{}}
		if _, err := cfg.DownloadURL("3.11.0"); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Executable = "python3.12"

	buf, err := cfg.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "pyvm.yaml")
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Executable != "python3.12" {
		t.Fatalf("got executable %q", loaded.Executable)
	}
}
