package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Settings captures tool-level preferences stored in pyvm.yaml under the
// managed root. Runtime state (installed versions, the active pointer) lives
// in config.json and is owned by the state package.
type Settings struct {
	Version int `yaml:"version"`

	// Executable is the runtime binary name probed on PATH and expected
	// inside installed version directories.
	Executable string `yaml:"executable"`

	// ProbePath toggles discovery of the runtime currently resolvable on
	// the command search path.
	ProbePath *bool `yaml:"probe_path,omitempty"`

	// ScanRoots lists host directories whose version-keyed subdirectories
	// are treated as externally installed runtimes.
	ScanRoots []string `yaml:"scan_roots"`

	// Downloads maps a GOOS-GOARCH key (or "default") to a URL template.
	// The {version} placeholder is replaced with the requested id.
	Downloads map[string]string `yaml:"downloads"`
}

const embedTemplate = "https://www.python.org/ftp/python/{version}/python-{version}-embed-amd64.zip"

// Default returns the baseline settings.
func Default() Settings {
	return Settings{
		Version:    1,
		Executable: defaultExecutable(),
		ProbePath:  boolPtr(true),
		ScanRoots:  defaultScanRoots(),
		Downloads: map[string]string{
			"default":       embedTemplate,
			"windows-amd64": embedTemplate,
		},
	}
}

func defaultExecutable() string {
	if runtime.GOOS == "windows" {
		return "python.exe"
	}
	return "python3"
}

func defaultScanRoots() []string {
	switch runtime.GOOS {
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return []string{localAppData + `\Programs\Python`}
		}
		return []string{`C:\Python`}
	case "darwin":
		return []string{"/Library/Frameworks/Python.framework/Versions"}
	default:
		return []string{"/opt/python"}
	}
}

// Load reads the YAML settings from disk if they exist, otherwise returns the
// defaults.
func Load(path string) (Settings, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	cfg := Settings{}
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Settings{}, fmt.Errorf("unmarshal settings: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills fields the YAML omits.
func (s *Settings) ApplyDefaults() {
	defaults := Default()

	if s.Version == 0 {
		s.Version = defaults.Version
	}
	if strings.TrimSpace(s.Executable) == "" {
		s.Executable = defaults.Executable
	}
	if s.ProbePath == nil {
		s.ProbePath = defaults.ProbePath
	}
	if len(s.ScanRoots) == 0 {
		s.ScanRoots = defaults.ScanRoots
	}
	if s.Downloads == nil {
		s.Downloads = map[string]string{}
	}
	for key, value := range defaults.Downloads {
		if _, ok := s.Downloads[key]; !ok {
			s.Downloads[key] = value
		}
	}
}

// ProbePathEnabled returns the effective PATH-probe flag.
func (s Settings) ProbePathEnabled() bool {
	if s.ProbePath == nil {
		return true
	}
	return *s.ProbePath
}

// DownloadURL resolves the archive URL for a version id on the current
// platform. A platform-specific template wins over the "default" entry.
func (s Settings) DownloadURL(id string) (string, error) {
	key := runtime.GOOS + "-" + runtime.GOARCH
	template, ok := s.Downloads[key]
	if !ok {
		template, ok = s.Downloads["default"]
	}
	if !ok || strings.TrimSpace(template) == "" {
		return "", fmt.Errorf("no download template for platform %s", key)
	}
	return strings.ReplaceAll(template, "{version}", id), nil
}

// Marshal returns the YAML encoding of the settings.
func (s Settings) Marshal() ([]byte, error) {
	buf, err := yaml.Marshal(&s)
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}
	return buf, nil
}

func boolPtr(v bool) *bool {
	return &v
}
