// Package scan discovers runtime installations on the host that pyvm does
// not own. Discovery is best-effort: individual candidate failures are
// skipped so partial results always beat total failure.
package scan

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"pyvm/internal/config"
	"pyvm/internal/registry"
)

const probeTimeout = 5 * time.Second

// Source produces candidate records from one discovery mechanism. Sources
// never return errors; a faulty candidate is dropped.
type Source interface {
	Discover(ctx context.Context) []registry.Record
}

// Scanner runs all configured sources. It never mutates persistent state and
// is safe to call repeatedly.
type Scanner struct {
	sources []Source
}

// New builds the default scanner from settings: the PATH probe (when
// enabled) followed by the well-known install roots.
func New(cfg config.Settings) *Scanner {
	var sources []Source
	if cfg.ProbePathEnabled() {
		sources = append(sources, &pathSource{executable: cfg.Executable})
	}
	sources = append(sources, &rootsSource{roots: cfg.ScanRoots, executable: cfg.Executable})
	return &Scanner{sources: sources}
}

// NewFromSources builds a scanner over explicit sources, for tests and
// callers with custom discovery.
func NewFromSources(sources ...Source) *Scanner {
	return &Scanner{sources: sources}
}

// Scan merges all sources keyed by version id. Earlier sources win for a
// duplicate id.
func (s *Scanner) Scan(ctx context.Context) map[string]registry.Record {
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()
	}

	merged := map[string]registry.Record{}
	for _, source := range s.sources {
		for _, rec := range source.Discover(ctx) {
			if rec.ID == "" {
				continue
			}
			if _, ok := merged[rec.ID]; ok {
				continue
			}
			rec.Provenance = registry.SystemDetected
			merged[rec.ID] = rec
		}
	}
	return merged
}

// pathSource resolves the runtime currently reachable on the command search
// path and asks it for its version. Absence or a probe failure degrades to
// no results.
type pathSource struct {
	executable string
}

func (p *pathSource) Discover(ctx context.Context) []registry.Record {
	path, err := exec.LookPath(p.executable)
	if err != nil {
		return nil
	}

	version, err := readVersion(ctx, path)
	if err != nil || version == "" {
		return nil
	}

	return []registry.Record{{
		ID:   version,
		Path: filepath.Dir(path),
	}}
}

// rootsSource walks the version-keyed subdirectories of each well-known
// install root. Candidates whose executable does not exist on disk are
// dropped; enumeration errors on a root truncate that root only.
type rootsSource struct {
	roots      []string
	executable string
}

func (r *rootsSource) Discover(_ context.Context) []registry.Record {
	var records []registry.Record
	for _, root := range r.roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			dir := filepath.Join(root, entry.Name())
			if _, ok := findExecutable(dir, r.executable); !ok {
				continue
			}
			records = append(records, registry.Record{
				ID:   entry.Name(),
				Path: dir,
			})
		}
	}
	return records
}

// findExecutable checks the canonical locations of the runtime binary inside
// an install directory.
func findExecutable(dir, executable string) (string, bool) {
	for _, candidate := range []string{
		filepath.Join(dir, executable),
		filepath.Join(dir, "bin", executable),
	} {
		info, err := os.Stat(candidate)
		if err == nil && info.Mode().IsRegular() {
			return candidate, true
		}
	}
	return "", false
}

func readVersion(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, path, "--version")
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return parseVersionLine(firstLine(strings.TrimSpace(string(output)))), nil
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return text[:idx]
	}
	return text
}

// parseVersionLine extracts the dotted version from output like
// "Python 3.11.0".
func parseVersionLine(line string) string {
	for _, field := range strings.Fields(line) {
		if field == "" {
			continue
		}
		if field[0] >= '0' && field[0] <= '9' {
			return field
		}
	}
	return ""
}
