package activate

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// EnvFileBackend persists activation by rewriting a shell snippet under the
// managed root. Sourcing the file from a shell profile puts the active
// runtime first on PATH for future sessions. The file contains only
// pyvm-managed lines, so a full rewrite both removes the prior version's
// entries and makes repeated activation of the same path a no-op.
type EnvFileBackend struct {
	// Path is the snippet location, normally <root>/env.
	Path string
}

// Activate implements Backend.
func (b *EnvFileBackend) Activate(runtimeRoot string) error {
	if b.Path == "" {
		return fmt.Errorf("env file path not configured")
	}

	snippet := renderSnippet(runtimeRoot)

	dir := filepath.Dir(b.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("prepare env directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "env-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp env file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.WriteString(snippet); err != nil {
		tmp.Close()
		return fmt.Errorf("write env file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close env file: %w", err)
	}

	if err := os.Rename(tmp.Name(), b.Path); err != nil {
		return fmt.Errorf("replace env file: %w", err)
	}
	return nil
}

func renderSnippet(runtimeRoot string) string {
	scripts := scriptsDir(runtimeRoot)
	var b strings.Builder
	b.WriteString("# Managed by pyvm. Do not edit; `pyvm use` rewrites this file.\n")
	fmt.Fprintf(&b, "export PYVM_RUNTIME=%q\n", runtimeRoot)
	fmt.Fprintf(&b, "export PATH=%q:%q:$PATH\n", runtimeRoot, scripts)
	return b.String()
}

// scriptsDir returns the runtime's script/bin subpath, which also belongs on
// PATH so entry points installed alongside the runtime resolve.
func scriptsDir(runtimeRoot string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(runtimeRoot, "Scripts")
	}
	return filepath.Join(runtimeRoot, "bin")
}
