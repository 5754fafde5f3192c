package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths captures the canonical locations inside the pyvm managed root.
type Paths struct {
	Root         string
	VersionsDir  string
	LogsDir      string
	StateFile    string
	SettingsFile string
	EnvFile      string
	LockFile     string
}

// Resolve determines the managed root using the optional --root flag, the
// PYVM_HOME environment variable, or ~/.pyvm when neither is set.
func Resolve(rootFlag string) (Paths, error) {
	root := rootFlag
	if root == "" {
		root = os.Getenv("PYVM_HOME")
	}

	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, fmt.Errorf("detect user home: %w", err)
		}
		root = filepath.Join(home, ".pyvm")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return Paths{}, fmt.Errorf("resolve managed root: %w", err)
	}

	return newPaths(abs), nil
}

func newPaths(root string) Paths {
	return Paths{
		Root:         root,
		VersionsDir:  filepath.Join(root, "versions"),
		LogsDir:      filepath.Join(root, "logs"),
		StateFile:    filepath.Join(root, "config.json"),
		SettingsFile: filepath.Join(root, "pyvm.yaml"),
		EnvFile:      filepath.Join(root, "env"),
		LockFile:     filepath.Join(root, "pyvm.lock"),
	}
}

// VersionDir returns the install directory for a self-managed version id.
func (p Paths) VersionDir(id string) string {
	return filepath.Join(p.VersionsDir, id)
}

// EnsureBase creates the managed root and its versions directory. It is safe
// to call repeatedly.
func (p Paths) EnsureBase() error {
	for _, dir := range []string{p.Root, p.VersionsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// EnsureLogsDir creates the logs directory under the managed root.
func (p Paths) EnsureLogsDir() error {
	if err := os.MkdirAll(p.LogsDir, 0o755); err != nil {
		return fmt.Errorf("create logs directory: %w", err)
	}
	return nil
}

// UnderVersions reports whether path is rooted inside the versions directory.
// Used as a guard before destructive removal.
func (p Paths) UnderVersions(path string) bool {
	rel, err := filepath.Rel(p.VersionsDir, filepath.Clean(path))
	if err != nil {
		return false
	}
	if rel == "." || rel == "" {
		return false
	}
	return rel != ".." && !hasDotDotPrefix(rel)
}

func hasDotDotPrefix(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
