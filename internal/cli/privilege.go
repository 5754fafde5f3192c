package cli

import (
	"os"
	"path/filepath"
	"runtime"
)

// elevatedPrivilege reports whether this process holds the capability to
// mutate host-wide environment state. Activation and uninstall gate on it.
func elevatedPrivilege() bool {
	if runtime.GOOS == "windows" {
		return canWriteSystemDir()
	}
	return os.Geteuid() == 0
}

// canWriteSystemDir probes elevation on Windows by attempting to create a
// file in the system directory, which only elevated processes may write.
func canWriteSystemDir() bool {
	windir := os.Getenv("windir")
	if windir == "" {
		windir = `C:\Windows`
	}
	probe, err := os.CreateTemp(filepath.Join(windir, "Temp"), "pyvm-elevation-*")
	if err != nil {
		return false
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return true
}
