package browser

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindChromeHonorsEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chrome")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CHROME_PATH", path)

	if got := FindChrome(); got != path {
		t.Errorf("FindChrome = %q, want the CHROME_PATH value", got)
	}
}

func TestIsExecutableRejectsDirectories(t *testing.T) {
	if isExecutable(t.TempDir()) {
		t.Error("a directory is not an executable")
	}
	if isExecutable(filepath.Join(t.TempDir(), "missing")) {
		t.Error("a missing path is not an executable")
	}
}
