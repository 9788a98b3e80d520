package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WithEnv sets env var to val for the duration of the test scope.
// Returns a cleanup func to restore previous value.
func WithEnv(t *testing.T, key, val string) func() {
	t.Helper()
	old, had := os.LookupEnv(key)
	if val == "" {
		_ = os.Unsetenv(key)
	} else {
		_ = os.Setenv(key, val)
	}
	return func() {
		if had {
			_ = os.Setenv(key, old)
		} else {
			_ = os.Unsetenv(key)
		}
	}
}

// StubCommand writes an executable named name into dir that prints stdout
// and exits with code. The script uses shell builtins only, so it works even
// when tests point PATH at dir alone.
func StubCommand(t *testing.T, dir, name, stdout string, code int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	quoted := "'" + strings.ReplaceAll(stdout, "'", `'\''`) + "'"
	script := fmt.Sprintf("#!/bin/sh\nprintf '%%s\\n' %s\nexit %d\n", quoted, code)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return path
}
