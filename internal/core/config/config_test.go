package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "yousync.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
state_dir: /var/lib/yousync
concurrency: 8
retry:
  max_retries: 3
  base_delay: 500ms
  max_delay: 30s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.StateDir != "/var/lib/yousync" {
		t.Errorf("StateDir = %q", cfg.StateDir)
	}
	if cfg.Concurrency != 8 {
		t.Errorf("Concurrency = %d, want 8", cfg.Concurrency)
	}

	r := cfg.RetryOptions()
	if r.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", r.MaxRetries)
	}
	if r.BaseDelay != 500*time.Millisecond {
		t.Errorf("BaseDelay = %v, want 500ms", r.BaseDelay)
	}
	if r.MaxDelay != 30*time.Second {
		t.Errorf("MaxDelay = %v, want 30s", r.MaxDelay)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `{}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.StateDir == "" {
		t.Error("StateDir default not applied")
	}
	if cfg.Concurrency != 4 {
		t.Errorf("Concurrency = %d, want default 4", cfg.Concurrency)
	}

	r := cfg.RetryOptions()
	if r.MaxRetries != 5 || r.BaseDelay != time.Second || r.MaxDelay != 60*time.Second {
		t.Errorf("retry defaults = %+v", r)
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("YOUSYNC_TEST_DIR", "/tmp/yousync-test")
	path := writeConfig(t, "state_dir: ${YOUSYNC_TEST_DIR}/state\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.StateDir != "/tmp/yousync-test/state" {
		t.Errorf("StateDir = %q, want env-expanded path", cfg.StateDir)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeConfig(t, "retry:\n  base_delay: soon\n")

	if _, err := Load(path); err == nil {
		t.Error("Load succeeded with an invalid duration")
	}
}

func TestFindConfigPath_Explicit(t *testing.T) {
	path := writeConfig(t, "concurrency: 2\n")

	if got := FindConfigPath(path); got != path {
		t.Errorf("FindConfigPath = %q, want %q", got, path)
	}
	if got := FindConfigPath(filepath.Join(t.TempDir(), "missing.yaml")); got != "" {
		t.Errorf("FindConfigPath on missing explicit path = %q, want empty", got)
	}
}
