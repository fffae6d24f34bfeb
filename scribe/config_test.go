package scribe_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vidscribe/tools/scribe"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	const text = `language: de
timeout: 30
user_agent: test-agent/1.0
`
	if err := os.WriteFile(path, []byte(text), 0600); err != nil {
		t.Fatalf("Writing config: %v", err)
	}

	cfg, err := scribe.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	opts := cfg.Options()
	if opts.Language != "de" {
		t.Errorf("Language: got %q, want %q", opts.Language, "de")
	}
	if opts.Timeout != 30*time.Second {
		t.Errorf("Timeout: got %v, want 30s", opts.Timeout)
	}
	if opts.UserAgent != "test-agent/1.0" {
		t.Errorf("UserAgent: got %q", opts.UserAgent)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := scribe.LoadConfig(filepath.Join(t.TempDir(), "nonesuch.yaml")); err == nil {
		t.Error("LoadConfig on missing file: got nil error")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0600); err != nil {
		t.Fatalf("Writing config: %v", err)
	}
	if _, err := scribe.LoadConfig(path); err == nil {
		t.Error("LoadConfig on malformed file: got nil error")
	}
}

func TestNilConfigOptions(t *testing.T) {
	var cfg *scribe.Config
	opts := cfg.Options()
	if opts == nil {
		t.Fatal("Options: got nil")
	}
	if opts.Language != "" || opts.Timeout != 0 || opts.UserAgent != "" {
		t.Errorf("Options: got %+v, want zero values", opts)
	}
}
