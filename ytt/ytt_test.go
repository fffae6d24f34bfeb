package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("timeout: 30\nlanguage: de\n"), 0600); err != nil {
		t.Fatalf("Writing config: %v", err)
	}
	restore := func(c string, n int, l string) { *configPath, *timeout, *language = c, n, l }
	defer restore(*configPath, *timeout, *language)

	// With no flags set, the config values apply.
	*configPath, *timeout, *language = path, 0, ""
	opts := loadOptions()
	if opts.Timeout != 30*time.Second {
		t.Errorf("Timeout: got %v, want 30s", opts.Timeout)
	}
	if opts.Language != "de" {
		t.Errorf("Language: got %q, want %q", opts.Language, "de")
	}

	// Explicit flags override the config.
	*timeout, *language = 5, "fr"
	opts = loadOptions()
	if opts.Timeout != 5*time.Second {
		t.Errorf("Timeout with flag: got %v, want 5s", opts.Timeout)
	}
	if opts.Language != "fr" {
		t.Errorf("Language with flag: got %q, want %q", opts.Language, "fr")
	}

	// Without a config file, unset flags leave the zero values, which
	// the fetch layer replaces with its own defaults.
	*configPath, *timeout, *language = "", 0, ""
	opts = loadOptions()
	if opts.Timeout != 0 || opts.Language != "" {
		t.Errorf("Defaults: got %+v, want zero values", opts)
	}
}
