package scribe

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// A Config carries tool defaults loaded from a YAML file, so that
// language preference and network behavior do not have to be repeated
// on every invocation.
type Config struct {
	Language  string `yaml:"language,omitempty"`   // preferred caption language code
	Timeout   int    `yaml:"timeout,omitempty"`    // per-request HTTP timeout, seconds
	UserAgent string `yaml:"user_agent,omitempty"` // outbound User-Agent override
}

// LoadConfig reads and parses the YAML config file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

// Options converts c into fetch options. A nil c yields defaults.
func (c *Config) Options() *Options {
	opts := new(Options)
	if c == nil {
		return opts
	}
	opts.Language = c.Language
	opts.UserAgent = c.UserAgent
	if c.Timeout > 0 {
		opts.Timeout = time.Duration(c.Timeout) * time.Second
	}
	return opts
}
