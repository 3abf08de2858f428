package ai

import (
	"fmt"
	"os"
	"time"
)

// Backend modes for the AI system.
const (
	ModeProcessor = "processor"
	ModeAgent     = "agent"
)

// Config holds AI backend selection and processor connection parameters.
// Agent provider settings live in the agent config finalized separately.
type Config struct {
	Mode           string `toml:"mode"`
	ProcessorURL   string `toml:"processor_url"`
	RequestTimeout string `toml:"request_timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Mode           string
	ProcessorURL   string
	RequestTimeout string
}

// RequestTimeoutDuration returns RequestTimeout as a time.Duration.
func (c *Config) RequestTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RequestTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Mode != "" {
		c.Mode = overlay.Mode
	}
	if overlay.ProcessorURL != "" {
		c.ProcessorURL = overlay.ProcessorURL
	}
	if overlay.RequestTimeout != "" {
		c.RequestTimeout = overlay.RequestTimeout
	}
}

func (c *Config) loadDefaults() {
	if c.Mode == "" {
		c.Mode = ModeProcessor
	}
	if c.RequestTimeout == "" {
		c.RequestTimeout = "2m"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Mode != "" {
		if v := os.Getenv(env.Mode); v != "" {
			c.Mode = v
		}
	}
	if env.ProcessorURL != "" {
		if v := os.Getenv(env.ProcessorURL); v != "" {
			c.ProcessorURL = v
		}
	}
	if env.RequestTimeout != "" {
		if v := os.Getenv(env.RequestTimeout); v != "" {
			c.RequestTimeout = v
		}
	}
}

func (c *Config) validate() error {
	if c.Mode != ModeProcessor && c.Mode != ModeAgent {
		return fmt.Errorf("invalid ai mode: %s", c.Mode)
	}
	if c.Mode == ModeProcessor && c.ProcessorURL == "" {
		return fmt.Errorf("processor_url required for processor mode")
	}
	if _, err := time.ParseDuration(c.RequestTimeout); err != nil {
		return fmt.Errorf("invalid request_timeout: %w", err)
	}
	return nil
}
