// Package config defines parley's configuration surface and loading.
package config

import "fmt"

// Config is the root configuration for the parley assistant.
type Config struct {
	LLM       LLMProviderConfig `yaml:"llm"`
	Store     StoreConfig       `yaml:"store"`
	Retrieval RetrievalConfig   `yaml:"retrieval"`
	Agent     AgentConfig       `yaml:"agent"`
	Logging   LoggingConfig     `yaml:"logging"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// SetDefaults applies defaults to all sections.
func (c *Config) SetDefaults() {
	c.LLM.SetDefaults()
	c.Store.SetDefaults()
	c.Retrieval.SetDefaults()
	c.Agent.SetDefaults()

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "simple"
	}
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := c.Retrieval.Validate(); err != nil {
		return fmt.Errorf("retrieval: %w", err)
	}
	if err := c.Agent.Validate(); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	return nil
}

// Default returns a zero-config Config driven entirely by environment
// variables and built-in defaults, usable without a config file.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}
