package config

import "fmt"

// AgentConfig configures the conversational agent loop.
type AgentConfig struct {
	// Persona overrides the built-in persona and style rules placed at
	// the top of the system prompt.
	Persona string `yaml:"persona"`

	// ReferenceTimezone is an IANA zone included in the prompt so the
	// model can answer relative-time questions for users elsewhere.
	ReferenceTimezone string `yaml:"reference_timezone"`

	// ResultCap is the hard ceiling on documents a single search tool
	// call may return. Keeps one query from flooding the store or the
	// completion context.
	ResultCap int `yaml:"result_cap"`
}

func (c *AgentConfig) SetDefaults() {
	if c.ReferenceTimezone == "" {
		c.ReferenceTimezone = "Europe/Istanbul"
	}
	if c.ResultCap == 0 {
		c.ResultCap = 50
	}
}

func (c *AgentConfig) Validate() error {
	if c.ResultCap < 1 {
		return fmt.Errorf("result_cap must be at least 1")
	}
	return nil
}
