package config

import (
	"fmt"
	"os"
)

// LLMProviderConfig configures the OpenAI-compatible completion service.
type LLMProviderConfig struct {
	// Host is the API base URL. Any OpenAI-compatible endpoint works;
	// the default targets OpenRouter.
	Host string `yaml:"host"`

	// Model is the completion model identifier.
	Model string `yaml:"model"`

	// APIKey authenticates against the completion service.
	APIKey string `yaml:"api_key"`

	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`

	// Timeout is the per-request timeout in seconds.
	Timeout int `yaml:"timeout"`

	// MaxRetries controls transport-level retries. The agent loop
	// never retries a completion, so this defaults to 0.
	MaxRetries int `yaml:"max_retries"`
	RetryDelay int `yaml:"retry_delay"`
}

func (c *LLMProviderConfig) SetDefaults() {
	if c.Host == "" {
		if base := os.Getenv("OPENAI_BASE_URL"); base != "" {
			c.Host = base
		} else {
			c.Host = "https://openrouter.ai/api/v1"
		}
	}
	if c.Model == "" {
		c.Model = "meta-llama/llama-3-8b-instruct"
	}
	if c.APIKey == "" {
		c.APIKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if c.APIKey == "" {
		c.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.Temperature == 0 {
		c.Temperature = 0.7
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 1000
	}
	if c.Timeout == 0 {
		c.Timeout = 60
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = 2
	}
}

func (c *LLMProviderConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	// A missing API key is deliberately not a validation error: the
	// agent answers with an instructional sentence instead of failing
	// at startup.
	return nil
}
