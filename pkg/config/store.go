package config

import (
	"fmt"
	"os"
)

// StoreConfig configures the MongoDB document store.
type StoreConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`

	// ConnectTimeout is the server-selection timeout in seconds. Kept
	// short so an unreachable store degrades fast instead of stalling
	// the conversation.
	ConnectTimeout int `yaml:"connect_timeout"`
}

func (c *StoreConfig) SetDefaults() {
	if c.URI == "" {
		if uri := os.Getenv("MONGO_URI"); uri != "" {
			c.URI = uri
		} else {
			c.URI = "mongodb://localhost:27017"
		}
	}
	if c.Database == "" {
		if db := os.Getenv("MONGO_DB_NAME"); db != "" {
			c.Database = db
		} else {
			c.Database = "voice_assistant_db"
		}
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 5
	}
}

func (c *StoreConfig) Validate() error {
	if c.URI == "" {
		return fmt.Errorf("uri is required")
	}
	if c.Database == "" {
		return fmt.Errorf("database is required")
	}
	return nil
}
