package store

import (
	"context"
	"fmt"
)

// Unavailable is a DocumentStore standing in for a deployment that
// could not be reached at startup. Every call fails with the original
// connection error, which the agent's degradation paths absorb: the
// schema summary goes empty and tool calls return speakable error
// values, so the conversation keeps working without data access.
type Unavailable struct {
	Err error
}

func (u Unavailable) ListCollections(ctx context.Context) ([]string, error) {
	return nil, fmt.Errorf("document store unavailable: %w", u.Err)
}

func (u Unavailable) SampleFields(ctx context.Context, collection string) ([]string, error) {
	return nil, fmt.Errorf("document store unavailable: %w", u.Err)
}

func (u Unavailable) Find(ctx context.Context, collection string, filter map[string]any, opts FindOptions) ([]map[string]any, error) {
	return nil, fmt.Errorf("document store unavailable: %w", u.Err)
}
