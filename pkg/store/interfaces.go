// Package store provides the document-store collaborator the agent
// queries through its tools.
package store

import (
	"context"
	"errors"
)

// ErrCollectionNotFound reports a query against an unknown collection.
// The tool executor branches on it to tell the model "bad collection
// name" apart from "no matches".
var ErrCollectionNotFound = errors.New("collection not found")

// SortField is one field of a derived sort order.
type SortField struct {
	Key       string
	Ascending bool
}

// FindOptions carries the execution options the query sanitizer
// separates from the data filter.
type FindOptions struct {
	// Projection maps field names to inclusion flags. A nil projection
	// means the store's default (internal identifiers hidden).
	Projection map[string]any

	// Sort is applied in order. Empty means natural order.
	Sort []SortField

	// Limit caps the result size. Must be positive.
	Limit int
}

// DocumentStore is the read-only contract the agent consumes. All
// methods are blocking round-trips; cancellation comes from ctx.
type DocumentStore interface {
	// ListCollections returns the non-system collection names.
	ListCollections(ctx context.Context) ([]string, error)

	// SampleFields returns the field names observed on one sample
	// document of the collection, internal identifiers excluded.
	// Returns ErrCollectionNotFound for unknown names.
	SampleFields(ctx context.Context, collection string) ([]string, error)

	// Find returns up to opts.Limit documents matching the filter.
	// Returns ErrCollectionNotFound for unknown names.
	Find(ctx context.Context, collection string, filter map[string]any, opts FindOptions) ([]map[string]any, error)
}
