package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/parley-ai/parley/pkg/store"
)

// Executor dispatches parsed invocations against the document store.
// Every failure becomes a descriptive, JSON-serializable value instead
// of an error: the agent loop must always have a tool result to hand
// back to the model so the next completion can explain the problem in
// natural language.
type Executor struct {
	store     store.DocumentStore
	resultCap int
}

// NewExecutor creates an executor. resultCap is the hard ceiling on
// search result size (50 by default at the config layer).
func NewExecutor(docStore store.DocumentStore, resultCap int) *Executor {
	return &Executor{store: docStore, resultCap: resultCap}
}

// Execute runs the invocation and returns its JSON-serializable
// result. Only read operations are ever issued.
func (e *Executor) Execute(ctx context.Context, inv Invocation) any {
	switch inv := inv.(type) {
	case SchemaLookup:
		return e.schemaLookup(ctx, inv)
	case SearchQuery:
		return e.search(ctx, inv)
	default:
		return map[string]any{"error": "unsupported tool invocation"}
	}
}

func (e *Executor) schemaLookup(ctx context.Context, inv SchemaLookup) any {
	fields, err := e.store.SampleFields(ctx, inv.Collection)
	if errors.Is(err, store.ErrCollectionNotFound) {
		return map[string]any{"error": "Collection not found"}
	}
	if err != nil {
		slog.Warn("Schema lookup failed", "collection", inv.Collection, "error", err)
		return map[string]any{"error": fmt.Sprintf("Schema lookup failed: %v", err)}
	}

	slog.Debug("Schema lookup", "collection", inv.Collection, "fields", len(fields))
	return map[string]any{inv.Collection: fields}
}

func (e *Executor) search(ctx context.Context, inv SearchQuery) any {
	clean, opts := SanitizeFilter(inv.Filter, inv.Limit, e.resultCap)

	docs, err := e.store.Find(ctx, inv.Collection, clean, opts)
	if errors.Is(err, store.ErrCollectionNotFound) {
		// A single error string, not an empty list, so the model can
		// tell a bad collection name from a query with no matches.
		return []string{fmt.Sprintf("Error: Collection '%s' does not exist.", inv.Collection)}
	}
	if err != nil {
		slog.Warn("Search failed", "collection", inv.Collection, "error", err)
		return []string{fmt.Sprintf("Database error: %v", err)}
	}

	slog.Debug("Search executed",
		"collection", inv.Collection,
		"limit", opts.Limit,
		"results", len(docs))
	return docs
}
