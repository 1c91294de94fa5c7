// Package tools implements the agent's tool protocol: recovering an
// invocation from model output, sanitizing its query, and executing it
// against the document store.
package tools

// Wire names of the two permitted tool kinds.
const (
	ToolSchemaLookup = "schema_lookup"
	ToolSearch       = "search"
)

// DefaultSearchLimit applies when a search invocation names no limit.
const DefaultSearchLimit = 10

// Invocation is the closed set of tool invocations the model may
// emit. The executor switches exhaustively over its variants, so a new
// tool kind is a compile-time-checked extension point.
type Invocation interface {
	invocation()
}

// SchemaLookup asks for the field names of one collection. The model
// issues it when unsure what fields exist before searching.
type SchemaLookup struct {
	Collection string
}

func (SchemaLookup) invocation() {}

// SearchQuery asks for documents matching a filter.
type SearchQuery struct {
	Collection string
	Filter     map[string]any
	Limit      int
}

func (SearchQuery) invocation() {}
