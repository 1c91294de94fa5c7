package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"

	"github.com/parley-ai/parley/pkg/config"
	"github.com/parley-ai/parley/pkg/retrieval"
	"github.com/parley-ai/parley/pkg/store"
)

// defaultPersona is used when the config names no persona.
const defaultPersona = `You are a helpful voice assistant. Your answers are spoken aloud, so keep them concise (1-2 sentences) and use plain sentences without markdown, lists, or code.`

// toolInstructions teaches the model the two permitted invocation
// shapes. Kept verbatim in every system prompt.
const toolInstructions = `You can consult a database. To do so, reply with ONLY a JSON object and no other text. Two tools are available:

1. Look up which fields a collection has:
{"tool": "schema_lookup", "collection": "employees"}

2. Search a collection with a MongoDB-style filter:
{"tool": "search", "collection": "employees", "query": {"name": "John Doe"}, "limit": 5}

After you receive the tool results, answer the user in natural language. If you can answer without the database, just answer directly.`

// passageSeparator joins retrieved passages in the prompt.
const passageSeparator = "\n---\n"

// ContextBuilder assembles the system prompt the agent reasons with.
// Construction is pure composition over the clock and the two
// collaborators and never fails: a broken store yields an empty
// schema block, a disabled ranker yields no retrieval block.
type ContextBuilder struct {
	store  store.DocumentStore
	ranker *retrieval.Ranker
	cfg    *config.AgentConfig

	refZone  *time.Location
	clock    func() time.Time
	encoding *tiktoken.Tiktoken
}

// NewContextBuilder wires the builder. An unknown reference timezone
// falls back to UTC with a warning.
func NewContextBuilder(docStore store.DocumentStore, ranker *retrieval.Ranker, cfg *config.AgentConfig) *ContextBuilder {
	zone, err := time.LoadLocation(cfg.ReferenceTimezone)
	if err != nil {
		slog.Warn("Unknown reference timezone, using UTC", "timezone", cfg.ReferenceTimezone)
		zone = time.UTC
	}

	// Token counting is a debug aid only; a missing encoding just
	// downgrades the estimate.
	encoding, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		slog.Debug("Token encoding unavailable", "error", err)
		encoding = nil
	}

	return &ContextBuilder{
		store:    docStore,
		ranker:   ranker,
		cfg:      cfg,
		refZone:  zone,
		clock:    time.Now,
		encoding: encoding,
	}
}

// WithClock replaces the time source, for tests.
func (b *ContextBuilder) WithClock(clock func() time.Time) *ContextBuilder {
	b.clock = clock
	return b
}

// BuildContext returns the system prompt for one utterance. The
// utterance only drives retrieval; it is not otherwise inspected.
func (b *ContextBuilder) BuildContext(ctx context.Context, utterance string) string {
	var sections []string

	persona := b.cfg.Persona
	if persona == "" {
		persona = defaultPersona
	}
	sections = append(sections, persona)

	now := b.clock()
	sections = append(sections, fmt.Sprintf("Current local date and time: %s (%s).",
		now.Format("2006-01-02 15:04"), now.Weekday()))
	sections = append(sections, fmt.Sprintf("Time in %s: %s.",
		b.refZone, now.In(b.refZone).Format("2006-01-02 15:04")))

	if passages := b.ranker.Search(utterance, 0); len(passages) > 0 {
		sections = append(sections,
			"Relevant background information:\n"+strings.Join(passages, passageSeparator))
	}

	sections = append(sections, b.schemaSummary(ctx))
	sections = append(sections, toolInstructions)

	prompt := strings.Join(sections, "\n\n")
	slog.Debug("System prompt assembled", "tokens", b.estimateTokens(prompt))
	return prompt
}

// schemaSummary describes the available collections by name. Store
// failures degrade to an empty set: context construction must never
// abort the conversation.
func (b *ContextBuilder) schemaSummary(ctx context.Context) string {
	collections, err := b.store.ListCollections(ctx)
	if err != nil {
		slog.Warn("Schema summary unavailable", "error", err)
		collections = nil
	}

	if len(collections) == 0 {
		return "The database currently exposes no collections."
	}
	return fmt.Sprintf("The database contains these collections: %s.",
		strings.Join(collections, ", "))
}

func (b *ContextBuilder) estimateTokens(text string) int {
	if b.encoding == nil {
		return len(text) / 4
	}
	return len(b.encoding.Encode(text, nil, nil))
}
