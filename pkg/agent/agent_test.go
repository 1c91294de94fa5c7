package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-ai/parley/pkg/config"
	"github.com/parley-ai/parley/pkg/llms"
	"github.com/parley-ai/parley/pkg/retrieval"
	"github.com/parley-ai/parley/pkg/store"
	"github.com/parley-ai/parley/pkg/tools"
)

// fakeLLM replays scripted completions and records every call.
type fakeLLM struct {
	replies []string
	err     error
	calls   [][]llms.Message
}

func (f *fakeLLM) Generate(ctx context.Context, messages []llms.Message) (string, int, error) {
	f.calls = append(f.calls, messages)
	if f.err != nil {
		return "", 0, f.err
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return reply, 42, nil
}

// fakeStore serves a fixed employees collection.
type fakeStore struct {
	listErr error
}

func (f *fakeStore) ListCollections(ctx context.Context) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []string{"employees", "orders"}, nil
}

func (f *fakeStore) SampleFields(ctx context.Context, collection string) ([]string, error) {
	if collection != "employees" {
		return nil, store.ErrCollectionNotFound
	}
	return []string{"id", "name", "role"}, nil
}

func (f *fakeStore) Find(ctx context.Context, collection string, filter map[string]any, opts store.FindOptions) ([]map[string]any, error) {
	if collection != "employees" {
		return nil, store.ErrCollectionNotFound
	}
	return []map[string]any{{"id": "1223", "name": "John Doe", "role": "Senior Engineer"}}, nil
}

func disabledRanker(t *testing.T) *retrieval.Ranker {
	t.Helper()
	return retrieval.NewRanker(&config.RetrievalConfig{Dir: t.TempDir(), TopK: 3, MinScore: 0.1})
}

func newTestAgent(t *testing.T, llm llms.Provider, docStore store.DocumentStore) *Agent {
	t.Helper()

	agentCfg := &config.AgentConfig{}
	agentCfg.SetDefaults()
	llmCfg := &config.LLMProviderConfig{APIKey: "test-key"}

	builder := NewContextBuilder(docStore, disabledRanker(t), agentCfg)
	executor := tools.NewExecutor(docStore, agentCfg.ResultCap)
	return New(llm, executor, builder, llmCfg)
}

func TestAnswer_PlainReplyPassesThrough(t *testing.T) {
	llm := &fakeLLM{replies: []string{"The weather is nice."}}
	brain := newTestAgent(t, llm, &fakeStore{})

	answer := brain.Answer(context.Background(), "how's the weather?")

	assert.Equal(t, "The weather is nice.", answer)
	assert.Len(t, llm.calls, 1, "a reply without a tool marker must not trigger a second completion")
}

func TestAnswer_ToolRound(t *testing.T) {
	toolReply := `{"tool": "search", "collection": "employees", "query": {"id": "1223"}, "limit": 5}`
	llm := &fakeLLM{replies: []string{toolReply, "John Doe is a Senior Engineer."}}
	brain := newTestAgent(t, llm, &fakeStore{})

	answer := brain.Answer(context.Background(), "who is employee 1223?")

	assert.Equal(t, "John Doe is a Senior Engineer.", answer)
	require.Len(t, llm.calls, 2)

	// The second call sees exactly two extra turns: the assistant's
	// tool-call text, then the serialized results as a system turn.
	second := llm.calls[1]
	require.Len(t, second, 4)
	assert.Equal(t, llms.RoleAssistant, second[2].Role)
	assert.Equal(t, toolReply, second[2].Content)
	assert.Equal(t, llms.RoleSystem, second[3].Role)
	assert.Contains(t, second[3].Content, "Tool results:")
	assert.Contains(t, second[3].Content, "John Doe")
}

func TestAnswer_ExactlyOneToolRound(t *testing.T) {
	toolReply := `{"tool": "schema_lookup", "collection": "employees"}`
	// The second completion also emits a tool call; the loop must
	// return it verbatim instead of chaining another round.
	llm := &fakeLLM{replies: []string{toolReply, toolReply}}
	brain := newTestAgent(t, llm, &fakeStore{})

	answer := brain.Answer(context.Background(), "what fields do employees have?")

	assert.Equal(t, toolReply, answer)
	assert.Len(t, llm.calls, 2)
}

func TestAnswer_MissingAPIKey(t *testing.T) {
	llm := &fakeLLM{replies: []string{"should never be called"}}
	brain := newTestAgent(t, llm, &fakeStore{})
	brain.llmCfg.APIKey = ""

	answer := brain.Answer(context.Background(), "hello?")

	assert.Equal(t, missingKeyReply, answer)
	assert.Empty(t, llm.calls, "missing credential must short-circuit before any network call")
}

func TestAnswer_CompletionFailure(t *testing.T) {
	llm := &fakeLLM{err: errors.New("service unreachable")}
	brain := newTestAgent(t, llm, &fakeStore{})

	answer := brain.Answer(context.Background(), "hello?")

	assert.Equal(t, fallbackReply, answer)
	assert.Len(t, llm.calls, 1, "completion failures are terminal, never retried")
}

func TestBuildContext_Sections(t *testing.T) {
	agentCfg := &config.AgentConfig{ReferenceTimezone: "UTC", ResultCap: 50}
	builder := NewContextBuilder(&fakeStore{}, disabledRanker(t), agentCfg).
		WithClock(func() time.Time {
			return time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
		})

	prompt := builder.BuildContext(context.Background(), "anything")

	assert.Contains(t, prompt, "voice assistant")
	assert.Contains(t, prompt, "2026-03-02 09:30")
	assert.Contains(t, prompt, "Monday")
	assert.Contains(t, prompt, "employees, orders")
	assert.Contains(t, prompt, `"tool": "schema_lookup"`)
	assert.Contains(t, prompt, `"tool": "search"`)
	assert.NotContains(t, prompt, "Relevant background information",
		"retrieval block must be omitted entirely when nothing is retrieved")
}

func TestBuildContext_StoreFailureTolerated(t *testing.T) {
	agentCfg := &config.AgentConfig{ReferenceTimezone: "UTC", ResultCap: 50}
	builder := NewContextBuilder(&fakeStore{listErr: errors.New("down")}, disabledRanker(t), agentCfg)

	prompt := builder.BuildContext(context.Background(), "anything")

	assert.Contains(t, prompt, "no collections",
		"a failing schema collaborator degrades to an empty mapping")
}

func TestBuildContext_IncludesRetrievedPassages(t *testing.T) {
	dir := t.TempDir()
	texts := []string{
		"Collection: employees\nname: John Doe\nrole: Senior Engineer\n",
		"Collection: orders\nstatus: shipped\n",
	}
	vectorizer, rows := retrieval.Fit(texts)
	docs := []retrieval.Document{
		{ID: "employees_0", Text: texts[0], Source: "employees"},
		{ID: "orders_1", Text: texts[1], Source: "orders"},
	}
	require.NoError(t, retrieval.WriteArtifacts(dir, vectorizer, rows, docs))

	ranker := retrieval.NewRanker(&config.RetrievalConfig{Dir: dir, TopK: 3, MinScore: 0.1})
	require.True(t, ranker.Enabled())

	agentCfg := &config.AgentConfig{ReferenceTimezone: "UTC", ResultCap: 50}
	builder := NewContextBuilder(&fakeStore{}, ranker, agentCfg)

	prompt := builder.BuildContext(context.Background(), "senior engineer john doe")

	assert.Contains(t, prompt, "Relevant background information")
	assert.Contains(t, prompt, "John Doe")
	assert.False(t, strings.Contains(prompt, "status: shipped"),
		"unrelated passage must fall under the relevance threshold")
}

func TestAnswer_UnknownCollectionSurfacesAsToolResult(t *testing.T) {
	toolReply := `{"tool": "search", "collection": "ghost", "query": {}}`
	llm := &fakeLLM{replies: []string{toolReply, "I don't have a ghost collection."}}
	brain := newTestAgent(t, llm, &fakeStore{})

	answer := brain.Answer(context.Background(), "search the ghost collection")

	assert.Equal(t, "I don't have a ghost collection.", answer)
	require.Len(t, llm.calls, 2)
	assert.Contains(t, llm.calls[1][3].Content, "'ghost' does not exist")
}
