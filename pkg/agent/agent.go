// Package agent runs the conversational loop: build context, complete,
// optionally execute one tool round, answer.
package agent

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/parley-ai/parley/pkg/config"
	"github.com/parley-ai/parley/pkg/llms"
	"github.com/parley-ai/parley/pkg/tools"
)

// User-facing sentences for the two failure modes the loop cannot
// recover from. The voice contract is a natural-language sentence,
// never an error code.
const (
	missingKeyReply = "I need an API key to think. Please set OPENROUTER_API_KEY in my environment."
	fallbackReply   = "Brain freeze! I couldn't reach my language model just now. Please try again in a moment."
)

// Agent is the conversational orchestrator. One Answer call per
// utterance; instances hold no per-utterance state, so a single Agent
// may serve concurrent requests.
type Agent struct {
	llm      llms.Provider
	executor *tools.Executor
	builder  *ContextBuilder
	llmCfg   *config.LLMProviderConfig
}

// New wires an agent from its collaborators.
func New(llm llms.Provider, executor *tools.Executor, builder *ContextBuilder, llmCfg *config.LLMProviderConfig) *Agent {
	return &Agent{
		llm:      llm,
		executor: executor,
		builder:  builder,
		llmCfg:   llmCfg,
	}
}

// Answer turns one user utterance into a speakable reply. It always
// returns a sentence: recoverable failures degrade (no retrieval, an
// error-valued tool result) and completion-service failures collapse
// to a fixed fallback. At most one tool round runs per utterance; the
// loop adds no randomness beyond the completion service's own.
func (a *Agent) Answer(ctx context.Context, utterance string) string {
	if a.llmCfg.APIKey == "" {
		return missingKeyReply
	}

	turnID := uuid.NewString()
	log := slog.With("turn", turnID)

	systemPrompt := a.builder.BuildContext(ctx, utterance)

	messages := []llms.Message{
		llms.SystemMessage(systemPrompt),
		llms.UserMessage(utterance),
	}

	reply, tokens, err := a.llm.Generate(ctx, messages)
	if err != nil {
		log.Error("First completion failed", "error", err)
		return fallbackReply
	}
	log.Debug("First completion", "tokens", tokens)

	invocation, ok := tools.Parse(reply)
	if !ok {
		return reply
	}

	result := a.executor.Execute(ctx, invocation)

	serialized, err := json.Marshal(result)
	if err != nil {
		// Tool results are built from decoded JSON values, so this is
		// close to unreachable; degrade to a plain rendering.
		serialized = []byte(`"tool result could not be serialized"`)
	}

	// Exactly two turns grow the history per tool round: the
	// assistant's tool-call text, then the results as a system turn.
	messages = append(messages,
		llms.AssistantMessage(reply),
		llms.SystemMessage("Tool results: "+string(serialized)+
			"\nAnswer the user's question using these results."))

	final, tokens, err := a.llm.Generate(ctx, messages)
	if err != nil {
		log.Error("Second completion failed", "error", err)
		return fallbackReply
	}
	log.Debug("Second completion", "tokens", tokens)

	return final
}
