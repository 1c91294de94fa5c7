package llms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-ai/parley/pkg/config"
)

func testConfig(host string) *config.LLMProviderConfig {
	return &config.LLMProviderConfig{
		Host:        host,
		Model:       "test-model",
		APIKey:      "sk-test",
		Temperature: 0.7,
		MaxTokens:   100,
		Timeout:     5,
	}
}

func TestGenerate_Success(t *testing.T) {
	var gotRequest openAIRequest
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))

		json.NewEncoder(w).Encode(openAIResponse{
			Choices: []openAIChoice{
				{Message: AssistantMessage("The weather is nice."), FinishReason: "stop"},
			},
			Usage: openAIUsage{TotalTokens: 21},
		})
	}))
	defer server.Close()

	provider := NewOpenAIProvider(testConfig(server.URL))
	text, tokens, err := provider.Generate(context.Background(), []Message{
		SystemMessage("Be brief."),
		UserMessage("how's the weather?"),
	})

	require.NoError(t, err)
	assert.Equal(t, "The weather is nice.", text)
	assert.Equal(t, 21, tokens)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "test-model", gotRequest.Model)
	assert.Len(t, gotRequest.Messages, 2)
	assert.False(t, gotRequest.Stream)
}

func TestGetModelName(t *testing.T) {
	provider := NewOpenAIProvider(testConfig("http://localhost"))
	assert.Equal(t, "test-model", provider.GetModelName())
}

func TestGenerate_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(openAIResponse{
			Error: &openAIError{Message: "invalid model", Type: "invalid_request_error"},
		})
	}))
	defer server.Close()

	provider := NewOpenAIProvider(testConfig(server.URL))
	_, _, err := provider.Generate(context.Background(), []Message{UserMessage("hi")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid model")
}

func TestGenerate_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	provider := NewOpenAIProvider(testConfig(server.URL))
	_, _, err := provider.Generate(context.Background(), []Message{UserMessage("hi")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestGenerate_RetryableStatusNotRetried(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	provider := NewOpenAIProvider(testConfig(server.URL))
	_, _, err := provider.Generate(context.Background(), []Message{UserMessage("hi")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 503")
	assert.Equal(t, 1, hits, "completions are single-shot, the transport must not retry them")
}

func TestGenerate_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(openAIResponse{})
	}))
	defer server.Close()

	provider := NewOpenAIProvider(testConfig(server.URL))
	_, _, err := provider.Generate(context.Background(), []Message{UserMessage("hi")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestGenerate_TrailingSlashHost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		json.NewEncoder(w).Encode(openAIResponse{
			Choices: []openAIChoice{{Message: AssistantMessage("ok")}},
		})
	}))
	defer server.Close()

	provider := NewOpenAIProvider(testConfig(server.URL + "/"))
	text, _, err := provider.Generate(context.Background(), []Message{UserMessage("hi")})

	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}
