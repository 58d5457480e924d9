package llm

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xenarc-chat-demo/backend/internal/models"
)

func TestSimulatedClientAnswersKeywords(t *testing.T) {
	c := NewSimulatedClient(0)

	resp, err := c.GenerateResponse("hello there", nil, nil)
	require.NoError(t, err)
	assert.Contains(t, resp.Content, "XENARC")

	resp, err = c.GenerateResponse("what is the meaning of life", nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Content)
}

func TestHTTPClientMissingKeyReturnsNotConfigured(t *testing.T) {
	c := NewHTTPClient(HTTPClientConfig{})

	resp, err := c.GenerateResponse("hello", nil, nil)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestHTTPClientSendsOrderedTurns(t *testing.T) {
	var captured chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "generated text"}},
			},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPClientConfig{APIKey: "test-key", BaseURL: srv.URL})

	history := []models.Turn{
		{Role: "user", Content: "first question"},
		{Role: "assistant", Content: "first answer"},
	}
	resp, err := c.GenerateResponse("second question", history, nil)
	require.NoError(t, err)
	assert.Equal(t, "generated text", resp.Content)

	// system prompt, then history in order, then the new user turn
	require.Len(t, captured.Messages, 4)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, DefaultSystemPrompt, captured.Messages[0].Content)
	assert.Equal(t, history[0], captured.Messages[1])
	assert.Equal(t, history[1], captured.Messages[2])
	assert.Equal(t, models.Turn{Role: "user", Content: "second question"}, captured.Messages[3])

	// default generation parameters
	assert.Equal(t, DefaultMaxTokens, captured.MaxTokens)
	assert.Equal(t, DefaultTemperature, captured.Temperature)
	assert.Equal(t, DefaultTopP, captured.TopP)
	assert.False(t, captured.Stream)
}

func TestHTTPClientSystemPromptOverride(t *testing.T) {
	var captured chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "ok"}},
			},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPClientConfig{APIKey: "test-key", BaseURL: srv.URL})

	_, err := c.GenerateResponse("q", nil, &Options{SystemPrompt: ReasoningSystemPrompt})
	require.NoError(t, err)
	assert.Equal(t, ReasoningSystemPrompt, captured.Messages[0].Content)
}

func TestHTTPClientStructuredAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "model overloaded"},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPClientConfig{APIKey: "test-key", BaseURL: srv.URL})

	resp, err := c.GenerateResponse("q", nil, nil)
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestHTTPClientNon200Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPClientConfig{APIKey: "test-key", BaseURL: srv.URL})

	resp, err := c.GenerateResponse("q", nil, nil)
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
