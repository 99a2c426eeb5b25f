package claude_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onecore/internal/ai"
	"onecore/internal/ai/claude"
	"onecore/internal/config"
	"onecore/internal/port"
)

func newTestClient(serverURL string) *claude.Client {
	cfg := &config.AIConfig{
		Provider:    "claude",
		APIKey:      "test-claude-key",
		Model:       "claude-test",
		CallTimeout: 5 * time.Second,
	}
	return claude.NewClientWithEndpoint(cfg, serverURL)
}

func successResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": text},
		},
		"stop_reason": "end_turn",
	}
}

func TestClaudeClient_Complete_ImageBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-claude-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "claude-test", reqBody["model"])
		assert.Equal(t, "Eres un extractor", reqBody["system"])

		messages := reqBody["messages"].([]interface{})
		require.Len(t, messages, 1)
		content := messages[0].(map[string]interface{})["content"].([]interface{})
		require.Len(t, content, 2)

		img := content[0].(map[string]interface{})
		assert.Equal(t, "image", img["type"])
		source := img["source"].(map[string]interface{})
		assert.Equal(t, "base64", source["type"])
		assert.Equal(t, "image/jpeg", source["media_type"])
		assert.Equal(t, "/9j/ABA=", source["data"])

		text := content[1].(map[string]interface{})
		assert.Equal(t, "text", text["type"])
		assert.Equal(t, "Extrae los datos de esta factura:", text["text"])

		_ = json.NewEncoder(w).Encode(successResponse("```json\n{}\n```"))
	}))
	defer server.Close()

	text, err := newTestClient(server.URL).Complete(context.Background(), port.CompletionRequest{
		SystemPrompt: "Eres un extractor",
		Text:         "Extrae los datos de esta factura:",
		ImageDataURI: "data:image/jpeg;base64,/9j/ABA=",
	})

	require.NoError(t, err)
	assert.Equal(t, "```json\n{}\n```", text)
}

func TestClaudeClient_Complete_TextOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		content := reqBody["messages"].([]interface{})[0].(map[string]interface{})["content"].([]interface{})
		require.Len(t, content, 1)
		assert.Equal(t, "text", content[0].(map[string]interface{})["type"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]interface{}{
				{"type": "text", "text": `{"a":`},
				{"type": "text", "text": `1}`},
			},
		})
	}))
	defer server.Close()

	text, err := newTestClient(server.URL).Complete(context.Background(), port.CompletionRequest{Text: "hola"})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, text)
}

func TestClaudeClient_Complete_BadImageURI(t *testing.T) {
	_, err := newTestClient("http://127.0.0.1:0").Complete(context.Background(), port.CompletionRequest{
		Text:         "x",
		ImageDataURI: "not-a-data-uri",
	})
	assert.ErrorContains(t, err, "building content blocks")
}

func TestClaudeClient_Complete_RateLimitedDefaultRetry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), port.CompletionRequest{Text: "x"})

	var rle *ai.RateLimitError
	require.True(t, errors.As(err, &rle))
	assert.Equal(t, "claude", rle.Provider)
	assert.Equal(t, 60*time.Second, rle.RetryAfter)
}

func TestClaudeClient_Complete_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), port.CompletionRequest{Text: "x"})
	assert.ErrorContains(t, err, "no text content")
}
