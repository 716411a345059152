package classifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailsift/config"
)

func TestGeminiModel_GenerateContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))

		body, _ := io.ReadAll(r.Body)
		var req geminiRequest
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "classify this", req.Contents[0].Parts[0].Text)

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"CATEGORY: OTHER"},{"text":"\nPRIORITY: LOW"}]}}]}`))
	}))
	defer server.Close()

	model := NewGeminiModel(&config.GeminiConfig{APIKey: "secret", BaseURL: server.URL + "/", Model: "gemini-test"})
	answer, err := model.GenerateContent(context.Background(), "classify this")

	require.NoError(t, err)
	assert.Equal(t, "CATEGORY: OTHER\nPRIORITY: LOW", answer)
}

func TestGeminiModel_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota"}}`))
	}))
	defer server.Close()

	model := NewGeminiModel(&config.GeminiConfig{APIKey: "secret", BaseURL: server.URL, Model: "m"})
	_, err := model.GenerateContent(context.Background(), "p")
	assert.ErrorContains(t, err, "status code 429")

	noKey := NewGeminiModel(&config.GeminiConfig{BaseURL: server.URL, Model: "m"})
	_, err = noKey.GenerateContent(context.Background(), "p")
	assert.ErrorContains(t, err, "api key not configured")
}

func TestGeminiModel_EmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	model := NewGeminiModel(&config.GeminiConfig{APIKey: "k", BaseURL: server.URL, Model: "m"})
	_, err := model.GenerateContent(context.Background(), "p")
	assert.ErrorContains(t, err, "no candidates")
}
