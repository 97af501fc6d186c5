package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeGemini(t *testing.T, handler http.HandlerFunc) *Gemini {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g, err := NewGemini(context.Background(), Config{
		APIKey:  "test-key",
		BaseURL: srv.URL + "/",
	}, zerolog.Nop())
	require.NoError(t, err)

	return g
}

func TestNewGemini_RequiresAPIKey(t *testing.T) {
	_, err := NewGemini(context.Background(), Config{}, zerolog.Nop())
	assert.True(t, errors.Is(err, ErrMissingAPIKey))
}

func TestGemini_Generate(t *testing.T) {
	var gotPath, gotPrompt string

	g := newFakeGemini(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotPrompt = string(body)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": "SELECT 1"}},
				},
			}},
		})
	})

	text, err := g.Generate(context.Background(), "how many rows?")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", text)
	assert.True(t, strings.HasSuffix(gotPath, "models/"+DefaultModel+":generateContent"), gotPath)
	assert.Contains(t, gotPrompt, "how many rows?")
}

func TestGemini_GenerateEmptyResponse(t *testing.T) {
	g := newFakeGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	text, err := g.Generate(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestGemini_GenerateServerError(t *testing.T) {
	g := newFakeGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`))
	})

	_, err := g.Generate(context.Background(), "anything")
	assert.Error(t, err)
}
