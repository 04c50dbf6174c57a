package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meysamhadeli/revai/providers/models"
	"github.com/meysamhadeli/revai/token_management"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("```{\"a\":1}```"))
	assert.Equal(t, "plain", stripFences("  plain \n"))
}

func TestFlattenContents(t *testing.T) {
	assert.Equal(t, "only", flattenContents([]models.Content{{Role: models.RoleUser, Text: "only"}}))

	got := flattenContents([]models.Content{
		{Role: models.RoleUser, Text: "hi"},
		{Role: models.RoleModel, Text: "hello"},
		{Role: models.RoleUser, Text: "why?"},
	})
	assert.Equal(t, "User: hi\n\nAssistant: hello\n\nUser: why?", got)
}

func TestSystemMessage_EmbedsSchema(t *testing.T) {
	msg, err := systemMessage(models.GenerateRequest{
		SystemInstruction: "review",
		Schema:            &models.Schema{Type: models.TypeObject, Required: []string{"summary"}},
	})
	require.NoError(t, err)
	assert.Contains(t, msg, "review\n\nRespond ONLY with a JSON object")
	assert.Contains(t, msg, `"required":["summary"]`)
}

func TestNewOllamaProvider_Defaults(t *testing.T) {
	p, err := NewOllamaProvider(&OllamaConfig{})
	require.NoError(t, err)
	cfg := p.(*OllamaConfig)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultModel, cfg.Model)
}

func TestGenerate_SendsTemperatureFormatAndCountsTokens(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"model":"m","response":"{\"a\":1}","done":true,"prompt_eval_count":7,"eval_count":3}`))
	}))
	defer server.Close()

	tm := token_management.NewTokenManager()
	p, err := NewOllamaProvider(&OllamaConfig{BaseURL: server.URL, Model: "m", TokenManagement: tm})
	require.NoError(t, err)

	resp, err := p.Generate(context.Background(), models.GenerateRequest{
		SystemInstruction: "s",
		Contents:          []models.Content{{Role: models.RoleUser, Text: "p"}},
		Schema:            &models.Schema{Type: models.TypeObject},
		Temperature:       0.5,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, resp.Text)
	assert.Equal(t, 7, resp.InputTokens)
	assert.Equal(t, 3, resp.OutputTokens)

	total, input, output := tm.GetCurrentTokenUsage()
	assert.Equal(t, 10, total)
	assert.Equal(t, 7, input)
	assert.Equal(t, 3, output)

	assert.Equal(t, "json", captured["format"])
	assert.Equal(t, "p", captured["prompt"])
	options := captured["options"].(map[string]any)
	assert.InDelta(t, 0.5, options["temperature"], 1e-6)
}

func TestGenerate_PlainTextHasNoFormat(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"model":"m","response":"hello","done":true}`))
	}))
	defer server.Close()

	p, err := NewOllamaProvider(&OllamaConfig{BaseURL: server.URL, Model: "m"})
	require.NoError(t, err)

	resp, err := p.Generate(context.Background(), models.GenerateRequest{
		Contents:    []models.Content{{Role: models.RoleUser, Text: "hi"}},
		Temperature: 0.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Text)
	assert.Nil(t, captured["format"])
}
