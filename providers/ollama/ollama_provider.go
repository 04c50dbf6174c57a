package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/JexSrs/go-ollama"
	"github.com/meysamhadeli/revai/providers/contracts"
	"github.com/meysamhadeli/revai/providers/models"
	contracts2 "github.com/meysamhadeli/revai/token_management/contracts"
)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.1"
)

// OllamaConfig implements the IModelProvider interface for a local Ollama server.
type OllamaConfig struct {
	BaseURL         string
	Model           string
	TokenManagement contracts2.ITokenManagement
	client          *ollama.Ollama
}

// NewOllamaProvider initializes a new OllamaProvider.
func NewOllamaProvider(config *OllamaConfig) (contracts.IModelProvider, error) {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	ollamaURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url '%s': %w", config.BaseURL, err)
	}
	config.client = ollama.New(*ollamaURL)
	return config, nil
}

// Generate flattens the conversation into a single prompt. The generate endpoint has no
// schema field, so structured output embeds the schema in the system message and sets JSON format.
func (o *OllamaConfig) Generate(ctx context.Context, request models.GenerateRequest) (models.GenerateResponse, error) {
	system, err := systemMessage(request)
	if err != nil {
		return models.GenerateResponse{}, err
	}
	prompt := flattenContents(request.Contents)

	builder := []func(*ollama.GenerateRequestBuilder){
		o.client.Generate.WithModel(o.Model),
		o.client.Generate.WithSystem(system),
		o.client.Generate.WithPrompt(prompt),
		o.client.Generate.WithTemperature(float64(request.Temperature)),
	}
	if request.Schema != nil {
		builder = append(builder, o.client.Generate.WithFormat("json"))
	}

	type result struct {
		res *ollama.GenerateResponse
		err error
	}
	done := make(chan result, 1)
	go func() {
		res, err := o.client.Generate(builder...)
		if err != nil {
			done <- result{err: fmt.Errorf("error calling ollama generate: %w", err)}
			return
		}
		if !res.Done {
			done <- result{err: fmt.Errorf("ollama response is not complete")}
			return
		}
		done <- result{res: res}
	}()

	select {
	case <-ctx.Done():
		return models.GenerateResponse{}, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return models.GenerateResponse{}, r.err
		}
		out := models.GenerateResponse{
			Text:         stripFences(r.res.Response),
			InputTokens:  r.res.PromptEvalCount,
			OutputTokens: r.res.EvalCount,
		}
		if o.TokenManagement != nil {
			o.TokenManagement.UsedTokens(out.InputTokens, out.OutputTokens)
		}
		return out, nil
	}
}

func systemMessage(request models.GenerateRequest) (string, error) {
	if request.Schema == nil {
		return request.SystemInstruction, nil
	}
	schema, err := json.Marshal(request.Schema)
	if err != nil {
		return "", fmt.Errorf("error marshalling response schema: %w", err)
	}
	return fmt.Sprintf("%s\n\nRespond ONLY with a JSON object matching this schema:\n%s", request.SystemInstruction, schema), nil
}

func flattenContents(contents []models.Content) string {
	if len(contents) == 1 {
		return contents[0].Text
	}
	var b strings.Builder
	for i, c := range contents {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if c.Role == models.RoleModel {
			b.WriteString("Assistant: ")
		} else {
			b.WriteString("User: ")
		}
		b.WriteString(c.Text)
	}
	return b.String()
}

// stripFences removes the markdown code fence models often wrap JSON in.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 && !strings.ContainsAny(text[:nl], "{[") {
		text = text[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
}
