package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/meysamhadeli/revai/providers/contracts"
	"github.com/meysamhadeli/revai/providers/models"
	contracts2 "github.com/meysamhadeli/revai/token_management/contracts"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.5-pro"
)

// GeminiConfig implements the IModelProvider interface for the Gemini generateContent API.
type GeminiConfig struct {
	BaseURL         string
	Model           string
	ApiKey          string
	Timeout         time.Duration
	TokenManagement contracts2.ITokenManagement
	client          *http.Client
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type generationConfig struct {
	Temperature      float32        `json:"temperature"`
	ResponseMimeType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   *models.Schema `json:"responseSchema,omitempty"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent   `json:"systemInstruction,omitempty"`
	Contents          []geminiContent  `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

// NewGeminiProvider initializes a new GeminiProvider.
func NewGeminiProvider(config *GeminiConfig) contracts.IModelProvider {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	config.client = &http.Client{Timeout: config.Timeout}
	return config
}

func (g *GeminiConfig) Generate(ctx context.Context, request models.GenerateRequest) (models.GenerateResponse, error) {
	body := geminiRequest{
		GenerationConfig: generationConfig{Temperature: request.Temperature},
	}
	if request.SystemInstruction != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: request.SystemInstruction}}}
	}
	if request.Schema != nil {
		body.GenerationConfig.ResponseMimeType = "application/json"
		body.GenerationConfig.ResponseSchema = request.Schema
	}
	for _, c := range request.Contents {
		body.Contents = append(body.Contents, geminiContent{Role: c.Role, Parts: []geminiPart{{Text: c.Text}}})
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return models.GenerateResponse{}, fmt.Errorf("error marshalling request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimSuffix(g.BaseURL, "/"), g.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return models.GenerateResponse{}, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.ApiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return models.GenerateResponse{}, ctx.Err()
		}
		return models.GenerateResponse{}, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.GenerateResponse{}, fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiError models.AIError
		if err := json.Unmarshal(raw, &apiError); err == nil && apiError.Error.Message != "" {
			return models.GenerateResponse{}, fmt.Errorf("API request failed with status code '%d' - %s", resp.StatusCode, apiError.Error.Message)
		}
		return models.GenerateResponse{}, fmt.Errorf("API request failed with status code '%d'", resp.StatusCode)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return models.GenerateResponse{}, fmt.Errorf("error decoding response: %w", err)
	}

	var text strings.Builder
	if len(parsed.Candidates) > 0 {
		for _, part := range parsed.Candidates[0].Content.Parts {
			text.WriteString(part.Text)
		}
	}

	out := models.GenerateResponse{
		Text:         text.String(),
		InputTokens:  parsed.UsageMetadata.PromptTokenCount,
		OutputTokens: parsed.UsageMetadata.CandidatesTokenCount,
	}
	if g.TokenManagement != nil {
		g.TokenManagement.UsedTokens(out.InputTokens, out.OutputTokens)
	}
	return out, nil
}
