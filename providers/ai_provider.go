package providers

import (
	"fmt"
	"time"

	"github.com/meysamhadeli/revai/providers/contracts"
	"github.com/meysamhadeli/revai/providers/gemini"
	"github.com/meysamhadeli/revai/providers/ollama"
	contracts2 "github.com/meysamhadeli/revai/token_management/contracts"
)

// AIProviderConfig selects and configures the model backend.
type AIProviderConfig struct {
	Provider string        `mapstructure:"provider"`
	BaseURL  string        `mapstructure:"base_url"`
	Model    string        `mapstructure:"model"`
	ApiKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ChatProviderFactory builds the provider named in config. Empty base URL and model are
// filled with the provider's defaults and written back to config.
func ChatProviderFactory(config *AIProviderConfig, tokenManagement contracts2.ITokenManagement) (contracts.IModelProvider, error) {
	switch config.Provider {
	case "gemini":
		geminiConfig := &gemini.GeminiConfig{
			BaseURL:         config.BaseURL,
			Model:           config.Model,
			ApiKey:          config.ApiKey,
			Timeout:         config.Timeout,
			TokenManagement: tokenManagement,
		}
		provider := gemini.NewGeminiProvider(geminiConfig)
		config.BaseURL, config.Model = geminiConfig.BaseURL, geminiConfig.Model
		return provider, nil
	case "ollama":
		ollamaConfig := &ollama.OllamaConfig{
			BaseURL:         config.BaseURL,
			Model:           config.Model,
			TokenManagement: tokenManagement,
		}
		provider, err := ollama.NewOllamaProvider(ollamaConfig)
		if err != nil {
			return nil, err
		}
		config.BaseURL, config.Model = ollamaConfig.BaseURL, ollamaConfig.Model
		return provider, nil
	default:
		return nil, fmt.Errorf("provider '%s' is not supported", config.Provider)
	}
}
