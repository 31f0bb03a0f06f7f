package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/urlsum/internal/model"
)

// providerNames maps accepted provider spellings to canonical names
var providerNames = map[string]string{
	"huggingface": "huggingface",
	"hf":          "huggingface",
	"openai":      "openai",
	"anthropic":   "anthropic",
	"claude":      "anthropic",
	"ollama":      "ollama",
	"extractive":  "extractive",
	"lead":        "extractive",
}

// CanonicalProvider normalizes a provider name; "" means summarization is disabled
func CanonicalProvider(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", nil
	}
	canonical, ok := providerNames[name]
	if !ok {
		return "", fmt.Errorf("unknown LLM provider: %s (supported: huggingface, openai, anthropic, ollama, extractive)", name)
	}
	return canonical, nil
}

// NewProvider creates a new provider based on configuration
func NewProvider(config Config) (Provider, error) {
	provider, err := CanonicalProvider(config.Provider)
	if err != nil {
		return nil, err
	}

	switch provider {
	case "huggingface":
		return NewHuggingFaceProvider(config)

	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "extractive":
		return NewExtractiveProvider(config), nil

	default:
		// No provider configured - return nil (summarization disabled)
		return nil, nil
	}
}

// ConfigFromModel converts model.Config into an llm.Config
func ConfigFromModel(cfg *model.Config) Config {
	return Config{
		Provider:       cfg.LLM.Provider,
		Model:          cfg.LLM.Model,
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Timeout:        cfg.LLM.Timeout,
		MaxTokens:      cfg.LLM.MaxTokens,
		MaxInputTokens: cfg.LLM.MaxInputTokens,
		HTTPProxy:      cfg.HTTP.HTTPProxy,
		HTTPSProxy:     cfg.HTTP.HTTPSProxy,
		NoProxy:        cfg.HTTP.NoProxy,
	}
}

// APIKeyEnv returns the environment variable holding the API key for a provider
func APIKeyEnv(provider string) string {
	canonical, _ := CanonicalProvider(provider)
	switch canonical {
	case "huggingface":
		return "HF_TOKEN"
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}
