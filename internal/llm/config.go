// Package llm provides LLM provider configuration and client abstractions.
// The provider is chosen at startup from configuration and injected into
// the services that issue calls.
package llm

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for short, cheap calls such as answer feedback
	TierLite ModelTier = "lite"
	// TierStandard is for structured generation: questions, job suggestions
	TierStandard ModelTier = "standard"
	// TierAdvanced is for long-form output: guidance roadmaps, stories
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is any OpenAI-compatible chat completions API
	ProviderOpenAI Provider = "openai"
	// ProviderAzure is Azure-hosted OpenAI
	ProviderAzure Provider = "azure"
)

// Config holds the provider selection and model configuration.
type Config struct {
	Provider   Provider
	Models     map[ModelTier]string
	APIKey     string
	BaseURL    string // OpenAI base URL or Azure resource endpoint
	APIVersion string // Azure only
	MaxRetries int
	RepairJSON bool // let the extractor run jsonrepair as a last resort
}

// DefaultConfig returns the default configuration (Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		MaxRetries: 2,
	}
}

// DefaultOpenAIConfig returns the default OpenAI configuration
func DefaultOpenAIConfig() *Config {
	return &Config{
		Provider: ProviderOpenAI,
		Models: map[ModelTier]string{
			TierLite:     "gpt-4o-mini",
			TierStandard: "gpt-4o-mini",
			TierAdvanced: "gpt-4o",
		},
		BaseURL:    "https://api.openai.com/v1",
		MaxRetries: 2,
	}
}

// DefaultAzureConfig returns an Azure configuration that serves every tier
// from a single deployment.
func DefaultAzureConfig(deployment string) *Config {
	return &Config{
		Provider: ProviderAzure,
		Models: map[ModelTier]string{
			TierStandard: deployment,
		},
		APIVersion: "2024-06-01",
		MaxRetries: 2,
	}
}

// LoadConfig builds a Config from environment variables.
//
//	LLM_PROVIDER              gemini (default), openai, azure
//	GEMINI_API_KEY            gemini
//	OPENAI_API_KEY            openai
//	OPENAI_BASE_URL           openai, default https://api.openai.com/v1
//	OPENAI_MODEL              openai, overrides every tier
//	AZURE_OPENAI_ENDPOINT     azure
//	AZURE_OPENAI_DEPLOYMENT   azure
//	AZURE_OPENAI_API_KEY      azure
//	AZURE_OPENAI_API_VERSION  azure, default 2024-06-01
//	LLM_MAX_RETRIES           default 2
//	LLM_JSON_REPAIR           default false
func LoadConfig() (*Config, error) {
	provider := Provider(strings.ToLower(getEnvString("LLM_PROVIDER", string(ProviderGemini))))

	var cfg *Config
	switch provider {
	case ProviderGemini:
		cfg = DefaultGeminiConfig()
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
		}
	case ProviderOpenAI:
		cfg = DefaultOpenAIConfig()
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
		}
		cfg.BaseURL = strings.TrimRight(getEnvString("OPENAI_BASE_URL", cfg.BaseURL), "/")
		if model := os.Getenv("OPENAI_MODEL"); model != "" {
			for tier := range cfg.Models {
				cfg.Models[tier] = model
			}
		}
	case ProviderAzure:
		deployment := os.Getenv("AZURE_OPENAI_DEPLOYMENT")
		if deployment == "" {
			return nil, fmt.Errorf("AZURE_OPENAI_DEPLOYMENT environment variable is required")
		}
		cfg = DefaultAzureConfig(deployment)
		cfg.APIKey = os.Getenv("AZURE_OPENAI_API_KEY")
		cfg.BaseURL = strings.TrimRight(os.Getenv("AZURE_OPENAI_ENDPOINT"), "/")
		if cfg.APIKey == "" || cfg.BaseURL == "" {
			return nil, fmt.Errorf("AZURE_OPENAI_ENDPOINT and AZURE_OPENAI_API_KEY environment variables are required")
		}
		cfg.APIVersion = getEnvString("AZURE_OPENAI_API_VERSION", cfg.APIVersion)
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q (want gemini, openai or azure)", provider)
	}

	retries, err := strconv.Atoi(getEnvString("LLM_MAX_RETRIES", "2"))
	if err != nil || retries < 0 {
		return nil, fmt.Errorf("invalid LLM_MAX_RETRIES: %q", os.Getenv("LLM_MAX_RETRIES"))
	}
	cfg.MaxRetries = retries

	if v := os.Getenv("LLM_JSON_REPAIR"); v != "" {
		repair, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid LLM_JSON_REPAIR: %v", err)
		}
		cfg.RepairJSON = repair
	}

	return cfg, nil
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := *c
	newConfig.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return &newConfig
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
