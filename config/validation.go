package config

import (
	"fmt"
	"net"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is the full list of problems found in one configuration.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "\n")
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	switch cfg.LLMProvider {
	case ProviderOpenAI, ProviderGemini:
	default:
		add("LLM_PROVIDER", fmt.Sprintf("unknown provider %q", cfg.LLMProvider))
	}
	switch cfg.VisionProvider {
	case ProviderOpenAI, ProviderGemini, ProviderRekognition:
	default:
		add("VISION_PROVIDER", fmt.Sprintf("unknown provider %q", cfg.VisionProvider))
	}

	if cfg.RecipeTopN <= 0 {
		add("RECIPE_TOP_N", "must be positive")
	}
	// History is trimmed in user/assistant pairs.
	if cfg.ThreadHistoryLimit < 2 || cfg.ThreadHistoryLimit%2 != 0 {
		add("THREAD_HISTORY_LIMIT", "must be an even number of at least 2")
	}
	if cfg.ThreadTTL <= 0 {
		add("THREAD_TTL", "must be positive")
	}
	if cfg.AnalyzeRateLimit < 0 {
		add("ANALYZE_RATE_LIMIT", "must not be negative")
	}
	for _, p := range cfg.TrustedProxies {
		if _, _, err := net.ParseCIDR(p); err != nil && net.ParseIP(p) == nil {
			add("TRUSTED_PROXIES", fmt.Sprintf("%q is not an IP or CIDR", p))
		}
	}
	if cfg.VisionProvider == ProviderRekognition && cfg.AWSRegion == "" {
		add("AWS_REGION", "required by the rekognition vision provider")
	}

	if GetEnvironment() == Production {
		if cfg.DatabaseDSN() == "" {
			add("DATABASE_URL", "required in production")
		}
		if !cfg.HasRedis() {
			add("REDIS_URL", "required in production")
		}
		if usesProvider(cfg, ProviderOpenAI) && cfg.OpenAIAPIKey == "" {
			add("OPENAI_API_KEY", "required in production")
		}
		if usesProvider(cfg, ProviderGemini) && cfg.GeminiAPIKey == "" {
			add("GEMINI_API_KEY", "required in production")
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// usesProvider reports whether any client is served by the given provider.
// Embeddings always come from OpenAI.
func usesProvider(cfg *Config, provider string) bool {
	if provider == ProviderOpenAI {
		return true
	}
	return cfg.LLMProvider == provider || cfg.VisionProvider == provider
}
