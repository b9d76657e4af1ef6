package ai

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Config holds AI provider configuration
type Config struct {
	Provider ProviderType

	// Gemini is the already-constructed Gemini client, nil when no API key is set.
	Gemini TextGenerator

	// Runtime getters so settings changes apply to the next call.
	OllamaBaseURL func() string
	OllamaModel   func() string
}

// NewTextGenerator picks the text provider for notes, chat and derived documents.
func NewTextGenerator(cfg Config) (TextGenerator, error) {
	switch cfg.Provider {
	case ProviderGemini:
		if cfg.Gemini == nil {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		return cfg.Gemini, nil

	case ProviderOllama:
		return newOllamaFromConfig(cfg), nil

	default:
		// Default to Gemini if a client is available, otherwise Ollama
		if cfg.Gemini != nil {
			return cfg.Gemini, nil
		}
		log.Warn("[AI] No Gemini client configured, using Ollama for text generation")
		return newOllamaFromConfig(cfg), nil
	}
}

func newOllamaFromConfig(cfg Config) *OllamaService {
	if cfg.OllamaBaseURL == nil || cfg.OllamaModel == nil {
		return NewOllamaService("", "")
	}
	return NewOllamaServiceWithGetters(cfg.OllamaBaseURL, cfg.OllamaModel)
}
