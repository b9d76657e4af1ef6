package ai

import "context"

// TextGenerator produces text from a prompt.
// Implement this interface to add new AI providers (Gemini, Ollama, etc.)
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderOllama ProviderType = "ollama"
	ProviderAuto   ProviderType = "auto"
)
