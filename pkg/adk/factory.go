package adk

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed prompts/system_prompt.md
var systemPrompt string

// SupportedProviders lists the provider names accepted by NewProvider
var SupportedProviders = []string{"gemini"}

// DefaultSystemPrompt tells the model to route pasted evidence through the diagnostic tools
func DefaultSystemPrompt() string {
	return systemPrompt
}

func NewProvider(ctx context.Context, providerName, apiKey, modelName string) (LLMProvider, error) {
	switch providerName {
	case "gemini", "":
		return NewGeminiProvider(ctx, apiKey, modelName)
	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: %v)", providerName, SupportedProviders)
	}
}
