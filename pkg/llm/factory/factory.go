// Package factory selects a concrete LLMProvider by config string, the
// same drop-in-vendor-swap pattern the embedding factory below it uses.
package factory

import (
	"fmt"

	"analytics-assistant-be/pkg/llm"
	"analytics-assistant-be/pkg/llm/gemini"
	"analytics-assistant-be/pkg/llm/huggingface"
	"analytics-assistant-be/pkg/llm/ollama"
)

func NewLLMProvider(providerType, apiKey, modelName, baseURL string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "gemini":
		return gemini.NewGeminiProvider(apiKey, modelName), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
