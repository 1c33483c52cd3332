// Package factory selects a concrete embedding.EmbeddingProvider by config
// string, mirroring pkg/llm/factory's vendor-swap pattern.
package factory

import (
	"fmt"

	"analytics-assistant-be/pkg/embedding"
)

func NewEmbeddingProvider(providerType, apiKey, baseURL, model string) (embedding.EmbeddingProvider, error) {
	switch providerType {
	case "ollama":
		return embedding.NewOllamaProvider(baseURL, model), nil
	case "gemini":
		return embedding.NewGeminiProvider(apiKey, model), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", providerType)
	}
}
