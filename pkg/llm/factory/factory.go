package factory

import (
	"fmt"

	"rag-assistant-be/pkg/llm"
	"rag-assistant-be/pkg/llm/gemini"
	"rag-assistant-be/pkg/llm/ollama"
)

// NewProvider builds a single backend by type name.
func NewProvider(providerType, modelName, baseURL, apiKey string) (llm.Provider, error) {
	switch providerType {
	case "ollama":
		return ollama.New(baseURL, modelName), nil
	case "gemini":
		return gemini.New(apiKey, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
