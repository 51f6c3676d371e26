package config

import (
	"fmt"

	"github.com/dkazen/meridian/internal/vectorstore"
)

// NewEmbedder builds the vectorstore.Embedder selected by
// Embeddings.Provider. An unset or "naive" provider selects the naive,
// dependency-free embedder so the tool works fully offline; an unknown
// provider is an error.
func (c *Config) NewEmbedder() (vectorstore.Embedder, error) {
	switch c.Embeddings.Provider {
	case "", "naive":
		return vectorstore.NewNaiveEmbedder(0), nil
	case "openai":
		return vectorstore.NewOpenAIEmbedder(
			c.Embeddings.OpenAI.APIKey,
			c.Embeddings.OpenAI.Model,
			c.Embeddings.OpenAI.BaseURL,
			c.Embeddings.OpenAI.Dimensions,
		)
	case "ollama":
		return vectorstore.NewOllamaEmbedder(c.Embeddings.Ollama.URL, c.Embeddings.Ollama.Model), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", c.Embeddings.Provider)
	}
}
