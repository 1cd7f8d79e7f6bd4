package guidance

import (
	"context"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Embedder generates vector embeddings for document chunks and queries
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// GeminiEmbedder produces embeddings via the Gemini embedding API
type GeminiEmbedder struct {
	client    *genai.Client
	modelName string
}

// NewGeminiEmbedder creates an embedder backed by Gemini.
// Reads GEMINI_API_KEY from the environment when apiKey is empty.
func NewGeminiEmbedder(ctx context.Context, apiKey string) (*GeminiEmbedder, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("EMBEDDER_CONFIG_ERROR: GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %v", err)
	}

	return &GeminiEmbedder{
		client:    client,
		modelName: "text-embedding-004",
	}, nil
}

// Embed generates the embedding vector for a single text
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	em := e.client.EmbeddingModel(e.modelName)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("EMBEDDER_API_ERROR: %v", err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("EMBEDDER_API_ERROR: empty embedding returned")
	}
	return res.Embedding.Values, nil
}

// Close releases the underlying API client
func (e *GeminiEmbedder) Close() error {
	return e.client.Close()
}
