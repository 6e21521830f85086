package embedding

import "context"

// Task types hint the provider about the embedding's purpose; providers that
// do not distinguish tasks ignore them.
const (
	TaskDocument = "RETRIEVAL_DOCUMENT"
	TaskQuery    = "RETRIEVAL_QUERY"
)

// Dimension is the fixed vector length of every provider wired here.
const Dimension = 768

// Response carries one generated embedding vector.
type Response struct {
	Values []float32
}

// Provider defines the contract for generating text embeddings.
type Provider interface {
	Generate(ctx context.Context, text string, taskType string) (*Response, error)
}
