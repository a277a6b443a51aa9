package gemini

import "context"

// Embedder exposes the Generator's embedding model as an ai.Embedder.
type Embedder struct {
	generator *Generator
}

func NewEmbedder(generator *Generator) *Embedder {
	return &Embedder{generator: generator}
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	return e.generator.Embed(ctx, text)
}

func (e *Embedder) Model() string {
	return e.generator.EmbeddingModel()
}
