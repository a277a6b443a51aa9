// Package ai defines the signal provider capabilities used by the ranker: an
// Embedder for the cheap similarity stage and a Scorer for the expensive one.
package ai

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/BihanDasgupta/CareerNodes/internal/listing"
)

// ErrMalformedResponse marks provider output that could not be parsed or that
// violated the expected schema. Callers treat it like any other failed call.
var ErrMalformedResponse = errors.New("malformed provider response")

// Assessment is the outcome of a single Scorer call.
type Assessment struct {
	Score float64
	// RequirementsMet is nil when the provider did not say.
	RequirementsMet *bool
	Reason          string
	Attributes      *listing.Attributes
	Raw             string
}

// Embedder maps text to a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	Model() string
}

// Scorer rates how well a listing fits a profile. Scores are expected in [0,1].
type Scorer interface {
	Score(ctx context.Context, profileText, listingText string) (*Assessment, error)
	Name() string
}

// Cosine returns the cosine similarity of a and b, or 0 when the vectors differ
// in length or either has zero norm.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(sim) {
		return 0
	}
	return sim
}

// Clamp pins score into [0,1]. NaN becomes 0.
func Clamp(score float64) float64 {
	switch {
	case math.IsNaN(score) || score < 0:
		return 0
	case score > 1:
		return 1
	default:
		return score
	}
}

// EmbeddingScorer scores by embedding similarity alone. It needs no chat model.
type EmbeddingScorer struct {
	embedder Embedder
}

func NewEmbeddingScorer(embedder Embedder) *EmbeddingScorer {
	return &EmbeddingScorer{embedder: embedder}
}

func (s *EmbeddingScorer) Name() string {
	return "embedding:" + s.embedder.Model()
}

func (s *EmbeddingScorer) Score(ctx context.Context, profileText, listingText string) (*Assessment, error) {
	profileVec, err := s.embedder.Embed(ctx, profileText)
	if err != nil {
		return nil, fmt.Errorf("embed profile: %w", err)
	}
	listingVec, err := s.embedder.Embed(ctx, listingText)
	if err != nil {
		return nil, fmt.Errorf("embed listing: %w", err)
	}

	score := Clamp(Cosine(profileVec, listingVec))
	return &Assessment{
		Score:  score,
		Reason: fmt.Sprintf("embedding similarity %.3f", score),
	}, nil
}
