// Package cohere scores listings with the Cohere rerank endpoint: the profile is
// the query and the listing is the only document.
package cohere

import (
	"context"
	"errors"
	"fmt"
	"strings"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	"github.com/cohere-ai/cohere-go/v2/option"
	"go.uber.org/zap"

	"github.com/BihanDasgupta/CareerNodes/internal/ai"
	"github.com/BihanDasgupta/CareerNodes/internal/logger"
)

const defaultModel = "rerank-english-v3.0"

type reranker interface {
	Rerank(ctx context.Context, request *cohere.RerankRequest, opts ...option.RequestOption) (*cohere.RerankResponse, error)
}

// Scorer implements ai.Scorer over rerank relevance scores.
type Scorer struct {
	client reranker
	model  string
	logger *zap.Logger
}

// NewScorer builds a Scorer with a Cohere API client.
func NewScorer(apiKey, model string, log *zap.Logger) (*Scorer, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("cohere api key is required")
	}

	return newScorer(cohereclient.NewClient(cohereclient.WithToken(apiKey)), model, log), nil
}

func newScorer(client reranker, model string, log *zap.Logger) *Scorer {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	return &Scorer{
		client: client,
		model:  model,
		logger: logger.WithCommonFields(log, "cohere", model),
	}
}

func (s *Scorer) Name() string {
	return "cohere:" + s.model
}

func (s *Scorer) Score(ctx context.Context, profileText, listingText string) (*ai.Assessment, error) {
	resp, err := s.client.Rerank(ctx, &cohere.RerankRequest{
		Model: cohere.String(s.model),
		Query: profileText,
		Documents: []*cohere.RerankRequestDocumentsItem{
			{String: listingText},
		},
		TopN: cohere.Int(1),
	})
	if err != nil {
		return nil, fmt.Errorf("cohere rerank: %w", err)
	}
	if resp == nil || len(resp.Results) == 0 || resp.Results[0] == nil {
		return nil, fmt.Errorf("%w: rerank returned no results", ai.ErrMalformedResponse)
	}

	score := resp.Results[0].RelevanceScore
	if score < 0 || score > 1 {
		return nil, fmt.Errorf("%w: relevance score %v is outside 0-1", ai.ErrMalformedResponse, score)
	}

	s.logger.Debug("cohere rerank response", zap.Float64("relevance_score", score))

	return &ai.Assessment{
		Score:  score,
		Reason: fmt.Sprintf("rerank relevance %.3f", score),
	}, nil
}
