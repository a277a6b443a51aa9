package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/BihanDasgupta/CareerNodes/internal/ai"
	"github.com/BihanDasgupta/CareerNodes/internal/ai/cohere"
	"github.com/BihanDasgupta/CareerNodes/internal/ai/gemini"
	"github.com/BihanDasgupta/CareerNodes/internal/ai/rules"
	"github.com/BihanDasgupta/CareerNodes/internal/cache"
	"github.com/BihanDasgupta/CareerNodes/internal/filtering"
	"github.com/BihanDasgupta/CareerNodes/internal/pipeline"
	"github.com/BihanDasgupta/CareerNodes/internal/secrets"
	"github.com/BihanDasgupta/CareerNodes/internal/source"
	"github.com/BihanDasgupta/CareerNodes/internal/source/adzuna"
	"github.com/BihanDasgupta/CareerNodes/internal/source/file"
	"github.com/BihanDasgupta/CareerNodes/internal/source/headhunter"
)

const (
	providerGemini    = "gemini"
	providerCohere    = "cohere"
	providerRules     = "rules"
	providerEmbedding = "embedding"
	providerNone      = "none"
)

// buildDeps binds the configured providers. Missing credentials for a selected
// provider are a configuration error.
func buildDeps(ctx context.Context, cfg *Config, logger *zap.Logger) (pipeline.Deps, error) {
	deps := pipeline.Deps{Detector: rules.Detector{}, Logger: logger}

	scorerName := strings.ToLower(strings.TrimSpace(cfg.AI.Scorer))
	embedderName := strings.ToLower(strings.TrimSpace(cfg.AI.Embedder))

	var generator *gemini.Generator
	geminiGenerator := func() (*gemini.Generator, error) {
		if generator != nil {
			return generator, nil
		}
		g, err := newGeminiGenerator(ctx, cfg.AI.Gemini, logger)
		if err != nil {
			return nil, err
		}
		generator = g
		return g, nil
	}

	switch embedderName {
	case providerGemini:
		g, err := geminiGenerator()
		if err != nil {
			return deps, err
		}
		deps.Embedder = withCache(ctx, gemini.NewEmbedder(g), cfg.Cache, logger)
	case providerNone, "":
	default:
		return deps, fmt.Errorf("unsupported embedder: %s", cfg.AI.Embedder)
	}

	switch scorerName {
	case providerGemini:
		g, err := geminiGenerator()
		if err != nil {
			return deps, err
		}
		deps.Scorer = gemini.NewScorer(g, logger, cfg.Ranking.ExtractAttributes, cfg.AI.Gemini.MaxLogLength)
	case providerCohere:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "cohere api key",
			File:  cfg.AI.Cohere.APIKeyFile,
			Value: cfg.AI.Cohere.APIKey,
		})
		if err != nil {
			return deps, fmt.Errorf("%w (set ai.cohere.api-key-file or COHERE_API_KEY)", err)
		}
		scorer, err := cohere.NewScorer(apiKey, cfg.AI.Cohere.Model, logger)
		if err != nil {
			return deps, err
		}
		deps.Scorer = scorer
	case providerRules:
		deps.Scorer = rules.NewScorer()
	case providerEmbedding:
		if deps.Embedder == nil {
			return deps, fmt.Errorf("the embedding scorer needs ai.embedder to be set")
		}
		deps.Scorer = ai.NewEmbeddingScorer(deps.Embedder)
	default:
		return deps, fmt.Errorf("unsupported scorer: %s", cfg.AI.Scorer)
	}

	return deps, nil
}

func newGeminiGenerator(ctx context.Context, cfg *GeminiConfig, logger *zap.Logger) (*gemini.Generator, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.APIKeyFile,
		Value: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	return gemini.NewGenerator(ctx, gemini.Config{
		APIKey:         apiKey,
		Model:          cfg.Model,
		EmbeddingModel: cfg.EmbeddingModel,
		MaxRetries:     cfg.MaxRetries,
		Temperature:    cfg.Temperature,
	}, logger)
}

// withCache always adds the memory tier. Redis joins when it answers a ping.
func withCache(ctx context.Context, next ai.Embedder, cfg *CacheConfig, logger *zap.Logger) ai.Embedder {
	var l2 cache.Store
	if cfg.RedisURL != "" {
		store, err := cache.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("cache: redis unavailable, using memory only", zap.Error(err))
		} else {
			l2 = store
		}
	}

	logger.Debug("embedding cache ready", zap.Bool("redis", l2 != nil), zap.Duration("ttl", cfg.TTL))
	return cache.New(next, l2, cache.Options{TTL: cfg.TTL, MaxEntries: cfg.MaxEntries}, logger)
}

func newSource(cfg *SourceConfig, logger *zap.Logger) (source.Source, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Name)) {
	case "adzuna", "":
		appKey, err := secrets.Load(secrets.Source{
			Name:  "adzuna app key",
			File:  cfg.Adzuna.AppKeyFile,
			Value: cfg.Adzuna.AppKey,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set source.adzuna.app-key or ADZUNA_APP_KEY)", err)
		}
		return adzuna.New(strings.TrimSpace(cfg.Adzuna.AppID), appKey, cfg.Adzuna.Country, logger)
	case "headhunter", "hh":
		token, err := secrets.Optional(secrets.Source{
			Name: "headhunter token",
			File: cfg.Headhunter.TokenFile,
		})
		if err != nil {
			return nil, err
		}
		client := headhunter.New(logger, token, cfg.Headhunter.Search)
		if cfg.Headhunter.UserAgent != "" {
			client.UserAgent = cfg.Headhunter.UserAgent
		}
		return client, nil
	case "file":
		if strings.TrimSpace(cfg.File) == "" {
			return nil, fmt.Errorf("source.file is required for the file source")
		}
		return file.New(cfg.File), nil
	default:
		return nil, fmt.Errorf("unsupported source: %s", cfg.Name)
	}
}

func pipelineConfig(cfg *Config) (pipeline.Config, error) {
	mode, err := filtering.ParseMode(cfg.Filters.Mode)
	if err != nil {
		return pipeline.Config{}, err
	}

	return pipeline.Config{
		Ranking: cfg.Ranking,
		Filter: filtering.Config{
			Mode:              mode,
			ExcludedCompanies: cfg.Filters.ExcludeCompanies,
		},
		Filters:        cfg.Filters.Enabled,
		AppendExcluded: cfg.Results.AppendExcluded,
		Normalize:      cfg.Results.Normalize,
	}, nil
}
