// Package pipeline runs one match request end to end: normalize, filter, rank,
// aggregate. It holds no global state; everything comes in through Config and Deps.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BihanDasgupta/CareerNodes/internal/ai"
	"github.com/BihanDasgupta/CareerNodes/internal/filtering"
	"github.com/BihanDasgupta/CareerNodes/internal/issues"
	"github.com/BihanDasgupta/CareerNodes/internal/listing"
	"github.com/BihanDasgupta/CareerNodes/internal/logger"
	"github.com/BihanDasgupta/CareerNodes/internal/profile"
	"github.com/BihanDasgupta/CareerNodes/internal/ranking"
	"github.com/BihanDasgupta/CareerNodes/internal/results"
)

// ErrInvalidConfig wraps every configuration problem found by Validate.
var ErrInvalidConfig = errors.New("invalid pipeline configuration")

// FilterToggles enables or disables individual hard constraints.
type FilterToggles struct {
	Location bool `mapstructure:"location"`
	Skills   bool `mapstructure:"skills"`
	Industry bool `mapstructure:"industry"`
}

// Config is the full, explicit configuration of a Pipeline.
type Config struct {
	Ranking        ranking.Config
	Filter         filtering.Config
	Filters        FilterToggles
	AppendExcluded bool
	Normalize      bool
}

// DefaultConfig enables every filter and uses the ranking defaults.
func DefaultConfig() Config {
	return Config{
		Ranking: ranking.Defaults(),
		Filter:  filtering.Config{Mode: filtering.ModeDrop},
		Filters: FilterToggles{Location: true, Skills: true, Industry: true},
	}
}

// Detector infers listing attributes from text. It backs the industry filter and
// fills in attributes for results no provider extracted them for.
type Detector interface {
	filtering.IndustryDetector
	Detect(l listing.Listing) listing.Attributes
}

// Deps are the capability bindings. Scorer is required; Embedder is optional.
type Deps struct {
	Scorer   ai.Scorer
	Embedder ai.Embedder
	Detector Detector
	Logger   *zap.Logger
}

// Validate fails fast on configuration the pipeline cannot run with.
func (c *Config) Validate(deps Deps) error {
	if deps.Scorer == nil {
		return fmt.Errorf("%w: a scorer must be bound", ErrInvalidConfig)
	}
	if c.Filters.Industry && deps.Detector == nil {
		return fmt.Errorf("%w: the industry filter needs an industry detector", ErrInvalidConfig)
	}
	mode, err := filtering.ParseMode(string(c.Filter.Mode))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	c.Filter.Mode = mode
	if err := c.Ranking.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Request is one match request in raw form.
type Request struct {
	Profile  map[string]any
	Listings []map[string]any
	// Issues found before the pipeline ran, such as source or resume failures.
	Issues []issues.Issue
}

// Response always carries a result set, possibly empty.
type Response struct {
	RequestID   string
	Profile     *profile.Profile
	Results     results.Set
	Rejections  []filtering.Rejection
	Issues      []issues.Issue
	FilterSteps []filtering.Status
}

// Pipeline is safe for concurrent use.
type Pipeline struct {
	cfg    Config
	deps   Deps
	ranker *ranking.Ranker
	logger *zap.Logger
}

func New(cfg Config, deps Deps) (*Pipeline, error) {
	if err := cfg.Validate(deps); err != nil {
		return nil, err
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	ranker, err := ranking.New(cfg.Ranking, deps.Embedder, deps.Scorer, deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &Pipeline{cfg: cfg, deps: deps, ranker: ranker, logger: deps.Logger}, nil
}

// Match returns an error only when ctx is unusable.
func (p *Pipeline) Match(ctx context.Context, req Request) (*Response, error) {
	if ctx == nil {
		return nil, errors.New("nil context")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	log := logger.WithRequestID(p.logger, requestID)

	var collected issues.Collector
	collected.Extend(req.Issues)

	prof, found := profile.Normalize(req.Profile)
	collected.Extend(found)

	listings, found := listing.NormalizeAll(req.Listings)
	collected.Extend(found)

	resp := &Response{RequestID: requestID, Profile: prof}

	steps := p.filters()
	resp.FilterSteps = filtering.Describe(steps)

	if len(listings) == 0 {
		log.Info("no listings to match")
		resp.Issues = collected.All()
		return resp, nil
	}

	outcome, err := filtering.Run(ctx, &p.cfg.Filter, filtering.Deps{
		Logger:   log,
		Profile:  prof,
		Detector: p.deps.Detector,
	}, steps, listings)
	if err != nil {
		return nil, fmt.Errorf("filter listings: %w", err)
	}
	resp.Rejections = outcome.Rejected
	for _, r := range outcome.Rejected {
		collected.Add(issues.New(issues.StageFilter, r.Listing.ID(), "rejected by %s: %s", r.Filter, r.Reason))
	}

	var ranked *ranking.Outcome
	if len(outcome.Passed) > 0 {
		ranked = p.ranker.Rank(ctx, prof.Text(), outcome.Passed)
		collected.Extend(ranked.Issues)
	} else {
		log.Info("every listing was rejected by the filters")
		ranked = &ranking.Outcome{}
	}

	rejected := make([]results.Rejected, 0, len(outcome.Rejected))
	for _, r := range outcome.Rejected {
		rejected = append(rejected, results.Rejected{
			Listing: r.Listing,
			Reason:  fmt.Sprintf("rejected by %s filter: %s", r.Filter, r.Reason),
		})
	}

	resp.Results = results.Aggregate(p.annotate(ranked.Scored), p.annotate(ranked.Excluded), rejected, results.Options{
		AppendExcluded: p.cfg.AppendExcluded,
		AppendRejected: p.cfg.Filter.Mode == filtering.ModeZero,
		Normalize:      p.cfg.Normalize,
		Degraded:       ranked.Degraded,
	})
	resp.Issues = collected.All()

	log.Info("match finished",
		zap.Int("listings", len(listings)),
		zap.Int("passed_filters", len(outcome.Passed)),
		zap.Int("results", resp.Results.Len()),
		zap.Int("issues", len(resp.Issues)),
		zap.Bool("degraded", resp.Results.Degraded()),
		zap.Bool("normalized", resp.Results.Normalized()),
	)

	return resp, nil
}

// annotate attaches detected attributes to items that carry none.
func (p *Pipeline) annotate(items []results.ScoredListing) []results.ScoredListing {
	if p.deps.Detector == nil {
		return items
	}
	for i, item := range items {
		if item.Attributes != nil {
			continue
		}
		attrs := p.deps.Detector.Detect(item.Listing)
		if attrs.Industry == "" && attrs.WorkMode == "" && attrs.Schedule == "" {
			continue
		}
		items[i].Attributes = &attrs
		items[i].Listing = item.Listing.WithAttributes(&attrs)
	}
	return items
}

func (p *Pipeline) filters() []filtering.Filter {
	steps := filtering.Defaults()
	if !p.cfg.Filters.Location {
		filtering.DisableByName(steps, "location", "disabled in config")
	}
	if !p.cfg.Filters.Skills {
		filtering.DisableByName(steps, "skills", "disabled in config")
	}
	if !p.cfg.Filters.Industry {
		filtering.DisableByName(steps, "industry", "disabled in config")
	}
	return steps
}
