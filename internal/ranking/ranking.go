// Package ranking scores listings against a profile in two stages: a cheap
// embedding similarity pass that shortlists the top K, then one precise scorer
// call per shortlisted listing.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/BihanDasgupta/CareerNodes/internal/ai"
	"github.com/BihanDasgupta/CareerNodes/internal/issues"
	"github.com/BihanDasgupta/CareerNodes/internal/listing"
	"github.com/BihanDasgupta/CareerNodes/internal/logger"
	"github.com/BihanDasgupta/CareerNodes/internal/results"
	"github.com/BihanDasgupta/CareerNodes/internal/utils"
)

// Outcome is the ranker output. Scored holds the shortlisted listings in
// shortlist order; Excluded holds the ones cut by the similarity stage.
type Outcome struct {
	Scored   []results.ScoredListing
	Excluded []results.ScoredListing
	// Degraded is set when every precise scoring call failed.
	Degraded bool
	Issues   []issues.Issue
}

// Ranker is safe for concurrent use; each Rank call has its own state.
type Ranker struct {
	cfg      Config
	embedder ai.Embedder
	scorer   ai.Scorer
	logger   *zap.Logger
}

// New validates cfg. The embedder is optional: without it the shortlist is the
// first TopK listings in fetch order.
func New(cfg Config, embedder ai.Embedder, scorer ai.Scorer, logger *zap.Logger) (*Ranker, error) {
	if scorer == nil {
		return nil, errors.New("scorer is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Ranker{cfg: cfg, embedder: embedder, scorer: scorer, logger: logger}, nil
}

func (r *Ranker) Config() Config { return r.cfg }

type run struct {
	*Ranker
	limiter *rate.Limiter
	issues  issues.Collector
}

type candidate struct {
	listing    listing.Listing
	text       string
	similarity float64
}

// Rank never fails: provider errors become fallback scores and issues. Listings
// are read-only; attributes are attached to copies.
func (r *Ranker) Rank(ctx context.Context, profileText string, listings []listing.Listing) *Outcome {
	if len(listings) == 0 {
		return &Outcome{}
	}

	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	limit := rate.Inf
	if r.cfg.Delay > 0 {
		limit = rate.Every(r.cfg.Delay)
	}
	state := &run{Ranker: r, limiter: rate.NewLimiter(limit, 1)}

	profileText = utils.HardCut(profileText, r.cfg.TextLimit)
	candidates := make([]candidate, len(listings))
	for i, l := range listings {
		candidates[i] = candidate{listing: l, text: l.Text(r.cfg.TextLimit)}
	}

	shortlist, excluded := state.shortlist(ctx, profileText, candidates)
	scored, failed := state.score(ctx, profileText, shortlist)

	outcome := &Outcome{
		Scored:   scored,
		Excluded: excluded,
		Degraded: len(scored) > 0 && failed == len(scored),
		Issues:   state.issues.All(),
	}

	r.logger.Info("ranking finished",
		zap.Int("listings", len(listings)),
		zap.Int("shortlisted", len(scored)),
		zap.Int("excluded", len(excluded)),
		zap.Int("failed", failed),
		zap.Bool("degraded", outcome.Degraded),
	)

	return outcome
}

// shortlist is the similarity stage. Candidates are ordered by similarity desc,
// then fetch order, and cut at TopK.
func (s *run) shortlist(ctx context.Context, profileText string, candidates []candidate) ([]candidate, []results.ScoredListing) {
	if s.embedder != nil {
		s.embedAll(ctx, profileText, candidates)
		sort.SliceStable(candidates, func(i, j int) bool {
			if candidates[i].similarity != candidates[j].similarity {
				return candidates[i].similarity > candidates[j].similarity
			}
			return candidates[i].listing.Index < candidates[j].listing.Index
		})
	}

	k := min(s.cfg.TopK, len(candidates))
	excluded := make([]results.ScoredListing, 0, len(candidates)-k)
	for _, c := range candidates[k:] {
		excluded = append(excluded, results.ScoredListing{
			Listing:     c.listing,
			Similarity:  c.similarity,
			Explanation: fmt.Sprintf("not shortlisted (similarity %.3f)", c.similarity),
		})
	}

	return candidates[:k], excluded
}

func (s *run) embedAll(ctx context.Context, profileText string, candidates []candidate) {
	profileVec, err := s.embed(ctx, profileText)
	if err != nil {
		s.issues.Add(issues.New(issues.StageEmbed, "", "embedding profile failed, similarity disabled: %v", err))
		s.logger.Warn("embedding profile failed", zap.Error(err))
		return
	}

	g := new(errgroup.Group)
	g.SetLimit(s.cfg.Workers)
	for i := range candidates {
		g.Go(func() error {
			c := &candidates[i]
			vec, err := s.embed(ctx, c.text)
			if err != nil {
				s.issues.Add(issues.New(issues.StageEmbed, c.listing.ID(), "embedding failed, similarity set to 0: %v", err))
				s.logger.Warn("embedding listing failed", logger.Listing(c.listing.ID()), zap.Error(err))
				return nil
			}
			c.similarity = ai.Cosine(profileVec, vec)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *run) embed(ctx context.Context, text string) ([]float64, error) {
	return withRetry(ctx, s, func(callCtx context.Context) ([]float64, error) {
		return s.embedder.Embed(callCtx, text)
	})
}

// score is the precise stage. Every shortlisted listing gets exactly one entry,
// in shortlist order; failed returns how many used the fallback.
func (s *run) score(ctx context.Context, profileText string, shortlist []candidate) ([]results.ScoredListing, int) {
	scored := make([]results.ScoredListing, len(shortlist))
	var failed atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(s.cfg.Workers)
	for i := range shortlist {
		g.Go(func() error {
			c := shortlist[i]
			item, ok := s.scoreOne(ctx, profileText, c)
			if !ok {
				failed.Add(1)
			}
			scored[i] = item
			return nil
		})
	}
	_ = g.Wait()

	return scored, int(failed.Load())
}

func (s *run) scoreOne(ctx context.Context, profileText string, c candidate) (results.ScoredListing, bool) {
	item := results.ScoredListing{Listing: c.listing, Similarity: c.similarity}
	id := c.listing.ID()

	started := time.Now()
	assessment, err := withRetry(ctx, s, func(callCtx context.Context) (*ai.Assessment, error) {
		return s.scorer.Score(callCtx, profileText, c.text)
	})
	if err == nil && assessment == nil {
		err = fmt.Errorf("%w: empty assessment", ai.ErrMalformedResponse)
	}
	if err != nil {
		item.Score = s.cfg.Fallback.Score()
		item.Fallback = true
		item.Explanation = fmt.Sprintf("scoring failed, %s fallback: %v", s.cfg.Fallback, err)
		s.issues.Add(issues.New(issues.StageScore, id, "scoring failed, using %s fallback %.1f: %v", s.cfg.Fallback, item.Score, err))
		s.logger.Warn("scoring listing failed",
			logger.Listing(id),
			zap.String("scorer", s.scorer.Name()),
			zap.Float64("fallback", item.Score),
			zap.Error(err),
		)
		return item, false
	}

	score := ai.Clamp(assessment.Score)
	explanation := assessment.Reason
	if assessment.RequirementsMet != nil && !*assessment.RequirementsMet {
		switch s.cfg.Requirement {
		case RequirementSoftPenalty:
			score = ai.Clamp(score * s.cfg.SoftPenalty)
		default:
			score = 0
		}
		explanation = joinExplanation("hard requirement not met", explanation)
	}

	item.Score = score
	item.Explanation = explanation
	if s.cfg.ExtractAttributes && assessment.Attributes != nil {
		item.Attributes = assessment.Attributes
		item.Listing = c.listing.WithAttributes(assessment.Attributes)
	}

	s.logger.Debug("listing scored",
		logger.Listing(id),
		zap.Float64("score", score),
		zap.Float64("similarity", c.similarity),
		zap.Duration("elapsed", time.Since(started)),
	)

	return item, true
}

// withRetry makes at most 1+Retries attempts, each waiting on the rate limiter
// and bounded by CallTimeout. It gives up early once ctx is done.
func withRetry[T any](ctx context.Context, s *run, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 0; attempt <= s.cfg.Retries; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			return zero, lastErr
		}

		value, err := callWithTimeout(ctx, s.cfg.CallTimeout, fn)
		if err == nil {
			return value, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}
	return zero, lastErr
}

func joinExplanation(prefix, reason string) string {
	if reason == "" {
		return prefix
	}
	return prefix + ": " + reason
}
