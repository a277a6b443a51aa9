package pipeline

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/BihanDasgupta/CareerNodes/internal/ai"
	"github.com/BihanDasgupta/CareerNodes/internal/ai/rules"
	"github.com/BihanDasgupta/CareerNodes/internal/filtering"
	"github.com/BihanDasgupta/CareerNodes/internal/issues"
	"github.com/BihanDasgupta/CareerNodes/internal/listing"
	"github.com/BihanDasgupta/CareerNodes/internal/ranking"
)

type countingScorer struct {
	calls  atomic.Int64
	scores map[string]float64
}

func (s *countingScorer) Score(_ context.Context, _ string, listingText string) (*ai.Assessment, error) {
	s.calls.Add(1)
	title, _, _ := strings.Cut(listingText, " at ")
	score, ok := s.scores[title]
	if !ok {
		return nil, ai.ErrMalformedResponse
	}
	return &ai.Assessment{Score: score, Reason: "stub"}, nil
}

func (s *countingScorer) Name() string { return "counting" }

func newPipeline(t *testing.T, cfg Config, scorer ai.Scorer) *Pipeline {
	t.Helper()
	p, err := New(cfg, Deps{Scorer: scorer, Detector: rules.Detector{}, Logger: zap.NewNop()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return p
}

func raw(title, location, description string) map[string]any {
	return map[string]any{
		"title":       title,
		"company":     map[string]any{"display_name": "Acme"},
		"location":    map[string]any{"display_name": location},
		"description": description,
	}
}

func TestMatchEmptyListingsMakesNoCalls(t *testing.T) {
	scorer := &countingScorer{}
	p := newPipeline(t, DefaultConfig(), scorer)

	resp, err := p.Match(context.Background(), Request{Profile: map[string]any{"skills": "go"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Results.Len() != 0 || scorer.calls.Load() != 0 {
		t.Fatalf("expected no results and no calls, got %d results and %d calls", resp.Results.Len(), scorer.calls.Load())
	}
	if resp.RequestID == "" {
		t.Fatalf("missing request id")
	}
}

func TestMatchAllRejectedMakesNoCalls(t *testing.T) {
	scorer := &countingScorer{}
	p := newPipeline(t, DefaultConfig(), scorer)

	resp, err := p.Match(context.Background(), Request{
		Profile:  map[string]any{"skills": "haskell"},
		Listings: []map[string]any{raw("Dev", "Boston", "Java")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Results.Len() != 0 || scorer.calls.Load() != 0 {
		t.Fatalf("expected no results and no calls, got %d results and %d calls", resp.Results.Len(), scorer.calls.Load())
	}
	if len(resp.Rejections) != 1 {
		t.Fatalf("rejections = %d, expected 1", len(resp.Rejections))
	}
}

func TestMatchBostonScenario(t *testing.T) {
	scorer := &countingScorer{scores: map[string]float64{"Analyst": 0.7, "Developer": 0.9}}
	p := newPipeline(t, DefaultConfig(), scorer)

	resp, err := p.Match(context.Background(), Request{
		Profile: map[string]any{"skills": []any{"python", "sql"}, "location": "Boston"},
		Listings: []map[string]any{
			raw("Analyst", "Boston, MA", "Python, SQL dashboards"),
			raw("Developer", "Remote", "Java microservices"),
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if calls := scorer.calls.Load(); calls != 1 {
		t.Fatalf("scorer calls = %d, expected 1", calls)
	}
	items := resp.Results.Items()
	if len(items) != 1 || items[0].Listing.Title != "Analyst" || items[0].Score != 0.7 {
		t.Fatalf("unexpected results: %+v", items)
	}

	if len(resp.Rejections) != 1 || resp.Rejections[0].Filter != "skills" {
		t.Fatalf("unexpected rejections: %+v", resp.Rejections)
	}

	var filterIssues int
	for _, issue := range resp.Issues {
		if issue.Stage == issues.StageFilter {
			filterIssues++
		}
	}
	if filterIssues != 1 {
		t.Fatalf("filter issues = %d, expected 1", filterIssues)
	}
}

func TestMatchZeroModeAppendsRejected(t *testing.T) {
	scorer := &countingScorer{scores: map[string]float64{"Analyst": 0.7}}
	cfg := DefaultConfig()
	cfg.Filter.Mode = filtering.ModeZero
	p := newPipeline(t, cfg, scorer)

	resp, err := p.Match(context.Background(), Request{
		Profile: map[string]any{"skills": "python"},
		Listings: []map[string]any{
			raw("Chef", "Boston", "Cook food"),
			raw("Analyst", "Boston", "python"),
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items := resp.Results.Items()
	if len(items) != 2 || items[0].Listing.Title != "Analyst" || items[1].Listing.Title != "Chef" {
		t.Fatalf("unexpected results: %+v", items)
	}
	if items[1].Score != 0 || !strings.Contains(items[1].Explanation, "skills") {
		t.Fatalf("rejected listing must score zero with a reason: %+v", items[1])
	}
}

func TestMatchIsDeterministic(t *testing.T) {
	scorer := &countingScorer{scores: map[string]float64{"A": 0.5, "B": 0.5, "C": 0.8, "D": 0.1}}
	cfg := DefaultConfig()
	cfg.Normalize = true
	p := newPipeline(t, cfg, scorer)

	req := Request{
		Profile: map[string]any{},
		Listings: []map[string]any{
			raw("A", "x", "a"), raw("B", "x", "b"), raw("C", "x", "c"), raw("D", "x", "d"),
		},
	}

	first, err := p.Match(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := p.Match(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first.Results.Pairs(), second.Results.Pairs()) {
		t.Fatalf("runs differ: %v vs %v", first.Results.Pairs(), second.Results.Pairs())
	}
	if !first.Results.Normalized() {
		t.Fatalf("expected normalized results")
	}

	pairs := first.Results.Pairs()
	if pairs[0].Score != 1 {
		t.Fatalf("top score = %v, expected 1", pairs[0].Score)
	}
	for i, label := range []string{"Acme\nC", "Acme\nA", "Acme\nB"} {
		if pairs[i].Label != label {
			t.Fatalf("pairs[%d] = %q, expected %q", i, pairs[i].Label, label)
		}
	}
}

func TestMatchReportsInputIssues(t *testing.T) {
	p := newPipeline(t, DefaultConfig(), &countingScorer{})

	resp, err := p.Match(context.Background(), Request{
		Profile:  map[string]any{"gpa": "excellent"},
		Listings: []map[string]any{{"company": "NoTitle"}},
		Issues:   []issues.Issue{issues.New(issues.StageSource, "", "source down")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Results.Len() != 0 {
		t.Fatalf("expected no results")
	}

	stages := map[string]bool{}
	for _, issue := range resp.Issues {
		stages[issue.Stage] = true
	}
	for _, stage := range []string{issues.StageSource, issues.StageProfile, issues.StageListing} {
		if !stages[stage] {
			t.Fatalf("missing %s issue in %v", stage, resp.Issues)
		}
	}
}

func TestMatchLogsRequestID(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	p, err := New(DefaultConfig(), Deps{Scorer: &countingScorer{}, Detector: rules.Detector{}, Logger: zap.New(core)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := p.Match(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := observed.All()
	if len(entries) == 0 {
		t.Fatalf("expected log entries")
	}
	if got := entries[0].ContextMap()["request_id"]; got != resp.RequestID {
		t.Fatalf("request_id = %v, expected %s", got, resp.RequestID)
	}
}

func TestMatchRejectsCancelledContext(t *testing.T) {
	p := newPipeline(t, DefaultConfig(), &countingScorer{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Match(ctx, Request{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewFailsFast(t *testing.T) {
	industryOff := DefaultConfig()
	industryOff.Filters.Industry = false
	badMode := DefaultConfig()
	badMode.Filter.Mode = "sometimes"
	badFallback := DefaultConfig()
	badFallback.Ranking.Fallback = ranking.FallbackPolicy("random")

	tests := []struct {
		name    string
		cfg     Config
		deps    Deps
		invalid bool
	}{
		{name: "missing scorer", cfg: DefaultConfig(), deps: Deps{Detector: rules.Detector{}}, invalid: true},
		{name: "missing detector", cfg: DefaultConfig(), deps: Deps{Scorer: &countingScorer{}}, invalid: true},
		{name: "unknown filter mode", cfg: badMode, deps: Deps{Scorer: &countingScorer{}, Detector: rules.Detector{}}, invalid: true},
		{name: "unknown fallback", cfg: badFallback, deps: Deps{Scorer: &countingScorer{}, Detector: rules.Detector{}}, invalid: true},
		{name: "industry filter off needs no detector", cfg: industryOff, deps: Deps{Scorer: &countingScorer{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, tt.deps)
			if tt.invalid && !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			if !tt.invalid && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestMatchAttachesDetectedAttributes(t *testing.T) {
	scorer := &countingScorer{scores: map[string]float64{"Tutor": 0.6}}
	p := newPipeline(t, DefaultConfig(), scorer)

	resp, err := p.Match(context.Background(), Request{
		Profile:  map[string]any{},
		Listings: []map[string]any{raw("Tutor", "Remote", "Part-time tutoring for a school district")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items := resp.Results.Items()
	if len(items) != 1 {
		t.Fatalf("results = %d, expected 1", len(items))
	}
	attrs := items[0].Attributes
	if attrs == nil {
		t.Fatalf("expected detected attributes")
	}
	expect := listing.Attributes{Industry: "education", WorkMode: "remote", Schedule: "part_time"}
	if attrs.Industry != expect.Industry || attrs.WorkMode != expect.WorkMode || attrs.Schedule != expect.Schedule {
		t.Fatalf("attributes = %+v, expected %+v", *attrs, expect)
	}
	if items[0].Listing.Attributes != attrs {
		t.Fatalf("listing must carry the same attributes")
	}
}
