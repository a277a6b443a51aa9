package rules

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/BihanDasgupta/CareerNodes/internal/listing"
	"github.com/BihanDasgupta/CareerNodes/internal/profile"
)

func profileText(t *testing.T, raw map[string]any) string {
	t.Helper()
	p, found := profile.Normalize(raw)
	if len(found) != 0 {
		t.Fatalf("unexpected profile issues: %v", found)
	}
	return p.Text()
}

func TestScorerPrefersMatchingListing(t *testing.T) {
	text := profileText(t, map[string]any{
		"skills":   "python, sql",
		"major":    "Data Science",
		"location": "Boston",
	})

	good := listing.Listing{
		Title: "Data Analyst Intern", Company: "Acme", Location: "Boston, MA",
		Description: "Analyze data with Python and SQL.",
	}
	bad := listing.Listing{
		Title: "Line Cook", Company: "Diner", Location: "Austin, TX",
		Description: "Prepare food on the grill.",
	}

	scorer := NewScorer()
	goodScore, err := scorer.Score(context.Background(), text, good.Text(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	badScore, err := scorer.Score(context.Background(), text, bad.Text(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if goodScore.Score <= badScore.Score {
		t.Fatalf("expected matching listing to score higher: %.3f <= %.3f", goodScore.Score, badScore.Score)
	}
	if badScore.Score < 0 || goodScore.Score > 1 {
		t.Fatalf("scores out of range: %.3f, %.3f", badScore.Score, goodScore.Score)
	}
	if !strings.Contains(goodScore.Reason, "skills 2/2") {
		t.Fatalf("unexpected reason: %q", goodScore.Reason)
	}
}

func TestScorerIsDeterministic(t *testing.T) {
	text := profileText(t, map[string]any{"skills": "go", "location": "Remote"})
	l := listing.Listing{Title: "Go Developer", Company: "Acme", Location: "Remote", Description: "Write Go services."}

	scorer := NewScorer()
	first, err := scorer.Score(context.Background(), text, l.Text(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := scorer.Score(context.Background(), text, l.Text(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Score != second.Score || first.Reason != second.Reason {
		t.Fatalf("results differ: %+v vs %+v", first, second)
	}
}

func TestScorerHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewScorer().Score(ctx, "Skills: go", "x"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLocationScore(t *testing.T) {
	tests := []struct {
		preferred, location string
		expect              float64
	}{
		{"Boston", "Boston, MA", 1.0},
		{"Boston", "Remote", remoteLocationScore},
		{"Portland Oregon", "Salem, Oregon", partialLocationScore},
		{"Boston", "Austin, TX", otherLocationScore},
		{"Boston", listing.UnknownLocation, 0.5},
	}

	for _, tt := range tests {
		if got := locationScore(tt.preferred, tt.location); got != tt.expect {
			t.Fatalf("locationScore(%q, %q) = %v, expected %v", tt.preferred, tt.location, got, tt.expect)
		}
	}
}

func TestParseListingText(t *testing.T) {
	l := listing.Listing{Title: "Intern", Company: "Acme", Location: "Boston", Description: "Do things."}
	parts := parseListingText(l.Text(0))
	if parts.title != "Intern" || parts.location != "Boston" {
		t.Fatalf("unexpected parts: %+v", parts)
	}
}

func TestKeywordsKeepTechTokens(t *testing.T) {
	kw := keywords("Experience with C++, C#, and Node.js. The team uses Go.")
	if !kw["c++"] || !kw["node.js"] {
		t.Fatalf("tech tokens missing: %v", kw)
	}
	if kw["the"] || kw["team"] {
		t.Fatalf("stop words kept: %v", kw)
	}

	got := jaccard(map[string]bool{"a": true, "b": true}, map[string]bool{"b": true, "c": true})
	if math.Abs(got-1.0/3.0) > 1e-9 {
		t.Fatalf("unexpected jaccard: %v", got)
	}
}

func TestDetector(t *testing.T) {
	d := Detector{}

	attrs := d.Detect(listing.Listing{
		Title:       "Software Engineer Intern",
		Location:    "Remote",
		Description: "Part-time role building cloud services.",
	})
	if attrs.Industry != string(profile.IndustryTechnology) {
		t.Fatalf("unexpected industry %q", attrs.Industry)
	}
	if attrs.WorkMode != string(profile.WorkModeRemote) || attrs.Schedule != string(profile.SchedulePartTime) {
		t.Fatalf("unexpected attributes: %+v", attrs)
	}

	tests := []struct {
		name    string
		listing listing.Listing
		expect  []profile.Industry
	}{
		{
			name:    "keyword hit",
			listing: listing.Listing{Title: "Teller", Description: "Join our bank branch."},
			expect:  []profile.Industry{profile.IndustryFinance},
		},
		{
			name:    "extracted attribute wins",
			listing: listing.Listing{Title: "Data Analyst", Attributes: &listing.Attributes{Industry: "healthcare"}},
			expect:  []profile.Industry{profile.IndustryHealthcare},
		},
		{
			name:    "extracted attribute with several industries",
			listing: listing.Listing{Title: "Analyst", Attributes: &listing.Attributes{Industry: "finance, technology"}},
			expect:  []profile.Industry{profile.IndustryFinance, profile.IndustryTechnology},
		},
		{
			name:    "unknown",
			listing: listing.Listing{Title: "Dog Walker", Description: "Walk dogs."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.Industries(tt.listing); !reflect.DeepEqual(got, tt.expect) {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestDetectorReportsEveryIndustryHit(t *testing.T) {
	l := listing.Listing{
		Title:       "Financial Analyst Intern",
		Company:     "Goldman Sachs",
		Description: "Join the investment banking team and analyze market data.",
	}

	got := Detector{}.Industries(l)
	for _, want := range []profile.Industry{profile.IndustryFinance, profile.IndustryTechnology} {
		found := false
		for _, industry := range got {
			found = found || industry == want
		}
		if !found {
			t.Fatalf("expected %q among %v", want, got)
		}
	}

	if attrs := (Detector{}).Detect(l); !strings.Contains(attrs.Industry, string(profile.IndustryFinance)) {
		t.Fatalf("detected attributes miss finance: %q", attrs.Industry)
	}
}
