// Package rules holds the local, deterministic signal provider: a weighted
// keyword scorer and a heuristic attribute detector. Neither makes network calls.
package rules

import (
	"context"
	"fmt"
	"strings"

	"github.com/BihanDasgupta/CareerNodes/internal/ai"
	"github.com/BihanDasgupta/CareerNodes/internal/coerce"
	"github.com/BihanDasgupta/CareerNodes/internal/listing"
	"github.com/BihanDasgupta/CareerNodes/internal/profile"
)

const (
	weightSkills   = 0.40
	weightKeywords = 0.30
	weightLocation = 0.15
	weightTitle    = 0.15

	remoteLocationScore  = 0.8
	partialLocationScore = 0.6
	otherLocationScore   = 0.3
)

// Scorer rates fit from keyword overlap between the profile text and the listing text.
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

func (s *Scorer) Name() string {
	return "rules"
}

func (s *Scorer) Score(ctx context.Context, profileText, listingText string) (*ai.Assessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fields := profile.ParseText(profileText)
	parsed := parseListingText(listingText)
	listingLower := strings.ToLower(listingText)

	var total, weights float64
	var reasons []string
	add := func(weight, score float64, reason string) {
		total += weight * score
		weights += weight
		reasons = append(reasons, reason)
	}

	if skills := coerce.Strings(fields["Skills"]); len(skills) > 0 {
		matched := 0
		for _, skill := range skills {
			if strings.Contains(listingLower, strings.ToLower(skill)) {
				matched++
			}
		}
		add(weightSkills, float64(matched)/float64(len(skills)), fmt.Sprintf("skills %d/%d", matched, len(skills)))
	}

	profileKW := keywords(profileText)
	overlap := jaccard(profileKW, keywords(listingText))
	add(weightKeywords, overlap, fmt.Sprintf("keyword overlap %.2f", overlap))

	if preferred := fields["Location"]; preferred != "" {
		score := locationScore(preferred, parsed.location)
		add(weightLocation, score, fmt.Sprintf("location %.2f", score))
	}

	if titleKW := keywords(parsed.title); len(titleKW) > 0 {
		matched := 0
		for kw := range titleKW {
			if profileKW[kw] {
				matched++
			}
		}
		score := float64(matched) / float64(len(titleKW))
		add(weightTitle, score, fmt.Sprintf("title %d/%d", matched, len(titleKW)))
	}

	score := 0.0
	if weights > 0 {
		score = ai.Clamp(total / weights)
	}

	return &ai.Assessment{
		Score:  score,
		Reason: strings.Join(reasons, ", "),
	}, nil
}

// locationScore favors a direct match, then remote listings, then a shared word.
func locationScore(preferred, location string) float64 {
	pref := strings.ToLower(strings.TrimSpace(preferred))
	loc := strings.ToLower(strings.TrimSpace(location))
	if loc == "" || location == listing.UnknownLocation {
		return 0.5
	}

	if strings.Contains(loc, pref) || strings.Contains(pref, loc) {
		return 1
	}
	if strings.Contains(loc, "remote") {
		return remoteLocationScore
	}

	for _, locPart := range strings.Fields(loc) {
		for _, prefPart := range strings.Fields(pref) {
			locPart = strings.Trim(locPart, ".,")
			prefPart = strings.Trim(prefPart, ".,")
			if len(locPart) > 3 && locPart == prefPart {
				return partialLocationScore
			}
		}
	}
	return otherLocationScore
}

type listingParts struct {
	title    string
	location string
}

// parseListingText splits "Title at Company located in Location. Description: ...".
// Parts that cannot be found stay empty.
func parseListingText(text string) listingParts {
	var parts listingParts
	head, _, _ := strings.Cut(text, ". Description: ")
	if title, rest, ok := strings.Cut(head, " at "); ok {
		parts.title = title
		if _, location, ok := strings.Cut(rest, " located in "); ok {
			parts.location = location
		}
	}
	return parts
}
