// Package results holds scored listings and turns them into the final ordered set.
package results

import (
	"sort"

	"github.com/BihanDasgupta/CareerNodes/internal/listing"
)

// ScoredListing pairs a listing with its score in [0,1].
type ScoredListing struct {
	Listing     listing.Listing     `json:"listing"`
	Score       float64             `json:"score"`
	Similarity  float64             `json:"similarity"`
	Attributes  *listing.Attributes `json:"attributes,omitempty"`
	Explanation string              `json:"explanation,omitempty"`
	// Fallback is set when the score is the fallback score rather than a provider answer.
	Fallback bool `json:"fallback,omitempty"`
}

// Pair is the (label, score) view consumed by graph and display sinks.
type Pair struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Set is an ordered, read-only result list.
type Set struct {
	items      []ScoredListing
	normalized bool
	degraded   bool
}

// Items returns a copy of the ordered results.
func (s Set) Items() []ScoredListing {
	return append([]ScoredListing(nil), s.items...)
}

func (s Set) Len() int { return len(s.items) }

// Normalized reports whether scores were divided by the maximum score.
func (s Set) Normalized() bool { return s.normalized }

// Degraded reports whether every precise scoring call failed and the order falls
// back to similarity.
func (s Set) Degraded() bool { return s.degraded }

// Pairs returns (label, score) for each result in order.
func (s Set) Pairs() []Pair {
	pairs := make([]Pair, len(s.items))
	for i, item := range s.items {
		pairs[i] = Pair{Label: item.Listing.Label(), Score: item.Score}
	}
	return pairs
}

// Options control Aggregate.
type Options struct {
	// AppendExcluded appends listings cut by the similarity stage with score 0.
	AppendExcluded bool
	// AppendRejected appends filter-rejected listings with score 0.
	AppendRejected bool
	// Normalize divides all scores by the maximum score.
	Normalize bool
	// Degraded switches the tie-break to similarity before fetch order.
	Degraded bool
}

// Rejected is a listing the filter stage turned away, with the reason.
type Rejected struct {
	Listing listing.Listing
	Reason  string
}

// Aggregate sorts scored listings and appends excluded and rejected ones as
// configured. Appended listings always trail the scored ones.
func Aggregate(scored, excluded []ScoredListing, rejected []Rejected, opts Options) Set {
	items := Sort(scored, opts.Degraded)

	if opts.AppendExcluded {
		tail := make([]ScoredListing, 0, len(excluded))
		for _, item := range excluded {
			item.Score = 0
			tail = append(tail, item)
		}
		items = append(items, Sort(tail, true)...)
	}

	if opts.AppendRejected {
		tail := make([]ScoredListing, 0, len(rejected))
		for _, r := range rejected {
			tail = append(tail, ScoredListing{Listing: r.Listing, Explanation: r.Reason})
		}
		items = append(items, Sort(tail, false)...)
	}

	set := Set{items: items, degraded: opts.Degraded}
	if opts.Normalize {
		set = Normalize(set)
	}
	return set
}

// Sort returns a new slice ordered by score desc, then fetch order asc. With
// degraded set, similarity desc is checked before fetch order. Sorting is stable
// and idempotent.
func Sort(items []ScoredListing, degraded bool) []ScoredListing {
	out := append([]ScoredListing(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if degraded && a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		return a.Listing.Index < b.Listing.Index
	})
	return out
}

// Normalize divides every score by the maximum so the top result is exactly 1.
// A set whose maximum is 0 is returned unchanged but still marked normalized.
func Normalize(s Set) Set {
	items := s.Items()
	maxScore := 0.0
	for _, item := range items {
		if item.Score > maxScore {
			maxScore = item.Score
		}
	}
	if maxScore > 0 {
		for i := range items {
			items[i].Score /= maxScore
		}
	}
	return Set{items: items, normalized: true, degraded: s.degraded}
}
