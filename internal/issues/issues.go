// Package issues collects non-fatal problems found while matching so they can be
// reported next to the results instead of aborting a request.
package issues

import (
	"fmt"
	"sync"
)

// Stages that may report issues.
const (
	StageProfile = "profile"
	StageListing = "listing"
	StageFilter  = "filter"
	StageEmbed   = "embed"
	StageScore   = "score"
	StageSource  = "source"
	StageResume  = "resume"
)

// Issue is a recoverable problem. Listing is empty when the issue is not tied to a listing.
type Issue struct {
	Stage   string `json:"stage"`
	Listing string `json:"listing,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Listing == "" {
		return fmt.Sprintf("[%s] %s", i.Stage, i.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", i.Stage, i.Listing, i.Message)
}

// New builds an issue with a formatted message.
func New(stage, listing, format string, args ...any) Issue {
	return Issue{Stage: stage, Listing: listing, Message: fmt.Sprintf(format, args...)}
}

// Collector is safe for concurrent use.
type Collector struct {
	mu    sync.Mutex
	items []Issue
}

func (c *Collector) Add(issue Issue) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, issue)
}

func (c *Collector) Extend(items []Issue) {
	if len(items) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, items...)
}

// All returns a copy of the collected issues in insertion order.
func (c *Collector) All() []Issue {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Issue, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
