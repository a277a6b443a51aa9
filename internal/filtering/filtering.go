package filtering

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/BihanDasgupta/CareerNodes/internal/listing"
	"github.com/BihanDasgupta/CareerNodes/internal/profile"
)

// Filter represents a single hard-constraint step applied to listings.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, in []listing.Listing) ([]listing.Listing, []Rejection, Step, error)
}

// IndustryDetector resolves a listing's industries from extracted attributes or
// text. An empty result means unknown.
type IndustryDetector interface {
	Industries(l listing.Listing) []profile.Industry
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger   *zap.Logger
	Profile  *profile.Profile
	Detector IndustryDetector
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Mode decides what happens to rejected listings downstream.
type Mode string

const (
	// ModeDrop removes rejected listings from the results.
	ModeDrop Mode = "drop"
	// ModeZero keeps rejected listings at the bottom of the results with score 0.
	ModeZero Mode = "zero"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeDrop:
		return ModeDrop, nil
	case ModeZero:
		return ModeZero, nil
	default:
		return "", fmt.Errorf("unknown filter mode %q", s)
	}
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	Mode              Mode
	ExcludedCompanies []string
}

// Rejection explains why a listing failed a filter.
type Rejection struct {
	Listing listing.Listing
	Filter  string
	Reason  string
}

// Outcome splits the input into listings that passed every enabled filter and
// the ones that did not. Both keep input order.
type Outcome struct {
	Passed   []listing.Listing
	Rejected []Rejection
	Steps    map[string]Step
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Defaults returns the standard filter chain.
func Defaults() []Filter {
	return []Filter{NewLocation(), NewSkills(), NewIndustry(), NewCompanies()}
}

// Run executes the supplied filters sequentially. A listing rejected by one step
// is not offered to later steps, so it carries exactly one rejection.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, listings []listing.Listing) (*Outcome, error) {
	if deps.Profile == nil {
		return nil, errors.New("profile is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	outcome := &Outcome{
		Passed: append([]listing.Listing(nil), listings...),
		Steps:  make(map[string]Step, len(steps)),
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			deps.Logger.Debug("filter disabled", zap.String("name", step.Name()))
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		kept, rejected, info, err := step.Apply(ctx, deps, outcome.Passed)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		deps.Logger.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		outcome.Passed = kept
		outcome.Rejected = append(outcome.Rejected, rejected...)
		outcome.Steps[step.Name()] = info
	}

	return outcome, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// partition splits in by check, keeping order. The string is the rejection reason.
func partition(name string, in []listing.Listing, check func(listing.Listing) (bool, string)) ([]listing.Listing, []Rejection, Step) {
	kept := make([]listing.Listing, 0, len(in))
	var rejected []Rejection
	for _, l := range in {
		ok, reason := check(l)
		if ok {
			kept = append(kept, l)
			continue
		}
		rejected = append(rejected, Rejection{Listing: l, Filter: name, Reason: reason})
	}
	return kept, rejected, Step{Initial: len(in), Dropped: len(rejected), Left: len(kept)}
}
