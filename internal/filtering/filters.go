package filtering

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/BihanDasgupta/CareerNodes/internal/listing"
	"github.com/BihanDasgupta/CareerNodes/internal/logger"
	"github.com/BihanDasgupta/CareerNodes/internal/profile"
)

const remoteMarker = "remote"

// toggle carries the enable/disable state shared by every filter.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

func (t *toggle) status(name string, details map[string]string) Status {
	return Status{Name: name, Enabled: !t.disabled, Reason: t.reason, Details: details}
}

type locationFilter struct{ toggle }

// NewLocation keeps listings located in the preferred location or marked remote.
// Skipped when the profile has no preferred location.
func NewLocation() Filter {
	return &locationFilter{}
}

func (f *locationFilter) Name() string { return "location" }

func (f *locationFilter) Validate(*Config) error { return nil }

func (f *locationFilter) Apply(_ context.Context, deps Deps, in []listing.Listing) ([]listing.Listing, []Rejection, Step, error) {
	preferred := strings.ToLower(strings.TrimSpace(deps.Profile.Location()))
	if preferred == "" {
		return in, nil, Step{Initial: len(in), Left: len(in)}, nil
	}

	kept, rejected, step := partition(f.Name(), in, func(l listing.Listing) (bool, string) {
		location := strings.ToLower(l.Location)
		if strings.Contains(location, preferred) || strings.Contains(location, remoteMarker) {
			return true, ""
		}
		return false, fmt.Sprintf("location %q does not match %q and is not remote", l.Location, deps.Profile.Location())
	})
	return kept, rejected, step, nil
}

func (f *locationFilter) Status() Status { return f.status(f.Name(), nil) }

type skillsFilter struct{ toggle }

// NewSkills keeps listings whose description mentions at least one profile skill.
// Skipped when the profile has no skills.
func NewSkills() Filter {
	return &skillsFilter{}
}

func (f *skillsFilter) Name() string { return "skills" }

func (f *skillsFilter) Validate(*Config) error { return nil }

func (f *skillsFilter) Apply(_ context.Context, deps Deps, in []listing.Listing) ([]listing.Listing, []Rejection, Step, error) {
	skills := deps.Profile.Skills()
	if len(skills) == 0 {
		return in, nil, Step{Initial: len(in), Left: len(in)}, nil
	}

	kept, rejected, step := partition(f.Name(), in, func(l listing.Listing) (bool, string) {
		description := strings.ToLower(l.Description)
		for _, skill := range skills {
			if strings.Contains(description, skill) {
				return true, ""
			}
		}
		return false, fmt.Sprintf("description mentions none of: %s", strings.Join(skills, ", "))
	})
	return kept, rejected, step, nil
}

func (f *skillsFilter) Status() Status { return f.status(f.Name(), nil) }

type industryFilter struct{ toggle }

// NewIndustry keeps listings whose extracted or detected industry is one of the
// preferred industries. Listings whose industry cannot be determined are kept.
// Skipped when the profile has no preferred industries.
func NewIndustry() Filter {
	return &industryFilter{}
}

func (f *industryFilter) Name() string { return "industry" }

func (f *industryFilter) Validate(*Config) error { return nil }

func (f *industryFilter) Apply(_ context.Context, deps Deps, in []listing.Listing) ([]listing.Listing, []Rejection, Step, error) {
	preferred := deps.Profile.Industries()
	if len(preferred) == 0 {
		return in, nil, Step{Initial: len(in), Left: len(in)}, nil
	}
	if deps.Detector == nil {
		return nil, nil, Step{}, fmt.Errorf("industry detector is required")
	}

	kept, rejected, step := partition(f.Name(), in, func(l listing.Listing) (bool, string) {
		detected := deps.Detector.Industries(l)
		if len(detected) == 0 {
			deps.Logger.Debug("listing industry unknown, keeping", logger.Listing(l.ID()))
			return true, ""
		}
		if slices.ContainsFunc(detected, func(industry profile.Industry) bool {
			return slices.Contains(preferred, industry)
		}) {
			return true, ""
		}
		return false, fmt.Sprintf("industry %s is not preferred", joinTags(detected))
	})
	return kept, rejected, step, nil
}

func (f *industryFilter) Status() Status { return f.status(f.Name(), nil) }

type companiesFilter struct {
	toggle
	companies []string
}

// NewCompanies removes listings by companies excluded in the config.
func NewCompanies() Filter {
	return &companiesFilter{}
}

func (f *companiesFilter) Name() string { return "companies" }

func (f *companiesFilter) Validate(cfg *Config) error {
	f.companies = nil
	if cfg == nil {
		return nil
	}
	for _, company := range cfg.ExcludedCompanies {
		if company = strings.ToLower(strings.TrimSpace(company)); company != "" {
			f.companies = append(f.companies, company)
		}
	}
	return nil
}

func (f *companiesFilter) Apply(_ context.Context, _ Deps, in []listing.Listing) ([]listing.Listing, []Rejection, Step, error) {
	if len(f.companies) == 0 {
		return in, nil, Step{Initial: len(in), Left: len(in)}, nil
	}

	kept, rejected, step := partition(f.Name(), in, func(l listing.Listing) (bool, string) {
		company := strings.ToLower(strings.TrimSpace(l.Company))
		for _, excluded := range f.companies {
			if company == excluded {
				return false, fmt.Sprintf("company %q is excluded", l.Company)
			}
		}
		return true, ""
	})
	return kept, rejected, step, nil
}

func (f *companiesFilter) Status() Status {
	details := map[string]string{}
	if len(f.companies) > 0 {
		details["companies"] = strings.Join(f.companies, ",")
	}
	return f.status(f.Name(), details)
}

func joinTags(tags []profile.Industry) string {
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, strconv.Quote(string(tag)))
	}
	return strings.Join(names, "/")
}
