// Package listing holds the canonical job/internship record and the mapping from
// raw job-board records onto it.
package listing

import (
	"fmt"
	"strings"

	"github.com/BihanDasgupta/CareerNodes/internal/utils"
)

// Defaults applied by Normalize.
const (
	UnknownCompany  = "Unknown"
	UnknownTitle    = "Unknown Title"
	UnknownLocation = "Unknown Location"
)

// Listing is read-only during scoring. Index is the fetch order and the final
// tie-break key.
type Listing struct {
	Index       int         `json:"index"`
	SourceID    string      `json:"source_id,omitempty"`
	Company     string      `json:"company"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Location    string      `json:"location"`
	SalaryMin   int         `json:"salary_min"`
	SalaryMax   int         `json:"salary_max"`
	URL         string      `json:"url,omitempty"`
	Attributes  *Attributes `json:"attributes,omitempty"`
}

// Attributes are structured fields extracted from the free-text listing by a
// signal provider or by heuristics. Empty fields mean "not stated".
type Attributes struct {
	Education string   `json:"education,omitempty" mapstructure:"education"`
	MinGPA    *float64 `json:"min_gpa,omitempty" mapstructure:"min_gpa"`
	Skills    []string `json:"skills,omitempty" mapstructure:"skills"`
	WorkMode  string   `json:"work_mode,omitempty" mapstructure:"work_mode"`
	Schedule  string   `json:"schedule,omitempty" mapstructure:"schedule"`
	Industry  string   `json:"industry,omitempty" mapstructure:"industry"`
	OrgType   string   `json:"org_type,omitempty" mapstructure:"org_type"`
	Timeline  string   `json:"timeline,omitempty" mapstructure:"timeline"`
	Major     string   `json:"major,omitempty" mapstructure:"major"`
}

// ID identifies the listing in logs and issues.
func (l Listing) ID() string {
	if l.SourceID != "" {
		return l.SourceID
	}
	return fmt.Sprintf("#%d", l.Index)
}

// Label is the graph node label: company and title on separate lines.
func (l Listing) Label() string {
	return l.Company + "\n" + l.Title
}

// Text is the descriptive blob sent to signal providers, hard-cut at limit runes.
func (l Listing) Text(limit int) string {
	text := fmt.Sprintf("%s at %s located in %s. Description: %s Salary Range: $%d - $%d",
		l.Title, l.Company, l.Location, l.Description, l.SalaryMin, l.SalaryMax)
	return utils.HardCut(text, limit)
}

// SearchText is the lowercase text searched by the rule-based filters and scorers.
func (l Listing) SearchText() string {
	return strings.ToLower(l.Title + " " + l.Company + " " + l.Description)
}

// WithAttributes returns a copy carrying attrs; the receiver is left untouched.
func (l Listing) WithAttributes(attrs *Attributes) Listing {
	l.Attributes = attrs
	return l
}
