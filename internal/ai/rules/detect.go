package rules

import (
	"strings"

	"github.com/BihanDasgupta/CareerNodes/internal/listing"
	"github.com/BihanDasgupta/CareerNodes/internal/profile"
)

// industryKeywords are checked in profile.Industries order. A listing can hit
// several industries.
var industryKeywords = map[profile.Industry][]string{
	profile.IndustryTechnology:    {"software", "developer", "engineer", "data", "cloud", "saas", "machine learning", "devops", "programming", "it support"},
	profile.IndustryFinance:       {"bank", "finance", "financial", "investment", "trading", "accounting", "insurance", "fintech"},
	profile.IndustryHealthcare:    {"health", "hospital", "clinical", "medical", "patient", "pharma", "biotech", "nurse"},
	profile.IndustryEducation:     {"school", "teacher", "tutor", "education", "curriculum", "university", "college"},
	profile.IndustryGovernment:    {"government", "federal", "municipal", "public sector", "agency", "state of"},
	profile.IndustryManufacturing: {"manufacturing", "factory", "production line", "assembly", "plant"},
	profile.IndustryRetail:        {"retail", "store", "e-commerce", "ecommerce", "merchandise", "sales associate"},
	profile.IndustryMedia:         {"media", "marketing", "journalism", "content", "advertising", "film", "social media"},
	profile.IndustryEnergy:        {"energy", "solar", "oil", "gas", "utility", "renewable", "power grid"},
	profile.IndustryNonprofit:     {"nonprofit", "non-profit", "charity", "foundation", "ngo"},
	profile.IndustryConsulting:    {"consulting", "consultant", "advisory"},
	profile.IndustryResearch:      {"research", "laboratory", "lab ", "scientist", "r&d"},
}

// Detector guesses listing attributes from free text when no provider extracted them.
type Detector struct{}

// Detect returns the attributes it can infer. Fields it cannot infer stay empty.
// Industry lists every detected industry, comma separated.
func (Detector) Detect(l listing.Listing) listing.Attributes {
	text := l.SearchText() + " " + strings.ToLower(l.Location)
	industries := detectIndustries(l.SearchText())
	names := make([]string, 0, len(industries))
	for _, industry := range industries {
		names = append(names, string(industry))
	}
	return listing.Attributes{
		Industry: strings.Join(names, ", "),
		WorkMode: string(detectWorkMode(text)),
		Schedule: string(detectSchedule(text)),
	}
}

// Industries returns the listing's industries, preferring extracted attributes.
// An empty result means the industry is unknown.
func (d Detector) Industries(l listing.Listing) []profile.Industry {
	if l.Attributes != nil && l.Attributes.Industry != "" {
		var extracted []profile.Industry
		for _, value := range strings.Split(l.Attributes.Industry, ",") {
			if industry, ok := profile.ParseIndustry(value); ok {
				extracted = append(extracted, industry)
			}
		}
		if len(extracted) > 0 {
			return extracted
		}
	}
	return detectIndustries(l.SearchText())
}

func detectIndustries(text string) []profile.Industry {
	var found []profile.Industry
	for _, industry := range profile.Industries {
		if containsAny(text, industryKeywords[industry]...) {
			found = append(found, industry)
		}
	}
	return found
}

func detectWorkMode(text string) profile.WorkMode {
	switch {
	case strings.Contains(text, "hybrid"):
		return profile.WorkModeHybrid
	case containsAny(text, "remote", "work from home", "wfh"):
		return profile.WorkModeRemote
	case containsAny(text, "on-site", "onsite", "in-person", "in person", "in office"):
		return profile.WorkModeOnsite
	default:
		return ""
	}
}

func detectSchedule(text string) profile.Schedule {
	switch {
	case containsAny(text, "part-time", "part time", "parttime"):
		return profile.SchedulePartTime
	case containsAny(text, "full-time", "full time", "fulltime"):
		return profile.ScheduleFullTime
	default:
		return ""
	}
}
