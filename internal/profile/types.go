package profile

import (
	"strings"
	"time"
)

// EducationLevel is ordered: a higher value is a higher degree.
type EducationLevel int

const (
	EducationNone EducationLevel = iota
	EducationHighSchool
	EducationAssociate
	EducationBachelor
	EducationMaster
	EducationDoctorate
)

var educationNames = map[EducationLevel]string{
	EducationNone:       "",
	EducationHighSchool: "High School",
	EducationAssociate:  "Associate",
	EducationBachelor:   "Bachelor's",
	EducationMaster:     "Master's",
	EducationDoctorate:  "Doctorate",
}

func (e EducationLevel) String() string {
	return educationNames[e]
}

// ParseEducation accepts common spellings ("BS", "bachelor's degree", "PhD", ...).
func ParseEducation(s string) (EducationLevel, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("'", "", "’", "", "-", " ", "_", " ", ".", "").Replace(s)
	switch {
	case s == "":
		return EducationNone, false
	case strings.Contains(s, "high school"), s == "hs", strings.Contains(s, "secondary"):
		return EducationHighSchool, true
	case strings.Contains(s, "associate"):
		return EducationAssociate, true
	case strings.Contains(s, "bachelor"), s == "bs", s == "ba", s == "bsc", strings.Contains(s, "undergrad"):
		return EducationBachelor, true
	case strings.Contains(s, "master"), s == "ms", s == "ma", s == "msc", s == "mba":
		return EducationMaster, true
	case strings.Contains(s, "doctor"), s == "phd":
		return EducationDoctorate, true
	default:
		return EducationNone, false
	}
}

// Industry is a preferred-industry tag.
type Industry string

const (
	IndustryTechnology    Industry = "technology"
	IndustryFinance       Industry = "finance"
	IndustryHealthcare    Industry = "healthcare"
	IndustryEducation     Industry = "education"
	IndustryGovernment    Industry = "government"
	IndustryManufacturing Industry = "manufacturing"
	IndustryRetail        Industry = "retail"
	IndustryMedia         Industry = "media"
	IndustryEnergy        Industry = "energy"
	IndustryNonprofit     Industry = "nonprofit"
	IndustryConsulting    Industry = "consulting"
	IndustryResearch      Industry = "research"
)

// Industries lists every known tag in a fixed order.
var Industries = []Industry{
	IndustryTechnology, IndustryFinance, IndustryHealthcare, IndustryEducation,
	IndustryGovernment, IndustryManufacturing, IndustryRetail, IndustryMedia,
	IndustryEnergy, IndustryNonprofit, IndustryConsulting, IndustryResearch,
}

func ParseIndustry(s string) (Industry, bool) {
	tag := Industry(normalizeTag(s))
	switch tag {
	case "tech", "software", "it":
		return IndustryTechnology, true
	case "non_profit":
		return IndustryNonprofit, true
	case "health", "health_care", "medical":
		return IndustryHealthcare, true
	}
	for _, known := range Industries {
		if tag == known {
			return known, true
		}
	}
	return "", false
}

// OrgType is a preferred organization type tag.
type OrgType string

const (
	OrgStartup       OrgType = "startup"
	OrgCorporate     OrgType = "corporate"
	OrgNonprofit     OrgType = "nonprofit"
	OrgGovernment    OrgType = "government"
	OrgAcademic      OrgType = "academic"
	OrgSmallBusiness OrgType = "small_business"
)

var OrgTypes = []OrgType{OrgStartup, OrgCorporate, OrgNonprofit, OrgGovernment, OrgAcademic, OrgSmallBusiness}

func ParseOrgType(s string) (OrgType, bool) {
	tag := OrgType(normalizeTag(s))
	switch tag {
	case "non_profit":
		return OrgNonprofit, true
	case "university", "academia":
		return OrgAcademic, true
	case "enterprise", "large_company", "corporation":
		return OrgCorporate, true
	case "small", "smb":
		return OrgSmallBusiness, true
	}
	for _, known := range OrgTypes {
		if tag == known {
			return known, true
		}
	}
	return "", false
}

type WorkMode string

const (
	WorkModeRemote WorkMode = "remote"
	WorkModeOnsite WorkMode = "onsite"
	WorkModeHybrid WorkMode = "hybrid"
)

func ParseWorkMode(s string) (WorkMode, bool) {
	switch normalizeTag(s) {
	case "remote", "wfh", "work_from_home":
		return WorkModeRemote, true
	case "onsite", "on_site", "in_person", "office":
		return WorkModeOnsite, true
	case "hybrid":
		return WorkModeHybrid, true
	default:
		return "", false
	}
}

type Schedule string

const (
	ScheduleFullTime Schedule = "full_time"
	SchedulePartTime Schedule = "part_time"
)

func ParseSchedule(s string) (Schedule, bool) {
	switch normalizeTag(s) {
	case "full_time", "fulltime", "full":
		return ScheduleFullTime, true
	case "part_time", "parttime", "part":
		return SchedulePartTime, true
	default:
		return "", false
	}
}

// SalaryRange bounds are optional; when both are set Min <= Max.
type SalaryRange struct {
	Min *int
	Max *int
}

func (r SalaryRange) IsZero() bool { return r.Min == nil && r.Max == nil }

// Timeline bounds are optional; when both are set Start <= End.
type Timeline struct {
	Start *time.Time
	End   *time.Time
}

func (t Timeline) IsZero() bool { return t.Start == nil && t.End == nil }

func normalizeTag(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	return s
}
