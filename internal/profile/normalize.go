package profile

import (
	"math"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/BihanDasgupta/CareerNodes/internal/coerce"
	"github.com/BihanDasgupta/CareerNodes/internal/issues"
)

const (
	minGPA = 0.0
	maxGPA = 4.0
)

// rawProfile mirrors the accepted input keys. Every field is untyped so a single
// malformed value never fails the whole decode.
type rawProfile struct {
	GPA        any `mapstructure:"gpa"`
	Education  any `mapstructure:"education"`
	School     any `mapstructure:"school"`
	Major      any `mapstructure:"major"`
	Skills     any `mapstructure:"skills"`
	Location   any `mapstructure:"location"`
	Industries any `mapstructure:"industries"`
	Industry   any `mapstructure:"industry"`
	OrgTypes   any `mapstructure:"org_types"`
	OrgType    any `mapstructure:"org_type"`
	WorkMode   any `mapstructure:"work_mode"`
	Schedule   any `mapstructure:"schedule"`
	SalaryMin  any `mapstructure:"salary_min"`
	SalaryMax  any `mapstructure:"salary_max"`
	StartDate  any `mapstructure:"start_date"`
	EndDate    any `mapstructure:"end_date"`
	Resume     any `mapstructure:"resume"`
}

// Normalize builds a Profile from raw field values. It never fails: values that
// cannot be used are dropped and reported as issues.
func Normalize(raw map[string]any) (*Profile, []issues.Issue) {
	var found []issues.Issue
	report := func(format string, args ...any) {
		found = append(found, issues.New(issues.StageProfile, "", format, args...))
	}

	var in rawProfile
	var meta mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata: &meta,
		Result:   &in,
	})
	if err == nil {
		err = decoder.Decode(raw)
	}
	if err != nil {
		report("decoding profile input: %v", err)
	}
	for _, key := range meta.Unused {
		report("ignoring unknown field %q", key)
	}

	p := &Profile{
		school:   coerce.String(in.School),
		major:    coerce.String(in.Major),
		location: coerce.String(in.Location),
		resume:   coerce.String(in.Resume),
	}

	if in.GPA != nil && coerce.String(in.GPA) != "" {
		gpa := coerce.Float(in.GPA)
		switch {
		case math.IsNaN(gpa) || math.IsInf(gpa, 0):
			report("gpa %q is not a number", coerce.String(in.GPA))
		case gpa < minGPA || gpa > maxGPA:
			report("gpa %.2f is outside %.1f-%.1f", gpa, minGPA, maxGPA)
		default:
			p.gpa = &gpa
		}
	}

	if value := coerce.String(in.Education); value != "" {
		if level, ok := ParseEducation(value); ok {
			p.education = level
		} else {
			report("unknown education level %q", value)
		}
	}

	p.skills = normalizeSkills(coerce.Strings(in.Skills))

	for _, value := range append(coerce.Strings(in.Industries), coerce.Strings(in.Industry)...) {
		tag, ok := ParseIndustry(value)
		if !ok {
			report("unknown industry %q", value)
			continue
		}
		p.industries = appendUnique(p.industries, tag)
	}

	for _, value := range append(coerce.Strings(in.OrgTypes), coerce.Strings(in.OrgType)...) {
		tag, ok := ParseOrgType(value)
		if !ok {
			report("unknown organization type %q", value)
			continue
		}
		p.orgTypes = appendUnique(p.orgTypes, tag)
	}

	if value := coerce.String(in.WorkMode); value != "" {
		if mode, ok := ParseWorkMode(value); ok {
			p.workMode = mode
		} else {
			report("unknown work mode %q", value)
		}
	}

	if value := coerce.String(in.Schedule); value != "" {
		if schedule, ok := ParseSchedule(value); ok {
			p.schedule = schedule
		} else {
			report("unknown schedule %q", value)
		}
	}

	p.salary = normalizeSalary(in.SalaryMin, in.SalaryMax, report)
	p.timeline = normalizeTimeline(in.StartDate, in.EndDate, report)

	return p, found
}

func normalizeSkills(values []string) []string {
	skills := make([]string, 0, len(values))
	for _, value := range values {
		skill := strings.ToLower(strings.Join(strings.Fields(value), " "))
		if skill == "" {
			continue
		}
		skills = appendUnique(skills, skill)
	}
	return skills
}

func normalizeSalary(rawMin, rawMax any, report func(string, ...any)) SalaryRange {
	var out SalaryRange
	read := func(name string, v any) *int {
		if v == nil || coerce.String(v) == "" {
			return nil
		}
		n, ok := coerce.Int(v)
		if !ok {
			report("%s %q is not a number", name, coerce.String(v))
			return nil
		}
		if n < 0 {
			report("%s %d is negative", name, n)
			return nil
		}
		return &n
	}

	out.Min = read("salary_min", rawMin)
	out.Max = read("salary_max", rawMax)
	if out.Min != nil && out.Max != nil && *out.Min > *out.Max {
		report("salary bounds swapped (%d > %d)", *out.Min, *out.Max)
		out.Min, out.Max = out.Max, out.Min
	}
	return out
}

func normalizeTimeline(rawStart, rawEnd any, report func(string, ...any)) Timeline {
	var out Timeline
	read := func(name string, v any) *time.Time {
		switch val := v.(type) {
		case nil:
			return nil
		case time.Time:
			if val.IsZero() {
				return nil
			}
			t := val.UTC()
			return &t
		}
		s := coerce.String(v)
		if s == "" {
			return nil
		}
		t, ok := parseDate(s)
		if !ok {
			report("%s %q is not a date", name, s)
			return nil
		}
		return &t
	}

	out.Start = read("start_date", rawStart)
	out.End = read("end_date", rawEnd)
	if out.Start != nil && out.End != nil && out.Start.After(*out.End) {
		report("timeline bounds swapped (%s after %s)", out.Start.Format(dateLayout), out.End.Format(dateLayout))
		out.Start, out.End = out.End, out.Start
	}
	return out
}

func appendUnique[T comparable](items []T, item T) []T {
	for _, existing := range items {
		if existing == item {
			return items
		}
	}
	return append(items, item)
}
