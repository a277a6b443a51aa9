// Package profile turns raw candidate input into a canonical Profile and the
// descriptive text consumed by the signal providers.
package profile

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Placeholders used in Text for missing fields.
const (
	NoGPA       = "No GPA Provided"
	NoEducation = "No Education Level Provided"
	NoSchool    = "No School Provided"
	NoMajor     = "No Major Provided"
	NoSkills    = "No Skills Provided"
	NoLocation  = "No Location Preference"
	NoIndustry  = "No Industry Preference"
	NoOrgType   = "No Organization Type Preference"
	NoWorkMode  = "No Work Mode Preference"
	NoSchedule  = "No Schedule Preference"
	NoSalary    = "No Salary Range Provided"
	NoTimeline  = "No Timeline Provided"
	NoResume    = "No Resume Provided"
)

const dateLayout = "2006-01-02"

// Profile is the canonical candidate record. It is built once per request by
// Normalize and is read-only afterwards: accessors hand out copies.
type Profile struct {
	gpa        *float64
	education  EducationLevel
	school     string
	major      string
	skills     []string
	location   string
	industries []Industry
	orgTypes   []OrgType
	workMode   WorkMode
	schedule   Schedule
	salary     SalaryRange
	timeline   Timeline
	resume     string
}

func (p *Profile) GPA() (float64, bool) {
	if p.gpa == nil {
		return 0, false
	}
	return *p.gpa, true
}

func (p *Profile) Education() EducationLevel { return p.education }
func (p *Profile) School() string            { return p.school }
func (p *Profile) Major() string             { return p.major }
func (p *Profile) Location() string          { return p.location }
func (p *Profile) WorkMode() WorkMode        { return p.workMode }
func (p *Profile) Schedule() Schedule        { return p.schedule }
func (p *Profile) Resume() string            { return p.resume }

// Skills returns lowercase skills in first-seen order.
func (p *Profile) Skills() []string {
	return append([]string(nil), p.skills...)
}

func (p *Profile) Industries() []Industry {
	return append([]Industry(nil), p.industries...)
}

func (p *Profile) OrgTypes() []OrgType {
	return append([]OrgType(nil), p.orgTypes...)
}

func (p *Profile) Salary() SalaryRange {
	out := SalaryRange{}
	if p.salary.Min != nil {
		v := *p.salary.Min
		out.Min = &v
	}
	if p.salary.Max != nil {
		v := *p.salary.Max
		out.Max = &v
	}
	return out
}

func (p *Profile) Timeline() Timeline {
	out := Timeline{}
	if p.timeline.Start != nil {
		v := *p.timeline.Start
		out.Start = &v
	}
	if p.timeline.End != nil {
		v := *p.timeline.End
		out.End = &v
	}
	return out
}

// Text renders the profile as labeled lines. The field order and the placeholders
// are fixed: embeddings and scores computed from this text are only comparable
// across runs as long as neither changes.
//
// Order: GPA, Education, School, Major, Skills, Location, Industry,
// Organization Type, Work Mode, Schedule, Salary Range, Timeline, Resume.
//
// Work Mode is an addition to the base provider text, which goes straight from
// Organization Type to Schedule. Providers must accept it; anything parsing this
// text should look lines up by label rather than position.
func (p *Profile) Text() string {
	lines := []string{
		line("GPA", p.gpaText(), NoGPA),
		line("Education", p.education.String(), NoEducation),
		line("School", p.school, NoSchool),
		line("Major", p.major, NoMajor),
		line("Skills", strings.Join(p.skills, ", "), NoSkills),
		line("Location", p.location, NoLocation),
		line("Industry", joinTags(p.industries), NoIndustry),
		line("Organization Type", joinTags(p.orgTypes), NoOrgType),
		line("Work Mode", string(p.workMode), NoWorkMode),
		line("Schedule", string(p.schedule), NoSchedule),
		line("Salary Range", p.salaryText(), NoSalary),
		line("Timeline", p.timelineText(), NoTimeline),
		line("Resume", p.resume, NoResume),
	}
	return strings.Join(lines, "\n")
}

func (p *Profile) gpaText() string {
	if p.gpa == nil {
		return ""
	}
	return strconv.FormatFloat(*p.gpa, 'f', 2, 64)
}

func (p *Profile) salaryText() string {
	switch {
	case p.salary.Min != nil && p.salary.Max != nil:
		return fmt.Sprintf("$%d - $%d", *p.salary.Min, *p.salary.Max)
	case p.salary.Min != nil:
		return fmt.Sprintf("at least $%d", *p.salary.Min)
	case p.salary.Max != nil:
		return fmt.Sprintf("up to $%d", *p.salary.Max)
	default:
		return ""
	}
}

func (p *Profile) timelineText() string {
	switch {
	case p.timeline.Start != nil && p.timeline.End != nil:
		return fmt.Sprintf("%s to %s", p.timeline.Start.Format(dateLayout), p.timeline.End.Format(dateLayout))
	case p.timeline.Start != nil:
		return "from " + p.timeline.Start.Format(dateLayout)
	case p.timeline.End != nil:
		return "until " + p.timeline.End.Format(dateLayout)
	default:
		return ""
	}
}

func line(label, value, placeholder string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		value = placeholder
	}
	return label + ": " + value
}

func joinTags[T ~string](tags []T) string {
	parts := make([]string, 0, len(tags))
	for _, tag := range tags {
		parts = append(parts, string(tag))
	}
	return strings.Join(parts, ", ")
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{dateLayout, time.RFC3339, "01/02/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

var placeholders = map[string]bool{
	NoGPA: true, NoEducation: true, NoSchool: true, NoMajor: true, NoSkills: true,
	NoLocation: true, NoIndustry: true, NoOrgType: true, NoWorkMode: true,
	NoSchedule: true, NoSalary: true, NoTimeline: true, NoResume: true,
}

var labels = map[string]bool{
	"GPA": true, "Education": true, "School": true, "Major": true, "Skills": true,
	"Location": true, "Industry": true, "Organization Type": true, "Work Mode": true,
	"Schedule": true, "Salary Range": true, "Timeline": true, "Resume": true,
}

// ParseText reads the labeled lines produced by Text back into a label/value map.
// Placeholder values are omitted. Lines without a label are appended to the
// previous value. Resume is the last line, so everything after it belongs to it.
func ParseText(text string) map[string]string {
	fields := make(map[string]string)
	last := ""
	for _, raw := range strings.Split(text, "\n") {
		label, value, ok := strings.Cut(raw, ": ")
		if !ok || !labels[label] || last == "Resume" {
			if last != "" {
				fields[last] = strings.TrimSpace(fields[last] + " " + strings.TrimSpace(raw))
			}
			continue
		}
		last = label
		value = strings.TrimSpace(value)
		if placeholders[value] {
			continue
		}
		fields[label] = value
	}
	return fields
}

// rawKeys maps Text labels to the Normalize input keys.
var rawKeys = map[string]string{
	"GPA": "gpa", "Education": "education", "School": "school", "Major": "major",
	"Skills": "skills", "Location": "location", "Industry": "industries",
	"Organization Type": "org_types", "Work Mode": "work_mode", "Schedule": "schedule",
	"Resume": "resume",
}

// RawFromText turns the output of Text back into Normalize input, so a saved
// profile summary can be edited by hand and used again.
func RawFromText(text string) map[string]any {
	raw := make(map[string]any)
	for label, value := range ParseText(text) {
		if key, ok := rawKeys[label]; ok {
			raw[key] = value
			continue
		}

		switch label {
		case "Salary Range":
			value = strings.ReplaceAll(value, "$", "")
			switch {
			case strings.HasPrefix(value, "at least "):
				raw["salary_min"] = strings.TrimPrefix(value, "at least ")
			case strings.HasPrefix(value, "up to "):
				raw["salary_max"] = strings.TrimPrefix(value, "up to ")
			default:
				if lo, hi, ok := strings.Cut(value, " - "); ok {
					raw["salary_min"], raw["salary_max"] = strings.TrimSpace(lo), strings.TrimSpace(hi)
				}
			}
		case "Timeline":
			switch {
			case strings.HasPrefix(value, "from "):
				raw["start_date"] = strings.TrimPrefix(value, "from ")
			case strings.HasPrefix(value, "until "):
				raw["end_date"] = strings.TrimPrefix(value, "until ")
			default:
				if start, end, ok := strings.Cut(value, " to "); ok {
					raw["start_date"], raw["end_date"] = start, end
				}
			}
		}
	}
	return raw
}
