package listing

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mitchellh/mapstructure"

	"github.com/BihanDasgupta/CareerNodes/internal/coerce"
	"github.com/BihanDasgupta/CareerNodes/internal/issues"
)

// rawListing covers the Adzuna record shape and the hh.ru vacancy shape.
type rawListing struct {
	ID           any `mapstructure:"id"`
	Title        any `mapstructure:"title"`
	Name         any `mapstructure:"name"`
	Company      any `mapstructure:"company"`
	Employer     any `mapstructure:"employer"`
	Description  any `mapstructure:"description"`
	Snippet      any `mapstructure:"snippet"`
	Location     any `mapstructure:"location"`
	Area         any `mapstructure:"area"`
	SalaryMin    any `mapstructure:"salary_min"`
	SalaryMax    any `mapstructure:"salary_max"`
	Salary       any `mapstructure:"salary"`
	RedirectURL  any `mapstructure:"redirect_url"`
	AlternateURL any `mapstructure:"alternate_url"`
	URL          any `mapstructure:"url"`
}

// Normalize maps one raw record. ok is false when the record has neither a title
// nor a description and cannot be scored.
func Normalize(raw map[string]any) (l Listing, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			l, ok = Listing{}, false
		}
	}()

	var in rawListing
	if err := mapstructure.Decode(raw, &in); err != nil {
		return Listing{}, false
	}

	title := firstNonEmpty(coerce.String(in.Title), coerce.String(in.Name))
	description := stripHTML(firstNonEmpty(coerce.String(in.Description), snippetText(in.Snippet)))
	if title == "" && description == "" {
		return Listing{}, false
	}

	l = Listing{
		SourceID:    coerce.String(in.ID),
		Title:       orDefault(title, UnknownTitle),
		Company:     orDefault(firstNonEmpty(nameOf(in.Company), nameOf(in.Employer)), UnknownCompany),
		Description: description,
		Location:    orDefault(firstNonEmpty(nameOf(in.Location), nameOf(in.Area)), UnknownLocation),
		URL:         firstNonEmpty(coerce.String(in.RedirectURL), coerce.String(in.AlternateURL), urlOf(in.URL)),
	}

	l.SalaryMin = salaryBound(in.SalaryMin, in.Salary, "from")
	l.SalaryMax = salaryBound(in.SalaryMax, in.Salary, "to")
	if l.SalaryMax != 0 && l.SalaryMin > l.SalaryMax {
		l.SalaryMin, l.SalaryMax = l.SalaryMax, l.SalaryMin
	}

	return l, true
}

// NormalizeAll keeps usable records in fetch order and sets Index accordingly.
// Dropped records are reported, never raised.
func NormalizeAll(raws []map[string]any) ([]Listing, []issues.Issue) {
	listings := make([]Listing, 0, len(raws))
	var found []issues.Issue

	for i, raw := range raws {
		l, ok := Normalize(raw)
		if !ok {
			found = append(found, issues.New(issues.StageListing, coerce.String(raw["id"]),
				"dropped record %d: no title and no description", i))
			continue
		}
		l.Index = len(listings)
		listings = append(listings, l)
	}

	return listings, found
}

// nameOf reads plain strings and {display_name}/{name} objects.
func nameOf(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case map[string]any:
		return firstNonEmpty(coerce.String(val["display_name"]), coerce.String(val["name"]))
	default:
		return ""
	}
}

func urlOf(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func snippetText(v any) string {
	m, ok := v.(map[string]any)
	if !ok {
		return coerce.String(v)
	}
	parts := []string{coerce.String(m["requirement"]), coerce.String(m["responsibility"])}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// salaryBound reads a flat bound or the nested hh.ru salary object; 0 when absent.
func salaryBound(flat, nested any, key string) int {
	if n, ok := coerce.Int(flat); ok && n > 0 {
		return n
	}
	if m, ok := nested.(map[string]any); ok {
		if n, ok := coerce.Int(m[key]); ok && n > 0 {
			return n
		}
	}
	return 0
}

func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<>&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	doc.Find("br, p, li").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml(" ")
	})
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
