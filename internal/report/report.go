// Package report renders match results for people and for other programs.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/muesli/termenv"

	"github.com/BihanDasgupta/CareerNodes/internal/issues"
	"github.com/BihanDasgupta/CareerNodes/internal/listing"
	"github.com/BihanDasgupta/CareerNodes/internal/pipeline"
	"github.com/BihanDasgupta/CareerNodes/internal/results"
)

type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
)

const (
	colorHigh = "2"
	colorMid  = "3"
	colorLow  = "1"
	linkColor = "#87CEEB"
)

// ParseFormat accepts the format names and "markdown"; empty means table.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatMarkdown), "markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown output format %q", value)
	}
}

// ColorEnabled resolves a color mode ("auto", "always", "never") for w. Auto
// honours NO_COLOR and the detected terminal profile.
func ColorEnabled(w io.Writer, mode string) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "always":
		return true
	case "never":
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return termenv.NewOutput(w).ColorProfile() != termenv.Ascii
}

type Options struct {
	ColorEnabled bool
	// Limit caps the rendered results; zero renders all of them.
	Limit int
}

type Rejected struct {
	Listing string `json:"listing"`
	Title   string `json:"title"`
	Company string `json:"company"`
	Filter  string `json:"filter"`
	Reason  string `json:"reason"`
}

// Report is the rendered view of one pipeline response.
type Report struct {
	RequestID  string                  `json:"request_id"`
	Degraded   bool                    `json:"degraded"`
	Normalized bool                    `json:"normalized"`
	Results    []results.ScoredListing `json:"results"`
	Rejected   []Rejected              `json:"rejected,omitempty"`
	Issues     []issues.Issue          `json:"issues,omitempty"`
}

func FromResponse(resp *pipeline.Response) Report {
	r := Report{
		RequestID:  resp.RequestID,
		Degraded:   resp.Results.Degraded(),
		Normalized: resp.Results.Normalized(),
		Results:    resp.Results.Items(),
		Issues:     resp.Issues,
	}
	for _, rej := range resp.Rejections {
		r.Rejected = append(r.Rejected, Rejected{
			Listing: rej.Listing.ID(),
			Title:   rej.Listing.Title,
			Company: rej.Listing.Company,
			Filter:  rej.Filter,
			Reason:  rej.Reason,
		})
	}
	return r
}

func Write(w io.Writer, r Report, format Format, opts Options) error {
	if opts.Limit > 0 && len(r.Results) > opts.Limit {
		r.Results = r.Results[:opts.Limit]
	}

	switch format {
	case FormatJSON:
		return writeJSON(w, r)
	case FormatMarkdown:
		return writeMarkdown(w, r)
	default:
		return writeTable(w, r, opts)
	}
}

func writeJSON(w io.Writer, r Report) error {
	if r.Results == nil {
		r.Results = []results.ScoredListing{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func writeTable(w io.Writer, r Report, opts Options) error {
	if len(r.Results) == 0 {
		fmt.Fprintln(w, "No matching listings.")
		return writeIssueSummary(w, r)
	}

	output := termenv.NewOutput(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tscore\ttitle\tcompany\tlocation\turl")
	for i, item := range r.Results {
		score := FormatScore(item)
		url := orDash(item.Listing.URL)
		if opts.ColorEnabled {
			score = output.String(score).Foreground(output.Color(scoreColor(item.Score))).String()
			if item.Listing.URL != "" {
				url = output.String(url).Foreground(output.Color(linkColor)).String()
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", i+1, score, item.Listing.Title, item.Listing.Company, item.Listing.Location, url)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if r.Degraded {
		fmt.Fprintln(w, "\nScoring was unavailable; results are ordered by similarity.")
	}
	return writeIssueSummary(w, r)
}

func writeMarkdown(w io.Writer, r Report) error {
	if len(r.Results) == 0 {
		if _, err := fmt.Fprintln(w, "No matching listings."); err != nil {
			return err
		}
	}
	for i, item := range r.Results {
		l := item.Listing
		lines := []string{
			fmt.Sprintf("%d. **%s** (%s), score %s", i+1, l.Title, l.Company, FormatScore(item)),
			fmt.Sprintf("   Location: %s", l.Location),
		}
		if l.URL != "" {
			lines = append(lines, fmt.Sprintf("   URL: [Open listing](<%s>)", l.URL))
		}
		if l.SalaryMin > 0 || l.SalaryMax > 0 {
			lines = append(lines, fmt.Sprintf("   Salary: %d - %d", l.SalaryMin, l.SalaryMax))
		}
		if details := attributeDetails(item.Attributes); details != "" {
			lines = append(lines, fmt.Sprintf("   Details: %s", details))
		}
		if item.Explanation != "" {
			lines = append(lines, fmt.Sprintf("   Why: %s", item.Explanation))
		}
		for _, line := range lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}

	if len(r.Issues) > 0 {
		fmt.Fprintln(w, "\n### Issues")
		for _, issue := range r.Issues {
			fmt.Fprintf(w, "- %s\n", issue)
		}
	}
	return nil
}

// writeIssueSummary prints one line with issue counts per stage.
func writeIssueSummary(w io.Writer, r Report) error {
	parts := []string{}
	if len(r.Rejected) > 0 {
		parts = append(parts, fmt.Sprintf("%d filtered out", len(r.Rejected)))
	}
	if counts := CountByStage(r.Issues); len(counts) > 0 {
		stages := make([]string, 0, len(counts))
		for stage := range counts {
			stages = append(stages, stage)
		}
		sort.Strings(stages)
		for _, stage := range stages {
			parts = append(parts, fmt.Sprintf("%d %s issue(s)", counts[stage], stage))
		}
	}
	if len(parts) == 0 {
		return nil
	}
	_, err := fmt.Fprintf(w, "\n%s\n", strings.Join(parts, ", "))
	return err
}

func CountByStage(found []issues.Issue) map[string]int {
	counts := make(map[string]int)
	for _, issue := range found {
		counts[issue.Stage]++
	}
	return counts
}

// FormatScore prints the score with a trailing * when it is a fallback value.
func FormatScore(item results.ScoredListing) string {
	s := fmt.Sprintf("%.3f", item.Score)
	if item.Fallback {
		s += "*"
	}
	return s
}

func scoreColor(score float64) string {
	switch {
	case score >= 0.7:
		return colorHigh
	case score >= 0.4:
		return colorMid
	default:
		return colorLow
	}
}

func attributeDetails(attrs *listing.Attributes) string {
	if attrs == nil {
		return ""
	}
	var parts []string
	for _, v := range []string{attrs.Industry, attrs.WorkMode, attrs.Schedule} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, "; ")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
