package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/BihanDasgupta/CareerNodes/internal/filtering"
	"github.com/BihanDasgupta/CareerNodes/internal/issues"
	"github.com/BihanDasgupta/CareerNodes/internal/listing"
	"github.com/BihanDasgupta/CareerNodes/internal/pipeline"
	"github.com/BihanDasgupta/CareerNodes/internal/results"
)

func sample() Report {
	set := results.Aggregate([]results.ScoredListing{
		{Listing: listing.Listing{Index: 0, Title: "Analyst", Company: "Acme", Location: "Boston, MA", URL: "https://example.com/1"}, Score: 0.7, Explanation: "python match", Attributes: &listing.Attributes{Industry: "finance", WorkMode: "remote"}},
		{Listing: listing.Listing{Index: 1, Title: "Intern", Company: "Globex", Location: "Remote"}, Score: 0, Fallback: true},
	}, nil, nil, results.Options{})

	return FromResponse(&pipeline.Response{
		RequestID:  "req-1",
		Results:    set,
		Rejections: []filtering.Rejection{{Listing: listing.Listing{Index: 2, Title: "Chef"}, Filter: "skills", Reason: "no skill"}},
		Issues: []issues.Issue{
			issues.New(issues.StageScore, "#1", "timeout"),
			issues.New(issues.StageSource, "", "down"),
			issues.New(issues.StageScore, "#3", "quota"),
		},
	})
}

func write(t *testing.T, r Report, format Format, opts Options) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Write(&buf, r, format, opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return buf.String()
}

func expectContains(t *testing.T, out string, parts ...string) {
	t.Helper()
	for _, part := range parts {
		if !strings.Contains(out, part) {
			t.Fatalf("expected %q in:\n%s", part, out)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for input, expect := range map[string]Format{"": FormatTable, "JSON": FormatJSON, "markdown": FormatMarkdown, "md": FormatMarkdown} {
		got, err := ParseFormat(input)
		if err != nil {
			t.Fatalf("ParseFormat(%q): unexpected error: %v", input, err)
		}
		if got != expect {
			t.Fatalf("ParseFormat(%q) = %q, expected %q", input, got, expect)
		}
	}

	if _, err := ParseFormat("xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestWriteTable(t *testing.T) {
	out := write(t, sample(), FormatTable, Options{})

	lines := strings.Split(out, "\n")
	if !strings.HasPrefix(lines[0], "#") {
		t.Fatalf("missing header: %q", lines[0])
	}
	expectContains(t, lines[1], "0.700", "Analyst")
	expectContains(t, lines[2], "0.000*")
	expectContains(t, out, "1 filtered out, 2 score issue(s), 1 source issue(s)")
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("colors must be off")
	}
}

func TestWriteTableColors(t *testing.T) {
	out := write(t, sample(), FormatTable, Options{ColorEnabled: true, Limit: 1})
	if strings.Contains(out, "Intern") {
		t.Fatalf("limit not applied:\n%s", out)
	}
}

func TestWriteTableEmpty(t *testing.T) {
	if out := write(t, Report{}, FormatTable, Options{}); out != "No matching listings.\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestWriteJSON(t *testing.T) {
	out := write(t, sample(), FormatJSON, Options{})

	var decoded Report
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("decoding report: %v", err)
	}
	if decoded.RequestID != "req-1" || len(decoded.Results) != 2 || decoded.Results[0].Listing.Title != "Analyst" {
		t.Fatalf("unexpected results: %+v", decoded)
	}
	if len(decoded.Rejected) != 1 || len(decoded.Issues) != 3 {
		t.Fatalf("unexpected rejected/issues: %+v", decoded)
	}

	expectContains(t, write(t, Report{}, FormatJSON, Options{}), `"results": []`)
}

func TestWriteMarkdown(t *testing.T) {
	out := write(t, sample(), FormatMarkdown, Options{})

	expectContains(t, out,
		"1. **Analyst** (Acme), score 0.700",
		"URL: [Open listing](<https://example.com/1>)",
		"Details: finance; remote",
		"Why: python match",
		"### Issues",
		"- [source] down",
	)
	if strings.Count(out, "Details:") != 1 {
		t.Fatalf("listings without attributes must not print details:\n%s", out)
	}
}

func TestColorEnabled(t *testing.T) {
	var buf bytes.Buffer
	if !ColorEnabled(&buf, "always") || ColorEnabled(&buf, "never") || ColorEnabled(&buf, "auto") {
		t.Fatalf("unexpected color decisions")
	}
}
