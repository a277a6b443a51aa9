package coerce

import (
	"encoding/json"
	"math"
	"testing"
)

func TestFloat(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input any
		want  float64
		isNaN bool
	}{
		{name: "float", input: 0.75, want: 0.75},
		{name: "int", input: 3, want: 3},
		{name: "string", input: " 0.8 ", want: 0.8},
		{name: "money", input: "$45,000", want: 45000},
		{name: "json number", input: json.Number("12.5"), want: 12.5},
		{name: "garbage", input: "high", isNaN: true},
		{name: "empty", input: "", isNaN: true},
		{name: "nil", input: nil, isNaN: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Float(tc.input)
			if tc.isNaN {
				if !math.IsNaN(got) {
					t.Fatalf("expected NaN, got %v", got)
				}
				return
			}
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestStrings(t *testing.T) {
	got := Strings("Python, SQL,, go ")
	if len(got) != 3 || got[0] != "Python" || got[1] != "SQL" || got[2] != "go" {
		t.Fatalf("unexpected split: %#v", got)
	}

	got = Strings([]any{"a", 2, " "})
	if len(got) != 2 || got[1] != "2" {
		t.Fatalf("unexpected list: %#v", got)
	}

	if Strings(nil) != nil {
		t.Fatalf("expected nil for nil input")
	}
}

func TestBool(t *testing.T) {
	if v, ok := Bool("yes"); !ok || !v {
		t.Fatalf("expected yes to be true")
	}
	if v, ok := Bool(false); !ok || v {
		t.Fatalf("expected false")
	}
	if _, ok := Bool("maybe"); ok {
		t.Fatalf("expected maybe to be unparseable")
	}
}

func TestField(t *testing.T) {
	raw := map[string]any{"company": map[string]any{"display_name": "Acme"}}
	if got := Field(raw, "company", "display_name"); got != "Acme" {
		t.Fatalf("unexpected field: %v", got)
	}
	if got := Field(raw, "company", "missing", "deeper"); got != nil {
		t.Fatalf("expected nil for missing path, got %v", got)
	}
}
