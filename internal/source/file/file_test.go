package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func write(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "listings.json5")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("writing listings: %v", err)
	}
	return path
}

func TestFetchArray(t *testing.T) {
	path := write(t, `[
		// comments and trailing commas are fine
		{title: "Analyst", company: {display_name: "Acme"}},
		{title: "Developer"},
	]`)

	records, err := New(path).Fetch(context.Background(), "ignored", "ignored", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 || records[0]["title"] != "Analyst" {
		t.Fatalf("unexpected records: %v", records)
	}
}

func TestFetchWrappedAndLimited(t *testing.T) {
	path := write(t, `{"results": [{"title": "A"}, {"title": "B"}, {"title": "C"}], "count": 3}`)

	records, err := New(path).Fetch(context.Background(), "", "", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	path = write(t, `{"items": [{"name": "hh"}]}`)
	records, err = New(path).Fetch(context.Background(), "", "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0]["name"] != "hh" {
		t.Fatalf("unexpected records: %v", records)
	}
}

func TestFetchErrors(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing.json")).Fetch(context.Background(), "", "", 0); err == nil {
		t.Fatalf("expected error for missing file")
	}

	if _, err := New(write(t, `not json`)).Fetch(context.Background(), "", "", 0); err == nil {
		t.Fatalf("expected error for malformed file")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(write(t, `[]`)).Fetch(ctx, "", "", 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
