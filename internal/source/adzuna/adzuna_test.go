package adzuna

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := New("id", "key", "gb", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.APIURL = server.URL
	return c
}

func results(n, offset int) []map[string]any {
	out := make([]map[string]any, n)
	for i := range out {
		out[i] = map[string]any{"id": strconv.Itoa(offset + i), "title": "Job"}
	}
	return out
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := New("", "key", "", nil); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}

	c, err := New("id", "key", "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.country != defaultCountry {
		t.Fatalf("expected default country, got %q", c.country)
	}
}

func TestFetchSendsQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/gb/search/1" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		expect := map[string]string{
			"app_id":           "id",
			"app_key":          "key",
			"what":             "data analyst",
			"where":            "Boston",
			"results_per_page": "5",
		}
		for key, value := range expect {
			if q.Get(key) != value {
				t.Errorf("%s: expected %q, got %q", key, value, q.Get(key))
			}
		}

		_ = json.NewEncoder(w).Encode(map[string]any{"results": results(2, 0), "count": 2})
	})

	records, err := c.Fetch(context.Background(), "data analyst", "Boston", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 || records[0]["id"] != "0" {
		t.Fatalf("unexpected records: %v", records)
	}
}

func TestFetchPagesUntilLimit(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		page, _ := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/gb/search/"))
		size, _ := strconv.Atoi(r.URL.Query().Get("results_per_page"))
		_ = json.NewEncoder(w).Encode(map[string]any{"results": results(size, (page-1)*pageSize), "count": 500})
	})

	records, err := c.Fetch(context.Background(), "go", "", 70)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 70 {
		t.Fatalf("expected 70 records, got %d", len(records))
	}
	if n := calls.Load(); n != 2 {
		t.Fatalf("expected 2 page requests, got %d", n)
	}
	if records[50]["id"] != "50" {
		t.Fatalf("second page out of order: %v", records[50])
	}
}

func TestFetchStopsOnShortPage(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{"results": results(3, 0), "count": 3})
	})

	records, err := c.Fetch(context.Background(), "go", "", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected 1 page request, got %d", n)
	}
}

func TestFetchReportsBadStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	})

	records, err := c.Fetch(context.Background(), "go", "", 10)
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected 401 error, got %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("unexpected records: %v", records)
	}
}
