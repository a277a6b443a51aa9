package source

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/BihanDasgupta/CareerNodes/internal/issues"
)

type stubSource struct {
	records []map[string]any
	err     error
}

func (s stubSource) Fetch(context.Context, string, string, int) ([]map[string]any, error) {
	return s.records, s.err
}

func (stubSource) Name() string { return "stub" }

func TestCollectCapsLimit(t *testing.T) {
	src := stubSource{records: []map[string]any{{"id": "1"}, {"id": "2"}, {"id": "3"}}}

	records, found := Collect(context.Background(), src, "go", "", 2, zap.NewNop())
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if len(found) != 0 {
		t.Fatalf("unexpected issues: %v", found)
	}
}

func TestCollectTurnsErrorIntoIssue(t *testing.T) {
	src := stubSource{records: []map[string]any{{"id": "1"}}, err: errors.New("page 2: bad status")}

	records, found := Collect(context.Background(), src, "go", "", 0, nil)
	if len(records) != 1 {
		t.Fatalf("records fetched before the error must be kept, got %d", len(records))
	}
	if len(found) != 1 || found[0].Stage != issues.StageSource {
		t.Fatalf("expected one source issue, got %v", found)
	}
	if !strings.Contains(found[0].Message, "stub: page 2") {
		t.Fatalf("unexpected message %q", found[0].Message)
	}
}
