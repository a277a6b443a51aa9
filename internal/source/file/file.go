// Package file reads raw listings from a local JSON or JSON5 file, either an
// array of records or an object with a "results" or "items" array.
package file

import (
	"context"
	"fmt"
	"os"

	"github.com/yosuke-furukawa/json5/encoding/json5"
)

type Source struct {
	path string
}

func New(path string) *Source {
	return &Source{path: path}
}

func (s *Source) Name() string { return "file" }

// Fetch ignores query and location; the candidate filter narrows the records.
func (s *Source) Fetch(ctx context.Context, _, _ string, limit int) ([]map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	records, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", s.path, err)
	}

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func decode(data []byte) ([]map[string]any, error) {
	var list []map[string]any
	if err := json5.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Results []map[string]any `json:"results"`
		Items   []map[string]any `json:"items"`
	}
	if err := json5.Unmarshal(data, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Results != nil {
		return wrapped.Results, nil
	}
	return wrapped.Items, nil
}
