package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"funmarket/internal/domain"
	"funmarket/internal/search"
)

// loadSnapshot reads either an object keyed by kind
// ({"venues":[...],"events":[...]}) or a flat array whose records carry a
// "kind" field. Malformed records are dropped.
func loadSnapshot(stdin io.Reader, path string, norm search.Normalizer) ([]domain.Listing, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var raws []map[string]any
		if err := json.Unmarshal(b, &raws); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		var out []domain.Listing
		for _, raw := range raws {
			s, _ := raw["kind"].(string)
			kind, ok := domain.ParseKind(s)
			if !ok {
				continue
			}
			ls, _ := norm.NormalizeAll(kind, []map[string]any{raw})
			out = append(out, ls...)
		}
		return out, nil
	}

	var byKind map[string][]map[string]any
	if err := json.Unmarshal(b, &byKind); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	var out []domain.Listing
	for _, kind := range domain.Kinds {
		raws := byKind[string(kind)+"s"]
		if raws == nil {
			raws = byKind[string(kind)]
		}
		ls, _ := norm.NormalizeAll(kind, raws)
		out = append(out, ls...)
	}
	return out, nil
}
