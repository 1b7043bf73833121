package tools_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/petasbytes/react-agent/internal/rag"
	"github.com/petasbytes/react-agent/tools"
)

func TestRagSearch_MissingIndex_ConfigError(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "no-index")
	tool := tools.NewRagSearch(dir)
	res, err := tool.Invoke(context.Background(), map[string]any{"query": "deep blue"})
	if err != nil {
		t.Fatalf("missing index must not be a hard fault: %v", err)
	}
	if res.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(res.Error, dir) {
		t.Fatalf("error should mention index path: %q", res.Error)
	}
}

func TestRagSearch_ReturnsHits(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "index")
	docs := []rag.Document{
		{ID: "deepblue", Contents: "Deep Blue defeated Kasparov at chess."},
		{ID: "alphago", Contents: "AlphaGo defeated Lee Sedol at Go."},
		{ID: "alphazero", Contents: "AlphaZero taught itself chess, shogi and Go."},
		{ID: "stockfish", Contents: "Stockfish is an open source chess engine."},
	}
	if _, err := rag.BuildIndex(context.Background(), docs, dir); err != nil {
		t.Fatalf("build index: %v", err)
	}
	tool := tools.NewRagSearch(dir)
	defer tool.Close()

	res, err := tool.Invoke(context.Background(), map[string]any{"query": "chess"})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if !res.Success {
		t.Fatalf("unexpected failure: %s", res.Error)
	}
	hits, ok := res.Output.([]rag.Hit)
	if !ok {
		t.Fatalf("output type: %T", res.Output)
	}
	if len(hits) != 3 {
		t.Fatalf("default top_k is 3, got %d hits", len(hits))
	}

	res, _ = tool.Invoke(context.Background(), map[string]any{"query": "Lee Sedol", "top_k": float64(1)})
	hits, _ = res.Output.([]rag.Hit)
	if len(hits) != 1 || hits[0].ID != "alphago" {
		t.Fatalf("want single alphago hit, got %+v", hits)
	}
}

func TestRagSearch_MissingQuery(t *testing.T) {
	tool := tools.NewRagSearch(t.TempDir())
	res, err := tool.Invoke(context.Background(), map[string]any{"input": "not json"})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if res.Success || !strings.Contains(res.Error, "query") {
		t.Fatalf("expected query error, got %+v", res)
	}
}
