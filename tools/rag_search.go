package tools

import (
	"context"
	"errors"

	"github.com/invopop/jsonschema"
	"github.com/petasbytes/react-agent/internal/rag"
)

type RagSearchInput struct {
	Query string `json:"query" jsonschema_description:"Natural language query to retrieve supporting passages."`
	TopK  int    `json:"top_k,omitempty" jsonschema:"default=3" jsonschema_description:"Number of hits to return"`
}

// defaultRagTopK is used when top_k is missing or <= 0.
const defaultRagTopK = 3

var RagSearchInputSchema = GenerateSchema[RagSearchInput]()

// RagSearch searches the local full-text index built by cmd/buildindex.
type RagSearch struct {
	searcher *rag.Searcher
}

// NewRagSearch returns the rag_search tool over the index at indexDir. The
// index is opened on first use, so a missing directory is reported to the
// model rather than failing startup.
func NewRagSearch(indexDir string) *RagSearch {
	return &RagSearch{searcher: rag.NewSearcher(indexDir)}
}

func (t *RagSearch) Name() string { return "rag_search" }

func (t *RagSearch) Description() string {
	return "Search the local RAG index built from .txt files."
}

func (t *RagSearch) Parameters() *jsonschema.Schema { return RagSearchInputSchema }

// Invoke returns up to top_k hits as [{id, score, contents}].
func (t *RagSearch) Invoke(ctx context.Context, args map[string]any) (Result, error) {
	in, err := DecodeArgs[RagSearchInput](args)
	if err != nil {
		return Failf("%v", err), nil
	}
	if in.Query == "" {
		return Failf("query is required"), nil
	}
	k := in.TopK
	if k <= 0 {
		k = defaultRagTopK
	}

	hits, err := t.searcher.Search(ctx, in.Query, k)
	if errors.Is(err, rag.ErrIndexNotFound) {
		return Failf("RAG index not found at %s. Run cmd/buildindex first.", t.searcher.Dir()), nil
	}
	if err != nil {
		return Result{}, err
	}
	return OK(hits), nil
}

// Close releases the underlying index.
func (t *RagSearch) Close() error { return t.searcher.Close() }
