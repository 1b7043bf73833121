package rag

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

// Hit is one ranked search result.
type Hit struct {
	ID       string  `json:"id"`
	Score    float64 `json:"score"`
	Contents string  `json:"contents"`
}

// Searcher opens the index lazily on first use and keeps it open; bleve
// indexes are safe for concurrent searches. A failed open is retried on the
// next call, so building the index after startup works.
type Searcher struct {
	dir string

	mu  sync.Mutex
	idx bleve.Index
}

// NewSearcher returns a searcher over the index at dir. No I/O happens here.
func NewSearcher(dir string) *Searcher {
	return &Searcher{dir: dir}
}

// Dir returns the index directory.
func (s *Searcher) Dir() string { return s.dir }

func (s *Searcher) index() (bleve.Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx != nil {
		return s.idx, nil
	}

	fi, err := os.Stat(s.dir)
	if err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("%w at %s", ErrIndexNotFound, s.dir)
	}
	idx, err := bleve.OpenUsing(s.dir, map[string]interface{}{"read_only": true})
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", s.dir, err)
	}
	s.idx = idx
	return idx, nil
}

// Search returns up to k hits for query ordered by descending score.
func (s *Searcher) Search(ctx context.Context, query string, k int) ([]Hit, error) {
	idx, err := s.index()
	if err != nil {
		return nil, err
	}
	if k <= 0 {
		return []Hit{}, nil
	}

	req := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(query), k, 0, false)
	req.Fields = []string{"contents"}
	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		contents, _ := h.Fields["contents"].(string)
		hits = append(hits, Hit{ID: h.ID, Score: h.Score, Contents: contents})
	}
	return hits, nil
}

// Close releases the index if it was opened.
func (s *Searcher) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx == nil {
		return nil
	}
	err := s.idx.Close()
	s.idx = nil
	return err
}
