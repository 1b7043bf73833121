package rag

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

// defaultBatchSize is the number of documents per index batch.
const defaultBatchSize = 256

func newIndexMapping() *mapping.IndexMappingImpl {
	contents := bleve.NewTextFieldMapping()
	contents.Store = true

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("id", bleve.NewKeywordFieldMapping())
	doc.AddFieldMappingsAt("contents", contents)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	return m
}

// BuildIndex writes docs into a fresh index at indexDir, replacing any index
// already there. It returns the number of documents indexed.
func BuildIndex(ctx context.Context, docs []Document, indexDir string) (int, error) {
	if len(docs) == 0 {
		return 0, ErrNoDocuments
	}
	if err := os.RemoveAll(indexDir); err != nil {
		return 0, fmt.Errorf("clear index dir: %w", err)
	}

	idx, err := bleve.New(indexDir, newIndexMapping())
	if err != nil {
		return 0, fmt.Errorf("create index: %w", err)
	}
	defer idx.Close()

	batch := idx.NewBatch()
	n := 0
	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if err := batch.Index(d.ID, d); err != nil {
			return n, fmt.Errorf("index %s: %w", d.ID, err)
		}
		if size := batch.Size(); size >= defaultBatchSize {
			if err := idx.Batch(batch); err != nil {
				return n, fmt.Errorf("flush batch: %w", err)
			}
			n += size
			batch.Reset()
		}
	}
	if size := batch.Size(); size > 0 {
		if err := idx.Batch(batch); err != nil {
			return n, fmt.Errorf("flush batch: %w", err)
		}
		n += size
	}
	return n, nil
}
