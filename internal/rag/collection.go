// Package rag builds and searches the on-disk full-text index behind the
// rag_search tool.
//
// Pipeline:
//
//	raw_docs/*.txt -> collection/<stem>.json {id, contents} -> index/
//
// The collection is the source of truth for indexing; the index directory can
// be rebuilt from it at any time.
package rag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrNoDocuments is returned when a source or collection directory holds nothing to index.
	ErrNoDocuments = errors.New("no documents found")

	// ErrIndexNotFound is returned when the index directory does not exist.
	ErrIndexNotFound = errors.New("rag index not found")
)

// Document is one collection entry. ID is the source file stem.
type Document struct {
	ID       string `json:"id"`
	Contents string `json:"contents"`
}

// defaultThreads bounds concurrent file reads when threads <= 0.
const defaultThreads = 4

// BuildCollection converts every *.txt file in srcDir into a JSON document
// under collectionDir and returns the documents sorted by ID. Invalid UTF-8
// is replaced rather than rejected.
func BuildCollection(ctx context.Context, srcDir, collectionDir string, threads int) ([]Document, error) {
	fi, err := os.Stat(srcDir)
	if err != nil {
		return nil, fmt.Errorf("input dir: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("input dir %s: not a directory", srcDir)
	}

	paths, err := filepath.Glob(filepath.Join(srcDir, "*.txt"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no .txt files under %s", ErrNoDocuments, srcDir)
	}
	sort.Strings(paths)

	if err := os.MkdirAll(collectionDir, 0o755); err != nil {
		return nil, fmt.Errorf("collection dir: %w", err)
	}

	if threads <= 0 {
		threads = defaultThreads
	}
	docs := make([]Document, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			stem := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
			doc := Document{ID: stem, Contents: strings.ToValidUTF8(string(b), "�")}
			out, err := json.Marshal(doc)
			if err != nil {
				return err
			}
			if err := os.WriteFile(filepath.Join(collectionDir, stem+".json"), out, 0o644); err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// LoadCollection reads every *.json document in dir, sorted by file name.
func LoadCollection(dir string) ([]Document, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	docs := make([]Document, 0, len(paths))
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		var d Document
		if err := json.Unmarshal(b, &d); err != nil {
			return nil, fmt.Errorf("decode %s: %w", p, err)
		}
		if d.ID == "" {
			d.ID = strings.TrimSuffix(filepath.Base(p), ".json")
		}
		docs = append(docs, d)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: empty collection %s", ErrNoDocuments, dir)
	}
	return docs, nil
}
