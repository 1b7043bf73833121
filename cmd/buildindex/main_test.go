package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/petasbytes/react-agent/internal/rag"
)

func TestRun_BuildsSearchableIndex(t *testing.T) {
	root := t.TempDir()
	input := filepath.Join(root, "raw")
	if err := os.MkdirAll(input, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, body := range map[string]string{
		"deepblue.txt": "Deep Blue beat Garry Kasparov in 1997.",
		"alphago.txt":  "AlphaGo beat Lee Sedol in 2016.",
		"notes.md":     "not indexed",
	} {
		if err := os.WriteFile(filepath.Join(input, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	collection := filepath.Join(root, "collection")
	index := filepath.Join(root, "index")

	var stdout, stderr bytes.Buffer
	args := []string{"-input", input, "-collection", collection, "-index", index, "-threads", "2"}
	if code := run(context.Background(), args, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Indexed 2 documents") {
		t.Fatalf("stdout: %q", stdout.String())
	}

	s := rag.NewSearcher(index)
	defer s.Close()
	hits, err := s.Search(context.Background(), "Kasparov", 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "deepblue" {
		t.Fatalf("hits: %+v", hits)
	}
}

func TestRun_MissingInputFails(t *testing.T) {
	root := t.TempDir()
	var stdout, stderr bytes.Buffer
	args := []string{"-input", filepath.Join(root, "nope"), "-collection", filepath.Join(root, "c"), "-index", filepath.Join(root, "i")}
	if code := run(context.Background(), args, &stdout, &stderr); code == 0 {
		t.Fatal("expected non-zero exit")
	}
}

func TestRun_NoTxtFilesFails(t *testing.T) {
	root := t.TempDir()
	var stdout, stderr bytes.Buffer
	args := []string{"-input", root, "-collection", filepath.Join(root, "c"), "-index", filepath.Join(root, "i")}
	if code := run(context.Background(), args, &stdout, &stderr); code == 0 {
		t.Fatal("expected non-zero exit")
	}
	if !strings.Contains(stderr.String(), "no documents") {
		t.Fatalf("stderr should explain: %q", stderr.String())
	}
}
