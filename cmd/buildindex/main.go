// Command buildindex turns a folder of .txt files into the full-text index
// read by the rag_search tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"

	"github.com/petasbytes/react-agent/internal/rag"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("buildindex", flag.ContinueOnError)
	fs.SetOutput(errOut)
	input := fs.String("input", "rag/raw_docs", "folder of raw .txt files")
	collection := fs.String("collection", "rag/json_collection", "where to write the JSON collection documents")
	index := fs.String("index", "rag/index", "output index directory")
	threads := fs.Int("threads", 4, "files read in parallel")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger := slog.New(tint.NewHandler(errOut, &tint.Options{TimeFormat: "15:04:05.000"}))

	written, err := rag.BuildCollection(ctx, *input, *collection, *threads)
	if err != nil {
		logger.Error("collection build failed", "input", *input, "err", err)
		return 1
	}
	logger.Info("collection written", "docs", len(written), "dir", *collection)

	docs, err := rag.LoadCollection(*collection)
	if err != nil {
		logger.Error("collection load failed", "dir", *collection, "err", err)
		return 1
	}
	n, err := rag.BuildIndex(ctx, docs, *index)
	if err != nil {
		logger.Error("index build failed", "index", *index, "err", err)
		return 1
	}
	fmt.Fprintf(out, "Indexed %d documents into %s\n", n, *index)
	return 0
}
