package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/petasbytes/react-agent/internal/config"
	"github.com/petasbytes/react-agent/internal/provider"
	"github.com/petasbytes/react-agent/internal/runner"
	"github.com/petasbytes/react-agent/internal/telemetry"
	"github.com/petasbytes/react-agent/memory"
	"github.com/petasbytes/react-agent/tools"
)

const usage = "usage: agent [-repl] [-transcript path] [-env file] <query>"

func main() {
	// Set up graceful shutdown on Ctrl-C (SIGINT) / SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigch)
	go func() {
		<-sigch
		cancel()
	}()

	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// app is everything one process needs to answer queries.
type app struct {
	runner     *runner.Runner
	logger     *slog.Logger
	transcript string
	out        io.Writer
	errOut     io.Writer
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("agent", flag.ContinueOnError)
	fs.SetOutput(errOut)
	repl := fs.Bool("repl", false, "read questions from stdin until an empty line")
	transcript := fs.String("transcript", "", "write the last run's history to this JSON file")
	envFile := fs.String("env", ".env", "dotenv file loaded before reading the environment")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" && !*repl {
		fmt.Fprintln(errOut, usage)
		return 1
	}

	if err := config.LoadDotEnv(*envFile); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return 1
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(errOut, "config: %v\n", err)
		return 1
	}
	logger := newLogger(errOut, cfg.LogLevel)

	client, err := provider.New(cfg, nil)
	if err != nil {
		logger.Error("provider setup failed", "err", err)
		return 1
	}

	rag := tools.NewRagSearch(cfg.RAGIndexDir)
	defer rag.Close()
	web := tools.NewWebSearch(cfg.SerperAPIKey,
		tools.WithEndpoint(cfg.SerperURL),
		tools.WithHTTPClient(&http.Client{Timeout: cfg.WebTimeout}),
	)
	reg := tools.NewRegistry(rag, web)

	sink := telemetry.NewSink(cfg.ObserveJSON, cfg.ArtifactsDir)
	if sink != nil {
		logger.Debug("telemetry enabled", "path", sink.Path())
	}

	a := &app{
		runner: runner.New(client, reg,
			runner.WithMaxTurns(cfg.MaxTurns),
			runner.WithLogger(logger),
			runner.WithEvents(sink),
		),
		logger:     logger,
		transcript: *transcript,
		out:        out,
		errOut:     errOut,
	}
	logger.Debug("agent ready", "provider", cfg.Provider, "model", cfg.Model, "tools", reg.Names())

	if *repl {
		return a.repl(ctx, in)
	}
	answer, err := a.ask(ctx, query)
	if err != nil {
		logger.Error("run failed", "err", err)
		return 1
	}
	fmt.Fprintln(out, answer)
	return 0
}

func (a *app) ask(ctx context.Context, query string) (string, error) {
	outcome, err := a.runner.Converse(ctx, query)
	if a.transcript != "" && len(outcome.History) > 0 {
		if werr := memory.WriteTranscript(a.transcript, outcome.History); werr != nil {
			a.logger.Warn("transcript not written", "path", a.transcript, "err", werr)
		}
	}
	if err != nil {
		return "", err
	}
	return outcome.Answer, nil
}

func (a *app) repl(ctx context.Context, in io.Reader) int {
	fmt.Fprintln(a.out, "Hi, I'm your research assistant. Ask me about game-playing AI from Deep Blue to AlphaGo, or anything else.")
	fmt.Fprintln(a.out, "Enter a question; an empty line or Ctrl-C exits.")
	fmt.Fprintln(a.out)

	// stdin reader goroutine -> lines into channel
	scanner := bufio.NewScanner(in)
	inputCh := make(chan string)
	go func() {
		defer close(inputCh)
		for scanner.Scan() {
			select {
			case inputCh <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(a.out, ">>> ")
		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			fmt.Fprintln(a.out, "\nBye.")
			return 0
		case line, ok = <-inputCh:
			if !ok {
				fmt.Fprintln(a.out, "\nBye.")
				return 0
			}
		}
		query := strings.TrimSpace(line)
		if query == "" {
			fmt.Fprintln(a.out, "Bye.")
			return 0
		}

		answer, err := a.ask(ctx, query)
		if err != nil {
			if ctx.Err() != nil {
				fmt.Fprintln(a.out, "\nBye.")
				return 0
			}
			fmt.Fprintf(a.errOut, "error: %v\n", err)
			continue
		}
		fmt.Fprintf(a.out, "Answer: %s\n\n", answer)
	}
}
