// Command parley is the voice-assistant brain: it answers user
// utterances with a language model, consulting a MongoDB document
// store and a TF-IDF retrieval corpus when needed. Speech capture and
// synthesis live in separate front ends; this binary speaks text.
//
// Usage:
//
//	parley chat --config parley.yaml
//	parley ask "who is employee 1223?"
//	parley ingest
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"golang.org/x/term"

	"github.com/parley-ai/parley/pkg/agent"
	"github.com/parley-ai/parley/pkg/config"
	"github.com/parley-ai/parley/pkg/llms"
	"github.com/parley-ai/parley/pkg/logger"
	"github.com/parley-ai/parley/pkg/retrieval"
	"github.com/parley-ai/parley/pkg/store"
	"github.com/parley-ai/parley/pkg/tools"
)

// CLI defines the command-line interface.
type CLI struct {
	Chat    ChatCmd    `cmd:"" default:"1" help:"Interactive chat loop on stdin."`
	Ask     AskCmd     `cmd:"" help:"Answer a single utterance and exit."`
	Ingest  IngestCmd  `cmd:"" help:"Build the retrieval corpus from the document store."`
	Version VersionCmd `cmd:"" help:"Show version information."`

	Config    string `short:"c" help:"Path to config file." type:"path"`
	EnvFile   string `help:"Path to .env file." default:".env"`
	LogLevel  string `help:"Log level (debug, info, warn, error)." default:"info"`
	LogFile   string `help:"Log file path (empty = stderr)."`
	LogFormat string `help:"Log format (simple or verbose)." default:"simple"`
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(cli *CLI) error {
	version := "dev"
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			version = info.Main.Version
		}
	}
	fmt.Printf("parley version %s\n", version)
	return nil
}

// ChatCmd runs a line-oriented conversation loop. It stands in for the
// voice front end: whatever produces utterance text can drive it.
type ChatCmd struct{}

func (c *ChatCmd) Run(cli *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}

	brain, cleanup := buildAgent(ctx, cfg)
	defer cleanup()

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		fmt.Println("parley is listening. Type your question, or 'exit' to quit.")
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if interactive {
			fmt.Print("you> ")
		}
		if !scanner.Scan() {
			break
		}
		utterance := strings.TrimSpace(scanner.Text())
		if utterance == "" {
			continue
		}
		if utterance == "exit" || utterance == "quit" {
			break
		}

		answer := brain.Answer(ctx, utterance)
		if interactive {
			fmt.Printf("parley> %s\n", answer)
		} else {
			fmt.Println(answer)
		}

		if ctx.Err() != nil {
			break
		}
	}
	return scanner.Err()
}

// AskCmd answers one utterance and exits.
type AskCmd struct {
	Utterance []string `arg:"" required:"" help:"The question to answer."`
}

func (c *AskCmd) Run(cli *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}

	brain, cleanup := buildAgent(ctx, cfg)
	defer cleanup()

	fmt.Println(brain.Answer(ctx, strings.Join(c.Utterance, " ")))
	return nil
}

// IngestCmd rebuilds the corpus artifacts, or with --check just
// verifies the store connection.
type IngestCmd struct {
	Check bool `help:"Only test the document store connection."`
}

func (c *IngestCmd) Run(cli *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}

	// Unlike chat, ingest has nothing useful to do without the store.
	docStore, err := store.NewMongoStore(ctx, &cfg.Store)
	if err != nil {
		return fmt.Errorf("document store: %w", err)
	}
	defer func() { _ = docStore.Close(context.Background()) }()

	if c.Check {
		collections, err := docStore.ListCollections(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Connected to %s: %d collections %v\n",
			cfg.Store.Database, len(collections), collections)
		return nil
	}

	count, err := retrieval.NewIngester(docStore, &cfg.Retrieval).Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Ingestion complete: indexed %d passages into %s\n", count, cfg.Retrieval.Dir)
	return nil
}

// loadConfig sets up logging, env files, and the typed config.
func loadConfig(cli *CLI) (*config.Config, error) {
	if _, err := logger.Setup(logger.Options{
		Level:  cli.LogLevel,
		Format: cli.LogFormat,
		File:   cli.LogFile,
	}); err != nil {
		return nil, err
	}

	if err := config.LoadEnvFiles(cli.EnvFile); err != nil {
		return nil, err
	}

	if cli.Config == "" {
		return config.Default(), nil
	}
	return config.LoadFile(cli.Config)
}

// buildAgent wires the agent's collaborators. An unreachable store is
// not fatal: the agent degrades to answering without data access.
func buildAgent(ctx context.Context, cfg *config.Config) (*agent.Agent, func()) {
	var docStore store.DocumentStore
	cleanup := func() {}

	mongoStore, err := store.NewMongoStore(ctx, &cfg.Store)
	if err != nil {
		slog.Warn("Document store unreachable, continuing without it", "error", err)
		docStore = store.Unavailable{Err: err}
	} else {
		docStore = mongoStore
		cleanup = func() { _ = mongoStore.Close(context.Background()) }
	}

	ranker := retrieval.NewRanker(&cfg.Retrieval)
	if !ranker.Enabled() {
		slog.Info("Retrieval corpus not found, answering without retrieved context",
			"dir", cfg.Retrieval.Dir)
	}

	executor := tools.NewExecutor(docStore, cfg.Agent.ResultCap)
	builder := agent.NewContextBuilder(docStore, ranker, &cfg.Agent)

	provider := llms.NewOpenAIProvider(&cfg.LLM)
	slog.Info("Completion provider configured",
		"model", provider.GetModelName(),
		"host", cfg.LLM.Host)

	return agent.New(provider, executor, builder, &cfg.LLM), cleanup
}

func main() {
	cli := &CLI{}
	parsed := kong.Parse(cli,
		kong.Name("parley"),
		kong.Description("Voice-assistant brain: utterances in, spoken-ready answers out."),
		kong.UsageOnError(),
	)

	if err := parsed.Run(cli); err != nil {
		fmt.Fprintf(os.Stderr, "parley: %v\n", err)
		os.Exit(1)
	}
}
