// Package main is the Radca CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/civiclab/radca/internal/answerer"
	"github.com/civiclab/radca/internal/catalog"
	"github.com/civiclab/radca/internal/config"
	"github.com/civiclab/radca/internal/ingest"
	"github.com/civiclab/radca/internal/models"
	"github.com/civiclab/radca/internal/pipeline"
	"github.com/civiclab/radca/internal/provider/openai"
	"github.com/civiclab/radca/internal/retriever"
	"github.com/civiclab/radca/internal/router"
	"github.com/civiclab/radca/internal/server"
	"github.com/civiclab/radca/internal/storage"
	"github.com/civiclab/radca/internal/vectordb"
	"github.com/civiclab/radca/internal/watcher"
	"github.com/civiclab/radca/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/radca/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used, so that "radca server" from the project dir uses the project's
// config. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// API keys live in the environment; a .env in the working directory is
	// a convenience for development.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ask":
		runAsk()
	case "ingest":
		runIngest()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("radca version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Ingest.Watch {
		ing := components.Ingestor
		watchSvc := watcher.New(
			cfg.Ingest.DataDir,
			func(path string) bool {
				_, mapped := ing.DomainFor(path)
				return mapped
			},
			func(path string) {
				if _, err := ing.IngestFile(context.Background(), path); err != nil {
					logger.Warn("watch ingest failed", zap.String("path", path), zap.Error(err))
				}
			},
			logger,
		)
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer watchSvc.Stop()
	}

	srv := server.NewServer(
		components.Pipeline,
		components.Catalog,
		components.Store,
		components.Manifest,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// buildQuestion joins all positional args with spaces so multi-word questions
// work the same with or without shell quoting.
func buildQuestion(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use components directly when server is not running)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() { printAskUsage(fs) }
	_ = fs.Parse(os.Args[2:])

	question := buildQuestion(fs.Args())
	if question == "" {
		printAskUsage(fs)
		os.Exit(1)
	}

	var resp *models.AskResponse
	if *serverURL != "" {
		res, err := askViaHTTP(*serverURL, question)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
		resp = res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()

		components, err := initializeComponents(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to initialize", zap.Error(err))
		}
		defer components.Close()

		res, err := components.Pipeline.Ask(context.Background(), models.AskQuery{Question: question})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
		resp = res
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("[Kolekcja: %s]\n", resp.Domain)
		fmt.Printf("Odpowiedź urzędnika:\n%s\n", resp.Answer)
		if len(resp.Sources) > 0 {
			fmt.Println("\nŹródła:")
			for _, src := range resp.Sources {
				fmt.Printf("- %s\n", src)
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func printAskUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: radca ask [flags] <question>\n\n")
	fmt.Fprintf(fs.Output(), "Question is all remaining arguments joined by spaces.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  radca ask Jaki był dług publiczny w 2023 roku?
  radca ask --output json "Ile trzęsień ziemi zanotowano?"
  radca ask --server "" Jaki był dług publiczny?   # without a running server
`)
}

func askViaHTTP(serverURL, question string) (*models.AskResponse, error) {
	body, err := json.Marshal(models.AskQuery{Question: question})
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/ask", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.AskResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	ctx := context.Background()
	if fs.NArg() > 0 {
		// Single file, mapped by its base name.
		path := fs.Arg(0)
		res, err := components.Ingestor.IngestFile(ctx, path)
		if err != nil {
			fmt.Printf("Ingest failed: %v\n", err)
			os.Exit(1)
		}
		printIngestResult(res)
		return
	}

	results, err := components.Ingestor.IngestAll(ctx)
	if err != nil {
		fmt.Printf("Ingest failed: %v\n", err)
		os.Exit(1)
	}
	for _, res := range results {
		printIngestResult(res)
	}
	fmt.Printf("Ingested %d file(s)\n", len(results))
}

func printIngestResult(res ingest.FileResult) {
	state := "ingested"
	if res.Skipped {
		state = "unchanged"
	}
	fmt.Printf("%-10s %s -> %s (%d chunks)\n", state, filepath.Base(res.Path), res.Domain, res.Chunks)
}

// statusResponse is the shape of GET /api/v1/status.
type statusResponse struct {
	Domains []struct {
		ID          string `json:"id"`
		Description string `json:"description"`
		Vectors     *int   `json:"vectors,omitempty"`
	} `json:"domains"`
	IngestedFiles map[string]int         `json:"ingested_files,omitempty"`
	Config        map[string]interface{} `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use components directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()

		ctx := context.Background()
		for _, d := range components.Catalog.Domains() {
			entry := struct {
				ID          string `json:"id"`
				Description string `json:"description"`
				Vectors     *int   `json:"vectors,omitempty"`
			}{ID: d.ID, Description: d.Description}
			if n, err := components.Store.Index(d.ID).Count(ctx); err == nil {
				entry.Vectors = &n
			}
			status.Domains = append(status.Domains, entry)
		}
		if counts, err := components.Manifest.CountByDomain(ctx); err == nil {
			status.IngestedFiles = counts
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Println("# domains")
		for _, d := range status.Domains {
			if d.Vectors != nil {
				fmt.Printf("%-24s %d vectors\n", d.ID, *d.Vectors)
			} else {
				fmt.Printf("%-24s ?\n", d.ID)
			}
		}
		if len(status.IngestedFiles) > 0 {
			fmt.Println("\n# ingested files")
			for domain, n := range status.IngestedFiles {
				fmt.Printf("%-24s %d file(s)\n", domain, n)
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	u, err := url.JoinPath(serverURL, "/api/v1/status")
	if err != nil {
		return nil, err
	}
	resp, err := http.Get(u)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

// Components holds initialized services.
type Components struct {
	Catalog  *catalog.Catalog
	Store    vectordb.Store
	Manifest *storage.Manifest
	Pipeline *pipeline.Pipeline
	Ingestor *ingest.Ingestor
}

func (c *Components) Close() {
	if c.Store != nil {
		_ = c.Store.Close()
	}
	if c.Manifest != nil {
		_ = c.Manifest.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	cat, err := catalog.New(cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to build domain catalog: %w", err)
	}

	client, err := openai.NewClient(openai.Config{
		BaseURL:        cfg.Providers.OpenAI.BaseURL,
		APIKeyEnv:      cfg.Providers.OpenAI.APIKeyEnv,
		EmbeddingModel: cfg.Providers.OpenAI.EmbeddingModel,
		ChatModel:      cfg.Providers.OpenAI.ChatModel,
		Timeout:        time.Duration(cfg.Providers.OpenAI.TimeoutSecs) * time.Second,
	}, cfg.Vector.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize provider: %w", err)
	}

	store, err := vectordb.NewStore(cfg.Vector)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vector store: %w", err)
	}

	manifest, err := storage.OpenManifest(cfg.Ingest.ManifestPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to open ingest manifest: %w", err)
	}

	p := pipeline.New(
		router.New(cat, client, logger),
		retriever.New(client, store, cfg.Retrieval.TopK, logger),
		answerer.New(client, logger),
		logger,
	)
	ing := ingest.NewIngestor(cfg.Ingest, cat, client, store, manifest, logger)

	return &Components{
		Catalog:  cat,
		Store:    store,
		Manifest: manifest,
		Pipeline: p,
		Ingestor: ing,
	}, nil
}

func printUsage() {
	fmt.Println(`radca - cytowalne odpowiedzi z danych publicznych

Usage:
  radca server [flags]            Start the HTTP server
  radca ask [flags] <question>    Ask a question
  radca ingest [flags] [file]     Ingest mapped source files (all when no file given)
  radca status [flags]            Show domain and index status
  radca version                   Show version
  radca help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/radca/config.yaml)
  --debug            Enable debug logging

Ask Flags:
  --config string    Config file path (used when --server is empty)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") when the server is not running.
  --output string    Output format: text or json (default: text)

Ingest Flags:
  --config string    Config file path

Status Flags:
  --config string    Config file path (used when --server is empty)
  --server string    Server URL (default: http://localhost:8080)
  --output string    Output format: text or json (default: text)

Examples:
  radca server
  radca ask Jaki był dług publiczny w 2023 roku?
  radca ask --output json "Ile trzęsień ziemi zanotowano w 2024?"
  radca ingest
  radca ingest cleaned/dlug.csv
  radca status --output json`)
}
