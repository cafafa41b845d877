// Package config provides configuration loading and structs for the radca server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/civiclab/radca/internal/models"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	Vector    VectorConfig    `yaml:"vector"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Catalog   []models.Domain `yaml:"catalog"`
	Ingest    IngestConfig    `yaml:"ingest"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ProvidersConfig holds settings for the external embedding and generation providers.
type ProvidersConfig struct {
	OpenAI OpenAIConfig `yaml:"openai"`
}

// OpenAIConfig configures the OpenAI-compatible HTTP API used for both
// embeddings and chat completions. The API key is read from the environment
// variable named by APIKeyEnv, never from the config file itself.
type OpenAIConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKeyEnv      string `yaml:"api_key_env"`
	EmbeddingModel string `yaml:"embedding_model"`
	ChatModel      string `yaml:"chat_model"`
	TimeoutSecs    int    `yaml:"timeout_secs"`
}

// VectorConfig selects and configures the per-domain vector index backend.
type VectorConfig struct {
	// Type is "qdrant" (production) or "memory" (tests, small local runs).
	Type       string       `yaml:"type"`
	Dimensions int          `yaml:"dimensions"`
	Qdrant     QdrantConfig `yaml:"qdrant"`
}

// QdrantConfig contains connection details for a Qdrant server. Each domain
// maps to one collection, created on first ingestion if absent.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// RetrievalConfig holds retrieval settings.
type RetrievalConfig struct {
	// TopK is how many passages are fetched per attempt. It is a server-side
	// setting and is not exposed to callers.
	TopK int `yaml:"top_k"`
}

// IngestConfig holds ingestion settings: where source files live, which
// domain each file feeds, and how rows are chunked.
type IngestConfig struct {
	// DataDir is the directory holding the cleaned source files.
	DataDir string `yaml:"data_dir"`
	// Sources maps a file name (relative to DataDir) to a domain ID.
	Sources map[string]string `yaml:"sources"`
	// ChunkSize and ChunkOverlap are in characters.
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
	ManifestPath string `yaml:"manifest_path"`
	// Watch re-ingests mapped files when they change on disk.
	Watch bool `yaml:"watch"`
}

// Load reads and parses the config file at path, expands paths, and applies
// defaults. Returns an error if the file cannot be read or parsed, or if the
// domain catalog is invalid.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := validateCatalog(cfg.Catalog); err != nil {
		return nil, err
	}
	if err := validateSources(&cfg); err != nil {
		return nil, err
	}

	configDir := filepath.Dir(path)
	cfg.Ingest.DataDir = expandPath(cfg.Ingest.DataDir, configDir)
	cfg.Ingest.ManifestPath = expandPath(cfg.Ingest.ManifestPath, configDir)

	return &cfg, nil
}

// validateCatalog checks that domain IDs are non-empty, unique, and described.
func validateCatalog(domains []models.Domain) error {
	seen := make(map[string]bool, len(domains))
	for _, d := range domains {
		if d.ID == "" {
			return fmt.Errorf("catalog: domain with empty id")
		}
		if d.Description == "" {
			return fmt.Errorf("catalog: domain %q has no description", d.ID)
		}
		if seen[d.ID] {
			return fmt.Errorf("catalog: duplicate domain id %q", d.ID)
		}
		seen[d.ID] = true
	}
	return nil
}

// validateSources checks that every ingest source maps to a catalog domain.
func validateSources(cfg *Config) error {
	ids := make(map[string]bool, len(cfg.Catalog))
	for _, d := range cfg.Catalog {
		ids[d.ID] = true
	}
	for file, domain := range cfg.Ingest.Sources {
		if !ids[domain] {
			return fmt.Errorf("ingest: source %q maps to unknown domain %q", file, domain)
		}
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative
// to configDir; other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
