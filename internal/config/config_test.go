package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
catalog:
  - id: finanse_publiczne
    description: "Dane o stanie zadłużenia publicznego."
  - id: geologia_sejsmika
    description: "Baza danych zjawisk sejsmicznych."
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if len(cfg.Catalog) != 2 || cfg.Catalog[0].ID != "finanse_publiczne" {
		t.Errorf("unexpected catalog: %+v", cfg.Catalog)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
	if cfg.Retrieval.TopK != 5 {
		t.Errorf("top_k should default to 5, got %d", cfg.Retrieval.TopK)
	}
}

func TestLoad_debugTrue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
ingest:
  data_dir: "./cleaned"
  manifest_path: "./data/manifest.db"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	wantData := filepath.Join(dir, "cleaned")
	if cfg.Ingest.DataDir != wantData {
		t.Errorf("data_dir = %s, want %s", cfg.Ingest.DataDir, wantData)
	}
	wantManifest := filepath.Join(dir, "data", "manifest.db")
	if cfg.Ingest.ManifestPath != wantManifest {
		t.Errorf("manifest_path = %s, want %s", cfg.Ingest.ManifestPath, wantManifest)
	}
}

func TestLoad_rejectsDuplicateDomain(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
catalog:
  - id: finanse_publiczne
    description: "a"
  - id: finanse_publiczne
    description: "b"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for duplicate domain id")
	}
}

func TestLoad_rejectsUnknownSourceDomain(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
catalog:
  - id: finanse_publiczne
    description: "a"
ingest:
  sources:
    debt.csv: nie_ma_takiej
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for source mapped to unknown domain")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Providers.OpenAI.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("default base_url: got %s", cfg.Providers.OpenAI.BaseURL)
	}
	if cfg.Providers.OpenAI.APIKeyEnv != "OPENAI_API_KEY" {
		t.Errorf("default api_key_env: got %s", cfg.Providers.OpenAI.APIKeyEnv)
	}
	if cfg.Vector.Type != "qdrant" {
		t.Errorf("default vector type: got %s", cfg.Vector.Type)
	}
	if cfg.Vector.Dimensions != 1536 {
		t.Errorf("default dimensions: got %d, want 1536", cfg.Vector.Dimensions)
	}
	if cfg.Retrieval.TopK != 5 {
		t.Errorf("default top_k: got %d, want 5", cfg.Retrieval.TopK)
	}
	if cfg.Ingest.ChunkSize != 500 || cfg.Ingest.ChunkOverlap != 50 {
		t.Errorf("default chunking: got size=%d overlap=%d, want 500/50", cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	}
}
