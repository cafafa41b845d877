package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Providers.OpenAI.BaseURL == "" {
		cfg.Providers.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Providers.OpenAI.APIKeyEnv == "" {
		cfg.Providers.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Providers.OpenAI.EmbeddingModel == "" {
		cfg.Providers.OpenAI.EmbeddingModel = "text-embedding-ada-002"
	}
	if cfg.Providers.OpenAI.ChatModel == "" {
		cfg.Providers.OpenAI.ChatModel = "gpt-3.5-turbo"
	}
	if cfg.Providers.OpenAI.TimeoutSecs == 0 {
		cfg.Providers.OpenAI.TimeoutSecs = 30
	}
	if cfg.Vector.Type == "" {
		cfg.Vector.Type = "qdrant"
	}
	if cfg.Vector.Dimensions == 0 {
		// Must match the dimensionality used when the collections were built.
		cfg.Vector.Dimensions = 1536
	}
	if cfg.Vector.Qdrant.URL == "" {
		cfg.Vector.Qdrant.URL = "http://localhost:6333"
	}
	if cfg.Vector.Qdrant.TimeoutSecs == 0 {
		cfg.Vector.Qdrant.TimeoutSecs = 15
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 5
	}
	if cfg.Ingest.DataDir == "" {
		cfg.Ingest.DataDir = "./cleaned"
	}
	if cfg.Ingest.ChunkSize == 0 {
		cfg.Ingest.ChunkSize = 500
	}
	if cfg.Ingest.ChunkOverlap == 0 {
		cfg.Ingest.ChunkOverlap = 50
	}
	if cfg.Ingest.ManifestPath == "" {
		cfg.Ingest.ManifestPath = "./data/manifest.db"
	}
}
