package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultChunkSize    = 1000 // characters
	defaultChunkOverlap = 200  // characters
	defaultTopK         = 5
)

// LLMConfig selects and configures one langchaingo-backed model endpoint.
type LLMConfig struct {
	Provider string `yaml:"provider"` // "openai" or "ollama"
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	Key      string `yaml:"key"`
}

type RAGConfig struct {
	ChunkSize     int    `yaml:"chunk_size"`
	ChunkOverlap  int    `yaml:"chunk_overlap"`
	TopK          int    `yaml:"top_k"`
	EncryptionKey string `yaml:"encryption_key"`
}

// StoreConfig locates the persisted vector index on disk.
type StoreConfig struct {
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
}

// DatabaseConfig connects the optional Postgres chunk archive.
type DatabaseConfig struct {
	URL   string `yaml:"url"`
	Key   string `yaml:"key"`
	Debug bool   `yaml:"debug"`
}

type Config struct {
	RAG          RAGConfig      `yaml:"rag"`
	EmbedLLM     LLMConfig      `yaml:"embed_llm"`
	InferenceLLM LLMConfig      `yaml:"inference_llm"`
	Store        StoreConfig    `yaml:"store"`
	Database     DatabaseConfig `yaml:"database"`
}

// LoadConfig reads the YAML config at path. Secrets may be left out of the
// file and supplied through the environment (a .env file is honored).
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	// An explicit chunk_overlap: 0 is a valid setting, so distinguish it
	// from the key being absent before defaulting.
	var presence struct {
		RAG struct {
			ChunkOverlap *int `yaml:"chunk_overlap"`
		} `yaml:"rag"`
	}
	if err := yaml.Unmarshal(data, &presence); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.applyDefaults(presence.RAG.ChunkOverlap != nil)
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("EMBED_LLM_KEY"); v != "" {
		c.EmbedLLM.Key = v
	}
	if v := os.Getenv("INFERENCE_LLM_KEY"); v != "" {
		c.InferenceLLM.Key = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
}

func (c *Config) applyDefaults(overlapSet bool) {
	if c.RAG.ChunkSize == 0 {
		c.RAG.ChunkSize = defaultChunkSize
	}
	if !overlapSet {
		c.RAG.ChunkOverlap = defaultChunkOverlap
	}
	if c.RAG.TopK == 0 {
		c.RAG.TopK = defaultTopK
	}
	if c.Store.Path == "" {
		c.Store.Path = "./indexdb"
	}
	if c.Store.Collection == "" {
		c.Store.Collection = "inventory"
	}
}
