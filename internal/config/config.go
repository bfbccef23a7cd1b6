// Package config loads engine configuration from the environment with an
// optional YAML overlay file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Embedding provider names.
const (
	ProviderOllama  = "ollama"
	ProviderOpenAI  = "openai"
	ProviderBedrock = "bedrock"
)

// Config holds all configuration values.
type Config struct {
	// SurrealDB connection
	SurrealDBURL       string `yaml:"surrealdb_url"`
	SurrealDBNamespace string `yaml:"surrealdb_namespace"`
	SurrealDBDatabase  string `yaml:"surrealdb_database"`
	SurrealDBUser      string `yaml:"surrealdb_user"`
	SurrealDBPass      string `yaml:"surrealdb_pass"`
	SurrealDBAuthLevel string `yaml:"surrealdb_auth_level"`

	// Embeddings
	EmbedProvider  string `yaml:"embed_provider"`
	EmbedModel     string `yaml:"embed_model"`
	EmbedDimension int    `yaml:"embed_dimension"`
	OllamaHost     string `yaml:"ollama_host"`
	OpenAIAPIKey   string `yaml:"-"`
	BedrockRegion  string `yaml:"bedrock_region"`

	// Schema catalog (external collaborator)
	CatalogURL     string `yaml:"catalog_url"`
	CatalogTimeout string `yaml:"catalog_timeout"`

	// Engine tuning
	DefaultNamespace   string  `yaml:"default_namespace"`
	AutoApplyThreshold float64 `yaml:"auto_apply_threshold"`
	SignatureBoost     float64 `yaml:"signature_boost"`
	StaleFraction      float64 `yaml:"stale_fraction"`
	TopK               int     `yaml:"top_k"`
	MinSupport         int     `yaml:"min_support"`
	ConsolidateCron    string  `yaml:"consolidate_cron"`

	// Logging
	LogFile  string     `yaml:"log_file"`
	LogLevel slog.Level `yaml:"-"`
}

// Load reads configuration from environment variables. If MAPMEM_CONFIG
// points at a YAML file, its values override the environment defaults.
func Load() (Config, error) {
	cfg := Config{
		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "memory"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "mapmem"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		EmbedProvider:  getEnv("MAPMEM_EMBED_PROVIDER", ProviderOllama),
		EmbedModel:     getEnv("MAPMEM_EMBED_MODEL", "all-minilm:l6-v2"),
		EmbedDimension: getEnvInt("MAPMEM_EMBED_DIMENSION", 384),
		OllamaHost:     getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		BedrockRegion:  getEnv("MAPMEM_BEDROCK_REGION", "us-east-1"),

		CatalogURL:     getEnv("MAPMEM_CATALOG_URL", ""),
		CatalogTimeout: getEnv("MAPMEM_CATALOG_TIMEOUT", "5s"),

		DefaultNamespace:   getEnv("MAPMEM_DEFAULT_NAMESPACE", "org"),
		AutoApplyThreshold: getEnvFloat("MAPMEM_AUTO_APPLY_THRESHOLD", 0.85),
		SignatureBoost:     getEnvFloat("MAPMEM_SIGNATURE_BOOST", 0.6),
		StaleFraction:      getEnvFloat("MAPMEM_STALE_FRACTION", 0.5),
		TopK:               getEnvInt("MAPMEM_TOP_K", 20),
		MinSupport:         getEnvInt("MAPMEM_MIN_SUPPORT", 3),
		ConsolidateCron:    getEnv("MAPMEM_CONSOLIDATE_CRON", "0 */6 * * *"),

		LogFile:  getEnv("MAPMEM_LOG_FILE", "/tmp/mapmem.log"),
		LogLevel: parseLogLevel(getEnv("MAPMEM_LOG_LEVEL", "INFO")),
	}

	if path := os.Getenv("MAPMEM_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return cfg, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	return cfg, nil
}

// applyFile overlays values from a YAML file onto the config.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
