// Package config loads runtime settings from an optional YAML file with
// environment-variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Duration decodes YAML values like "6h" or "90m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped standard duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Embedder locates the ONNX runtime, the exported sentence model and its
// tokenizer.
type Embedder struct {
	OrtDLL        string `yaml:"ortLib"`
	ModelPath     string `yaml:"modelPath"`
	TokenizerPath string `yaml:"tokenizerPath"`
	MaxSeqLen     int    `yaml:"maxSeqLen"`
}

// Config aggregates all runtime settings.
type Config struct {
	DBPath          string        `yaml:"dbPath"`
	CacheFile       string        `yaml:"cacheFile"`
	ArchiveDir      string        `yaml:"archiveDir"`
	ListenAddr      string        `yaml:"listenAddr"`
	RefreshInterval Duration      `yaml:"refreshInterval"`
	Embedder        Embedder      `yaml:"embedder"`
}

// ApplyDefaults populates zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.DBPath == "" {
		c.DBPath = "mealplan.db"
	}
	if c.CacheFile == "" {
		c.CacheFile = "cache/embeddings.bin"
	}
	if c.ArchiveDir == "" {
		c.ArchiveDir = "archive"
	}
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = Duration(24 * time.Hour)
	}
	if c.Embedder.ModelPath == "" {
		c.Embedder.ModelPath = "models/cross-en-de-roberta/model.onnx"
	}
	if c.Embedder.TokenizerPath == "" {
		c.Embedder.TokenizerPath = "models/cross-en-de-roberta/tokenizer.json"
	}
	if c.Embedder.MaxSeqLen <= 0 {
		c.Embedder.MaxSeqLen = 512
	}
}

// Load reads the YAML file at path (missing file is fine), then applies env
// overrides and defaults. A .env file in the working directory is honored.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	cfg.applyEnv()
	cfg.ApplyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.DBPath, "MENSALOG_DB")
	setString(&c.CacheFile, "MENSALOG_CACHE")
	setString(&c.ArchiveDir, "MENSALOG_ARCHIVE")
	setString(&c.ListenAddr, "MENSALOG_ADDR")
	setString(&c.Embedder.OrtDLL, "MENSALOG_ORT_LIB")
	setString(&c.Embedder.ModelPath, "MENSALOG_MODEL")
	setString(&c.Embedder.TokenizerPath, "MENSALOG_TOKENIZER")
	if v := os.Getenv("MENSALOG_REFRESH_HOURS"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil && hours > 0 {
			c.RefreshInterval = Duration(time.Duration(hours) * time.Hour)
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
