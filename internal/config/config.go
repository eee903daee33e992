package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv        = "JOURNEY_RADAR_CONFIG"
	databaseDSNEnv       = "DATABASE_DSN"
	taxonomyPathEnv      = "TAXONOMY_PATH"
	oracleProviderEnv    = "ORACLE_PROVIDER"
	oracleModelEnv       = "ORACLE_MODEL"
	openRouterAPIKeyEnv  = "OPENROUTER_API_KEY"
	openAIAPIKeyEnv      = "OPENAI_API_KEY"
	geminiAPIKeyEnv      = "GEMINI_API_KEY"
	embeddingProviderEnv = "EMBEDDING_PROVIDER"
	telegramTokenEnv     = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv    = "TELEGRAM_CHAT_ID"
	logLevelEnv          = "LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Taxonomy      TaxonomyConfig     `yaml:"taxonomy"`
	Oracle        OracleConfig       `yaml:"oracle"`
	Embedding     EmbeddingConfig    `yaml:"embedding"`
	Analysis      AnalysisConfig     `yaml:"analysis"`
	Storage       StorageConfig      `yaml:"storage"`
	Notifications NotificationConfig `yaml:"notifications"`
	Server        ServerConfig       `yaml:"server"`
}

// LoggingConfig controls the console and rotating file outputs.
type LoggingConfig struct {
	Level  string        `yaml:"level"`
	Format string        `yaml:"format"`
	File   LogFileConfig `yaml:"file"`
}

// LogFileConfig enables a rotated JSON log file when Path is set.
type LogFileConfig struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	Compress   bool   `yaml:"compress"`
}

// TaxonomyConfig points at the journey stage definition document.
type TaxonomyConfig struct {
	Path string `yaml:"path"`
}

// OracleConfig selects and tunes the classification model provider.
type OracleConfig struct {
	Provider          string        `yaml:"provider"`
	Endpoint          string        `yaml:"endpoint"`
	Model             string        `yaml:"model"`
	APIKey            string        `yaml:"apiKey"`
	SystemPrompt      string        `yaml:"systemPrompt"`
	StaticReply       string        `yaml:"staticReply"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
	Burst             int           `yaml:"burst"`
	Retries           int           `yaml:"retries"`
	RetryBackoff      time.Duration `yaml:"retryBackoff"`
	Concurrency       int           `yaml:"concurrency"`
}

// EmbeddingConfig selects the phrase scoring backend.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	Endpoint   string `yaml:"endpoint"`
	Model      string `yaml:"model"`
	APIKey     string `yaml:"apiKey"`
	Dimensions int    `yaml:"dimensions"`
	CacheSize  int    `yaml:"cacheSize"`
}

// AnalysisConfig holds the pain point defaults.
type AnalysisConfig struct {
	SentimentCeiling float64 `yaml:"sentimentCeiling"`
	MinTextLength    int     `yaml:"minTextLength"`
	TopK             int     `yaml:"topK"`
	MinNGram         int     `yaml:"minNGram"`
	MaxNGram         int     `yaml:"maxNGram"`
}

// StorageConfig locates file inputs and outputs and the optional database.
type StorageConfig struct {
	Input     string         `yaml:"input"`
	Output    string         `yaml:"output"`
	CSVOutput string         `yaml:"csvOutput"`
	Database  DatabaseConfig `yaml:"database"`
}

// DatabaseConfig describes the optional repository. Driver is postgres, sqlite or empty.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BaseURL  string `yaml:"baseUrl"`
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Enabled reports whether both credentials are present.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := Default()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(taxonomyPathEnv); v != "" {
		c.Taxonomy.Path = v
	}

	if v := os.Getenv(oracleProviderEnv); v != "" {
		c.Oracle.Provider = v
	}
	if v := os.Getenv(oracleModelEnv); v != "" {
		c.Oracle.Model = v
	}
	if c.Oracle.APIKey == "" {
		c.Oracle.APIKey = providerKey(c.Oracle.Provider)
	}

	if v := os.Getenv(embeddingProviderEnv); v != "" {
		c.Embedding.Provider = v
	}
	if c.Embedding.APIKey == "" && c.Embedding.Provider == "gemini" {
		c.Embedding.APIKey = os.Getenv(geminiAPIKeyEnv)
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Storage.Database.DSN = v
		if c.Storage.Database.Driver == "" {
			c.Storage.Database.Driver = "postgres"
		}
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func providerKey(provider string) string {
	switch provider {
	case "openrouter":
		return os.Getenv(openRouterAPIKeyEnv)
	case "openai":
		return os.Getenv(openAIAPIKeyEnv)
	case "gemini":
		return os.Getenv(geminiAPIKeyEnv)
	default:
		return ""
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}
	if override.Logging.File.Path != "" {
		base.Logging.File = override.Logging.File
	}

	if override.Taxonomy.Path != "" {
		base.Taxonomy.Path = override.Taxonomy.Path
	}

	if override.Oracle.Provider != "" {
		base.Oracle.Provider = override.Oracle.Provider
	}
	if override.Oracle.Endpoint != "" {
		base.Oracle.Endpoint = override.Oracle.Endpoint
	}
	if override.Oracle.Model != "" {
		base.Oracle.Model = override.Oracle.Model
	}
	if override.Oracle.APIKey != "" {
		base.Oracle.APIKey = override.Oracle.APIKey
	}
	if override.Oracle.SystemPrompt != "" {
		base.Oracle.SystemPrompt = override.Oracle.SystemPrompt
	}
	if override.Oracle.StaticReply != "" {
		base.Oracle.StaticReply = override.Oracle.StaticReply
	}
	if override.Oracle.Timeout > 0 {
		base.Oracle.Timeout = override.Oracle.Timeout
	}
	if override.Oracle.RequestsPerSecond > 0 {
		base.Oracle.RequestsPerSecond = override.Oracle.RequestsPerSecond
	}
	if override.Oracle.Burst > 0 {
		base.Oracle.Burst = override.Oracle.Burst
	}
	if override.Oracle.Retries > 0 {
		base.Oracle.Retries = override.Oracle.Retries
	}
	if override.Oracle.RetryBackoff > 0 {
		base.Oracle.RetryBackoff = override.Oracle.RetryBackoff
	}
	if override.Oracle.Concurrency > 0 {
		base.Oracle.Concurrency = override.Oracle.Concurrency
	}

	if override.Embedding.Provider != "" {
		base.Embedding.Provider = override.Embedding.Provider
	}
	if override.Embedding.Endpoint != "" {
		base.Embedding.Endpoint = override.Embedding.Endpoint
	}
	if override.Embedding.Model != "" {
		base.Embedding.Model = override.Embedding.Model
	}
	if override.Embedding.APIKey != "" {
		base.Embedding.APIKey = override.Embedding.APIKey
	}
	if override.Embedding.Dimensions > 0 {
		base.Embedding.Dimensions = override.Embedding.Dimensions
	}
	if override.Embedding.CacheSize > 0 {
		base.Embedding.CacheSize = override.Embedding.CacheSize
	}

	if override.Analysis.SentimentCeiling != 0 {
		base.Analysis.SentimentCeiling = override.Analysis.SentimentCeiling
	}
	if override.Analysis.MinTextLength > 0 {
		base.Analysis.MinTextLength = override.Analysis.MinTextLength
	}
	if override.Analysis.TopK > 0 {
		base.Analysis.TopK = override.Analysis.TopK
	}
	if override.Analysis.MinNGram > 0 {
		base.Analysis.MinNGram = override.Analysis.MinNGram
	}
	if override.Analysis.MaxNGram > 0 {
		base.Analysis.MaxNGram = override.Analysis.MaxNGram
	}

	if override.Storage.Input != "" {
		base.Storage.Input = override.Storage.Input
	}
	if override.Storage.Output != "" {
		base.Storage.Output = override.Storage.Output
	}
	if override.Storage.CSVOutput != "" {
		base.Storage.CSVOutput = override.Storage.CSVOutput
	}
	if override.Storage.Database.Driver != "" {
		base.Storage.Database = override.Storage.Database
	}

	if override.Notifications.Telegram.BaseURL != "" {
		base.Notifications.Telegram.BaseURL = override.Notifications.Telegram.BaseURL
	}
	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}

	return base
}

// Default returns the settings used when no file or environment overrides exist.
func Default() Config {
	return Config{
		Logging:  LoggingConfig{Level: "info", Format: "console"},
		Taxonomy: TaxonomyConfig{Path: "config/tasks.yaml"},
		Oracle: OracleConfig{
			Provider:     "openrouter",
			Model:        "deepseek/deepseek-chat-v3-0324:free",
			Timeout:      30 * time.Second,
			Retries:      0,
			RetryBackoff: 500 * time.Millisecond,
			Concurrency:  1,
		},
		Embedding: EmbeddingConfig{Provider: "hashing", Dimensions: 512, CacheSize: 4096},
		Analysis: AnalysisConfig{
			SentimentCeiling: -0.2,
			MinTextLength:    20,
			TopK:             10,
			MinNGram:         1,
			MaxNGram:         3,
		},
		Storage: StorageConfig{
			Input:     "data/reddit_posts.json",
			Output:    "data/classified_reddit.json",
			CSVOutput: "",
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// String renders non-secret settings for start-up logs.
func (o OracleConfig) String() string {
	return o.Provider + "/" + o.Model + " timeout=" + o.Timeout.String() +
		" concurrency=" + strconv.Itoa(o.Concurrency)
}
