package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port      int              `json:"port"`
	LogConfig logger.LogConfig `json:"log_config"`
	DB        DatabaseConfig   `json:"db"`
	AI        AIConfig         `json:"ai"`
	Content   ContentConfig    `json:"content"`
	Index     IndexConfig      `json:"index"`
	Ask       AskConfig        `json:"ask"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

// ConnString renders the lib/pq connection string. An explicit DSN wins;
// otherwise it is assembled from the discrete fields, defaulting sslmode to
// disable for local single-host deployments.
func (c DatabaseConfig) ConnString() string {
	if c.DSN != "" {
		return c.DSN
	}
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, sslmode)
}

type AIConfig struct {
	Provider      string      `json:"provider"`
	Model         string      `json:"model"`
	EmbedProvider string      `json:"embed_provider"`
	EmbedModel    string      `json:"embed_model"`
	Data          interface{} `json:"data"`
	EmbedData     interface{} `json:"embed_data"`
	Timeout       int         `json:"timeout"`
	CacheSize     int         `json:"cache_size"`
	CacheTTLMin   int         `json:"cache_ttl_minutes"`
}

type ContentConfig struct {
	Type       string      `json:"type"`
	Data       interface{} `json:"data"`
	CaseDir    string      `json:"case_dir"`
	ReplayDir  string      `json:"replay_dir"`
	ProfileDir string      `json:"profile_dir"`
}

type IndexConfig struct {
	BatchSize       int      `json:"batch_size"`
	MaxSectionChars int      `json:"max_section_chars"`
	AllowedSlugs    []string `json:"allowed_slugs"`
	Cron            string   `json:"cron"`
}

type AskConfig struct {
	FetchCount  int      `json:"fetch_count"`
	Take        int      `json:"take"`
	RateLimitMS int      `json:"rate_limit_ms"`
	CORSOrigins []string `json:"cors_origins"`
}

// DefaultAllowedSlugs is the publishing runbook: only these case studies are
// indexed, so drafts can sit in the content directory without being served.
var DefaultAllowedSlugs = []string{
	"api-reliability-dx",
	"blue-green-8-services",
	"cost-latency-vllm",
	"eval-harness",
	"fastapi-productization",
	"launchpad-saas",
	"observability-program",
	"onnx-efficiency",
	"opsseer-aiops",
	"orchestration-langgraph",
	"rag-at-scale",
	"safety-privacy",
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	applyEnvOverrides(&cfg)
	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) error {
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.DB.DSN == "" && (cfg.DB.Host == "" || cfg.DB.DBName == "") {
		return fmt.Errorf("db.dsn or db.host/db.dbname is required")
	}
	if cfg.AI.Provider == "" {
		return fmt.Errorf("ai.provider is required")
	}
	if cfg.AI.Model == "" {
		return fmt.Errorf("ai.model is required")
	}
	if cfg.AI.EmbedProvider == "" {
		cfg.AI.EmbedProvider = cfg.AI.Provider
	}
	if cfg.AI.EmbedModel == "" {
		return fmt.Errorf("ai.embed_model is required")
	}
	if cfg.AI.EmbedData == nil {
		cfg.AI.EmbedData = cfg.AI.Data
	}
	if cfg.AI.CacheSize == 0 {
		cfg.AI.CacheSize = 10000
	}
	if cfg.AI.CacheTTLMin == 0 {
		cfg.AI.CacheTTLMin = 120
	}
	if cfg.Content.Type == "" {
		cfg.Content.Type = "local"
	}
	if cfg.Content.CaseDir == "" {
		cfg.Content.CaseDir = "src/content/case-studies"
	}
	if cfg.Content.ReplayDir == "" {
		cfg.Content.ReplayDir = "public/replays"
	}
	if cfg.Content.ProfileDir == "" {
		cfg.Content.ProfileDir = "public/profile"
	}
	if cfg.Index.BatchSize == 0 {
		cfg.Index.BatchSize = 64
	}
	if cfg.Index.MaxSectionChars == 0 {
		cfg.Index.MaxSectionChars = 4000
	}
	if len(cfg.Index.AllowedSlugs) == 0 {
		cfg.Index.AllowedSlugs = DefaultAllowedSlugs
	}
	if cfg.Ask.FetchCount == 0 {
		cfg.Ask.FetchCount = 12
	}
	if cfg.Ask.Take == 0 {
		cfg.Ask.Take = 4
	}
	return nil
}

// Secrets can live outside the config file: the environment always wins so the
// index job and the server can run against CI- or host-provided credentials.
func applyEnvOverrides(cfg *Config) {
	if dsn := os.Getenv("PORTFOLIO_DB_DSN"); dsn != "" {
		cfg.DB.DSN = dsn
	}
	cfg.AI.Data = overrideAPIKey(cfg.AI.Provider, cfg.AI.Data)
	embedProvider := cfg.AI.EmbedProvider
	if embedProvider == "" {
		embedProvider = cfg.AI.Provider
	}
	if cfg.AI.EmbedData != nil {
		cfg.AI.EmbedData = overrideAPIKey(embedProvider, cfg.AI.EmbedData)
	}
}

var providerKeyEnv = map[string]string{
	"openai": "OPENAI_API_KEY",
	"gemini": "GEMINI_API_KEY",
}

func overrideAPIKey(provider string, data interface{}) interface{} {
	env := providerKeyEnv[provider]
	if env == "" {
		return data
	}
	key := os.Getenv(env)
	if key == "" {
		return data
	}
	args, ok := data.(map[string]interface{})
	if !ok {
		args = map[string]interface{}{}
	}
	args["api_key"] = key
	return args
}
