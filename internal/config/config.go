package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the findex configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Engine    EngineConfig    `yaml:"engine"`
	Search    SearchConfig    `yaml:"search"`
	Tasks     TasksConfig     `yaml:"tasks"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Cache     CacheConfig     `yaml:"cache"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// EngineConfig holds search engine connection settings.
type EngineConfig struct {
	Host              string `yaml:"host"`
	APIKey            string `yaml:"api_key"`
	TimeoutSec        int    `yaml:"timeout_sec"`
	Embedder          string `yaml:"embedder"` // engine-side embedder name, empty disables hybrid search
	NativeMultiSearch *bool  `yaml:"native_multi_search"`
}

// SearchConfig holds request defaults.
type SearchConfig struct {
	DefaultPageSize      int     `yaml:"default_page_size"`
	MaxPageSize          int     `yaml:"max_page_size"`
	DefaultSemanticRatio *float64 `yaml:"default_semantic_ratio"`
}

// TasksConfig bounds mutation task waits.
type TasksConfig struct {
	TimeoutSec     int `yaml:"timeout_sec"`
	PollIntervalMs int `yaml:"poll_interval_ms"`
}

// IngestConfig holds document ingestion settings.
type IngestConfig struct {
	BatchSize     int     `yaml:"batch_size"`
	BatchesPerSec float64 `yaml:"batches_per_sec"` // 0 = unlimited
}

// CacheConfig holds search response cache settings.
type CacheConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	ClientSide bool   `yaml:"client_side"` // embed queries here and send vectors to the engine
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML data, expands env variables, applies defaults, and validates.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Engine.Host == "" {
		c.Engine.Host = "http://localhost:7700"
	}
	if c.Engine.TimeoutSec <= 0 {
		c.Engine.TimeoutSec = 30
	}
	if c.Engine.NativeMultiSearch == nil {
		native := true
		c.Engine.NativeMultiSearch = &native
	}
	if c.Search.DefaultPageSize <= 0 {
		c.Search.DefaultPageSize = 12
	}
	if c.Search.MaxPageSize <= 0 {
		c.Search.MaxPageSize = 100
	}
	if c.Search.DefaultSemanticRatio == nil {
		ratio := 0.5
		c.Search.DefaultSemanticRatio = &ratio
	}
	if c.Tasks.TimeoutSec <= 0 {
		c.Tasks.TimeoutSec = 300
	}
	if c.Tasks.PollIntervalMs <= 0 {
		c.Tasks.PollIntervalMs = 1000
	}
	if c.Ingest.BatchSize <= 0 {
		c.Ingest.BatchSize = 1000
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 300
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 1536
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if !strings.HasPrefix(c.Engine.Host, "http://") && !strings.HasPrefix(c.Engine.Host, "https://") {
		return fmt.Errorf("engine.host must be an http(s) URL, got %q", c.Engine.Host)
	}
	if c.Search.DefaultPageSize > c.Search.MaxPageSize {
		return fmt.Errorf("search.default_page_size (%d) exceeds search.max_page_size (%d)",
			c.Search.DefaultPageSize, c.Search.MaxPageSize)
	}
	if r := c.SemanticRatio(); r < 0 || r > 1 {
		return fmt.Errorf("search.default_semantic_ratio must be between 0 and 1, got %v", r)
	}
	if c.Ingest.BatchesPerSec < 0 {
		return fmt.Errorf("ingest.batches_per_sec must be >= 0, got %v", c.Ingest.BatchesPerSec)
	}
	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required when the cache is enabled")
	}
	if c.Embedding.ClientSide {
		if c.Embedding.APIKey == "" {
			return fmt.Errorf("embedding.api_key is required for client-side embedding")
		}
		if c.Engine.Embedder == "" {
			return fmt.Errorf("engine.embedder is required for client-side embedding")
		}
	}
	return nil
}

// MultiSearchNative reports whether multi-queries go to the engine in one call.
func (c *Config) MultiSearchNative() bool {
	return c.Engine.NativeMultiSearch == nil || *c.Engine.NativeMultiSearch
}

// SemanticRatio returns the hybrid weighting used when a request sets none.
// An explicit 0 is kept.
func (c *Config) SemanticRatio() float64 {
	if c.Search.DefaultSemanticRatio == nil {
		return 0.5
	}
	return *c.Search.DefaultSemanticRatio
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
