package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration
type Config struct {
	Port         int
	ModelPath    string
	DataPath     string
	RegistryPath string
	RedisAddr    string
	CacheSize    int
	CacheTTL     time.Duration
	LogLevel     string
	LogFormat    string
	Trees        int
	MaxDepth     int
	Seed         int64
	TrainOnly    bool
	ShowVersion  bool
	Version      string
}

// Parse reads configuration from command-line flags. Environment variables
// provide the defaults, so an explicit flag always wins.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config

	fs.IntVar(&cfg.Port, "port", getEnvInt("PORT", 5000), "HTTP server port")
	fs.StringVar(&cfg.ModelPath, "model", getEnv("MODEL_PATH", "loan_default_model.gob"), "Path of the persisted model")
	fs.StringVar(&cfg.DataPath, "data", getEnv("DATA_PATH", "../data/loan_data_engineered.csv"), "Training dataset used when no model is available")
	fs.StringVar(&cfg.RegistryPath, "registry", getEnv("REGISTRY_PATH", ""), "SQLite file recording model runs (empty disables)")
	fs.StringVar(&cfg.RedisAddr, "redis", getEnv("REDIS_ADDR", ""), "Redis address for the shared prediction cache (empty uses memory)")
	fs.IntVar(&cfg.CacheSize, "cache-size", getEnvInt("CACHE_SIZE", 4096), "In-memory prediction cache entries (0 disables)")
	fs.DurationVar(&cfg.CacheTTL, "cache-ttl", getEnvDuration("CACHE_TTL", time.Hour), "Redis cache entry lifetime")
	fs.StringVar(&cfg.LogLevel, "log-level", getEnv("LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFormat, "log-format", getEnv("LOG_FORMAT", "text"), "Log format: text or json")
	fs.IntVar(&cfg.Trees, "trees", getEnvInt("TREES", 100), "Number of trees when training")
	fs.IntVar(&cfg.MaxDepth, "max-depth", getEnvInt("MAX_DEPTH", 0), "Maximum tree depth when training (0 = unlimited)")
	seed := fs.Int64("seed", int64(getEnvInt("SEED", 42)), "Random seed when training")
	fs.BoolVar(&cfg.TrainOnly, "train", false, "Train and save the model, then exit")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version and exit")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Seed = *seed

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.ModelPath == "" {
		return Config{}, fmt.Errorf("model path is required")
	}
	return cfg, nil
}

// Address returns the listen address
func (c Config) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
