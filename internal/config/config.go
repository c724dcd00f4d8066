package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName        string `mapstructure:"app_name"`
	Env            string `mapstructure:"app_env"`
	LogLevel       string `mapstructure:"log_level"`
	TargetsFile    string `mapstructure:"targets_file"`
	PublishersFile string `mapstructure:"publishers_file"`

	HTTPTimeoutSeconds         int64         `mapstructure:"http_timeout_seconds"`
	HTTPResourceTimeoutSeconds int64         `mapstructure:"http_resource_timeout_seconds"`
	HTTPTimeout                time.Duration `mapstructure:"-"`
	HTTPResourceTimeout        time.Duration `mapstructure:"-"`
	TrustedSSLDomain           string        `mapstructure:"trusted_ssl_domain"`

	ProbeIntervalSeconds int64         `mapstructure:"probe_interval"`
	ProbeInterval        time.Duration `mapstructure:"-"`
	ProbeConcurrency     int           `mapstructure:"probe_concurrency"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "samvad-httpprobe")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("targets_file", "./configs/targets.yaml")
	v.SetDefault("publishers_file", "./configs/publishers.yaml")
	v.SetDefault("http_timeout_seconds", 10)
	v.SetDefault("http_resource_timeout_seconds", 10)
	v.SetDefault("trusted_ssl_domain", "")
	v.SetDefault("probe_interval", 60) // seconds
	v.SetDefault("probe_concurrency", 4)
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/status.db")
	v.SetDefault("storage_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) normalize() error {
	if cfg.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	if cfg.HTTPResourceTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid http_resource_timeout_seconds (must be positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second
	cfg.HTTPResourceTimeout = time.Duration(cfg.HTTPResourceTimeoutSeconds) * time.Second
	cfg.TrustedSSLDomain = strings.TrimSpace(cfg.TrustedSSLDomain)

	if cfg.ProbeIntervalSeconds <= 0 {
		return fmt.Errorf("invalid probe_interval (must be positive seconds)")
	}
	cfg.ProbeInterval = time.Duration(cfg.ProbeIntervalSeconds) * time.Second
	if cfg.ProbeConcurrency <= 0 {
		return fmt.Errorf("invalid probe_concurrency (must be positive)")
	}

	if cfg.StorageTTLSeconds <= 0 {
		return fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return nil
}
