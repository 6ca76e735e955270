package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv        string `yaml:"app_env"`
	ServerPort    string `yaml:"server_port"`
	DBDriver      string `yaml:"db_driver"` // postgres | sqlite
	DBDSN         string `yaml:"db_dsn"`
	SessionSecret string `yaml:"session_secret"`
	LogLevel      string `yaml:"log_level"`

	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`

	CORSOrigins []string `yaml:"cors_origins"`

	DaData DaDataConfig `yaml:"dadata"`

	RedisAddr       string        `yaml:"redis_addr"`
	SuggestCacheTTL time.Duration `yaml:"suggest_cache_ttl"`

	// 0 — не чистить журнал
	AuditRetentionDays int `yaml:"audit_retention_days"`
}

type DaDataConfig struct {
	APIKey    string        `yaml:"api_key"`
	SecretKey string        `yaml:"secret_key"`
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
}

const DefaultDaDataURL = "https://suggestions.dadata.ru/suggestions/api/4_1/rs"

func defaults() *Config {
	return &Config{
		AppEnv:     "development",
		ServerPort: "8080",
		DBDriver:   "postgres",
		LogLevel:   "info",
		AdminEmail: "admin@casebook.local",
		DaData: DaDataConfig{
			BaseURL: DefaultDaDataURL,
			Timeout: 5 * time.Second,
		},
		SuggestCacheTTL:    time.Hour,
		AuditRetentionDays: 180,
	}
}

// Load собирает конфиг: значения по умолчанию, затем config.yaml (если есть), затем .env и окружение.
func Load() (*Config, error) {
	return LoadFile("config.yaml")
}

func LoadFile(path string) (*Config, error) {
	cfg := defaults()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	_ = godotenv.Load()
	applyEnv(cfg)

	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN is not set")
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("SESSION_SECRET is not set")
	}
	if cfg.DBDriver != "postgres" && cfg.DBDriver != "sqlite" {
		return nil, errors.New("DB_DRIVER must be postgres or sqlite")
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.AppEnv, "APP_ENV")
	setString(&cfg.ServerPort, "SERVER_PORT")
	setString(&cfg.DBDriver, "DB_DRIVER")
	setString(&cfg.DBDSN, "DB_DSN")
	setString(&cfg.SessionSecret, "SESSION_SECRET")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.AdminEmail, "ADMIN_EMAIL")
	setString(&cfg.AdminPassword, "ADMIN_PASSWORD")
	setString(&cfg.DaData.APIKey, "DADATA_API_KEY")
	setString(&cfg.DaData.SecretKey, "DADATA_SECRET_KEY")
	setString(&cfg.DaData.BaseURL, "DADATA_BASE_URL")
	setString(&cfg.RedisAddr, "REDIS_ADDR")

	if v := os.Getenv("DADATA_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.DaData.Timeout = d
		}
	}
	if v := os.Getenv("SUGGEST_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SuggestCacheTTL = d
		}
	}
	if v := os.Getenv("AUDIT_RETENTION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.AuditRetentionDays = n
		}
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
