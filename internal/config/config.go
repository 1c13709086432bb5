package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	NATS     NATSConfig     `yaml:"nats"`
	MinIO    MinIOConfig    `yaml:"minio"`
	SMS      SMSConfig      `yaml:"sms"`
	Matching MatchingConfig `yaml:"matching"`
	Notify   NotifyConfig   `yaml:"notify"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	MaxConns int    `yaml:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

type NATSConfig struct {
	URL string `yaml:"url"`
}

type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type SMSConfig struct {
	GatewayURL string        `yaml:"gateway_url"`
	APIKey     string        `yaml:"api_key"`
	SenderID   string        `yaml:"sender_id"`
	Timeout    time.Duration `yaml:"timeout"`
}

// MatchingConfig tunes the scoring engine. The defaults reproduce the
// weights and threshold the matching behavior was validated with.
type MatchingConfig struct {
	Threshold     float64 `yaml:"threshold"`
	MaxCandidates int     `yaml:"max_candidates"`
	IDWeight      float64 `yaml:"id_weight"`
	NameWeight    float64 `yaml:"name_weight"`
	AgeStepWeight float64 `yaml:"age_step_weight"`
	GenderWeight  float64 `yaml:"gender_weight"`
}

type NotifyConfig struct {
	LocalesDir    string `yaml:"locales_dir"`
	DefaultLocale string `yaml:"default_locale"`
	PublicBaseURL string `yaml:"public_base_url"`
	WorkerCount   int    `yaml:"worker_count"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads config from YAML file and applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(cfg)
	setDefaults(cfg)

	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 20
	}
	if cfg.SMS.Timeout == 0 {
		cfg.SMS.Timeout = 10 * time.Second
	}
	if cfg.Matching.Threshold == 0 {
		cfg.Matching.Threshold = 70
	}
	if cfg.Matching.MaxCandidates == 0 {
		cfg.Matching.MaxCandidates = 5
	}
	if cfg.Matching.IDWeight == 0 {
		cfg.Matching.IDWeight = 100
	}
	if cfg.Matching.NameWeight == 0 {
		cfg.Matching.NameWeight = 50
	}
	if cfg.Matching.AgeStepWeight == 0 {
		cfg.Matching.AgeStepWeight = 10
	}
	if cfg.Matching.GenderWeight == 0 {
		cfg.Matching.GenderWeight = 10
	}
	if cfg.Notify.LocalesDir == "" {
		cfg.Notify.LocalesDir = "configs/locales"
	}
	if cfg.Notify.DefaultLocale == "" {
		cfg.Notify.DefaultLocale = "en"
	}
	if cfg.Notify.WorkerCount == 0 {
		cfg.Notify.WorkerCount = 4
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("REUNITE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("REUNITE_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("REUNITE_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("REUNITE_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("REUNITE_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("REUNITE_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("REUNITE_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("REUNITE_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("REUNITE_MINIO_ENDPOINT"); v != "" {
		cfg.MinIO.Endpoint = v
	}
	if v := os.Getenv("REUNITE_MINIO_ACCESS_KEY"); v != "" {
		cfg.MinIO.AccessKey = v
	}
	if v := os.Getenv("REUNITE_MINIO_SECRET_KEY"); v != "" {
		cfg.MinIO.SecretKey = v
	}
	if v := os.Getenv("REUNITE_MINIO_BUCKET"); v != "" {
		cfg.MinIO.Bucket = v
	}
	if v := os.Getenv("REUNITE_SMS_GATEWAY_URL"); v != "" {
		cfg.SMS.GatewayURL = v
	}
	if v := os.Getenv("REUNITE_SMS_API_KEY"); v != "" {
		cfg.SMS.APIKey = v
	}
	if v := os.Getenv("REUNITE_PUBLIC_BASE_URL"); v != "" {
		cfg.Notify.PublicBaseURL = v
	}
	if v := os.Getenv("REUNITE_LOCALES_DIR"); v != "" {
		cfg.Notify.LocalesDir = v
	}
}
