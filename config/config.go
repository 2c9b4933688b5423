package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Database   DatabaseConfig   `yaml:"database"`
	Minio      MinioConfig      `yaml:"minio"`
	AI         AIConfig         `yaml:"ai"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
	Generation GenerationConfig `yaml:"generation"`
	Auth       AuthConfig       `yaml:"auth"`
	Users      []User           `yaml:"users"`
}

type ServerConfig struct {
	Port            int `yaml:"port"`
	RateLimit       int `yaml:"rate_limit"` // requests per minute per client IP
	ShutdownSeconds int `yaml:"shutdown_seconds"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DatabaseConfig selects the record store. Driver "memory" keeps records
// in process and needs no DSN.
type DatabaseConfig struct {
	Driver       string `yaml:"driver"` // memory, sqlite, postgres, mysql
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

type MinioConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Bucket     string `yaml:"bucket"`
	UseSSL     bool   `yaml:"use_ssl"`
	ExpireDays int    `yaml:"expire_days"`
}

// AIConfig holds one section per AI backend. A backend whose APIKey is
// empty stays registered but unusable.
type AIConfig struct {
	OpenAI BackendConfig `yaml:"openai"`
	Gemini BackendConfig `yaml:"gemini"`
	Grok   BackendConfig `yaml:"grok"`
}

type BackendConfig struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

type AnalysisConfig struct {
	Backend        string        `yaml:"backend"`
	Model          string        `yaml:"model"`
	Workers        int           `yaml:"workers"`
	QueueSize      int           `yaml:"queue_size"`
	Timeout        time.Duration `yaml:"timeout"`         // analyzing longer than this is failed by the reaper, 0 disables
	ReaperInterval time.Duration `yaml:"reaper_interval"` // how often the reaper scans
}

type GenerationConfig struct {
	RequireAddresses bool `yaml:"require_addresses"`
}

type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret"`
	TokenExpireHours int    `yaml:"token_expire_hours"`
}

// User is a development account for the local login endpoint
type User struct {
	ID       string `yaml:"id"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// Load reads the YAML file at path (a missing file is not an error),
// applies .env and environment overrides, then fills defaults.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.AI.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&c.AI.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&c.AI.Grok.APIKey, "GROK_API_KEY")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Database.Driver, "DATABASE_DRIVER")
	setString(&c.Database.DSN, "DATABASE_URL")
	setString(&c.Minio.Endpoint, "MINIO_ENDPOINT")
	setString(&c.Minio.AccessKey, "MINIO_ACCESS_KEY")
	setString(&c.Minio.SecretKey, "MINIO_SECRET_KEY")
	setString(&c.Minio.Bucket, "MINIO_BUCKET")
	setString(&c.Log.Level, "LOG_LEVEL")
	setInt(&c.Server.Port, "PORT")
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = 100
	}
	if c.Server.ShutdownSeconds == 0 {
		c.Server.ShutdownSeconds = 5
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "memory"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Minio.ExpireDays == 0 {
		c.Minio.ExpireDays = 7
	}
	if c.Minio.Bucket == "" {
		c.Minio.Bucket = "risk-scan-pro"
	}
	if c.Auth.TokenExpireHours == 0 {
		c.Auth.TokenExpireHours = 24
	}
	if c.AI.OpenAI.Model == "" {
		c.AI.OpenAI.Model = "gpt-4o"
	}
	if c.AI.Gemini.Model == "" {
		c.AI.Gemini.Model = "gemini-1.5-pro"
	}
	if c.AI.Grok.Model == "" {
		c.AI.Grok.Model = "grok-2-latest"
	}
	if c.AI.Grok.BaseURL == "" {
		c.AI.Grok.BaseURL = "https://api.x.ai/v1"
	}
	for _, b := range []*BackendConfig{&c.AI.OpenAI, &c.AI.Gemini, &c.AI.Grok} {
		if b.Timeout == 0 {
			b.Timeout = 120 * time.Second
		}
	}
	if c.Analysis.Backend == "" {
		c.Analysis.Backend = "openai"
	}
	if c.Analysis.Model == "" && c.Analysis.Backend == "openai" {
		c.Analysis.Model = "gpt-4o-mini"
	}
	if c.Analysis.Workers == 0 {
		c.Analysis.Workers = 4
	}
	if c.Analysis.QueueSize == 0 {
		c.Analysis.QueueSize = 64
	}
	if c.Analysis.ReaperInterval == 0 {
		c.Analysis.ReaperInterval = time.Minute
	}
}

// FindUser finds a development user by email
func (c *Config) FindUser(email string) *User {
	for i := range c.Users {
		if c.Users[i].Email == email {
			return &c.Users[i]
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*dst = i
		}
	}
}
