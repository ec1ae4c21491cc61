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

// Config holds the top-level application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Provider ProviderConfig `yaml:"provider"`
	OCR      OCRConfig      `yaml:"ocr"`
	Security SecurityConfig `yaml:"security"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
	UploadDir   string `yaml:"upload_dir"` // spool for in-flight uploads; default under os.TempDir()

	// Concurrent upload pipelines, in total and per account.
	MaxConcurrentUploads int `yaml:"max_concurrent_uploads"`
	MaxUploadsPerUser    int `yaml:"max_uploads_per_user"`
}

// DatabaseConfig holds database connection settings.
// An empty URL selects the in-memory repositories.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// ProviderConfig holds the summarization endpoint settings.
type ProviderConfig struct {
	Name      string        `yaml:"name"`
	URL       string        `yaml:"url"`     // base URL, "/chat/completions" is appended
	APIKey    string        `yaml:"api_key"` // bearer credential for every call
	Model     string        `yaml:"model"`
	MaxTokens int           `yaml:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout"`
}

// OCRConfig holds the tesseract settings used for image uploads.
type OCRConfig struct {
	Tesseract string `yaml:"tesseract"`
	Language  string `yaml:"language"`
}

// SecurityConfig holds auth and at-rest encryption secrets.
type SecurityConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"`
	JWTExpiresIn   time.Duration `yaml:"jwt_expires_in"`
	EncryptionKey  string        `yaml:"encryption_key"`  // 64 hex chars, or a passphrase
	EncryptionSalt string        `yaml:"encryption_salt"` // required for passphrase keys
}

// defaults returns a Config populated with sensible default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        3010,
			MaxUploadMB: 50,

			MaxConcurrentUploads: 8,
			MaxUploadsPerUser:    2,
		},
		Provider: ProviderConfig{
			Name:      "openrouter",
			URL:       "https://openrouter.ai/api/v1",
			Model:     "google/gemma-3-12b-it:free",
			MaxTokens: 1000,
			Timeout:   60 * time.Second,
		},
		OCR: OCRConfig{
			Tesseract: "tesseract",
			Language:  "eng",
		},
		Security: SecurityConfig{
			JWTSecret:    "ai-test-task",
			JWTExpiresIn: 24 * time.Hour,
		},
	}
}

// Load reads a YAML configuration file at path and returns a Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// LoadDefault tries to load "config.yaml" from the current directory.
// If the file does not exist, it returns sensible defaults.
// Any other error (e.g. permission denied, malformed YAML) is returned.
// Environment variables are applied on top in both cases.
func LoadDefault() (*Config, error) {
	cfg, err := Load("config.yaml")
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = defaults()
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set.
// Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from well-known environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		c.Provider.APIKey = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Security.JWTSecret = v
	}
	if v := os.Getenv("JWT_EXPIRES_IN"); v != "" {
		d, err := parseExpiry(v)
		if err != nil {
			return fmt.Errorf("invalid JWT_EXPIRES_IN %q: %w", v, err)
		}
		c.Security.JWTExpiresIn = d
	}
	if v := os.Getenv("ENCRYPTION_KEY"); v != "" {
		c.Security.EncryptionKey = v
	}
	if v := os.Getenv("ENCRYPTION_SALT"); v != "" {
		c.Security.EncryptionSalt = v
	}
	return nil
}

// parseExpiry accepts Go durations ("36h") and the day form ("1d").
func parseExpiry(v string) (time.Duration, error) {
	if n := len(v); n > 1 && v[n-1] == 'd' {
		days, err := strconv.Atoi(v[:n-1])
		if err != nil {
			return 0, err
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(v)
}
