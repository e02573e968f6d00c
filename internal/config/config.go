package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"task-manager/internal/auth"
)

const defaultConfigFile = "config.yaml"

// Config keeps runtime settings for the API server. It is loaded once and never mutated.
type Config struct {
	DatabaseURL    string
	ListenAddr     string
	SecretKey      string
	Algorithm      string
	AccessTokenTTL time.Duration
	BcryptCost     int
	UploadDir      string
	MaxUploadBytes int64
	CORSOrigins    []string
	SweepInterval  time.Duration
	SweepAt        string
}

// fileConfig mirrors the optional YAML file. Pointers distinguish absent keys from zero values.
type fileConfig struct {
	DatabaseURL              string   `yaml:"database_url"`
	ListenAddr               string   `yaml:"listen_addr"`
	SecretKey                string   `yaml:"secret_key"`
	Algorithm                string   `yaml:"algorithm"`
	AccessTokenExpireMinutes *int     `yaml:"access_token_expire_minutes"`
	BcryptCost               *int     `yaml:"bcrypt_cost"`
	UploadDir                string   `yaml:"upload_dir"`
	MaxUploadMB              *int     `yaml:"max_upload_mb"`
	CORSOrigins              []string `yaml:"cors_origins"`
	SweepIntervalHours       *int     `yaml:"sweep_interval_hours"`
	SweepAt                  string   `yaml:"sweep_at"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DatabaseURL:    "task_manager.db",
		ListenAddr:     ":8001",
		Algorithm:      "HS256",
		AccessTokenTTL: 30 * time.Minute,
		BcryptCost:     auth.DefaultCost,
		UploadDir:      "uploads/profile_pictures",
		MaxUploadBytes: 5 << 20,
		CORSOrigins:    []string{"http://localhost:4200", "http://localhost", "http://127.0.0.1:4200"},
		SweepInterval:  24 * time.Hour,
	}
}

// Load reads configuration from defaults, an optional YAML file, a .env file and the environment,
// later sources winning.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Default()

	path := strings.TrimSpace(getenv("CONFIG_FILE"))
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	if err := applyFile(&cfg, path, explicit, getenv); err != nil {
		return Config{}, err
	}
	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyFile overlays the YAML file. ${VAR} placeholders are expanded before parsing.
func applyFile(cfg *Config, path string, required bool, getenv func(string) string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal([]byte(os.Expand(string(data), getenv)), &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.DatabaseURL, fc.DatabaseURL)
	setString(&cfg.ListenAddr, fc.ListenAddr)
	setString(&cfg.SecretKey, fc.SecretKey)
	setString(&cfg.Algorithm, fc.Algorithm)
	setString(&cfg.UploadDir, fc.UploadDir)
	setString(&cfg.SweepAt, fc.SweepAt)
	if fc.AccessTokenExpireMinutes != nil {
		cfg.AccessTokenTTL = time.Duration(*fc.AccessTokenExpireMinutes) * time.Minute
	}
	if fc.BcryptCost != nil {
		cfg.BcryptCost = *fc.BcryptCost
	}
	if fc.MaxUploadMB != nil {
		cfg.MaxUploadBytes = int64(*fc.MaxUploadMB) << 20
	}
	if fc.SweepIntervalHours != nil {
		cfg.SweepInterval = time.Duration(*fc.SweepIntervalHours) * time.Hour
	}
	if len(fc.CORSOrigins) > 0 {
		cfg.CORSOrigins = fc.CORSOrigins
	}
	return nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	env := func(key string) string { return strings.TrimSpace(getenv(key)) }

	setString(&cfg.DatabaseURL, env("DATABASE_URL"))
	setString(&cfg.ListenAddr, env("LISTEN_ADDR"))
	setString(&cfg.SecretKey, env("SECRET_KEY"))
	setString(&cfg.Algorithm, env("ALGORITHM"))
	setString(&cfg.UploadDir, env("UPLOAD_DIR"))
	setString(&cfg.SweepAt, env("SWEEP_AT"))

	if v, ok, err := envInt(env, "ACCESS_TOKEN_EXPIRE_MINUTES"); err != nil {
		return err
	} else if ok {
		cfg.AccessTokenTTL = time.Duration(v) * time.Minute
	}
	if v, ok, err := envInt(env, "BCRYPT_COST"); err != nil {
		return err
	} else if ok {
		cfg.BcryptCost = v
	}
	if v, ok, err := envInt(env, "MAX_UPLOAD_MB"); err != nil {
		return err
	} else if ok {
		cfg.MaxUploadBytes = int64(v) << 20
	}
	if v, ok, err := envInt(env, "SWEEP_INTERVAL_HOURS"); err != nil {
		return err
	} else if ok {
		cfg.SweepInterval = time.Duration(v) * time.Hour
	}
	if raw := env("CORS_ORIGINS"); raw != "" {
		cfg.CORSOrigins = splitList(raw)
	}
	return nil
}

func (c Config) validate() error {
	if _, err := auth.SigningMethod(c.Algorithm); err != nil {
		return fmt.Errorf("ALGORITHM: %w", err)
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	if c.SweepInterval < 0 {
		return fmt.Errorf("SWEEP_INTERVAL_HOURS must not be negative")
	}
	if c.SweepAt != "" {
		if _, err := time.Parse("15:04", c.SweepAt); err != nil {
			return fmt.Errorf("SWEEP_AT: invalid time %q, expected HH:MM", c.SweepAt)
		}
	}
	return nil
}

// RequireSecret fails when no signing secret is configured.
func (c Config) RequireSecret() error {
	if c.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY is required")
	}
	return nil
}

func envInt(env func(string) string, key string) (int, bool, error) {
	raw := env(key)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%s: invalid integer %q", key, raw)
	}
	return v, true, nil
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
