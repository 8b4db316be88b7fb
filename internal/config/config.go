package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config carries everything needed to reach the climate database.
type Config struct {
	AppEnv   string
	LogLevel slog.Level

	Driver          string // "mysql" or "sqlite3"
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	DSN             string // overrides the host/user fields when set
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// QueryTimeout bounds one invocation's round trip to the database.
	QueryTimeout time.Duration
}

// credentialsFile mirrors the keys of the ~/.climax.yaml file that earlier
// deployments of this toolkit used for database logins.
type credentialsFile struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	User   string `yaml:"user"`
	Passwd string `yaml:"passwd"`
	DB     string `yaml:"db"`
}

// Load reads configuration from a YAML credentials file and the environment.
// Environment variables win over the file; a .env file is honored when
// present. credentialsPath may be empty, in which case ~/.climax.yaml is
// tried and silently skipped when missing.
func Load(credentialsPath string) (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Host: "localhost",
		Port: 3306,
	}

	explicitPath := credentialsPath != ""
	if !explicitPath {
		if home, err := os.UserHomeDir(); err == nil {
			credentialsPath = filepath.Join(home, ".climax.yaml")
		}
	}
	if credentialsPath != "" {
		creds, err := loadCredentials(credentialsPath)
		if err != nil {
			if explicitPath || !os.IsNotExist(err) {
				return Config{}, err
			}
		} else {
			applyCredentials(&cfg, creds)
		}
	}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}
	cfg.AppEnv = appEnv

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = level

	driver := strings.TrimSpace(os.Getenv("DB_DRIVER"))
	if driver == "" {
		driver = "mysql"
	}
	switch driver {
	case "mysql", "sqlite3":
	default:
		return Config{}, fmt.Errorf("invalid DB_DRIVER %q (allowed: mysql, sqlite3)", driver)
	}
	cfg.Driver = driver

	if v := strings.TrimSpace(os.Getenv("DB_HOST")); v != "" {
		cfg.Host = v
	}
	if v := strings.TrimSpace(os.Getenv("DB_PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DB_PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	if v := strings.TrimSpace(os.Getenv("DB_USER")); v != "" {
		cfg.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := strings.TrimSpace(os.Getenv("DB_NAME")); v != "" {
		cfg.Database = v
	}
	cfg.DSN = strings.TrimSpace(os.Getenv("DB_DSN"))

	cfg.MaxOpenConns, err = envInt("DB_MAX_OPEN_CONNS", 2)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxIdleConns, err = envInt("DB_MAX_IDLE_CONNS", 1)
	if err != nil {
		return Config{}, err
	}
	cfg.ConnMaxLifetime, err = envDuration("DB_CONN_MAX_LIFETIME", 0)
	if err != nil {
		return Config{}, err
	}
	cfg.QueryTimeout, err = envDuration("QUERY_TIMEOUT", 30*time.Second)
	if err != nil {
		return Config{}, err
	}

	if cfg.DSN == "" && cfg.Driver == "mysql" {
		if cfg.User == "" {
			return Config{}, fmt.Errorf("database user missing (set DB_USER or the user key in %s)", credentialsPath)
		}
		if cfg.Database == "" {
			return Config{}, fmt.Errorf("database name missing (set DB_NAME or the db key in %s)", credentialsPath)
		}
	}
	if cfg.DSN == "" && cfg.Driver == "sqlite3" {
		return Config{}, fmt.Errorf("driver sqlite3 requires DB_DSN")
	}

	return cfg, nil
}

func loadCredentials(path string) (credentialsFile, error) {
	var creds credentialsFile
	raw, err := os.ReadFile(path)
	if err != nil {
		return creds, err
	}
	if err := yaml.Unmarshal(raw, &creds); err != nil {
		return creds, fmt.Errorf("parse credentials file %s: %w", path, err)
	}
	return creds, nil
}

func applyCredentials(cfg *Config, creds credentialsFile) {
	if creds.Host != "" {
		cfg.Host = creds.Host
	}
	if creds.Port != 0 {
		cfg.Port = creds.Port
	}
	if creds.User != "" {
		cfg.User = creds.User
	}
	if creds.Passwd != "" {
		cfg.Password = creds.Passwd
	}
	if creds.DB != "" {
		cfg.Database = creds.DB
	}
}

func envInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
