// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every runtime setting of the server and the seeder.
// Values come from the environment; binaries load a .env file first via godotenv/autoload.
type Config struct {
	Port           string
	Env            string
	AllowedOrigins []string
	LogLevel       string

	DatabaseURL string

	// Session signing keys. Without them keys are generated per process and sessions end on restart.
	AuthPrivateKeyPath string
	AuthPublicKeyPath  string

	RedisAddr        string
	RedisDB          int
	LobbySnapshotTTL time.Duration

	LobbyCountdown time.Duration

	PollInterval  time.Duration
	PollTimeout   time.Duration
	StaleAfter    time.Duration
	SweepInterval time.Duration

	ImageFetchTimeout time.Duration
	ImageMaxBytes     int

	MetadataBaseURL string
	MetadataAPIKey  string
}

// HasAuthKeys reports whether stable session signing keys are configured.
func (c *Config) HasAuthKeys() bool {
	return c.AuthPrivateKeyPath != "" && c.AuthPublicKeyPath != ""
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads the environment and applies defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DatabaseURL:        databaseURL(),
		AuthPrivateKeyPath: getEnv("AUTH_PRIVATE_KEY_PATH", ""),
		AuthPublicKeyPath:  getEnv("AUTH_PUBLIC_KEY_PATH", ""),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		MetadataBaseURL:    strings.TrimRight(getEnv("METADATA_BASE_URL", ""), "/"),
		MetadataAPIKey:     getEnv("METADATA_API_KEY", ""),
	}

	if origins := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	var errs []error
	var err error

	if cfg.RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		errs = append(errs, err)
	}
	if cfg.ImageMaxBytes, err = getEnvInt("IMAGE_MAX_BYTES", 10<<20); err != nil {
		errs = append(errs, err)
	}

	durations := []struct {
		key string
		def time.Duration
		dst *time.Duration
	}{
		{"LOBBY_SNAPSHOT_TTL", 30 * 24 * time.Hour, &cfg.LobbySnapshotTTL},
		{"LOBBY_COUNTDOWN", 15 * time.Minute, &cfg.LobbyCountdown},
		{"PRESENCE_POLL_INTERVAL", 30 * time.Second, &cfg.PollInterval},
		{"PRESENCE_POLL_TIMEOUT", 5 * time.Second, &cfg.PollTimeout},
		{"PRESENCE_STALE_AFTER", 10 * time.Minute, &cfg.StaleAfter},
		{"PRESENCE_SWEEP_INTERVAL", time.Minute, &cfg.SweepInterval},
		{"IMAGE_FETCH_TIMEOUT", 10 * time.Second, &cfg.ImageFetchTimeout},
	}
	for _, d := range durations {
		v, err := getEnvDuration(d.key, d.def)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		*d.dst = v
	}

	if err := cfg.validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.PollInterval <= 0 {
		errs = append(errs, errors.New("PRESENCE_POLL_INTERVAL must be positive"))
	}
	if c.PollTimeout <= 0 {
		errs = append(errs, errors.New("PRESENCE_POLL_TIMEOUT must be positive"))
	}
	if c.LobbyCountdown <= 0 {
		errs = append(errs, errors.New("LOBBY_COUNTDOWN must be positive"))
	}
	if c.ImageMaxBytes <= 0 {
		errs = append(errs, errors.New("IMAGE_MAX_BYTES must be positive"))
	}
	if (c.AuthPrivateKeyPath == "") != (c.AuthPublicKeyPath == "") {
		errs = append(errs, errors.New("AUTH_PRIVATE_KEY_PATH and AUTH_PUBLIC_KEY_PATH must be set together"))
	} else if c.AuthPrivateKeyPath == "" && c.IsProduction() {
		errs = append(errs, errors.New("AUTH_PRIVATE_KEY_PATH and AUTH_PUBLIC_KEY_PATH are required in production"))
	}
	if c.MetadataBaseURL != "" {
		u, err := url.Parse(c.MetadataBaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Errorf("METADATA_BASE_URL %q is not an http(s) url", c.MetadataBaseURL))
		}
	}
	return errors.Join(errs...)
}

// databaseURL prefers DATABASE_URL and otherwise assembles one from the PG_* variables.
func databaseURL() string {
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		return v
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		getEnv("POSTGRES_USER", "postgres"),
		os.Getenv("POSTGRES_PASSWORD"),
		getEnv("PG_HOST", "localhost"),
		getEnv("PG_PORT", "5432"),
		getEnv("PG_DATABASE", "squadup"),
	)
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, s)
	}
	return v, nil
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, s)
	}
	return d, nil
}
