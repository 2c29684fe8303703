package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// insecureDefaultSecret is only accepted when SOLVEHUB_ENV=development.
const insecureDefaultSecret = "supersecretkey"

type Config struct {
	Addr           string             `yaml:"addr"`
	JWTSecret      string             `yaml:"jwt_secret"`
	APITimeout     time.Duration      `yaml:"timeout"`
	DatabasePath   string             `yaml:"database_path"`
	MigrateOnStart bool               `yaml:"migrate_on_start"`
	TokenDuration  time.Duration      `yaml:"token_duration"`
	LogLevel       string             `yaml:"log_level"`
	Realtime       RealtimeConfig     `yaml:"realtime"`
	Notifications  NotificationConfig `yaml:"notifications"`
	RateLimit      RateLimitConfig    `yaml:"rate_limit"`
}

// RealtimeConfig tunes the live channels (websocket rooms and event streams).
type RealtimeConfig struct {
	SendBuffer      int           `yaml:"send_buffer"`
	WriteWait       time.Duration `yaml:"write_wait"`
	PongWait        time.Duration `yaml:"pong_wait"`
	StreamHeartbeat time.Duration `yaml:"stream_heartbeat"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

// NotificationConfig controls the durable notification record path.
type NotificationConfig struct {
	DurableTypes []string `yaml:"durable_types"`
	Workers      int      `yaml:"workers"`
	MaxAttempts  int      `yaml:"max_attempts"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"rps"`
	Burst             int     `yaml:"burst"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:           getEnv("SOLVEHUB_ADDR", ":8080"),
		JWTSecret:      getEnv("SOLVEHUB_JWT_SECRET", insecureDefaultSecret),
		APITimeout:     15 * time.Second,
		DatabasePath:   getEnv("SOLVEHUB_DATABASE_PATH", "solvehub.db"),
		MigrateOnStart: getEnvBool("SOLVEHUB_MIGRATE_ON_START", true),
		TokenDuration:  24 * time.Hour,
		LogLevel:       getEnv("SOLVEHUB_LOG_LEVEL", "info"),
		Realtime: RealtimeConfig{
			SendBuffer:      64,
			WriteWait:       10 * time.Second,
			PongWait:        60 * time.Second,
			StreamHeartbeat: 25 * time.Second,
		},
		Notifications: NotificationConfig{
			DurableTypes: []string{"message"},
			Workers:      2,
			MaxAttempts:  5,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 5,
			Burst:             20,
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	return cfg, nil
}

// Validate reports configuration that would make the server unsafe or unusable.
func (c *Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database_path is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("jwt_secret is required"))
	} else if c.JWTSecret == insecureDefaultSecret && os.Getenv("SOLVEHUB_ENV") != "development" {
		errs = append(errs, errors.New("jwt_secret uses the insecure default; set SOLVEHUB_JWT_SECRET or SOLVEHUB_ENV=development"))
	}
	if c.APITimeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}
	if c.TokenDuration <= 0 {
		errs = append(errs, errors.New("token_duration must be positive"))
	}
	if c.Realtime.SendBuffer <= 0 {
		errs = append(errs, errors.New("realtime.send_buffer must be positive"))
	}
	if c.Realtime.WriteWait <= 0 || c.Realtime.PongWait <= 0 {
		errs = append(errs, errors.New("realtime.write_wait and realtime.pong_wait must be positive"))
	}
	if c.Notifications.Workers <= 0 {
		errs = append(errs, errors.New("notifications.workers must be positive"))
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("rate_limit.rps and rate_limit.burst must be positive"))
	}

	return errors.Join(errs...)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}

	return b
}
