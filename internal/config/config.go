package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	ModeDemo = "demo"
	ModeLive = "live"
)

type Config struct {
	Env      string         `json:"env"`
	Mode     string         `json:"mode"`
	Http     HttpConfig     `json:"http"`
	Postgres PostgresConfig `json:"postgres"`
	Redis    RedisConfig    `json:"redis"`
	Auth     AuthConfig     `json:"auth"`
	Trip     TripConfig     `json:"trip"`
	Push     PushConfig     `json:"push"`
	Fallback FallbackConfig `json:"fallback"`
	AMQP     AMQPConfig     `json:"amqp"`
	Limits   LimitsConfig   `json:"limits"`
}

type HttpConfig struct {
	Port            string        `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

type PostgresConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	User     string `json:"user"`
	Password string `json:"password,omitempty"`
	SSLMode  string `json:"ssl_mode"`

	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type RedisConfig struct {
	Addr        string        `json:"addr"`
	Password    string        `json:"password,omitempty"`
	DB          int           `json:"db"`
	LocationTTL time.Duration `json:"location_ttl"`
}

type AuthConfig struct {
	JWTSecret string `json:"-"`
}

type TripConfig struct {
	TickInterval   time.Duration `json:"tick_interval"`
	SampleTimeout  time.Duration `json:"sample_timeout"`
	FanOutTimeout  time.Duration `json:"fan_out_timeout"`
	WatchInterval  time.Duration `json:"watch_interval"`
	SweepInterval  time.Duration `json:"sweep_interval"`
	SweepWorkers   int           `json:"sweep_workers"`
	FanOutParallel int64         `json:"fan_out_parallel"`
}

type PushConfig struct {
	URL        string        `json:"url"`
	ServerKey  string        `json:"-"`
	QueueKey   string        `json:"queue_key"`
	MaxRetries int           `json:"max_retries"`
	Backoff    time.Duration `json:"backoff"`
	Disabled   bool          `json:"disabled"`
}

type FallbackConfig struct {
	SiteURL string `json:"site_url"`
}

type AMQPConfig struct {
	URL      string `json:"url,omitempty"`
	Exchange string `json:"exchange"`
}

type LimitsConfig struct {
	SOSPerMinute      int `json:"sos_per_minute"`
	ReportPerMinute   int `json:"report_per_minute"`
	LocationPerMinute int `json:"location_per_minute"`
}

func Load() (*Config, error) {
	stdLogger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		stdLogger.Warn(".env load warning", slog.Any("error", err))
	}

	cfg := &Config{
		Env:  getEnv("ENV", "local"),
		Mode: getEnv("MODE", ModeDemo),
		Http: HttpConfig{
			Port:            getEnv("HTTP_PORT", ":8080"),
			ReadTimeout:     getEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("POSTGRES_HOST", "pg-local"),
			Port:            getEnvInt("POSTGRES_PORT", 5432),
			Database:        getEnv("POSTGRES_DB", "safetrip"),
			User:            getEnv("POSTGRES_USER", "postgres"),
			Password:        getEnv("POSTGRES_PASSWORD", "postgres"),
			SSLMode:         getEnv("POSTGRES_SSL_MODE", "disable"),
			MaxConns:        20,
			MinConns:        1,
			MaxConnLifetime: time.Hour,
		},
		Redis: RedisConfig{
			Addr:        getEnv("REDIS_ADDR", "redis-local:6379"),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getEnvInt("REDIS_DB", 0),
			LocationTTL: getEnvDuration("REDIS_LOCATION_TTL", 6*time.Hour),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Trip: TripConfig{
			TickInterval:   getEnvDuration("TRIP_TICK_INTERVAL", time.Second),
			SampleTimeout:  getEnvDuration("TRIP_SAMPLE_TIMEOUT", 3*time.Second),
			FanOutTimeout:  getEnvDuration("TRIP_FANOUT_TIMEOUT", 30*time.Second),
			WatchInterval:  getEnvDuration("TRIP_WATCH_INTERVAL", 5*time.Second),
			SweepInterval:  getEnvDuration("TRIP_SWEEP_INTERVAL", 30*time.Second),
			SweepWorkers:   getEnvInt("TRIP_SWEEP_WORKERS", 4),
			FanOutParallel: int64(getEnvInt("TRIP_FANOUT_PARALLEL", 8)),
		},
		Push: PushConfig{
			URL:        getEnv("PUSH_URL", "https://fcm.googleapis.com/fcm/send"),
			ServerKey:  getEnv("PUSH_SERVER_KEY", ""),
			QueueKey:   getEnv("PUSH_QUEUE_KEY", "push:queue"),
			MaxRetries: getEnvInt("PUSH_MAX_RETRIES", 3),
			Backoff:    getEnvDuration("PUSH_BACKOFF", time.Second),
			Disabled:   getEnvBool("PUSH_DISABLED", false),
		},
		Fallback: FallbackConfig{
			SiteURL: getEnv("SITE_URL", "http://localhost:8080"),
		},
		AMQP: AMQPConfig{
			URL:      getEnv("AMQP_URL", ""),
			Exchange: getEnv("AMQP_EXCHANGE", "safety_topic"),
		},
		Limits: LimitsConfig{
			SOSPerMinute:      getEnvInt("RATE_SOS_PER_MINUTE", 6),
			ReportPerMinute:   getEnvInt("RATE_REPORT_PER_MINUTE", 10),
			LocationPerMinute: getEnvInt("RATE_LOCATION_PER_MINUTE", 120),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	stdLogger.Info("Config loaded successfully",
		slog.String("env", cfg.Env),
		slog.String("mode", cfg.Mode),
		slog.String("http_port", cfg.Http.Port),
		slog.String("postgres_db", cfg.Postgres.Database),
		slog.String("redis_addr", cfg.Redis.Addr),
		slog.Bool("amqp_enabled", cfg.AMQP.URL != ""))

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Http.Port == "" || c.Http.Port[0] != ':' {
		return errors.New("HTTP_PORT must start with ':' like ':8080'")
	}

	if c.Mode != ModeDemo && c.Mode != ModeLive {
		return errors.New("MODE must be demo or live")
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET required")
	}

	if c.Mode == ModeLive {
		if c.Postgres.Host == "" {
			return errors.New("POSTGRES_HOST required in live mode")
		}
		if c.Redis.Addr == "" {
			return errors.New("REDIS_ADDR required in live mode")
		}
	}

	if c.Trip.TickInterval <= 0 {
		return errors.New("TRIP_TICK_INTERVAL must be positive")
	}

	if c.Push.MaxRetries < 1 {
		return errors.New("PUSH_MAX_RETRIES must be at least 1")
	}

	if c.Trip.SweepWorkers < 1 {
		c.Trip.SweepWorkers = 1
	}

	if c.Trip.FanOutParallel < 1 {
		c.Trip.FanOutParallel = 1
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
