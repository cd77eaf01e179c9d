package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/yungbote/funny-backend/internal/data/db"
)

const maxConfigFileSize = 1 << 20

type Config struct {
	App     AppConfig     `koanf:"app"`
	Log     LogConfig     `koanf:"log"`
	Server  ServerConfig  `koanf:"server"`
	DB      DBConfig      `koanf:"db"`
	JWT     JWTConfig     `koanf:"jwt"`
	OpenAI  OpenAIConfig  `koanf:"openai"`
	CORS    CORSConfig    `koanf:"cors"`
	Metrics MetricsConfig `koanf:"metrics"`
	Otel    OtelConfig    `koanf:"otel"`
	Sentry  SentryConfig  `koanf:"sentry"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
}

type LogConfig struct {
	Mode string `koanf:"mode"`
}

type ServerConfig struct {
	Addr                   string `koanf:"addr"`
	ReadTimeoutSeconds     int    `koanf:"read_timeout_seconds"`
	WriteTimeoutSeconds    int    `koanf:"write_timeout_seconds"`
	ShutdownTimeoutSeconds int    `koanf:"shutdown_timeout_seconds"`
}

type DBConfig struct {
	Driver              string `koanf:"driver"`
	DSN                 string `koanf:"dsn"`
	Host                string `koanf:"host"`
	Port                string `koanf:"port"`
	User                string `koanf:"user"`
	Password            string `koanf:"password"`
	Name                string `koanf:"name"`
	SSLMode             string `koanf:"sslmode"`
	MaxOpenConns        int    `koanf:"max_open_conns"`
	MaxIdleConns        int    `koanf:"max_idle_conns"`
	ConnMaxLifetimeMins int    `koanf:"conn_max_lifetime_minutes"`
	SlowThresholdMillis int    `koanf:"slow_threshold_ms"`
	// AutoMigrate runs gorm AutoMigrate at startup instead of goose.
	AutoMigrate bool `koanf:"auto_migrate"`
}

type JWTConfig struct {
	SecretKey                string `koanf:"secret_key"`
	Algorithm                string `koanf:"algorithm"`
	AccessTokenExpireMinutes int    `koanf:"access_token_expire_minutes"`
}

type OpenAIConfig struct {
	APIKey         string  `koanf:"api_key"`
	BaseURL        string  `koanf:"base_url"`
	Model          string  `koanf:"model"`
	TimeoutSeconds int     `koanf:"timeout_seconds"`
	MaxRetries     int     `koanf:"max_retries"`
	RatePerSecond  float64 `koanf:"rate_per_second"`
	Burst          int     `koanf:"burst"`
}

type CORSConfig struct {
	// AllowOrigins is a comma separated list; "*" allows any origin.
	AllowOrigins string `koanf:"allow_origins"`
}

type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

type OtelConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	Insecure    bool    `koanf:"insecure"`
	SampleRatio float64 `koanf:"sample_ratio"`
}

type SentryConfig struct {
	DSN        string  `koanf:"dsn"`
	SampleRate float64 `koanf:"sample_rate"`
}

// LoadConfig reads .env, the optional YAML file at path, then the environment.
// Environment variables map SECTION_FIELD onto section.field, so
// JWT_SECRET_KEY sets jwt.secret_key.
func LoadConfig(path string) (Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if strings.TrimSpace(path) != "" {
		raw, err := readConfigFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := k.Load(rawbytes.Provider(raw), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	// DATABASE_URL and SECRET_KEY are the names older deployments use.
	if cfg.DB.DSN == "" {
		cfg.DB.DSN = k.String("database.url")
	}
	if cfg.JWT.SecretKey == "" {
		cfg.JWT.SecretKey = k.String("secret.key")
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func readConfigFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes", info.Size())
	}
	return os.ReadFile(path)
}

var envSections = map[string]bool{
	"app": true, "log": true, "server": true, "db": true, "jwt": true, "openai": true,
	"cors": true, "metrics": true, "otel": true, "sentry": true, "database": true, "secret": true,
}

// envKey maps SECTION_FIELD onto section.field. Variables outside the known
// sections are skipped.
func envKey(s string) string {
	parts := strings.SplitN(strings.ToLower(s), "_", 2)
	if len(parts) != 2 || !envSections[parts[0]] || parts[1] == "" {
		return ""
	}
	return parts[0] + "." + parts[1]
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "Funny Backend API"
	}
	if cfg.App.Version == "" {
		cfg.App.Version = "1.0.0"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.Log.Mode == "" {
		cfg.Log.Mode = "development"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Server.ReadTimeoutSeconds == 0 {
		cfg.Server.ReadTimeoutSeconds = 15
	}
	if cfg.Server.WriteTimeoutSeconds == 0 {
		// Report generation can take as long as the LLM timeout.
		cfg.Server.WriteTimeoutSeconds = 150
	}
	if cfg.Server.ShutdownTimeoutSeconds == 0 {
		cfg.Server.ShutdownTimeoutSeconds = 10
	}
	if cfg.DB.Driver == "" {
		cfg.DB.Driver = db.DriverPostgres
	}
	if cfg.DB.Host == "" {
		cfg.DB.Host = "localhost"
	}
	if cfg.DB.Port == "" {
		cfg.DB.Port = "5432"
	}
	if cfg.DB.User == "" {
		cfg.DB.User = "postgres"
	}
	if cfg.DB.Name == "" {
		cfg.DB.Name = "funny"
	}
	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
	}
	if cfg.DB.SlowThresholdMillis == 0 {
		cfg.DB.SlowThresholdMillis = 1000
	}
	if cfg.JWT.Algorithm == "" {
		cfg.JWT.Algorithm = "HS256"
	}
	if cfg.JWT.AccessTokenExpireMinutes == 0 {
		cfg.JWT.AccessTokenExpireMinutes = 120
	}
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = "gpt-4o-mini"
	}
	if cfg.OpenAI.TimeoutSeconds == 0 {
		cfg.OpenAI.TimeoutSeconds = 120
	}
	if cfg.OpenAI.MaxRetries == 0 {
		cfg.OpenAI.MaxRetries = 2
	}
	if cfg.OpenAI.RatePerSecond == 0 {
		cfg.OpenAI.RatePerSecond = 1
	}
	if cfg.OpenAI.Burst == 0 {
		cfg.OpenAI.Burst = 2
	}
	if cfg.CORS.AllowOrigins == "" {
		cfg.CORS.AllowOrigins = "*"
	}
	if cfg.Otel.SampleRatio == 0 {
		cfg.Otel.SampleRatio = 1
	}
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.JWT.SecretKey) == "" {
		errs = append(errs, errors.New("jwt.secret_key is required"))
	}
	if !strings.EqualFold(c.JWT.Algorithm, "HS256") {
		errs = append(errs, fmt.Errorf("jwt.algorithm %q is not supported", c.JWT.Algorithm))
	}
	if c.JWT.AccessTokenExpireMinutes < 0 {
		errs = append(errs, errors.New("jwt.access_token_expire_minutes must be positive"))
	}
	switch strings.ToLower(c.DB.Driver) {
	case db.DriverPostgres, "postgresql", db.DriverSQLite, "sqlite3":
	default:
		errs = append(errs, fmt.Errorf("db.driver %q is not supported", c.DB.Driver))
	}
	if c.OpenAI.TimeoutSeconds < 0 || c.OpenAI.MaxRetries < 0 || c.OpenAI.RatePerSecond < 0 {
		errs = append(errs, errors.New("openai limits must not be negative"))
	}
	if c.Otel.SampleRatio < 0 || c.Otel.SampleRatio > 1 {
		errs = append(errs, errors.New("otel.sample_ratio must be within [0, 1]"))
	}
	return errors.Join(errs...)
}

// CORSOrigins splits cors.allow_origins into a list.
func (c Config) CORSOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORS.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c Config) Database() db.Config {
	return db.Config{
		Driver:          c.DB.Driver,
		DSN:             c.DB.DSN,
		Host:            c.DB.Host,
		Port:            c.DB.Port,
		User:            c.DB.User,
		Password:        c.DB.Password,
		Name:            c.DB.Name,
		SSLMode:         c.DB.SSLMode,
		MaxOpenConns:    c.DB.MaxOpenConns,
		MaxIdleConns:    c.DB.MaxIdleConns,
		ConnMaxLifetime: time.Duration(c.DB.ConnMaxLifetimeMins) * time.Minute,
		SlowThreshold:   time.Duration(c.DB.SlowThresholdMillis) * time.Millisecond,
	}
}
