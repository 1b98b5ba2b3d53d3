package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const defaultJWTSecret = "dev_secret"

type Config struct {
	Env       string `validate:"oneof=development staging test production"`
	Port      int    `validate:"min=1,max=65535"`
	APIPrefix string `validate:"startswith=/"`

	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	CORS        CORSConfig
	Log         LogConfig
	Suggestions SuggestionsConfig
	Audit       AuditConfig
	Export      ExportConfig
	Console     ConsoleConfig
}

type DatabaseConfig struct {
	Host         string `validate:"required"`
	Port         int    `validate:"min=1,max=65535"`
	User         string `validate:"required"`
	Password     string
	Name         string `validate:"required"`
	SSLMode      string `validate:"oneof=disable allow prefer require verify-ca verify-full"`
	MaxOpenConns int    `validate:"gte=0"`
	MaxIdleConns int    `validate:"gte=0,ltefield=MaxOpenConns"`
}

type RedisConfig struct {
	Host      string
	Port      int
	Password  string
	DB        int
	Namespace string
}

type JWTConfig struct {
	Secret     string        `validate:"required"`
	Expiration time.Duration `validate:"gte=1m"`
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SuggestionsConfig tunes the suggestion moderation endpoints.
type SuggestionsConfig struct {
	Enabled      bool
	PageSize     int
	CacheEnabled bool
	CacheTTL     time.Duration
}

// AuditConfig sizes the asynchronous audit writer.
type AuditConfig struct {
	Workers    int `validate:"min=1"`
	BufferSize int `validate:"min=1"`
	MaxRetries int `validate:"gte=0"`
}

// ExportConfig controls ledger downloads. FontPath must point at a TTF with
// Hangul glyphs for PDF output.
type ExportConfig struct {
	FontPath string
	CSVBOM   bool
}

// ConsoleConfig is read by the terminal console.
type ConsoleConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Verbose bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

// ValidateServer rejects settings the API server cannot run with. The
// default JWT secret is refused in production.
func (c *Config) ValidateServer() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Env == EnvProduction && (c.JWT.Secret == defaultJWTSecret || len(c.JWT.Secret) < 32) {
		return errors.New("invalid config: JWT_SECRET must be set to at least 32 characters in production")
	}
	return nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:      v.GetString("REDIS_HOST"),
		Port:      v.GetInt("REDIS_PORT"),
		Password:  v.GetString("REDIS_PASSWORD"),
		DB:        v.GetInt("REDIS_DB"),
		Namespace: v.GetString("REDIS_NAMESPACE"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	pageSize := v.GetInt("SUGGESTIONS_PAGE_SIZE")
	if pageSize <= 0 {
		pageSize = 20
	}
	cfg.Suggestions = SuggestionsConfig{
		Enabled:      v.GetBool("ENABLE_SUGGESTIONS"),
		PageSize:     pageSize,
		CacheEnabled: v.GetBool("ENABLE_LIST_CACHE"),
		CacheTTL:     parseDuration(v.GetString("SUGGESTIONS_CACHE_TTL"), time.Minute),
	}

	cfg.Audit = AuditConfig{
		Workers:    v.GetInt("AUDIT_WORKERS"),
		BufferSize: v.GetInt("AUDIT_BUFFER"),
		MaxRetries: v.GetInt("AUDIT_MAX_RETRIES"),
	}

	cfg.Export = ExportConfig{
		FontPath: v.GetString("EXPORT_FONT_PATH"),
		CSVBOM:   v.GetBool("EXPORT_CSV_BOM"),
	}

	cfg.Console = ConsoleConfig{
		BaseURL: strings.TrimRight(v.GetString("CONSOLE_BASE_URL"), "/"),
		Token:   v.GetString("CONSOLE_TOKEN"),
		Timeout: parseDuration(v.GetString("CONSOLE_TIMEOUT"), 10*time.Second),
		Verbose: v.GetBool("CONSOLE_VERBOSE"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "saju_admin")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_NAMESPACE", "saju-admin")

	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "saju-admin-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_SUGGESTIONS", true)
	v.SetDefault("SUGGESTIONS_PAGE_SIZE", 20)
	v.SetDefault("ENABLE_LIST_CACHE", false)
	v.SetDefault("SUGGESTIONS_CACHE_TTL", "1m")

	v.SetDefault("AUDIT_WORKERS", 1)
	v.SetDefault("AUDIT_BUFFER", 64)
	v.SetDefault("AUDIT_MAX_RETRIES", 3)

	v.SetDefault("EXPORT_FONT_PATH", "")
	v.SetDefault("EXPORT_CSV_BOM", true)

	v.SetDefault("CONSOLE_BASE_URL", "http://localhost:8080/api/v1")
	v.SetDefault("CONSOLE_TOKEN", "")
	v.SetDefault("CONSOLE_TIMEOUT", "10s")
	v.SetDefault("CONSOLE_VERBOSE", false)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
