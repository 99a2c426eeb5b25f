package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "change-me-in-production"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	JWT       JWTConfig
	S3        S3Config
	AI        AIConfig
	Upload    UploadConfig
	CSV       CSVConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// S3Config holds object storage settings. Endpoint is set for MinIO or
// LocalStack and switches the client to path-style addressing.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// AIConfig holds settings for the document analysis provider.
type AIConfig struct {
	Provider    string        `mapstructure:"provider"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Endpoint    string        `mapstructure:"endpoint"`
	CallTimeout time.Duration `mapstructure:"call_timeout"`

	// Circuit breaker: trips after BreakerFailures consecutive failures and
	// stays open for BreakerOpenTimeout.
	BreakerFailures    uint32        `mapstructure:"breaker_failures"`
	BreakerOpenTimeout time.Duration `mapstructure:"breaker_open_timeout"`
}

// Enabled reports whether an API key was configured.
func (a *AIConfig) Enabled() bool {
	return strings.TrimSpace(a.APIKey) != ""
}

// UploadConfig holds upload limits for CSV files and documents.
type UploadConfig struct {
	MaxFileSizeMB             int64    `mapstructure:"max_file_size_mb"`
	MaxDocumentSizeMB         int64    `mapstructure:"max_document_size_mb"`
	AllowedCSVExtensions      []string `mapstructure:"allowed_csv_extensions"`
	AllowedDocumentExtensions []string `mapstructure:"allowed_document_extensions"`
}

// MaxFileSizeBytes returns the CSV size limit in bytes.
func (u *UploadConfig) MaxFileSizeBytes() int64 {
	return u.MaxFileSizeMB * 1024 * 1024
}

// MaxDocumentSizeBytes returns the document size limit in bytes.
func (u *UploadConfig) MaxDocumentSizeBytes() int64 {
	return u.MaxDocumentSizeMB * 1024 * 1024
}

// CSVConfig holds CSV validation settings.
type CSVConfig struct {
	NumericColumns []string `mapstructure:"numeric_columns"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig holds the per-IP token bucket applied to uploads.
// An UploadRPS of zero disables limiting.
type RateLimitConfig struct {
	UploadRPS   float64 `mapstructure:"upload_rps"`
	UploadBurst int     `mapstructure:"upload_burst"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from environment variables with the ONECORE_ prefix.
// A .env file in the working directory is read first if present; variables
// already set in the environment take precedence over it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config.Load: reading .env: %w", err)
	}
	return load()
}

func load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ONECORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8000")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "onecore")
	v.SetDefault("db.password", "onecore_secret")
	v.SetDefault("db.name", "onecore_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", defaultJWTSecret)
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "onecore")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "onecore-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// AI defaults
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "")
	v.SetDefault("ai.endpoint", "")
	v.SetDefault("ai.call_timeout", "60s")
	v.SetDefault("ai.breaker_failures", 5)
	v.SetDefault("ai.breaker_open_timeout", "30s")

	// Upload defaults
	v.SetDefault("upload.max_file_size_mb", 10)
	v.SetDefault("upload.max_document_size_mb", 20)
	v.SetDefault("upload.allowed_csv_extensions", "csv")
	v.SetDefault("upload.allowed_document_extensions", "pdf,jpg,jpeg,png")

	// CSV defaults; empty means the engine's built-in numeric columns.
	v.SetDefault("csv.numeric_columns", "")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173")

	// Rate limit defaults
	v.SetDefault("rate_limit.upload_rps", 2)
	v.SetDefault("rate_limit.upload_burst", 10)

	v.SetDefault("log.level", "info")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string][]string{
		"server.port":                        {"ONECORE_SERVER_PORT"},
		"server.read_timeout":                {"ONECORE_SERVER_READ_TIMEOUT"},
		"server.write_timeout":               {"ONECORE_SERVER_WRITE_TIMEOUT"},
		"server.environment":                 {"ONECORE_SERVER_ENVIRONMENT"},
		"db.host":                            {"ONECORE_DB_HOST"},
		"db.port":                            {"ONECORE_DB_PORT"},
		"db.user":                            {"ONECORE_DB_USER"},
		"db.password":                        {"ONECORE_DB_PASSWORD"},
		"db.name":                            {"ONECORE_DB_NAME"},
		"db.sslmode":                         {"ONECORE_DB_SSLMODE"},
		"db.max_open":                        {"ONECORE_DB_MAX_OPEN"},
		"db.max_idle":                        {"ONECORE_DB_MAX_IDLE"},
		"jwt.secret":                         {"ONECORE_JWT_SECRET"},
		"jwt.access_expiry":                  {"ONECORE_JWT_ACCESS_EXPIRY"},
		"jwt.refresh_expiry":                 {"ONECORE_JWT_REFRESH_EXPIRY"},
		"jwt.issuer":                         {"ONECORE_JWT_ISSUER"},
		"s3.region":                          {"ONECORE_S3_REGION"},
		"s3.bucket":                          {"ONECORE_S3_BUCKET"},
		"s3.endpoint":                        {"ONECORE_S3_ENDPOINT"},
		"s3.access_key":                      {"ONECORE_S3_ACCESS_KEY"},
		"s3.secret_key":                      {"ONECORE_S3_SECRET_KEY"},
		"s3.presign_expiry":                  {"ONECORE_S3_PRESIGN_EXPIRY"},
		"ai.provider":                        {"ONECORE_AI_PROVIDER"},
		"ai.api_key":                         {"ONECORE_AI_API_KEY", "OPENAI_API_KEY"},
		"ai.model":                           {"ONECORE_AI_MODEL"},
		"ai.endpoint":                        {"ONECORE_AI_ENDPOINT"},
		"ai.call_timeout":                    {"ONECORE_AI_CALL_TIMEOUT"},
		"ai.breaker_failures":                {"ONECORE_AI_BREAKER_FAILURES"},
		"ai.breaker_open_timeout":            {"ONECORE_AI_BREAKER_OPEN_TIMEOUT"},
		"upload.max_file_size_mb":            {"ONECORE_UPLOAD_MAX_FILE_SIZE_MB"},
		"upload.max_document_size_mb":        {"ONECORE_UPLOAD_MAX_DOCUMENT_SIZE_MB"},
		"upload.allowed_csv_extensions":      {"ONECORE_UPLOAD_ALLOWED_CSV_EXTENSIONS"},
		"upload.allowed_document_extensions": {"ONECORE_UPLOAD_ALLOWED_DOCUMENT_EXTENSIONS"},
		"csv.numeric_columns":                {"ONECORE_CSV_NUMERIC_COLUMNS"},
		"cors.allowed_origins":               {"ONECORE_CORS_ALLOWED_ORIGINS"},
		"rate_limit.upload_rps":              {"ONECORE_RATE_LIMIT_UPLOAD_RPS"},
		"rate_limit.upload_burst":            {"ONECORE_RATE_LIMIT_UPLOAD_BURST"},
		"log.level":                          {"ONECORE_LOG_LEVEL"},
	}
	for key, envs := range envBindings {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}

	cfg := &Config{}

	// Container platforms set a PORT env var. Use it if ONECORE_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("ONECORE_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.AI = AIConfig{
		Provider:           strings.ToLower(strings.TrimSpace(v.GetString("ai.provider"))),
		APIKey:             v.GetString("ai.api_key"),
		Model:              v.GetString("ai.model"),
		Endpoint:           v.GetString("ai.endpoint"),
		CallTimeout:        v.GetDuration("ai.call_timeout"),
		BreakerFailures:    v.GetUint32("ai.breaker_failures"),
		BreakerOpenTimeout: v.GetDuration("ai.breaker_open_timeout"),
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB:             v.GetInt64("upload.max_file_size_mb"),
		MaxDocumentSizeMB:         v.GetInt64("upload.max_document_size_mb"),
		AllowedCSVExtensions:      extensionList(v.GetString("upload.allowed_csv_extensions")),
		AllowedDocumentExtensions: extensionList(v.GetString("upload.allowed_document_extensions")),
	}
	cfg.CSV = CSVConfig{
		NumericColumns: splitList(v.GetString("csv.numeric_columns")),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.RateLimit = RateLimitConfig{
		UploadRPS:   v.GetFloat64("rate_limit.upload_rps"),
		UploadBurst: v.GetInt("rate_limit.upload_burst"),
	}
	cfg.Log = LogConfig{
		Level: v.GetString("log.level"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("config: ONECORE_JWT_SECRET must be set")
	}
	if c.Server.Environment == "production" && c.JWT.Secret == defaultJWTSecret {
		return errors.New("config: ONECORE_JWT_SECRET must be changed in production")
	}
	if c.Upload.MaxFileSizeMB <= 0 || c.Upload.MaxDocumentSizeMB <= 0 {
		return errors.New("config: upload size limits must be positive")
	}
	if c.RateLimit.UploadRPS < 0 {
		return errors.New("config: rate limit must not be negative")
	}
	return nil
}

// splitList parses a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func extensionList(s string) []string {
	items := splitList(s)
	for i, item := range items {
		items[i] = strings.ToLower(strings.TrimPrefix(item, "."))
	}
	return items
}
