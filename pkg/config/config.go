package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Store backends.
const (
	StoreBackendDrive = "drive"
	StoreBackendS3    = "s3"
)

// Mail transports.
const (
	MailModeSMTP = "smtp"
	MailModeSES  = "ses"
)

// Ledger backends.
const (
	LedgerBackendMemory   = "memory"
	LedgerBackendRedis    = "redis"
	LedgerBackendPostgres = "postgres"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	CORS     CORSConfig
	Log      LogConfig
	Uploads  UploadsConfig
	Store    StoreConfig
	Mail     MailConfig
	QR       QRConfig
	Ledger   LedgerConfig
	Redis    RedisConfig
	Database DatabaseConfig
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// UploadsConfig bounds inbound multipart payloads.
type UploadsConfig struct {
	MaxFileSizeBytes int64
}

// StoreConfig selects and tunes the remote artifact store.
type StoreConfig struct {
	Backend string
	Timeout time.Duration
	Drive   DriveConfig
	S3      S3Config
}

// DriveConfig carries Google Drive OAuth material. CredentialsJSON takes
// priority over CredentialsFile, mirroring env-first deployments.
type DriveConfig struct {
	CredentialsJSON string
	CredentialsFile string
	TokenFile       string
	RedirectURL     string
}

// S3Config configures the MinIO/S3-compatible store backend.
type S3Config struct {
	Endpoint    string
	AccessKey   string
	SecretKey   string
	Bucket      string
	Region      string
	UseSSL      bool
	DownloadTTL time.Duration
}

// MailConfig selects the notification transport.
type MailConfig struct {
	Mode     string
	From     string
	FromName string
	Subject  string
	Timeout  time.Duration
	SMTP     SMTPConfig
	SES      SESConfig
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

type SESConfig struct {
	Region    string
	AccessKey string
	SecretKey string
}

// QRConfig tunes code generation and the brand-mark overlay.
type QRConfig struct {
	Size          int
	BrandMarkPath string
}

// LedgerConfig selects the delivery ledger backend and its capacity.
type LedgerConfig struct {
	Backend  string
	Capacity int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
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
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxUpload := v.GetInt64("UPLOAD_MAX_FILE_SIZE")
	if maxUpload <= 0 {
		maxUpload = 50 * 1024 * 1024
	}
	cfg.Uploads = UploadsConfig{MaxFileSizeBytes: maxUpload}

	cfg.Store = StoreConfig{
		Backend: strings.ToLower(v.GetString("STORE_BACKEND")),
		Timeout: parseDuration(v.GetString("STORE_TIMEOUT"), 30*time.Second),
		Drive: DriveConfig{
			CredentialsJSON: v.GetString("GOOGLE_CREDENTIALS"),
			CredentialsFile: v.GetString("GOOGLE_CREDENTIALS_FILE"),
			TokenFile:       v.GetString("GOOGLE_TOKEN_FILE"),
			RedirectURL:     v.GetString("GOOGLE_OAUTH_REDIRECT_URL"),
		},
		S3: S3Config{
			Endpoint:    v.GetString("S3_ENDPOINT"),
			AccessKey:   v.GetString("S3_ACCESS_KEY"),
			SecretKey:   v.GetString("S3_SECRET_KEY"),
			Bucket:      v.GetString("S3_BUCKET"),
			Region:      v.GetString("S3_REGION"),
			UseSSL:      v.GetBool("S3_USE_SSL"),
			DownloadTTL: parseDuration(v.GetString("S3_DOWNLOAD_TTL"), 24*time.Hour),
		},
	}

	cfg.Mail = MailConfig{
		Mode:     strings.ToLower(v.GetString("MAIL_MODE")),
		From:     v.GetString("MAIL_FROM"),
		FromName: v.GetString("MAIL_FROM_NAME"),
		Subject:  v.GetString("MAIL_SUBJECT"),
		Timeout:  parseDuration(v.GetString("MAIL_TIMEOUT"), 30*time.Second),
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
		},
		SES: SESConfig{
			Region:    v.GetString("SES_REGION"),
			AccessKey: v.GetString("SES_ACCESS_KEY"),
			SecretKey: v.GetString("SES_SECRET_KEY"),
		},
	}

	cfg.QR = QRConfig{
		Size:          v.GetInt("QR_SIZE"),
		BrandMarkPath: v.GetString("QR_BRAND_MARK_PATH"),
	}

	capacity := v.GetInt("LEDGER_CAPACITY")
	if capacity <= 0 {
		capacity = 100
	}
	cfg.Ledger = LedgerConfig{
		Backend:  strings.ToLower(v.GetString("LEDGER_BACKEND")),
		Capacity: capacity,
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

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

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("UPLOAD_MAX_FILE_SIZE", 50*1024*1024)

	v.SetDefault("STORE_BACKEND", StoreBackendDrive)
	v.SetDefault("STORE_TIMEOUT", "30s")
	v.SetDefault("GOOGLE_CREDENTIALS", "")
	v.SetDefault("GOOGLE_CREDENTIALS_FILE", "client_secret.json")
	v.SetDefault("GOOGLE_TOKEN_FILE", "token.json")
	v.SetDefault("GOOGLE_OAUTH_REDIRECT_URL", "http://localhost:8080/oauth/callback")

	v.SetDefault("S3_ENDPOINT", "localhost:9000")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_BUCKET", "testdoc")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_USE_SSL", false)
	v.SetDefault("S3_DOWNLOAD_TTL", "24h")

	v.SetDefault("MAIL_MODE", MailModeSMTP)
	v.SetDefault("MAIL_FROM", "noreply@amptron.co.th")
	v.SetDefault("MAIL_FROM_NAME", "Amptron Instruments Thailand")
	v.SetDefault("MAIL_SUBJECT", "Test Report & PO - Amptron Instruments Thailand")
	v.SetDefault("MAIL_TIMEOUT", "30s")
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 465)
	v.SetDefault("SES_REGION", "us-east-1")

	v.SetDefault("QR_SIZE", 300)
	v.SetDefault("QR_BRAND_MARK_PATH", "./assets/WebMeter-logo.png")

	v.SetDefault("LEDGER_BACKEND", LedgerBackendMemory)
	v.SetDefault("LEDGER_CAPACITY", 100)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "testdoc")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
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
