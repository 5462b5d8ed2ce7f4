package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrMissingSecret is returned by Load when SECRET_KEY is unset.
var ErrMissingSecret = errors.New("SECRET_KEY environment variable is required (generate one with: openssl rand -base64 32)")

type Config struct {
	Port          string
	BaseURL       string // used to build absolute links in emails
	MongoURI      string
	DBName        string
	RedisAddr     string
	RedisPassword string
	SecretKey     string
	SessionTTL    time.Duration
	CookieSecure  bool
	MailServer    string
	MailPort      int
	MailUsername  string
	MailPassword  string
	MailSender    string
	S3Bucket      string
	S3Region      string
	S3AccessKeyID string
	S3SecretKey   string
	S3Endpoint    string // S3-compatible server, e.g. MinIO; empty for AWS
	MaxUploadMB   int64
	LogLevel      string
}

func Load() (*Config, error) {
	secret := strings.TrimSpace(os.Getenv("SECRET_KEY"))
	if secret == "" {
		return nil, ErrMissingSecret
	}
	port := getEnv("PORT", "8080")
	return &Config{
		Port:          port,
		BaseURL:       strings.TrimRight(getEnv("BASE_URL", "http://localhost:"+port), "/"),
		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		DBName:        getEnv("MONGODB_DB", "movie_watchlist"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SecretKey:     secret,
		SessionTTL:    time.Duration(getInt("SESSION_TTL_HOURS", 168)) * time.Hour,
		CookieSecure:  getBool("COOKIE_SECURE", false),
		MailServer:    getEnv("MAIL_SERVER", ""),
		MailPort:      int(getInt("MAIL_PORT", 587)),
		MailUsername:  getEnv("MAIL_USERNAME", ""),
		MailPassword:  getEnv("MAIL_PASSWORD", ""),
		MailSender:    getEnv("MAIL_DEFAULT_SENDER", ""),
		S3Bucket:      getEnv("AWS_S3_BUCKET", ""),
		S3Region:      getEnv("AWS_REGION", "us-east-1"),
		S3AccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		S3SecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		S3Endpoint:    getEnv("AWS_S3_ENDPOINT", ""),
		MaxUploadMB:   getInt("MAX_UPLOAD_MB", 5),
		LogLevel:      strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getInt returns fallback for unset, malformed or non-positive values.
func getInt(key string, fallback int64) int64 {
	if v := getEnv(key, ""); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := getEnv(key, ""); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
