package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "supersecretjwtkey"

type Config struct {
	Port                    string
	Env                     string
	MongoURI                string
	MongoDatabase           string
	PostgresUrl             string
	SessionSQLitePath       string
	RedisURL                string
	JWTSecret               string
	FirebaseCredentialsPath string
	FirebaseStorageBucket   string
	UploadDir               string
	PublicBaseURL           string
	MetricsPort             string
	CORSOrigins             []string
	LogLevel                string
	AuthRateLimit           int
	AuthRateWindow          time.Duration

	envFileLoaded bool
}

// Load reads the configuration from the environment, after loading .env if present
func Load() *Config {
	envLoaded := godotenv.Load() == nil

	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "snapshare"),
		PostgresUrl:             getEnv("POSTGRES_URL", ""),
		SessionSQLitePath:       getEnv("SESSION_SQLITE_PATH", "sessions.db"),
		RedisURL:                getEnv("REDIS_URL", ""),
		JWTSecret:               getEnv("JWT_SECRET", defaultJWTSecret),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		FirebaseStorageBucket:   getEnv("FIREBASE_STORAGE_BUCKET", ""),
		UploadDir:               getEnv("UPLOAD_DIR", "uploads"),
		PublicBaseURL:           strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		MetricsPort:             getEnv("METRICS_PORT", "9090"),
		CORSOrigins:             splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		LogLevel:                getEnv("LOG_LEVEL", ""),
		AuthRateLimit:           getEnvInt("AUTH_RATE_LIMIT", 20),
		AuthRateWindow:          getEnvDuration("AUTH_RATE_WINDOW", time.Minute),
	}
	cfg.envFileLoaded = envLoaded
	return cfg
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return errors.New("MONGO_URI environment variable not set")
	}
	if c.IsProduction() && (c.JWTSecret == "" || c.JWTSecret == defaultJWTSecret) {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.FirebaseCredentialsPath != "" && c.FirebaseStorageBucket == "" {
		return errors.New("FIREBASE_STORAGE_BUCKET is required with FIREBASE_CREDENTIALS_PATH")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// EnvFileLoaded reports whether a .env file was found
func (c *Config) EnvFileLoaded() bool {
	return c.envFileLoaded
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
