package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/smartcampus/portal/backend/pkg/logger"
	"github.com/spf13/viper"
)

const devSessionKey = "dev_key_change_me"

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Session   SessionConfig
	Google    GoogleConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	MinIO     MinIOConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Production reports whether cookies must be Secure/SameSite=None.
func (s ServerConfig) Production() bool {
	return strings.EqualFold(s.Environment, "production")
}

// MongoDBConfig describes every source the connection supervisor can build a
// target from.
type MongoDBConfig struct {
	URI                  string
	Host                 string
	Hosts                []string
	User                 string
	Password             string
	Database             string
	ReplicaSet           string
	UseTLS               bool
	TLSAllowInvalidCerts bool
	ForceNonSRV          bool
	FallbackLocal        bool
	ConnectRetries       int
	FallbackRetries      int
	RetryInterval        time.Duration
	Timeout              time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type SessionConfig struct {
	Key        string
	TTL        time.Duration
	RoleSource string // "session" | "store"
}

type GoogleConfig struct {
	ClientID      string
	JWKSURL       string
	AllowedDomain string
	AllowedEmails []string
	// VerifyTimeout bounds one ID-token verification, key fetches included.
	VerifyTimeout time.Duration
	// AllowInsecure skips ID-token signature checks (integration tests only).
	AllowInsecure bool
}

type CORSConfig struct {
	AllowedOrigin string
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	// PublicURL overrides the base address returned for stored images.
	PublicURL string
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "5000")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("MONGO_DB", "smart_campus")
	v.SetDefault("MONGO_CONNECT_RETRIES", 5)
	v.SetDefault("MONGO_FALLBACK_RETRIES", 3)
	v.SetDefault("MONGO_RETRY_INTERVAL_MS", 60000)
	v.SetDefault("MONGO_TIMEOUT", 10)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("SESSION_KEY", devSessionKey)
	v.SetDefault("SESSION_TTL_HOURS", 24)
	v.SetDefault("SESSION_ROLE_SOURCE", "session")
	v.SetDefault("GOOGLE_JWKS_URL", "https://www.googleapis.com/oauth2/v3/certs")
	v.SetDefault("GOOGLE_VERIFY_TIMEOUT", 10)
	v.SetDefault("ALLOWED_EMAIL_DOMAIN", "klh.edu.in")
	v.SetDefault("FRONTEND_ORIGIN", "http://localhost:5173")
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	v.SetDefault("MINIO_BUCKET", "smart-campus")

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Environment:  v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:                  v.GetString("MONGO_URI"),
			Host:                 v.GetString("MONGO_HOST"),
			Hosts:                splitList(v.GetString("MONGO_HOSTS")),
			User:                 v.GetString("MONGO_USER"),
			Password:             v.GetString("MONGO_PASS"),
			Database:             v.GetString("MONGO_DB"),
			ReplicaSet:           v.GetString("MONGO_REPLICA_SET"),
			UseTLS:               v.GetBool("MONGO_USE_TLS"),
			TLSAllowInvalidCerts: v.GetBool("MONGO_TLS_ALLOW_INVALID_CERTS"),
			ForceNonSRV:          v.GetBool("MONGO_FORCE_NON_SRV"),
			FallbackLocal:        v.GetBool("MONGO_FALLBACK_LOCAL"),
			ConnectRetries:       v.GetInt("MONGO_CONNECT_RETRIES"),
			FallbackRetries:      v.GetInt("MONGO_FALLBACK_RETRIES"),
			RetryInterval:        time.Duration(v.GetInt("MONGO_RETRY_INTERVAL_MS")) * time.Millisecond,
			Timeout:              time.Duration(v.GetInt("MONGO_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Session: SessionConfig{
			Key:        v.GetString("SESSION_KEY"),
			TTL:        time.Duration(v.GetInt("SESSION_TTL_HOURS")) * time.Hour,
			RoleSource: strings.ToLower(v.GetString("SESSION_ROLE_SOURCE")),
		},
		Google: GoogleConfig{
			ClientID:      v.GetString("GOOGLE_CLIENT_ID"),
			JWKSURL:       v.GetString("GOOGLE_JWKS_URL"),
			AllowedDomain: strings.ToLower(strings.TrimPrefix(v.GetString("ALLOWED_EMAIL_DOMAIN"), "@")),
			AllowedEmails: splitList(v.GetString("ALLOWED_EMAILS")),
			VerifyTimeout: time.Duration(v.GetInt("GOOGLE_VERIFY_TIMEOUT")) * time.Second,
			AllowInsecure: v.GetBool("ALLOW_INSECURE_TOKEN"),
		},
		CORS: CORSConfig{
			AllowedOrigin: v.GetString("FRONTEND_ORIGIN"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			PublicURL: v.GetString("MINIO_PUBLIC_URL"),
		},
	}

	if cfg.Session.Key == devSessionKey || cfg.Session.Key == "" {
		if cfg.Server.Production() {
			return nil, errors.New("SESSION_KEY must be set when SERVER_ENVIRONMENT=production")
		}
		logger.Warnf("SESSION_KEY is not set; using the development key (set a secure value in production)")
		cfg.Session.Key = devSessionKey
	}
	if cfg.Session.RoleSource != "session" && cfg.Session.RoleSource != "store" {
		logger.Warnf("unknown SESSION_ROLE_SOURCE %q; using \"session\"", cfg.Session.RoleSource)
		cfg.Session.RoleSource = "session"
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
