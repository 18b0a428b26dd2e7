package config

import (
	"log/slog"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends selectable through CREDENTIAL_STORE and KEY_STORE.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendMongoDB  = "mongodb"
	BackendRedis    = "redis"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr        string
	Environment string
	LogLevel    slog.Level

	TokenSecret    string
	TokenTTL       time.Duration
	VerifyBaseURL  string
	RequestTimeout time.Duration
	MaxBodyBytes   int64

	IssueRatePerMinute int
	IssueRateBurst     int
	TrustedProxies     []netip.Prefix

	CredentialStore string
	KeyStore        string
	TrackerStore    string

	Database DatabaseConfig
	Redis    RedisConfig
	Mongo    MongoConfig
	Kafka    KafkaConfig

	TracesToStdout bool
}

// DatabaseConfig configures the Postgres credential store.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the Redis key store and issuance tracker.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// MongoConfig configures the MongoDB credential store.
type MongoConfig struct {
	URI         string
	Database    string
	Timeout     time.Duration
	MaxPoolSize int
}

// KafkaConfig configures the audit event sink. Empty Brokers keeps audit in memory.
type KafkaConfig struct {
	Brokers    string
	AuditTopic string
	Acks       string
	Retries    int
}

// DefaultTokenTTL is the lifetime of verification access tokens.
const DefaultTokenTTL = time.Hour

// DefaultVerifyBaseURL prefixes the verification link encoded into QR codes.
const DefaultVerifyBaseURL = "https://localhost:3000"

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	tokenSecret := os.Getenv("VC_TOKEN_SECRET")
	if tokenSecret == "" {
		// Use a default for development - should be overridden in production
		tokenSecret = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:        getEnv("TOURISTID_ADDR", ":8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLevel(os.Getenv("LOG_LEVEL")),

		TokenSecret:    tokenSecret,
		TokenTTL:       getDuration("VC_TOKEN_TTL", DefaultTokenTTL),
		VerifyBaseURL:  strings.TrimRight(getEnv("VERIFY_BASE_URL", DefaultVerifyBaseURL), "/"),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 30*time.Second),
		MaxBodyBytes:   int64(getInt("MAX_BODY_BYTES", 1<<20)),

		IssueRatePerMinute: getInt("ISSUE_RATE_PER_MINUTE", 30),
		IssueRateBurst:     getInt("ISSUE_RATE_BURST", 5),
		TrustedProxies:     parsePrefixes(os.Getenv("TRUSTED_PROXIES")),

		CredentialStore: getEnv("CREDENTIAL_STORE", BackendMemory),
		KeyStore:        getEnv("KEY_STORE", BackendMemory),
		TrackerStore:    getEnv("TRACKER_STORE", BackendMemory),

		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Mongo: MongoConfig{
			URI:         os.Getenv("MONGODB_URI"),
			Database:    getEnv("MONGODB_DATABASE", "touristid"),
			Timeout:     getDuration("MONGODB_TIMEOUT", 15*time.Second),
			MaxPoolSize: getInt("MONGODB_MAX_POOL_SIZE", 0),
		},
		Kafka: KafkaConfig{
			Brokers:    os.Getenv("KAFKA_BROKERS"),
			AuditTopic: getEnv("AUDIT_TOPIC", "touristid.audit.events"),
			Acks:       getEnv("KAFKA_ACKS", "all"),
			Retries:    getInt("KAFKA_RETRIES", 3),
		},

		TracesToStdout: os.Getenv("OTEL_TRACES_STDOUT") == "true",
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func parsePrefixes(s string) []netip.Prefix {
	var out []netip.Prefix
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if p, err := netip.ParsePrefix(part); err == nil {
			out = append(out, p)
		}
	}
	return out
}
