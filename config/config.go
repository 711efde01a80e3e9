package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Backend   BackendConfig
	Session   SessionConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Observ    ObservabilityConfig
	Dashboard DashboardConfig
}

type ServerConfig struct {
	Port      string
	Env       string
	LoginPath string
}

// BackendConfig describes the Village Mart REST API the console drives.
type BackendConfig struct {
	BaseURL        string
	Timeout        time.Duration
	SampleFallback bool
}

type SessionConfig struct {
	Store        string
	TTL          time.Duration
	CookieName   string
	RequiredRole string
}

// DatabaseConfig holds the audit log connection. An empty URL disables the audit store.
type DatabaseConfig struct {
	URL string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig holds broker settings. No brokers disables event publishing and the catalog worker.
type KafkaConfig struct {
	Brokers       []string
	TopicActions  string
	TopicCatalog  string
	ConsumerGroup string
}

type ObservabilityConfig struct {
	JaegerEndpoint string
	PrometheusPort string
}

type DashboardConfig struct {
	PollInterval time.Duration
}

func Load() *Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	timeoutMs, _ := strconv.Atoi(getEnv("API_TIMEOUT_MS", "5000"))
	sessionTTL, _ := time.ParseDuration(getEnv("SESSION_TTL", "12h"))
	pollInterval, _ := time.ParseDuration(getEnv("DASHBOARD_POLL_INTERVAL", "5m"))
	fallback, _ := strconv.ParseBool(getEnv("SAMPLE_FALLBACK", "true"))

	cfg := &Config{
		Server: ServerConfig{
			Port:      getEnv("PORT", "3000"),
			Env:       getEnv("ENV", "development"),
			LoginPath: getEnv("LOGIN_PATH", "/login"),
		},
		Backend: BackendConfig{
			BaseURL:        strings.TrimRight(getEnv("NEXT_PUBLIC_API_URL", getEnv("API_BASE_URL", "http://localhost:4000")), "/"),
			Timeout:        time.Duration(timeoutMs) * time.Millisecond,
			SampleFallback: fallback,
		},
		Session: SessionConfig{
			Store:        getEnv("SESSION_STORE", "redis"),
			TTL:          sessionTTL,
			CookieName:   getEnv("SESSION_COOKIE", "vm_admin_session"),
			RequiredRole: getEnv("ADMIN_ROLE", "admin"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers:       splitList(getEnv("KAFKA_BROKERS", "")),
			TopicActions:  getEnv("KAFKA_TOPIC_ADMIN_ACTIONS", "admin-actions"),
			TopicCatalog:  getEnv("KAFKA_TOPIC_CATALOG_EVENTS", "catalog-events"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "admin-console-group"),
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
			PrometheusPort: getEnv("PROMETHEUS_PORT", "9090"),
		},
		Dashboard: DashboardConfig{
			PollInterval: pollInterval,
		},
	}

	if cfg.Backend.Timeout <= 0 {
		cfg.Backend.Timeout = 5 * time.Second
	}
	if cfg.Session.TTL <= 0 {
		cfg.Session.TTL = 12 * time.Hour
	}
	if cfg.Dashboard.PollInterval <= 0 {
		cfg.Dashboard.PollInterval = 5 * time.Minute
	}

	log.Printf("Config loaded: env=%s, port=%s, api=%s", cfg.Server.Env, cfg.Server.Port, cfg.Backend.BaseURL)
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func splitList(val string) []string {
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
