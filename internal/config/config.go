package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPPort string
	Debug    bool

	DBDriver        string // "pgx" | "sqlite"
	DatabaseURL     string
	SQLitePath      string
	DBMaxOpenConns  int
	DBMaxIdleConns  int
	DBConnLifetime  time.Duration
	QueryTimeout    time.Duration
	PageLimit       int
	PageMaxLimit    int
	StatsConcurrent int

	RedisAddr string
	CacheTTL  time.Duration

	UseKafka           bool
	KafkaBrokers       []string
	KafkaTopicRequests string

	ClickHouseAddr string
	ClickHouseDB   string

	TrackerWorkers int
	TrackerBuffer  int

	// warnings acumula valores de entorno inválidos sustituidos por el default.
	warnings []string
}

func LoadConfig() *Config {
	cfg := &Config{}

	getEnv := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}
	getInt := func(key string, fallback int) int {
		raw := os.Getenv(key)
		if raw == "" {
			return fallback
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			cfg.warnings = append(cfg.warnings, fmt.Sprintf("%s=%q is not a valid integer, using %d", key, raw, fallback))
			return fallback
		}
		return v
	}
	getDuration := func(key string, fallback time.Duration) time.Duration {
		raw := os.Getenv(key)
		if raw == "" {
			return fallback
		}
		v, err := time.ParseDuration(raw)
		if err != nil || v < 0 {
			cfg.warnings = append(cfg.warnings, fmt.Sprintf("%s=%q is not a valid duration, using %s", key, raw, fallback))
			return fallback
		}
		return v
	}
	getBool := func(key string) bool {
		v, _ := strconv.ParseBool(os.Getenv(key))
		return v
	}

	cfg.HTTPPort = getEnv("HTTP_PORT", "8080")
	cfg.Debug = getBool("DEBUG")

	cfg.DBDriver = getEnv("DB_DRIVER", "sqlite")
	cfg.DatabaseURL = getEnv("DATABASE_URL", "")
	cfg.SQLitePath = getEnv("SQLITE_PATH", "./opendata.db")
	cfg.DBMaxOpenConns = getInt("DB_MAX_OPEN_CONNS", 10)
	cfg.DBMaxIdleConns = getInt("DB_MAX_IDLE_CONNS", 5)
	cfg.DBConnLifetime = getDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	cfg.QueryTimeout = getDuration("QUERY_TIMEOUT", 5*time.Second)
	cfg.PageLimit = getInt("PAGE_DEFAULT_LIMIT", 30)
	cfg.PageMaxLimit = getInt("PAGE_MAX_LIMIT", 100)
	cfg.StatsConcurrent = getInt("STATS_CONCURRENCY", 4)

	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.CacheTTL = getDuration("CACHE_TTL", 5*time.Minute)

	cfg.UseKafka = getBool("USE_KAFKA")
	cfg.KafkaBrokers = strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",")
	cfg.KafkaTopicRequests = getEnv("KAFKA_TOPIC_REQUESTS", "api-requests")

	cfg.ClickHouseAddr = getEnv("CLICKHOUSE_ADDR", "")
	cfg.ClickHouseDB = getEnv("CLICKHOUSE_DB", "opendata")

	cfg.TrackerWorkers = getInt("TRACKER_WORKERS", 4)
	cfg.TrackerBuffer = getInt("TRACKER_BUFFER", 256)

	return cfg
}

// DSN devuelve la cadena de conexión del driver configurado.
func (c *Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.SQLitePath
	}
	return c.DatabaseURL
}

// Validate devuelve avisos sobre valores ignorados y un error si la
// configuración no permite arrancar.
func (c *Config) Validate() ([]string, error) {
	warnings := append([]string(nil), c.warnings...)

	switch c.DBDriver {
	case "sqlite":
	case "pgx":
		if c.DatabaseURL == "" {
			return warnings, fmt.Errorf("DATABASE_URL is required when DB_DRIVER=pgx")
		}
	default:
		return warnings, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	if c.PageLimit < 1 {
		warnings = append(warnings, "PAGE_DEFAULT_LIMIT must be >= 1, using 30")
		c.PageLimit = 30
	}
	if c.PageMaxLimit < c.PageLimit {
		warnings = append(warnings, fmt.Sprintf("PAGE_MAX_LIMIT below default limit, using %d", c.PageLimit))
		c.PageMaxLimit = c.PageLimit
	}
	return warnings, nil
}
