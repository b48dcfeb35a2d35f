package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{"DB_DRIVER", "PAGE_DEFAULT_LIMIT", "PAGE_MAX_LIMIT", "QUERY_TIMEOUT", "KAFKA_BROKERS", "CLICKHOUSE_ADDR"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 30, cfg.PageLimit)
	assert.Equal(t, 100, cfg.PageMaxLimit)
	assert.Equal(t, 5*time.Second, cfg.QueryTimeout)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Empty(t, cfg.ClickHouseAddr)
	assert.Equal(t, cfg.SQLitePath, cfg.DSN())

	warnings, err := cfg.Validate()
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("PAGE_DEFAULT_LIMIT", "")
	t.Setenv("PAGE_MAX_LIMIT", "lots")
	t.Setenv("QUERY_TIMEOUT", "-3s")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")

	cfg := LoadConfig()
	assert.Equal(t, 100, cfg.PageMaxLimit)
	assert.Equal(t, 5*time.Second, cfg.QueryTimeout)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)

	warnings, err := cfg.Validate()
	require.NoError(t, err)
	assert.Len(t, warnings, 2)
}

func TestValidate(t *testing.T) {
	cfg := &Config{DBDriver: "pgx", PageLimit: 30, PageMaxLimit: 100}
	_, err := cfg.Validate()
	assert.Error(t, err)

	cfg.DatabaseURL = "postgres://localhost/opendata"
	_, err = cfg.Validate()
	require.NoError(t, err)
	assert.Equal(t, cfg.DatabaseURL, cfg.DSN())

	cfg = &Config{DBDriver: "oracle"}
	_, err = cfg.Validate()
	assert.Error(t, err)

	cfg = &Config{DBDriver: "sqlite", PageLimit: 50, PageMaxLimit: 10}
	warnings, err := cfg.Validate()
	require.NoError(t, err)
	assert.Len(t, warnings, 1)
	assert.Equal(t, 50, cfg.PageMaxLimit)
}
