package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
	assert.Empty(t, c.DatabaseDSN)
	assert.Equal(t, 10, c.BcryptCost)
	assert.Empty(t, c.OracleURL)
	assert.Equal(t, 2*time.Second, c.OracleTimeout)
	assert.Equal(t, 200, c.OracleExistsCode)
	assert.Equal(t, 404, c.OracleAbsentCode)
	assert.Equal(t, time.Minute, c.OracleTokenValidity)
	assert.Equal(t, 10*time.Minute, c.OracleCacheTTL)
	assert.Equal(t, "slog", c.LogBackend)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, 5*time.Second, c.RequestTimeout)
	assert.Equal(t, 10*time.Second, c.ShutdownTimeout)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"certhub"}

	c := LoadConfig()
	require.NotNil(t, c, "LoadConfig must not return nil")

	var want Config
	want.LoadDefaults()
	assert.Equal(t, want, *c)
}

func TestLoadConfig_Precedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "", map[string]any{
		"endpoint_addr_http": ":7000",
		"oracle_url":         "http://from-json",
		"log_level":          "debug",
	})
	t.Setenv("CERTHUB_ORACLE_URL", "http://from-env")
	t.Setenv("CERTHUB_LOG_LEVEL", "warn")

	os.Args = []string{"certhub", "-c", path, "-l", "error"}

	c := LoadConfig()

	assert.Equal(t, ":7000", c.EndpointAddrHTTP, "json overrides defaults")
	assert.Equal(t, "http://from-env", c.OracleURL, "env overrides json")
	assert.Equal(t, "error", c.LogLevel, "flags override env")
	assert.Equal(t, 2*time.Second, c.OracleTimeout, "untouched fields keep defaults")
}
