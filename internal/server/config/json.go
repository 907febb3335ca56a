package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/certhub/internal/flagx"
	"github.com/dmitrijs2005/certhub/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations use
// timex.Duration so both "2s" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrHTTP    string         `json:"endpoint_addr_http"`
	DatabaseDSN         string         `json:"database_dsn"`
	BcryptCost          int            `json:"bcrypt_cost"`
	OracleURL           string         `json:"oracle_url"`
	OracleTimeout       timex.Duration `json:"oracle_timeout"`
	OracleExistsCode    int            `json:"oracle_exists_code"`
	OracleAbsentCode    int            `json:"oracle_absent_code"`
	OracleSecretKey     string         `json:"oracle_secret_key"`
	OracleTokenValidity timex.Duration `json:"oracle_token_validity"`
	RedisAddr           string         `json:"redis_addr"`
	RedisPassword       string         `json:"redis_password"`
	OracleCacheTTL      timex.Duration `json:"oracle_cache_ttl"`
	LogBackend          string         `json:"log_backend"`
	LogLevel            string         `json:"log_level"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	ShutdownTimeout     timex.Duration `json:"shutdown_timeout"`
}

// parseJson loads the file named by -c/-config (if any) and copies every
// field present in it onto config. Fields absent from the file keep their
// current values. An unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.applyTo(config)
}

func (c *JsonConfig) applyTo(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setInt(&config.BcryptCost, c.BcryptCost)
	setString(&config.OracleURL, c.OracleURL)
	setDuration(&config.OracleTimeout, c.OracleTimeout)
	setInt(&config.OracleExistsCode, c.OracleExistsCode)
	setInt(&config.OracleAbsentCode, c.OracleAbsentCode)
	setString(&config.OracleSecretKey, c.OracleSecretKey)
	setDuration(&config.OracleTokenValidity, c.OracleTokenValidity)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	setDuration(&config.OracleCacheTTL, c.OracleCacheTTL)
	setString(&config.LogBackend, c.LogBackend)
	setString(&config.LogLevel, c.LogLevel)
	setDuration(&config.RequestTimeout, c.RequestTimeout)
	setDuration(&config.ShutdownTimeout, c.ShutdownTimeout)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
