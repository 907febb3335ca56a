// Package config handles configuration for the certhub server, layering
// defaults, an optional JSON file, environment variables and command-line
// flags (in that order of increasing precedence).
package config

import "time"

// Config holds runtime settings for the certhub server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the public HTTP API.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - BcryptCost: work factor used when hashing new passwords.
//   - OracleURL: identity oracle endpoint. Empty disables the oracle.
//   - OracleTimeout: hard bound on a single oracle call.
//   - OracleExistsCode / OracleAbsentCode: statusCode values meaning
//     "confirmed existing" and "confirmed not existing".
//   - OracleSecretKey / OracleTokenValidity: HS256 service token settings.
//     Empty key sends no Authorization header.
//   - RedisAddr / RedisPassword / OracleCacheTTL: optional oracle answer cache.
//   - LogBackend / LogLevel: logging backend ("slog" or "zap") and level.
//   - RequestTimeout: deadline applied to each API request, bounding store
//     and oracle I/O.
//   - ShutdownTimeout: grace period for in-flight requests on stop.
type Config struct {
	EndpointAddrHTTP    string        `env:"CERTHUB_HTTP_ADDR"`
	DatabaseDSN         string        `env:"CERTHUB_DATABASE_DSN"`
	BcryptCost          int           `env:"CERTHUB_BCRYPT_COST"`
	OracleURL           string        `env:"CERTHUB_ORACLE_URL"`
	OracleTimeout       time.Duration `env:"CERTHUB_ORACLE_TIMEOUT"`
	OracleExistsCode    int           `env:"CERTHUB_ORACLE_EXISTS_CODE"`
	OracleAbsentCode    int           `env:"CERTHUB_ORACLE_ABSENT_CODE"`
	OracleSecretKey     string        `env:"CERTHUB_ORACLE_SECRET_KEY"`
	OracleTokenValidity time.Duration `env:"CERTHUB_ORACLE_TOKEN_VALIDITY"`
	RedisAddr           string        `env:"CERTHUB_REDIS_ADDR"`
	RedisPassword       string        `env:"CERTHUB_REDIS_PASSWORD"`
	OracleCacheTTL      time.Duration `env:"CERTHUB_ORACLE_CACHE_TTL"`
	LogBackend          string        `env:"CERTHUB_LOG_BACKEND"`
	LogLevel            string        `env:"CERTHUB_LOG_LEVEL"`
	RequestTimeout      time.Duration `env:"CERTHUB_REQUEST_TIMEOUT"`
	ShutdownTimeout     time.Duration `env:"CERTHUB_SHUTDOWN_TIMEOUT"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: the DSN and oracle are left empty, which runs the server against an
// in-memory store with the oracle disabled.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.DatabaseDSN = ""
	c.BcryptCost = 10
	c.OracleURL = ""
	c.OracleTimeout = 2 * time.Second
	c.OracleExistsCode = 200
	c.OracleAbsentCode = 404
	c.OracleSecretKey = ""
	c.OracleTokenValidity = 1 * time.Minute
	c.RedisAddr = ""
	c.RedisPassword = ""
	c.OracleCacheTTL = 10 * time.Minute
	c.LogBackend = "slog"
	c.LogLevel = "info"
	c.RequestTimeout = 5 * time.Second
	c.ShutdownTimeout = 10 * time.Second
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment, and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	if err := parseEnv(cfg); err != nil {
		panic(err)
	}
	parseFlags(cfg)
	return cfg
}
