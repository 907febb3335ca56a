package server

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/certhub/internal/logging"
	"github.com/dmitrijs2005/certhub/internal/server/config"
	"github.com/dmitrijs2005/certhub/internal/server/oracle"
	"github.com/dmitrijs2005/certhub/internal/server/repositories/repomanager"
	"github.com/redis/go-redis/v9"
)

type infra struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	redis       *redis.Client
	oracle      oracle.Client
}

func (i *infra) close() {
	if i.redis != nil {
		_ = i.redis.Close()
	}
	if i.db != nil {
		_ = i.db.Close()
	}
}

// setupInfra opens the credential store (PostgreSQL, or in-memory when no
// DSN is set), applies migrations and builds the oracle client chain.
func setupInfra(ctx context.Context, c *config.Config, logger logging.Logger) (*infra, error) {
	in := &infra{}

	if c.DatabaseDSN != "" {
		db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		in.db = db
		in.repomanager = repomanager.NewPostgresRepositoryManager()
	} else {
		logger.Warn(ctx, "no database configured, using in-memory credential store")
		in.repomanager = repomanager.NewMemoryRepositoryManager()
	}

	if err := in.repomanager.RunMigrations(ctx, in.db); err != nil {
		in.close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	if err := setupOracle(ctx, c, logger, in); err != nil {
		in.close()
		return nil, err
	}

	return in, nil
}

func setupOracle(ctx context.Context, c *config.Config, logger logging.Logger, in *infra) error {
	if c.OracleURL == "" {
		logger.Warn(ctx, "no identity oracle configured, resolving on local data only")
		in.oracle = oracle.Disabled{}
		return nil
	}

	var client oracle.Client = oracle.NewHTTPClient(oracle.Options{
		URL:           c.OracleURL,
		Timeout:       c.OracleTimeout,
		ExistsCode:    c.OracleExistsCode,
		AbsentCode:    c.OracleAbsentCode,
		SecretKey:     c.OracleSecretKey,
		TokenValidity: c.OracleTokenValidity,
	})

	if c.RedisAddr != "" {
		rdb, err := oracle.NewRedisClient(ctx, c.RedisAddr, c.RedisPassword)
		if err != nil {
			return fmt.Errorf("redis init error: %w", err)
		}
		in.redis = rdb
		client = oracle.NewCachedClient(client, rdb, c.OracleCacheTTL, logger)
	}

	in.oracle = client
	return nil
}
