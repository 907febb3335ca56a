// Package server wires the certhub components together and runs the HTTP API
// until the process is asked to stop.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/certhub/internal/logging"
	"github.com/dmitrijs2005/certhub/internal/server/config"
	"github.com/dmitrijs2005/certhub/internal/server/httpapi"
	"github.com/dmitrijs2005/certhub/internal/server/passwords"
	"github.com/dmitrijs2005/certhub/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	redis  *redis.Client
	server *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	return newApp(ctx, c, os.Stdout)
}

func newApp(ctx context.Context, c *config.Config, logOut io.Writer) (*App, error) {
	logger, err := logging.New(c.LogBackend, c.LogLevel, logOut)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	hasher, err := passwords.NewBcryptHasher(c.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hasher init error: %w", err)
	}

	infra, err := setupInfra(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	resolver := services.NewIdentityResolver(infra.db, infra.repomanager, infra.oracle, logger)
	authenticator, err := services.NewAuthenticator(infra.db, infra.repomanager, hasher, logger)
	if err != nil {
		infra.close()
		return nil, err
	}
	registrar := services.NewRegistrar(infra.db, infra.repomanager, resolver, hasher, logger)

	gin.SetMode(gin.ReleaseMode)
	handler := httpapi.NewHandler(resolver, authenticator, registrar, logger)
	srv := httpapi.NewServer(c.EndpointAddrHTTP, handler, logger, c.RequestTimeout, c.ShutdownTimeout)

	return &App{
		config: c,
		logger: logger,
		db:     infra.db,
		redis:  infra.redis,
		server: srv,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves the API until ctx is cancelled or a stop signal arrives, then
// releases the database and cache connections.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	runErr := app.server.Run(ctx)
	if runErr != nil {
		app.logger.Error(ctx, "http server stopped with error", "error", runErr)
	}

	closeErr := app.close()
	if closeErr != nil {
		app.logger.Error(ctx, "closing resources failed", "error", closeErr)
	}

	app.logger.Info(ctx, "App stopped")

	return errors.Join(runErr, closeErr)
}

func (app *App) close() error {
	var errs []error
	if app.redis != nil {
		errs = append(errs, app.redis.Close())
	}
	if app.db != nil {
		errs = append(errs, app.db.Close())
	}
	return errors.Join(errs...)
}
