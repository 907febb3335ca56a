package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/certhub/internal/logging"
	"github.com/gin-gonic/gin"
)

type Server struct {
	address         string
	engine          *gin.Engine
	logger          logging.Logger
	shutdownTimeout time.Duration
}

// NewServer builds the gin engine with recovery, request logging and the
// per-request timeout, and mounts h on it.
func NewServer(address string, h *Handler, l logging.Logger, requestTimeoutDur, shutdownTimeout time.Duration) *Server {
	logger := l.With("module", "http_server")

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger), requestTimeout(requestTimeoutDur))
	h.RegisterRoutes(engine)

	return &Server{
		address:         address,
		engine:          engine,
		logger:          logger,
		shutdownTimeout: shutdownTimeout,
	}
}

func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *Server) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-done
}
