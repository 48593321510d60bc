package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/scythe504/undercover-backend/internal"
	"github.com/scythe504/undercover-backend/internal/config"
	"github.com/scythe504/undercover-backend/internal/game"
)

// CategoryLister exposes the word categories players can pick from.
type CategoryLister interface {
	Categories() []internal.Category
}

type Server struct {
	cfg      config.ServerConfig
	registry *game.Registry
	catalog  CategoryLister
	gateway  http.Handler
	logger   *zap.Logger
}

// NewServer wires the HTTP surface. gateway serves the websocket endpoint.
func NewServer(cfg config.ServerConfig, registry *game.Registry, catalog CategoryLister, gateway http.Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:      cfg,
		registry: registry,
		catalog:  catalog,
		gateway:  gateway,
		logger:   logger.Named("http"),
	}
}

// HTTPServer returns a listener-ready http.Server for the configured address.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.RegisterRoutes(),
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		ErrorLog:          zap.NewStdLog(s.logger),
	}
}
