package websocket

import (
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/scythe504/undercover-backend/internal/config"
	"github.com/scythe504/undercover-backend/internal/game"
	"github.com/scythe504/undercover-backend/internal/utils"
)

// Gateway upgrades HTTP requests to websocket sessions and feeds their
// actions into the room registry.
type Gateway struct {
	registry *game.Registry
	cfg      config.WebsocketConfig
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewGateway builds a Gateway. An empty origins list or a "*" entry accepts
// any origin.
func NewGateway(registry *game.Registry, cfg config.WebsocketConfig, origins []string, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		registry: registry,
		cfg:      cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(origins),
		},
		logger: logger.Named("gateway"),
	}
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(r *http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			// Non-browser clients do not send an Origin.
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return slices.ContainsFunc(allowed, func(a string) bool {
			return strings.EqualFold(strings.TrimSuffix(a, "/"), u.Scheme+"://"+u.Host)
		})
	}
}

// ServeHTTP upgrades the connection and runs the session until it ends.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newClient(utils.GenerateID(), conn, g)
	g.logger.Debug("connection opened", zap.String("player", c.id), zap.String("remote", r.RemoteAddr))

	go c.writePump()
	c.readPump()
}
