package http

import (
	"context"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/meetsignal/internal/auth"
	"github.com/vovakirdan/meetsignal/internal/config"
	"github.com/vovakirdan/meetsignal/internal/core"
	"github.com/vovakirdan/meetsignal/internal/metrics"
)

// Server is the HTTP server plus the WebSocket handler it has to drain on shutdown.
type Server struct {
	*stdhttp.Server
	ws *WSHandler
}

// NewServer builds an HTTP server with the signaling socket and the control-plane routes.
// m may be nil, in which case /metrics is not mounted.
//
// /ws sits on the outer mux, not on gin: gin's writer refuses to hijack once the 101
// status has been written.
func NewServer(hub *core.Hub, cfg *config.Config, logger *zerolog.Logger, m *metrics.Metrics) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	var jwtCfg *auth.JWTConfig
	if cfg.AuthEnabled() {
		jwtCfg = &auth.JWTConfig{
			Secret:   []byte(cfg.JWTSecret),
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
		}
	}

	router.GET("/health", healthHandler)
	if m != nil && cfg.MetricsEnabled {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	rooms := NewRoomHandlers(hub, logger)
	ice := NewICEHandlers(cfg.ICEServers)

	api := router.Group("/api")
	if jwtCfg != nil {
		api.Use(AuthMiddleware(jwtCfg, logger))
	}
	api.POST("/rooms", rooms.CreateRoom)
	api.GET("/rooms/:roomId", rooms.GetRoom)
	api.GET("/ice-servers", ice.List)

	ws := NewWSHandler(hub, cfg, jwtCfg, logger)
	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", ws)
	mux.Handle("/", router)

	srv := &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
	srv.RegisterOnShutdown(ws.CloseAll)

	return &Server{Server: srv, ws: ws}
}

// Shutdown stops accepting requests, tells WebSocket peers to go away and
// waits for their handlers to finish or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.Server.Shutdown(ctx)
	s.ws.CloseAll()
	if waitErr := s.ws.Wait(ctx); err == nil {
		err = waitErr
	}
	return err
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
