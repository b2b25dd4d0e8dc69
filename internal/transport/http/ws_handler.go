package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	stdhttp "net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/meetsignal/internal/auth"
	"github.com/vovakirdan/meetsignal/internal/config"
	"github.com/vovakirdan/meetsignal/internal/core"
	"github.com/vovakirdan/meetsignal/internal/proto"
)

var errServerShutdown = errors.New("server shutting down")

// WSHandler upgrades HTTP connections and bridges them to core.Client.
type WSHandler struct {
	hub    *core.Hub
	cfg    *config.Config
	jwtCfg *auth.JWTConfig
	log    *zerolog.Logger

	mu      sync.Mutex
	closed  bool
	closing chan struct{}
	active  sync.WaitGroup
}

// NewWSHandler builds a new WebSocket handler. A nil jwtCfg disables authentication.
func NewWSHandler(hub *core.Hub, cfg *config.Config, jwtCfg *auth.JWTConfig, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{hub: hub, cfg: cfg, jwtCfg: jwtCfg, log: logger, closing: make(chan struct{})}
}

// CloseAll asks every open connection to close with StatusGoingAway.
func (h *WSHandler) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.closed {
		h.closed = true
		close(h.closing)
	}
}

// Wait blocks until all connection handlers have returned or ctx is done.
// Call it after CloseAll.
func (h *WSHandler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.active.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	var identity auth.Identity
	if h.jwtCfg != nil {
		token, err := auth.TokenFromRequest(r)
		if err == nil {
			identity, err = auth.ValidateToken(h.jwtCfg, token)
		}
		if err != nil {
			h.log.Debug().Err(err).Str("remote", r.RemoteAddr).Msg("ws unauthorized")
			stdhttp.Error(w, "unauthorized", stdhttp.StatusUnauthorized)
			return
		}
	}

	opts := &websocket.AcceptOptions{InsecureSkipVerify: true}
	if len(h.cfg.AllowedOrigins) > 0 {
		opts = &websocket.AcceptOptions{OriginPatterns: h.cfg.AllowedOrigins}
	}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		stdhttp.Error(w, "server shutting down", stdhttp.StatusServiceUnavailable)
		return
	}
	h.active.Add(1)
	h.mu.Unlock()
	defer h.active.Done()

	conn, err := websocket.Accept(w, r, opts)
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")
	if h.cfg.MaxMessageBytes > 0 {
		conn.SetReadLimit(h.cfg.MaxMessageBytes)
	}

	client := core.NewClient(uuid.NewString(), h.cfg.SendBuffer)
	h.hub.RegisterClient(client)
	defer h.hub.UnregisterClient(client)

	log := h.log.With().Str("conn_id", client.ID).Logger()
	if identity.UserID != "" {
		log = log.With().Str("user_id", identity.UserID).Logger()
	}
	log.Debug().Msg("ws connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	loops := []func(context.Context) error{
		func(ctx context.Context) error { return h.readLoop(ctx, conn, client, &log) },
		func(ctx context.Context) error { return h.writeLoop(ctx, conn, client, &log) },
	}
	if h.cfg.PingInterval > 0 {
		loops = append(loops, func(ctx context.Context) error { return h.pingLoop(ctx, conn) })
	}
	loops = append(loops, func(ctx context.Context) error {
		select {
		case <-h.closing:
			// Close before the deferred cancel so the peer sees StatusGoingAway
			// rather than a canceled read.
			_ = conn.Close(websocket.StatusGoingAway, errServerShutdown.Error())
			return errServerShutdown
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	errCh := make(chan error, len(loops))
	for _, loop := range loops {
		go func(loop func(context.Context) error) {
			errCh <- loop(ctx)
		}(loop)
	}

	err = <-errCh
	cancel() // stop the other goroutines
	for i := 1; i < len(loops); i++ {
		<-errCh
	}

	status := websocket.StatusNormalClosure
	reason := "closing"
	if errors.Is(err, errServerShutdown) {
		log.Debug().Msg("ws closed for shutdown")
		return
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != -1 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			log.Warn().Err(err).Msg("ws connection closed with error")
		}
	}
	log.Debug().Msg("ws disconnected")

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client, log *zerolog.Logger) error {
	limiter := newRateLimiter(h.cfg.RateLimit)
	for {
		// conn.Read rather than wsjson.Read: a payload that fails to decode must not close the socket.
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		if !limiter.allow() {
			log.Debug().Msg("inbound rate limited")
			h.reject(client, &proto.Error{Code: core.ErrCodeRateLimited, Msg: "too many messages"})
			continue
		}

		var inbound proto.Inbound
		if err := json.Unmarshal(data, &inbound); err != nil {
			log.Debug().Err(err).Msg("malformed inbound")
			h.reject(client, badRequest("malformed message"))
			continue
		}

		cmd, protoErr := inboundToCommand(inbound)
		if protoErr != nil {
			log.Debug().Str("type", inbound.Type).Str("code", protoErr.Code).Msg("rejected inbound")
			h.reject(client, protoErr)
			continue
		}
		h.hub.Dispatch(client.ID, cmd)
	}
}

// reject queues the error behind any pending events so the write loop stays the only writer.
func (h *WSHandler) reject(client *core.Client, perr *proto.Error) {
	client.Send(&core.Event{Kind: core.EventError, Error: core.NewError(perr.Code, perr.Msg)})
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client, log *zerolog.Logger) error {
	for {
		select {
		case event := <-client.Events:
			if err := h.write(ctx, conn, outboundFromEvent(event)); err != nil {
				log.Error().Err(err).Str("type", event.Kind.String()).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *WSHandler) write(ctx context.Context, conn *websocket.Conn, out proto.Outbound) error {
	if h.cfg.WriteTimeout <= 0 {
		return wsjson.Write(ctx, conn, out)
	}
	ctx, cancel := context.WithTimeout(ctx, h.cfg.WriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, out)
}

func (h *WSHandler) pingLoop(ctx context.Context, conn *websocket.Conn) error {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, h.cfg.PingInterval)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
