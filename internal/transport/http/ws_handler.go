package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	stdhttp "net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/lobbychat/internal/core"
	"github.com/vovakirdan/lobbychat/internal/presence"
	"github.com/vovakirdan/lobbychat/internal/proto"
)

const writeTimeout = 5 * time.Second

// errHubStopped ends a session whose events channel was closed by a stopping hub.
var errHubStopped = errors.New("hub stopped")

// Hub is the part of core.Hub the transport needs.
type Hub interface {
	RegisterClient(c *core.Client) bool
	UnregisterClient(c *core.Client)
	Roster() []presence.Participant
}

// WSOptions tunes the WebSocket endpoint.
type WSOptions struct {
	AllowedOrigins     []string
	MaxMessageBytes    int64
	RateLimitPerMinute int
	ClientBuffer       int
}

// WSHandler upgrades HTTP connections and bridges them to core.Client.
type WSHandler struct {
	hub  Hub
	opts WSOptions
	log  *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub Hub, opts WSOptions, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{hub: hub, opts: opts, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	acceptOpts := &websocket.AcceptOptions{OriginPatterns: h.opts.AllowedOrigins}
	if len(h.opts.AllowedOrigins) == 0 {
		acceptOpts.InsecureSkipVerify = true
	}
	conn, err := websocket.Accept(w, r, acceptOpts)
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")
	if h.opts.MaxMessageBytes > 0 {
		conn.SetReadLimit(h.opts.MaxMessageBytes)
	}

	client := core.NewClient(uuid.NewString(), h.opts.ClientBuffer)
	if !h.hub.RegisterClient(client) {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	defer h.hub.UnregisterClient(client)
	h.log.Debug().Str("conn_id", client.ID).Str("remote", r.RemoteAddr).Msg("ws connected")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	limiter := newRateLimiter(h.opts.RateLimitPerMinute)

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client, limiter)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	if errors.Is(err, errHubStopped) {
		// close before cancelling: a cancelled read drops the connection
		// without a close frame
		h.log.Debug().Str("conn_id", client.ID).Msg("ws closed by shutdown")
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		cancel()
		<-errCh
		return
	}
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
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
			h.log.Warn().Err(err).Str("conn_id", client.ID).Msg("ws connection closed with error")
		}
	}

	h.log.Debug().Str("conn_id", client.ID).Msg("ws disconnected")
	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client, limiter *rateLimiter) error {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		if !limiter.allow(time.Now()) {
			if err := h.writeError(ctx, conn, &proto.Error{Code: core.ErrCodeRateLimited, Msg: "too many events"}); err != nil {
				return err
			}
			continue
		}

		if typ != websocket.MessageText {
			if err := h.writeError(ctx, conn, &proto.Error{Code: core.ErrCodeInvalidMessage, Msg: "expected a text frame"}); err != nil {
				return err
			}
			continue
		}

		var inbound proto.Inbound
		if err := json.Unmarshal(data, &inbound); err != nil {
			h.log.Debug().Err(err).Str("conn_id", client.ID).Msg("malformed inbound frame")
			if err := h.writeError(ctx, conn, &proto.Error{Code: core.ErrCodeInvalidMessage, Msg: "malformed JSON"}); err != nil {
				return err
			}
			continue
		}

		cmd, protoErr := inboundToCommand(inbound)
		if protoErr != nil {
			if err := h.writeError(ctx, conn, protoErr); err != nil {
				return err
			}
			continue
		}

		select {
		case client.Commands <- cmd:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case event, ok := <-client.Events:
			if !ok {
				return errHubStopped
			}
			if err := h.write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Error().Err(err).Str("conn_id", client.ID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *WSHandler) writeError(ctx context.Context, conn *websocket.Conn, protoErr *proto.Error) error {
	return h.write(ctx, conn, proto.Outbound{Type: proto.OutboundTypeError, Error: protoErr})
}

func (h *WSHandler) write(ctx context.Context, conn *websocket.Conn, out proto.Outbound) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, out)
}
