package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultWriteTimeout = 10 * time.Second

// Binder binds a token announced by a connection to that connection's id
type Binder interface {
	Subscribe(ctx context.Context, token, connectionID string) error
}

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Handler upgrades requests to websocket connections and serves the
// hello / client-token-sub / credential-issued protocol.
type Handler struct {
	registry       *Registry
	notifier       *Notifier
	binder         Binder
	originPatterns []string
	writeTimeout   time.Duration
	log            zerolog.Logger
	newID          func() string
}

// NewHandler accepts origins as host[:port] patterns
func NewHandler(registry *Registry, binder Binder, originPatterns []string) *Handler {
	return &Handler{
		registry:       registry,
		notifier:       NewNotifier(registry),
		binder:         binder,
		originPatterns: originPatterns,
		writeTimeout:   defaultWriteTimeout,
		log:            log.Logger,
		newID:          func() string { return uuid.New().String() },
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.log.Warn().Err(err).Str("origin", r.Header.Get("Origin")).Msg("websocket upgrade rejected")
		return
	}
	defer c.CloseNow()

	id := h.newID()
	conn := h.registry.Register(id)
	defer h.registry.Unregister(id)

	h.log.Info().Str("connection_id", id).Msg("user connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.writeLoop(ctx, cancel, c, conn)
	}()

	h.notifier.Hello(id)
	h.readLoop(ctx, c, id)

	cancel()
	<-writerDone
	c.Close(websocket.StatusNormalClosure, "")
	h.log.Info().Str("connection_id", id).Msg("user disconnected")
}

func (h *Handler) readLoop(ctx context.Context, c *websocket.Conn, id string) {
	for {
		var frame inboundFrame
		if err := wsjson.Read(ctx, c, &frame); err != nil {
			if !isClosed(err) && ctx.Err() == nil {
				h.log.Debug().Err(err).Str("connection_id", id).Msg("websocket read ended")
			}
			return
		}

		switch frame.Event {
		case EventClientTokenSub:
			var token string
			if err := json.Unmarshal(frame.Data, &token); err != nil || token == "" {
				h.log.Warn().Str("connection_id", id).Msg("client-token-sub without a token")
				continue
			}
			if err := h.binder.Subscribe(ctx, token, id); err != nil {
				h.log.Error().Err(err).Str("connection_id", id).Msg("failed to bind token to connection")
			}
		default:
			h.log.Debug().Str("connection_id", id).Str("event", frame.Event).Msg("ignoring unknown event")
		}
	}
}

func (h *Handler) writeLoop(ctx context.Context, cancel context.CancelFunc, c *websocket.Conn, conn *Conn) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-conn.Done():
			cancel()
			return
		case ev := <-conn.Events():
			wctx, wcancel := context.WithTimeout(ctx, h.writeTimeout)
			err := wsjson.Write(wctx, c, ev)
			wcancel()
			if err != nil {
				h.log.Debug().Err(err).Str("connection_id", conn.ID()).Str("event", ev.Name).Msg("websocket write failed")
				cancel()
				return
			}
		}
	}
}

func isClosed(err error) bool {
	status := websocket.CloseStatus(err)
	return status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled)
}
