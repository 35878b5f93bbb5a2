package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"spotchart/internal/chart"
	"spotchart/internal/model"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Controller is the chart control surface the handler drives.
type Controller interface {
	LoadPrimary(ctx context.Context, raw string) error
	ToggleOverlay(ctx context.Context, kind model.OverlayKind, enabled bool, date string) error
	ClearOverlays()
	Resize(width, height int)
	Current() (model.ChartData, bool)
}

// Handler manages WebSocket connections and routes messages to the controller.
type Handler struct {
	hub     *Hub
	ctrl    Controller
	ctx     context.Context
	timeout time.Duration
}

// NewHandler creates a handler. Pipelines started by clients run under ctx
// and are bounded by timeout.
func NewHandler(ctx context.Context, hub *Hub, ctrl Controller, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Handler{hub: hub, ctrl: ctrl, ctx: ctx, timeout: timeout}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.hub.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := h.hub.newClient(conn)
	h.hub.Register(client)
	go client.writePump()

	h.sendHello(client)

	// Late joiners get the chart as it is now
	if data, ok := h.ctrl.Current(); ok {
		if msg, err := NewEnvelope(TypeChartDraw, data); err == nil {
			client.trySend(msg)
		}
	}

	h.readPump(client)
}

func (h *Handler) readPump(c *Client) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.hub.logger.Warn("websocket read error", "client", c.id, "error", err)
			}
			return
		}

		h.handleMessage(c, msg)
	}
}

func (h *Handler) handleMessage(c *Client, msg []byte) {
	log := h.hub.logger.With("client", c.id)

	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		log.Warn("invalid message", "error", err)
		return
	}

	switch env.Type {
	case TypeChartLoad:
		var p LoadPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			log.Warn("invalid chart:load payload", "error", err)
			return
		}
		h.run(func(ctx context.Context) error { return h.ctrl.LoadPrimary(ctx, p.Date) }, env.Type)

	case TypeOverlayToggle:
		var p TogglePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			log.Warn("invalid overlay:toggle payload", "error", err)
			return
		}
		kind := model.OverlayKind(p.Overlay)
		if _, ok := model.LookupOverlay(kind); !ok {
			log.Warn("unknown overlay", "overlay", p.Overlay)
			return
		}
		h.run(func(ctx context.Context) error {
			return h.ctrl.ToggleOverlay(ctx, kind, p.Enabled, p.Date)
		}, env.Type)

	case TypeOverlayClear:
		h.ctrl.ClearOverlays()

	case TypeViewportResize:
		var p ResizePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			log.Warn("invalid viewport:resize payload", "error", err)
			return
		}
		h.ctrl.Resize(p.Width, p.Height)

	default:
		log.Warn("unknown message type", "type", env.Type)
	}
}

// run executes a pipeline in its own goroutine so the read loop keeps
// accepting toggles while a fetch is outstanding.
func (h *Handler) run(fn func(ctx context.Context) error, msgType string) {
	go func() {
		ctx, cancel := context.WithTimeout(h.ctx, h.timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			var alert *chart.AlertError
			if errors.As(err, &alert) {
				// already shown to the user
				h.hub.logger.Info("pipeline alerted", "type", msgType, "message", alert.Message)
				return
			}
			h.hub.logger.Warn("pipeline failed", "type", msgType, "error", err)
		}
	}()
}

func (h *Handler) sendHello(c *Client) {
	msg, err := NewEnvelope(TypeSessionHello, HelloPayload{ClientID: c.id, Overlays: Descriptors()})
	if err != nil {
		h.hub.logger.Error("creating hello message failed", "error", err)
		return
	}
	c.trySend(msg)
}
