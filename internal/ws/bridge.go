package ws

import (
	"fmt"

	"spotchart/internal/model"
)

// Bridge is a chart renderer living in the browser: every call is
// broadcast to the connected clients, which draw with their own chart
// library.
type Bridge struct {
	hub *Hub
}

func NewBridge(hub *Hub) *Bridge {
	return &Bridge{hub: hub}
}

func (b *Bridge) Draw(data model.ChartData) error {
	return b.broadcast(TypeChartDraw, data)
}

func (b *Bridge) Update(data model.ChartData) error {
	return b.broadcast(TypeChartUpdate, data)
}

func (b *Bridge) Resize(width, height int) error {
	return b.broadcast(TypeChartResize, ResizePayload{Width: width, Height: height})
}

func (b *Bridge) Destroy() error {
	return b.broadcast(TypeChartDestroy, nil)
}

// Alert shows a message to every connected user.
func (b *Bridge) Alert(message string) {
	if err := b.broadcast(TypeChartAlert, AlertPayload{Message: message}); err != nil {
		b.hub.logger.Error("broadcasting alert failed", "error", err)
	}
}

func (b *Bridge) broadcast(msgType string, payload any) error {
	msg, err := NewEnvelope(msgType, payload)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", msgType, err)
	}
	if n := b.hub.Broadcast(msg); n == 0 {
		b.hub.logger.Debug("no browser received chart message", "type", msgType)
	}
	return nil
}
