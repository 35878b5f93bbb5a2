package ws

import (
	"encoding/json"

	"spotchart/internal/model"
)

// Envelope wraps all WebSocket messages with a type discriminator.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Message type constants
const (
	// Client -> Server
	TypeChartLoad      = "chart:load"
	TypeOverlayToggle  = "overlay:toggle"
	TypeOverlayClear   = "overlay:clear"
	TypeViewportResize = "viewport:resize"

	// Server -> Client
	TypeSessionHello = "session:hello"
	TypeChartDraw    = "chart:draw"
	TypeChartUpdate  = "chart:update"
	TypeChartResize  = "chart:resize"
	TypeChartDestroy = "chart:destroy"
	TypeChartAlert   = "chart:alert"
)

// Client -> Server messages

type LoadPayload struct {
	Date string `json:"date"`
}

type TogglePayload struct {
	Overlay string `json:"overlay"`
	Enabled bool   `json:"enabled"`
	Date    string `json:"date,omitempty"`
}

type ResizePayload struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Server -> Client messages

type OverlayDescriptor struct {
	Kind     string `json:"kind"`
	Label    string `json:"label"`
	Color    string `json:"color"`
	OwnDate  bool   `json:"own_date"`
	Fallback string `json:"fallback"`
}

type HelloPayload struct {
	ClientID string              `json:"client_id"`
	Overlays []OverlayDescriptor `json:"overlays"`
}

type AlertPayload struct {
	Message string `json:"message"`
}

func NewEnvelope(msgType string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}

// Descriptors lists the overlay catalog in display order.
func Descriptors() []OverlayDescriptor {
	out := make([]OverlayDescriptor, 0, len(model.OverlayOrder))
	for _, kind := range model.OverlayOrder {
		info := model.OverlayCatalog[kind]
		out = append(out, OverlayDescriptor{
			Kind:     string(kind),
			Label:    info.Label,
			Color:    info.Color,
			OwnDate:  info.DateSource == model.DateOwn,
			Fallback: string(info.Fallback),
		})
	}
	return out
}
