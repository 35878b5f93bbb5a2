package ws

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spotchart/internal/model"
	"spotchart/internal/render"
)

var _ render.Renderer = (*Bridge)(nil)

func newTestBridge() (*Bridge, *Client) {
	hub := NewHub(nil)
	client := &Client{hub: hub, send: make(chan []byte, 256)}
	hub.Register(client)
	bridge := NewBridge(hub)
	return bridge, client
}

func receiveEnvelope(t *testing.T, c *Client) Envelope {
	t.Helper()
	msg := <-c.send
	var env Envelope
	require.NoError(t, json.Unmarshal(msg, &env))
	return env
}

func testChart() model.ChartData {
	return model.ChartData{
		Title:  "Diagramm für 01.10.2025",
		Labels: []string{"00:00", "00:15"},
		Datasets: []model.Dataset{
			{Label: model.PrimaryLabel, Data: []float64{10, 12}, Color: model.PrimaryColor},
			{Label: "Vorjahr", Data: []float64{math.NaN(), math.NaN()}, Color: "rgba(100,160,255,0.9)"},
		},
		YAxis: model.AxisRange{Min: -50, Max: 12.24},
	}
}

func TestBridge_Draw(t *testing.T) {
	bridge, client := newTestBridge()

	require.NoError(t, bridge.Draw(testChart()))

	env := receiveEnvelope(t, client)
	assert.Equal(t, TypeChartDraw, env.Type)
	assert.Contains(t, string(env.Payload), `"data":[null,null]`)

	var cd model.ChartData
	require.NoError(t, json.Unmarshal(env.Payload, &cd))
	assert.Equal(t, []string{"00:00", "00:15"}, cd.Labels)
	require.Len(t, cd.Datasets, 2)
	assert.Equal(t, []float64{10, 12}, cd.Datasets[0].Data)
	assert.True(t, math.IsNaN(cd.Datasets[1].Data[0]))
}

func TestBridge_Update(t *testing.T) {
	bridge, client := newTestBridge()

	require.NoError(t, bridge.Update(testChart()))

	env := receiveEnvelope(t, client)
	assert.Equal(t, TypeChartUpdate, env.Type)
}

func TestBridge_ResizeDestroy(t *testing.T) {
	bridge, client := newTestBridge()

	require.NoError(t, bridge.Resize(800, 400))
	require.NoError(t, bridge.Destroy())

	env := receiveEnvelope(t, client)
	assert.Equal(t, TypeChartResize, env.Type)
	var p ResizePayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.Equal(t, 800, p.Width)
	assert.Equal(t, 400, p.Height)

	env = receiveEnvelope(t, client)
	assert.Equal(t, TypeChartDestroy, env.Type)
	assert.Nil(t, env.Payload)
}

func TestBridge_Alert(t *testing.T) {
	bridge, client := newTestBridge()

	bridge.Alert("Fehler beim Laden der Daten: timeout")

	env := receiveEnvelope(t, client)
	assert.Equal(t, TypeChartAlert, env.Type)
	var p AlertPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.Equal(t, "Fehler beim Laden der Daten: timeout", p.Message)
}
