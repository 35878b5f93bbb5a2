package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spotchart/internal/model"
)

type call struct {
	name    string
	date    string
	kind    model.OverlayKind
	enabled bool
	w, h    int
}

type fakeController struct {
	mu      sync.Mutex
	calls   []call
	current model.ChartData
	live    bool
}

func (f *fakeController) record(c call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeController) LoadPrimary(ctx context.Context, raw string) error {
	f.record(call{name: "load", date: raw})
	return nil
}

func (f *fakeController) ToggleOverlay(ctx context.Context, kind model.OverlayKind, enabled bool, date string) error {
	f.record(call{name: "toggle", kind: kind, enabled: enabled, date: date})
	return nil
}

func (f *fakeController) ClearOverlays() { f.record(call{name: "clear"}) }

func (f *fakeController) Resize(w, h int) { f.record(call{name: "resize", w: w, h: h}) }

func (f *fakeController) Current() (model.ChartData, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current, f.live
}

func (f *fakeController) snapshot() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

// dialHandler sets up a test server with the handler and returns a WS connection.
func dialHandler(t *testing.T, handler *Handler) (*websocket.Conn, func()) {
	t.Helper()
	server := httptest.NewServer(handler)
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	return conn, func() {
		conn.Close()
		server.Close()
	}
}

// readJSON reads the next JSON message from the connection.
func readJSON(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var env Envelope
	require.NoError(t, json.Unmarshal(msg, &env))
	return env
}

// sendJSON sends a JSON message on the connection.
func sendJSON(t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	data, err := NewEnvelope(msgType, payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

func TestHandler_Hello(t *testing.T) {
	ctrl := &fakeController{}
	handler := NewHandler(context.Background(), NewHub(nil), ctrl, time.Second)

	conn, cleanup := dialHandler(t, handler)
	defer cleanup()

	env := readJSON(t, conn)
	assert.Equal(t, TypeSessionHello, env.Type)

	var hello HelloPayload
	require.NoError(t, json.Unmarshal(env.Payload, &hello))
	assert.Len(t, hello.ClientID, 36)
	assert.Len(t, hello.Overlays, len(model.OverlayOrder))
}

func TestHandler_LateJoinerGetsChart(t *testing.T) {
	ctrl := &fakeController{
		live:    true,
		current: model.ChartData{Labels: []string{"00:00"}, Datasets: []model.Dataset{{Label: model.PrimaryLabel, Data: []float64{1}}}},
	}
	handler := NewHandler(context.Background(), NewHub(nil), ctrl, time.Second)

	conn, cleanup := dialHandler(t, handler)
	defer cleanup()

	readJSON(t, conn) // hello
	env := readJSON(t, conn)
	assert.Equal(t, TypeChartDraw, env.Type)

	var cd model.ChartData
	require.NoError(t, json.Unmarshal(env.Payload, &cd))
	assert.Equal(t, []string{"00:00"}, cd.Labels)
}

func TestHandler_RoutesMessages(t *testing.T) {
	ctrl := &fakeController{}
	hub := NewHub(nil)
	handler := NewHandler(context.Background(), hub, ctrl, time.Second)

	conn, cleanup := dialHandler(t, handler)
	defer cleanup()
	readJSON(t, conn)

	sendJSON(t, conn, TypeChartLoad, LoadPayload{Date: "2025-10-01"})
	sendJSON(t, conn, TypeOverlayToggle, TogglePayload{Overlay: "comparison", Enabled: true, Date: "2025-09-30"})
	sendJSON(t, conn, TypeOverlayToggle, TogglePayload{Overlay: "bogus", Enabled: true})
	sendJSON(t, conn, TypeOverlayClear, nil)
	sendJSON(t, conn, TypeViewportResize, ResizePayload{Width: 640, Height: 480})
	sendJSON(t, conn, "unknown:type", nil)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	assert.Eventually(t, func() bool { return len(ctrl.snapshot()) == 4 }, 2*time.Second, 10*time.Millisecond)

	byName := map[string]call{}
	for _, c := range ctrl.snapshot() {
		byName[c.name] = c
	}
	assert.Equal(t, "2025-10-01", byName["load"].date)
	assert.Equal(t, model.OverlayComparison, byName["toggle"].kind)
	assert.True(t, byName["toggle"].enabled)
	assert.Equal(t, "2025-09-30", byName["toggle"].date)
	assert.Contains(t, byName, "clear")
	assert.Equal(t, 640, byName["resize"].w)
	assert.Equal(t, 480, byName["resize"].h)
	assert.Equal(t, 1, hub.ClientCount())
}

func TestHandler_BroadcastReachesClient(t *testing.T) {
	hub := NewHub(nil)
	handler := NewHandler(context.Background(), hub, &fakeController{}, time.Second)

	conn, cleanup := dialHandler(t, handler)
	defer cleanup()
	readJSON(t, conn)

	require.NoError(t, NewBridge(hub).Destroy())

	env := readJSON(t, conn)
	assert.Equal(t, TypeChartDestroy, env.Type)
}

func TestHandler_UnregistersOnClose(t *testing.T) {
	hub := NewHub(nil)
	handler := NewHandler(context.Background(), hub, &fakeController{}, time.Second)

	conn, cleanup := dialHandler(t, handler)
	readJSON(t, conn)
	assert.Equal(t, 1, hub.ClientCount())

	cleanup()

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
