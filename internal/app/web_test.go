package app

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/relabs-tech/glove_computer/internal/motion"
	"github.com/relabs-tech/glove_computer/internal/session"
)

func sampleUpdate(seq uint64, count int, force float64) session.Update {
	return session.Update{
		SessionID: "0f7c2a9e-session",
		Seq:       seq,
		Time:      time.Now(),
		Kind:      session.KindSample,
		Elapsed:   0.05,
		Output: motion.Output{
			State: motion.Motion,
			Force: force,
			Accel: motion.Vec3{X: 10},
			Stats: motion.Stats{EventCount: count, MaxSpeed: 4.9, MaxForce: force},
		},
	}
}

func newTestWeb(t *testing.T, stale time.Duration, reset func() error) (*webServer, *httptest.Server) {
	t.Helper()
	s := newWebServer(stale, 10, reset)
	s.staticDir = t.TempDir()
	srv := httptest.NewServer(s.routes())
	t.Cleanup(func() {
		srv.Close()
		_ = s.hub.Close()
	})
	return s, srv
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func TestWeb_Stats(t *testing.T) {
	s, srv := newTestWeb(t, time.Minute, func() error { return nil })

	code, _ := get(t, srv.URL+"/api/stats")
	assert.Equal(t, http.StatusServiceUnavailable, code)

	s.ingest(sampleUpdate(1, 3, 1.9641))
	code, body := get(t, srv.URL+"/api/stats")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Motion", gjson.Get(body, "state").String())
	assert.Equal(t, int64(3), gjson.Get(body, "event_count").Int())
	assert.InDelta(t, 1.9641, gjson.Get(body, "max_force").Float(), 1e-9)
	assert.Equal(t, "sample", gjson.Get(body, "kind").String())
}

func TestWeb_StatsGoStale(t *testing.T) {
	s, srv := newTestWeb(t, 50*time.Millisecond, func() error { return nil })
	s.ingest(sampleUpdate(1, 1, 1))

	code, _ := get(t, srv.URL+"/api/stats")
	require.Equal(t, http.StatusOK, code)

	time.Sleep(120 * time.Millisecond)
	code, _ = get(t, srv.URL+"/api/stats")
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestWeb_HistoryClearedOnReset(t *testing.T) {
	s, srv := newTestWeb(t, time.Minute, func() error { return nil })
	for i := 1; i <= 12; i++ {
		s.ingest(sampleUpdate(uint64(i), 1, float64(i)))
	}

	code, body := get(t, srv.URL+"/api/history")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(10), gjson.Get(body, "points.#").Int())
	assert.Equal(t, 3.0, gjson.Get(body, "points.0.force").Float())
	assert.Equal(t, 12.0, gjson.Get(body, "summary.max_force").Float())
	assert.Equal(t, int64(10), gjson.Get(body, "summary.count").Int())

	s.ingest(session.Update{Kind: session.KindReset, Seq: 13, Time: time.Now()})
	_, body = get(t, srv.URL+"/api/history")
	assert.Equal(t, int64(0), gjson.Get(body, "points.#").Int())
	assert.Equal(t, int64(0), gjson.Get(body, "summary.count").Int())

	_, body = get(t, srv.URL+"/api/stats")
	assert.Equal(t, "reset", gjson.Get(body, "kind").String())
}

func TestWeb_ResetEndpoint(t *testing.T) {
	var calls atomic.Int32
	fail := atomic.Bool{}
	_, srv := newTestWeb(t, time.Minute, func() error {
		calls.Add(1)
		if fail.Load() {
			return errors.New("broker down")
		}
		return nil
	})

	resp, err := http.Post(srv.URL+"/api/reset", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load())

	fail.Store(true)
	resp, err = http.Post(srv.URL+"/api/reset", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	// GET is not routed to the reset handler.
	code, _ := get(t, srv.URL+"/api/reset")
	assert.NotEqual(t, http.StatusAccepted, code)
	assert.Equal(t, int32(2), calls.Load())
}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func TestWeb_StatsSocket(t *testing.T) {
	s, srv := newTestWeb(t, time.Minute, func() error { return nil })
	s.ingest(sampleUpdate(1, 2, 1))

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/stats"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))

	// The latest update is sent on connect.
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, int64(1), gjson.GetBytes(msg, "seq").Int())

	s.ingest(sampleUpdate(2, 5, 2))
	_, msg, err = conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, int64(2), gjson.GetBytes(msg, "seq").Int())
	assert.Equal(t, int64(5), gjson.GetBytes(msg, "event_count").Int())
}

func TestWeb_ControlSocket(t *testing.T) {
	var calls atomic.Int32
	_, srv := newTestWeb(t, time.Minute, func() error {
		calls.Add(1)
		return nil
	})

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/control"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))

	require.NoError(t, conn.WriteJSON(WSMessage{Action: "reset"}))
	var resp WSResponse
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, WSResponse{Type: "ack", Action: "reset"}, resp)
	assert.Equal(t, int32(1), calls.Load())

	require.NoError(t, conn.WriteJSON(WSMessage{Action: "calibrate"}))
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "error", resp.Type)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWeb_CORS(t *testing.T) {
	_, srv := newTestWeb(t, time.Minute, func() error { return nil })
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/history", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://dashboard.local")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
