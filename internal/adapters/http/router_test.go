package http

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Watch/internal/adapters/directory"
	"github.com/dkeye/Watch/internal/adapters/signal"
	"github.com/dkeye/Watch/internal/app"
	"github.com/dkeye/Watch/internal/app/orch"
	"github.com/dkeye/Watch/internal/config"
	"github.com/dkeye/Watch/internal/domain"
	"github.com/dkeye/Watch/internal/protocol"
)

func newTestServer(t *testing.T, extra ...func(*gin.Engine)) (*httptest.Server, *orch.Orchestrator) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	o := orch.New(orch.Options{
		Directory: directory.NewStatic(domain.RoomInfo{ID: "r1", RoomName: "Movie night", CreatedBy: "alice"}),
		Policy:    app.SimplePolicy{},
		Metrics:   app.NewMetrics(reg),
	})
	ctl := signal.NewSignalWSController(o, signal.NewRateLimiter(100, time.Second, nil), signal.Settings{
		ReadLimit:  32768,
		WriteWait:  time.Second,
		SendBuffer: 64,
	})
	cfg := &config.Config{Mode: "test", Secret: "test-secret"}

	ctx, cancel := context.WithCancel(context.Background())
	r := SetupRouter(ctx, cfg, o, ctl, reg)
	for _, fn := range extra {
		fn(r)
	}
	srv := httptest.NewServer(WithCORS(r, []string{"*"}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv, o
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/signal"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func send(t *testing.T, ws *websocket.Conn, msg map[string]any) {
	t.Helper()
	b, err := json.Marshal(msg)
	require.NoError(t, err)
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, b))
}

// readUntil skips frames until one of the given type arrives.
func readUntil(t *testing.T, ws *websocket.Conn, typ string) map[string]any {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		_, data, err := ws.ReadMessage()
		require.NoError(t, err, "waiting for %s", typ)
		var m map[string]any
		require.NoError(t, json.Unmarshal(data, &m))
		if m["type"] == typ {
			return m
		}
	}
}

func getJSON(t *testing.T, url string, into any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if into != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
	}
	return resp.StatusCode
}

func TestSignal_EndToEnd(t *testing.T) {
	req := require.New(t)
	srv, o := newTestServer(t)

	// Given A and B in r1
	a := dial(t, srv)
	send(t, a, map[string]any{"type": protocol.TypeJoinRoom, "roomId": "r1", "displayName": "alice"})
	req.Equal([]any{"alice"}, readUntil(t, a, protocol.TypePresenceUpdate)["members"])
	room := readUntil(t, a, protocol.TypeRoomData)["room"].(map[string]any)
	req.Equal("Movie night", room["roomName"])

	b := dial(t, srv)
	send(t, b, map[string]any{"type": protocol.TypeJoinRoom, "roomId": "r1", "displayName": "bob"})
	req.Equal([]any{"alice", "bob"}, readUntil(t, b, protocol.TypePresenceUpdate)["members"])
	ask := readUntil(t, a, protocol.TypeRequestVideoState)
	req.NotEmpty(ask["joinerId"])

	// When A answers the snapshot request and starts playback
	send(t, a, map[string]any{"type": protocol.TypePeerStateOffer, "roomId": "r1", "videoState": map[string]any{"time": 7}})
	deliver := readUntil(t, b, protocol.TypePeerStateDeliver)
	req.Equal(map[string]any{"time": 7.0}, deliver["videoState"])

	send(t, a, map[string]any{"type": protocol.TypeControlChange, "roomId": "r1", "action": "playing", "position": 12.5})

	// Then B follows
	upd := readUntil(t, b, protocol.TypePlaybackUpdate)
	req.Equal("playing", upd["action"])
	req.Equal(12.5, upd["position"])
	req.NotEqual(ask["joinerId"], upd["originId"], "origin is A, not the joiner")

	// And the REST surface reflects the room
	var rooms struct {
		Rooms []map[string]any `json:"rooms"`
	}
	req.Equal(http.StatusOK, getJSON(t, srv.URL+"/api/rooms", &rooms))
	req.Len(rooms.Rooms, 1)
	req.Equal("r1", rooms.Rooms[0]["roomId"])
	req.EqualValues(2, rooms.Rooms[0]["memberCount"])
	req.Equal(true, rooms.Rooms[0]["hasPlayback"])

	var state map[string]any
	req.Equal(http.StatusOK, getJSON(t, srv.URL+"/api/rooms/r1/state", &state))
	req.Equal("playing", state["action"])

	// When A drops, B sees itself alone
	req.NoError(a.Close())
	req.Equal([]any{"bob"}, readUntil(t, b, protocol.TypePresenceUpdate)["members"])
	req.Eventually(func() bool { return o.ConnectionCount() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestSignal_MalformedFramesAreIgnored(t *testing.T) {
	req := require.New(t)
	srv, _ := newTestServer(t)
	a := dial(t, srv)

	req.NoError(a.WriteMessage(websocket.TextMessage, []byte(`{"type":`)))
	send(t, a, map[string]any{"type": "nope"})
	send(t, a, map[string]any{"type": protocol.TypeSeek, "roomId": "r1", "position": -1})

	// The connection still answers
	send(t, a, map[string]any{"type": protocol.TypePing})
	readUntil(t, a, protocol.TypePong)

	send(t, a, map[string]any{"type": protocol.TypeWhoAmI})
	me := readUntil(t, a, protocol.TypeWhoAmI)
	req.NotEmpty(me["id"])
	req.Nil(me["room"])
}

func TestREST(t *testing.T) {
	req := require.New(t)
	srv, _ := newTestServer(t)

	var health map[string]any
	req.Equal(http.StatusOK, getJSON(t, srv.URL+"/healthz", &health))
	req.Equal("ok", health["status"])

	req.Equal(http.StatusNotFound, getJSON(t, srv.URL+"/api/rooms/none/state", nil))

	var members map[string]any
	req.Equal(http.StatusOK, getJSON(t, srv.URL+"/api/rooms/none/members", &members))
	req.Equal([]any{}, members["members"])

	resp, err := http.Get(srv.URL + "/metrics")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusOK, resp.StatusCode)
}

func TestClientToken_StableAcrossRequests(t *testing.T) {
	req := require.New(t)
	srv, _ := newTestServer(t, func(r *gin.Engine) {
		r.GET("/token", func(c *gin.Context) {
			c.String(http.StatusOK, c.GetString(clientTokenKey))
		})
	})

	jar, err := cookiejar.New(nil)
	req.NoError(err)
	client := &http.Client{Jar: jar}

	fetch := func(c *http.Client) (string, *http.Response) {
		resp, err := c.Get(srv.URL + "/token")
		req.NoError(err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		req.NoError(err)
		return string(body), resp
	}

	first, resp := fetch(client)
	req.NotEmpty(first)
	for _, ck := range resp.Cookies() {
		req.NotEqual("ct", ck.Name, "token lives in the session cookie")
	}

	second, _ := fetch(client)
	req.Equal(first, second)

	other, _ := fetch(&http.Client{})
	req.NotEqual(first, other, "a browser without the cookie gets a new token")
}
