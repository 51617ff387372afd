package live_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtflow/venue-platform/live"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// newHubServer поднимает hub и тестовый сервер, подписывающий каждое
// соединение на комнату игры из query-параметра.
func newHubServer(t *testing.T) (*live.Hub, *httptest.Server) {
	t.Helper()
	hub := live.NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gameID, err := strconv.Atoi(r.URL.Query().Get("game"))
		require.NoError(t, err)
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		client := hub.NewClient(conn, gameID)
		hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	}))
	t.Cleanup(server.Close)
	return hub, server
}

func dial(t *testing.T, server *httptest.Server, gameID int) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/?game=" + strconv.Itoa(gameID)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubBroadcastReachesRoomSubscribers(t *testing.T) {
	hub, server := newHubServer(t)

	first := dial(t, server, 1)
	second := dial(t, server, 1)
	time.Sleep(50 * time.Millisecond)

	hub.BroadcastGame(1, map[string]int{"score": 42})

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, message, err := conn.ReadMessage()
		require.NoError(t, err)

		var event live.GameEvent
		require.NoError(t, json.Unmarshal(message, &event))
		assert.Equal(t, live.EventGameUpdated, event.Type)
		assert.Equal(t, 1, event.GameID)
	}
}

// Кадры не пересекают границы комнат: подписчик другой игры ничего не
// получает.
func TestHubBroadcastIsScopedToRoom(t *testing.T) {
	hub, server := newHubServer(t)

	other := dial(t, server, 2)
	time.Sleep(50 * time.Millisecond)

	hub.BroadcastGame(1, map[string]int{"score": 42})

	other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := other.ReadMessage()
	assert.Error(t, err, "subscriber of another game must stay silent")
}

func TestHubBroadcastPreservesOrder(t *testing.T) {
	hub, server := newHubServer(t)

	conn := dial(t, server, 3)
	time.Sleep(50 * time.Millisecond)

	for i := 0; i < 5; i++ {
		hub.BroadcastGame(3, map[string]int{"seq": i})
	}

	for i := 0; i < 5; i++ {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, message, err := conn.ReadMessage()
		require.NoError(t, err)

		var event live.GameEvent
		require.NoError(t, json.Unmarshal(message, &event))
		payload, ok := event.Payload.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, float64(i), payload["seq"])
	}
}
