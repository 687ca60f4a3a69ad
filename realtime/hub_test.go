package realtime

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn, r.URL.Query()["room"])
		_ = client.Enqueue("initial-data", map[string]int{"teams": 0})
		hub.Serve(client)
	}))

	t.Cleanup(func() {
		server.Close()
		cancel()
	})
	return hub, server
}

func dial(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHubSendsInitialDataThenBroadcasts(t *testing.T) {
	hub, server := startHub(t)
	conn := dial(t, server, "")

	msg := readMessage(t, conn)
	assert.Equal(t, "initial-data", msg.Type)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, hub.Broadcast("team_created", map[string]string{"name": "Alpha"}))

	msg = readMessage(t, conn)
	assert.Equal(t, "team_created", msg.Type)
	assert.Empty(t, msg.RoomID)
}

func TestHubRoomBroadcastReachesOnlyMembers(t *testing.T) {
	hub, server := startHub(t)
	member := dial(t, server, "room="+TeamRoom(1))
	outsider := dial(t, server, "")
	readMessage(t, member)
	readMessage(t, outsider)

	require.Eventually(t, func() bool { return hub.RoomSize(TeamRoom(1)) == 1 && hub.ClientCount() == 2 }, time.Second, 10*time.Millisecond)
	require.NoError(t, hub.BroadcastToRoom(TeamRoom(1), "team_updated", map[string]int{"id": 1}))
	require.NoError(t, hub.Broadcast("team_deleted", map[string]int{"id": 2}))

	msg := readMessage(t, member)
	assert.Equal(t, "team_updated", msg.Type)
	assert.Equal(t, "team_1", msg.RoomID)

	// The outsider only sees the global event.
	msg = readMessage(t, outsider)
	assert.Equal(t, "team_deleted", msg.Type)
}

func TestHubJoinAndLeave(t *testing.T) {
	hub, server := startHub(t)
	conn := dial(t, server, "")
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]string{"action": "join", "room": RoundRoom(2)}))
	require.Eventually(t, func() bool { return hub.RoomSize(RoundRoom(2)) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.BroadcastToRoom(RoundRoom(2), "round_updated", map[string]int{"round": 2}))
	msg := readMessage(t, conn)
	assert.Equal(t, "round_updated", msg.Type)

	require.NoError(t, conn.WriteJSON(map[string]string{"action": "leave", "room": RoundRoom(2)}))
	require.Eventually(t, func() bool { return hub.RoomSize(RoundRoom(2)) == 0 }, time.Second, 10*time.Millisecond)
}

func TestHubUnregistersOnDisconnect(t *testing.T) {
	hub, server := startHub(t)
	conn := dial(t, server, "room=team_5")
	readMessage(t, conn)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 && hub.RoomSize("team_5") == 0 }, 2*time.Second, 10*time.Millisecond)
}
