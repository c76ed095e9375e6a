package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picha-labs/picha/common/events"
)

func dialTestHub(t *testing.T, hub *Hub, limit int, window time.Duration) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, limit, window, w, r)
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) events.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var envelope events.Envelope
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &envelope))
	return envelope
}

func writeEvent(t *testing.T, conn *websocket.Conn, event string, data interface{}) {
	t.Helper()
	payload, err := json.Marshal(data)
	require.NoError(t, err)
	frame, err := json.Marshal(events.Envelope{Event: event, Data: payload})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))
}

func TestConnectSendsStatus(t *testing.T) {
	conn := dialTestHub(t, NewHub(), 10, 5*time.Second)
	envelope := readEvent(t, conn)
	assert.Equal(t, events.EventStatus, envelope.Event)
}

func TestJoinScarcityRoomAndBroadcast(t *testing.T) {
	hub := NewHub()
	conn := dialTestHub(t, hub, 10, 5*time.Second)
	readEvent(t, conn) // connected status

	writeEvent(t, conn, events.EventJoinScarcityRoom, map[string]string{
		"artist": "Van Gogh", "event_type": "nature",
	})
	joined := readEvent(t, conn)
	assert.Equal(t, events.EventStatus, joined.Event)

	room := events.ScarcityRoom("Van Gogh", "nature")
	require.Eventually(t, func() bool { return hub.RoomSize(room) == 1 },
		time.Second, 10*time.Millisecond)

	hub.Broadcast(room, events.EventScarcityUpdate, map[string]int{"minted_count": 3})
	update := readEvent(t, conn)
	assert.Equal(t, events.EventScarcityUpdate, update.Event)
	assert.Contains(t, string(update.Data), "minted_count")
}

func TestLeaveScarcityRoom(t *testing.T) {
	hub := NewHub()
	conn := dialTestHub(t, hub, 10, 5*time.Second)
	readEvent(t, conn)

	writeEvent(t, conn, events.EventJoinScarcityRoom, map[string]string{
		"artist": "Monet", "event_type": "nature",
	})
	readEvent(t, conn)
	writeEvent(t, conn, events.EventLeaveScarcityRoom, map[string]string{
		"artist": "Monet", "event_type": "nature",
	})
	readEvent(t, conn)

	require.Eventually(t, func() bool {
		return hub.RoomSize(events.ScarcityRoom("Monet", "nature")) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestEvolutionRoomBroadcast(t *testing.T) {
	hub := NewHub()
	conn := dialTestHub(t, hub, 10, 5*time.Second)
	readEvent(t, conn)

	writeEvent(t, conn, events.EventJoinEvolutionRoom, map[string]string{"nft_id": "nft-42"})
	readEvent(t, conn)

	room := events.EvolutionRoom("nft-42")
	require.Eventually(t, func() bool { return hub.RoomSize(room) == 1 },
		time.Second, 10*time.Millisecond)

	hub.Broadcast(room, events.EventEvolutionUpdate, map[string]int{"version": 2})
	update := readEvent(t, conn)
	assert.Equal(t, events.EventEvolutionUpdate, update.Event)
}

func TestTestMessageEchoes(t *testing.T) {
	conn := dialTestHub(t, NewHub(), 10, 5*time.Second)
	readEvent(t, conn)

	writeEvent(t, conn, events.EventTestMessage, map[string]string{"ping": "pong"})
	echo := readEvent(t, conn)
	assert.Equal(t, events.EventTestResponse, echo.Event)
	assert.Contains(t, string(echo.Data), "pong")
}

func TestRateLimit(t *testing.T) {
	conn := dialTestHub(t, NewHub(), 2, time.Minute)
	readEvent(t, conn)

	for i := 0; i < 3; i++ {
		writeEvent(t, conn, events.EventTestMessage, map[string]int{"n": i})
	}

	got := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		got = append(got, readEvent(t, conn).Event)
	}
	assert.Equal(t, []string{events.EventTestResponse, events.EventTestResponse, events.EventError}, got)
}

func TestUnknownEvent(t *testing.T) {
	conn := dialTestHub(t, NewHub(), 10, 5*time.Second)
	readEvent(t, conn)

	writeEvent(t, conn, "bogus_event", map[string]string{})
	envelope := readEvent(t, conn)
	assert.Equal(t, events.EventError, envelope.Event)
}

func TestGlobalBroadcastReachesAllConnections(t *testing.T) {
	hub := NewHub()
	first := dialTestHub(t, hub, 10, 5*time.Second)
	second := dialTestHub(t, hub, 10, 5*time.Second)
	readEvent(t, first)
	readEvent(t, second)

	hub.Broadcast("", events.EventNewMint, map[string]string{"nft_id": "nft-7"})
	assert.Equal(t, events.EventNewMint, readEvent(t, first).Event)
	assert.Equal(t, events.EventNewMint, readEvent(t, second).Event)
}
