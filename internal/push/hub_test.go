package push

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
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// dialClient connects a websocket client for the given user to a hub behind
// a throwaway test server.
func dialClient(t *testing.T, hub *Hub, userID string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		hub.Serve(conn, r.URL.Query().Get("user"))
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?user=" + userID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func waitForUsers(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ConnectedUsers() != want {
		if time.Now().After(deadline) {
			t.Fatalf("hub never reached %d connected users", want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHub_PublishReachesOnlyTheAddressee(t *testing.T) {
	hub := NewHub()
	alice := dialClient(t, hub, "alice")
	bob := dialClient(t, hub, "bob")
	waitForUsers(t, hub, 2)

	hub.Publish("alice", EventNotification, map[string]string{"title": "hello"})

	ev := readEvent(t, alice)
	assert.Equal(t, EventNotification, ev.Type)
	data, err := json.Marshal(ev.Data)
	assert.NoError(t, err)
	assert.Contains(t, string(data), "hello")

	// Bob's connection stays silent.
	bob.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err = bob.ReadMessage()
	assert.Error(t, err)
}

func TestHub_FanOutToAllConnectionsOfOneUser(t *testing.T) {
	hub := NewHub()
	tab1 := dialClient(t, hub, "alice")
	tab2 := dialClient(t, hub, "alice")
	waitForUsers(t, hub, 1)

	hub.Publish("alice", EventNewMessage, map[string]string{"body": "ping"})

	for _, conn := range []*websocket.Conn{tab1, tab2} {
		ev := readEvent(t, conn)
		assert.Equal(t, EventNewMessage, ev.Type)
	}
}

func TestHub_PublishToAbsentUserIsANoOp(t *testing.T) {
	hub := NewHub()
	hub.Publish("nobody", EventTransactionUpdate, nil)
	assert.Equal(t, 0, hub.ConnectedUsers())
}

func TestHub_DisconnectDropsTheUser(t *testing.T) {
	hub := NewHub()
	conn := dialClient(t, hub, "alice")
	waitForUsers(t, hub, 1)

	conn.Close()
	waitForUsers(t, hub, 0)
}
