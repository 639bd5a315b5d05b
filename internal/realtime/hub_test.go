package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, hub *Hub, userID uint64, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(w, r, userID)
	}))
	t.Cleanup(srv.Close)

	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	return websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event Event
	require.NoError(t, conn.ReadJSON(&event))
	return event
}

func TestHub_PublishReachesEveryConnectionOfUser(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	first, _, err := dial(t, hub, 7, "")
	require.NoError(t, err)
	defer first.Close()
	second, _, err := dial(t, hub, 7, "")
	require.NoError(t, err)
	defer second.Close()
	other, _, err := dial(t, hub, 8, "")
	require.NoError(t, err)
	defer other.Close()

	for _, c := range []*websocket.Conn{first, second, other} {
		assert.Equal(t, EventConnected, readEvent(t, c).Type)
	}
	assert.Equal(t, 2, hub.ConnectionCount(7))

	hub.Publish(7, Event{Type: EventNotification, Data: map[string]string{"title": "New task"}})

	for _, c := range []*websocket.Conn{first, second} {
		event := readEvent(t, c)
		assert.Equal(t, EventNotification, event.Type)
		assert.Equal(t, "New task", event.Data.(map[string]interface{})["title"])
	}

	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err = other.ReadMessage()
	assert.Error(t, err, "user 8 receives nothing")
}

func TestHub_RejectsUnknownOrigin(t *testing.T) {
	hub := NewHub([]string{"http://localhost:3000"})
	defer hub.Close()

	_, resp, err := dial(t, hub, 1, "http://evil.example")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := dial(t, hub, 1, "http://localhost:3000")
	require.NoError(t, err)
	conn.Close()
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	conn, _, err := dial(t, hub, 3, "")
	require.NoError(t, err)
	readEvent(t, conn)
	conn.Close()

	assert.Eventually(t, func() bool { return hub.ConnectionCount(3) == 0 }, 2*time.Second, 10*time.Millisecond)

	// Publishing to a user without connections is a no-op.
	hub.Publish(3, Event{Type: EventMessage})
}
