package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devconnect/internal/domain"
)

// bearerUsers resolves the caller from the Authorization header.
func bearerUsers(users map[string]*domain.User) func(*http.Request) *domain.User {
	return func(r *http.Request) *domain.User {
		return users[strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")]
	}
}

func dial(t *testing.T, srv *httptest.Server, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http")
	return websocket.DefaultDialer.Dial(u, header)
}

func TestHubDeliversToUser(t *testing.T) {
	hub := NewHub()
	users := map[string]*domain.User{"alice-token": {ID: 1, Username: "alice"}}
	srv := httptest.NewServer(MakeHandler(hub, bearerUsers(users), nil))
	defer srv.Close()

	conn, _, err := dial(t, srv, http.Header{"Authorization": {"Bearer alice-token"}})
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Connections(1) == 1 }, time.Second, 10*time.Millisecond)

	hub.Send(1, map[string]any{"type": "message", "chat_id": 5})
	hub.Send(2, map[string]any{"type": "message", "chat_id": 6})

	var got map[string]any
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "message", got["type"])
	assert.Equal(t, float64(5), got["chat_id"])

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "ping"}))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "pong", got["type"])

	conn.Close()
	require.Eventually(t, func() bool { return hub.Connections(1) == 0 }, time.Second, 10*time.Millisecond)
}

func TestHandlerRejectsAnonymous(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(MakeHandler(hub, bearerUsers(nil), nil))
	defer srv.Close()

	_, resp, err := dial(t, srv, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = dial(t, srv, http.Header{"Authorization": {"Bearer nope"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSendDoesNotBlockOnSlowConnection(t *testing.T) {
	hub := NewHub()
	// No writer drains this client, as with a peer that stopped reading.
	c := &client{send: make(chan []byte, 1), done: make(chan struct{})}
	hub.register(7, c)

	finished := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			hub.Send(7, map[string]int{"n": i})
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Send blocked on a full connection")
	}
	require.Len(t, c.send, 1)
	assert.JSONEq(t, `{"n":0}`, string(<-c.send))

	c.close()
	assert.False(t, c.enqueue([]byte("late")))
}

func TestCheckOrigin(t *testing.T) {
	check := makeCheckOrigin([]string{"http://localhost:3000"})
	req := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "http://api.example.com/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}
	assert.True(t, check(req("")))
	assert.True(t, check(req("http://localhost:3000")))
	assert.True(t, check(req("http://api.example.com")))
	assert.False(t, check(req("http://evil.example.com")))
}
