package httpserver

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionToken(t *testing.T) {
	tests := []struct {
		name   string
		header http.Header
		cookie string
		want   string
	}{
		{"Bearer", http.Header{"Authorization": {"Bearer abc"}}, "", "abc"},
		{"BearerLowercase", http.Header{"Authorization": {"bearer abc"}}, "", "abc"},
		{"Subprotocol", http.Header{"Sec-Websocket-Protocol": {"bearer, abc"}}, "", "abc"},
		{"SubprotocolExtra", http.Header{"Sec-Websocket-Protocol": {"Bearer, abc, chat"}}, "", "abc"},
		{"SubprotocolWithoutToken", http.Header{"Sec-Websocket-Protocol": {"bearer"}}, "jar", "jar"},
		{"OtherSubprotocol", http.Header{"Sec-Websocket-Protocol": {"chat, abc"}}, "", ""},
		{"HeaderBeatsCookie", http.Header{"Authorization": {"Bearer abc"}}, "jar", "abc"},
		{"EmptyBearerFallsBack", http.Header{"Authorization": {"Bearer "}}, "jar", "jar"},
		{"Cookie", http.Header{}, "jar", "jar"},
		{"None", http.Header{}, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/ws", nil)
			for k, v := range tt.header {
				r.Header[k] = v
			}
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tt.cookie})
			}
			assert.Equal(t, tt.want, sessionToken(r))
		})
	}
}

func TestWebSocketReceivesMessages(t *testing.T) {
	app := newTestApp(t)
	alice := app.signUp(t, "alice")
	app.signUp(t, "bob")

	login, err := http.Post(app.srv.URL+"/api/login", "application/json",
		strings.NewReader(`{"email":"bob@example.com","password":"secret-bob"}`))
	require.NoError(t, err)
	defer login.Body.Close()
	var tok tokenResponse
	decode(t, login, &tok)

	wsURL := "ws" + strings.TrimPrefix(app.srv.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Browsers cannot set headers on the handshake, so bob uses the subprotocol.
	bobDialer := websocket.Dialer{Subprotocols: []string{"bearer", tok.AccessToken}}
	bobConn, resp, err := bobDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer bobConn.Close()
	assert.Equal(t, "bearer", resp.Header.Get("Sec-Websocket-Protocol"))

	aliceDialer := websocket.Dialer{Jar: alice.Jar}
	aliceConn, _, err := aliceDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer aliceConn.Close()

	// A pong means the read loop runs, so the connection is registered.
	for _, conn := range []*websocket.Conn{bobConn, aliceConn} {
		require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
		var pong map[string]any
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		require.NoError(t, conn.ReadJSON(&pong))
		require.Equal(t, "pong", pong["type"])
	}

	req, err := http.NewRequest(http.MethodPost, app.srv.URL+"/api/users/bob/chat", nil)
	require.NoError(t, err)
	chatResp, err := alice.Do(req)
	require.NoError(t, err)
	defer chatResp.Body.Close()
	var chat struct {
		ID int64 `json:"id"`
	}
	decode(t, chatResp, &chat)

	path := fmt.Sprintf("%s/api/chats/%d/messages", app.srv.URL, chat.ID)
	created, err := alice.Post(path, "application/json", strings.NewReader(`{"content":"hello bob"}`))
	require.NoError(t, err)
	created.Body.Close()
	require.Equal(t, http.StatusCreated, created.StatusCode)

	type event struct {
		Type    string `json:"type"`
		ChatID  int64  `json:"chat_id"`
		Message struct {
			Content string `json:"content"`
			IsOwn   bool   `json:"is_own"`
		} `json:"message"`
	}
	for _, tc := range []struct {
		conn  *websocket.Conn
		isOwn bool
	}{{bobConn, false}, {aliceConn, true}} {
		var got event
		require.NoError(t, tc.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		require.NoError(t, tc.conn.ReadJSON(&got))
		assert.Equal(t, "message", got.Type)
		assert.Equal(t, chat.ID, got.ChatID)
		assert.Equal(t, "hello bob", got.Message.Content)
		assert.Equal(t, tc.isOwn, got.Message.IsOwn)
	}
}
