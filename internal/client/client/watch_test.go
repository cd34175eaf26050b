package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/boostmanager/internal/client/models"
)

func TestWSURL(t *testing.T) {
	assert.Equal(t, "ws://host:8080/x", wsURL("http://host:8080", "/x"))
	assert.Equal(t, "wss://host/x", wsURL("https://host", "/x"))
}

func TestWatch_DeliversEvents(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/superadmin/ws/audit", r.URL.Path)
		assert.Equal(t, "Bearer root", r.Header.Get("Authorization"))

		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		_ = conn.WriteMessage(websocket.TextMessage, []byte("not json"))
		_ = conn.WriteJSON(models.Event{Topic: "audit", Event: "INSERT", Payload: map[string]any{"action": "login"}})
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		time.Sleep(50 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	c.SetTokens("root", "")

	var got []*models.Event
	err := c.Watch(context.Background(), "audit", func(e *models.Event) { got = append(got, e) })
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "INSERT", got[0].Event)
	assert.Equal(t, "login", got[0].Payload["action"])
}

func TestWatch_StopsOnCancel(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := c.Watch(ctx, "errors", func(*models.Event) {})
	assert.NoError(t, err)
}

func TestWatch_ForbiddenHandshake(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	sink := &noticeSink{}
	c.OnNotice(sink.add)

	err := c.Watch(context.Background(), "audit", func(*models.Event) {})
	require.ErrorIs(t, err, ErrForbidden)
	require.Len(t, sink.all(), 1)
}
