package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrijs2005/boostmanager/internal/client/models"
)

// wsURL turns the http base url into its websocket counterpart.
func wsURL(base, path string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + path
}

// Watch subscribes to a superadmin feed ("audit" or "errors") and calls fn
// for every event until ctx is done or the server closes the stream.
func (c *HTTPClient) Watch(ctx context.Context, topic string, fn func(*models.Event)) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	header := http.Header{}
	if access, _ := c.tokens(); access != "" {
		header.Set("Authorization", "Bearer "+access)
	}

	conn, resp, err := dialer.DialContext(ctx, wsURL(c.baseURL, "/superadmin/ws/"+topic), header)
	if err != nil {
		if resp != nil {
			apiErr := &APIError{Status: resp.StatusCode}
			if n, ok := NoticeFor(resp.StatusCode, "/superadmin/ws/"+topic, ""); ok {
				c.notify(n)
			}
			return apiErr
		}
		return fmt.Errorf("%w: websocket dial: %v", ErrUnavailable, err)
	}
	defer conn.Close()

	stopped := make(chan struct{})
	defer close(stopped)

	go func() {
		select {
		case <-ctx.Done():
		case <-stopped:
			return
		}
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("websocket read: %w", err)
		}

		var event models.Event
		if err := json.Unmarshal(message, &event); err != nil {
			continue
		}
		fn(&event)
	}
}
