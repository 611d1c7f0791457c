package api

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// EventEntryAdded is broadcast after the backend stores a new entry.
const EventEntryAdded = "entry_added"

// Event is one message from the backend's live feed.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Feed is an open subscription to /ws.
type Feed struct {
	conn      *websocket.Conn
	closeOnce sync.Once
}

// Subscribe opens the live feed. The connection closes when ctx ends or
// Close is called.
func (c *Client) Subscribe(ctx context.Context) (*Feed, error) {
	u := *c.baseURL
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path += "/ws"

	dialer := websocket.Dialer{HandshakeTimeout: c.httpClient.Timeout}
	conn, resp, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("/ws: %w", &StatusError{Endpoint: "/ws", Code: resp.StatusCode})
		}
		return nil, fmt.Errorf("/ws: network error: %w", err)
	}

	f := &Feed{conn: conn}
	context.AfterFunc(ctx, func() { f.Close() })
	return f, nil
}

// Next blocks until the next event arrives or the feed fails.
func (f *Feed) Next() (Event, error) {
	var ev Event
	if err := f.conn.ReadJSON(&ev); err != nil {
		return Event{}, fmt.Errorf("feed read: %w", err)
	}
	return ev, nil
}

// Close ends the subscription.
func (f *Feed) Close() error {
	var err error
	f.closeOnce.Do(func() {
		_ = f.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		err = f.conn.Close()
	})
	return err
}
