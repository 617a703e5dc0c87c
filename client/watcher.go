package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Event is a realtime notification pushed by the API.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// WatchVouchers connects to the realtime endpoint and calls handle for every
// event until ctx is done or the connection drops. Handlers usually reload
// a VoucherQueue on "comprobante.nuevo".
func (c *Client) WatchVouchers(ctx context.Context, handle func(Event)) error {
	token := c.session.Token()
	if token == "" {
		return ErrNotLoggedIn
	}

	endpoint, err := websocketURL(c.baseURL, token)
	if err != nil {
		return err
	}
	conn, res, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		if res != nil {
			return &APIError{Status: res.StatusCode, Message: "No se pudo abrir la conexión en tiempo real"}
		}
		return fmt.Errorf("dial websocket: %w", err)
	}
	defer conn.Close()

	// closing the connection unblocks ReadMessage
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read websocket: %w", err)
		}
		var event Event
		if err := json.Unmarshal(message, &event); err != nil {
			logrus.WithError(err).Warn("Ignoring malformed websocket event")
			continue
		}
		handle(event)
	}
}

func websocketURL(baseURL, token string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	u.RawQuery = url.Values{"token": {token}}.Encode()
	return u.String(), nil
}
