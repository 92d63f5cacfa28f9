package websocket

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tetris-backend/internal/protocol"
)

// Client is a player's connection to a relay.
type Client struct {
	conn     *Conn
	messages chan protocol.Message
	done     chan struct{}

	closeOnce sync.Once
	err       error
}

// Dial connects to the relay at rawURL as name, asking for the room with the
// given code. An empty code asks for a new room.
func Dial(ctx context.Context, rawURL, name, code string) (*Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse relay url: %w", err)
	}

	query := u.Query()
	query.Set("name", name)
	if code != "" {
		query.Set("code", code)
	}
	u.RawQuery = query.Encode()

	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dial relay: %w", err)
	}

	client := &Client{
		conn:     newConn(ws),
		messages: make(chan protocol.Message, 64),
		done:     make(chan struct{}),
	}

	go client.readLoop()

	return client, nil
}

func (that *Client) Send(msg protocol.Message) error {
	return that.conn.Send(msg)
}

// Messages yields every message from the relay. It is closed when the
// connection ends; Err then tells why.
func (that *Client) Messages() <-chan protocol.Message {
	return that.messages
}

func (that *Client) Err() error {
	return that.err
}

func (that *Client) Close() error {
	var err error
	that.closeOnce.Do(func() {
		close(that.done)
		err = that.conn.Close(websocket.CloseNormalClosure, "")
	})

	return err
}

func (that *Client) readLoop() {
	defer close(that.messages)

	for {
		msg, err := that.conn.Receive()
		if err != nil {
			that.err = err
			return
		}

		select {
		case that.messages <- msg:
		case <-that.done:
			return
		}
	}
}
