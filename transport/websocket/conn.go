package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tetris-backend/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 << 10
	sendBuffer     = 256
)

var (
	ErrConnClosed   = errors.New("connection closed")
	ErrSlowConsumer = errors.New("connection is not keeping up")
)

// Conn is one websocket connection. Send may be called from any goroutine and
// never waits on the socket: messages are queued and written by the
// connection's own writer. Reads belong to the connection's read loop.
type Conn struct {
	ws *websocket.Conn

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newConn(ws *websocket.Conn) *Conn {
	ws.SetReadLimit(maxMessageSize)

	conn := &Conn{
		ws:   ws,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}

	go conn.writeLoop()

	return conn
}

// Send queues a message. A connection whose queue is full is dropped, which
// also ends its read loop.
func (that *Conn) Send(msg protocol.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	select {
	case <-that.done:
		return ErrConnClosed
	default:
	}

	select {
	case that.send <- data:
		return nil
	default:
		that.shutdown()
		_ = that.ws.Close()
		return ErrSlowConsumer
	}
}

// Receive blocks for the next message and decodes its envelope.
func (that *Conn) Receive() (protocol.Message, error) {
	_, data, err := that.ws.ReadMessage()
	if err != nil {
		return protocol.Message{}, fmt.Errorf("failed to read message: %w", err)
	}

	return protocol.Decode(data)
}

// Close sends a close frame with the given reason and closes the socket.
func (that *Conn) Close(code int, reason string) error {
	that.shutdown()

	_ = that.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))

	if err := that.ws.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}

	return nil
}

func (that *Conn) shutdown() {
	that.closeOnce.Do(func() {
		close(that.done)
	})
}

// writeLoop is the only writer of data frames. A failed write closes the
// socket so the read loop ends too.
func (that *Conn) writeLoop() {
	for {
		select {
		case <-that.done:
			return
		case data := <-that.send:
			if err := that.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				that.shutdown()
				_ = that.ws.Close()
				return
			}

			if err := that.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				that.shutdown()
				_ = that.ws.Close()
				return
			}
		}
	}
}
