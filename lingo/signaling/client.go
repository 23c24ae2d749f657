package signaling

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

const (
	sendBuffer      = 64
	maxFrameBytes   = 64 << 10
	maxDecodeErrors = 5
	writeWait       = 10 * time.Second
	pingPeriod      = 30 * time.Second
)

// Client is one socket. Writes go through a bounded queue drained by writeLoop.
type Client struct {
	ID     string
	UserID int

	conn        *websocket.Conn
	send        chan []byte
	done        chan struct{}
	writerDone  chan struct{}
	once        sync.Once
	closeCode   websocket.StatusCode
	closeReason string
}

func newClient(conn *websocket.Conn, userID int) *Client {
	return &Client{
		ID:         uuid.NewString(),
		UserID:     userID,
		conn:       conn,
		send:       make(chan []byte, sendBuffer),
		done:       make(chan struct{}),
		writerDone: make(chan struct{}),
	}
}

// enqueue never blocks. A full queue means a slow consumer, which is dropped.
func (c *Client) enqueue(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- payload:
		return true
	default:
		c.close(websocket.StatusPolicyViolation, "send buffer full")
		return false
	}
}

// close only signals; the close handshake runs in writeLoop so callers
// holding the hub lock never wait on the network.
func (c *Client) close(code websocket.StatusCode, reason string) {
	c.once.Do(func() {
		c.closeCode = code
		c.closeReason = reason
		close(c.done)
	})
}

func (c *Client) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Client) writeLoop(ctx context.Context) {
	defer close(c.writerDone)
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			c.flush(ctx)
			_ = c.conn.Close(c.closeCode, c.closeReason)
			return
		case msg := <-c.send:
			if err := c.write(ctx, msg); err != nil {
				c.close(websocket.StatusGoingAway, "write failed")
				_ = c.conn.CloseNow()
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				c.close(websocket.StatusGoingAway, "ping failed")
				_ = c.conn.CloseNow()
				return
			}
		}
	}
}

func (c *Client) write(ctx context.Context, msg []byte) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return c.conn.Write(writeCtx, websocket.MessageText, msg)
}

// flush writes whatever was queued before close, within one write deadline.
func (c *Client) flush(ctx context.Context) {
	flushCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	for {
		select {
		case msg := <-c.send:
			if err := c.conn.Write(flushCtx, websocket.MessageText, msg); err != nil {
				return
			}
		default:
			return
		}
	}
}
