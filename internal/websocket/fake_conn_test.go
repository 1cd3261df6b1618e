package websocket

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type frame struct {
	Type int
	Data []byte
}

// fakeConn replays scripted text frames, then fails reads as a dropped
// peer would. Writes are recorded.
type fakeConn struct {
	mu       sync.Mutex
	inbound  []frame
	written  []frame
	closed   bool
	stayOpen bool // keep accepting writes after Close to capture the close frame
}

func newFakeConn(inbound ...string) *fakeConn {
	c := &fakeConn{}
	for _, msg := range inbound {
		c.inbound = append(c.inbound, frame{Type: websocket.TextMessage, Data: []byte(msg)})
	}
	return c
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed && !c.stayOpen {
		return errors.New("connection closed")
	}
	c.written = append(c.written, frame{Type: messageType, Data: data})
	return nil
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.inbound) == 0 {
		return 0, nil, &websocket.CloseError{Code: websocket.CloseGoingAway}
	}
	f := c.inbound[0]
	c.inbound = c.inbound[1:]
	return f.Type, f.Data, nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) frames() []frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]frame(nil), c.written...)
}

func (c *fakeConn) SetReadDeadline(time.Time) error { return nil }
func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }
func (c *fakeConn) SetReadLimit(int64) {}
func (c *fakeConn) SetPongHandler(func(string) error) {}
func (c *fakeConn) RemoteAddr() string { return "192.0.2.10:52000" }
