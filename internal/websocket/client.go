package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	apperrors "realtydash/internal/errors"
	"realtydash/internal/infrastructure"
	api "realtydash/pkg/contracts/api/v1"
	"realtydash/pkg/contracts/events"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 64 * 1024

	// Upper bound for one dashboard rebuild
	buildTimeout = 30 * time.Second

	sendBuffer = 16
)

// Client is one dashboard session: it reads selections from the peer and
// answers each with the recomputed dashboard
type Client struct {
	hub     *Hub
	conn    Connection
	builder DashboardBuilder

	// Buffered channel of outbound messages
	send       chan []byte
	sendMu     sync.Mutex
	sendClosed bool

	id          string
	traceID     string
	remoteAddr  string
	connectedAt time.Time

	logger *slog.Logger

	messagesSent     int64
	messagesReceived int64
}

// NewClient creates a session over conn. traceID ties its logs to the upgrade request.
func NewClient(hub *Hub, conn Connection, builder DashboardBuilder, traceID string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	id := uuid.New().String()
	logger = logger.With(
		slog.String("component", "websocket.client"),
		slog.String("client_id", id),
	)
	if traceID != "" {
		logger = logger.With(slog.String("trace_id", traceID))
	}

	return &Client{
		hub:         hub,
		conn:        conn,
		builder:     builder,
		send:        make(chan []byte, sendBuffer),
		id:          id,
		traceID:     traceID,
		remoteAddr:  conn.RemoteAddr(),
		connectedAt: time.Now(),
		logger:      logger,
	}
}

// ID returns the session identifier sent in the connect message
func (c *Client) ID() string {
	return c.id
}

func (c *Client) context() context.Context {
	ctx := context.Background()
	if c.traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, c.traceID)
	}
	return ctx
}

// enqueue queues data for the write pump; a full queue drops the message
func (c *Client) enqueue(data []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		c.logger.Warn("Dropping message - client buffer full")
		return false
	}
}

func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.sendClosed {
		c.sendClosed = true
		close(c.send)
	}
}

// ReadPump reads client messages until the connection fails, then unregisters
func (c *Client) ReadPump() {
	defer func() {
		c.logger.InfoContext(c.context(), "WebSocket client disconnected",
			slog.Duration("connection_duration", time.Since(c.connectedAt)),
			slog.Int64("messages_received", c.messagesReceived))
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { return c.conn.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.WarnContext(c.context(), "Unexpected WebSocket close error",
					slog.String("error", err.Error()))
			}
			return
		}
		c.messagesReceived++
		c.handle(message)
	}
}

// handle answers one client message
func (c *Client) handle(message []byte) {
	ctx := c.context()

	var in events.InboundMessage
	if err := json.Unmarshal(message, &in); err != nil {
		c.reply(events.NewErrorMessage(c.traceID, "invalid_message", "message is not valid JSON", false))
		return
	}

	switch in.Type {
	case events.MessageTypeHeartbeat:
		c.logger.DebugContext(ctx, "Heartbeat received")

	case events.MessageTypeSelect:
		var req api.DashboardRequest
		if len(in.Data) > 0 {
			if err := json.Unmarshal(in.Data, &req); err != nil {
				c.reply(events.NewErrorMessage(c.traceID, "invalid_selection", "selection must map columns to value lists", false))
				return
			}
		}

		buildCtx, cancel := context.WithTimeout(ctx, buildTimeout)
		defer cancel()

		dash, err := c.builder.Dashboard(buildCtx, req.Selection)
		if err != nil {
			code := "dashboard_failed"
			if apperrors.IsType(err, apperrors.ErrTypeValidation) {
				code = "invalid_selection"
			}
			c.logger.WarnContext(ctx, "Dashboard rebuild failed", slog.String("error", err.Error()))
			c.reply(events.NewErrorMessage(c.traceID, code, err.Error(), false))
			return
		}

		out := events.NewMessage(events.MessageTypeDashboard, c.traceID, dash)
		out.ID = in.ID
		c.reply(out)

	default:
		c.reply(events.NewErrorMessage(c.traceID, "unsupported_message", "unsupported message type "+string(in.Type), false))
	}
}

func (c *Client) reply(msg events.WebSocketMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("Failed to encode WebSocket message", slog.String("error", err.Error()))
		return
	}
	c.enqueue(data)
}

// WritePump writes queued messages and keepalive pings until the queue closes
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.logger.DebugContext(c.context(), "WebSocket write pump stopped",
			slog.Int64("messages_sent", c.messagesSent))
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.ErrorContext(c.context(), "Error writing message to WebSocket",
					slog.String("error", err.Error()))
				return
			}
			c.messagesSent++

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.DebugContext(c.context(), "Failed to send ping message",
					slog.String("error", err.Error()))
				return
			}
		}
	}
}

// ServeWS starts a session over conn. It returns nil when the hub is stopped.
func ServeWS(hub *Hub, conn Connection, builder DashboardBuilder, traceID string, logger *slog.Logger) *Client {
	client := NewClient(hub, conn, builder, traceID, logger)
	if !hub.Register(client) {
		conn.Close()
		return nil
	}

	go client.WritePump()
	go client.ReadPump()
	return client
}
