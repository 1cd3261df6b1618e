package websocket

import (
	"context"
	"time"

	"realtydash/pkg/contracts/domain"
)

// Connection is the subset of a WebSocket connection the client pumps use.
// It allows mocking in tests.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(string) error)
	RemoteAddr() string
}

// DashboardBuilder recomputes the dashboard for a selection.
// *services.DataService satisfies it.
type DashboardBuilder interface {
	Dashboard(ctx context.Context, sel domain.Selection) (*domain.Dashboard, error)
}
