package websocket

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "realtydash/internal/errors"
	"realtydash/internal/infrastructure"
	"realtydash/internal/shared/testutil"
	"realtydash/pkg/contracts/domain"
	"realtydash/pkg/contracts/events"
)

type mockBuilder struct {
	mock.Mock
}

func (m *mockBuilder) Dashboard(ctx context.Context, sel domain.Selection) (*domain.Dashboard, error) {
	args := m.Called(ctx, sel)
	if d := args.Get(0); d != nil {
		return d.(*domain.Dashboard), args.Error(1)
	}
	return nil, args.Error(1)
}

type outbound struct {
	ID      string             `json:"id"`
	Type    events.MessageType `json:"type"`
	TraceID string             `json:"trace_id"`
	Data    json.RawMessage    `json:"data"`
}

// runSession registers a client, feeds it the scripted messages and returns
// what it wrote, excluding the final close frame
func runSession(t *testing.T, builder DashboardBuilder, inbound ...string) []outbound {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)

	conn := newFakeConn(inbound...)
	conn.stayOpen = true

	hub := NewHub(logger, infrastructure.NewNoopBusinessMetrics())
	client := NewClient(hub, conn, builder, "trace-1", logger)
	require.True(t, hub.Register(client))

	client.ReadPump()
	assert.Equal(t, 0, hub.GetClientCount())
	client.WritePump()

	written := conn.frames()
	require.NotEmpty(t, written)
	assert.Equal(t, websocket.CloseMessage, written[len(written)-1].Type)

	out := make([]outbound, 0, len(written)-1)
	for _, w := range written[:len(written)-1] {
		var msg outbound
		require.NoError(t, json.Unmarshal(w.Data, &msg))
		out = append(out, msg)
	}
	return out
}

func TestClient_SelectionRoundTrip(t *testing.T) {
	builder := new(mockBuilder)
	sel := domain.Selection{"ESTADO": {"VENDIDO"}}
	builder.On("Dashboard", mock.Anything, sel).Return(&domain.Dashboard{
		Title:     "Ventas",
		Selection: sel,
		Metrics:   []domain.Metric{{Key: "units_total", Value: 4, Formatted: "4"}},
	}, nil)

	msgs := runSession(t, builder,
		`{"id":"r1","type":"dashboard:select","data":{"selection":{"ESTADO":["VENDIDO"]}}}`,
		`{"type":"heartbeat"}`,
	)
	builder.AssertExpectations(t)

	require.Len(t, msgs, 2)
	assert.Equal(t, events.MessageTypeConnect, msgs[0].Type)
	assert.Equal(t, "trace-1", msgs[0].TraceID)

	assert.Equal(t, events.MessageTypeDashboard, msgs[1].Type)
	assert.Equal(t, "r1", msgs[1].ID)
	var dash domain.Dashboard
	require.NoError(t, json.Unmarshal(msgs[1].Data, &dash))
	assert.Equal(t, sel, dash.Selection)
	assert.Equal(t, float64(4), dash.Metrics[0].Value)
}

func TestClient_ErrorReplies(t *testing.T) {
	builder := new(mockBuilder)
	builder.On("Dashboard", mock.Anything, domain.Selection{"COLOR": {"ROJO"}}).
		Return(nil, apperrors.NewAppValidationError(`unknown column "COLOR"`))

	msgs := runSession(t, builder,
		`not json`,
		`{"type":"dashboard:select","data":{"selection":["VENDIDO"]}}`,
		`{"type":"dashboard:select","data":{"selection":{"COLOR":["ROJO"]}}}`,
		`{"type":"chat"}`,
	)

	require.Len(t, msgs, 5)
	codes := make([]string, 0, 4)
	for _, m := range msgs[1:] {
		assert.Equal(t, events.MessageTypeError, m.Type)
		var data events.ErrorData
		require.NoError(t, json.Unmarshal(m.Data, &data))
		assert.False(t, data.Fatal)
		codes = append(codes, data.Code)
	}
	assert.Equal(t, []string{"invalid_message", "invalid_selection", "invalid_selection", "unsupported_message"}, codes)
}

func TestClient_EmptySelectionBuildsFullDashboard(t *testing.T) {
	builder := new(mockBuilder)
	builder.On("Dashboard", mock.Anything, domain.Selection(nil)).Return(&domain.Dashboard{Title: "Ventas"}, nil)

	msgs := runSession(t, builder, `{"type":"dashboard:select"}`)
	require.Len(t, msgs, 2)
	assert.Equal(t, events.MessageTypeDashboard, msgs[1].Type)
}

func TestHub_Stop(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	hub := NewHub(logger, nil)

	conns := []*fakeConn{newFakeConn(), newFakeConn()}
	for _, conn := range conns {
		require.True(t, hub.Register(NewClient(hub, conn, new(mockBuilder), "", logger)))
	}
	assert.Equal(t, 2, hub.GetClientCount())

	hub.Stop(context.Background())
	for _, conn := range conns {
		assert.True(t, conn.isClosed())
	}
	assert.True(t, handler.ContainsMessage("Hub stopped"))

	late := newFakeConn()
	assert.Nil(t, ServeWS(hub, late, new(mockBuilder), "", logger))
	assert.True(t, late.isClosed())
}

func TestHub_UnregisterTwice(t *testing.T) {
	hub := NewHub(nil, nil)
	client := NewClient(hub, newFakeConn(), new(mockBuilder), "", nil)
	require.True(t, hub.Register(client))

	hub.Unregister(client)
	hub.Unregister(client)
	assert.Equal(t, 0, hub.GetClientCount())
	assert.False(t, client.enqueue([]byte("late")))
}
