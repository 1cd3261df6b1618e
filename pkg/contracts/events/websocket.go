// Package events contains the message contracts of the dashboard WebSocket.
package events

import (
	"encoding/json"
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Client to server
	MessageTypeSelect    MessageType = "dashboard:select"
	MessageTypeHeartbeat MessageType = "heartbeat"

	// Server to client
	MessageTypeDashboard MessageType = "dashboard:update"
	MessageTypeConnect   MessageType = "connect"
	MessageTypeError     MessageType = "error"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage represents a complete WebSocket message
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// InboundMessage is a client message; Data is decoded according to Type
type InboundMessage struct {
	ID   string          `json:"id,omitempty"`
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ErrorData is the payload of an error message
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Fatal   bool   `json:"fatal"`
}

// NewMessage stamps a message with its type and the current time
func NewMessage(msgType MessageType, traceID string, data interface{}) WebSocketMessage {
	return WebSocketMessage{
		BaseMessage: BaseMessage{
			Type:      msgType,
			Timestamp: time.Now().UTC(),
			TraceID:   traceID,
		},
		Data: data,
	}
}

// NewErrorMessage builds an error message
func NewErrorMessage(traceID, code, message string, fatal bool) WebSocketMessage {
	return NewMessage(MessageTypeError, traceID, ErrorData{Code: code, Message: message, Fatal: fatal})
}
