// Package events contains the message contracts of the dashboard WebSocket.
//
// A client connects to /ws/dashboard and receives a "connect" message with
// its client ID and the available filter options. It then sends
// "dashboard:filter" messages whose data is a FilterRequest; each is answered
// with a "dashboard:view" carrying the full dashboard, or an "error". Replies
// echo the ID of the request they answer.
package events

import (
	"encoding/json"
	"time"

	"asiacup/pkg/contracts/domain"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Client to server
	MessageTypeFilter    MessageType = "dashboard:filter"
	MessageTypeHeartbeat MessageType = "heartbeat"

	// Server to client
	MessageTypeConnect MessageType = "connect"
	MessageTypeView    MessageType = "dashboard:view"
	MessageTypeError   MessageType = "error"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage is a server to client message.
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// InboundMessage is a client to server message. Data is decoded according
// to Type.
type InboundMessage struct {
	ID   string          `json:"id,omitempty"`
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ConnectData is the payload of a connect message.
type ConnectData struct {
	ClientID string               `json:"client_id"`
	Options  domain.FilterOptions `json:"options"`
}

// ErrorData is the payload of an error message. Codes match the error_code
// of the HTTP API.
type ErrorData struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Retry   bool        `json:"retry"`
}

// NewMessage builds a timestamped server message.
func NewMessage(msgType MessageType, id, traceID string, data interface{}) WebSocketMessage {
	return WebSocketMessage{
		BaseMessage: BaseMessage{
			ID:        id,
			Type:      msgType,
			Timestamp: time.Now().UTC(),
			TraceID:   traceID,
		},
		Data: data,
	}
}
