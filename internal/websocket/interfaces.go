package websocket

import (
	"context"
	"time"

	api "asiacup/pkg/contracts/api/v1"
	"asiacup/pkg/contracts/domain"
)

// Connection defines the interface for WebSocket connections
// This allows for proper mocking in tests
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

// ViewService answers dashboard requests. services.DashboardService
// implements it.
type ViewService interface {
	Options(ctx context.Context) (domain.FilterOptions, error)
	View(ctx context.Context, req api.FilterRequest, source string) (*domain.DashboardView, error)
}
