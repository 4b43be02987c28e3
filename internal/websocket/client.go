package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"asiacup/internal/config"
	apierrors "asiacup/internal/errors"
	"asiacup/internal/infrastructure"
	"asiacup/internal/services"
	api "asiacup/pkg/contracts/api/v1"
	"asiacup/pkg/contracts/events"
)

const sendBufferSize = 16

var errClientClosed = errors.New("websocket client closed")

// ClientConfig holds the per-connection limits and timings
type ClientConfig struct {
	MaxMessageSize int64
	PingPeriod     time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	RequestTimeout time.Duration
}

// ClientConfigFrom derives client settings from the application config.
func ClientConfigFrom(cfg *config.Config) ClientConfig {
	return ClientConfig{
		MaxMessageSize: cfg.WebSocket.MaxMessageSize,
		PingPeriod:     cfg.WebSocket.PingPeriod,
		PongWait:       cfg.WebSocket.PongWait,
		WriteWait:      cfg.WebSocket.WriteWait,
		RequestTimeout: cfg.Server.RequestTimeout,
	}
}

// Client is one dashboard session. The read pump answers filter requests in
// order; the write pump is the only writer on the connection.
type Client struct {
	hub     *Hub
	conn    Connection
	service ViewService
	cfg     ClientConfig

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	ctx       context.Context
	cancel    context.CancelFunc

	id          string
	traceID     string
	remoteAddr  string
	connectedAt time.Time
	logger      *slog.Logger

	requests     atomic.Int64
	messagesSent atomic.Int64
}

// NewClient creates a client for an upgraded connection
func NewClient(hub *Hub, conn Connection, service ViewService, cfg ClientConfig, traceID string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	id := uuid.New().String()
	if traceID == "" {
		traceID = id
	}

	ctx, cancel := context.WithCancel(infrastructure.WithTraceID(context.Background(), traceID))
	return &Client{
		hub:         hub,
		conn:        conn,
		service:     service,
		cfg:         cfg,
		send:        make(chan []byte, sendBufferSize),
		done:        make(chan struct{}),
		ctx:         ctx,
		cancel:      cancel,
		id:          id,
		traceID:     traceID,
		remoteAddr:  conn.RemoteAddr(),
		connectedAt: time.Now(),
		logger: logger.With(
			slog.String("component", "websocket.client"),
			slog.String("client_id", id),
			slog.String("trace_id", traceID),
		),
	}
}

// ID returns the client ID sent in the connect message
func (c *Client) ID() string { return c.id }

func (c *Client) context() context.Context { return c.ctx }

// Close cancels in-flight requests and closes the connection. Safe to call
// more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.done)
		_ = c.conn.Close()
	})
}

// Greet queues the connect message carrying the client ID and the filter
// options.
func (c *Client) Greet() error {
	opts, err := c.service.Options(c.ctx)
	if err != nil {
		return c.sendError("", err)
	}
	return c.enqueue(events.NewMessage(events.MessageTypeConnect, "", c.traceID, events.ConnectData{
		ClientID: c.id,
		Options:  opts,
	}))
}

// ReadPump reads client messages until the connection fails, then
// unregisters the client.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.Close()
		c.logger.InfoContext(c.ctx, "websocket client disconnected",
			slog.Duration("connection_duration", time.Since(c.connectedAt)),
			slog.Int64("requests", c.requests.Load()),
			slog.Int64("messages_sent", c.messagesSent.Load()))
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.WarnContext(c.ctx, "unexpected websocket close", slog.String("error", err.Error()))
			}
			return
		}
		if err := c.handle(data); err != nil {
			return
		}
	}
}

// handle answers a single client message. It returns an error only when the
// client is gone.
func (c *Client) handle(data []byte) error {
	var msg events.InboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return c.sendError("", apierrors.InvalidRequestWithError(err))
	}

	switch msg.Type {
	case events.MessageTypeHeartbeat:
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))

	case events.MessageTypeFilter:
		c.requests.Add(1)
		var req api.FilterRequest
		if len(msg.Data) > 0 && string(msg.Data) != "null" {
			if err := json.Unmarshal(msg.Data, &req); err != nil {
				return c.sendError(msg.ID, apierrors.InvalidRequestWithError(err))
			}
		}

		ctx := c.ctx
		if c.cfg.RequestTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.cfg.RequestTimeout)
			defer cancel()
		}

		view, err := c.service.View(ctx, req, services.SourceWebSocket)
		if err != nil {
			if c.ctx.Err() != nil {
				return errClientClosed
			}
			return c.sendError(msg.ID, err)
		}
		return c.enqueue(events.NewMessage(events.MessageTypeView, msg.ID, c.traceID, view))

	default:
		return c.sendError(msg.ID, apierrors.New(http.StatusBadRequest, apierrors.CodeInvalidRequest,
			fmt.Sprintf("unsupported message type %q", msg.Type)))
	}
}

func (c *Client) sendError(id string, err error) error {
	data := errorData(err)
	level := slog.LevelWarn
	if data.Code == apierrors.CodeInternal || data.Code == apierrors.CodeDatasetUnavailable {
		level = slog.LevelError
	}
	c.logger.Log(c.ctx, level, "websocket request failed",
		slog.String("code", data.Code),
		slog.String("error", err.Error()))
	return c.enqueue(events.NewMessage(events.MessageTypeError, id, c.traceID, data))
}

// errorData maps service errors to the codes of the HTTP API.
func errorData(err error) events.ErrorData {
	var (
		selErr *services.SelectionError
		apiErr *apierrors.APIError
	)
	switch {
	case errors.As(err, &selErr):
		return events.ErrorData{
			Code:    apierrors.CodeValidationFailed,
			Message: "Request validation failed",
			Details: selErr.Fields,
		}
	case errors.Is(err, services.ErrDatasetNotLoaded):
		return events.ErrorData{
			Code:    apierrors.CodeDatasetUnavailable,
			Message: apierrors.ErrDatasetUnavailable.Message,
			Retry:   true,
		}
	case errors.Is(err, context.DeadlineExceeded):
		return events.ErrorData{
			Code:    apierrors.CodeServiceUnavailable,
			Message: "The request took too long to process",
			Retry:   true,
		}
	case errors.As(err, &apiErr):
		return events.ErrorData{
			Code:    apiErr.ErrorCode,
			Message: apiErr.Message,
			Details: apiErr.Details,
		}
	default:
		return events.ErrorData{
			Code:    apierrors.CodeInternal,
			Message: "An unexpected error occurred",
			Retry:   true,
		}
	}
}

func (c *Client) enqueue(msg events.WebSocketMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		c.logger.ErrorContext(c.ctx, "failed to encode websocket message",
			slog.String("type", string(msg.Type)),
			slog.String("error", err.Error()))
		return nil
	}
	select {
	case c.send <- payload:
		return nil
	case <-c.done:
		return errClientClosed
	}
}

// WritePump writes queued messages and keeps the connection alive with
// pings.
func (c *Client) WritePump() {
	period := c.cfg.PingPeriod
	if period <= 0 {
		period = config.WebSocketPingPeriod
	}
	ticker := time.NewTicker(period)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			return

		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.DebugContext(c.ctx, "websocket write failed", slog.String("error", err.Error()))
				return
			}
			c.messagesSent.Add(1)

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.DebugContext(c.ctx, "websocket ping failed", slog.String("error", err.Error()))
				return
			}
		}
	}
}
