package websocket

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"asiacup/internal/config"
	"asiacup/internal/infrastructure"
)

// HandlerConfig configures the dashboard upgrade endpoint
type HandlerConfig struct {
	Client          ClientConfig
	ReadBufferSize  int
	WriteBufferSize int
	AllowedOrigins  []string
	// DevMode accepts any origin
	DevMode bool
}

// HandlerConfigFrom derives handler settings from the application config.
func HandlerConfigFrom(cfg *config.Config) HandlerConfig {
	return HandlerConfig{
		Client:          ClientConfigFrom(cfg),
		ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: cfg.WebSocket.WriteBufferSize,
		AllowedOrigins:  cfg.Security.AllowedOrigins,
		DevMode:         cfg.Logging.Development,
	}
}

// Handler upgrades /ws/dashboard requests and starts a Client per connection
type Handler struct {
	hub      *Hub
	service  ViewService
	cfg      HandlerConfig
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates the upgrade handler
func NewHandler(hub *Hub, service ViewService, cfg HandlerConfig, logger *slog.Logger) *Handler {
	h := &Handler{
		hub:     hub,
		service: service,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "websocket.handler")),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     h.checkOrigin,
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			h.logger.WarnContext(r.Context(), "websocket upgrade rejected",
				slog.Int("status", status),
				slog.String("reason", reason.Error()),
				slog.String("origin", r.Header.Get("Origin")))
			http.Error(w, http.StatusText(status), status)
		},
	}
	return h
}

// checkOrigin allows same-host requests, requests without an Origin header,
// and the configured origins.
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || h.cfg.DevMode {
		return true
	}
	if strings.EqualFold(strings.TrimPrefix(strings.TrimPrefix(origin, "https://"), "http://"), r.Host) {
		return true
	}
	for _, allowed := range h.cfg.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// ServeHTTP handles GET /ws/dashboard
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := infrastructure.EnsureTraceID(r.Context())
	reqID := middleware.GetReqID(ctx)
	traceID := infrastructure.GetTraceID(ctx)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written the response
		return
	}

	client := NewClient(h.hub, NewConnectionWrapper(conn), h.service, h.cfg.Client, traceID, h.logger)
	if !h.hub.Register(client) {
		client.Close()
		return
	}

	h.logger.InfoContext(ctx, "websocket client connected",
		slog.String("client_id", client.ID()),
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("request_id", reqID),
		slog.String("trace_id", traceID))

	if err := client.Greet(); err != nil {
		h.hub.Unregister(client)
		client.Close()
		return
	}

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.Error("websocket write pump panic", slog.Any("panic", rec))
				client.Close()
			}
		}()
		client.WritePump()
	}()
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.Error("websocket read pump panic", slog.Any("panic", rec))
				h.hub.Unregister(client)
				client.Close()
			}
		}()
		client.ReadPump()
	}()
}
