package config

import "time"

// Application constants
const (
	// Application Info
	AppName     = "Asia Cup Analytics"
	ServiceName = "asiacup"
	EnvPrefix   = "ASIACUP"
	EnvFileName = ".env"

	// Server
	DefaultPort           = 8080
	DefaultRequestTimeout = 30 * time.Second

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Files
	DefaultDatasetPath = "data/asiacup_cleaned.csv"
	DefaultExportsDir  = "exports"
	DefaultLogFile     = "logs/app.log"

	// Download names used by the dashboard export buttons
	FilteredExportName = "asiacup_cleaned.csv"
	FullExportName     = "asiacup.csv"
	FilteredXLSXName   = "asiacup_cleaned.xlsx"

	// WebSocket
	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 1024
	WebSocketMaxMessageSize  = 64 * 1024
	WebSocketPingPeriod      = 30 * time.Second
	WebSocketPongWait        = 60 * time.Second
	WebSocketWriteWait       = 10 * time.Second

	// Log Settings
	DefaultLogLevel = "info"
)
