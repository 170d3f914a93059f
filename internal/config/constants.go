package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Session lifetimes, fixed at creation (not sliding)
const (
	BetaSessionLifetime  = 7 * 24 * time.Hour
	AdminSessionLifetime = 24 * time.Hour
)

// Expired-session sweep interval
const CleanupJobInterval = time.Hour

// Password generation retries on unique-constraint collision
const PasswordCreateAttempts = 3

// Rate limits (fixed window per IP)
const (
	SubscribeRateLimitPerMin = 5
	LoginRateLimitPerMin     = 5
)

// Pause between sends during a bulk announcement (Resend allows 2 req/s)
const BulkSendPause = 500 * time.Millisecond
