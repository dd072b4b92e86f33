package consts

import "time"

// Retry configuration
const (
	DefaultMaxAttempts    = 3
	DefaultRetryBaseDelay = 1 * time.Second
)

// Network timeouts
const (
	HTTPClientTimeout  = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	WSWriteTimeout     = 2 * time.Second
	ChatUploadTimeout  = 5 * time.Minute
	ServerReadTimeout  = 15 * time.Second
	ServerIdleTimeout  = 60 * time.Second
	ServerShutdownWait = 10 * time.Second
)

// File operations
const (
	FileCheckInterval = 100 * time.Millisecond
	FileWaitTimeout   = 5 * time.Second
)

// Permissions
const (
	PermsGenericDir = 0o755
	PermsLogFile    = 0o644
)

// Chat upload ceiling
const (
	DefaultTelegramMaxUploadMB = 50
)
