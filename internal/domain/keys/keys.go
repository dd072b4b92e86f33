// Package keys holds the terminal flag and internal Viper keys.
package keys

// Server.
const (
	Addr   string = "addr"
	APIKey string = "api-key"
)

// Files and directories.
const (
	ConfigFile string = "config-file"
	DataDir    string = "data-dir"
	DBPath     string = "db-path"
	LogFile    string = "log-file"
)

// Storage.
const (
	Store string = "store"
)

// Downloading.
const (
	YtdlpPath          string = "ytdlp-path"
	CookiesFromBrowser string = "cookies-from-browser"
	MaxAttempts        string = "max-attempts"
	RetryBaseDelay     string = "retry-base-delay"
	StopOnBotCheck     string = "stop-on-bot-check"
	Format             string = "format"
)

// Notification.
const (
	WebhookTimeout      string = "webhook-timeout"
	TelegramBotToken    string = "telegram-bot-token"
	TelegramAPIURL      string = "telegram-api-url"
	TelegramMaxUploadMB string = "telegram-max-upload-mb"
)

// Logging.
const (
	DebugLevel string = "debug-level"
	NoColor    string = "no-color"
)

// EnvPrefix is prepended to environment variable lookups (e.g. VIDRELAY_DATA_DIR).
const EnvPrefix = "VIDRELAY"
