package cfg

import (
	"fmt"
	"net"
	"net/url"
	"time"

	"vidrelay/internal/domain/consts"
	"vidrelay/internal/domain/keys"

	"github.com/spf13/viper"
)

// Settings is the resolved program configuration.
type Settings struct {
	Addr   string
	APIKey string

	DataDir string
	DBPath  string
	LogFile string
	Store   string

	YtdlpPath          string
	CookiesFromBrowser string
	MaxAttempts        int
	RetryBaseDelay     time.Duration
	StopOnBotCheck     bool

	WebhookTimeout      time.Duration
	TelegramBotToken    string
	TelegramAPIURL      string
	TelegramMaxUploadMB int64

	DebugLevel int
	NoColor    bool
}

// LoadSettings reads the settings from Viper (flags, environment, config file).
func LoadSettings() Settings {
	return Settings{
		Addr:                viper.GetString(keys.Addr),
		APIKey:              viper.GetString(keys.APIKey),
		DataDir:             viper.GetString(keys.DataDir),
		DBPath:              viper.GetString(keys.DBPath),
		LogFile:             viper.GetString(keys.LogFile),
		Store:               viper.GetString(keys.Store),
		YtdlpPath:           viper.GetString(keys.YtdlpPath),
		CookiesFromBrowser:  viper.GetString(keys.CookiesFromBrowser),
		MaxAttempts:         viper.GetInt(keys.MaxAttempts),
		RetryBaseDelay:      viper.GetDuration(keys.RetryBaseDelay),
		StopOnBotCheck:      viper.GetBool(keys.StopOnBotCheck),
		WebhookTimeout:      viper.GetDuration(keys.WebhookTimeout),
		TelegramBotToken:    viper.GetString(keys.TelegramBotToken),
		TelegramAPIURL:      viper.GetString(keys.TelegramAPIURL),
		TelegramMaxUploadMB: viper.GetInt64(keys.TelegramMaxUploadMB),
		DebugLevel:          viper.GetInt(keys.DebugLevel),
		NoColor:             viper.GetBool(keys.NoColor),
	}
}

// Validate checks the settings and fills defaults left unset.
func (s *Settings) Validate() error {
	switch s.Store {
	case "":
		s.Store = consts.StoreMemory
	case consts.StoreMemory, consts.StoreSQLite:
	default:
		return fmt.Errorf("invalid %s %q (want %q or %q)", keys.Store, s.Store, consts.StoreMemory, consts.StoreSQLite)
	}

	if s.Addr != "" {
		if _, _, err := net.SplitHostPort(s.Addr); err != nil {
			return fmt.Errorf("invalid %s %q: %w", keys.Addr, s.Addr, err)
		}
	}

	if s.MaxAttempts <= 0 {
		s.MaxAttempts = consts.DefaultMaxAttempts
	}
	if s.RetryBaseDelay < 0 {
		return fmt.Errorf("%s cannot be negative", keys.RetryBaseDelay)
	}
	if s.RetryBaseDelay == 0 {
		s.RetryBaseDelay = consts.DefaultRetryBaseDelay
	}
	if s.WebhookTimeout <= 0 {
		s.WebhookTimeout = consts.HTTPClientTimeout
	}

	if s.TelegramAPIURL != "" {
		u, err := url.Parse(s.TelegramAPIURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid %s %q", keys.TelegramAPIURL, s.TelegramAPIURL)
		}
	}
	if s.TelegramMaxUploadMB <= 0 {
		s.TelegramMaxUploadMB = consts.DefaultTelegramMaxUploadMB
	}

	switch {
	case s.DebugLevel < 0:
		s.DebugLevel = 0
	case s.DebugLevel > 5:
		s.DebugLevel = 5
	}
	return nil
}
