package cfg

import (
	"vidrelay/internal/domain/consts"
	"vidrelay/internal/domain/keys"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// initProgramFlags initializes flags for files, storage and logging.
func initProgramFlags(rootCmd *cobra.Command) error {
	pf := rootCmd.PersistentFlags()

	// Config file
	pf.String(keys.ConfigFile, "", "Config file (any format Viper reads, e.g. YAML, TOML, JSON)")
	if err := viper.BindPFlag(keys.ConfigFile, pf.Lookup(keys.ConfigFile)); err != nil {
		return err
	}

	// Directories and files
	pf.String(keys.DataDir, "", "Data directory (defaults to ~/.vidrelay)")
	if err := viper.BindPFlag(keys.DataDir, pf.Lookup(keys.DataDir)); err != nil {
		return err
	}
	pf.String(keys.DBPath, "", "SQLite database path (defaults to <data-dir>/vidrelay.db)")
	if err := viper.BindPFlag(keys.DBPath, pf.Lookup(keys.DBPath)); err != nil {
		return err
	}
	pf.String(keys.LogFile, "", "Log file path (defaults to <data-dir>/vidrelay.log)")
	if err := viper.BindPFlag(keys.LogFile, pf.Lookup(keys.LogFile)); err != nil {
		return err
	}

	// Storage
	pf.String(keys.Store, consts.StoreMemory, "Job store backend (memory or sqlite)")
	if err := viper.BindPFlag(keys.Store, pf.Lookup(keys.Store)); err != nil {
		return err
	}

	// Logging
	pf.Int(keys.DebugLevel, 0, "Debugging level (0 - 5)")
	if err := viper.BindPFlag(keys.DebugLevel, pf.Lookup(keys.DebugLevel)); err != nil {
		return err
	}
	pf.Bool(keys.NoColor, false, "Disable colored console logs")
	return viper.BindPFlag(keys.NoColor, pf.Lookup(keys.NoColor))
}

// initDownloadFlags initializes flags for yt-dlp and retries.
func initDownloadFlags(rootCmd *cobra.Command) error {
	pf := rootCmd.PersistentFlags()

	pf.String(keys.YtdlpPath, "", "yt-dlp executable (defaults to yt-dlp on PATH)")
	if err := viper.BindPFlag(keys.YtdlpPath, pf.Lookup(keys.YtdlpPath)); err != nil {
		return err
	}
	pf.String(keys.CookiesFromBrowser, "", "Browser to read cookies from (e.g. 'firefox')")
	if err := viper.BindPFlag(keys.CookiesFromBrowser, pf.Lookup(keys.CookiesFromBrowser)); err != nil {
		return err
	}

	// Retries
	pf.Int(keys.MaxAttempts, consts.DefaultMaxAttempts, "Download attempts per job")
	if err := viper.BindPFlag(keys.MaxAttempts, pf.Lookup(keys.MaxAttempts)); err != nil {
		return err
	}
	pf.Duration(keys.RetryBaseDelay, consts.DefaultRetryBaseDelay, "Base retry delay (doubles per attempt)")
	if err := viper.BindPFlag(keys.RetryBaseDelay, pf.Lookup(keys.RetryBaseDelay)); err != nil {
		return err
	}
	pf.Bool(keys.StopOnBotCheck, false, "Do not retry downloads the site rejected with a bot check")
	return viper.BindPFlag(keys.StopOnBotCheck, pf.Lookup(keys.StopOnBotCheck))
}

// initNotifyFlags initializes flags for webhook and chat delivery.
func initNotifyFlags(rootCmd *cobra.Command) error {
	pf := rootCmd.PersistentFlags()

	pf.Duration(keys.WebhookTimeout, consts.HTTPClientTimeout, "Timeout for completion webhook POSTs")
	if err := viper.BindPFlag(keys.WebhookTimeout, pf.Lookup(keys.WebhookTimeout)); err != nil {
		return err
	}

	// Telegram
	pf.String(keys.TelegramBotToken, "", "Telegram bot token (enables chat delivery)")
	if err := viper.BindPFlag(keys.TelegramBotToken, pf.Lookup(keys.TelegramBotToken)); err != nil {
		return err
	}
	pf.String(keys.TelegramAPIURL, "", "Telegram Bot API base URL")
	if err := viper.BindPFlag(keys.TelegramAPIURL, pf.Lookup(keys.TelegramAPIURL)); err != nil {
		return err
	}
	pf.Int64(keys.TelegramMaxUploadMB, consts.DefaultTelegramMaxUploadMB, "Largest file sent to Telegram, in MB")
	return viper.BindPFlag(keys.TelegramMaxUploadMB, pf.Lookup(keys.TelegramMaxUploadMB))
}
