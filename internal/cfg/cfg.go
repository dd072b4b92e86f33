// Package cfg provides configuration and command-line interface setup for vidrelay.
package cfg

import (
	"context"
	"fmt"
	"os"
	"strings"

	"vidrelay/internal/domain/keys"
	"vidrelay/internal/domain/setup"
	"vidrelay/internal/utils/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Resolved once per run by the root command's pre-run hook.
var (
	settings Settings
	paths    setup.Paths
)

var rootCmd = &cobra.Command{
	Use:           "vidrelay",
	Short:         "vidrelay downloads media through yt-dlp and relays progress to subscribers.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configFile := viper.GetString(keys.ConfigFile); configFile != "" {
			if err := loadConfigFile(configFile); err != nil {
				return err
			}
		}

		settings = LoadSettings()
		if err := settings.Validate(); err != nil {
			return err
		}

		var err error
		if paths, err = setup.InitDirs(settings.DataDir, settings.DBPath, settings.LogFile); err != nil {
			return err
		}

		if err := logging.SetupLogging(logging.Config{
			Console:     cmd.ErrOrStderr(),
			LogFilePath: paths.LogFilePath,
			DebugLevel:  settings.DebugLevel,
			NoColor:     settings.NoColor,
		}); err != nil {
			return err
		}
		logging.D(1, "Data directory: %s, database: %s, log file: %s", paths.DataDir, paths.DBFilePath, paths.LogFilePath)
		return nil
	},
}

// InitCommands initializes all commands and their flags.
func InitCommands() error {
	viper.SetEnvPrefix(keys.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_")) // "data-dir" reads VIDRELAY_DATA_DIR
	viper.AutomaticEnv()

	// Accept the Bot API's conventional variable name as well
	if err := viper.BindEnv(keys.TelegramBotToken, envName(keys.TelegramBotToken), "TELEGRAM_BOT_TOKEN"); err != nil {
		return err
	}

	if err := initProgramFlags(rootCmd); err != nil {
		return err
	}
	if err := initDownloadFlags(rootCmd); err != nil {
		return err
	}
	if err := initNotifyFlags(rootCmd); err != nil {
		return err
	}

	serve, err := initServeCmd()
	if err != nil {
		return err
	}
	rootCmd.AddCommand(serve)
	rootCmd.AddCommand(initInfoCmd())
	rootCmd.AddCommand(initDownloadCmd())
	rootCmd.AddCommand(initBatchCmd())
	return nil
}

// Execute runs the selected command under ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadConfigFile reads any Viper-supported config file into the key space.
func loadConfigFile(file string) error {
	info, err := os.Stat(file)
	if err != nil {
		return fmt.Errorf("failed check for config file path: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("config file %q is a directory, should be a file", file)
	}

	viper.SetConfigFile(file)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed loading config file %q: %w", file, err)
	}
	logging.D(1, "Loaded config file %q", file)
	return nil
}

func envName(key string) string {
	return keys.EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}
