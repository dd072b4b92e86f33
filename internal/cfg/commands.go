package cfg

import (
	"encoding/json"
	"fmt"
	"io"

	"vidrelay/internal/broadcast"
	"vidrelay/internal/domain/consts"
	"vidrelay/internal/domain/keys"
	"vidrelay/internal/models"
	"vidrelay/internal/parsing"
	"vidrelay/internal/server"
	"vidrelay/internal/utils"
	"vidrelay/internal/utils/logging"
	"vidrelay/internal/validation"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// initServeCmd returns the command that runs the HTTP API.
func initServeCmd() (*cobra.Command, error) {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and WebSocket progress feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			hub := broadcast.NewHub()

			rt, err := newServices(ctx, settings, hub)
			if err != nil {
				return err
			}
			defer rt.close()
			defer hub.Close()

			addr := settings.Addr
			if addr == "" {
				addr = consts.DefaultAddr
			}

			var chat server.ChatMessenger
			if rt.chat.Enabled() {
				chat = rt.chat
			}

			if settings.APIKey != "" {
				logging.I("API routes require bearer key %s", utils.MaskSecret(settings.APIKey))
			}

			api := server.New(server.Deps{
				Store:      rt.store,
				Dispatcher: rt.svc,
				Extractor:  rt.extractor,
				Events:     hub.Handler(),
				Chat:       chat,
				APIKey:     settings.APIKey,
			})
			return server.StartServer(ctx, addr, api.Router())
		},
	}

	// Server
	serveCmd.Flags().String(keys.Addr, consts.DefaultAddr, "HTTP listen address")
	if err := viper.BindPFlag(keys.Addr, serveCmd.Flags().Lookup(keys.Addr)); err != nil {
		return nil, err
	}
	serveCmd.Flags().String(keys.APIKey, "", "Bearer key required on /api routes (disabled when empty)")
	if err := viper.BindPFlag(keys.APIKey, serveCmd.Flags().Lookup(keys.APIKey)); err != nil {
		return nil, err
	}
	return serveCmd, nil
}

// initInfoCmd returns the command that prints source metadata.
func initInfoCmd() *cobra.Command {
	var format string

	infoCmd := &cobra.Command{
		Use:   "info <url>",
		Short: "Print metadata for a source URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateSourceURL(args[0]); err != nil {
				return err
			}
			var f consts.Format
			if format != "" {
				var err error
				if f, err = validation.ValidateFormat(format); err != nil {
					return err
				}
			}

			rt, err := newServices(cmd.Context(), settings, nil)
			if err != nil {
				return err
			}
			defer rt.close()

			meta, err := rt.extractor.FetchMetadata(cmd.Context(), args[0], f)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), meta)
		},
	}
	infoCmd.Flags().StringVar(&format, keys.Format, "", "Format hint for the metadata request")
	return infoCmd
}

// initDownloadCmd returns the command that runs one job in the foreground.
func initDownloadCmd() *cobra.Command {
	var in models.JobInput
	var format string

	downloadCmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Download one URL, printing progress to the console",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.SourceURL = args[0]
			in.Format = consts.Format(format)

			rt, err := newServices(cmd.Context(), settings, newConsoleBroadcaster(cmd.OutOrStdout()))
			if err != nil {
				return err
			}
			defer rt.close()

			j, err := rt.svc.ProcessJob(cmd.Context(), in)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), j); err != nil {
				return err
			}
			if j.Status == consts.DLStatusFailed {
				return fmt.Errorf("download failed: %s", j.ErrorReason)
			}
			return nil
		},
	}
	downloadCmd.Flags().StringVar(&format, keys.Format, string(consts.FormatVideo720), "Output format (video-720, video-1080, audio-mp3, audio-wav, best)")
	downloadCmd.Flags().StringVar(&in.NotifyWebhookURL, "notify-webhook", "", "URL to POST the completion payload to")
	downloadCmd.Flags().StringVar(&in.NotifyChatRef, "notify-chat", "", "Telegram chat ID to send the file to")
	return downloadCmd
}

// initBatchCmd returns the command that runs a batch in the foreground.
func initBatchCmd() *cobra.Command {
	var in models.BatchInput
	var format, urlFile string

	batchCmd := &cobra.Command{
		Use:   "batch [url...]",
		Short: "Download several URLs one after another",
		RunE: func(cmd *cobra.Command, args []string) error {
			urls, err := collectBatchURLs(urlFile, args)
			if err != nil {
				return err
			}
			in.SourceURLs = urls
			in.Format = consts.Format(format)

			rt, err := newServices(cmd.Context(), settings, newConsoleBroadcaster(cmd.OutOrStdout()))
			if err != nil {
				return err
			}
			defer rt.close()

			b, err := rt.svc.ProcessBatch(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), b)
		},
	}
	batchCmd.Flags().StringVar(&urlFile, "file", "", "File with one URL per line ('#' starts a comment)")
	batchCmd.Flags().StringVar(&format, keys.Format, string(consts.FormatVideo720), "Output format for every item")
	batchCmd.Flags().StringVar(&in.NotifyWebhookURL, "notify-webhook", "", "URL to POST each completion payload to")
	batchCmd.Flags().StringVar(&in.NotifyChatRef, "notify-chat", "", "Telegram chat ID to send each file to")
	return batchCmd
}

// collectBatchURLs returns URLs from the file (if any) followed by args, without duplicates.
func collectBatchURLs(urlFile string, args []string) ([]string, error) {
	var urls []string
	if urlFile != "" {
		fromFile, err := parsing.NewURLFileParser(urlFile).ParseURLs()
		if err != nil {
			return nil, fmt.Errorf("failed to read URL file %q: %w", urlFile, err)
		}
		urls = fromFile
	}

	seen := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		seen[u] = struct{}{}
	}
	for _, u := range args {
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: no URLs given (pass them as arguments or with --file)", validation.ErrValidation)
	}
	return urls, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logging.E("Failed to print result: %v", err)
		return err
	}
	return nil
}
