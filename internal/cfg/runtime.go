package cfg

import (
	"context"
	"errors"
	"fmt"

	"vidrelay/internal/app"
	"vidrelay/internal/contracts"
	"vidrelay/internal/database"
	"vidrelay/internal/domain/consts"
	"vidrelay/internal/downloads"
	"vidrelay/internal/repo"
	"vidrelay/internal/telegram"
	"vidrelay/internal/utils"
	"vidrelay/internal/utils/logging"
)

// services holds the services one command runs against.
type services struct {
	store     contracts.Store
	extractor *downloads.Client
	chat      *telegram.Client
	svc       *app.Service
}

// newServices wires the store, extractor, notifiers and orchestrator from s.
//
// A nil events uses no broadcaster.
func newServices(ctx context.Context, s Settings, events contracts.Broadcaster) (*services, error) {
	store, err := openStore(s.Store)
	if err != nil {
		return nil, err
	}

	extractor, err := downloads.NewClient(downloads.Config{
		YtdlpPath:          s.YtdlpPath,
		OutputDir:          paths.DownloadsDir,
		CookiesFromBrowser: s.CookiesFromBrowser,
	})
	if err != nil {
		return nil, errors.Join(err, store.Close())
	}

	chat := telegram.NewClient(telegram.Config{
		BotToken:    s.TelegramBotToken,
		APIURL:      s.TelegramAPIURL,
		MaxUploadMB: s.TelegramMaxUploadMB,
	})
	if chat.Enabled() {
		logging.I("Telegram delivery enabled with token %s (max upload %dMB)", utils.MaskSecret(s.TelegramBotToken), s.TelegramMaxUploadMB)
	}

	var policy app.RetryPolicy = app.RetryAll
	if s.StopOnBotCheck {
		policy = app.RetryUnlessBotDetected
	}

	svc := app.NewService(ctx, app.Deps{
		Store:       store,
		Extractor:   extractor,
		Broadcaster: events,
		Chat:        chat,
		Webhook:     app.NewWebhookNotifier(s.WebhookTimeout),
	}, app.Config{
		MaxAttempts:    s.MaxAttempts,
		RetryBaseDelay: s.RetryBaseDelay,
		RetryPolicy:    policy,
	})

	return &services{
		store:     store,
		extractor: extractor,
		chat:      chat,
		svc:       svc,
	}, nil
}

// close waits for background work, then closes the store.
func (rt *services) close() {
	rt.svc.Wait()
	if err := rt.store.Close(); err != nil {
		logging.E("Failed to close store: %v", err)
	}
}

// openStore returns the configured job store backend.
func openStore(kind string) (contracts.Store, error) {
	switch kind {
	case consts.StoreSQLite:
		db, err := database.InitDB(paths.DBFilePath)
		if err != nil {
			return nil, err
		}
		logging.I("Using SQLite job store at %q", paths.DBFilePath)
		return repo.InitStores(db.DB), nil
	case consts.StoreMemory, "":
		return repo.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store %q", kind)
	}
}
