// Package server sets up the vidrelay HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"vidrelay/internal/contracts"
	"vidrelay/internal/domain/consts"
	"vidrelay/internal/utils/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ChatMessenger sends plain replies to inbound chat commands.
type ChatMessenger interface {
	Enabled() bool
	SendMessage(ctx context.Context, chatRef, text string) error
}

// Deps holds the services the API reads from and dispatches to.
type Deps struct {
	Store      contracts.Store
	Dispatcher contracts.Dispatcher
	Extractor  contracts.Extractor
	Events     http.Handler  // WebSocket endpoint
	Chat       ChatMessenger // Optional
	APIKey     string        // Optional bearer key for /api routes
}

// Server serves the job API.
type Server struct {
	jobs       contracts.JobStore
	batches    contracts.BatchStore
	dispatcher contracts.Dispatcher
	extractor  contracts.Extractor
	events     http.Handler
	chat       ChatMessenger
	apiKey     string

	// delivered holds IDs of jobs whose artifact was streamed and removed.
	delivered sync.Map
}

// New returns a Server.
func New(d Deps) *Server {
	return &Server{
		jobs:       d.Store.JobStore(),
		batches:    d.Store.BatchStore(),
		dispatcher: d.Dispatcher,
		extractor:  d.Extractor,
		events:     d.Events,
		chat:       d.Chat,
		apiKey:     d.APIKey,
	}
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// --- Real-time events ---
	if s.events != nil {
		r.Handle("/ws", s.events)
	}

	// --- API Routes ---
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handleHealth)

		// Bot API calls carry no bearer key
		r.Post("/telegram/webhook", s.handleTelegramWebhook)

		r.Group(func(r chi.Router) {
			r.Use(requireAPIKey(s.apiKey))

			r.Get("/video/info", s.handleVideoInfo)

			// Downloads API
			r.Route("/download", func(r chi.Router) {
				r.Post("/", s.handleCreateDownload)
				r.Get("/{id}", s.handleGetDownload)
				r.Get("/{id}/file", s.handleDownloadFile)
			})

			// Batches API
			r.Route("/batch-download", func(r chi.Router) {
				r.Post("/", s.handleCreateBatch)
				r.Get("/{id}", s.handleGetBatch)
			})
		})
	})

	return r
}

// StartServer serves h on addr until ctx is cancelled, then shuts down gracefully.
func StartServer(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: consts.ServerReadTimeout,
		ReadTimeout:       consts.ServerReadTimeout,
		IdleTimeout:       consts.ServerIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.S("vidrelay web server running on http://%s", displayAddr(addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logging.I("Shutting down web server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), consts.ServerShutdownWait)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
