package server

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"vidrelay/internal/domain/consts"
	"vidrelay/internal/models"
	"vidrelay/internal/telegram"
	"vidrelay/internal/utils/logging"
	"vidrelay/internal/validation"

	"github.com/go-chi/chi/v5"
)

// handleHealth reports liveness.
func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// handleVideoInfo returns source metadata without downloading.
func (s *Server) handleVideoInfo(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	url := q.Get("url")
	if err := validation.ValidateSourceURL(url); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}

	var format consts.Format
	if raw := q.Get("format"); raw != "" {
		f, err := validation.ValidateFormat(raw)
		if err != nil {
			writeErr(w, http.StatusBadRequest, err)
			return
		}
		format = f
	}

	meta, err := s.extractor.FetchMetadata(r.Context(), url, format)
	if err != nil {
		logging.E("Metadata lookup for %q failed: %v", url, err)
		writeErr(w, statusFor(err), fmt.Errorf("failed to get video info: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// handleCreateDownload queues one job.
func (s *Server) handleCreateDownload(w http.ResponseWriter, r *http.Request) {
	var in models.JobInput
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}

	j, err := s.dispatcher.SubmitJob(r.Context(), in)
	if err != nil {
		writeErr(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"id":     j.ID,
		"status": j.Status,
	})
}

// handleCreateBatch queues a batch of URLs.
func (s *Server) handleCreateBatch(w http.ResponseWriter, r *http.Request) {
	var in models.BatchInput
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}

	b, err := s.dispatcher.SubmitBatch(r.Context(), in)
	if err != nil {
		writeErr(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"id":         b.ID,
		"status":     b.Status,
		"totalItems": b.TotalItems,
	})
}

// handleGetDownload returns a job record.
func (s *Server) handleGetDownload(w http.ResponseWriter, r *http.Request) {
	j, err := s.jobs.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

// handleGetBatch returns a batch record.
func (s *Server) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	b, err := s.batches.GetBatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// handleDownloadFile streams a completed job's artifact once, then deletes it.
func (s *Server) handleDownloadFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	j, err := s.jobs.GetJob(r.Context(), id)
	if err != nil {
		writeErr(w, statusFor(err), err)
		return
	}
	if j.Status != consts.DLStatusCompleted || j.ArtifactPath == "" {
		writeErr(w, http.StatusConflict, errNotReady)
		return
	}
	// Claimed before streaming so overlapping requests cannot both be served.
	if _, claimed := s.delivered.LoadOrStore(id, struct{}{}); claimed {
		writeErr(w, http.StatusGone, fmt.Errorf("file for download %s was already retrieved", id))
		return
	}

	f, err := os.Open(j.ArtifactPath)
	if err != nil {
		s.delivered.Delete(id)
		logging.E("Artifact for job %s unavailable: %v", id, err)
		writeErr(w, http.StatusInternalServerError, errors.New("file not found on server"))
		return
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		s.delivered.Delete(id)
		writeErr(w, http.StatusInternalServerError, fmt.Errorf("failed to stat file: %w", err))
		return
	}

	name := filepath.Base(j.ArtifactPath)
	w.Header().Set("Content-Type", contentType(name))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.WriteHeader(http.StatusOK)

	n, copyErr := io.Copy(w, f)
	if err := f.Close(); err != nil {
		logging.E("Failed to close artifact %q: %v", j.ArtifactPath, err)
	}
	if copyErr != nil || n != info.Size() {
		logging.E("Streaming artifact for job %s stopped after %d of %d bytes: %v", id, n, info.Size(), copyErr)
		s.delivered.Delete(id)
		return
	}

	if err := os.Remove(j.ArtifactPath); err != nil {
		logging.E("Failed to remove delivered artifact %q: %v", j.ArtifactPath, err)
		return
	}
	logging.I("Delivered and removed artifact for job %s", id)
}

// handleTelegramWebhook turns "/download <url> [format]" chat commands into jobs.
//
// The Bot API retries non-2xx responses, so bad commands are answered in chat and acknowledged.
func (s *Server) handleTelegramWebhook(w http.ResponseWriter, r *http.Request) {
	var u telegram.Update
	if err := decodeJSON(r, &u); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	if u.Message == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	req, ok := telegram.ParseDownloadCommand(u.Message.Text)
	if !ok {
		if strings.HasPrefix(strings.TrimSpace(u.Message.Text), telegram.CommandDownload) {
			s.reply(r, u.Message.ChatRef(), "Usage: /download <url> [format]")
		}
		writeJSON(w, http.StatusOK, nil)
		return
	}

	j, err := s.dispatcher.SubmitJob(r.Context(), models.JobInput{
		SourceURL:     req.URL,
		Format:        req.Format,
		NotifyChatRef: u.Message.ChatRef(),
	})
	if err != nil {
		if errors.Is(err, validation.ErrValidation) {
			s.reply(r, u.Message.ChatRef(), "Invalid download request: "+err.Error())
			writeJSON(w, http.StatusOK, nil)
			return
		}
		logging.E("Chat download request failed: %v", err)
		writeErr(w, http.StatusInternalServerError, errors.New("webhook processing failed"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": j.ID})
}

func (s *Server) reply(r *http.Request, chatRef, text string) {
	if s.chat == nil || !s.chat.Enabled() {
		return
	}
	if err := s.chat.SendMessage(r.Context(), chatRef, text); err != nil {
		logging.E("Failed to reply to chat %s: %v", chatRef, err)
	}
}

// contentType returns the artifact MIME type by extension.
func contentType(name string) string {
	if ct, ok := consts.ContentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return consts.DefaultContentType
}
