// Package telegram relays job outcomes to Telegram chats and parses inbound bot commands.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vidrelay/internal/domain/consts"
	"vidrelay/internal/utils/logging"
)

const (
	// DefaultAPIURL is the public Bot API host.
	DefaultAPIURL = "https://api.telegram.org"

	methodSendMessage = "sendMessage"
	methodSendAudio   = "sendAudio"
	methodSendVideo   = "sendVideo"

	fieldAudio = "audio"
	fieldVideo = "video"
)

var (
	// ErrDisabled is returned when no bot token is configured.
	ErrDisabled = errors.New("telegram bot is not configured")

	// ErrFileTooLarge is returned when an artifact exceeds the upload ceiling.
	ErrFileTooLarge = errors.New("file too large for telegram upload")
)

// Config holds Bot API settings.
type Config struct {
	BotToken    string
	APIURL      string        // Defaults to DefaultAPIURL
	MaxUploadMB int64         // Defaults to consts.DefaultTelegramMaxUploadMB
	Timeout     time.Duration // Message request timeout
}

// Client talks to the Bot API.
type Client struct {
	token     string
	baseURL   string
	maxUpload int64

	msgClient    *http.Client
	uploadClient *http.Client
}

// apiResponse is the envelope every Bot API method returns.
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
	ErrorCode   int    `json:"error_code,omitempty"`
}

// NewClient returns a Bot API client. An empty token yields a disabled client.
func NewClient(cfg Config) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = consts.DefaultTelegramMaxUploadMB
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = consts.HTTPClientTimeout
	}
	return &Client{
		token:        cfg.BotToken,
		baseURL:      strings.TrimRight(cfg.APIURL, "/"),
		maxUpload:    cfg.MaxUploadMB * 1024 * 1024,
		msgClient:    &http.Client{Timeout: cfg.Timeout},
		uploadClient: &http.Client{Timeout: consts.ChatUploadTimeout},
	}
}

// Enabled reports whether a bot token is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.token != ""
}

// MaxUploadBytes returns the upload ceiling in bytes.
func (c *Client) MaxUploadBytes() int64 {
	return c.maxUpload
}

// SendMessage posts a text message to the chat.
func (c *Client) SendMessage(ctx context.Context, chatRef, text string) error {
	if !c.Enabled() {
		return ErrDisabled
	}

	body, err := json.Marshal(map[string]string{
		"chat_id": chatRef,
		"text":    text,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message for chat %s: %w", chatRef, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(methodSendMessage), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", methodSendMessage, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(c.msgClient, req, methodSendMessage)
}

// SendAudio uploads an audio file to the chat.
func (c *Client) SendAudio(ctx context.Context, chatRef, path, filename, caption string) error {
	return c.sendFile(ctx, methodSendAudio, fieldAudio, chatRef, path, filename, caption)
}

// SendVideo uploads a video file to the chat.
func (c *Client) SendVideo(ctx context.Context, chatRef, path, filename, caption string) error {
	return c.sendFile(ctx, methodSendVideo, fieldVideo, chatRef, path, filename, caption)
}

// sendFile streams a multipart upload of the file at path.
func (c *Client) sendFile(ctx context.Context, method, field, chatRef, path, filename, caption string) error {
	if !c.Enabled() {
		return ErrDisabled
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %q for upload: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.E("Failed to close file %q: %v", path, err)
		}
	}()

	if filename == "" {
		filename = filepath.Base(path)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeUpload(mw, f, field, chatRef, filename, caption))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), pr)
	if err != nil {
		_ = pr.Close()
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	logging.D(1, "Uploading %q to chat %s via %s", path, chatRef, method)
	err = c.do(c.uploadClient, req, method)
	_ = pr.Close()
	return err
}

// writeUpload writes the form fields and file part, then closes the multipart writer.
func writeUpload(mw *multipart.Writer, r io.Reader, field, chatRef, filename, caption string) error {
	if err := mw.WriteField("chat_id", chatRef); err != nil {
		return err
	}
	if caption != "" {
		if err := mw.WriteField("caption", caption); err != nil {
			return err
		}
	}
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return err
	}
	return mw.Close()
}

// do sends req and decodes the Bot API envelope.
func (c *Client) do(client *http.Client, req *http.Request, method string) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s request failed: %w", method, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.E("Failed to close HTTP response body: %v", err)
		}
	}()

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && resp.StatusCode < 400 {
		return fmt.Errorf("telegram %s returned unreadable response: %w", method, err)
	}
	if resp.StatusCode >= 400 || !out.OK {
		desc := out.Description
		if desc == "" {
			desc = resp.Status
		}
		return fmt.Errorf("telegram %s failed with status %d: %s", method, resp.StatusCode, desc)
	}
	return nil
}

func (c *Client) methodURL(method string) string {
	return c.baseURL + "/bot" + c.token + "/" + method
}
