package app

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"vidrelay/internal/domain/consts"
	"vidrelay/internal/models"
	"vidrelay/internal/net"
	"vidrelay/internal/utils/logging"
)

const applicationJSON = "application/json"

// WebhookNotifier posts completion payloads to job webhook URLs.
//
// LAN targets use a client that skips certificate verification, for self-signed home services.
type WebhookNotifier struct {
	regClient *http.Client
	lanClient *http.Client
}

// NewWebhookNotifier returns a notifier whose requests time out after timeout.
func NewWebhookNotifier(timeout time.Duration) *WebhookNotifier {
	if timeout <= 0 {
		timeout = consts.HTTPClientTimeout
	}
	return &WebhookNotifier{
		regClient: &http.Client{Timeout: timeout},
		lanClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
	}
}

// NotifyComplete posts one download_complete payload for the job. There is no retry.
func (n *WebhookNotifier) NotifyComplete(ctx context.Context, j *models.Job) error {
	if j.NotifyWebhookURL == "" {
		return nil
	}
	parsed, err := url.Parse(j.NotifyWebhookURL)
	if err != nil {
		return fmt.Errorf("invalid notification URL %q: %w", j.NotifyWebhookURL, err)
	}

	body, err := json.Marshal(models.NewWebhookPayload(j))
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload for job %s: %w", j.ID, err)
	}

	client := n.regClient
	if net.IsPrivateNetwork(parsed.Host) {
		client = n.lanClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, j.NotifyWebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request for job %s: %w", j.ID, err)
	}
	req.Header.Set("Content-Type", applicationJSON)

	logging.I("Notifying %q for job %s", j.NotifyWebhookURL, j.ID)
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification to URL %q for job %s: %w", j.NotifyWebhookURL, j.ID, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.E("Failed to close HTTP response body: %v", err)
		}
	}()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("notification failed with status %d for job %s", resp.StatusCode, j.ID)
	}
	logging.S("Successfully notified URL %q for job %s", j.NotifyWebhookURL, j.ID)
	return nil
}
