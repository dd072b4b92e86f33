package telegram

import (
	"context"
	"errors"
	"fmt"
	"os"

	"vidrelay/internal/models"
	"vidrelay/internal/utils/logging"
)

// SendStarted tells the chat a job has been queued.
func (c *Client) SendStarted(ctx context.Context, chatRef string, j *models.Job) error {
	text := fmt.Sprintf("Download started for: %s\nFormat: %s\nDownload ID: %s", j.SourceURL, j.Format, j.ID)
	return c.SendMessage(ctx, chatRef, text)
}

// SendCompleted uploads the job's artifact to its chat, then confirms completion.
//
// Artifacts over the upload ceiling are not sent; the chat is told to fetch the file over HTTP.
func (c *Client) SendCompleted(ctx context.Context, j *models.Job) error {
	if !c.Enabled() {
		return ErrDisabled
	}
	if j.NotifyChatRef == "" || j.ArtifactPath == "" {
		return nil
	}
	title := displayTitle(j)

	info, err := os.Stat(j.ArtifactPath)
	if err != nil {
		return c.reportUploadFailure(ctx, j, title, fmt.Errorf("failed to stat artifact: %w", err))
	}

	if info.Size() > c.maxUpload {
		sizeMB := (info.Size() + 512*1024) / (1024 * 1024)
		limitMB := c.maxUpload / (1024 * 1024)
		text := fmt.Sprintf("File %q is too large for Telegram (%dMB > %dMB). Download it from the web API instead (ID %s).",
			title, sizeMB, limitMB, j.ID)
		if err := c.SendMessage(ctx, j.NotifyChatRef, text); err != nil {
			logging.E("Failed to send too-large notice for job %s: %v", j.ID, err)
		}
		return fmt.Errorf("%w: job %s artifact is %d bytes", ErrFileTooLarge, j.ID, info.Size())
	}

	caption := title
	if j.Format.IsAudio() {
		err = c.SendAudio(ctx, j.NotifyChatRef, j.ArtifactPath, title+"."+j.Format.AudioExt(), caption)
	} else {
		err = c.SendVideo(ctx, j.NotifyChatRef, j.ArtifactPath, "", caption)
	}
	if err != nil {
		return c.reportUploadFailure(ctx, j, title, err)
	}

	logging.S("Sent %q to chat %s", title, j.NotifyChatRef)
	return c.SendMessage(ctx, j.NotifyChatRef, fmt.Sprintf("Download completed: %q", title))
}

// SendFailed tells the chat a job has failed.
func (c *Client) SendFailed(ctx context.Context, j *models.Job) error {
	if j.NotifyChatRef == "" {
		return nil
	}
	text := fmt.Sprintf("Download failed for %s: %s", displayTitle(j), j.ErrorReason)
	return c.SendMessage(ctx, j.NotifyChatRef, text)
}

func (c *Client) reportUploadFailure(ctx context.Context, j *models.Job, title string, cause error) error {
	text := fmt.Sprintf("Failed to send file %q: %v", title, cause)
	if err := c.SendMessage(ctx, j.NotifyChatRef, text); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

func displayTitle(j *models.Job) string {
	if j.Title != "" {
		return j.Title
	}
	return j.SourceURL
}
