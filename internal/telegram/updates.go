package telegram

import (
	"strconv"
	"strings"

	"vidrelay/internal/domain/consts"
)

// CommandDownload is the chat command that queues a job.
const CommandDownload = "/download"

// Update is the subset of a Bot API update the webhook reads.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// Message is an inbound chat message.
type Message struct {
	MessageID int64  `json:"message_id"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text,omitempty"`
}

// Chat identifies the conversation a message came from.
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type,omitempty"`
}

// ChatRef returns the chat ID in the form stored on jobs.
func (m *Message) ChatRef() string {
	return strconv.FormatInt(m.Chat.ID, 10)
}

// DownloadRequest is a parsed "/download <url> [<format>]" command.
type DownloadRequest struct {
	URL    string
	Format consts.Format
}

// ParseDownloadCommand parses a chat message. ok is false when the text is not a
// download command or has no URL. The format is not validated here.
func ParseDownloadCommand(text string) (req DownloadRequest, ok bool) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return req, false
	}

	// Group chats address commands as /download@BotName.
	cmd, _, _ := strings.Cut(fields[0], "@")
	if cmd != CommandDownload {
		return req, false
	}

	req.URL = fields[1]
	req.Format = consts.DefaultChatFormat
	if len(fields) > 2 {
		req.Format = consts.Format(fields[2])
	}
	return req, true
}
