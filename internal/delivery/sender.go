package delivery

import (
	"context"
	"log/slog"
)

// Sender delivers one formatted alert to one chat.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// LogSender writes alerts to the log instead of delivering them. It stands
// in when no bot token is configured.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, chatID int64, text string) error {
	slog.Info("alert", "chat_id", chatID, "text", text)
	return nil
}
