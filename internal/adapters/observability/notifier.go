package observability

import (
	"context"

	"github.com/rs/zerolog"

	"propmatch/internal/domain"
)

// LogNotifier writes notifications to the log instead of delivering them.
// Used in dev and when no sink is configured.
type LogNotifier struct{ l zerolog.Logger }

func NewLogNotifier(l zerolog.Logger) *LogNotifier { return &LogNotifier{l: l} }

func (n *LogNotifier) Notify(ctx context.Context, note domain.Notification) error {
	n.l.Info().
		Str("user_id", note.UserID).
		Str("type", note.Type).
		Str("title", note.Title).
		Str("message", note.Message).
		Interface("payload", note.Payload).
		Msg("notification")
	ObserveNotification("log", nil)
	return nil
}
