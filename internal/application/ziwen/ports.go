// Package ziwen holds the bot's processing passes: batch intake of posts,
// comments and messages, plus the periodic claim-expiry and closeout jobs.
package ziwen

import (
	"context"

	"github.com/kungming2/translator-BOT-reborn/internal/domain/language"
	"github.com/kungming2/translator-BOT-reborn/internal/domain/request"
)

// EventMarker remembers handled platform events so passes stay idempotent.
type EventMarker interface {
	IsProcessed(ctx context.Context, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, eventID, kind string) error
}

// Notifier fans a request out to language subscribers.
type Notifier interface {
	Dispatch(ctx context.Context, req *request.Request, languages []language.Identity) (int, error)
}
