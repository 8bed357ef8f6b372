package request

import (
	"context"
	"time"
)

// Repository persists request aggregates. Implementations return (nil, nil)
// when a request does not exist.
type Repository interface {
	Save(ctx context.Context, req *Request) error
	GetByID(ctx context.Context, id string) (*Request, error)
	ListByStatus(ctx context.Context, status Status, limit int) ([]*Request, error)
	ListClaimedBefore(ctx context.Context, cutoff time.Time) ([]*Request, error)
	ListUntranslatedBefore(ctx context.Context, cutoff time.Time) ([]*Request, error)
}

// CompanionRepository persists the bot's companion-comment anchors.
type CompanionRepository interface {
	Save(ctx context.Context, companion *Companion) error
	GetByRequestID(ctx context.Context, requestID string) (*Companion, error)
}
