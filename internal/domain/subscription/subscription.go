// Package subscription models per-language notification signups.
package subscription

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/kungming2/translator-BOT-reborn/internal/shared/errors"
)

// Subscription is one user's signup for notifications about one language.
// The language code is a preferred code, optionally country-qualified
// (pt-br) for users who only want a regional lect.
type Subscription struct {
	languageCode string
	username     string
	createdAt    time.Time
}

// New creates a subscription.
func New(languageCode, username string, createdAt time.Time) (*Subscription, error) {
	languageCode = strings.ToLower(strings.TrimSpace(languageCode))
	username = strings.TrimSpace(username)
	if languageCode == "" {
		return nil, apperrors.NewValidationError("language code is required")
	}
	if username == "" {
		return nil, apperrors.NewValidationError("username is required")
	}
	return &Subscription{
		languageCode: languageCode,
		username:     username,
		createdAt:    createdAt,
	}, nil
}

// Reconstruct rebuilds a subscription from persisted state.
func Reconstruct(languageCode, username string, createdAt time.Time) *Subscription {
	return &Subscription{
		languageCode: languageCode,
		username:     username,
		createdAt:    createdAt,
	}
}

func (s *Subscription) LanguageCode() string { return s.languageCode }
func (s *Subscription) Username() string     { return s.username }
func (s *Subscription) CreatedAt() time.Time { return s.createdAt }

// Repository persists subscriptions.
type Repository interface {
	Save(ctx context.Context, sub *Subscription) error
	Delete(ctx context.Context, languageCode, username string) error
	DeleteAllForUser(ctx context.Context, username string) (int, error)
	ListUsersForLanguage(ctx context.Context, languageCode string) ([]string, error)
	ListLanguagesForUser(ctx context.Context, username string) ([]string, error)
}
