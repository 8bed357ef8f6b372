package notification

import "context"

// Messenger delivers a private notification to one user. Implementations
// live in the platform layer.
type Messenger interface {
	SendNotification(ctx context.Context, username, subject, body string) error
}

// TallyRepository records per-user delivery counts for the limits surface.
type TallyRepository interface {
	Increment(ctx context.Context, username, languageCode string) error
	MonthlyCount(ctx context.Context, username string) (int, error)
}

// VolumeEstimator reports how many requests arrived for a language over
// the trailing month, used to shrink the sample for busy languages.
type VolumeEstimator interface {
	MonthlyRequests(ctx context.Context, languageCode string) (int, error)
}
