package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// Database table names
	TableRequests           = "requests"
	TableCompanions         = "companion_comments"
	TableSubscriptions      = "subscriptions"
	TableProcessedEvents    = "processed_events"
	TableNotificationTallies = "notification_tallies"

	// Request status values mirrored in persistence
	StatusUntranslated = "untranslated"
	StatusTranslated   = "translated"
)
