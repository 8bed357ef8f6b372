package platform

import "context"

// NotificationMessenger adapts the platform write surface to the
// notification dispatcher's delivery port.
type NotificationMessenger struct {
	actions Actions
}

func NewNotificationMessenger(actions Actions) *NotificationMessenger {
	return &NotificationMessenger{actions: actions}
}

func (m *NotificationMessenger) SendNotification(ctx context.Context, username, subject, body string) error {
	return m.actions.SendMessage(ctx, username, subject, body)
}
