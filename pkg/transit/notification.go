package transit

import "time"

type Notification struct {
	TargetUser string
	Type       NotificationType

	Title   string
	Message string

	Data map[string]string
}

type NotificationType string

const (
	NotificationTypePush  NotificationType = "Push"
	NotificationTypeEmail NotificationType = "Email"
)

type UserPushNotificationTarget struct {
	UserID                string    `groups:"internal" bson:",omitempty"`
	PushNotificationToken string    `groups:"internal" bson:",omitempty"`
	ModificationDateTime  time.Time `groups:"internal" bson:",omitempty"`
}

// UserEventSubscription filters which events a user gets notified about.
// Expression is an expr-lang program evaluated against the event body, an
// empty expression matches everything.
type UserEventSubscription struct {
	UserID    string    `groups:"internal" bson:",omitempty"`
	EventType EventType `groups:"internal" bson:",omitempty"`

	Expression string `groups:"internal" bson:",omitempty"`

	CreationDateTime time.Time `groups:"internal" bson:",omitempty"`
}
