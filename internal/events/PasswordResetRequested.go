package events

var PasswordResetRequestedTopic = "PasswordResetRequestedEvent"

type PasswordResetRequested struct {
	UID   string
	Email string
	Token string
}
