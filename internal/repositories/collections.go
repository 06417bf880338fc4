package repositories

const (
	UsersCollection         = "users"
	JobsCollection          = "jobs"
	ApplicationsCollection  = "applications"
	NotificationsCollection = "notifications"
	PushTokensCollection    = "pushTokens"
)
