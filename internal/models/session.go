package models

// SessionStatus is the lifecycle state of the client session.
type SessionStatus string

const (
	StatusAnonymous      SessionStatus = "anonymous"
	StatusAuthenticating SessionStatus = "authenticating"
	StatusAuthenticated  SessionStatus = "authenticated"
	StatusRefreshing     SessionStatus = "refreshing"
)
