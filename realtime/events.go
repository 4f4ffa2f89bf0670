package realtime

import "time"

// Op is the kind of row change.
type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
)

// ChangeEvent tells subscribers that rows of Table changed. It carries no row
// data; receivers refetch.
type ChangeEvent struct {
	Table string    `json:"table"`
	Op    Op        `json:"op"`
	At    time.Time `json:"at"`
}

// SessionEventType is the kind of auth-state change.
type SessionEventType string

const (
	SignedIn       SessionEventType = "SIGNED_IN"
	SignedOut      SessionEventType = "SIGNED_OUT"
	TokenRefreshed SessionEventType = "TOKEN_REFRESHED"
)

// SessionEvent is published whenever a session starts, ends or is refreshed.
type SessionEvent struct {
	Type      SessionEventType `json:"type"`
	SessionID string           `json:"session_id"`
	UserID    string           `json:"user_id"`
	At        time.Time        `json:"at"`
}

// AuthChannel carries SessionEvents.
const AuthChannel = "auth_events"

// ChangeChannel returns the pub/sub channel for a table.
func ChangeChannel(table string) string {
	return "table_changes:" + table
}
