package models

import "time"

// User is the identity returned by login and verify.
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	Email   string `json:"email"`
}

// LoginResult is the auth host's login payload.
type LoginResult struct {
	Token     string `json:"token"`
	User      User   `json:"user"`
	IsNewUser bool   `json:"isNewUser"`
}

// WatchEntry is one recent or favorite stock of a user.
type WatchEntry struct {
	StockCode string    `json:"stock_code"`
	At        time.Time `json:"at"`
}

type SessionEventType string

const (
	SessionLogin  SessionEventType = "login"
	SessionLogout SessionEventType = "logout"
)

// SessionEvent notifies listeners that the session token changed.
type SessionEvent struct {
	Type      SessionEventType `json:"type"`
	SessionID string           `json:"sessionId"`
	At        time.Time        `json:"at"`
}
