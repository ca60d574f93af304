package session

import "time"

// RoleAdmin is the only role the dashboard knows about.
const RoleAdmin = "admin"

// User is the authenticated administrator as shown in the UI.
// The fields come from an unverified decode of the login token and are
// display-only; the server re-checks the token on every API call.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Session is the single client-side session slot.
type Session struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Valid reports whether the session is still live at the given instant.
func (s *Session) Valid(now time.Time) bool {
	return !now.After(s.ExpiresAt)
}
