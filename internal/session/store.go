package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pawhome/pawstock/internal/logger"
)

// ErrAuthFailed is returned for every failed login attempt. Bad credentials
// and an unreachable server are deliberately indistinguishable to the caller.
var ErrAuthFailed = errors.New("login failed: check your credentials and try again")

const (
	sessionFile = "session.json"
	legacyFile  = "user.json" // pre-token client kept a bare user record here
)

// Store owns the single client-side session slot under the state directory.
type Store struct {
	dir        string
	apiURL     string
	duration   time.Duration
	httpClient *http.Client
	now        func() time.Time
}

// NewStore creates a session store rooted at dir, authenticating against apiURL.
func NewStore(dir, apiURL string, duration time.Duration) *Store {
	return &Store{
		dir:        dir,
		apiURL:     apiURL,
		duration:   duration,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
}

// Authenticate sends credentials to the remote auth endpoint and, on success,
// replaces any prior session with a fresh one.
func (s *Store) Authenticate(username, password string) (*Session, error) {
	body, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})

	resp, err := s.httpClient.Post(
		s.apiURL+"/api/auth/login",
		"application/json",
		bytes.NewReader(body),
	)
	if err != nil {
		logger.Warn("Login request failed", logger.F("error", err))
		return nil, ErrAuthFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Info("Login rejected", logger.F("status", resp.StatusCode))
		return nil, ErrAuthFailed
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil || result.Token == "" {
		logger.Warn("Login response unparsable", logger.F("error", err))
		return nil, ErrAuthFailed
	}

	user := userFromToken(result.Token, username)
	now := s.now()
	sess := &Session{
		User:      user,
		Token:     result.Token,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.duration),
	}

	if err := s.save(sess); err != nil {
		return nil, err
	}

	logger.Info("Session established", logger.F("user", user.Username))
	return sess, nil
}

// userFromToken decodes the bearer token payload without verifying the
// signature. The result is display metadata only and must never feed an
// authorization decision; the server validates the token on every call.
func userFromToken(token, fallbackUsername string) User {
	user := User{ID: fallbackUsername, Username: fallbackUsername, Role: RoleAdmin}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return user
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return user
	}

	if v, ok := claims["username"].(string); ok && v != "" {
		user.Username = v
		user.ID = v
	} else if v, ok := claims["sub"].(string); ok && v != "" {
		user.Username = v
		user.ID = v
	}
	if v, ok := claims["role"].(string); ok && v != "" {
		user.Role = v
	}

	return user
}

// IsValid reports whether a live session exists. An expired slot found during
// the check is purged; expiry is detected lazily, not by a background timer.
func (s *Store) IsValid() bool {
	sess := s.load()
	if sess == nil {
		return false
	}
	if !sess.Valid(s.now()) {
		s.Terminate()
		return false
	}
	return true
}

// CurrentUser returns the embedded user of a live session.
func (s *Store) CurrentUser() (User, bool) {
	sess := s.load()
	if sess == nil {
		return User{}, false
	}
	if !sess.Valid(s.now()) {
		s.Terminate()
		return User{}, false
	}
	return sess.User, true
}

// Refresh slides the expiry window forward, keeping the same token and user.
// Returns false without side effects when no live session exists.
func (s *Store) Refresh() bool {
	sess := s.load()
	if sess == nil {
		return false
	}

	now := s.now()
	if !sess.Valid(now) {
		s.Terminate()
		return false
	}

	sess.ExpiresAt = now.Add(s.duration)
	if err := s.save(sess); err != nil {
		logger.Warn("Failed to persist refreshed session", logger.F("error", err))
		return false
	}
	return true
}

// Token returns the bearer token of the stored session regardless of expiry,
// or an empty string when no slot exists. Callers that need a live session
// should check IsValid first, or expect the server to reject the call.
func (s *Store) Token() string {
	sess := s.load()
	if sess == nil {
		return ""
	}
	return sess.Token
}

// Terminate clears all session state unconditionally. Idempotent.
func (s *Store) Terminate() {
	os.Remove(filepath.Join(s.dir, sessionFile))
	os.Remove(filepath.Join(s.dir, legacyFile))
}

// load reads the session slot, upgrading a legacy record once if present.
func (s *Store) load() *Session {
	data, err := os.ReadFile(filepath.Join(s.dir, sessionFile))
	if err != nil {
		return s.migrateLegacy()
	}

	sess := &Session{}
	if err := json.Unmarshal(data, sess); err != nil {
		logger.Warn("Corrupt session slot, discarding", logger.F("error", err))
		s.Terminate()
		return nil
	}
	return sess
}

// migrateLegacy upgrades the pre-token user record into a current-format
// session, then deletes it. Runs at most once: the new slot is written before
// the legacy file is removed, and subsequent loads find the slot directly.
func (s *Store) migrateLegacy() *Session {
	legacyPath := filepath.Join(s.dir, legacyFile)
	data, err := os.ReadFile(legacyPath)
	if err != nil {
		return nil
	}

	var user User
	if err := json.Unmarshal(data, &user); err != nil || user.Username == "" {
		os.Remove(legacyPath)
		return nil
	}
	if user.Role == "" {
		user.Role = RoleAdmin
	}

	now := s.now()
	sess := &Session{
		User:      user,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.duration),
	}
	if err := s.save(sess); err != nil {
		logger.Warn("Legacy session migration failed", logger.F("error", err))
		return nil
	}
	os.Remove(legacyPath)

	logger.Info("Migrated legacy session record", logger.F("user", user.Username))
	return sess
}

func (s *Store) save(sess *Session) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(filepath.Join(s.dir, sessionFile), data, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}
