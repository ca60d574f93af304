package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testDuration = 15 * time.Minute

// fakeClock lets tests move time forward without sleeping.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestStore(t *testing.T, apiURL string) (*Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	store := NewStore(t.TempDir(), apiURL, testDuration)
	store.now = clock.Now
	return store, clock
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func loginServer(t *testing.T, token string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" {
			http.NotFound(w, r)
			return
		}
		var creds map[string]string
		json.NewDecoder(r.Body).Decode(&creds)
		if creds["username"] != "admin" || creds["password"] != "admin123" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid credentials"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"token": token})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAuthenticateEstablishesSession(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"username": "admin", "role": "admin"})
	srv := loginServer(t, token)
	store, clock := newTestStore(t, srv.URL)

	sess, err := store.Authenticate("admin", "admin123")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}

	if !store.IsValid() {
		t.Error("session should be valid immediately after login")
	}
	if sess.Token != token {
		t.Errorf("token = %q, want the server token", sess.Token)
	}
	if sess.User.Username != "admin" || sess.User.Role != "admin" {
		t.Errorf("decoded user = %+v, want admin/admin", sess.User)
	}

	want := clock.Now().Add(testDuration)
	if diff := sess.ExpiresAt.Sub(want); diff < -2*time.Second || diff > 2*time.Second {
		t.Errorf("expiresAt = %v, want ≈ %v", sess.ExpiresAt, want)
	}
}

func TestAuthenticateBadCredentials(t *testing.T) {
	srv := loginServer(t, "unused")
	store, _ := newTestStore(t, srv.URL)

	if _, err := store.Authenticate("admin", "wrong"); !errors.Is(err, ErrAuthFailed) {
		t.Errorf("err = %v, want ErrAuthFailed", err)
	}
	if store.IsValid() {
		t.Error("failed login must not establish a session")
	}
}

func TestAuthenticateNetworkErrorIndistinguishable(t *testing.T) {
	srv := loginServer(t, "unused")
	url := srv.URL
	srv.Close()

	store, _ := newTestStore(t, url)
	if _, err := store.Authenticate("admin", "admin123"); !errors.Is(err, ErrAuthFailed) {
		t.Errorf("network failure should surface as ErrAuthFailed, got %v", err)
	}
}

func TestAuthenticateOpaqueTokenFallsBackToSubmittedUsername(t *testing.T) {
	srv := loginServer(t, "not-a-jwt")
	store, _ := newTestStore(t, srv.URL)

	sess, err := store.Authenticate("admin", "admin123")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if sess.User.Username != "admin" || sess.User.Role != RoleAdmin {
		t.Errorf("fallback user = %+v, want submitted username with admin role", sess.User)
	}
}

func TestLazyExpiryPurgesSession(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"username": "admin"})
	srv := loginServer(t, token)
	store, clock := newTestStore(t, srv.URL)

	if _, err := store.Authenticate("admin", "admin123"); err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}

	clock.Advance(testDuration + time.Second)

	if store.IsValid() {
		t.Fatal("session should be invalid after expiry without Terminate")
	}
	// The expired slot must be gone, not just reported invalid.
	if _, err := os.Stat(filepath.Join(store.dir, sessionFile)); !os.IsNotExist(err) {
		t.Error("expired session slot was not purged")
	}
	if _, ok := store.CurrentUser(); ok {
		t.Error("CurrentUser should report none after expiry")
	}
}

func TestRefreshSlidesExpiry(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"username": "admin"})
	srv := loginServer(t, token)
	store, clock := newTestStore(t, srv.URL)

	sess, err := store.Authenticate("admin", "admin123")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	before := sess.ExpiresAt

	clock.Advance(10 * time.Minute)
	if !store.Refresh() {
		t.Fatal("Refresh on a valid session should succeed")
	}

	after := store.load()
	if !after.ExpiresAt.After(before) {
		t.Errorf("refresh did not extend expiry: %v -> %v", before, after.ExpiresAt)
	}
	if after.Token != token {
		t.Error("refresh must keep the same token")
	}
}

func TestRefreshWithoutSession(t *testing.T) {
	store, _ := newTestStore(t, "http://unused")
	if store.Refresh() {
		t.Error("Refresh with no session should return false")
	}
}

func TestRefreshExpiredSession(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"username": "admin"})
	srv := loginServer(t, token)
	store, clock := newTestStore(t, srv.URL)

	if _, err := store.Authenticate("admin", "admin123"); err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	clock.Advance(testDuration + time.Minute)

	if store.Refresh() {
		t.Error("Refresh on an expired session should return false")
	}
	if store.Token() != "" {
		t.Error("expired session should have been purged by the failed refresh")
	}
}

func TestTokenIgnoresExpiry(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"username": "admin"})
	srv := loginServer(t, token)
	store, clock := newTestStore(t, srv.URL)

	if _, err := store.Authenticate("admin", "admin123"); err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	clock.Advance(testDuration + time.Minute)

	// Token is a raw accessor: the slot still exists until something
	// runs the lazy expiry check.
	if got := store.Token(); got != token {
		t.Errorf("Token() = %q, want stored token regardless of expiry", got)
	}
}

func TestTerminateIdempotent(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"username": "admin"})
	srv := loginServer(t, token)
	store, _ := newTestStore(t, srv.URL)

	if _, err := store.Authenticate("admin", "admin123"); err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}

	store.Terminate()
	store.Terminate()

	if store.IsValid() || store.Token() != "" {
		t.Error("Terminate should clear all session state")
	}
}

func TestLegacyMigration(t *testing.T) {
	store, clock := newTestStore(t, "http://unused")

	legacy := User{ID: "1", Username: "pawadmin", Role: "admin"}
	data, _ := json.Marshal(legacy)
	if err := os.MkdirAll(store.dir, 0755); err != nil {
		t.Fatal(err)
	}
	legacyPath := filepath.Join(store.dir, legacyFile)
	if err := os.WriteFile(legacyPath, data, 0600); err != nil {
		t.Fatal(err)
	}

	user, ok := store.CurrentUser()
	if !ok {
		t.Fatal("legacy record should migrate into a valid session")
	}
	if user.Username != "pawadmin" {
		t.Errorf("migrated user = %+v", user)
	}
	if _, err := os.Stat(legacyPath); !os.IsNotExist(err) {
		t.Error("legacy record should be deleted after migration")
	}

	sess := store.load()
	want := clock.Now().Add(testDuration)
	if !sess.ExpiresAt.Equal(want) {
		t.Errorf("migrated session expiresAt = %v, want %v", sess.ExpiresAt, want)
	}
}

func TestLegacyMigrationIdempotent(t *testing.T) {
	store, _ := newTestStore(t, "http://unused")

	legacy := User{ID: "1", Username: "pawadmin", Role: "admin"}
	data, _ := json.Marshal(legacy)
	os.MkdirAll(store.dir, 0755)
	os.WriteFile(filepath.Join(store.dir, legacyFile), data, 0600)

	first := store.load()
	second := store.load()

	if first == nil || second == nil {
		t.Fatal("both loads should find a session")
	}
	if first.User != second.User || !first.ExpiresAt.Equal(second.ExpiresAt) {
		t.Errorf("migration not idempotent: %+v vs %+v", first, second)
	}
}

func TestLegacyMigrationCorruptRecord(t *testing.T) {
	store, _ := newTestStore(t, "http://unused")

	os.MkdirAll(store.dir, 0755)
	legacyPath := filepath.Join(store.dir, legacyFile)
	os.WriteFile(legacyPath, []byte("{not json"), 0600)

	if store.IsValid() {
		t.Error("corrupt legacy record must not produce a session")
	}
	if _, err := os.Stat(legacyPath); !os.IsNotExist(err) {
		t.Error("corrupt legacy record should be removed, not retried forever")
	}
}

func TestLoginOverwritesPriorSession(t *testing.T) {
	first := signedToken(t, jwt.MapClaims{"username": "admin"})
	srv := loginServer(t, first)
	store, _ := newTestStore(t, srv.URL)

	if _, err := store.Authenticate("admin", "admin123"); err != nil {
		t.Fatal(err)
	}
	srv.Close()

	second := signedToken(t, jwt.MapClaims{"username": "admin", "role": "admin"})
	srv2 := loginServer(t, second)
	store.apiURL = srv2.URL

	if _, err := store.Authenticate("admin", "admin123"); err != nil {
		t.Fatal(err)
	}
	if got := store.Token(); got != second {
		t.Error("new login should replace the prior session slot")
	}
}
