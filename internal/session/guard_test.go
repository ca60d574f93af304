package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGuardCheckRefreshesValidSession(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"username": "admin"})
	srv := loginServer(t, token)
	store, clock := newTestStore(t, srv.URL)

	if _, err := store.Authenticate("admin", "admin123"); err != nil {
		t.Fatal(err)
	}
	before := store.load().ExpiresAt

	clock.Advance(5 * time.Minute)

	fired := false
	guard := NewGuard(store, time.Minute, func() { fired = true })
	defer guard.Stop()

	if !guard.Check() {
		t.Fatal("Check on a valid session should pass")
	}
	if fired {
		t.Error("unauthorized callback fired for a valid session")
	}

	after := store.load().ExpiresAt
	if !after.After(before) {
		t.Errorf("guarded check did not slide expiry: %v -> %v", before, after)
	}
}

func TestGuardCheckRedirectsWhenExpired(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"username": "admin"})
	srv := loginServer(t, token)
	store, clock := newTestStore(t, srv.URL)

	if _, err := store.Authenticate("admin", "admin123"); err != nil {
		t.Fatal(err)
	}
	clock.Advance(testDuration + time.Minute)

	fired := false
	guard := NewGuard(store, time.Minute, func() { fired = true })
	defer guard.Stop()

	if guard.Check() {
		t.Fatal("Check on an expired session should fail")
	}
	if !fired {
		t.Error("unauthorized callback should fire on an expired session")
	}
}

func TestGuardSlidingWindow(t *testing.T) {
	// A session guarded every 5 minutes outlives its 15-minute duration as
	// long as checks keep happening, and dies once they stop.
	token := signedToken(t, jwt.MapClaims{"username": "admin"})
	srv := loginServer(t, token)
	store, clock := newTestStore(t, srv.URL)

	if _, err := store.Authenticate("admin", "admin123"); err != nil {
		t.Fatal(err)
	}

	guard := NewGuard(store, time.Minute, nil)
	defer guard.Stop()

	for i := 0; i < 6; i++ {
		clock.Advance(5 * time.Minute)
		if !guard.Check() {
			t.Fatalf("check %d failed despite sliding refreshes", i+1)
		}
	}

	// 30 minutes elapsed since login; still valid because of the slides.
	if !store.IsValid() {
		t.Fatal("session should survive beyond its base duration under guard checks")
	}

	clock.Advance(testDuration + time.Minute)
	if store.IsValid() {
		t.Error("session should expire once guarded checks stop")
	}
}

func TestGuardStopDropsCallback(t *testing.T) {
	store, _ := newTestStore(t, "http://unused")

	fired := false
	guard := NewGuard(store, time.Minute, func() { fired = true })
	guard.Stop()
	guard.Stop() // idempotent

	guard.Check()
	if fired {
		t.Error("callback must not fire after Stop")
	}
}
