package session

import (
	"sync"
	"time"

	"github.com/pawhome/pawstock/internal/logger"
)

// Guard gates protected views: it checks the session once on entry and then
// on a fixed interval, sliding the expiry window on every successful check.
// Session lifetime is therefore measured from the last guarded check, not
// from login.
type Guard struct {
	store    *Store
	interval time.Duration

	mu             sync.Mutex
	onUnauthorized func()
	stopCh         chan struct{}
	stopOnce       sync.Once
}

// NewGuard creates a guard over the given store. onUnauthorized is invoked
// whenever a check finds no live session (the UI navigates back to login).
func NewGuard(store *Store, interval time.Duration, onUnauthorized func()) *Guard {
	return &Guard{
		store:          store,
		interval:       interval,
		onUnauthorized: onUnauthorized,
		stopCh:         make(chan struct{}),
	}
}

// Start runs an immediate check and then begins periodic checking in the
// background. Returns the result of the initial check.
func (g *Guard) Start() bool {
	ok := g.Check()
	go g.loop()
	return ok
}

func (g *Guard) loop() {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.Check()
		case <-g.stopCh:
			return
		}
	}
}

// Check validates the session, refreshing it when live. Returns false and
// fires the unauthorized callback when the session is gone or expired.
func (g *Guard) Check() bool {
	if !g.store.IsValid() {
		g.unauthorized()
		return false
	}

	if !g.store.Refresh() {
		// Lost the session between the validity check and the refresh.
		g.unauthorized()
		return false
	}
	return true
}

func (g *Guard) unauthorized() {
	g.mu.Lock()
	cb := g.onUnauthorized
	stopped := g.isStopped()
	g.mu.Unlock()

	if stopped {
		// View already torn down; nothing to redirect.
		return
	}

	logger.Info("Session check failed, redirecting to login")
	if cb != nil {
		cb()
	}
}

func (g *Guard) isStopped() bool {
	select {
	case <-g.stopCh:
		return true
	default:
		return false
	}
}

// Stop cancels the periodic check. Safe to call more than once; late ticks
// after Stop are dropped.
func (g *Guard) Stop() {
	g.stopOnce.Do(func() {
		close(g.stopCh)
	})
}
