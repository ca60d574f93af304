package stock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pawhome/pawstock/internal/inventory"
	"github.com/pawhome/pawstock/internal/logger"
)

// ErrBusy is returned when a quick adjustment is attempted on a product that
// already has a mutation in flight. The caller drops the input instead of
// queueing it, so rapid clicking never duplicates a delta.
var ErrBusy = errors.New("stock update already in progress for this product")

// Mutator is the slice of the product repository the adjuster drives.
type Mutator interface {
	IncreaseStock(ctx context.Context, id string, amount int) (inventory.Product, error)
	DecreaseStock(ctx context.Context, id string, amount int) (inventory.Product, error)
}

// Adjuster implements the quick-adjust discipline behind the +1/-1/+5/+10/-5
// controls: clamp the proposal at zero, allow at most one in-flight mutation
// per product, send deltas rather than absolute values, and adopt the
// server-confirmed result.
type Adjuster struct {
	mutator Mutator

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewAdjuster creates an adjuster over the given repository.
func NewAdjuster(mutator Mutator) *Adjuster {
	return &Adjuster{
		mutator:  mutator,
		inFlight: make(map[string]bool),
	}
}

// Adjust applies delta to the product's stock. The proposed result is clamped
// at zero before anything is sent, so the effective delta may be smaller than
// requested; a fully clamped-away delta is a local no-op. The returned product
// carries the server-confirmed stock, which callers display instead of their
// optimistic guess.
func (a *Adjuster) Adjust(ctx context.Context, p inventory.Product, delta int) (inventory.Product, error) {
	proposed := p.Stock + delta
	if proposed < 0 {
		proposed = 0
	}
	effective := proposed - p.Stock
	if effective == 0 {
		return p, nil
	}

	if !a.acquire(p.ID) {
		return p, ErrBusy
	}
	defer a.release(p.ID)

	// The delta goes to the server, never the absolute value: concurrent
	// edits from other clients must not be clobbered.
	var updated inventory.Product
	var err error
	if effective > 0 {
		updated, err = a.mutator.IncreaseStock(ctx, p.ID, effective)
	} else {
		updated, err = a.mutator.DecreaseStock(ctx, p.ID, -effective)
	}
	if err != nil {
		logger.Info("Stock adjustment failed",
			logger.F("id", p.ID),
			logger.F("delta", effective),
			logger.F("error", err))
		return p, err
	}

	logger.Debug("Stock adjusted",
		logger.F("id", p.ID),
		logger.F("delta", effective),
		logger.F("stock", updated.Stock))
	return updated, nil
}

// Busy reports whether the product has a mutation in flight.
func (a *Adjuster) Busy(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inFlight[id]
}

func (a *Adjuster) acquire(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.inFlight[id] {
		return false
	}
	a.inFlight[id] = true
	return true
}

func (a *Adjuster) release(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.inFlight, id)
}

// Notice is a transient UI message that dismisses itself after its TTL.
type Notice struct {
	Text    string
	IsError bool
	Expires time.Time
}

// NewNotice creates a notice visible for ttl from now.
func NewNotice(text string, isError bool, ttl time.Duration, now time.Time) Notice {
	return Notice{Text: text, IsError: isError, Expires: now.Add(ttl)}
}

// Active reports whether the notice should still be shown.
func (n Notice) Active(now time.Time) bool {
	return n.Text != "" && now.Before(n.Expires)
}
