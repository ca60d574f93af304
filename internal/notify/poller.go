package notify

import (
	"context"
	"sync"
	"time"

	"github.com/pawhome/pawstock/internal/logger"
)

// Poller refreshes the alert set on a fixed interval and tracks the unread
// count for the notification bell. While the panel is closed the unread count
// follows the latest fetched list size; opening the panel marks everything
// read without clearing the list.
type Poller struct {
	source   Source
	interval time.Duration

	mu        sync.Mutex
	items     []Notification
	unread    int
	panelOpen bool
	onUpdate  func()

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewPoller creates a poller over the given source.
func NewPoller(source Source, interval time.Duration) *Poller {
	return &Poller{
		source:   source,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// SetOnUpdate registers a callback fired after each successful refresh, for
// UI redraws.
func (p *Poller) SetOnUpdate(callback func()) {
	p.mu.Lock()
	p.onUpdate = callback
	p.mu.Unlock()
}

// Start fetches once immediately and then polls in the background.
func (p *Poller) Start() {
	p.Refresh()
	go p.loop()
}

func (p *Poller) loop() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.Refresh()
		case <-p.stopCh:
			return
		}
	}
}

// Refresh fetches the current alert set. A failed fetch keeps the previous
// list; alerts are advisory and the next tick retries anyway.
func (p *Poller) Refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), p.interval)
	defer cancel()

	items, err := p.source(ctx)
	if err != nil {
		logger.Debug("Notification refresh failed", logger.F("error", err))
		return
	}

	select {
	case <-p.stopCh:
		// View torn down while the fetch was in flight; drop the result.
		return
	default:
	}

	p.mu.Lock()
	p.items = items
	if p.panelOpen {
		p.unread = 0
	} else {
		p.unread = len(items)
	}
	callback := p.onUpdate
	p.mu.Unlock()

	if callback != nil {
		callback()
	}
}

// Items returns the current alert list.
func (p *Poller) Items() []Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Notification(nil), p.items...)
}

// Unread returns the current unread count.
func (p *Poller) Unread() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.unread
}

// SetPanelOpen records whether the notification panel is showing. Opening it
// marks everything read; the items themselves stay visible.
func (p *Poller) SetPanelOpen(open bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.panelOpen = open
	if open {
		p.unread = 0
	}
}

// Stop cancels the background polling. Safe to call more than once.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
	})
}
