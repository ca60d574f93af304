package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/pawhome/pawstock/internal/config"
	"github.com/pawhome/pawstock/internal/inventory"
	"github.com/pawhome/pawstock/internal/logger"
	"github.com/pawhome/pawstock/internal/notify"
	"github.com/pawhome/pawstock/internal/session"
	"github.com/pawhome/pawstock/internal/stock"
)

// Mode represents the current UI mode
type Mode int

const (
	ModeLogin Mode = iota
	ModeNormal
	ModeAddProduct
	ModeThreshold
	ModeConfirmDelete
	ModeHelp
)

// Fields of the add-product form, filled one at a time with the shared input.
const (
	addStepName = iota
	addStepSupplier
	addStepPrice
	addStepStock
	addStepThreshold
	addStepCount
)

// Model is the main TUI model
type Model struct {
	cfg      *config.Config
	store    *session.Store
	repo     *inventory.Repository
	adjuster *stock.Adjuster

	// Background workers, running only while the dashboard is showing
	guard  *session.Guard
	poller *notify.Poller

	// Buffered so background callbacks never block on a busy UI loop
	guardCh chan struct{}
	alertCh chan struct{}

	// UI state
	width  int
	height int
	mode   Mode
	cursor int

	user     session.User
	products []inventory.Product
	deleted  []inventory.Product
	stats    inventory.Stats

	showDeleted bool
	showAlerts  bool
	alerts      []notify.Notification
	unread      int

	// Login form
	username   textinput.Model
	password   textinput.Model
	loginFocus int
	loggingIn  bool

	// Shared input for add/threshold forms
	input    textinput.Model
	addStep  int
	addDraft inventory.Draft

	notice stock.Notice
}

// NewModel creates the dashboard model. When a live session already exists the
// model opens straight into the product list; otherwise it starts at login.
func NewModel(cfg *config.Config, store *session.Store, repo *inventory.Repository) Model {
	logger.Info("Initializing dashboard model")

	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	username.Width = 30
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 64
	password.Width = 30
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	input := textinput.New()
	input.CharLimit = 128
	input.Width = 40

	m := Model{
		cfg:      cfg,
		store:    store,
		repo:     repo,
		adjuster: stock.NewAdjuster(repo),
		guardCh:  make(chan struct{}, 1),
		alertCh:  make(chan struct{}, 1),
		mode:     ModeLogin,
		username: username,
		password: password,
		input:    input,
	}

	if user, ok := store.CurrentUser(); ok {
		m.user = user
		m.mode = ModeNormal
		m.startBackground()
	}

	return m
}

// startBackground launches the session guard and the alert poller. Both signal
// the UI through buffered channels; the Update loop re-subscribes after every
// receive.
func (m *Model) startBackground() {
	guardCh := m.guardCh
	m.guard = session.NewGuard(m.store, m.cfg.GuardInterval(), func() {
		select {
		case guardCh <- struct{}{}:
		default:
		}
	})
	m.guard.Start()

	alertCh := m.alertCh
	m.poller = notify.NewPoller(notify.RemoteSource(m.cfg.APIURL, m.store), m.cfg.NotifyInterval())
	m.poller.SetOnUpdate(func() {
		select {
		case alertCh <- struct{}{}:
		default:
		}
	})
	m.poller.Start()
}

// stopBackground tears down the guard and poller on logout or forced
// re-authentication.
func (m *Model) stopBackground() {
	if m.guard != nil {
		m.guard.Stop()
		m.guard = nil
	}
	if m.poller != nil {
		m.poller.Stop()
		m.poller = nil
	}
}

func (m *Model) currentProduct() *inventory.Product {
	list := m.visibleProducts()
	if m.cursor < len(list) {
		return &list[m.cursor]
	}
	return nil
}

func (m *Model) visibleProducts() []inventory.Product {
	if m.showDeleted {
		return m.deleted
	}
	return m.products
}

func (m *Model) clampCursor() {
	if n := len(m.visibleProducts()); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// replaceProduct swaps in the server-confirmed copy of a product.
func (m *Model) replaceProduct(p inventory.Product) {
	for i := range m.products {
		if m.products[i].ID == p.ID {
			m.products[i] = p
			break
		}
	}
	m.stats = inventory.ComputeStats(append(append([]inventory.Product{}, m.products...), m.deleted...))
}

// syncAlerts copies the poller state into the model for rendering.
func (m *Model) syncAlerts() {
	if m.poller == nil {
		return
	}
	m.alerts = m.poller.Items()
	m.unread = m.poller.Unread()
}
