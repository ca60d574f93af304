package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pawhome/pawstock/internal/inventory"
	"github.com/pawhome/pawstock/internal/logger"
	"github.com/pawhome/pawstock/internal/session"
	"github.com/pawhome/pawstock/internal/stock"
)

// tickMsg is sent every second for clock updates and notice expiry
type tickMsg time.Time

// guardExpiredMsg is sent when the session guard finds no live session
type guardExpiredMsg struct{}

// alertsUpdatedMsg is sent when the poller has fetched a new alert set
type alertsUpdatedMsg struct{}

// loginResultMsg carries the outcome of an async login attempt
type loginResultMsg struct {
	user session.User
	err  error
}

// productsLoadedMsg carries a fresh product listing
type productsLoadedMsg struct {
	products []inventory.Product
	deleted  []inventory.Product
	err      error
}

// adjustedMsg carries the server-confirmed result of a stock mutation
type adjustedMsg struct {
	previous inventory.Product
	updated  inventory.Product
	err      error
}

// actionDoneMsg carries the outcome of create/delete/restore/threshold calls
type actionDoneMsg struct {
	text string
	err  error
}

// Init starts the clock and the background-channel subscriptions
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(), m.waitForGuard(), m.waitForAlerts()}
	if m.mode == ModeNormal {
		cmds = append(cmds, m.loadProducts())
	} else {
		cmds = append(cmds, textinput.Blink)
	}
	return tea.Batch(cmds...)
}

func tickCmd() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) waitForGuard() tea.Cmd {
	ch := m.guardCh
	return func() tea.Msg {
		<-ch
		return guardExpiredMsg{}
	}
}

func (m Model) waitForAlerts() tea.Cmd {
	ch := m.alertCh
	return func() tea.Msg {
		<-ch
		return alertsUpdatedMsg{}
	}
}

func (m Model) loadProducts() tea.Cmd {
	repo := m.repo
	return func() tea.Msg {
		ctx := context.Background()
		products, err := repo.List(ctx)
		if err != nil {
			return productsLoadedMsg{err: err}
		}
		deleted, err := repo.Deleted(ctx)
		if err != nil {
			return productsLoadedMsg{products: products, err: err}
		}
		return productsLoadedMsg{products: products, deleted: deleted}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		// Redraw so the clock advances and expired notices disappear.
		return m, tickCmd()

	case guardExpiredMsg:
		m.stopBackground()
		m.mode = ModeLogin
		m.loginFocus = 0
		m.username.Focus()
		m.password.Blur()
		m.notice = stock.NewNotice("Session expired, please sign in again", true, m.cfg.MessageTTL(), time.Now())
		return m, tea.Batch(m.waitForGuard(), textinput.Blink)

	case alertsUpdatedMsg:
		m.syncAlerts()
		return m, m.waitForAlerts()

	case loginResultMsg:
		m.loggingIn = false
		if msg.err != nil {
			m.notice = stock.NewNotice(msg.err.Error(), true, m.cfg.MessageTTL(), time.Now())
			return m, nil
		}
		m.user = msg.user
		m.mode = ModeNormal
		m.password.SetValue("")
		m.startBackground()
		return m, tea.Batch(m.loadProducts(), m.waitForGuard(), m.waitForAlerts())

	case productsLoadedMsg:
		if msg.err != nil {
			m.notice = stock.NewNotice(msg.err.Error(), true, m.cfg.MessageTTL(), time.Now())
		}
		if msg.products != nil {
			m.products = msg.products
		}
		if msg.deleted != nil {
			m.deleted = msg.deleted
		}
		m.stats = inventory.ComputeStats(append(append([]inventory.Product{}, m.products...), m.deleted...))
		m.clampCursor()
		return m, nil

	case adjustedMsg:
		if msg.err != nil {
			// Roll the optimistic display back to the pre-click count.
			m.replaceProduct(msg.previous)
			if !errors.Is(msg.err, stock.ErrBusy) {
				m.notice = stock.NewNotice(msg.err.Error(), true, m.cfg.MessageTTL(), time.Now())
			}
			return m, nil
		}
		m.replaceProduct(msg.updated)
		if msg.updated.LowStock && msg.updated.Stock > 0 {
			m.notice = stock.NewNotice(
				fmt.Sprintf("%s is low on stock (%d units)", msg.updated.Name, msg.updated.Stock),
				false, m.cfg.MessageTTL(), time.Now())
		}
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.notice = stock.NewNotice(msg.err.Error(), true, m.cfg.MessageTTL(), time.Now())
			return m, nil
		}
		m.notice = stock.NewNotice(msg.text, false, m.cfg.MessageTTL(), time.Now())
		return m, m.loadProducts()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeLogin:
			return m.updateLogin(msg)
		case ModeAddProduct:
			return m.updateAddProduct(msg)
		case ModeThreshold:
			return m.updateThreshold(msg)
		case ModeConfirmDelete:
			return m.updateConfirmDelete(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		}
		return m.handleNormalKeys(msg)
	}

	return m, nil
}

// updateLogin drives the two-field login form
func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit) && msg.String() == "ctrl+c":
		m.stopBackground()
		return m, tea.Quit

	case key.Matches(msg, keys.Tab), msg.String() == "down", msg.String() == "up":
		if m.loginFocus == 0 {
			m.loginFocus = 1
			m.username.Blur()
			m.password.Focus()
		} else {
			m.loginFocus = 0
			m.password.Blur()
			m.username.Focus()
		}
		return m, textinput.Blink

	case key.Matches(msg, keys.Enter):
		if m.loginFocus == 0 {
			m.loginFocus = 1
			m.username.Blur()
			m.password.Focus()
			return m, textinput.Blink
		}
		if m.loggingIn {
			return m, nil
		}
		username := m.username.Value()
		password := m.password.Value()
		if username == "" || password == "" {
			m.notice = stock.NewNotice("Username and password are required", true, m.cfg.MessageTTL(), time.Now())
			return m, nil
		}
		m.loggingIn = true
		store := m.store
		return m, func() tea.Msg {
			sess, err := store.Authenticate(username, password)
			if err != nil {
				return loginResultMsg{err: err}
			}
			return loginResultMsg{user: sess.User}
		}
	}

	var cmd tea.Cmd
	if m.loginFocus == 0 {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

// handleNormalKeys handles key presses on the dashboard
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.stopBackground()
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.visibleProducts())-1 {
			m.cursor++
		}

	case msg.String() == "G":
		m.cursor = len(m.visibleProducts()) - 1
		m.clampCursor()

	case key.Matches(msg, keys.IncOne):
		return m.adjust(1)
	case key.Matches(msg, keys.DecOne):
		return m.adjust(-1)
	case key.Matches(msg, keys.IncFive):
		return m.adjust(5)
	case key.Matches(msg, keys.DecFive):
		return m.adjust(-5)
	case key.Matches(msg, keys.IncTen):
		return m.adjust(10)

	case key.Matches(msg, keys.Threshold):
		return m.startThreshold()

	case key.Matches(msg, keys.Add):
		if !m.showDeleted {
			return m.startAddProduct()
		}

	case key.Matches(msg, keys.Delete):
		if m.showDeleted {
			break
		}
		p := m.currentProduct()
		if p == nil {
			break
		}
		if m.cfg.ConfirmDelete {
			m.mode = ModeConfirmDelete
			return m, nil
		}
		return m, m.deleteCmd(p.ID)

	case key.Matches(msg, keys.Restore):
		if !m.showDeleted {
			break
		}
		p := m.currentProduct()
		if p == nil {
			break
		}
		return m, m.restoreCmd(p.ID)

	case key.Matches(msg, keys.Deleted):
		m.showDeleted = !m.showDeleted
		m.cursor = 0

	case key.Matches(msg, keys.Alerts):
		m.showAlerts = !m.showAlerts
		if m.poller != nil {
			m.poller.SetPanelOpen(m.showAlerts)
		}
		m.syncAlerts()

	case key.Matches(msg, keys.Refresh):
		m.notice = stock.NewNotice("Refreshing...", false, m.cfg.MessageTTL(), time.Now())
		if m.poller != nil {
			go m.poller.Refresh()
		}
		return m, m.loadProducts()

	case key.Matches(msg, keys.Logout):
		logger.Info("User logged out from dashboard", logger.F("user", m.user.Username))
		m.stopBackground()
		m.store.Terminate()
		m.mode = ModeLogin
		m.loginFocus = 0
		m.username.SetValue("")
		m.password.SetValue("")
		m.username.Focus()
		return m, textinput.Blink

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp

	case key.Matches(msg, keys.Escape):
		if m.showAlerts {
			m.showAlerts = false
			if m.poller != nil {
				m.poller.SetPanelOpen(false)
			}
		}
	}

	return m, nil
}

// adjust applies a quick stock delta to the selected product. The display
// updates optimistically; the adjustedMsg later reconciles against the
// server-confirmed count or rolls back.
func (m Model) adjust(delta int) (tea.Model, tea.Cmd) {
	if m.showDeleted {
		return m, nil
	}
	p := m.currentProduct()
	if p == nil {
		return m, nil
	}
	if m.adjuster.Busy(p.ID) {
		m.notice = stock.NewNotice("Hold on, previous update still in flight", true, m.cfg.MessageTTL(), time.Now())
		return m, nil
	}

	previous := *p
	optimistic := *p
	optimistic.Stock += delta
	if optimistic.Stock < 0 {
		optimistic.Stock = 0
	}
	if optimistic.Stock == previous.Stock {
		return m, nil
	}
	m.replaceProduct(optimistic)

	adjuster := m.adjuster
	return m, func() tea.Msg {
		updated, err := adjuster.Adjust(context.Background(), previous, delta)
		return adjustedMsg{previous: previous, updated: updated, err: err}
	}
}

func (m Model) startThreshold() (tea.Model, tea.Cmd) {
	if m.showDeleted {
		return m, nil
	}
	p := m.currentProduct()
	if p == nil {
		return m, nil
	}
	m.mode = ModeThreshold
	m.input.SetValue(strconv.Itoa(p.MinStock))
	m.input.Placeholder = "minimum stock"
	m.input.Focus()
	m.input.CursorEnd()
	return m, textinput.Blink
}

func (m Model) updateThreshold(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		return m, nil

	case key.Matches(msg, keys.Enter):
		p := m.currentProduct()
		value, err := strconv.Atoi(m.input.Value())
		if p == nil || err != nil || value < 0 {
			m.notice = stock.NewNotice("Threshold must be a non-negative number", true, m.cfg.MessageTTL(), time.Now())
			m.mode = ModeNormal
			return m, nil
		}
		m.mode = ModeNormal
		repo := m.repo
		id := p.ID
		return m, func() tea.Msg {
			updated, err := repo.UpdateMinThreshold(context.Background(), id, value)
			if err != nil {
				return actionDoneMsg{err: err}
			}
			return actionDoneMsg{text: fmt.Sprintf("%s: threshold set to %d", updated.Name, updated.MinStock)}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) startAddProduct() (tea.Model, tea.Cmd) {
	m.mode = ModeAddProduct
	m.addStep = addStepName
	m.addDraft = inventory.Draft{}
	m.input.SetValue("")
	m.input.Placeholder = "product name"
	m.input.Focus()
	return m, textinput.Blink
}

// updateAddProduct walks the shared input through the draft fields one at a
// time, validating as it goes.
func (m Model) updateAddProduct(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		return m, nil

	case key.Matches(msg, keys.Enter):
		value := m.input.Value()
		switch m.addStep {
		case addStepName:
			if value == "" {
				return m, nil
			}
			m.addDraft.Name = value
			m.input.Placeholder = "supplier id"
		case addStepSupplier:
			id, err := strconv.ParseInt(value, 10, 64)
			if err != nil || id <= 0 {
				m.notice = stock.NewNotice("Supplier id must be a positive number", true, m.cfg.MessageTTL(), time.Now())
				return m, nil
			}
			m.addDraft.SupplierID = id
			m.input.Placeholder = "price"
		case addStepPrice:
			price, err := strconv.ParseFloat(value, 64)
			if err != nil || price <= 0 {
				m.notice = stock.NewNotice("Price must be a positive number", true, m.cfg.MessageTTL(), time.Now())
				return m, nil
			}
			m.addDraft.Price = price
			m.input.Placeholder = "initial stock"
		case addStepStock:
			count, err := strconv.Atoi(value)
			if err != nil || count < 0 {
				m.notice = stock.NewNotice("Stock must be zero or more", true, m.cfg.MessageTTL(), time.Now())
				return m, nil
			}
			m.addDraft.Stock = count
			m.input.Placeholder = "low-stock threshold (blank for 0)"
		case addStepThreshold:
			if value != "" {
				threshold, err := strconv.Atoi(value)
				if err != nil || threshold < 0 {
					m.notice = stock.NewNotice("Threshold must be zero or more", true, m.cfg.MessageTTL(), time.Now())
					return m, nil
				}
				m.addDraft.MinStock = threshold
			}
			m.mode = ModeNormal
			draft := m.addDraft
			repo := m.repo
			return m, func() tea.Msg {
				p, err := repo.Create(context.Background(), draft)
				if err != nil {
					return actionDoneMsg{err: err}
				}
				return actionDoneMsg{text: fmt.Sprintf("Added %q (%d units)", p.Name, p.Stock)}
			}
		}
		m.addStep++
		m.input.SetValue("")
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.mode = ModeNormal
		if p := m.currentProduct(); p != nil {
			return m, m.deleteCmd(p.ID)
		}
	case "n", "N", "esc", "q":
		m.mode = ModeNormal
	}
	return m, nil
}

func (m Model) deleteCmd(id string) tea.Cmd {
	repo := m.repo
	return func() tea.Msg {
		if err := repo.SoftDelete(context.Background(), id); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{text: "Product deleted (press D to see deleted products)"}
	}
}

func (m Model) restoreCmd(id string) tea.Cmd {
	repo := m.repo
	return func() tea.Msg {
		p, err := repo.Restore(context.Background(), id)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{text: fmt.Sprintf("Restored %q", p.Name)}
	}
}
