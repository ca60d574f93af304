package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/pawhome/pawstock/internal/notify"
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	if m.mode == ModeLogin {
		return m.renderLogin()
	}

	header := m.renderHeader()
	table := m.renderTable()
	statusBar := m.renderStatusBar()

	content := lipgloss.JoinVertical(lipgloss.Left, header, table)

	if m.showAlerts {
		panel := m.renderAlerts()
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.mode == ModeAddProduct || m.mode == ModeThreshold {
		content = lipgloss.Place(
			m.width, m.height-2,
			lipgloss.Center, lipgloss.Center,
			m.renderInputModal(),
			lipgloss.WithWhitespaceChars(" "),
		)
	}

	if m.mode == ModeConfirmDelete {
		content = lipgloss.Place(
			m.width, m.height-2,
			lipgloss.Center, lipgloss.Center,
			m.renderConfirmModal(),
			lipgloss.WithWhitespaceChars(" "),
		)
	}

	if m.mode == ModeHelp {
		content = m.renderHelp()
	}

	return lipgloss.JoinVertical(lipgloss.Left, content, statusBar)
}

func (m Model) renderLogin() string {
	var s strings.Builder
	s.WriteString(lipgloss.NewStyle().Bold(true).Foreground(Primary).Render("🐾 PawStock") + "\n")
	s.WriteString(HelpStyle.Render("Paw & Home inventory dashboard") + "\n\n")

	s.WriteString("Username\n")
	s.WriteString(m.username.View() + "\n\n")
	s.WriteString("Password\n")
	s.WriteString(m.password.View() + "\n\n")

	if m.loggingIn {
		s.WriteString(HelpStyle.Render("Signing in...") + "\n")
	} else {
		s.WriteString(HelpStyle.Render("enter sign in • tab switch field • ctrl+c quit") + "\n")
	}

	if m.notice.Active(time.Now()) {
		s.WriteString("\n" + m.renderNotice())
	}

	form := PanelStyle.Render(s.String())
	return lipgloss.Place(
		m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		form,
		lipgloss.WithWhitespaceChars(" "),
	)
}

func (m Model) renderHeader() string {
	title := "🐾 PawStock"
	if m.showDeleted {
		title += ": deleted products"
	}
	left := HeaderStyle.Render(title)

	bell := "🔔"
	if m.unread > 0 {
		bell = fmt.Sprintf("🔔 %d", m.unread)
	}
	right := StatsStyle.Render(fmt.Sprintf(
		"%s  %s  %s",
		m.user.Username,
		bell,
		time.Now().Format("15:04:05"),
	))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	stats := StatsStyle.Render(fmt.Sprintf(
		"%d products • $%.2f total • %d available • %d low • %d out • %d deleted",
		m.stats.TotalProducts, m.stats.TotalValue,
		m.stats.Available, m.stats.LowStockCount, m.stats.OutOfStock, m.stats.DeletedCount,
	))

	topLine := left + strings.Repeat(" ", gap) + right
	return lipgloss.JoinVertical(lipgloss.Left, topLine, stats)
}

func (m Model) renderTable() string {
	width := m.width
	if m.showAlerts {
		width -= 44
	}
	if width < 40 {
		width = 40
	}

	var s strings.Builder
	header := fmt.Sprintf("   %-26s %-16s %8s %7s %6s  %s", "Product", "Supplier", "Price", "Stock", "Min", "Status")
	s.WriteString(HelpStyle.Render(header) + "\n")

	list := m.visibleProducts()
	if len(list) == 0 {
		if m.showDeleted {
			s.WriteString(HelpStyle.Render("\n  No deleted products. Press D to go back.") + "\n")
		} else {
			s.WriteString(HelpStyle.Render("\n  No products yet. Press a to add one.") + "\n")
		}
		return TableStyle.Width(width).Render(s.String())
	}

	for i, p := range list {
		cursor := "  "
		rowStyle := RowStyle
		if i == m.cursor {
			cursor = "❯ "
			rowStyle = RowSelectedStyle
		}
		if m.showDeleted {
			rowStyle = RowDeletedStyle
		}

		status := statusLabel(p.Stock, p.LowStock)
		stockCell := StockStyle(p.Stock, p.LowStock).Render(fmt.Sprintf("%7d", p.Stock))

		line := fmt.Sprintf("%s%-26s %-16s %8.2f %s %6d  %s",
			cursor,
			truncate(p.Name, 26),
			truncate(p.Supplier, 16),
			p.Price,
			stockCell,
			p.MinStock,
			status,
		)
		s.WriteString(rowStyle.Render(line) + "\n")
	}

	return TableStyle.Width(width).Render(s.String())
}

func (m Model) renderAlerts() string {
	var s strings.Builder
	s.WriteString(lipgloss.NewStyle().Bold(true).Foreground(Coral).Render("🔔 Alerts") + "\n\n")

	if len(m.alerts) == 0 {
		s.WriteString(HelpStyle.Render("All products have sufficient stock."))
	}
	for _, a := range m.alerts {
		icon := "⚠️ "
		style := LowStockStyle
		if a.Severity == notify.SeverityOutOfStock {
			icon = "⛔ "
			style = OutOfStockStyle
		}
		s.WriteString(style.Render(icon+truncate(a.Message, 34)) + "\n")
	}

	s.WriteString("\n" + HelpStyle.Render("n close"))
	return PanelStyle.Width(40).Render(s.String())
}

func (m Model) renderInputModal() string {
	var s strings.Builder
	switch m.mode {
	case ModeThreshold:
		p := m.currentProduct()
		name := ""
		if p != nil {
			name = p.Name
		}
		s.WriteString(fmt.Sprintf("Low-stock threshold for %q\n\n", name))
	case ModeAddProduct:
		s.WriteString(fmt.Sprintf("New product (step %d of %d)\n\n", m.addStep+1, addStepCount))
	}
	s.WriteString(m.input.View() + "\n\n")
	s.WriteString(HelpStyle.Render("enter confirm • esc cancel"))
	return ModalStyle.Render(s.String())
}

func (m Model) renderConfirmModal() string {
	name := ""
	if p := m.currentProduct(); p != nil {
		name = p.Name
	}
	body := fmt.Sprintf("Delete %q?\n\nThe product moves to the deleted list\nand can be restored later.\n\n", name)
	body += HelpStyle.Render("y delete • n cancel")
	return ModalStyle.Render(body)
}

func (m Model) renderHelp() string {
	help := `
  PawStock keys

  ↑/k ↓/j    move
  +/-        stock ±1
  ]/[        stock ±5
  }          stock +10
  t          set low-stock threshold
  a          add product
  d          soft-delete product
  D          toggle deleted view
  r          restore (in deleted view)
  n          toggle alerts panel
  R          refresh from server
  L          logout
  q          quit

  press any key to close
`
	return PanelStyle.Render(help)
}

func (m Model) renderStatusBar() string {
	if m.notice.Active(time.Now()) {
		return StatusBarStyle.Width(m.width).Render(m.renderNotice())
	}

	hints := "+/- stock • t threshold • a add • d delete • n alerts • D deleted • ? help • q quit"
	if m.showDeleted {
		hints = "r restore • D back • q quit"
	}
	return StatusBarStyle.Width(m.width).Render(HelpStyle.Render(hints))
}

func (m Model) renderNotice() string {
	if m.notice.IsError {
		return NoticeErrorStyle.Render("✗ " + m.notice.Text)
	}
	return NoticeStyle.Render("✓ " + m.notice.Text)
}

func statusLabel(stock int, lowStock bool) string {
	switch {
	case stock == 0:
		return OutOfStockStyle.Render("out of stock")
	case lowStock:
		return LowStockStyle.Render("low stock")
	default:
		return AvailableStyle.Render("available")
	}
}
