package tui

import "github.com/charmbracelet/lipgloss"

// Color palette based on the Paw & Home dashboard
var (
	// Stock status colors
	StatusOut       = lipgloss.Color("#FF6B6B") // Out of stock - red
	StatusLow       = lipgloss.Color("#FFE66D") // Low stock - yellow
	StatusAvailable = lipgloss.Color("#95E1A3") // Available - green

	// UI colors
	Primary   = lipgloss.Color("#4ECDC4")
	Coral     = lipgloss.Color("#FF8C69")
	Surface   = lipgloss.Color("#16213e")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
)

// Styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	StatsStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1)

	TableStyle = lipgloss.NewStyle().
			Padding(1, 2)

	RowStyle = lipgloss.NewStyle().
			Padding(0, 1)

	RowSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(Surface).
				Bold(true)

	RowDeletedStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Strikethrough(true).
			Padding(0, 1)

	OutOfStockStyle = lipgloss.NewStyle().Foreground(StatusOut).Bold(true)
	LowStockStyle   = lipgloss.NewStyle().Foreground(StatusLow)
	AvailableStyle  = lipgloss.NewStyle().Foreground(StatusAvailable)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(StatusAvailable).
			Padding(0, 1)

	NoticeErrorStyle = lipgloss.NewStyle().
				Foreground(StatusOut).
				Bold(true).
				Padding(0, 1)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Coral).
			Padding(1, 2)

	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)
)

// StockStyle returns the style for a product's stock figure.
func StockStyle(stock int, lowStock bool) lipgloss.Style {
	switch {
	case stock == 0:
		return OutOfStockStyle
	case lowStock:
		return LowStockStyle
	default:
		return AvailableStyle
	}
}
