package ui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Accent  = lipgloss.Color("#E5A00D")
	DimGray = lipgloss.Color("#6B7280")
	Green   = lipgloss.Color("#10B981")
	Red     = lipgloss.Color("#EF4444")
)

// styles are bound to the console's renderer so color detection follows
// the actual output rather than os.Stdout
type styles struct {
	marker  lipgloss.Style
	dim     lipgloss.Style
	success lipgloss.Style
	errText lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		marker:  r.NewStyle().Foreground(Red).Bold(true),
		dim:     r.NewStyle().Foreground(DimGray),
		success: r.NewStyle().Foreground(Green),
		errText: r.NewStyle().Foreground(Red),
	}
}
