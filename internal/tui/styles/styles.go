package styles

import "github.com/charmbracelet/lipgloss"

// Global styles. They start from DefaultPalette and are rebuilt by Apply.
var (
	PrimaryColor   lipgloss.Color
	SecondaryColor lipgloss.Color
	WarningColor   lipgloss.Color
	ErrorColor     lipgloss.Color
	MutedColor     lipgloss.Color
	SurfaceColor   lipgloss.Color
	TextColor      lipgloss.Color
	BorderColor    lipgloss.Color

	StatusPaid    lipgloss.Color
	StatusPending lipgloss.Color

	Primary   lipgloss.Style
	Secondary lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Muted     lipgloss.Style
	Text      lipgloss.Style

	Title    lipgloss.Style
	Subtitle lipgloss.Style

	TabActive   lipgloss.Style
	TabInactive lipgloss.Style

	// Notice banner on the shop screen
	Banner lipgloss.Style

	ContentBox lipgloss.Style
	Dialog     lipgloss.Style

	ListItem         lipgloss.Style
	ListItemSelected lipgloss.Style
	ListItemDisabled lipgloss.Style

	Label      lipgloss.Style
	FieldFocus lipgloss.Style
	Price      lipgloss.Style
	Code       lipgloss.Style

	HelpBar lipgloss.Style
	HelpKey lipgloss.Style

	StatusBar lipgloss.Style

	ErrorMsg   lipgloss.Style
	SuccessMsg lipgloss.Style
	WarningMsg lipgloss.Style
)

func init() {
	Apply(DefaultPalette())
}

// Apply rebuilds every global style from p. It is not safe to call while a
// program is rendering.
func Apply(p *ColorPalette) {
	PrimaryColor = p.Primary
	SecondaryColor = p.Secondary
	WarningColor = p.Warning
	ErrorColor = p.Error
	MutedColor = p.Muted
	SurfaceColor = p.Surface
	TextColor = p.Text
	BorderColor = p.Border
	StatusPaid = colorOr(p.StatusPaid, p.Secondary)
	StatusPending = colorOr(p.StatusPending, p.Warning)

	Primary = lipgloss.NewStyle().Foreground(PrimaryColor)
	Secondary = lipgloss.NewStyle().Foreground(SecondaryColor)
	Warning = lipgloss.NewStyle().Foreground(WarningColor)
	Error = lipgloss.NewStyle().Foreground(ErrorColor)
	Muted = lipgloss.NewStyle().Foreground(MutedColor)
	Text = lipgloss.NewStyle().Foreground(TextColor)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true)

	TabActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextColor).
		Background(PrimaryColor).
		Padding(0, 2)

	TabInactive = lipgloss.NewStyle().
		Foreground(MutedColor).
		Padding(0, 2)

	Banner = lipgloss.NewStyle().
		Foreground(TextColor).
		Background(SurfaceColor).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(WarningColor).
		Padding(0, 1).
		MarginBottom(1)

	ContentBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(1, 2)

	Dialog = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Padding(1, 2)

	ListItem = lipgloss.NewStyle().
		Foreground(TextColor).
		Padding(0, 1)

	ListItemSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextColor).
		Background(PrimaryColor).
		Padding(0, 1)

	ListItemDisabled = lipgloss.NewStyle().
		Foreground(MutedColor).
		Padding(0, 1)

	Label = lipgloss.NewStyle().
		Foreground(MutedColor).
		Width(16)

	FieldFocus = lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Bold(true).
		Width(16)

	Price = lipgloss.NewStyle().
		Foreground(SecondaryColor).
		Bold(true)

	Code = lipgloss.NewStyle().
		Foreground(TextColor).
		Background(SurfaceColor).
		Padding(0, 1)

	HelpBar = lipgloss.NewStyle().
		Foreground(MutedColor).
		MarginTop(1)

	HelpKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(SecondaryColor)

	StatusBar = lipgloss.NewStyle().
		Foreground(TextColor).
		Background(SurfaceColor).
		Padding(0, 1)

	ErrorMsg = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)

	SuccessMsg = lipgloss.NewStyle().
		Foreground(SecondaryColor).
		Bold(true)

	WarningMsg = lipgloss.NewStyle().
		Foreground(WarningColor).
		Bold(true)
}

func colorOr(c, fallback lipgloss.Color) lipgloss.Color {
	if c == "" {
		return fallback
	}
	return c
}

// StatusColor returns the color for an order status ("paid" or "pending").
func StatusColor(status string) lipgloss.Color {
	switch status {
	case "paid":
		return StatusPaid
	case "pending":
		return StatusPending
	default:
		return MutedColor
	}
}
