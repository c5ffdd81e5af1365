package chat

import "github.com/charmbracelet/lipgloss"

// theme groups reusable styles for the inbox and conversation screens.
type theme struct {
	header       lipgloss.Style
	headerName   lipgloss.Style
	divider      lipgloss.Style
	inboxRow     lipgloss.Style
	inboxActive  lipgloss.Style
	inboxName    lipgloss.Style
	inboxPreview lipgloss.Style
	inboxStamp   lipgloss.Style
	timestamp    lipgloss.Style
	delivered    lipgloss.Style
	deliveredDim lipgloss.Style
	typingBubble lipgloss.Style
	typingDotHi  lipgloss.Style
	typingDotLo  lipgloss.Style
	status       lipgloss.Style
	statusBusy   lipgloss.Style
	hint         lipgloss.Style
	input        lipgloss.Style
	viewport     lipgloss.Style
}

// defaultTheme is the messaging palette: blue sender bubbles live in the
// bubble package; everything chrome-level sits here.
func defaultTheme() theme {
	return theme{
		header: lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("25")),
		headerName: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("231")),
		divider: lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")),
		inboxRow: lipgloss.NewStyle().
			Padding(0, 1),
		inboxActive: lipgloss.NewStyle().
			Padding(0, 1).
			Background(lipgloss.Color("24")),
		inboxName: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("231")),
		inboxPreview: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),
		inboxStamp: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
		timestamp: lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Align(lipgloss.Center),
		delivered: lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Align(lipgloss.Right),
		deliveredDim: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Align(lipgloss.Right),
		typingBubble: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Background(lipgloss.Color("236")).
			Padding(0, 1),
		typingDotHi: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		typingDotLo: lipgloss.NewStyle().
			Foreground(lipgloss.Color("242")),
		status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),
		statusBusy: lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")),
		hint: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
		input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		viewport: lipgloss.NewStyle().
			Padding(0, 1),
	}
}
