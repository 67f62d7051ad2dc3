// Package tui is the interactive dashboard: the state store, its reducer and
// the renderer.
package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette is one colour theme.
type Palette struct {
	Name string

	Accent    lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Muted     lipgloss.Color
	Text      lipgloss.Color
	Bg        lipgloss.Color
	BgAlt     lipgloss.Color
	Selection lipgloss.Color
	Border    lipgloss.Color
	OnAccent  lipgloss.Color
}

// DarkPalette is the warm dark theme.
var DarkPalette = Palette{
	Name:      "dark",
	Accent:    lipgloss.Color("#C89B50"),
	Secondary: lipgloss.Color("#AF784B"),
	Success:   lipgloss.Color("#82A55F"),
	Warning:   lipgloss.Color("#C3A569"),
	Error:     lipgloss.Color("#B96E64"),
	Muted:     lipgloss.Color("#695F55"),
	Text:      lipgloss.Color("#D2C8B9"),
	Bg:        lipgloss.Color("#1E1A16"),
	BgAlt:     lipgloss.Color("#26211C"),
	Selection: lipgloss.Color("#3C342D"),
	Border:    lipgloss.Color("#413A32"),
	OnAccent:  lipgloss.Color("#1E1A16"),
}

// LightPalette is the warm light theme.
var LightPalette = Palette{
	Name:      "light",
	Accent:    lipgloss.Color("#B4823C"),
	Secondary: lipgloss.Color("#966441"),
	Success:   lipgloss.Color("#648C50"),
	Warning:   lipgloss.Color("#BEA064"),
	Error:     lipgloss.Color("#B4645A"),
	Muted:     lipgloss.Color("#968778"),
	Text:      lipgloss.Color("#3C3228"),
	Bg:        lipgloss.Color("#FCF9F2"),
	BgAlt:     lipgloss.Color("#F8F4EB"),
	Selection: lipgloss.Color("#E6DCC8"),
	Border:    lipgloss.Color("#C8B9A5"),
	OnAccent:  lipgloss.Color("#FFFCF5"),
}

// DetectPalette picks the theme matching the terminal background.
func DetectPalette() Palette {
	if lipgloss.HasDarkBackground() {
		return DarkPalette
	}
	return LightPalette
}

// Styles contains all the lipgloss styles used in the TUI
type Styles struct {
	Palette Palette

	// App frame
	Header    lipgloss.Style
	Footer    lipgloss.Style
	StatusBar lipgloss.Style

	// Panels
	Panel       lipgloss.Style
	PanelActive lipgloss.Style
	PanelTitle  lipgloss.Style

	// Tabs
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style

	// Content
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Description lipgloss.Style
	Label       lipgloss.Style

	// List items
	ListItem         lipgloss.Style
	ListItemSelected lipgloss.Style

	// Package display
	PackageName    lipgloss.Style
	PackageVersion lipgloss.Style
	Outdated       lipgloss.Style

	// Status indicators
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	// Input
	InputPrompt lipgloss.Style

	// Spinner
	Spinner lipgloss.Style

	// Confirmation prompt
	Prompt lipgloss.Style

	// Help overlay
	Dialog lipgloss.Style
}

// NewStyles builds the style set for a palette.
func NewStyles(p Palette) *Styles {
	s := &Styles{Palette: p}

	s.Header = lipgloss.NewStyle().
		Foreground(p.OnAccent).
		Background(p.Accent).
		Padding(0, 1).
		Bold(true)

	s.Footer = lipgloss.NewStyle().
		Foreground(p.Muted).
		Padding(0, 1)

	s.StatusBar = lipgloss.NewStyle().
		Foreground(p.Text).
		Background(p.BgAlt).
		Padding(0, 1)

	s.Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Border).
		Padding(0, 1)

	s.PanelActive = s.Panel.
		BorderForeground(p.Accent)

	s.PanelTitle = lipgloss.NewStyle().
		Foreground(p.Accent).
		Bold(true)

	s.TabActive = lipgloss.NewStyle().
		Foreground(p.Accent).
		Bold(true).
		Underline(true)

	s.TabInactive = lipgloss.NewStyle().
		Foreground(p.Muted)

	s.Title = lipgloss.NewStyle().
		Foreground(p.Text).
		Bold(true)

	s.Subtitle = lipgloss.NewStyle().
		Foreground(p.Secondary).
		Bold(true)

	s.Description = lipgloss.NewStyle().
		Foreground(p.Muted)

	s.Label = lipgloss.NewStyle().
		Foreground(p.Secondary)

	s.ListItem = lipgloss.NewStyle().
		Foreground(p.Text)

	s.ListItemSelected = lipgloss.NewStyle().
		Foreground(p.Accent).
		Background(p.Selection).
		Bold(true)

	s.PackageName = lipgloss.NewStyle().
		Foreground(p.Text).
		Bold(true)

	s.PackageVersion = lipgloss.NewStyle().
		Foreground(p.Success)

	s.Outdated = lipgloss.NewStyle().
		Foreground(p.Warning)

	s.Success = lipgloss.NewStyle().
		Foreground(p.Success).
		Bold(true)

	s.Warning = lipgloss.NewStyle().
		Foreground(p.Warning).
		Bold(true)

	s.Error = lipgloss.NewStyle().
		Foreground(p.Error).
		Bold(true)

	s.Info = lipgloss.NewStyle().
		Foreground(p.Secondary)

	s.InputPrompt = lipgloss.NewStyle().
		Foreground(p.Accent).
		Bold(true)

	s.Spinner = lipgloss.NewStyle().
		Foreground(p.Accent)

	s.Prompt = lipgloss.NewStyle().
		Foreground(p.OnAccent).
		Background(p.Warning).
		Bold(true).
		Padding(0, 1)

	s.Dialog = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Accent).
		Padding(1, 2)

	return s
}

// Icons is the glyph set used by the renderer.
type Icons struct {
	Formula  string
	Cask     string
	Outdated string
	OK       string
	Fail     string
	Info     string
	Cursor   string
	Clock    string
}

// NerdIcons requires a Nerd Font.
var NerdIcons = Icons{
	Formula:  "\uf0fc",
	Cask:     "\uf1b2",
	Outdated: "\uf062",
	OK:       "\uf00c",
	Fail:     "\uf00d",
	Info:     "\uf05a",
	Cursor:   "\u25b6",
	Clock:    "\uf017",
}

// ASCIIIcons render on any terminal.
var ASCIIIcons = Icons{
	Formula:  "f",
	Cask:     "c",
	Outdated: "^",
	OK:       "+",
	Fail:     "x",
	Info:     "i",
	Cursor:   ">",
	Clock:    "@",
}
