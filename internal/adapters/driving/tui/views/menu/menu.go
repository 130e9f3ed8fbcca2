// Package menu provides the main navigation menu view for the TUI.
package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/tui/styles"
)

// Item is one menu entry. Selecting it switches to View, or quits when Quit is set.
type Item struct {
	Label       string
	Description string
	// Shortcut selects the item from anywhere in the menu.
	Shortcut string
	View     messages.ViewType
	Quit     bool
}

func (i Item) activate() tea.Cmd {
	if i.Quit {
		return tea.Quit
	}
	view := i.View
	return func() tea.Msg {
		return messages.ViewChanged{View: view}
	}
}

// DefaultItems returns the entries of the main menu.
func DefaultItems() []Item {
	return []Item{
		{Label: "New search", Description: "search a site, or resume a search", Shortcut: "n", View: messages.ViewSearch},
		{Label: "History", Description: "browse and resume previous searches", Shortcut: "h", View: messages.ViewHistory},
		{Label: "Help", Description: "keybindings", Shortcut: "?", View: messages.ViewHelp},
		{Label: "Quit", Shortcut: "q", Quit: true},
	}
}

// View is the main menu.
type View struct {
	styles   *styles.Styles
	items    []Item
	selected int
	width    int
	height   int
	ready    bool
}

// NewView creates a new menu view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles: s,
		items:  DefaultItems(),
		width:  80,
		height: 24,
	}
}

// Init initialises the menu view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch pressed := msg.String(); pressed {
		case "up", "k":
			v.selected = max(v.selected-1, 0)
		case "down", "j":
			v.selected = min(v.selected+1, len(v.items)-1)
		case "enter":
			return v, v.items[v.selected].activate()
		default:
			for i, item := range v.items {
				if item.Shortcut == pressed {
					v.selected = i
					return v, item.activate()
				}
			}
		}
	}

	return v, nil
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("sitesearch"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Muted.Render("Resumable website search"))
	b.WriteString("\n\n")

	labelWidth := 0
	for _, item := range v.items {
		labelWidth = max(labelWidth, len(item.Label))
	}

	for i, item := range v.items {
		cursor, style := "  ", v.styles.Normal
		if i == v.selected {
			cursor, style = "> ", v.styles.Selected
		}

		b.WriteString(cursor)
		b.WriteString(style.Render(item.Label))
		if item.Description != "" {
			pad := strings.Repeat(" ", labelWidth-len(item.Label)+2)
			b.WriteString(pad)
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("[%s] %s", item.Shortcut, item.Description)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] Select  [q] Quit"))

	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the currently selected index.
func (v *View) Selected() int {
	return v.selected
}
