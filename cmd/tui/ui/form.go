package ui

import (
	"errors"
	"strconv"
	"strings"

	"bookshelf/client"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type fieldDef struct {
	Name        string
	Placeholder string
	Required    bool
	CharLimit   int
}

var bookFields = []fieldDef{
	{Name: "Title", Placeholder: "Dune", Required: true, CharLimit: 255},
	{Name: "Author", Placeholder: "Frank Herbert", Required: true, CharLimit: 255},
	{Name: "Genre", Placeholder: "Science Fiction", CharLimit: 100},
	{Name: "Published year", Placeholder: "1965", CharLimit: 4},
}

const (
	fieldTitle = iota
	fieldAuthor
	fieldGenre
	fieldYear
)

// BookFormModel is the add-book form. Focus cycles through the inputs and
// then the Submit and Back buttons.
type BookFormModel struct {
	Session *Session
	Inputs  []textinput.Model
	Focused int
	Err     error
	Busy    bool
}

func NewBookFormModel(s *Session) BookFormModel {
	inputs := make([]textinput.Model, len(bookFields))
	for i, f := range bookFields {
		ti := textinput.New()
		ti.Placeholder = f.Placeholder
		ti.CharLimit = f.CharLimit
		if i == 0 {
			ti.Focus()
		}
		inputs[i] = ti
	}
	return BookFormModel{Session: s, Inputs: inputs}
}

func (m BookFormModel) Init() tea.Cmd { return textinput.Blink }

func (m BookFormModel) Update(msg tea.Msg) (BookFormModel, tea.Cmd) {
	switch msg := msg.(type) {
	case bookCreatedMsg:
		m.Busy = false
		if msg.Err != nil {
			m.Err = msg.Err
			return m, nil
		}
		return m, func() tea.Msg { return BackToBooksMsg{Reload: true} }

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return BackToBooksMsg{} }
		case "enter":
			switch m.Focused {
			case len(m.Inputs):
				return m.submit()
			case len(m.Inputs) + 1:
				return m, func() tea.Msg { return BackToBooksMsg{} }
			}
			m.move(1)
			return m, nil
		case "tab", "down":
			m.move(1)
			return m, nil
		case "shift+tab", "up":
			m.move(-1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.Focused < len(m.Inputs) {
		m.Inputs[m.Focused], cmd = m.Inputs[m.Focused].Update(msg)
	}
	return m, cmd
}

func (m *BookFormModel) move(delta int) {
	n := len(m.Inputs) + 2
	m.Focused = ((m.Focused+delta)%n + n) % n
	for i := range m.Inputs {
		if i == m.Focused {
			m.Inputs[i].Focus()
		} else {
			m.Inputs[i].Blur()
		}
	}
}

// newBook checks the form the same way the server will, so obvious
// mistakes are reported without a round trip.
func (m BookFormModel) newBook() (client.NewBook, error) {
	nb := client.NewBook{
		Title:  strings.TrimSpace(m.Inputs[fieldTitle].Value()),
		Author: strings.TrimSpace(m.Inputs[fieldAuthor].Value()),
	}
	if nb.Title == "" {
		return nb, errors.New("title is required")
	}
	if nb.Author == "" {
		return nb, errors.New("author is required")
	}
	if g := strings.TrimSpace(m.Inputs[fieldGenre].Value()); g != "" {
		nb.Genre = &g
	}
	if y := strings.TrimSpace(m.Inputs[fieldYear].Value()); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			return nb, errors.New("published year must be a number")
		}
		nb.PublishedYear = &year
	}
	return nb, nil
}

func (m BookFormModel) submit() (BookFormModel, tea.Cmd) {
	nb, err := m.newBook()
	if err != nil {
		m.Err = err
		return m, nil
	}
	m.Err = nil
	m.Busy = true
	return m, m.Session.CreateBookCmd(nb)
}

func renderButton(text string, focused bool) string {
	if focused {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("205")).Padding(0, 3).Bold(true).Render(text)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("254")).Background(lipgloss.Color("240")).Padding(0, 3).Render(text)
}

func (m BookFormModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Add book") + "\n\n")

	for i, f := range bookFields {
		label := f.Name
		if f.Required {
			label += " *"
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
		if i == m.Focused {
			style = style.Foreground(lipgloss.Color("205")).Bold(true)
		}
		b.WriteString(style.Render(label) + "\n")
		b.WriteString(m.Inputs[i].View() + "\n\n")
	}

	submit := renderButton("Submit", m.Focused == len(m.Inputs))
	back := renderButton("Back", m.Focused == len(m.Inputs)+1)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, submit, lipgloss.NewStyle().MarginLeft(2).Render(back)))

	if m.Busy {
		b.WriteString("\n\n" + focusedStyle.Render("Saving..."))
	}
	if m.Err != nil {
		b.WriteString("\n\n" + errorMessageStyle(m.Err.Error()))
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
