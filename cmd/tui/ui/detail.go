package ui

import (
	"fmt"
	"strings"
	"time"

	"bookshelf/client"

	tea "github.com/charmbracelet/bubbletea"
)

// BackToBooksMsg returns from a sub-view to the book list.
type BackToBooksMsg struct{ Reload bool }

type BookDetailModel struct {
	Session *Session
	Book    client.Book
	Err     error
	confirm bool
}

func NewBookDetailModel(s *Session, b client.Book) BookDetailModel {
	return BookDetailModel{Session: s, Book: b}
}

func (m BookDetailModel) Init() tea.Cmd { return nil }

func (m BookDetailModel) Update(msg tea.Msg) (BookDetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case bookDeletedMsg:
		if msg.Err != nil {
			m.Err = msg.Err
			return m, nil
		}
		return m, func() tea.Msg { return BackToBooksMsg{Reload: true} }
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "backspace", "q":
			return m, func() tea.Msg { return BackToBooksMsg{} }
		case "d":
			if !m.confirm {
				m.confirm = true
				return m, nil
			}
			return m, m.Session.DeleteBookCmd(m.Book.ID)
		default:
			m.confirm = false
		}
	}
	return m, nil
}

func (m BookDetailModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.Book.Title) + "\n\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + value + "\n")
	}
	row("ID", fmt.Sprint(m.Book.ID))
	row("Author", m.Book.Author)
	if m.Book.Genre != nil {
		row("Genre", *m.Book.Genre)
	} else {
		row("Genre", blurredStyle.Render("none"))
	}
	if m.Book.PublishedYear != nil {
		row("Published", fmt.Sprint(*m.Book.PublishedYear))
	} else {
		row("Published", blurredStyle.Render("unknown"))
	}
	row("Added", m.Book.CreatedAt.Local().Format(time.DateTime))
	row("Updated", m.Book.UpdatedAt.Local().Format(time.DateTime))

	b.WriteString("\n")
	if m.confirm {
		b.WriteString(focusedStyle.Render("Press d again to delete this book"))
	} else {
		b.WriteString(blurredStyle.Render("esc back  d delete"))
	}
	if m.Err != nil {
		b.WriteString("\n" + errorMessageStyle(m.Err.Error()))
	}
	return b.String()
}
