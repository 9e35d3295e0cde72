package ui

import (
	"fmt"
	"strconv"
	"strings"

	"bookshelf/client"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const pageSize = 15

type BooksModel struct {
	Session   *Session
	Table     table.Model
	Search    textinput.Model
	Searching bool
	Params    client.ListParams
	Page      *client.BookPage
	Stats     *client.Stats
	Status    string
	Err       error
	// pendingDelete is the id awaiting a second 'd'.
	pendingDelete int64
}

// BookSelectedMsg opens the detail view.
type BookSelectedMsg struct{ Book client.Book }

// NewBookRequestedMsg opens the add-book form.
type NewBookRequestedMsg struct{}

func NewBooksModel(s *Session, height int) BooksModel {
	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Title", Width: 36},
		{Title: "Author", Width: 24},
		{Title: "Genre", Width: 16},
		{Title: "Year", Width: 6},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(tableHeight(height)),
	)
	st := table.DefaultStyles()
	st.Header = st.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	st.Selected = st.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(st)

	search := textinput.New()
	search.Prompt = "Search: "
	search.Placeholder = "title or author"

	return BooksModel{
		Session: s,
		Table:   t,
		Search:  search,
		Params:  client.ListParams{Page: 1, Limit: pageSize},
	}
}

func tableHeight(h int) int {
	if h <= 0 {
		return pageSize
	}
	if h-12 < 5 {
		return 5
	}
	return h - 12
}

func (m BooksModel) Init() tea.Cmd {
	return m.Session.LoadBooksCmd(m.Params)
}

func (m BooksModel) reload() tea.Cmd { return m.Session.LoadBooksCmd(m.Params) }

func (m BooksModel) selected() (client.Book, bool) {
	if m.Page == nil {
		return client.Book{}, false
	}
	i := m.Table.Cursor()
	if i < 0 || i >= len(m.Page.Books) {
		return client.Book{}, false
	}
	return m.Page.Books[i], true
}

func (m BooksModel) Update(msg tea.Msg) (BooksModel, tea.Cmd) {
	switch msg := msg.(type) {
	case booksLoadedMsg:
		m.Err = msg.Err
		if msg.Page != nil {
			m.Page = msg.Page
			m.Table.SetRows(bookRows(msg.Page.Books))
		}
		if msg.Stats != nil {
			m.Stats = msg.Stats
		}
		return m, nil

	case bookDeletedMsg:
		if msg.Err != nil {
			m.Err = msg.Err
			return m, nil
		}
		m.Status = fmt.Sprintf("Deleted book %d", msg.ID)
		return m, m.reload()

	case tea.KeyMsg:
		if m.Searching {
			return m.updateSearch(msg)
		}
		key := msg.String()
		if key != "d" {
			m.pendingDelete = 0
		}
		switch key {
		case "/":
			m.Searching = true
			m.Search.Focus()
			return m, textinput.Blink
		case "r":
			m.Status = ""
			return m, m.reload()
		case "n", "right":
			if m.Page != nil && m.Page.HasNext {
				m.Params.Page++
				return m, m.reload()
			}
			return m, nil
		case "p", "left":
			if m.Page != nil && m.Page.HasPrev {
				m.Params.Page--
				return m, m.reload()
			}
			return m, nil
		case "a":
			return m, func() tea.Msg { return NewBookRequestedMsg{} }
		case "d":
			b, ok := m.selected()
			if !ok {
				return m, nil
			}
			if m.pendingDelete != b.ID {
				m.pendingDelete = b.ID
				m.Status = fmt.Sprintf("Press d again to delete %q", b.Title)
				return m, nil
			}
			m.pendingDelete = 0
			return m, m.Session.DeleteBookCmd(b.ID)
		case "enter":
			if b, ok := m.selected(); ok {
				return m, func() tea.Msg { return BookSelectedMsg{Book: b} }
			}
			return m, nil
		case "q":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.Table, cmd = m.Table.Update(msg)
	return m, cmd
}

func (m BooksModel) updateSearch(msg tea.KeyMsg) (BooksModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.Searching = false
		m.Search.Blur()
		m.Params.Search = strings.TrimSpace(m.Search.Value())
		m.Params.Page = 1
		return m, m.reload()
	case tea.KeyEsc:
		m.Searching = false
		m.Search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.Search, cmd = m.Search.Update(msg)
	return m, cmd
}

func bookRows(books []client.Book) []table.Row {
	rows := make([]table.Row, 0, len(books))
	for _, b := range books {
		genre, year := "", ""
		if b.Genre != nil {
			genre = *b.Genre
		}
		if b.PublishedYear != nil {
			year = strconv.Itoa(*b.PublishedYear)
		}
		rows = append(rows, table.Row{strconv.FormatInt(b.ID, 10), b.Title, b.Author, genre, year})
	}
	return rows
}

func (m BooksModel) View() string {
	var b strings.Builder
	title := "Bookshelf"
	if u := m.Session.User; u != nil {
		title = fmt.Sprintf("Bookshelf - %s (%s)", u.Username, u.Role)
	}
	b.WriteString(titleStyle.Render(title) + "\n\n")

	if s := m.Stats; s != nil {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			statStyle.Render(fmt.Sprintf("Books %d", s.TotalBooks)),
			statStyle.Render(fmt.Sprintf("Authors %d", s.TotalAuthors)),
			statStyle.Render(fmt.Sprintf("Genres %d", s.TotalGenres)),
			statStyle.Render(fmt.Sprintf("New (30d) %d", s.RecentBooks)),
		))
		b.WriteString("\n\n")
	}

	if m.Searching || m.Params.Search != "" {
		if m.Searching {
			b.WriteString(m.Search.View())
		} else {
			b.WriteString(blurredStyle.Render("Search: " + m.Params.Search))
		}
		b.WriteString("\n")
	}

	b.WriteString(m.Table.View())
	b.WriteString("\n")
	if p := m.Page; p != nil {
		b.WriteString(blurredStyle.Render(fmt.Sprintf("Page %d of %d, %d books", p.Page, max(p.TotalPages, 1), p.Total)))
		b.WriteString("\n")
	}
	b.WriteString(blurredStyle.Render("/ search  n/p page  a add  d delete  enter details  r refresh  q quit"))

	if m.Status != "" {
		b.WriteString("\n" + statusMessageStyle(m.Status))
	}
	if m.Err != nil {
		b.WriteString("\n" + errorMessageStyle(m.Err.Error()))
	}
	return b.String()
}
