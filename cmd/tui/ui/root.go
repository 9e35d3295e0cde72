package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

type state int

const (
	stateLogin state = iota
	stateBooks
	stateDetail
	stateForm
)

type RootModel struct {
	State    state
	Session  *Session
	Login    LoginModel
	Books    BooksModel
	Detail   BookDetailModel
	Form     BookFormModel
	Quitting bool
	width    int
	height   int
}

func NewRootModel(baseURL string) RootModel {
	s := NewSession(baseURL)
	return RootModel{
		State:   stateLogin,
		Session: s,
		Login:   NewLoginModel(s),
	}
}

func (m RootModel) Init() tea.Cmd {
	return m.Login.Init()
}

func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.Books.Table.SetHeight(tableHeight(msg.Height))
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.Quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	switch m.State {
	case stateLogin:
		if res, ok := msg.(loginResultMsg); ok && res.Err == nil {
			m.Session.apply(res)
			m.State = stateBooks
			m.Books = NewBooksModel(m.Session, m.height)
			return m, m.Books.Init()
		}
		m.Login, cmd = m.Login.Update(msg)

	case stateBooks:
		switch msg := msg.(type) {
		case BookSelectedMsg:
			m.State = stateDetail
			m.Detail = NewBookDetailModel(m.Session, msg.Book)
			return m, m.Detail.Init()
		case NewBookRequestedMsg:
			m.State = stateForm
			m.Form = NewBookFormModel(m.Session)
			return m, m.Form.Init()
		}
		m.Books, cmd = m.Books.Update(msg)

	case stateDetail:
		if back, ok := msg.(BackToBooksMsg); ok {
			return m.backToBooks(back)
		}
		m.Detail, cmd = m.Detail.Update(msg)

	case stateForm:
		if back, ok := msg.(BackToBooksMsg); ok {
			return m.backToBooks(back)
		}
		if created, ok := msg.(bookCreatedMsg); ok && created.Err == nil {
			m.Books.Status = "Added \"" + created.Book.Title + "\""
		}
		m.Form, cmd = m.Form.Update(msg)
	}
	return m, cmd
}

func (m RootModel) backToBooks(msg BackToBooksMsg) (tea.Model, tea.Cmd) {
	m.State = stateBooks
	if msg.Reload {
		m.Books.Params.Page = 1
		return m, m.Books.reload()
	}
	return m, nil
}

func (m RootModel) View() string {
	if m.Quitting {
		return "Bye!\n"
	}
	switch m.State {
	case stateLogin:
		return m.Login.View()
	case stateBooks:
		return m.Books.View()
	case stateDetail:
		return m.Detail.View()
	case stateForm:
		return m.Form.View()
	}
	return "Unknown state"
}
