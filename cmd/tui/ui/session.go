package ui

import (
	"context"
	"time"

	"bookshelf/client"

	tea "github.com/charmbracelet/bubbletea"
)

const requestTimeout = 10 * time.Second

// Session holds the API client and the signed-in user.
type Session struct {
	API  *client.Client
	User *client.User
}

func NewSession(baseURL string) *Session {
	return &Session{API: client.New(baseURL)}
}

// loginResultMsg carries the signed-in client back to Update, which is the
// only place the Session is written.
type loginResultMsg struct {
	API  *client.Client
	User *client.User
	Err  error
}

type booksLoadedMsg struct {
	Page  *client.BookPage
	Stats *client.Stats
	Err   error
}

type bookDeletedMsg struct {
	ID  int64
	Err error
}

type bookCreatedMsg struct {
	Book *client.Book
	Err  error
}

func withTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// LoginCmd signs in on a fresh client for baseURL, or the current server
// when baseURL is empty.
func (s *Session) LoginCmd(baseURL, email, password string) tea.Cmd {
	if baseURL == "" {
		baseURL = s.API.BaseURL
	}
	return func() tea.Msg {
		api := client.New(baseURL)
		ctx, cancel := withTimeout()
		defer cancel()
		u, err := api.Login(ctx, email, password)
		if err != nil {
			return loginResultMsg{Err: err}
		}
		return loginResultMsg{API: api, User: u}
	}
}

// apply stores a successful login.
func (s *Session) apply(msg loginResultMsg) {
	if msg.Err != nil || msg.API == nil {
		return
	}
	s.API = msg.API
	s.User = msg.User
}

func (s *Session) LoadBooksCmd(p client.ListParams) tea.Cmd {
	api := s.API
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		page, err := api.ListBooks(ctx, p)
		if err != nil {
			return booksLoadedMsg{Err: err}
		}
		stats, err := api.Stats(ctx)
		return booksLoadedMsg{Page: page, Stats: stats, Err: err}
	}
}

func (s *Session) DeleteBookCmd(id int64) tea.Cmd {
	api := s.API
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		return bookDeletedMsg{ID: id, Err: api.DeleteBook(ctx, id)}
	}
}

func (s *Session) CreateBookCmd(nb client.NewBook) tea.Cmd {
	api := s.API
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		b, err := api.CreateBook(ctx, nb)
		return bookCreatedMsg{Book: b, Err: err}
	}
}
