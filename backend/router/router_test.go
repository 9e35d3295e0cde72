package router_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"bookshelf/backend/config"
	"bookshelf/backend/initialize"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin-pass"
)

type harness struct {
	t   *testing.T
	srv *httptest.Server
	app *initialize.App
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	cfg := &config.Config{
		DB: config.DB{
			Driver:           "sqlite",
			Path:             filepath.Join(t.TempDir(), "api.db"),
			StatementTimeout: 5 * time.Second,
			HealthInterval:   time.Minute,
			MaxRetries:       1,
			RetryDelay:       time.Millisecond,
		},
		JWT:   config.JWT{Secret: "router-test", Issuer: "bookshelf", ExpiresIn: time.Hour},
		Auth:  config.Auth{SeedAdmin: config.SeedAdmin{Username: "admin", Email: adminEmail, Password: adminPassword}},
		Cache: config.Cache{Driver: "memory", StatsTTL: time.Minute},
		Log:   config.Log{Level: "error", Format: "json"},
		CORS:  config.CORS{AllowedOrigins: []string{"*"}},
	}
	app, err := initialize.BuildWithConfig(cfg)
	require.NoError(t, err)
	require.NoError(t, app.DB.Check(context.Background()))

	srv := httptest.NewServer(app.Router)
	t.Cleanup(func() {
		srv.Close()
		_ = app.Close()
	})
	return &harness{t: t, srv: srv, app: app}
}

type reply struct {
	Status int
	Body   map[string]any
}

func (r reply) data() map[string]any {
	m, _ := r.Body["data"].(map[string]any)
	return m
}

func (r reply) list() []any {
	l, _ := r.Body["data"].([]any)
	return l
}

func (h *harness) do(method, path, token string, body any) reply {
	h.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(h.t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, h.srv.URL+path, rd)
	require.NoError(h.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.srv.Client().Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	out := reply{Status: resp.StatusCode}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	if len(raw) > 0 && resp.Header.Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(h.t, json.Unmarshal(raw, &out.Body))
	}
	return out
}

func (h *harness) login(email, password string) string {
	h.t.Helper()
	r := h.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(h.t, http.StatusOK, r.Status, r.Body)
	tok, _ := r.data()["token"].(string)
	require.NotEmpty(h.t, tok)
	return tok
}

func (h *harness) register(username, email string) string {
	h.t.Helper()
	r := h.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username, "email": email, "password": "secret123",
	})
	require.Equal(h.t, http.StatusCreated, r.Status, r.Body)
	tok, _ := r.data()["token"].(string)
	require.NotEmpty(h.t, tok)
	return tok
}

func (h *harness) createBook(token string, book map[string]any) float64 {
	h.t.Helper()
	r := h.do(http.MethodPost, "/api/books", token, book)
	require.Equal(h.t, http.StatusCreated, r.Status, r.Body)
	return r.data()["id"].(float64)
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	r := h.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, r.Status)
	assert.Equal(t, "connected", r.data()["database"])

	r = h.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, r.Status)
	assert.Equal(t, false, r.Body["success"])
}

func TestBooks_AuthRequiredForWrites(t *testing.T) {
	h := newHarness(t)
	book := map[string]any{"title": "Dune", "author": "Herbert"}

	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodPost, "/api/books", "", book).Status)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPost, "/api/books", "bogus", book).Status)
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodDelete, "/api/books/1", "", nil).Status)

	tok := h.register("alice", "alice@example.com")
	assert.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/books", tok, book).Status)
}

func TestBooks_CreateValidation(t *testing.T) {
	h := newHarness(t)
	tok := h.register("alice", "alice@example.com")

	r := h.do(http.MethodPost, "/api/books", tok, map[string]any{"title": " ", "published_year": 999})
	require.Equal(t, http.StatusBadRequest, r.Status)
	assert.Equal(t, false, r.Body["success"])
	errs, ok := r.Body["errors"].([]any)
	require.True(t, ok)
	var fields []string
	for _, e := range errs {
		fields = append(fields, e.(map[string]any)["field"].(string))
	}
	assert.ElementsMatch(t, []string{"title", "author", "published_year"}, fields)

	r = h.do(http.MethodPost, "/api/books", tok, map[string]any{"title": "Dune", "author": "Herbert", "published_year": "abc"})
	require.Equal(t, http.StatusBadRequest, r.Status)
	errs, ok = r.Body["errors"].([]any)
	require.True(t, ok, r.Body)
	require.Len(t, errs, 1)
	assert.Equal(t, "published_year", errs[0].(map[string]any)["field"])

	id := h.createBook(tok, map[string]any{"title": "Dune", "author": "Herbert"})
	r = h.do(http.MethodPut, fmt.Sprintf("/api/books/%d", int64(id)), tok, map[string]any{"published_year": "1965"})
	require.Equal(t, http.StatusBadRequest, r.Status)
	errs, _ = r.Body["errors"].([]any)
	require.Len(t, errs, 1)
	assert.Equal(t, "published_year", errs[0].(map[string]any)["field"])
}

func TestBooks_DuneScenario(t *testing.T) {
	h := newHarness(t)
	tok := h.register("alice", "alice@example.com")
	h.createBook(tok, map[string]any{"title": "The Hobbit", "author": "Tolkien", "genre": "Fantasy", "published_year": 1937})
	dune := h.createBook(tok, map[string]any{"title": "Dune", "author": "Herbert", "genre": "Sci-Fi", "published_year": 1965})

	r := h.do(http.MethodGet, "/api/books?search=dune", "", nil)
	require.Equal(t, http.StatusOK, r.Status)
	require.Len(t, r.list(), 1)
	assert.Equal(t, dune, r.list()[0].(map[string]any)["id"])
	assert.Equal(t, float64(1), r.Body["total"])

	r = h.do(http.MethodGet, "/api/books?genre=Sci-Fi&genre=Fantasy", "", nil)
	assert.Len(t, r.list(), 2)

	r = h.do(http.MethodGet, "/api/books?year=1966", "", nil)
	assert.Empty(t, r.list())
	assert.Equal(t, float64(0), r.Body["total"])

	r = h.do(http.MethodGet, "/api/books?limit=500", "", nil)
	assert.Equal(t, http.StatusBadRequest, r.Status)
}

func TestBooks_Pagination(t *testing.T) {
	h := newHarness(t)
	tok := h.register("alice", "alice@example.com")
	for i := 1; i <= 25; i++ {
		h.createBook(tok, map[string]any{"title": fmt.Sprintf("Book %02d", i), "author": "Author"})
	}

	seen := map[float64]bool{}
	for page := 1; page <= 3; page++ {
		r := h.do(http.MethodGet, fmt.Sprintf("/api/books?limit=10&page=%d", page), "", nil)
		require.Equal(t, http.StatusOK, r.Status)
		assert.Equal(t, float64(25), r.Body["total"])
		assert.Equal(t, float64(3), r.Body["totalPages"])
		assert.Equal(t, float64(page), r.Body["page"])
		for _, b := range r.list() {
			id := b.(map[string]any)["id"].(float64)
			assert.False(t, seen[id], "duplicate id %v", id)
			seen[id] = true
		}
		if page == 3 {
			assert.Len(t, r.list(), 5)
			assert.Equal(t, false, r.Body["hasNext"])
			assert.Equal(t, true, r.Body["hasPrev"])
		}
	}
	assert.Len(t, seen, 25)

	for _, page := range []string{"9223372036854775807", "922337203685477581"} {
		r := h.do(http.MethodGet, "/api/books?limit=10&page="+page, "", nil)
		require.Equal(t, http.StatusBadRequest, r.Status, page)
		errs, _ := r.Body["errors"].([]any)
		require.Len(t, errs, 1)
		assert.Equal(t, "page", errs[0].(map[string]any)["field"])
	}
}

func TestBooks_UpdateAndDelete(t *testing.T) {
	h := newHarness(t)
	tok := h.register("alice", "alice@example.com")
	id := h.createBook(tok, map[string]any{"title": "Dune", "author": "Herbert", "genre": "Sci-Fi"})
	path := fmt.Sprintf("/api/books/%d", int64(id))

	r := h.do(http.MethodPut, path, tok, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, r.Status)
	assert.Equal(t, "No fields to update", r.Body["message"])

	r = h.do(http.MethodPut, "/api/books/9999", tok, map[string]any{"title": "x"})
	assert.Equal(t, http.StatusNotFound, r.Status)
	assert.Equal(t, "Book not found", r.Body["message"])

	r = h.do(http.MethodPut, path, tok, map[string]any{"genre": nil, "published_year": 1965})
	require.Equal(t, http.StatusOK, r.Status, r.Body)
	assert.Nil(t, r.data()["genre"])
	assert.Equal(t, float64(1965), r.data()["published_year"])
	assert.Equal(t, "Dune", r.data()["title"])

	r = h.do(http.MethodPut, path, tok, map[string]any{"title": nil})
	assert.Equal(t, http.StatusBadRequest, r.Status)

	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/api/books/abc", "", nil).Status)

	assert.Equal(t, http.StatusOK, h.do(http.MethodDelete, path, tok, nil).Status)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodDelete, path, tok, nil).Status)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, path, "", nil).Status)
}

func TestBooks_GenreCacheInvalidatedOnDelete(t *testing.T) {
	h := newHarness(t)
	tok := h.register("alice", "alice@example.com")
	h.createBook(tok, map[string]any{"title": "Dune", "author": "Herbert", "genre": "Sci-Fi"})
	noir := h.createBook(tok, map[string]any{"title": "The Big Sleep", "author": "Chandler", "genre": "Noir"})

	r := h.do(http.MethodGet, "/api/books/filters/genres", "", nil)
	assert.Equal(t, []any{"Noir", "Sci-Fi"}, r.Body["data"])
	r = h.do(http.MethodGet, "/api/books/stats", "", nil)
	assert.Equal(t, float64(2), r.data()["totalGenres"])

	require.Equal(t, http.StatusOK, h.do(http.MethodDelete, fmt.Sprintf("/api/books/%d", int64(noir)), tok, nil).Status)

	r = h.do(http.MethodGet, "/api/books/filters/genres", "", nil)
	assert.Equal(t, []any{"Sci-Fi"}, r.Body["data"])
	r = h.do(http.MethodGet, "/api/books/stats", "", nil)
	assert.Equal(t, float64(1), r.data()["totalGenres"])
	assert.Equal(t, float64(1), r.data()["totalBooks"])
}

func TestAuth_RegisterLoginMe(t *testing.T) {
	h := newHarness(t)
	h.register("alice", "alice@example.com")

	r := h.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice2", "email": "alice@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, r.Status)
	assert.Equal(t, "Email already registered", r.Body["message"])

	r = h.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "root2", "email": "root2@example.com", "password": "secret123", "role": "admin",
	})
	assert.Equal(t, http.StatusForbidden, r.Status)

	wrongPass := h.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alice@example.com", "password": "nope-nope"})
	noUser := h.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ghost@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusUnauthorized, wrongPass.Status)
	assert.Equal(t, wrongPass, noUser)

	tok := h.login("alice@example.com", "secret123")
	r = h.do(http.MethodGet, "/api/auth/me", tok, nil)
	require.Equal(t, http.StatusOK, r.Status)
	assert.Equal(t, "alice", r.data()["username"])
	assert.NotContains(t, r.data(), "password_hash")
	assert.NotContains(t, r.data(), "PasswordHash")

	r = h.do(http.MethodPut, "/api/auth/password", tok, map[string]string{"currentPassword": "secret123", "newPassword": "better-pass"})
	assert.Equal(t, http.StatusOK, r.Status)
	h.login("alice@example.com", "better-pass")

	assert.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/auth/logout", "", nil).Status)
}

func TestAdmin_UserManagement(t *testing.T) {
	h := newHarness(t)
	userTok := h.register("bob", "bob@example.com")
	adminTok := h.login(adminEmail, adminPassword)

	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/auth/users", "", nil).Status)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/api/auth/users", userTok, nil).Status)

	r := h.do(http.MethodGet, "/api/auth/users", adminTok, nil)
	require.Equal(t, http.StatusOK, r.Status)
	assert.Len(t, r.list(), 2)

	me := h.do(http.MethodGet, "/api/auth/me", adminTok, nil)
	adminID := int64(me.data()["id"].(float64))
	bob := h.do(http.MethodGet, "/api/auth/me", userTok, nil)
	bobID := int64(bob.data()["id"].(float64))

	r = h.do(http.MethodPut, fmt.Sprintf("/api/auth/users/%d/role", adminID), adminTok, map[string]string{"role": "user"})
	assert.Equal(t, http.StatusBadRequest, r.Status)
	r = h.do(http.MethodDelete, fmt.Sprintf("/api/auth/users/%d", adminID), adminTok, nil)
	assert.Equal(t, http.StatusBadRequest, r.Status)

	r = h.do(http.MethodPut, fmt.Sprintf("/api/auth/users/%d/role", adminID), userTok, map[string]string{"role": "user"})
	assert.Equal(t, http.StatusForbidden, r.Status)
	r = h.do(http.MethodDelete, fmt.Sprintf("/api/auth/users/%d", adminID), userTok, nil)
	assert.Equal(t, http.StatusForbidden, r.Status)

	r = h.do(http.MethodPut, fmt.Sprintf("/api/auth/users/%d/role", bobID), adminTok, map[string]string{"role": "admin"})
	require.Equal(t, http.StatusOK, r.Status)
	assert.Equal(t, "admin", r.data()["role"])

	r = h.do(http.MethodPost, "/api/auth/users", adminTok, map[string]string{
		"username": "carol", "email": "carol@example.com", "password": "secret123", "role": "admin",
	})
	require.Equal(t, http.StatusCreated, r.Status)
	carolID := int64(r.data()["id"].(float64))

	assert.Equal(t, http.StatusOK, h.do(http.MethodDelete, fmt.Sprintf("/api/auth/users/%d", carolID), adminTok, nil).Status)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, fmt.Sprintf("/api/auth/users/%d", carolID), adminTok, nil).Status)
}

func TestDatabaseOffline(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.app.DB.SQL().Close())
	require.Error(t, h.app.DB.Check(context.Background()))

	r := h.do(http.MethodGet, "/api/books", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, r.Status)
	assert.Equal(t, true, r.Body["offline"])

	r = h.do(http.MethodGet, "/api/db/status", "", nil)
	require.Equal(t, http.StatusOK, r.Status)
	assert.Equal(t, false, r.data()["connected"])
	assert.NotEmpty(t, r.data()["lastError"])

	r = h.do(http.MethodPost, "/api/db/reconnect", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, r.Status)

	r = h.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, r.Status)
	assert.Equal(t, "disconnected", r.data()["database"])

	req, err := http.NewRequest(http.MethodGet, h.srv.URL+"/", nil)
	require.NoError(t, err)
	resp, err := h.srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
