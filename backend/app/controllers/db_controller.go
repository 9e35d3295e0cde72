package controllers

import (
	"net/http"

	"bookshelf/backend/app/db"
	"bookshelf/backend/app/response"
	"bookshelf/backend/app/services"

	"github.com/rs/zerolog"
)

type DBController struct {
	DB    *db.Manager
	Books *services.BookService
	Log   zerolog.Logger
}

func NewDBController(m *db.Manager, books *services.BookService, log zerolog.Logger) *DBController {
	return &DBController{DB: m, Books: books, Log: log}
}

func (c *DBController) Status(w http.ResponseWriter, r *http.Request) {
	response.OK(w, c.DB.Status())
}

// Reconnect pings the database and, if that fails, retries with backoff.
// Cached aggregates are dropped on success.
func (c *DBController) Reconnect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := c.DB.Check(ctx); err != nil {
		if err := c.DB.Reconnect(ctx); err != nil {
			c.Log.Warn().Err(err).Msg("manual reconnect failed")
			response.JSON(w, http.StatusServiceUnavailable, response.Envelope{
				Success: false,
				Message: "Database reconnection failed",
				Data:    c.DB.Status(),
				Offline: true,
			})
			return
		}
	}
	c.Books.InvalidateCache(ctx)
	response.OKMessage(w, c.DB.Status(), "Database connected")
}
