package controllers

import (
	"net/http"
	"time"

	"bookshelf/backend/app/db"
	"bookshelf/backend/app/middleware"
	"bookshelf/backend/app/models"
	"bookshelf/backend/app/response"
	"bookshelf/backend/app/services"
	"bookshelf/backend/app/view"

	"github.com/rs/zerolog"
)

const dashboardBooks = 10

type ViewController struct {
	Books *services.BookService
	DB    *db.Manager
	View  *view.Renderer
	Title string
	Log   zerolog.Logger
}

func NewViewController(books *services.BookService, m *db.Manager, r *view.Renderer, log zerolog.Logger) *ViewController {
	return &ViewController{Books: books, DB: m, View: r, Title: "Bookshelf", Log: log}
}

// Dashboard renders the landing page. When the database is unreachable the
// page is still served, flagged offline.
func (c *ViewController) Dashboard(w http.ResponseWriter, r *http.Request) {
	d := view.Dashboard{Title: c.Title, Now: time.Now(), Offline: !c.DB.Connected()}
	if claims := middleware.GetClaims(r.Context()); claims != nil {
		d.User = &view.Viewer{Username: claims.Username, Role: claims.Role}
	}

	if !d.Offline {
		ctx := r.Context()
		var err error
		if d.Stats, err = c.Books.Stats(ctx); err == nil {
			d.Books, _, err = c.Books.List(ctx, models.BookFilter{Limit: dashboardBooks})
		}
		if err == nil {
			d.Genres, err = c.Books.Genres(ctx)
		}
		if err != nil {
			c.Log.Warn().Err(err).Msg("dashboard data unavailable")
			d.Offline = true
		}
	}

	if err := c.View.Dashboard(w, d); err != nil {
		c.Log.Error().Err(err).Msg("render dashboard")
		response.Fail(w, http.StatusInternalServerError, "Internal server error")
	}
}
