// Package view renders the server-side dashboard page.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"bookshelf/backend/app/models"
)

//go:embed templates/*.html
var templates embed.FS

type Dashboard struct {
	Title   string
	User    *Viewer
	Offline bool
	Stats   *models.BookStats
	Books   []models.Book
	Genres  []string
	Now     time.Time
}

// Viewer is the signed-in user, if any.
type Viewer struct {
	Username string
	Role     string
}

type Renderer struct{ tmpl *template.Template }

func New() (*Renderer, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"year": func(y *int) string {
			if y == nil {
				return ""
			}
			return fmt.Sprint(*y)
		},
	}).ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Dashboard writes the page. Nothing reaches w if the template fails.
func (r *Renderer) Dashboard(w http.ResponseWriter, d Dashboard) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "dashboard.html", d); err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if d.Offline {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_, err := buf.WriteTo(w)
	return err
}
