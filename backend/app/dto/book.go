package dto

import (
	"strings"

	"bookshelf/backend/app/models"
)

type CreateBookRequest struct {
	Title         string  `json:"title" validate:"notblank,max=255"`
	Author        string  `json:"author" validate:"notblank,max=255"`
	Genre         *string `json:"genre" validate:"omitempty,max=100"`
	PublishedYear *int    `json:"published_year" validate:"omitempty,pubyear"`
}

// Book returns the model to insert. A blank genre is stored as NULL.
func (r CreateBookRequest) Book() *models.Book {
	b := &models.Book{
		Title:         strings.TrimSpace(r.Title),
		Author:        strings.TrimSpace(r.Author),
		PublishedYear: r.PublishedYear,
	}
	if r.Genre != nil {
		if g := strings.TrimSpace(*r.Genre); g != "" {
			b.Genre = &g
		}
	}
	return b
}

// UpdateBookRequest holds the typed fields of a partial update. Which keys
// were sent, and which were sent as null, is tracked separately in Present.
type UpdateBookRequest struct {
	Title         *string `json:"title" validate:"omitempty,notblank,max=255"`
	Author        *string `json:"author" validate:"omitempty,notblank,max=255"`
	Genre         *string `json:"genre" validate:"omitempty,max=100"`
	PublishedYear *int    `json:"published_year" validate:"omitempty,pubyear"`

	Present map[string]any `json:"-"`
}

func (r UpdateBookRequest) sentNull(key string) bool {
	v, ok := r.Present[key]
	return ok && v == nil
}

// Patch converts the request into a repository patch. Explicit nulls (and a
// blank genre) clear the optional columns; nulls for title or author are
// reported as field errors by the caller.
func (r UpdateBookRequest) Patch() models.BookPatch {
	var p models.BookPatch
	if r.Title != nil {
		t := strings.TrimSpace(*r.Title)
		p.Title = &t
	}
	if r.Author != nil {
		a := strings.TrimSpace(*r.Author)
		p.Author = &a
	}
	switch {
	case r.sentNull("genre"):
		p.ClearGenre = true
	case r.Genre != nil:
		if g := strings.TrimSpace(*r.Genre); g != "" {
			p.Genre = &g
		} else {
			p.ClearGenre = true
		}
	}
	switch {
	case r.sentNull("published_year"):
		p.ClearYear = true
	case r.PublishedYear != nil:
		p.PublishedYear = r.PublishedYear
	}
	return p
}

// NullRequired lists the required fields that were sent as null.
func (r UpdateBookRequest) NullRequired() []string {
	var out []string
	for _, k := range []string{"title", "author"} {
		if r.sentNull(k) {
			out = append(out, k)
		}
	}
	return out
}

// Page is the pagination metadata attached to list responses.
type Page struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

func NewPage(total int64, limit, offset int) Page {
	if limit <= 0 {
		limit = DefaultLimit
	}
	page := offset/limit + 1
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Page{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

type BookListResponse struct {
	Success bool          `json:"success"`
	Data    []models.Book `json:"data"`
	Page
}

func NewBookList(books []models.Book, total int64, f models.BookFilter) BookListResponse {
	if books == nil {
		books = []models.Book{}
	}
	return BookListResponse{Success: true, Data: books, Page: NewPage(total, f.Limit, f.Offset)}
}
