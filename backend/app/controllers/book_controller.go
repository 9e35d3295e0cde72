package controllers

import (
	"context"
	"net/http"

	"bookshelf/backend/app/apperr"
	"bookshelf/backend/app/dto"
	"bookshelf/backend/app/response"
	"bookshelf/backend/app/services"
	"bookshelf/backend/app/validation"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

type BookController struct {
	Books    *services.BookService
	Validate *validation.Validator
	Log      zerolog.Logger
}

func NewBookController(books *services.BookService, v *validation.Validator, log zerolog.Logger) *BookController {
	return &BookController{Books: books, Validate: v, Log: log}
}

func (c *BookController) List(w http.ResponseWriter, r *http.Request) {
	f, err := dto.ParseBookQuery(r.URL.Query())
	if err != nil {
		response.Error(w, c.Log, err)
		return
	}
	books, total, err := c.Books.List(r.Context(), f)
	if err != nil {
		response.Error(w, c.Log, err)
		return
	}
	response.JSON(w, http.StatusOK, dto.NewBookList(books, total, f))
}

func (c *BookController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "book")
	if err != nil {
		response.Error(w, c.Log, err)
		return
	}
	b, err := c.Books.Get(r.Context(), id)
	if err != nil {
		response.Error(w, c.Log, err)
		return
	}
	response.OK(w, b)
}

func (c *BookController) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBookRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, c.Log, err)
		return
	}
	if err := c.Validate.Validate(req); err != nil {
		response.Error(w, c.Log, err)
		return
	}
	b, err := c.Books.Create(r.Context(), req.Book())
	if err != nil {
		response.Error(w, c.Log, err)
		return
	}
	response.Created(w, b, "Book created successfully")
}

func (c *BookController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "book")
	if err != nil {
		response.Error(w, c.Log, err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		response.Error(w, c.Log, err)
		return
	}
	var req dto.UpdateBookRequest
	if err := unmarshalBody(body, &req); err != nil {
		response.Error(w, c.Log, err)
		return
	}
	if json.Unmarshal(body, &req.Present) != nil {
		response.Error(w, c.Log, errBadBody)
		return
	}
	if nulls := req.NullRequired(); len(nulls) > 0 {
		fields := make([]apperr.FieldError, 0, len(nulls))
		for _, f := range nulls {
			fields = append(fields, apperr.FieldError{Field: f, Message: f + " is required"})
		}
		response.Error(w, c.Log, apperr.Validation("Validation failed", fields...))
		return
	}
	if err := c.Validate.Validate(req); err != nil {
		response.Error(w, c.Log, err)
		return
	}
	b, err := c.Books.Update(r.Context(), id, req.Patch())
	if err != nil {
		response.Error(w, c.Log, err)
		return
	}
	response.OKMessage(w, b, "Book updated successfully")
}

func (c *BookController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "book")
	if err != nil {
		response.Error(w, c.Log, err)
		return
	}
	if err := c.Books.Delete(r.Context(), id); err != nil {
		response.Error(w, c.Log, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Envelope{Success: true, Message: "Book deleted successfully"})
}

func (c *BookController) Genres(w http.ResponseWriter, r *http.Request) {
	c.stringList(w, r, c.Books.Genres)
}

func (c *BookController) Authors(w http.ResponseWriter, r *http.Request) {
	c.stringList(w, r, c.Books.Authors)
}

func (c *BookController) stringList(w http.ResponseWriter, r *http.Request, load func(ctx context.Context) ([]string, error)) {
	list, err := load(r.Context())
	if err != nil {
		response.Error(w, c.Log, err)
		return
	}
	if list == nil {
		list = []string{}
	}
	response.OK(w, list)
}

func (c *BookController) Stats(w http.ResponseWriter, r *http.Request) {
	s, err := c.Books.Stats(r.Context())
	if err != nil {
		response.Error(w, c.Log, err)
		return
	}
	response.OK(w, s)
}
