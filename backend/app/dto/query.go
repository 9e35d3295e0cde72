package dto

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bookshelf/backend/app/apperr"
	"bookshelf/backend/app/models"
	"bookshelf/backend/app/validation"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// ParseBookQuery turns the query string of GET /api/books into a filter.
// A key given more than once becomes a list; empty values are ignored.
// Out-of-range values are rejected, never clamped.
func ParseBookQuery(q url.Values) (models.BookFilter, error) {
	return parseBookQuery(q, time.Now())
}

func parseBookQuery(q url.Values, now time.Time) (models.BookFilter, error) {
	f := models.BookFilter{Limit: DefaultLimit}
	var errs []apperr.FieldError

	f.Search = first(q, "search")
	f.Genre, f.Genres = scalarOrList(q, "genre")
	f.Author, f.Authors = scalarOrList(q, "author")

	if s := first(q, "year"); s != "" {
		y, err := strconv.Atoi(s)
		switch {
		case err != nil:
			errs = append(errs, apperr.FieldError{Field: "year", Message: "year must be an integer"})
		case !validation.ValidYear(y, now):
			errs = append(errs, apperr.FieldError{
				Field:   "year",
				Message: fmt.Sprintf("year must be between %d and %d", validation.MinPublishedYear, now.Year()),
			})
		default:
			f.Year = &y
		}
	}

	if s := first(q, "limit"); s != "" {
		n, err := strconv.Atoi(s)
		switch {
		case err != nil:
			errs = append(errs, apperr.FieldError{Field: "limit", Message: "limit must be an integer"})
		case n < 1 || n > MaxLimit:
			errs = append(errs, apperr.FieldError{Field: "limit", Message: fmt.Sprintf("limit must be between 1 and %d", MaxLimit)})
		default:
			f.Limit = n
		}
	}

	page := 1
	if s := first(q, "page"); s != "" {
		n, err := strconv.Atoi(s)
		switch {
		case err != nil || n < 1:
			errs = append(errs, apperr.FieldError{Field: "page", Message: "page must be a positive integer"})
		case n > math.MaxInt/f.Limit:
			// page*limit must fit in an int so the offset cannot wrap.
			errs = append(errs, apperr.FieldError{Field: "page", Message: "page is too large"})
		default:
			page = n
		}
	}

	if len(errs) > 0 {
		return models.BookFilter{}, apperr.Validation("Invalid query parameters", errs...)
	}
	f.Offset = (page - 1) * f.Limit
	return f, nil
}

func values(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func first(q url.Values, key string) string {
	if vs := values(q, key); len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func scalarOrList(q url.Values, key string) (string, []string) {
	vs := values(q, key)
	switch len(vs) {
	case 0:
		return "", nil
	case 1:
		return vs[0], nil
	default:
		return "", vs
	}
}
