package repo

import (
	"fmt"
	"strings"

	"bookshelf/backend/app/models"
)

const bookColumns = "id, title, author, genre, published_year, created_at, updated_at"

// WhereBuilder collects AND-ed conditions with ? markers and their args.
//
//	wb := NewWhereBuilder()
//	wb.AddContains("genre", "sci")
//	wb.AddIn("author", []string{"Herbert", "Le Guin"})
//	where, args := wb.Build()
//	// LOWER(genre) LIKE ? AND author IN (?, ?)
type WhereBuilder struct {
	clauses []string
	args    []any
}

func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{}
}

// AddClause adds a raw condition with its args.
func (wb *WhereBuilder) AddClause(clause string, args ...any) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddContains adds a case-insensitive substring match on column.
// Empty values are skipped.
func (wb *WhereBuilder) AddContains(column, value string) *WhereBuilder {
	if value == "" {
		return wb
	}
	return wb.AddClause(fmt.Sprintf("LOWER(%s) LIKE ?", column), likePattern(value))
}

// AddSearch matches value as a substring of any of columns.
func (wb *WhereBuilder) AddSearch(value string, columns ...string) *WhereBuilder {
	if value == "" || len(columns) == 0 {
		return wb
	}
	parts := make([]string, len(columns))
	args := make([]any, len(columns))
	pattern := likePattern(value)
	for i, col := range columns {
		parts[i] = fmt.Sprintf("LOWER(%s) LIKE ?", col)
		args[i] = pattern
	}
	return wb.AddClause("("+strings.Join(parts, " OR ")+")", args...)
}

// AddIn adds an exact membership test. An empty list is skipped.
func (wb *WhereBuilder) AddIn(column string, values []string) *WhereBuilder {
	if len(values) == 0 {
		return wb
	}
	placeholders := make([]string, len(values))
	args := make([]any, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		args[i] = v
	}
	return wb.AddClause(fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")), args...)
}

// Build joins the conditions with AND. It returns "1=1" when empty.
func (wb *WhereBuilder) Build() (string, []any) {
	if len(wb.clauses) == 0 {
		return "1=1", []any{}
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

func (wb *WhereBuilder) Count() int { return len(wb.clauses) }

func (wb *WhereBuilder) IsEmpty() bool { return len(wb.clauses) == 0 }

func likePattern(v string) string {
	return "%" + strings.ToLower(v) + "%"
}

// BookWhere translates a listing filter into conditions.
func BookWhere(f models.BookFilter) *WhereBuilder {
	wb := NewWhereBuilder()
	wb.AddSearch(f.Search, "title", "author")
	if len(f.Genres) > 0 {
		wb.AddIn("genre", f.Genres)
	} else {
		wb.AddContains("genre", f.Genre)
	}
	if len(f.Authors) > 0 {
		wb.AddIn("author", f.Authors)
	} else {
		wb.AddContains("author", f.Author)
	}
	if f.Year != nil {
		wb.AddClause("published_year = ?", *f.Year)
	}
	return wb
}

// ListQuery is a page query and the count query sharing one WHERE clause.
type ListQuery struct {
	Select     string
	SelectArgs []any
	Count      string
	CountArgs  []any
}

// BuildListQuery renders the page and count statements for f in dialect d.
// Rows are ordered newest first with id as the tie breaker.
func BuildListQuery(d Dialect, f models.BookFilter) ListQuery {
	where, args := BookWhere(f).Build()

	sel := fmt.Sprintf("SELECT %s FROM books WHERE %s ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?", bookColumns, where)
	selArgs := make([]any, 0, len(args)+2)
	selArgs = append(selArgs, args...)
	selArgs = append(selArgs, f.Limit, f.Offset)

	count := fmt.Sprintf("SELECT COUNT(*) FROM books WHERE %s", where)
	countArgs := make([]any, len(args))
	copy(countArgs, args)

	return ListQuery{
		Select:     d.Rebind(sel),
		SelectArgs: selArgs,
		Count:      d.Rebind(count),
		CountArgs:  countArgs,
	}
}
