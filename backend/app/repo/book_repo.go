package repo

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"bookshelf/backend/app/models"
)

// RecentWindow is how far back Stats counts a book as recent.
const RecentWindow = 30 * 24 * time.Hour

type BookRepository struct {
	db      *sql.DB
	dialect Dialect
	timeout time.Duration
	now     func() time.Time
}

func NewBookRepository(db *sql.DB, dialect Dialect, timeout time.Duration) *BookRepository {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &BookRepository{db: db, dialect: dialect, timeout: timeout, now: time.Now}
}

// WithClock replaces the timestamp source. Used by tests and seeding.
func (r *BookRepository) WithClock(now func() time.Time) *BookRepository {
	r.now = now
	return r
}

func (r *BookRepository) Dialect() Dialect { return r.dialect }

func (r *BookRepository) stamp() time.Time { return r.now().UTC() }

func (r *BookRepository) List(ctx context.Context, f models.BookFilter) ([]models.Book, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	q := BuildListQuery(r.dialect, f)

	var total int64
	if err := r.db.QueryRowContext(ctx, q.Count, q.CountArgs...).Scan(&total); err != nil {
		return nil, 0, wrapErr("count books", err)
	}

	rows, err := r.db.QueryContext(ctx, q.Select, q.SelectArgs...)
	if err != nil {
		return nil, 0, wrapErr("list books", err)
	}
	defer rows.Close()

	books := make([]models.Book, 0, f.Limit)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, wrapErr("scan book", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapErr("list books", err)
	}
	return books, total, nil
}

func (r *BookRepository) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.getByID(ctx, id)
}

func (r *BookRepository) getByID(ctx context.Context, id int64) (*models.Book, error) {
	query := r.dialect.Rebind("SELECT " + bookColumns + " FROM books WHERE id = ?")
	b, err := scanBook(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapErr("get book", err)
	}
	return &b, nil
}

func (r *BookRepository) Create(ctx context.Context, b *models.Book) (*models.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	now := r.stamp()
	id, err := r.dialect.InsertID(ctx, r.db,
		"INSERT INTO books (title, author, genre, published_year, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		b.Title, b.Author, nullString(b.Genre), nullInt(b.PublishedYear), now, now)
	if err != nil {
		return nil, wrapErr("create book", err)
	}
	return r.getByID(ctx, id)
}

// Update applies patch to the book with id. The caller must reject empty
// patches; an empty one here still bumps updated_at.
func (r *BookRepository) Update(ctx context.Context, id int64, patch models.BookPatch) (*models.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var sets []string
	var args []any
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Author != nil {
		sets = append(sets, "author = ?")
		args = append(args, *patch.Author)
	}
	switch {
	case patch.ClearGenre:
		sets = append(sets, "genre = NULL")
	case patch.Genre != nil:
		sets = append(sets, "genre = ?")
		args = append(args, *patch.Genre)
	}
	switch {
	case patch.ClearYear:
		sets = append(sets, "published_year = NULL")
	case patch.PublishedYear != nil:
		sets = append(sets, "published_year = ?")
		args = append(args, *patch.PublishedYear)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, r.stamp(), id)

	query := r.dialect.Rebind("UPDATE books SET " + strings.Join(sets, ", ") + " WHERE id = ?")
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("update book", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, wrapErr("update book", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return r.getByID(ctx, id)
}

// Delete removes the book and reports whether a row existed.
func (r *BookRepository) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, r.dialect.Rebind("DELETE FROM books WHERE id = ?"), id)
	if err != nil {
		return false, wrapErr("delete book", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapErr("delete book", err)
	}
	return n > 0, nil
}

func (r *BookRepository) DistinctGenres(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "genre")
}

func (r *BookRepository) DistinctAuthors(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "author")
}

func (r *BookRepository) distinct(ctx context.Context, column string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := "SELECT DISTINCT " + column + " FROM books WHERE " + column + " IS NOT NULL AND " + column + " <> ''"
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapErr("distinct "+column, err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, wrapErr("distinct "+column, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("distinct "+column, err)
	}
	sort.Strings(out)
	return out, nil
}

func (r *BookRepository) Stats(ctx context.Context) (*models.BookStats, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := r.dialect.Rebind(`SELECT COUNT(*),
		COUNT(DISTINCT author),
		COUNT(DISTINCT NULLIF(genre, '')),
		COUNT(CASE WHEN created_at >= ? THEN 1 END)
		FROM books`)
	var s models.BookStats
	since := r.stamp().Add(-RecentWindow)
	if err := r.db.QueryRowContext(ctx, query, since).Scan(&s.TotalBooks, &s.TotalAuthors, &s.TotalGenres, &s.RecentBooks); err != nil {
		return nil, wrapErr("book stats", err)
	}
	return &s, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (models.Book, error) {
	var (
		b     models.Book
		genre sql.NullString
		year  sql.NullInt64
	)
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &genre, &year, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return b, err
	}
	if genre.Valid {
		g := genre.String
		b.Genre = &g
	}
	if year.Valid {
		y := int(year.Int64)
		b.PublishedYear = &y
	}
	return b, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}
