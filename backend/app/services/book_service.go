package services

import (
	"context"
	"errors"

	"bookshelf/backend/app/apperr"
	"bookshelf/backend/app/cache"
	"bookshelf/backend/app/models"
	"bookshelf/backend/app/repo"

	"github.com/rs/zerolog"
)

var errBookNotFound = apperr.NotFound("Book not found")

// BookService owns the book catalogue. Aggregates (stats, distinct genres
// and authors) are read through the cache, and every write invalidates it
// before returning.
type BookService struct {
	books *repo.BookRepository
	cache cache.Cache
	log   zerolog.Logger
}

func NewBookService(books *repo.BookRepository, c cache.Cache, log zerolog.Logger) *BookService {
	return &BookService{books: books, cache: c, log: log.With().Str("component", "books").Logger()}
}

func (s *BookService) List(ctx context.Context, f models.BookFilter) ([]models.Book, int64, error) {
	return s.books.List(ctx, f)
}

func (s *BookService) Get(ctx context.Context, id int64) (*models.Book, error) {
	b, err := s.books.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, errBookNotFound
	}
	return b, err
}

func (s *BookService) Create(ctx context.Context, b *models.Book) (*models.Book, error) {
	created, err := s.books.Create(ctx, b)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *BookService) Update(ctx context.Context, id int64, patch models.BookPatch) (*models.Book, error) {
	if patch.Empty() {
		return nil, apperr.Validation("No fields to update")
	}
	updated, err := s.books.Update(ctx, id, patch)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, errBookNotFound
	}
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *BookService) Delete(ctx context.Context, id int64) error {
	ok, err := s.books.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return errBookNotFound
	}
	s.invalidate(ctx)
	return nil
}

func (s *BookService) Genres(ctx context.Context) ([]string, error) {
	return cached(ctx, s, cache.KeyGenres, s.books.DistinctGenres)
}

func (s *BookService) Authors(ctx context.Context) ([]string, error) {
	return cached(ctx, s, cache.KeyAuthors, s.books.DistinctAuthors)
}

func (s *BookService) Stats(ctx context.Context) (*models.BookStats, error) {
	return cached(ctx, s, cache.KeyStats, s.books.Stats)
}

// InvalidateCache drops every cached aggregate.
func (s *BookService) InvalidateCache(ctx context.Context) { s.invalidate(ctx) }

func (s *BookService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(context.WithoutCancel(ctx)); err != nil {
		s.log.Warn().Err(err).Msg("cache invalidate failed")
	}
}

// cached serves key from the cache or computes and stores it. Cache errors
// are logged and fall through to the database.
func cached[T any](ctx context.Context, s *BookService, key string, load func(context.Context) (T, error)) (T, error) {
	var v T
	if hit, err := s.cache.Get(ctx, key, &v); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if hit {
		return v, nil
	}

	gen, genErr := s.cache.Generation(ctx)
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if genErr != nil {
		s.log.Warn().Err(genErr).Str("key", key).Msg("cache generation unavailable")
		return v, nil
	}
	if err := s.cache.Set(ctx, gen, key, v); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return v, nil
}
