package services

import (
	"context"
	"testing"

	"bookshelf/backend/app/apperr"
	"bookshelf/backend/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestBookService_UpdateEmptyPatch(t *testing.T) {
	svc, _ := newBookService(t)
	ctx := context.Background()
	b, err := svc.Create(ctx, &models.Book{Title: "Dune", Author: "Herbert"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, b.ID, models.BookPatch{})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.EqualError(t, err, "No fields to update")
}

func TestBookService_MissingIDIsNotFound(t *testing.T) {
	svc, _ := newBookService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, 42)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = svc.Update(ctx, 42, models.BookPatch{Title: strPtr("x")})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.EqualError(t, err, "Book not found")

	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(svc.Delete(ctx, 42)))
}

func TestBookService_DeleteTwice(t *testing.T) {
	svc, _ := newBookService(t)
	ctx := context.Background()
	b, err := svc.Create(ctx, &models.Book{Title: "Dune", Author: "Herbert"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, b.ID))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(svc.Delete(ctx, b.ID)))
}

func TestBookService_WritesInvalidateGenres(t *testing.T) {
	svc, mem := newBookService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &models.Book{Title: "Dune", Author: "Herbert", Genre: strPtr("Sci-Fi")})
	require.NoError(t, err)
	noir, err := svc.Create(ctx, &models.Book{Title: "The Big Sleep", Author: "Chandler", Genre: strPtr("Noir")})
	require.NoError(t, err)

	genres, err := svc.Genres(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Noir", "Sci-Fi"}, genres)
	assert.Equal(t, 1, mem.Len())

	require.NoError(t, svc.Delete(ctx, noir.ID))
	assert.Equal(t, 0, mem.Len())

	genres, err = svc.Genres(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sci-Fi"}, genres)
}

func TestBookService_StatsCachedUntilWrite(t *testing.T) {
	svc, _ := newBookService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &models.Book{Title: "Dune", Author: "Herbert", Genre: strPtr("Sci-Fi"), PublishedYear: intPtr(1965)})
	require.NoError(t, err)

	s1, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), s1.TotalBooks)

	// served from cache: same values on a second read
	s2, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, s1, s2)

	b, err := svc.Create(ctx, &models.Book{Title: "Children of Dune", Author: "Herbert"})
	require.NoError(t, err)
	s3, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), s3.TotalBooks)
	assert.Equal(t, int64(1), s3.TotalAuthors)
	assert.Equal(t, int64(1), s3.TotalGenres)

	_, err = svc.Update(ctx, b.ID, models.BookPatch{Genre: strPtr("Epic")})
	require.NoError(t, err)
	s4, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), s4.TotalGenres)
}

func TestBookService_AuthorsSorted(t *testing.T) {
	svc, _ := newBookService(t)
	ctx := context.Background()
	for _, a := range []string{"Tolkien", "Herbert", "Gibson", "Herbert"} {
		_, err := svc.Create(ctx, &models.Book{Title: "t", Author: a})
		require.NoError(t, err)
	}
	authors, err := svc.Authors(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Gibson", "Herbert", "Tolkien"}, authors)
}
