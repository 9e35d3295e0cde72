package dto

import (
	"net/url"
	"testing"
	"time"

	"bookshelf/backend/app/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func parse(t *testing.T, raw string) ([]apperr.FieldError, error) {
	t.Helper()
	q, err := url.ParseQuery(raw)
	require.NoError(t, err)
	_, err = parseBookQuery(q, fixedNow)
	if e, ok := apperr.As(err); ok {
		return e.Fields, err
	}
	return nil, err
}

func TestParseBookQuery_Defaults(t *testing.T) {
	f, err := parseBookQuery(url.Values{}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, f.Limit)
	assert.Equal(t, 0, f.Offset)
	assert.Empty(t, f.Search)
	assert.Nil(t, f.Year)
	assert.Nil(t, f.Genres)
}

func TestParseBookQuery_ScalarAndList(t *testing.T) {
	q, _ := url.ParseQuery("genre=Sci-Fi&genre=Fantasy&author=Herbert&search=dune")
	f, err := parseBookQuery(q, fixedNow)
	require.NoError(t, err)

	assert.Empty(t, f.Genre)
	assert.Equal(t, []string{"Sci-Fi", "Fantasy"}, f.Genres)
	assert.Equal(t, "Herbert", f.Author)
	assert.Nil(t, f.Authors)
	assert.Equal(t, "dune", f.Search)
}

func TestParseBookQuery_EmptyValuesIgnored(t *testing.T) {
	q, _ := url.ParseQuery("genre=&genre=Noir&search=&year=&limit=&page=")
	f, err := parseBookQuery(q, fixedNow)
	require.NoError(t, err)

	assert.Equal(t, "Noir", f.Genre)
	assert.Nil(t, f.Genres)
	assert.Empty(t, f.Search)
	assert.Equal(t, DefaultLimit, f.Limit)
}

func TestParseBookQuery_PageToOffset(t *testing.T) {
	q, _ := url.ParseQuery("page=3&limit=10&year=1965")
	f, err := parseBookQuery(q, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 10, f.Limit)
	assert.Equal(t, 20, f.Offset)
	require.NotNil(t, f.Year)
	assert.Equal(t, 1965, *f.Year)
}

func TestParseBookQuery_RejectsWithoutClamping(t *testing.T) {
	tests := []struct {
		raw   string
		field string
	}{
		{"limit=0", "limit"},
		{"limit=101", "limit"},
		{"limit=ten", "limit"},
		{"page=0", "page"},
		{"page=-2", "page"},
		{"page=abc", "page"},
		{"page=9223372036854775807", "page"},
		{"page=922337203685477581&limit=10", "page"},
		{"page=99999999999999999999", "page"},
		{"year=19x5", "year"},
		{"year=999", "year"},
		{"year=2026", "year"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			fields, err := parse(t, tt.raw)
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			require.Len(t, fields, 1)
			assert.Equal(t, tt.field, fields[0].Field)
		})
	}
}

func TestParseBookQuery_ReportsEveryField(t *testing.T) {
	fields, err := parse(t, "limit=500&page=0&year=abc")
	require.Error(t, err)

	var names []string
	for _, f := range fields {
		names = append(names, f.Field)
	}
	assert.ElementsMatch(t, []string{"limit", "page", "year"}, names)
}

func TestParseBookQuery_LimitBounds(t *testing.T) {
	for _, raw := range []string{"limit=1", "limit=100"} {
		q, _ := url.ParseQuery(raw)
		_, err := parseBookQuery(q, fixedNow)
		assert.NoError(t, err, raw)
	}
}
