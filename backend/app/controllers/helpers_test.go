package controllers

import (
	"testing"

	"bookshelf/backend/app/apperr"
	"bookshelf/backend/app/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalBody_TypeMismatchNamesField(t *testing.T) {
	tests := []struct {
		body    string
		field   string
		message string
	}{
		{`{"title":"Dune","author":"Herbert","published_year":"abc"}`, "published_year", "published_year must be an integer"},
		{`{"title":42,"author":"Herbert"}`, "title", "title must be a string"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			var req dto.CreateBookRequest
			err := unmarshalBody([]byte(tt.body), &req)
			require.Error(t, err)
			e, ok := apperr.As(err)
			require.True(t, ok)
			assert.Equal(t, apperr.KindValidation, e.Kind)
			require.Len(t, e.Fields, 1)
			assert.Equal(t, tt.field, e.Fields[0].Field)
			assert.Equal(t, tt.message, e.Fields[0].Message)
		})
	}
}

func TestUnmarshalBody_MalformedJSON(t *testing.T) {
	var req dto.CreateBookRequest
	err := unmarshalBody([]byte(`{"title":`), &req)
	assert.Same(t, errBadBody, err)

	require.NoError(t, unmarshalBody([]byte(`{"title":"Dune","author":"Herbert"}`), &req))
	assert.Equal(t, "Dune", req.Title)
}

func TestJSONFieldName(t *testing.T) {
	var req dto.UpdateBookRequest
	assert.Equal(t, "published_year", jsonFieldName(&req, "PublishedYear"))
	assert.Equal(t, "published_year", jsonFieldName(&req, "UpdateBookRequest.PublishedYear"))
	assert.Equal(t, "Unknown", jsonFieldName(&req, "Unknown"))
}
