// Package response writes the JSON envelopes every endpoint answers with.
package response

import (
	"net/http"

	"bookshelf/backend/app/apperr"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Envelope is the common response body.
type Envelope struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
	Offline bool                `json:"offline,omitempty"`
}

// JSON writes v as the response body with status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

func OKMessage(w http.ResponseWriter, data any, msg string) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data, Message: msg})
}

func Created(w http.ResponseWriter, data any, msg string) {
	JSON(w, http.StatusCreated, Envelope{Success: true, Data: data, Message: msg})
}

func Fail(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, Envelope{Success: false, Message: msg})
}

func Unavailable(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusServiceUnavailable, Envelope{Success: false, Message: msg, Offline: true})
}

// Error maps err to its status. Internal errors are logged and answered
// with a generic message.
func Error(w http.ResponseWriter, log zerolog.Logger, err error) {
	e, ok := apperr.As(err)
	if !ok || e.Kind == apperr.KindInternal {
		log.Error().Err(err).Msg("request failed")
		Fail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	switch e.Kind {
	case apperr.KindValidation:
		JSON(w, http.StatusBadRequest, Envelope{Success: false, Message: e.Message, Errors: e.Fields})
	case apperr.KindUnavailable:
		log.Warn().Err(err).Msg("database unavailable")
		Unavailable(w, e.Message)
	default:
		Fail(w, e.Kind.HTTPStatus(), e.Message)
	}
}
