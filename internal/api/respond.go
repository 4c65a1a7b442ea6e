package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/easybac/landing/internal/form"
)

var successBody = map[string]bool{"success": true}

type errorBody struct {
	Error string `json:"error"`
}

type invalidBody struct {
	Error  string            `json:"error"`
	Fields []form.ErrorField `json:"fields"`
}

type coursesBody struct {
	Courses []string `json:"courses"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func asValidation(err error) (*form.ValidationError, bool) {
	var ve *form.ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}
