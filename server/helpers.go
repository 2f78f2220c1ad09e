package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/randalmurphal/tidynote"
	tidyerrors "github.com/randalmurphal/tidynote/errors"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	if r.Body == nil {
		return io.EOF
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

func writeBadRequest(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "too_large", Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()})
}

func writeError(w http.ResponseWriter, err error) {
	status, payload := mapError(err)
	writeJSON(w, status, payload)
}

func mapError(err error) (int, errorResponse) {
	switch {
	case errors.Is(err, tidynote.ErrEmptyInput):
		return http.StatusBadRequest, errorResponse{Error: "empty_input", Message: err.Error()}
	case errors.Is(err, tidynote.ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: "not_found", Message: err.Error()}
	case errors.Is(err, tidynote.ErrNoCompleter), tidyerrors.IsConfigError(err):
		return http.StatusServiceUnavailable, errorResponse{Error: "not_configured", Message: "completion API key is not configured"}
	case tidyerrors.IsCompletionError(err):
		return http.StatusBadGateway, errorResponse{Error: "completion_failed", Message: err.Error()}
	case tidyerrors.IsStorageError(err), tidyerrors.IsConnectionError(err):
		return http.StatusServiceUnavailable, errorResponse{Error: "storage_unavailable", Message: err.Error()}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: err.Error()}
	}
}
