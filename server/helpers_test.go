package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/randalmurphal/tidynote"
	"github.com/randalmurphal/tidynote/artifact"
	tidyerrors "github.com/randalmurphal/tidynote/errors"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"empty input", tidynote.ErrEmptyInput, http.StatusBadRequest, "empty_input"},
		{"not found", fmt.Errorf("get 1: %w", tidynote.ErrNotFound), http.StatusNotFound, "not_found"},
		{"no completer", tidynote.ErrNoCompleter, http.StatusServiceUnavailable, "not_configured"},
		{"completion", fmt.Errorf("%w: boom", tidyerrors.ErrCompletionFailed), http.StatusBadGateway, "completion_failed"},
		{"storage down", fmt.Errorf("%w: dial tcp 10.0.0.1:5432: connection refused", artifact.ErrPersistence), http.StatusServiceUnavailable, "storage_unavailable"},
		{"storage wrapped", tidyerrors.WrapStorageError(errors.New("open notes.db: locked"), "sqlite"), http.StatusServiceUnavailable, "storage_unavailable"},
		{"other", errors.New("disk full"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := mapError(tt.err)
			if status != tt.wantStatus || resp.Error != tt.wantCode {
				t.Errorf("mapError() = %d %q, want %d %q", status, resp.Error, tt.wantStatus, tt.wantCode)
			}
		})
	}
}
