package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/memberboard/memberboard/internal/board"
	"github.com/memberboard/memberboard/internal/confirm"
	"github.com/memberboard/memberboard/internal/lifecycle"
	"github.com/memberboard/memberboard/internal/storage"
)

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}

// writeOperationError maps orchestrator errors to HTTP responses. Messages
// stay non-technical; the wrapped detail goes to the log, not the user.
func writeOperationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrNotOwner):
		httpError(w, http.StatusForbidden, "ownership_error", "this profile belongs to another member")
	case errors.Is(err, lifecycle.ErrNoProfile), errors.Is(err, storage.ErrNotFound):
		httpError(w, http.StatusNotFound, "not_found_error", "no profile exists for this member")
	case errors.Is(err, confirm.ErrNoPending):
		httpError(w, http.StatusGone, "stale_interaction", "nothing is pending confirmation; the request may have expired or already been handled")
	case errors.Is(err, board.ErrNotConfigured):
		httpError(w, http.StatusServiceUnavailable, "configuration_error", "no board channel is configured; ask an operator to set one")
	case errors.Is(err, lifecycle.ErrPartialState), errors.Is(err, lifecycle.ErrReplaceFailed):
		httpError(w, http.StatusBadGateway, "api_error", "something went wrong updating the profile card; please contact an operator")
	case errors.Is(err, board.ErrChannelUnreachable), errors.Is(err, board.ErrPublishFailed):
		httpError(w, http.StatusBadGateway, "api_error", "the profile board could not be reached; please try again later")
	default:
		httpError(w, http.StatusInternalServerError, "api_error", "internal error")
	}
}
