package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/memberboard/memberboard/internal/board"
	"github.com/memberboard/memberboard/internal/confirm"
	"github.com/memberboard/memberboard/internal/lifecycle"
	"github.com/memberboard/memberboard/internal/storage"
	"github.com/memberboard/memberboard/internal/summary"
)

const maxRequestBodySize = 1 << 20 // 1MB

// ProfileService is the slice of the orchestrator the HTTP layer needs.
// Implemented by lifecycle.Orchestrator.
type ProfileService interface {
	SubmitProfile(ctx context.Context, userID string, fields summary.FormFields) (lifecycle.Outcome, error)
	ProfileForEdit(actorID string, payload board.ControlPayload) (storage.Profile, summary.FormFields, error)
	RequestDelete(actorID string, payload board.ControlPayload) (confirm.Pending, error)
	ConfirmDelete(ctx context.Context, actorID string, payload board.ControlPayload) error
	CancelDelete(actorID string, payload board.ControlPayload) error
}

// ProfileReader is the read-only store access used by GET endpoints.
// Implemented by storage.Store.
type ProfileReader interface {
	GetProfile(userID string) (storage.Profile, error)
	CountProfiles() (int, error)
}

// Deps holds dependencies for the HTTP handler.
type Deps struct {
	Service ProfileService
	Store   ProfileReader
	Token   string
}

// NewHandler builds the HTTP surface: profile form submissions, control
// presses, and read endpoints.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLog)
	r.Get("/health", handleHealth(deps))

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))
		r.Post("/profiles", handleSubmitProfile(deps))
		r.Post("/controls", handleControl(deps))
		r.Get("/profiles/{userID}", handleGetProfile(deps))
	})

	return r
}

// requestLog tags each request with an id and logs it at debug level.
func requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := uuid.NewString()
		next.ServeHTTP(w, r)
		slog.Debug("http request",
			"request_id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func handleHealth(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := deps.Store.CountProfiles()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "storage unavailable")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"status": "ok", "profiles": n})
	}
}

// SubmitRequest is a profile form submission: create or update.
type SubmitRequest struct {
	UserID string             `json:"user_id"`
	Fields summary.FormFields `json:"fields"`
}

func handleSubmitProfile(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req SubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.UserID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "user_id is required")
			return
		}

		out, err := deps.Service.SubmitProfile(r.Context(), req.UserID, req.Fields)
		if err != nil {
			slog.Warn("profile submission failed", "user_id", req.UserID, "error", err)
			writeOperationError(w, err)
			return
		}

		code := http.StatusOK
		if out.Created {
			code = http.StatusCreated
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]any{
			"user_id":       req.UserID,
			"artifact_id":   out.ArtifactID,
			"created":       out.Created,
			"used_fallback": out.UsedFallback,
		})
	}
}

// ControlRequest is a control press relayed from the chat platform.
type ControlRequest struct {
	ActorID string          `json:"actor_id"`
	Payload json.RawMessage `json:"payload"`
}

func handleControl(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req ControlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.ActorID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "actor_id is required")
			return
		}

		payload, err := board.DecodePayload(string(req.Payload))
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid control payload: %v", err)
			return
		}

		switch payload.Action {
		case board.ActionUpdate:
			handleUpdateControl(deps, w, req.ActorID, payload)
		case board.ActionDelete:
			handleDeleteControl(deps, w, req.ActorID, payload)
		case board.ActionConfirm:
			if err := deps.Service.ConfirmDelete(r.Context(), req.ActorID, payload); err != nil {
				writeOperationError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"deleted": true})
		case board.ActionCancel:
			if err := deps.Service.CancelDelete(req.ActorID, payload); err != nil {
				writeOperationError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"cancelled": true})
		}
	}
}

// handleUpdateControl returns the stored fields so the client can prefill
// the edit form; the actual update arrives as a new POST /profiles.
func handleUpdateControl(deps Deps, w http.ResponseWriter, actorID string, payload board.ControlPayload) {
	_, fields, err := deps.Service.ProfileForEdit(actorID, payload)
	if err != nil {
		writeOperationError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"user_id": payload.UserID,
		"fields":  fields,
	})
}

// handleDeleteControl opens the confirmation gate and returns the
// confirm/cancel controls for the requester's private reply.
func handleDeleteControl(deps Deps, w http.ResponseWriter, actorID string, payload board.ControlPayload) {
	pending, err := deps.Service.RequestDelete(actorID, payload)
	if err != nil {
		writeOperationError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"token":    pending.Token,
		"message":  "Are you sure you want to delete your profile? This cannot be undone.",
		"controls": board.ConfirmControls(payload.UserID),
		"private":  true,
	})
}

func handleGetProfile(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")

		p, err := deps.Store.GetProfile(userID)
		if err != nil {
			writeOperationError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(profileView(p))
	}
}
