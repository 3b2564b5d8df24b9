package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/memberboard/memberboard/internal/board"
	"github.com/memberboard/memberboard/internal/confirm"
	"github.com/memberboard/memberboard/internal/lifecycle"
	"github.com/memberboard/memberboard/internal/storage"
	"github.com/memberboard/memberboard/internal/summary"
)

type mockService struct {
	submitOut  lifecycle.Outcome
	submitErr  error
	editFields summary.FormFields
	editErr    error
	pending    confirm.Pending
	requestErr error
	confirmErr error
	cancelErr  error

	lastUserID  string
	lastActorID string
	lastPayload board.ControlPayload
}

func (m *mockService) SubmitProfile(ctx context.Context, userID string, fields summary.FormFields) (lifecycle.Outcome, error) {
	m.lastUserID = userID
	return m.submitOut, m.submitErr
}

func (m *mockService) ProfileForEdit(actorID string, payload board.ControlPayload) (storage.Profile, summary.FormFields, error) {
	m.lastActorID = actorID
	m.lastPayload = payload
	return storage.Profile{UserID: payload.UserID}, m.editFields, m.editErr
}

func (m *mockService) RequestDelete(actorID string, payload board.ControlPayload) (confirm.Pending, error) {
	m.lastActorID = actorID
	m.lastPayload = payload
	return m.pending, m.requestErr
}

func (m *mockService) ConfirmDelete(ctx context.Context, actorID string, payload board.ControlPayload) error {
	m.lastActorID = actorID
	m.lastPayload = payload
	return m.confirmErr
}

func (m *mockService) CancelDelete(actorID string, payload board.ControlPayload) error {
	m.lastActorID = actorID
	m.lastPayload = payload
	return m.cancelErr
}

type mockReader struct {
	profiles map[string]storage.Profile
}

func (m *mockReader) GetProfile(userID string) (storage.Profile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return storage.Profile{}, storage.ErrNotFound
	}
	return p, nil
}

func (m *mockReader) CountProfiles() (int, error) {
	return len(m.profiles), nil
}

func newTestHandler(svc *mockService, reader *mockReader) http.Handler {
	if reader == nil {
		reader = &mockReader{profiles: map[string]storage.Profile{}}
	}
	return NewHandler(Deps{Service: svc, Store: reader})
}

func TestHealth(t *testing.T) {
	h := newTestHandler(&mockService{}, &mockReader{profiles: map[string]storage.Profile{
		"u1": {UserID: "u1"},
	}})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	var body map[string]any
	json.NewDecoder(rr.Body).Decode(&body)
	if body["status"] != "ok" {
		t.Errorf("body = %v, want status=ok", body)
	}
	if body["profiles"] != float64(1) {
		t.Errorf("profiles = %v, want 1", body["profiles"])
	}
}

func TestSubmitProfile_Created(t *testing.T) {
	svc := &mockService{submitOut: lifecycle.Outcome{Created: true, ArtifactID: "m1"}}
	h := newTestHandler(svc, nil)

	body := `{"user_id":"u1","fields":{"name":"Ana","interests":"Go"}}`
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/profiles", strings.NewReader(body))
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if svc.lastUserID != "u1" {
		t.Errorf("user id = %q, want u1", svc.lastUserID)
	}
	var resp map[string]any
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp["artifact_id"] != "m1" {
		t.Errorf("artifact_id = %v, want m1", resp["artifact_id"])
	}
}

func TestSubmitProfile_UpdateReturnsOK(t *testing.T) {
	svc := &mockService{submitOut: lifecycle.Outcome{Created: false, ArtifactID: "m2"}}
	h := newTestHandler(svc, nil)

	body := `{"user_id":"u1","fields":{"name":"Ana"}}`
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/profiles", strings.NewReader(body))
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestSubmitProfile_MissingUserID(t *testing.T) {
	h := newTestHandler(&mockService{}, nil)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/profiles", strings.NewReader(`{"fields":{}}`))
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestSubmitProfile_Unconfigured(t *testing.T) {
	svc := &mockService{submitErr: board.ErrNotConfigured}
	h := newTestHandler(svc, nil)

	body := `{"user_id":"u1","fields":{}}`
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/profiles", strings.NewReader(body))
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
}

func controlBody(t *testing.T, actorID string, payload board.ControlPayload) string {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"actor_id": actorID,
		"payload":  json.RawMessage(payload.Encode()),
	})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return string(b)
}

func TestControl_UpdateReturnsPrefill(t *testing.T) {
	svc := &mockService{editFields: summary.FormFields{Name: "Ana", Interests: "Go"}}
	h := newTestHandler(svc, nil)

	body := controlBody(t, "u1", board.ControlPayload{Action: board.ActionUpdate, UserID: "u1"})
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/controls", strings.NewReader(body))
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	var resp struct {
		UserID string             `json:"user_id"`
		Fields summary.FormFields `json:"fields"`
	}
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Fields.Name != "Ana" {
		t.Errorf("prefill name = %q, want Ana", resp.Fields.Name)
	}
}

func TestControl_DeleteOpensConfirmation(t *testing.T) {
	svc := &mockService{pending: confirm.Pending{Token: "tok-1", UserID: "u1"}}
	h := newTestHandler(svc, nil)

	body := controlBody(t, "u1", board.ControlPayload{Action: board.ActionDelete, UserID: "u1"})
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/controls", strings.NewReader(body))
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	var resp struct {
		Token    string          `json:"token"`
		Controls []board.Control `json:"controls"`
		Private  bool            `json:"private"`
	}
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Token != "tok-1" {
		t.Errorf("token = %q, want tok-1", resp.Token)
	}
	if !resp.Private {
		t.Error("confirmation prompt should be private")
	}
	if len(resp.Controls) != 2 {
		t.Fatalf("controls = %d, want 2", len(resp.Controls))
	}
}

func TestControl_ConfirmDeletes(t *testing.T) {
	svc := &mockService{}
	h := newTestHandler(svc, nil)

	body := controlBody(t, "u1", board.ControlPayload{Action: board.ActionConfirm, UserID: "u1"})
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/controls", strings.NewReader(body))
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if svc.lastPayload.Action != board.ActionConfirm {
		t.Errorf("payload action = %q, want confirm", svc.lastPayload.Action)
	}
}

func TestControl_StaleConfirmIsGone(t *testing.T) {
	svc := &mockService{confirmErr: confirm.ErrNoPending}
	h := newTestHandler(svc, nil)

	body := controlBody(t, "u1", board.ControlPayload{Action: board.ActionConfirm, UserID: "u1"})
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/controls", strings.NewReader(body))
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusGone {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusGone)
	}
}

func TestControl_OwnershipViolation(t *testing.T) {
	svc := &mockService{requestErr: lifecycle.ErrNotOwner}
	h := newTestHandler(svc, nil)

	body := controlBody(t, "intruder", board.ControlPayload{Action: board.ActionDelete, UserID: "u1"})
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/controls", strings.NewReader(body))
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusForbidden)
	}
	if svc.lastActorID != "intruder" {
		t.Errorf("actor id = %q, want intruder", svc.lastActorID)
	}
}

func TestControl_MalformedPayload(t *testing.T) {
	h := newTestHandler(&mockService{}, nil)

	body := `{"actor_id":"u1","payload":{"action":"explode","user_id":"u1"}}`
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/controls", strings.NewReader(body))
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestGetProfile(t *testing.T) {
	reader := &mockReader{profiles: map[string]storage.Profile{
		"u1": {UserID: "u1", ArtifactID: "m1", FieldsJSON: `{"name":"Ana"}`, Summary: "hi"},
	}}
	h := newTestHandler(&mockService{}, reader)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/profiles/u1", nil)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	var resp map[string]any
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp["artifact_id"] != "m1" {
		t.Errorf("artifact_id = %v, want m1", resp["artifact_id"])
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	h := newTestHandler(&mockService{}, nil)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/profiles/missing", nil)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestBearerAuth(t *testing.T) {
	h := NewHandler(Deps{
		Service: &mockService{},
		Store:   &mockReader{profiles: map[string]storage.Profile{}},
		Token:   "secret",
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/profiles/u1", nil)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/profiles/u1", nil)
	req.Header.Set("Authorization", "Bearer secret")
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("authenticated status = %d, want %d (empty store)", rr.Code, http.StatusNotFound)
	}

	// Health stays open for probes.
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("health status = %d, want %d", rr.Code, http.StatusOK)
	}
}
