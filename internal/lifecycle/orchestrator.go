package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/memberboard/memberboard/internal/board"
	"github.com/memberboard/memberboard/internal/confirm"
	"github.com/memberboard/memberboard/internal/storage"
	"github.com/memberboard/memberboard/internal/summary"
)

var (
	// ErrNotOwner is returned when the acting identity differs from the
	// member tagged on the pressed control. No state changes.
	ErrNotOwner = errors.New("profile belongs to another member")
	// ErrNoProfile is returned when an update or delete targets a member
	// with no stored record.
	ErrNoProfile = errors.New("no profile exists for this member")
	// ErrReplaceFailed is returned when an update retracted (or tried to
	// retract) the old card but publishing the new one failed. The old
	// record is left untouched; recovery is manual.
	ErrReplaceFailed = errors.New("replacing the profile card failed")
	// ErrPartialState is returned when a card was posted but the record
	// save failed afterwards. The posted card is not rolled back.
	ErrPartialState = errors.New("profile card posted but record save failed")
)

// Store is the slice of the profile store the orchestrator needs.
// Implemented by storage.Store.
type Store interface {
	GetProfile(userID string) (storage.Profile, error)
	SaveProfile(p storage.Profile) error
	DeleteProfile(userID string) error
}

// Publisher manages the posted artifact for a profile.
// Implemented by board.Publisher.
type Publisher interface {
	Ready() error
	Publish(ctx context.Context, card board.Card) (string, error)
	Retract(ctx context.Context, artifactID string) error
}

// Generator produces summary content from form fields. It never fails.
// Implemented by summary.Generator.
type Generator interface {
	Generate(ctx context.Context, fields summary.FormFields) summary.Result
}

// Outcome describes a completed submit operation.
type Outcome struct {
	Created      bool
	ArtifactID   string
	UsedFallback bool
}

// Orchestrator is the profile lifecycle state machine. It owns every
// mutation of profile records: create, update, and confirmed delete. The
// store is re-read at the start of each operation; there is no per-user
// lock, so concurrent updates for the same member resolve last-writer-wins.
type Orchestrator struct {
	store     Store
	publisher Publisher
	generator Generator
	confirms  *confirm.Registry
}

// New wires an Orchestrator. All capabilities are constructed by the
// caller and passed in; nothing here reaches for globals.
func New(store Store, publisher Publisher, generator Generator, confirms *confirm.Registry) *Orchestrator {
	return &Orchestrator{
		store:     store,
		publisher: publisher,
		generator: generator,
		confirms:  confirms,
	}
}

// SubmitProfile handles a profile form submission, creating the member's
// profile or replacing the existing one. The record is only written after
// the new card is confirmed published, so a publish failure leaves no
// partial state on create and the old record untouched on update.
func (o *Orchestrator) SubmitProfile(ctx context.Context, userID string, fields summary.FormFields) (Outcome, error) {
	if userID == "" {
		return Outcome{}, fmt.Errorf("user id is required")
	}
	if err := o.publisher.Ready(); err != nil {
		return Outcome{}, err
	}

	existing, err := o.store.GetProfile(userID)
	creating := false
	if errors.Is(err, storage.ErrNotFound) {
		creating = true
	} else if err != nil {
		return Outcome{}, fmt.Errorf("reading profile: %w", err)
	}

	// Replace path: take the old card down first. Retraction failure is
	// deliberately discarded — an orphaned old card is cosmetic.
	if !creating && existing.ArtifactID != "" {
		if err := o.publisher.Retract(ctx, existing.ArtifactID); err != nil {
			slog.Warn("retracting old profile card failed, continuing",
				"user_id", userID, "artifact_id", existing.ArtifactID, "error", err)
		}
	}

	res := o.generator.Generate(ctx, fields)
	if res.UsedFallback {
		slog.Info("profile summary used fallback content", "user_id", userID)
	}

	card := board.Card{
		UserID:  userID,
		Fields:  fields.Normalized(),
		Summary: res.Summary,
		Level:   res.Level,
		Skills:  res.Skills,
	}

	artifactID, err := o.publisher.Publish(ctx, card)
	if err != nil {
		if creating {
			return Outcome{}, fmt.Errorf("publishing profile card: %w", err)
		}
		return Outcome{}, fmt.Errorf("%w: %v", ErrReplaceFailed, err)
	}

	record := storage.Profile{
		UserID:          userID,
		ArtifactID:      artifactID,
		FieldsJSON:      encodeFields(fields),
		Summary:         res.Summary,
		ExperienceLevel: string(res.Level),
		Skills:          res.Skills,
	}
	if err := o.store.SaveProfile(record); err != nil {
		// The posted card cannot be atomically undone; report instead of
		// retrying either effect.
		return Outcome{}, fmt.Errorf("%w: artifact %s: %v", ErrPartialState, artifactID, err)
	}

	slog.Info("profile published", "user_id", userID, "artifact_id", artifactID, "created", creating)
	return Outcome{Created: creating, ArtifactID: artifactID, UsedFallback: res.UsedFallback}, nil
}

// ProfileForEdit returns the stored record and decoded form fields after an
// update control press, so the caller can prefill the edit form. Read-only.
func (o *Orchestrator) ProfileForEdit(actorID string, payload board.ControlPayload) (storage.Profile, summary.FormFields, error) {
	if payload.UserID != actorID {
		return storage.Profile{}, summary.FormFields{}, ErrNotOwner
	}

	rec, err := o.store.GetProfile(payload.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.Profile{}, summary.FormFields{}, ErrNoProfile
	}
	if err != nil {
		return storage.Profile{}, summary.FormFields{}, fmt.Errorf("reading profile: %w", err)
	}
	return rec, decodeFields(rec.FieldsJSON), nil
}

// RequestDelete handles a delete control press: after the ownership check
// it opens a pending confirmation for the member. No record change yet.
func (o *Orchestrator) RequestDelete(actorID string, payload board.ControlPayload) (confirm.Pending, error) {
	if payload.UserID != actorID {
		return confirm.Pending{}, ErrNotOwner
	}
	if err := o.publisher.Ready(); err != nil {
		return confirm.Pending{}, err
	}

	if _, err := o.store.GetProfile(payload.UserID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return confirm.Pending{}, ErrNoProfile
		}
		return confirm.Pending{}, fmt.Errorf("reading profile: %w", err)
	}

	return o.confirms.Begin(actorID), nil
}

// ConfirmDelete resolves a pending confirmation and destroys the profile:
// the card is retracted best-effort and the record is deleted. Confirming
// with nothing pending (replay, expiry) returns confirm.ErrNoPending, which
// callers surface as staleness rather than a fault.
func (o *Orchestrator) ConfirmDelete(ctx context.Context, actorID string, payload board.ControlPayload) error {
	if payload.UserID != actorID {
		return ErrNotOwner
	}
	if err := o.publisher.Ready(); err != nil {
		return err
	}

	if _, err := o.confirms.Take(payload.UserID, actorID); err != nil {
		if errors.Is(err, confirm.ErrNotOwner) {
			return ErrNotOwner
		}
		return err
	}

	rec, err := o.store.GetProfile(payload.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNoProfile
	}
	if err != nil {
		return fmt.Errorf("reading profile: %w", err)
	}

	if rec.ArtifactID != "" {
		if err := o.publisher.Retract(ctx, rec.ArtifactID); err != nil {
			slog.Warn("retracting profile card on delete failed, continuing",
				"user_id", rec.UserID, "artifact_id", rec.ArtifactID, "error", err)
		}
	}

	if err := o.store.DeleteProfile(rec.UserID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("deleting profile record: %w", err)
	}

	slog.Info("profile deleted", "user_id", rec.UserID)
	return nil
}

// CancelDelete discards the pending confirmation without touching the
// record or the card.
func (o *Orchestrator) CancelDelete(actorID string, payload board.ControlPayload) error {
	if payload.UserID != actorID {
		return ErrNotOwner
	}
	if _, err := o.confirms.Take(payload.UserID, actorID); err != nil {
		if errors.Is(err, confirm.ErrNotOwner) {
			return ErrNotOwner
		}
		return err
	}
	return nil
}

func encodeFields(fields summary.FormFields) string {
	b, _ := json.Marshal(fields.Normalized())
	return string(b)
}

// decodeFields tolerates malformed stored JSON: the edit form then starts
// blank instead of the operation failing.
func decodeFields(raw string) summary.FormFields {
	var f summary.FormFields
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		slog.Warn("malformed stored form fields, starting blank", "error", err)
		return summary.FormFields{}
	}
	return f
}
