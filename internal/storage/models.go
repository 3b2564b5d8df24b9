package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Profile is the persisted canonical state for one community member.
// ArtifactID is empty when no card is currently posted for the member.
type Profile struct {
	UserID          string
	ArtifactID      string
	FieldsJSON      string // form fields stored as a JSON object
	Summary         string
	ExperienceLevel string
	Skills          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
