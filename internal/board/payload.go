package board

import (
	"encoding/json"
	"fmt"
)

// Action identifies what a pressed control asks for.
type Action string

const (
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionConfirm Action = "confirm"
	ActionCancel  Action = "cancel"
)

// ControlPayload is the typed payload attached to every control at publish
// time. Ownership checks decode it structurally; no positional string
// splitting of composite identifiers.
type ControlPayload struct {
	Action Action `json:"action"`
	UserID string `json:"user_id"`
}

// Encode serializes the payload for embedding in a control.
func (p ControlPayload) Encode() string {
	b, _ := json.Marshal(p)
	return string(b)
}

// DecodePayload parses and validates a control payload.
func DecodePayload(raw string) (ControlPayload, error) {
	var p ControlPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return ControlPayload{}, fmt.Errorf("parsing control payload: %w", err)
	}
	switch p.Action {
	case ActionUpdate, ActionDelete, ActionConfirm, ActionCancel:
	default:
		return ControlPayload{}, fmt.Errorf("unknown control action %q", p.Action)
	}
	if p.UserID == "" {
		return ControlPayload{}, fmt.Errorf("control payload missing user_id")
	}
	return p, nil
}
