package board

import (
	"fmt"
	"strings"

	"github.com/memberboard/memberboard/internal/summary"
)

// Card is the content of one member's posted profile artifact.
type Card struct {
	UserID  string
	Fields  summary.FormFields
	Summary string
	Level   summary.Level
	Skills  string
}

// Render produces the message text for a profile card.
func Render(card Card) string {
	f := card.Fields.Normalized()

	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s**\n", f.Name)
	sb.WriteString(card.Summary)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "Role: %s\n", f.Role)
	fmt.Fprintf(&sb, "Institution: %s\n", f.Institution)
	fmt.Fprintf(&sb, "Interests: %s\n", f.Interests)
	fmt.Fprintf(&sb, "Experience: %s\n", card.Level)
	fmt.Fprintf(&sb, "Skills: %s", card.Skills)

	return sb.String()
}

// CardControls returns the update/delete controls posted with every card,
// each tagged with the owning member's identity.
func CardControls(userID string) []Control {
	return []Control{
		{Label: "Update", Payload: ControlPayload{Action: ActionUpdate, UserID: userID}.Encode()},
		{Label: "Delete", Payload: ControlPayload{Action: ActionDelete, UserID: userID}.Encode()},
	}
}

// ConfirmControls returns the confirm/cancel pair rendered in the private
// reply that guards a delete request.
func ConfirmControls(userID string) []Control {
	return []Control{
		{Label: "Confirm", Payload: ControlPayload{Action: ActionConfirm, UserID: userID}.Encode()},
		{Label: "Cancel", Payload: ControlPayload{Action: ActionCancel, UserID: userID}.Encode()},
	}
}
