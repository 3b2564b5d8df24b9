package summary

// NotProvided is the sentinel used for form fields the member left blank.
// The generator always sees a complete field schema, never a missing key.
const NotProvided = "not provided"

// NotSpecified is the sentinel for skills when neither the member nor the
// generator supplied any.
const NotSpecified = "not specified"

// FormFields holds the raw text inputs from a profile form submission.
// Every field is optional; blank fields normalize to NotProvided.
type FormFields struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	Institution string `json:"institution"`
	Interests   string `json:"interests"`
	Details     string `json:"details"`
}

// Normalized returns a copy with every blank field replaced by NotProvided.
func (f FormFields) Normalized() FormFields {
	out := f
	if out.Name == "" {
		out.Name = NotProvided
	}
	if out.Role == "" {
		out.Role = NotProvided
	}
	if out.Institution == "" {
		out.Institution = NotProvided
	}
	if out.Interests == "" {
		out.Interests = NotProvided
	}
	if out.Details == "" {
		out.Details = NotProvided
	}
	return out
}

// Level classifies a member's experience.
type Level string

const (
	LevelBeginner Level = "Beginner"
	LevelBuilder  Level = "Builder"
	LevelPro      Level = "Pro"
)

// ParseLevel coerces a raw string to a valid Level. Anything outside the
// fixed enumeration maps to LevelBeginner.
func ParseLevel(raw string) Level {
	switch Level(raw) {
	case LevelBeginner, LevelBuilder, LevelPro:
		return Level(raw)
	default:
		return LevelBeginner
	}
}
