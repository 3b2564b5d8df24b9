package summary

import (
	"fmt"
	"strings"
)

const systemPromptTemplate = `You are a community profile writer. Below is a member's self-introduction form. Fields the member left blank are marked "not provided".

Write a warm two-sentence summary of who this member is, classify their experience level, and extract their key skills.

Your output must be ONLY a single valid JSON object with exactly these keys:
- "summary": the two-sentence member summary
- "experience_level": one of "Beginner", "Builder", "Pro"
- "skills": a short comma-separated list of skills, or "not specified"

Do not include any other text, prose, or markdown.`

// BuildPrompt constructs the generation prompt embedding all form fields
// verbatim. Blank fields appear with the "not provided" marker so the
// generator always sees the full schema.
func BuildPrompt(fields FormFields) string {
	f := fields.Normalized()

	var sb strings.Builder
	sb.WriteString(systemPromptTemplate)
	sb.WriteString("\n\nMember form:\n")
	fmt.Fprintf(&sb, "- Name: %s\n", f.Name)
	fmt.Fprintf(&sb, "- Role: %s\n", f.Role)
	fmt.Fprintf(&sb, "- Institution: %s\n", f.Institution)
	fmt.Fprintf(&sb, "- Interests: %s\n", f.Interests)
	fmt.Fprintf(&sb, "- Details: %s\n", f.Details)

	return sb.String()
}
