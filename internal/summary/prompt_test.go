package summary

import (
	"strings"
	"testing"
)

func TestBuildPrompt_EmbedsAllFields(t *testing.T) {
	prompt := BuildPrompt(FormFields{
		Name:        "Ravi",
		Role:        "PhD student",
		Institution: "IIT Delhi",
		Interests:   "NLP",
		Details:     "Looking for collaborators",
	})

	for _, want := range []string{"Ravi", "PhD student", "IIT Delhi", "NLP", "Looking for collaborators"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing field value %q", want)
		}
	}
}

func TestBuildPrompt_BlankFieldsGetMarker(t *testing.T) {
	prompt := BuildPrompt(FormFields{Name: "Ravi"})

	// Every field line must be present even when blank; the schema is never
	// shortened for the generator.
	for _, label := range []string{"- Name:", "- Role:", "- Institution:", "- Interests:", "- Details:"} {
		if !strings.Contains(prompt, label) {
			t.Errorf("prompt missing field line %q", label)
		}
	}
	if strings.Count(prompt, NotProvided) != 4 {
		t.Errorf("expected 4 %q markers, prompt:\n%s", NotProvided, prompt)
	}
}

func TestBuildPrompt_RequestsStrictJSON(t *testing.T) {
	prompt := BuildPrompt(FormFields{})
	for _, key := range []string{"summary", "experience_level", "skills"} {
		if !strings.Contains(prompt, key) {
			t.Errorf("prompt does not name output key %q", key)
		}
	}
}
