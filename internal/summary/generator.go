package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// Completer is the interface for single-prompt text completion.
// Implemented by ollama.Client.
type Completer interface {
	Complete(ctx context.Context, model, prompt string) (string, error)
}

// Result is a generated profile summary. It is always usable: every field
// is non-empty and Level is one of the fixed enumeration. UsedFallback is
// true only on the total-failure path (transport error, empty response,
// unrecoverable JSON); field-level substitution of an empty summary or
// skills leaves it false, since the rest of the content is real generator
// output.
type Result struct {
	Summary      string
	Level        Level
	Skills       string
	UsedFallback bool
}

// Generator turns raw form fields into a summary, an experience-level
// classification, and a skills extract. It never fails outward: any
// generator failure degrades to deterministic fallback content.
type Generator struct {
	client Completer
	model  string
}

// NewGenerator creates a Generator using the given completion client and model.
func NewGenerator(client Completer, model string) *Generator {
	return &Generator{client: client, model: model}
}

// generated mirrors the JSON object the generator is asked to produce.
type generated struct {
	Summary         string `json:"summary"`
	ExperienceLevel string `json:"experience_level"`
	Skills          string `json:"skills"`
}

// Generate runs the content pipeline on the given form fields.
//
// Two distinct failure paths exist. Transport errors, empty responses, and
// unrecoverable JSON all produce the full fallback. A recovered response
// with empty summary or skills substitutes only the missing field, keeping
// whatever real content the generator did produce.
func (g *Generator) Generate(ctx context.Context, fields FormFields) Result {
	prompt := BuildPrompt(fields)

	raw, err := g.client.Complete(ctx, g.model, prompt)
	if err != nil {
		slog.Warn("summary generation failed, using fallback", "error", err)
		return Fallback(fields)
	}
	if strings.TrimSpace(raw) == "" {
		slog.Warn("summary generation returned empty response, using fallback")
		return Fallback(fields)
	}

	var parsed generated
	recovered, ok := recoverJSON(raw)
	if !ok || json.Unmarshal([]byte(recovered), &parsed) != nil {
		slog.Warn("summary generation returned unrecoverable JSON, using fallback", "response", raw)
		return Fallback(fields)
	}

	fb := Fallback(fields)
	res := Result{
		Summary: strings.TrimSpace(parsed.Summary),
		Level:   ParseLevel(parsed.ExperienceLevel),
		Skills:  strings.TrimSpace(parsed.Skills),
	}
	if res.Summary == "" {
		res.Summary = fb.Summary
	}
	if res.Skills == "" {
		res.Skills = fb.Skills
	}
	return res
}

// Fallback returns the deterministic generator-independent result for the
// given fields.
func Fallback(fields FormFields) Result {
	f := fields.Normalized()
	return Result{
		Summary:      fmt.Sprintf("%s is interested in %s and wants to learn and grow in the community.", f.Name, f.Interests),
		Level:        LevelBeginner,
		Skills:       NotSpecified,
		UsedFallback: true,
	}
}

// recoverJSON extracts a JSON object from loosely structured generator
// output: markdown code fences are stripped, then the text is trimmed to
// the outermost brace pair. Returns false if no brace pair exists.
func recoverJSON(raw string) (string, bool) {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", false
	}
	return s[start : end+1], true
}
