package consultation

import (
	"errors"
	"strings"

	"github.com/oncoscribe/oncoscribe/internal/platform/llm"
	"github.com/oncoscribe/oncoscribe/internal/platform/schema"
)

// ErrEmptyPrompt rejects requests whose notes are empty or whitespace before
// any provider call is made.
var ErrEmptyPrompt = errors.New("prompt must not be empty")

const systemPreamble = `You are a clinical documentation assistant for a breast oncology service.
Convert the consultation notes you are given into a single JSON object.

Rules:
- Respond with exactly one JSON object and nothing else. No prose, no markdown fences.
- The object must conform to the JSON Schema below. Use only the declared fields.
- Record only facts stated in the notes. Never invent findings, results, or plans.
- Omit optional fields the notes say nothing about.

JSON Schema:
`

// composePrompt builds the two-part prompt: the fixed contract plus the
// canonical schema text as the system message, the clinician's notes verbatim
// as the user message. The schema bytes come from the same registry the
// validator was compiled from, so the model is held to the text that will
// judge its output.
func composePrompt(reg *schema.Registry, notes string) (llm.PromptPair, error) {
	if strings.TrimSpace(notes) == "" {
		return llm.PromptPair{}, ErrEmptyPrompt
	}
	return llm.PromptPair{
		System: systemPreamble + string(reg.Canonical()),
		User:   notes,
	}, nil
}
