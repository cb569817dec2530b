// Package consultation implements the generation pipeline: free-text
// consultation notes in, schema-validated HTML report out. The pipeline is a
// strict gate sequence: compose, generate, decode, validate, render. No stage
// runs unless the previous one succeeded, and nothing reaches the renderer
// without passing validation.
package consultation

// GenerateRequest is the body of a generation call: the clinician's free-text
// notes, nothing else.
type GenerateRequest struct {
	Prompt string `json:"prompt"`
}

// ValidateRequest is the body of a validation-only call: a candidate record
// to check against the canonical schema without generating anything.
type ValidateRequest struct {
	Record map[string]any `json:"record"`
}

// Stage names a pipeline step for log correlation.
type Stage string

const (
	StageReceived  Stage = "received"
	StageComposed  Stage = "composed"
	StageGenerated Stage = "generated"
	StageDecoded   Stage = "decoded"
	StageValidated Stage = "validated"
	StageRendered  Stage = "rendered"
)
