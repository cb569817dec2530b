package consultation

import (
	"net/http"

	"github.com/oncoscribe/oncoscribe/internal/platform/schema"
)

// Kind classifies where in the pipeline a request failed. Every failure a
// caller can see carries exactly one kind; the HTTP status and response body
// are derived from it, never from raw upstream errors.
type Kind string

const (
	KindInput           Kind = "input"
	KindConfiguration   Kind = "configuration"
	KindTransport       Kind = "transport"
	KindProvider        Kind = "provider"
	KindEmptyGeneration Kind = "empty_generation"
	KindDecode          Kind = "decode"
	KindSchemaViolation Kind = "schema_violation"
	KindRender          Kind = "render"
)

// PipelineError is the single failure type the pipeline produces. Violations
// are set only for schema failures; RawText preserves the model output for
// decode and schema failures so operators can diagnose without re-running the
// generation.
type PipelineError struct {
	Kind       Kind
	Message    string
	Violations []schema.Violation
	RawText    string
	Err        error
}

func (e *PipelineError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

func (e *PipelineError) Unwrap() error { return e.Err }

// HTTPStatus maps the failure kind onto the response status. Caller mistakes
// are 400, broken service configuration and rendering are 500, everything
// that depends on the upstream provider is 502.
func (e *PipelineError) HTTPStatus() int {
	switch e.Kind {
	case KindInput:
		return http.StatusBadRequest
	case KindConfiguration, KindRender:
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}
