package consultation

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/oncoscribe/oncoscribe/internal/platform/llm"
	"github.com/oncoscribe/oncoscribe/internal/platform/render"
	"github.com/oncoscribe/oncoscribe/internal/platform/schema"
)

type Service struct {
	registry  *schema.Registry
	validator *schema.CompiledValidator
	generator llm.Generator
	renderer  *render.Renderer
	params    llm.Params
	log       zerolog.Logger
}

func NewService(
	registry *schema.Registry,
	validator *schema.CompiledValidator,
	generator llm.Generator,
	renderer *render.Renderer,
	params llm.Params,
	log zerolog.Logger,
) *Service {
	return &Service{
		registry:  registry,
		validator: validator,
		generator: generator,
		renderer:  renderer,
		params:    params,
		log:       log,
	}
}

// Generate runs the full pipeline for one request and returns the rendered
// HTML report. Every failure is a *PipelineError naming the stage that
// stopped the request.
func (s *Service) Generate(ctx context.Context, notes string) ([]byte, error) {
	s.stage(StageReceived, len(notes))

	prompt, err := composePrompt(s.registry, notes)
	if err != nil {
		return nil, &PipelineError{Kind: KindInput, Message: err.Error(), Err: err}
	}
	s.stage(StageComposed, len(prompt.System)+len(prompt.User))

	raw, err := s.generator.Generate(ctx, prompt, s.params)
	if err != nil {
		return nil, mapGenerateError(err)
	}
	s.stage(StageGenerated, len(raw))

	value, err := decodeRecord(raw)
	if err != nil {
		s.log.Warn().Err(err).Msg("model output failed strict decode")
		return nil, &PipelineError{Kind: KindDecode, Message: err.Error(), RawText: raw, Err: err}
	}
	s.stage(StageDecoded, len(value))

	validated, violations := s.validator.Check(value)
	if len(violations) > 0 {
		s.log.Warn().Int("violations", len(violations)).Msg("model output failed schema validation")
		return nil, &PipelineError{
			Kind:       KindSchemaViolation,
			Message:    schema.Summary(violations),
			Violations: violations,
			RawText:    raw,
		}
	}
	s.stage(StageValidated, 0)

	html, err := s.renderer.Render(validated)
	if err != nil {
		return nil, &PipelineError{Kind: KindRender, Message: err.Error(), Err: err}
	}
	s.stage(StageRendered, len(html))

	return html, nil
}

// Validate checks a caller-supplied record against the canonical schema
// without generating anything. A nil slice means the record conforms.
func (s *Service) Validate(record map[string]any) []schema.Violation {
	_, violations := s.validator.Check(record)
	return violations
}

// Schema returns the canonical schema document.
func (s *Service) Schema() []byte {
	return s.registry.Canonical()
}

func (s *Service) stage(stage Stage, size int) {
	s.log.Debug().Str("stage", string(stage)).Int("size", size).Msg("pipeline stage")
}

// mapGenerateError translates gateway errors into pipeline kinds. Unknown
// generator failures count as transport: no well-formed answer was obtained.
func mapGenerateError(err error) *PipelineError {
	var cerr *llm.ConfigError
	if errors.As(err, &cerr) {
		return &PipelineError{Kind: KindConfiguration, Message: cerr.Error(), Err: err}
	}
	var perr *llm.ProviderError
	if errors.As(err, &perr) {
		return &PipelineError{Kind: KindProvider, Message: "generation provider rejected the request", Err: err}
	}
	if errors.Is(err, llm.ErrEmptyGeneration) {
		return &PipelineError{Kind: KindEmptyGeneration, Message: err.Error(), Err: err}
	}
	return &PipelineError{Kind: KindTransport, Message: "generation provider unreachable", Err: err}
}
