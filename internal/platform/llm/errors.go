package llm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyGeneration reports a structurally successful provider response that
// carried no usable text.
var ErrEmptyGeneration = errors.New("provider returned an empty generation")

// ConfigError reports missing or contradictory backend settings. Construction
// collects every missing item so the operator fixes the configuration in one
// pass.
type ConfigError struct {
	Backend string
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s backend configuration incomplete: missing %s",
		e.Backend, strings.Join(e.Missing, ", "))
}

// TransportError reports that no well-formed provider response was received:
// connection failures, timeouts, interrupted reads, unparseable bodies.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("provider unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProviderError reports that the provider answered with an explicit error
// status. The upstream detail is preserved for logs but callers should not
// echo it to end users verbatim.
type ProviderError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("provider rejected request: status %d, code %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("provider rejected request: status %d: %s", e.StatusCode, e.Message)
}
