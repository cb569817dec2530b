package consultation

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// decodeRecord parses raw model output as a single JSON object. One parse,
// no repair: leading prose, markdown fences, trailing text, and non-object
// roots are all decode failures. The raw text is never altered; callers keep
// it for diagnostics.
func decodeRecord(raw string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("output is not valid JSON: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("output has content after the JSON value")
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("output is not a JSON object")
	}
	return obj, nil
}
