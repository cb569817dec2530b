// Package schema owns the canonical consultation-record contract: the
// versioned JSON Schema document every generated record must satisfy, and the
// compiled validator that proves conformance. The schema is loaded exactly
// once at process start; everything handed out afterwards is immutable and
// safe for concurrent use.
package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed consult_record.schema.json
var embeddedSchema []byte

// Registry holds the canonical schema document for the process lifetime.
type Registry struct {
	raw   []byte
	doc   any
	order *orderIndex
}

// Load reads and parses the schema document. With an empty path the embedded
// canonical schema is used; otherwise the file at path replaces it. Any parse
// failure is returned to the caller, which is expected to treat it as fatal:
// the service cannot serve requests without a schema.
func Load(path string) (*Registry, error) {
	raw := embeddedSchema
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read schema document %s: %w", path, err)
		}
		raw = data
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse schema document: %w", err)
	}
	if _, ok := doc.(map[string]any); !ok {
		return nil, fmt.Errorf("schema document root must be an object")
	}

	order, err := buildOrderIndex(raw)
	if err != nil {
		return nil, fmt.Errorf("index schema declaration order: %w", err)
	}

	return &Registry{raw: raw, doc: doc, order: order}, nil
}

// Canonical returns the schema document exactly as loaded. The bytes are
// embedded verbatim into generation prompts so the model is held to the same
// text the validator enforces.
func (r *Registry) Canonical() []byte {
	out := make([]byte, len(r.raw))
	copy(out, r.raw)
	return out
}

// Document returns the decoded schema document.
func (r *Registry) Document() any {
	return r.doc
}
