// Package render turns validated consultation records into HTML reports.
// Rendering is a pure presentation step: every value in the output comes from
// the record, escaped by html/template, and a record that renders once renders
// identically forever. The renderer only accepts schema.ValidatedRecord, so an
// unvalidated record cannot reach a template by construction.
package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"os"

	"github.com/oncoscribe/oncoscribe/internal/platform/schema"
)

//go:embed consult_report.html.tmpl
var embeddedTemplate string

// Renderer holds the parsed report template for the process lifetime. Safe
// for concurrent use.
type Renderer struct {
	tmpl *template.Template
}

// New parses the report template. With an empty path the embedded template is
// used; otherwise the file at path replaces it. Parse failures are returned
// to the caller, which is expected to treat them as fatal at startup.
//
// The template runs with missingkey=error so a reference the record cannot
// resolve fails the render instead of emitting an empty slot. Fields the
// schema marks optional are reached through the opt helper, which tolerates
// absence.
func New(path string) (*Renderer, error) {
	text := embeddedTemplate
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read report template %s: %w", path, err)
		}
		text = string(data)
	}

	tmpl, err := template.New("consult_report").
		Option("missingkey=error").
		Funcs(template.FuncMap{"opt": optField}).
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render produces the HTML report for a validated record.
func (r *Renderer) Render(rec schema.ValidatedRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, rec.Value()); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

// optField looks up an optional key. Absent keys yield nil, which {{with}}
// treats as empty, skipping the guarded block.
func optField(v any, key string) any {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return m[key]
}
