package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Constraint names the schema rule a violation broke.
type Constraint string

const (
	ConstraintType         Constraint = "type"
	ConstraintRequired     Constraint = "required"
	ConstraintEnum         Constraint = "enum"
	ConstraintPattern      Constraint = "pattern"
	ConstraintBounds       Constraint = "bounds"
	ConstraintLength       Constraint = "length"
	ConstraintUnknownField Constraint = "unknown_field"
	ConstraintOther        Constraint = "other"
)

// Violation is one structural defect in a candidate record.
type Violation struct {
	Path       string     `json:"path"`
	Constraint Constraint `json:"constraint"`
	Message    string     `json:"message"`
}

// ValidatedRecord is a consultation record proven to satisfy the canonical
// schema. It can only be produced by CompiledValidator.Check, which is what
// makes it safe to hand to the renderer: there is no other way to construct
// one.
type ValidatedRecord struct {
	value map[string]any
}

// Value returns the underlying record.
func (r ValidatedRecord) Value() map[string]any {
	return r.value
}

// CompiledValidator is a reusable structural checker compiled from the
// registry's schema. Safe for unlimited concurrent use.
type CompiledValidator struct {
	schema *jsonschema.Schema
	order  *orderIndex
}

// Compile builds the validator from the registry's canonical schema.
func Compile(reg *Registry) (*CompiledValidator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("consult_record.schema.json", reg.doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := compiler.Compile("consult_record.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &CompiledValidator{schema: compiled, order: reg.order}, nil
}

// Check validates a decoded value against the schema. On success the second
// return is nil and the record is wrapped as a ValidatedRecord, unchanged: no
// coercion, no defaulting, no dropped fields. On failure the violations are
// returned in schema-declaration order, stable across calls.
func (v *CompiledValidator) Check(value any) (ValidatedRecord, []Violation) {
	err := v.schema.Validate(value)
	if err == nil {
		obj, ok := value.(map[string]any)
		if !ok {
			// The schema declares the root as an object, so Validate
			// rejects anything else before we get here.
			return ValidatedRecord{}, []Violation{{
				Path:       "$",
				Constraint: ConstraintType,
				Message:    "record root must be an object",
			}}
		}
		return ValidatedRecord{value: obj}, nil
	}

	var raws []rawViolation
	var verr *jsonschema.ValidationError
	if errors.As(err, &verr) {
		collectViolations(verr, &raws)
	}
	if len(raws) == 0 {
		raws = append(raws, rawViolation{
			constraint: ConstraintOther,
			message:    err.Error(),
		})
	}

	sort.SliceStable(raws, func(i, j int) bool {
		ki := v.order.sortKey(raws[i].segments)
		kj := v.order.sortKey(raws[j].segments)
		if lessKeys(ki, kj) {
			return true
		}
		if lessKeys(kj, ki) {
			return false
		}
		return formatPath(raws[i].segments) < formatPath(raws[j].segments)
	})

	out := make([]Violation, 0, len(raws))
	for _, r := range raws {
		out = append(out, Violation{
			Path:       formatPath(r.segments),
			Constraint: r.constraint,
			Message:    r.message,
		})
	}
	return ValidatedRecord{}, out
}

// Summary renders violations as the single human-readable string surfaced to
// callers: "path: message" entries, comma-joined, in violation order.
func Summary(violations []Violation) string {
	parts := make([]string, 0, len(violations))
	for _, v := range violations {
		parts = append(parts, v.Path+": "+v.Message)
	}
	return strings.Join(parts, ", ")
}

type rawViolation struct {
	segments   []string
	constraint Constraint
	message    string
}

// printer renders the library's error kinds as plain English messages.
var printer = message.NewPrinter(language.English)

// collectViolations flattens the library's error tree into leaf violations.
// Missing-required and undeclared-field errors are reported once per field,
// at the field's own path, so a caller sees "front_matter.receptors: is
// required" rather than a parent-level aggregate.
func collectViolations(err *jsonschema.ValidationError, out *[]rawViolation) {
	if err.ErrorKind != nil && len(err.Causes) == 0 {
		loc := err.InstanceLocation

		switch k := err.ErrorKind.(type) {
		case *kind.Required:
			for _, missing := range k.Missing {
				*out = append(*out, rawViolation{
					segments:   appendSegment(loc, missing),
					constraint: ConstraintRequired,
					message:    "is required",
				})
			}
		case *kind.AdditionalProperties:
			for _, prop := range k.Properties {
				*out = append(*out, rawViolation{
					segments:   appendSegment(loc, prop),
					constraint: ConstraintUnknownField,
					message:    "is not a declared field",
				})
			}
		case *kind.Type:
			*out = append(*out, rawViolation{
				segments:   loc,
				constraint: ConstraintType,
				message:    err.ErrorKind.LocalizedString(printer),
			})
		case *kind.Enum:
			*out = append(*out, rawViolation{
				segments:   loc,
				constraint: ConstraintEnum,
				message:    err.ErrorKind.LocalizedString(printer),
			})
		case *kind.Pattern:
			*out = append(*out, rawViolation{
				segments:   loc,
				constraint: ConstraintPattern,
				message:    err.ErrorKind.LocalizedString(printer),
			})
		case *kind.Minimum, *kind.Maximum, *kind.ExclusiveMinimum, *kind.ExclusiveMaximum, *kind.MinItems, *kind.MaxItems:
			*out = append(*out, rawViolation{
				segments:   loc,
				constraint: ConstraintBounds,
				message:    err.ErrorKind.LocalizedString(printer),
			})
		case *kind.MinLength, *kind.MaxLength:
			*out = append(*out, rawViolation{
				segments:   loc,
				constraint: ConstraintLength,
				message:    err.ErrorKind.LocalizedString(printer),
			})
		case *kind.Schema, *kind.Reference, *kind.Group:
			// Structural wrappers, not defects in their own right.
		default:
			*out = append(*out, rawViolation{
				segments:   loc,
				constraint: ConstraintOther,
				message:    err.ErrorKind.LocalizedString(printer),
			})
		}
	}

	for _, cause := range err.Causes {
		collectViolations(cause, out)
	}
}

func appendSegment(loc []string, seg string) []string {
	out := make([]string, 0, len(loc)+1)
	out = append(out, loc...)
	return append(out, seg)
}
