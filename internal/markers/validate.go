package markers

import (
	"iter"
	"slices"
)

// Validator checks records against an ordered set of marker specs.
type Validator struct {
	specs []Spec
}

var defaultValidator = &Validator{specs: specs}

// NewValidator returns a validator for every marker kind except the disabled ones.
// Declaration order is preserved.
func NewValidator(disabled ...Kind) *Validator {
	active := make([]Spec, 0, len(specs))
	for _, spec := range specs {
		if slices.Contains(disabled, spec.Kind) {
			continue
		}
		active = append(active, spec)
	}
	return &Validator{specs: active}
}

// Kinds returns the marker kinds this validator checks.
func (v *Validator) Kinds() []Kind {
	kinds := make([]Kind, 0, len(v.specs))
	for _, spec := range v.specs {
		kinds = append(kinds, spec.Kind)
	}
	return kinds
}

// Violations yields the record's violations ordered by marker kind, romanized
// field before unicode. The sequence may be ranged over any number of times.
func (v *Validator) Violations(rec Record) iter.Seq[Violation] {
	return func(yield func(Violation) bool) {
		unicode, hasUnicode := rec.Unicode.Get()
		for _, spec := range v.specs {
			if spec.Misformatted(rec.Romanized) {
				if !yield(newViolation(spec, FieldRomanized, rec.Romanized)) {
					return
				}
			}
			if hasUnicode && spec.Misformatted(unicode) {
				if !yield(newViolation(spec, FieldUnicode, unicode)) {
					return
				}
			}
		}
	}
}

// Validate collects Violations into a slice.
func (v *Validator) Validate(rec Record) []Violation {
	return slices.Collect(v.Violations(rec))
}

// Violations checks rec against every marker kind.
func Violations(rec Record) iter.Seq[Violation] {
	return defaultValidator.Violations(rec)
}

// Validate checks rec against every marker kind.
func Validate(rec Record) []Violation {
	return defaultValidator.Validate(rec)
}

func newViolation(spec Spec, field Field, text string) Violation {
	return Violation{
		Kind:     spec.Kind,
		Field:    field,
		Actual:   text,
		Expected: spec.Canonical,
	}
}
