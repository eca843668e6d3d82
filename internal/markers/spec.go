package markers

import (
	"github.com/dlclark/regexp2"
)

// markerDef is one row of the marker table. loose finds any spelling of the
// marker; exact matches only the canonical text.
type markerDef struct {
	kind      Kind
	loose     string
	exact     string
	canonical string
}

// markerDefs is the single source of truth for marker patterns, in report order.
// The (?<!& ) look-behind keeps the cut and sped-up kinds from firing inside
// "(Sped Up & Cut Ver.)" style compound markers.
var markerDefs = []markerDef{
	{KindTVSize, `tv\s*(size|ver)`, `\(TV Size\)`, "(TV Size)"},
	{KindGameVersion, `game\s*(size|ver)`, `\(Game Ver\.\)`, "(Game Ver.)"},
	{KindShortVersion, `short\s*(size|ver)`, `\(Short Ver\.\)`, "(Short Ver.)"},
	{KindCutVersion, `(?<!& )cut\s*(size|ver)`, `\(Cut Ver\.\)`, "(Cut Ver.)"},
	{KindSpedUpVersion, `(?<!& )(sped|speed)\s*up\s*ver`, `\(Sped Up Ver\.\)`, "(Sped Up Ver.)"},
}

// Spec is a compiled marker definition.
type Spec struct {
	Kind      Kind
	Canonical string
	loose     *regexp2.Regexp
	exact     *regexp2.Regexp
}

// specs is built from markerDefs during package initialization and never
// mutated afterwards.
var specs = compileSpecs(markerDefs)

func compileSpecs(defs []markerDef) []Spec {
	out := make([]Spec, 0, len(defs))
	for _, def := range defs {
		out = append(out, Spec{
			Kind:      def.kind,
			Canonical: def.canonical,
			loose:     regexp2.MustCompile(def.loose, regexp2.IgnoreCase),
			exact:     regexp2.MustCompile(def.exact, regexp2.None),
		})
	}
	return out
}

// Specs returns the marker table in declaration order.
func Specs() []Spec {
	out := make([]Spec, len(specs))
	copy(out, specs)
	return out
}

// Detected reports whether some spelling of the marker appears in text.
func (s Spec) Detected(text string) bool {
	return matches(s.loose, text)
}

// Canonicalized reports whether the canonical marker text appears in text.
func (s Spec) Canonicalized(text string) bool {
	return matches(s.exact, text)
}

// Misformatted reports whether text carries the marker in a non-canonical form.
func (s Spec) Misformatted(text string) bool {
	return s.Detected(text) && !s.Canonicalized(text)
}

// matches treats a matcher error as no match. Errors only come from match
// timeouts, which are never configured here.
func matches(re *regexp2.Regexp, text string) bool {
	if text == "" {
		return false
	}
	ok, err := re.MatchString(text)
	return err == nil && ok
}
