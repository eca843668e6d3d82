// Package markers detects version markers in song titles and reports the ones
// that are not written in their canonical form.
//
// A marker is a parenthesized annotation such as "(TV Size)" or "(Sped Up Ver.)".
// Each marker kind carries a loose pattern that finds any casing or spacing
// variant and an exact pattern that matches only the canonical text. A title
// field is flagged when the loose pattern matches and the exact one does not.
//
// The cut and sped-up kinds refuse to match right after "& " so the compound
// "(Sped Up & Cut Ver.)" marker is not mistaken for one of its parts. The
// compound form itself is accepted as written.
//
// Patterns are compiled once at init and are safe for concurrent use.
package markers
