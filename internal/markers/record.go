package markers

// Optional holds a title that may be absent. The zero value is absent.
type Optional struct {
	value   string
	present bool
}

// Some returns a present value, which may be the empty string.
func Some(value string) Optional {
	return Optional{value: value, present: true}
}

// None returns an absent value.
func None() Optional {
	return Optional{}
}

// Get returns the value and whether it is present.
func (o Optional) Get() (string, bool) {
	return o.value, o.present
}

// Present reports whether a value is set.
func (o Optional) Present() bool {
	return o.present
}

// Record is the pair of title fields checked for markers.
type Record struct {
	Romanized string
	// Unicode is absent in beatmaps written before unicode metadata existed.
	Unicode Optional
}

// Violation reports a marker written in a non-canonical form.
type Violation struct {
	Kind     Kind   `json:"kind"`
	Field    Field  `json:"field"`
	Actual   string `json:"actual"`
	Expected string `json:"expected"`
}

// Message renders the diagnostic shown to users.
func (v Violation) Message() string {
	return string(v.Field) + ` title field; "` + v.Actual + `" incorrect format of "` + v.Expected + `".`
}
