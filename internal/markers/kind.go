package markers

import (
	"fmt"
	"strings"
)

// Kind identifies one of the supported version markers.
type Kind int

// Marker kinds in declaration order. Violations are always reported in this order.
const (
	KindTVSize Kind = iota
	KindGameVersion
	KindShortVersion
	KindCutVersion
	KindSpedUpVersion
)

var kindNames = map[Kind]string{
	KindTVSize:        "tv-size",
	KindGameVersion:   "game-version",
	KindShortVersion:  "short-version",
	KindCutVersion:    "cut-version",
	KindSpedUpVersion: "sped-up-version",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind resolves a marker slug such as "tv-size". Underscores and case are ignored.
func ParseKind(value string) (Kind, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), "_", "-")
	for kind, name := range kindNames {
		if name == normalized {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown marker kind %q", value)
}

// Field labels which title field a violation was found in.
type Field string

const (
	FieldRomanized Field = "Romanized"
	FieldUnicode   Field = "Unicode"
)

// MarshalText encodes the kind as its slug.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
