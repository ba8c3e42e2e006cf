package filter

import (
	"strconv"
	"strings"

	"github.com/redopsync/scopefilter/internal/severity"
)

// Domain is the comparison domain of a resolved value. It selects operator semantics.
type Domain int

const (
	DomainString Domain = iota
	DomainInteger
	DomainFloat
	DomainBoolean
	DomainSeverity
	DomainVersion
)

func (d Domain) String() string {
	switch d {
	case DomainString:
		return "string"
	case DomainInteger:
		return "integer"
	case DomainFloat:
		return "float"
	case DomainBoolean:
		return "boolean"
	case DomainSeverity:
		return "severity"
	case DomainVersion:
		return "version"
	default:
		return "unknown"
	}
}

// Value is a resolved attribute value. Only the field matching Domain is meaningful.
type Value struct {
	Domain  Domain
	Present bool // false for empty strings, missing numbers and unset optionals

	Text  string // lower-cased and trimmed (string and version domains)
	Int   int64
	Float float64
	Bool  bool
	Level severity.Level
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// StringValue resolves a string attribute. Empty strings are not present.
func StringValue(s string) Value {
	n := normalize(s)
	return Value{Domain: DomainString, Text: n, Present: n != ""}
}

// IntValue resolves an always-present integer attribute.
func IntValue(n int64) Value {
	return Value{Domain: DomainInteger, Int: n, Present: true}
}

// OptionalIntValue resolves an integer attribute that may be missing.
func OptionalIntValue(n int64, ok bool) Value {
	return Value{Domain: DomainInteger, Int: n, Present: ok}
}

// FloatValue resolves a float attribute; nil is not present.
func FloatValue(f *float64) Value {
	if f == nil {
		return Value{Domain: DomainFloat}
	}
	return Value{Domain: DomainFloat, Float: *f, Present: true}
}

// BoolValue resolves a derived boolean attribute.
func BoolValue(b bool) Value {
	return Value{Domain: DomainBoolean, Bool: b, Present: true}
}

// SeverityValue resolves an effective severity.
func SeverityValue(l severity.Level) Value {
	return Value{Domain: DomainSeverity, Level: l, Present: l.Valid()}
}

// VersionValue resolves a version string such as a service version.
func VersionValue(s string) Value {
	n := normalize(s)
	return Value{Domain: DomainVersion, Text: n, Present: n != ""}
}

// Display renders v as lower-case text, the form smart search matches against.
func (v Value) Display() string {
	if !v.Present && v.Domain != DomainBoolean {
		return ""
	}
	switch v.Domain {
	case DomainInteger:
		return strconv.FormatInt(v.Int, 10)
	case DomainFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case DomainBoolean:
		return strconv.FormatBool(v.Bool)
	case DomainSeverity:
		return strings.ToLower(v.Level.String())
	default:
		return v.Text
	}
}
