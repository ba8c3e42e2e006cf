// Package severity provides the ordered vulnerability severity scale.
package severity

import (
	"fmt"
	"strings"
)

// Level is a vulnerability severity. The numeric value is the rank used for
// ordering; the zero value means "not set".
type Level int

const (
	None     Level = 0
	Info     Level = 1
	Low      Level = 2
	Medium   Level = 3
	High     Level = 4
	Critical Level = 5
)

// Levels lists every valid level from most to least severe.
var Levels = []Level{Critical, High, Medium, Low, Info}

var levelNames = map[Level]string{
	Info:     "Info",
	Low:      "Low",
	Medium:   "Medium",
	High:     "High",
	Critical: "Critical",
}

// CVSS thresholds for deriving a level from a score.
const (
	criticalThreshold = 9.0
	highThreshold     = 7.0
	mediumThreshold   = 4.0
)

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return ""
}

// Rank returns the ordinal used for comparisons (Critical=5 ... Info=1, None=0).
func (l Level) Rank() int { return int(l) }

// Valid reports whether l is one of the five defined levels.
func (l Level) Valid() bool {
	_, ok := levelNames[l]
	return ok
}

// ParseLevel parses a level name case-insensitively.
func ParseLevel(s string) (Level, bool) {
	s = strings.TrimSpace(s)
	for _, l := range Levels {
		if strings.EqualFold(levelNames[l], s) {
			return l, true
		}
	}
	return None, false
}

// FromCVSS derives a level from a CVSS score. A nil score maps to Info.
func FromCVSS(score *float64) Level {
	if score == nil {
		return Info
	}
	switch s := *score; {
	case s >= criticalThreshold:
		return Critical
	case s >= highThreshold:
		return High
	case s >= mediumThreshold:
		return Medium
	case s > 0:
		return Low
	default:
		return Info
	}
}

// Effective returns the manual override when set, otherwise the CVSS-derived level.
func Effective(manual Level, score *float64) Level {
	if manual.Valid() {
		return manual
	}
	return FromCVSS(score)
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty value decodes to None.
func (l *Level) UnmarshalText(text []byte) error {
	if strings.TrimSpace(string(text)) == "" {
		*l = None
		return nil
	}
	parsed, ok := ParseLevel(string(text))
	if !ok {
		return fmt.Errorf("unknown severity %q", string(text))
	}
	*l = parsed
	return nil
}
