package filter

import (
	"strings"

	"github.com/redopsync/scopefilter/internal/severity"
	"github.com/redopsync/scopefilter/internal/version"
)

// operatorStrategy defines how an operator behaves in each comparison domain.
type operatorStrategy interface {
	// MatchText compares two normalized strings.
	MatchText(actual, operand string) bool
	// MatchOrdered handles numeric and ordinal comparison (cmp: -1/0/1 of actual vs operand).
	MatchOrdered(cmp int) bool
	// MatchBool compares two booleans.
	MatchBool(actual, operand bool) bool
}

// operatorStrategies maps operators to their comparison strategies. OpExists is
// handled before strategy lookup because it takes no operand.
var operatorStrategies = map[Operator]operatorStrategy{
	OpEquals:       equalsStrategy{},
	OpNotEquals:    notEqualsStrategy{},
	OpContains:     containsStrategy{},
	OpGreaterEqual: greaterEqualStrategy{},
	OpLessEqual:    lessEqualStrategy{},
	OpGreater:      greaterStrategy{},
	OpLess:         lessStrategy{},
}

// Strategy implementations

type equalsStrategy struct{}

func (equalsStrategy) MatchText(a, b string) bool { return a == b }
func (equalsStrategy) MatchOrdered(cmp int) bool  { return cmp == 0 }
func (equalsStrategy) MatchBool(a, b bool) bool   { return a == b }

type notEqualsStrategy struct{}

func (notEqualsStrategy) MatchText(a, b string) bool { return a != b }
func (notEqualsStrategy) MatchOrdered(cmp int) bool  { return cmp != 0 }
func (notEqualsStrategy) MatchBool(a, b bool) bool   { return a != b }

type containsStrategy struct{}

func (containsStrategy) MatchText(a, b string) bool { return strings.Contains(a, b) }
func (containsStrategy) MatchOrdered(int) bool      { return false } // substring only
func (containsStrategy) MatchBool(bool, bool) bool  { return false }

type greaterEqualStrategy struct{}

func (greaterEqualStrategy) MatchText(string, string) bool { return false } // strings are unordered
func (greaterEqualStrategy) MatchOrdered(cmp int) bool     { return cmp >= 0 }
func (greaterEqualStrategy) MatchBool(bool, bool) bool     { return false }

type lessEqualStrategy struct{}

func (lessEqualStrategy) MatchText(string, string) bool { return false }
func (lessEqualStrategy) MatchOrdered(cmp int) bool     { return cmp <= 0 }
func (lessEqualStrategy) MatchBool(bool, bool) bool     { return false }

type greaterStrategy struct{}

func (greaterStrategy) MatchText(string, string) bool { return false }
func (greaterStrategy) MatchOrdered(cmp int) bool     { return cmp > 0 }
func (greaterStrategy) MatchBool(bool, bool) bool     { return false }

type lessStrategy struct{}

func (lessStrategy) MatchText(string, string) bool { return false }
func (lessStrategy) MatchOrdered(cmp int) bool     { return cmp < 0 }
func (lessStrategy) MatchBool(bool, bool) bool     { return false }

// Evaluate applies e to a resolved value. ok == false means the attribute is
// unsupported for the entity kind, which never matches.
func Evaluate(e Expression, v Value, ok bool) bool {
	if !ok {
		return false
	}
	if e.Operator == OpExists {
		return v.Present && (v.Domain != DomainBoolean || v.Bool)
	}

	strategy, found := operatorStrategies[e.Operator]
	if !found || e.Operand == nil {
		return false
	}

	switch v.Domain {
	case DomainString:
		return strategy.MatchText(v.Text, normalize(e.Operand.String()))
	case DomainInteger:
		n, ok := operandInt(e.Operand)
		if !v.Present || !ok {
			return false
		}
		return strategy.MatchOrdered(compareInt(v.Int, n))
	case DomainFloat:
		n, ok := operandInt(e.Operand)
		if !v.Present || !ok {
			return false
		}
		return strategy.MatchOrdered(compareFloat(v.Float, float64(n)))
	case DomainBoolean:
		b, ok := operandBool(e.Operand)
		if !ok {
			return false
		}
		return strategy.MatchBool(v.Bool, b)
	case DomainSeverity:
		return matchSeverity(e.Operator, strategy, v.Level, e.Operand)
	case DomainVersion:
		return matchVersion(strategy, v.Text, normalize(e.Operand.String()))
	default:
		return false
	}
}

// matchSeverity compares ranks, never names, so High < Critical holds.
func matchSeverity(op Operator, strategy operatorStrategy, level severity.Level, operand Literal) bool {
	var target int64
	switch o := operand.(type) {
	case Integer:
		target = int64(o)
	case Text:
		if lvl, ok := severity.ParseLevel(o.Value); ok {
			target = int64(lvl.Rank())
		} else if o.Numeric {
			target = o.Number
		} else {
			// Unknown level name: it equals nothing and differs from everything.
			return op == OpNotEquals
		}
	default:
		return false
	}
	return strategy.MatchOrdered(compareInt(int64(level.Rank()), target))
}

// matchVersion compares as text, except ordering operators which need both sides
// to parse as versions.
func matchVersion(strategy operatorStrategy, actual, operand string) bool {
	switch strategy.(type) {
	case equalsStrategy, notEqualsStrategy, containsStrategy:
		return strategy.MatchText(actual, operand)
	}
	cmp, ok := version.Compare(actual, operand)
	if !ok {
		return false
	}
	return strategy.MatchOrdered(cmp)
}

// operandInt extracts an integer operand: an Integer, or quoted all-digit Text.
func operandInt(l Literal) (int64, bool) {
	switch o := l.(type) {
	case Integer:
		return int64(o), true
	case Text:
		return o.Number, o.Numeric
	default:
		return 0, false
	}
}

// operandBool extracts a boolean operand. Quoted "true"/"false" are accepted too.
func operandBool(l Literal) (bool, bool) {
	switch o := l.(type) {
	case Boolean:
		return bool(o), true
	case Text:
		switch normalize(o.Value) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
