// Package filter provides filter expression parsing and matching against scope records.
package filter

import (
	"fmt"
	"strconv"
)

// Operator for attribute comparison.
type Operator string

const (
	OpEquals       Operator = "=="
	OpNotEquals    Operator = "!="
	OpContains     Operator = "contains"
	OpExists       Operator = "exists"
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
	OpGreater      Operator = ">"
	OpLess         Operator = "<"
)

// Operators lists every operator in grammar order.
var Operators = []Operator{OpEquals, OpNotEquals, OpGreaterEqual, OpLessEqual, OpGreater, OpLess, OpContains, OpExists}

// SmartAttribute is the attribute of a fallback substring search.
const SmartAttribute = "_smart"

// Literal is an operand value. The set of implementations is closed:
// Text, Integer and Boolean.
type Literal interface {
	fmt.Stringer
	literal()
}

// Text is a string operand. Quoted all-digit text also carries its numeric value.
type Text struct {
	Value   string
	Number  int64
	Numeric bool
}

// Integer is an unquoted all-digit operand.
type Integer int64

// Boolean is an unquoted true/false operand.
type Boolean bool

func (Text) literal()    {}
func (Integer) literal() {}
func (Boolean) literal() {}

func (t Text) String() string    { return t.Value }
func (i Integer) String() string { return strconv.FormatInt(int64(i), 10) }
func (b Boolean) String() string { return strconv.FormatBool(bool(b)) }

// Expression is a single parsed filter clause: attribute, operator and optional operand.
type Expression struct {
	Attribute string
	Operator  Operator
	Operand   Literal // nil only for OpExists
}

// NewExpression builds an Expression and panics if the operand does not fit the operator.
func NewExpression(attribute string, op Operator, operand Literal) Expression {
	e := Expression{Attribute: attribute, Operator: op, Operand: operand}
	e.validate()
	return e
}

func (e Expression) validate() {
	if e.Operator == OpExists && e.Operand != nil {
		panic(fmt.Sprintf("filter: exists expression on %q carries operand %v", e.Attribute, e.Operand))
	}
	if e.Operator != OpExists && e.Operand == nil {
		panic(fmt.Sprintf("filter: %s expression on %q has no operand", e.Operator, e.Attribute))
	}
}

// Smart reports whether e is a fallback substring search.
func (e Expression) Smart() bool { return e.Attribute == SmartAttribute }

// String renders e back into grammar form.
func (e Expression) String() string {
	switch op := e.Operand.(type) {
	case nil:
		return e.Attribute + " " + string(e.Operator)
	case Text:
		return fmt.Sprintf("%s %s %q", e.Attribute, e.Operator, op.Value)
	default:
		return fmt.Sprintf("%s %s %s", e.Attribute, e.Operator, op)
	}
}
