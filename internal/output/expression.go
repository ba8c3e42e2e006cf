package output

import (
	"encoding/json"

	"github.com/redopsync/scopefilter/internal/filter"
)

// ExpressionOutput implements Formatter for a parsed filter expression.
type ExpressionOutput struct {
	Input string
	Expr  filter.Expression
	OK    bool // false when the input was blank
}

type expressionJSON struct {
	Input       string `json:"input"`
	Empty       bool   `json:"empty"`
	Attribute   string `json:"attribute,omitempty"`
	Operator    string `json:"operator,omitempty"`
	Operand     any    `json:"operand,omitempty"`
	OperandType string `json:"operand_type,omitempty"`
	Smart       bool   `json:"smart"`
}

// NewExpressionOutput parses input and wraps the result.
func NewExpressionOutput(input string) *ExpressionOutput {
	e, ok := filter.Parse(input)
	return &ExpressionOutput{Input: input, Expr: e, OK: ok}
}

func operandType(l filter.Literal) string {
	switch l.(type) {
	case filter.Integer:
		return "integer"
	case filter.Boolean:
		return "boolean"
	case filter.Text:
		return "string"
	default:
		return ""
	}
}

func operandValue(l filter.Literal) any {
	switch o := l.(type) {
	case filter.Integer:
		return int64(o)
	case filter.Boolean:
		return bool(o)
	case filter.Text:
		return o.Value
	default:
		return nil
	}
}

// FormatText returns a one-row table describing the expression.
func (o *ExpressionOutput) FormatText() string {
	if !o.OK {
		return "(empty filter: matches everything)"
	}
	operand := ""
	if o.Expr.Operand != nil {
		operand = o.Expr.Operand.String()
	}

	tw := NewTableWriter()
	tw.Header("attribute", "operator", "operand", "type")
	tw.Row(o.Expr.Attribute, string(o.Expr.Operator), operand, operandType(o.Expr.Operand))
	return tw.String()
}

// FormatJSON returns the expression as a JSON object.
func (o *ExpressionOutput) FormatJSON() ([]byte, error) {
	out := expressionJSON{Input: o.Input, Empty: !o.OK}
	if o.OK {
		out.Attribute = o.Expr.Attribute
		out.Operator = string(o.Expr.Operator)
		out.Operand = operandValue(o.Expr.Operand)
		out.OperandType = operandType(o.Expr.Operand)
		out.Smart = o.Expr.Smart()
	}
	return json.MarshalIndent(out, "", "  ")
}
