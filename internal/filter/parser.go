package filter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// AST types for Participle grammars. Each clause form has its own grammar and
// the forms are tried in order: existence, quoted, unquoted.

// existsClause is "<ident> exists".
type existsClause struct {
	Attribute string `parser:"@Word Whitespace 'exists'"`
}

// quotedClause is `<ident> <op> "<text>"`. Whitespace around the operator is optional.
type quotedClause struct {
	Attribute string `parser:"@Word Whitespace?"`
	Operator  string `parser:"( @Operator | @'contains' ) Whitespace?"`
	Value     string `parser:"@String"`
}

// bareClause is "<ident> <op> <token>". The token is any whitespace-free run, so its
// pieces are concatenated back together on capture.
type bareClause struct {
	Attribute string `parser:"@Word Whitespace?"`
	Operator  string `parser:"( @Operator | @'contains' ) Whitespace"`
	Value     string `parser:"@( Word | Operator | String | Punct )+"`
}

// Whitespace is kept as a token because the clause forms differ in where it is required.
// Punct catches any stray character so lexing never fails.
var clauseLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "String", Pattern: `"[^"]*"`},
	{Name: "Operator", Pattern: `==|!=|>=|<=|>|<`},
	{Name: "Word", Pattern: `[^\s"=!<>]+`},
	{Name: "Punct", Pattern: `\S`},
})

var (
	existsParser = buildParser[existsClause]()
	quotedParser = buildParser[quotedClause]()
	bareParser   = buildParser[bareClause]()
)

func buildParser[G any]() *participle.Parser[G] {
	return participle.MustBuild[G](
		participle.Lexer(clauseLexer),
		participle.CaseInsensitive("Word"),
	)
}

// identPattern is a word optionally followed by one dotted segment (e.g. vuln.severity).
var identPattern = regexp.MustCompile(`^\w+(\.\w+)?$`)

// Parse parses a filter expression like `ip contains "10."`, `port >= 443` or
// `screenshot exists`. Input that fits none of the clause forms becomes a smart
// search over the lower-cased input. Blank input returns ok == false, which
// callers treat as "no filter".
func Parse(input string) (Expression, bool) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Expression{}, false
	}

	if e, ok := parseExists(raw); ok {
		return e, true
	}
	if e, ok := parseQuoted(raw); ok {
		return e, true
	}
	if e, ok := parseBare(raw); ok {
		return e, true
	}
	return NewExpression(SmartAttribute, OpContains, Text{Value: strings.ToLower(raw)}), true
}

func parseExists(raw string) (Expression, bool) {
	ast, err := existsParser.ParseString("", raw)
	if err != nil || !identPattern.MatchString(ast.Attribute) {
		return Expression{}, false
	}
	return NewExpression(strings.ToLower(ast.Attribute), OpExists, nil), true
}

func parseQuoted(raw string) (Expression, bool) {
	ast, err := quotedParser.ParseString("", raw)
	if err != nil || !identPattern.MatchString(ast.Attribute) {
		return Expression{}, false
	}
	// No escapes: the lexer already stopped at the first embedded quote.
	text := ast.Value[1 : len(ast.Value)-1]
	return NewExpression(strings.ToLower(ast.Attribute), operatorOf(ast.Operator), quotedLiteral(text)), true
}

func parseBare(raw string) (Expression, bool) {
	ast, err := bareParser.ParseString("", raw)
	if err != nil || !identPattern.MatchString(ast.Attribute) {
		return Expression{}, false
	}
	// A captured String token may hold whitespace; a bare token may not.
	if strings.ContainsAny(ast.Value, " \t\r\n\v\f") {
		return Expression{}, false
	}
	return NewExpression(strings.ToLower(ast.Attribute), operatorOf(ast.Operator), bareLiteral(ast.Value)), true
}

func operatorOf(s string) Operator {
	return Operator(strings.ToLower(s))
}

// quotedLiteral keeps quoted text as Text, adding a numeric copy for all-digit text.
func quotedLiteral(s string) Literal {
	t := Text{Value: s}
	if n, ok := parseDigits(s); ok {
		t.Number, t.Numeric = n, true
	}
	return t
}

// bareLiteral coerces an unquoted token to Boolean, Integer or Text.
func bareLiteral(s string) Literal {
	switch strings.ToLower(s) {
	case "true":
		return Boolean(true)
	case "false":
		return Boolean(false)
	}
	if n, ok := parseDigits(s); ok {
		return Integer(n)
	}
	return Text{Value: s}
}

// parseDigits parses an unsigned run of decimal digits.
func parseDigits(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false // overflow stays textual
	}
	return n, true
}
