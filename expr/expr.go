package expr

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Expr is an expression. The set of expression types is fixed:
// Primitive, List, Ident, Dot, Index, Not and Binary.
type Expr interface {
	fmt.Stringer
	isExpr()
}

// Primitive is a literal value.
type Primitive struct {
	Value cty.Value
}

// List is a literal list of expressions.
type List struct {
	Elems []Expr
}

// Ident refers to a name in scope.
type Ident struct {
	Name string
}

// Dot accesses a named field of a map.
type Dot struct {
	Lhs   Expr
	Field string
}

// Index accesses an element of a list.
type Index struct {
	Lhs   Expr
	Index Expr
}

// Not negates the truthiness of an expression.
type Not struct {
	Expr Expr
}

// Binary applies an operator to two expressions.
type Binary struct {
	Op       Op
	Lhs, Rhs Expr
}

func (Primitive) isExpr() {}
func (List) isExpr()      {}
func (Ident) isExpr()     {}
func (Dot) isExpr()       {}
func (Index) isExpr()     {}
func (Not) isExpr()       {}
func (Binary) isExpr()    {}

func (e Primitive) String() string {
	if !e.Value.IsNull() && e.Value.Type() == cty.String {
		return fmt.Sprintf("%q", e.Value.AsString())
	}
	return Display(e.Value)
}

func (e List) String() string {
	elems := make([]string, len(e.Elems))
	for i, el := range e.Elems {
		elems[i] = el.String()
	}
	return "[" + strings.Join(elems, ", ") + "]"
}

func (e Ident) String() string { return e.Name }
func (e Dot) String() string   { return e.Lhs.String() + "." + e.Field }
func (e Index) String() string { return e.Lhs.String() + "[" + e.Index.String() + "]" }
func (e Not) String() string   { return "!" + e.Expr.String() }
func (e Binary) String() string {
	return "(" + e.Lhs.String() + " " + e.Op.String() + " " + e.Rhs.String() + ")"
}

// Op is a binary operator.
type Op uint8

const (
	Eq Op = iota
	NotEq
	Less
	Greater
	And
	Or
)

var opNames = [...]string{"==", "!=", "<", ">", "&&", "||"}

// opKeys are the keys of binary operators in YAML.
var opKeys = map[string]Op{"eq": Eq, "ne": NotEq, "lt": Less, "gt": Greater, "and": And, "or": Or}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", uint8(op))
}

// --- Constructors ----------------------------------------------------------

// Str creates a string literal.
func Str(s string) Expr { return Primitive{Value: cty.StringVal(s)} }

// Int creates a number literal.
func Int(n int) Expr { return Primitive{Value: cty.NumberIntVal(int64(n))} }

// Bool creates a boolean literal.
func Bool(b bool) Expr { return Primitive{Value: cty.BoolVal(b)} }

// Name creates an identifier. Dotted names create field accesses, numeric components
// create index accesses:
//
//	Name("state.rows.0")   // Index(Dot(Ident state, rows), 0)
func Name(path string) Expr {
	parts := strings.Split(path, ".")
	var e Expr = Ident{Name: parts[0]}
	for _, p := range parts[1:] {
		if n, ok := parseIndex(p); ok {
			e = Index{Lhs: e, Index: Int(n)}
		} else {
			e = Dot{Lhs: e, Field: p}
		}
	}
	return e
}

func parseIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
