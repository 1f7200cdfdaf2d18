package expr

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// ErrSyntax is returned for YAML nodes which do not describe an expression.
var ErrSyntax = errors.New("invalid expression")

// Parse parses the string form of an expression. Strings starting with '$' are
// names (see Name), anything else is a string literal. "$$" escapes a leading '$'.
func Parse(s string) Expr {
	if len(s) > 1 && s[0] == '$' {
		if s[1] == '$' {
			return Str(s[1:])
		}
		return Name(s[1:])
	}
	return Str(s)
}

// Decode decodes an expression from a YAML node.
func Decode(node *yaml.Node) (Expr, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 1 {
			return Decode(node.Content[0])
		}
	case yaml.AliasNode:
		return Decode(node.Alias)
	case yaml.ScalarNode:
		return decodeScalar(node)
	case yaml.SequenceNode:
		list := List{Elems: make([]Expr, len(node.Content))}
		for i, n := range node.Content {
			e, err := Decode(n)
			if err != nil {
				return nil, err
			}
			list.Elems[i] = e
		}
		return list, nil
	case yaml.MappingNode:
		return decodeOperator(node)
	}
	return nil, fmt.Errorf("%w at line %d", ErrSyntax, node.Line)
}

func decodeScalar(node *yaml.Node) (Expr, error) {
	switch node.ShortTag() {
	case "!!null":
		return Primitive{Value: Null}, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, err
		}
		return Bool(b), nil
	case "!!int":
		n, err := strconv.ParseInt(node.Value, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("%w at line %d: %v", ErrSyntax, node.Line, err)
		}
		return Primitive{Value: cty.NumberIntVal(n)}, nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, err
		}
		return Primitive{Value: cty.NumberFloatVal(f)}, nil
	}
	return Parse(node.Value), nil
}

func decodeOperator(node *yaml.Node) (Expr, error) {
	if len(node.Content) != 2 {
		return nil, fmt.Errorf("%w at line %d: operator maps have a single key", ErrSyntax, node.Line)
	}
	key, arg := node.Content[0].Value, node.Content[1]
	if key == "not" {
		e, err := Decode(arg)
		if err != nil {
			return nil, err
		}
		return Not{Expr: e}, nil
	}
	op, ok := opKeys[key]
	if !ok {
		return nil, fmt.Errorf("%w at line %d: unknown operator %q", ErrSyntax, node.Line, key)
	}
	if arg.Kind != yaml.SequenceNode || len(arg.Content) < 2 {
		return nil, fmt.Errorf("%w at line %d: operator %q needs at least 2 operands", ErrSyntax, node.Line, key)
	}
	if (op != And && op != Or) && len(arg.Content) != 2 {
		return nil, fmt.Errorf("%w at line %d: operator %q needs 2 operands", ErrSyntax, node.Line, key)
	}
	var result Expr
	for _, n := range arg.Content {
		e, err := Decode(n)
		if err != nil {
			return nil, err
		}
		if result == nil {
			result = e
		} else {
			result = Binary{Op: op, Lhs: result, Rhs: e}
		}
	}
	return result, nil
}

// Holder wraps an expression for decoding from YAML as part of a larger structure.
type Holder struct {
	Expr Expr
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (h *Holder) UnmarshalYAML(node *yaml.Node) error {
	e, err := Decode(node)
	if err != nil {
		return err
	}
	h.Expr = e
	return nil
}
