package expr

import (
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Null is the value of expressions which do not resolve to anything.
var Null = cty.NullVal(cty.DynamicPseudoType)

// Truthy decides if a value counts as true in a condition: null is false, booleans
// are themselves, numbers are true if non-zero, strings, lists and maps if non-empty.
func Truthy(v cty.Value) bool {
	if v == cty.NilVal || v.IsNull() || !v.IsKnown() {
		return false
	}
	ty := v.Type()
	switch {
	case ty == cty.Bool:
		return v.True()
	case ty == cty.Number:
		return v.AsBigFloat().Sign() != 0
	case ty == cty.String:
		return v.AsString() != ""
	case ty.IsTupleType(), ty.IsListType(), ty.IsSetType(), ty.IsMapType(), ty.IsObjectType():
		return v.LengthInt() > 0
	}
	return false
}

// Display formats a value the way it is presented to users: strings without quotes,
// integers without a fraction, null as the empty string.
func Display(v cty.Value) string {
	if v == cty.NilVal || v.IsNull() || !v.IsKnown() {
		return ""
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString()
	case ty == cty.Number:
		return v.AsBigFloat().Text('f', -1)
	case ty == cty.Bool:
		if v.True() {
			return "true"
		}
		return "false"
	case ty.IsTupleType(), ty.IsListType(), ty.IsSetType():
		var elems []string
		for it := v.ElementIterator(); it.Next(); {
			_, el := it.Element()
			elems = append(elems, Display(el))
		}
		return "[" + strings.Join(elems, ", ") + "]"
	case ty.IsObjectType(), ty.IsMapType():
		var attrs []string
		for it := v.ElementIterator(); it.Next(); {
			k, el := it.Element()
			attrs = append(attrs, k.AsString()+": "+Display(el))
		}
		return "{" + strings.Join(attrs, ", ") + "}"
	}
	return v.GoString()
}

// Apply applies a binary operator to two values. Comparisons of values of different
// types are false (or true for !=). Ordering is defined for numbers and strings only.
func Apply(op Op, lhs, rhs cty.Value) cty.Value {
	switch op {
	case And:
		return cty.BoolVal(Truthy(lhs) && Truthy(rhs))
	case Or:
		return cty.BoolVal(Truthy(lhs) || Truthy(rhs))
	case Eq:
		return cty.BoolVal(equal(lhs, rhs))
	case NotEq:
		return cty.BoolVal(!equal(lhs, rhs))
	case Less:
		return cty.BoolVal(compare(lhs, rhs) < 0)
	case Greater:
		return cty.BoolVal(compare(lhs, rhs) > 0)
	}
	tracer().Errorf("unknown operator %s", op)
	return Null
}

func isNull(v cty.Value) bool {
	return v == cty.NilVal || v.IsNull()
}

func equal(lhs, rhs cty.Value) bool {
	if isNull(lhs) || isNull(rhs) {
		return isNull(lhs) && isNull(rhs)
	}
	if !lhs.IsKnown() || !rhs.IsKnown() || !lhs.Type().Equals(rhs.Type()) {
		return false
	}
	return lhs.Equals(rhs).True()
}

// compare returns -1, 0 or 1 for ordered values, and 0 for anything else.
func compare(lhs, rhs cty.Value) int {
	if isNull(lhs) || isNull(rhs) || !lhs.IsKnown() || !rhs.IsKnown() {
		return 0
	}
	switch {
	case lhs.Type() == cty.Number && rhs.Type() == cty.Number:
		return lhs.AsBigFloat().Cmp(rhs.AsBigFloat())
	case lhs.Type() == cty.String && rhs.Type() == cty.String:
		return strings.Compare(lhs.AsString(), rhs.AsString())
	}
	return 0
}
