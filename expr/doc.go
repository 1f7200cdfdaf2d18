/*
Package expr implements the expressions bound to widget attributes, loop collections
and branch conditions.

Expressions form a closed set of types: literals (Primitive, List), references to
names in scope (Ident), field and element access (Dot, Index), negation (Not) and
binary operators (Binary). Package expr does not evaluate identifiers itself, as
names are resolved against the scope of a widget and reading state subscribes the
widget to it. It does, however, implement the operators on dynamic values, which
are represented as cty values.

Expressions are usually decoded from YAML:

    "$list"                    → Ident list
    "$item.name"               → Dot(Ident item, name)
    "$rows.0"                  → Index(Ident rows, 0)
    {not: "$done"}             → Not(Ident done)
    {eq: ["$count", 3]}        → Binary(==, Ident count, 3)
    [1, 2, 3]                  → List(1, 2, 3)
    hello                      → Primitive "hello"

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package expr

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'reactree.expr'.
func tracer() tracing.Trace {
	return tracing.Select("reactree.expr")
}
