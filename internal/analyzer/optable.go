package analyzer

import "github.com/featherscala/fsc/internal/types"

// binSig is one candidate signature for a binary operator (spec.md §4.4).
type binSig struct {
	L, R, Ret types.Type
}

// binTable lists, per operator, the ground-type signatures it accepts. `==`
// and `!=` are handled specially (any same-type pair), not through this
// table.
var binTable = map[string][]binSig{
	"+": {{types.Int, types.Int, types.Int}, {types.Float, types.Float, types.Float}},
	"-": {{types.Int, types.Int, types.Int}, {types.Float, types.Float, types.Float}},
	"*": {{types.Int, types.Int, types.Int}, {types.Float, types.Float, types.Float}},
	"/": {{types.Int, types.Int, types.Int}, {types.Float, types.Float, types.Float}},
	"^": {{types.Int, types.Int, types.Int}, {types.Float, types.Float, types.Float}},
	"%": {{types.Int, types.Int, types.Int}},
	"<": {{types.Int, types.Int, types.Bool}, {types.Float, types.Float, types.Bool}},
	"<=": {{types.Int, types.Int, types.Bool}, {types.Float, types.Float, types.Bool}},
	">":  {{types.Int, types.Int, types.Bool}, {types.Float, types.Float, types.Bool}},
	">=": {{types.Int, types.Int, types.Bool}, {types.Float, types.Float, types.Bool}},
	"&&": {{types.Bool, types.Bool, types.Bool}},
	"||": {{types.Bool, types.Bool, types.Bool}},
}

// equalityOps are handled outside binTable: `a == b` / `a != b` unify a
// against b and produce Bool regardless of their (shared) ground type.
var equalityOps = map[string]bool{"==": true, "!=": true}

// unarySig is one candidate signature for a unary operator.
type unarySig struct {
	X, Ret types.Type
}

var unaryTable = map[string][]unarySig{
	"!": {{types.Bool, types.Bool}},
	"-": {{types.Int, types.Int}, {types.Float, types.Float}},
}
