package types

import (
	"fmt"

	"github.com/featherscala/fsc/internal/token"
)

// UnifyError is raised by Unify/Solve; it carries the constraint's
// originating span plus, when available, the spans of its two sides so the
// driver can underline both operands (spec.md §4.1, §7).
type UnifyError struct {
	Msg               string
	Span              token.Span
	LHSSpan, RHSSpan  token.Span
	HasLHS, HasRHS    bool
}

func (e *UnifyError) Error() string { return e.Msg }

func newUnifyErr(span token.Span, format string, args ...interface{}) *UnifyError {
	return &UnifyError{Msg: fmt.Sprintf(format, args...), Span: span}
}

// equality is one accumulated constraint (spec.md §4.1).
type equality struct {
	a, b             Type
	span             token.Span
	lhsSpan, rhsSpan token.Span
	hasLHS, hasRHS   bool
}

// Solver accumulates equality constraints and solves them by union-find
// style unification, exactly spec.md §4.1's contract: AddEquality records,
// Solve returns a Subst, Substitute reports whether a type is still open.
//
// Grounded on internal/typesystem/unify.go's Unify/Bind pair, simplified to
// spec.md's eight-form type language (no higher-kinded types, no row
// polymorphism, no type-alias unwrapping).
type Solver struct {
	constraints []equality
}

// NewSolver creates an empty constraint store.
func NewSolver() *Solver { return &Solver{} }

// AddEquality records a constraint that a and b must unify, with any Ref
// wrapper stripped from either side first.
func (s *Solver) AddEquality(a, b Type, span token.Span, spans ...token.Span) {
	eq := equality{a: Deref(a), b: Deref(b), span: span}
	if len(spans) > 0 {
		eq.lhsSpan, eq.hasLHS = spans[0], true
	}
	if len(spans) > 1 {
		eq.rhsSpan, eq.hasRHS = spans[1], true
	}
	s.constraints = append(s.constraints, eq)
}

// Solve processes every recorded constraint in order, threading a growing
// substitution through each unification, and returns the final Subst. The
// constraint list is left intact (a force-instantiate pass may call Solve
// more than once as more constraints accumulate within the same frame).
func (s *Solver) Solve() (Subst, error) {
	sub := Subst{}
	for _, eq := range s.constraints {
		a := eq.a.Apply(sub)
		b := eq.b.Apply(sub)
		next, err := Unify(a, b)
		if err != nil {
			if ue, ok := err.(*UnifyError); ok {
				ue.Span = eq.span
				if eq.hasLHS {
					ue.LHSSpan, ue.HasLHS = eq.lhsSpan, true
				}
				if eq.hasRHS {
					ue.RHSSpan, ue.HasRHS = eq.rhsSpan, true
				}
			}
			return nil, err
		}
		sub = compose(next, sub)
	}
	return sub, nil
}

// Substitute applies the solver's substitution (recomputed via Solve) to t.
// It returns (t, true) once every variable in t is resolved, or (t, false)
// with t left partially substituted when some variable remains open.
func (s *Solver) Substitute(t Type) (Type, bool) {
	sub, err := s.Solve()
	if err != nil {
		return t, false
	}
	resolved := t.Apply(sub)
	return resolved, len(resolved.FreeTypeVars()) == 0
}

// compose returns a substitution equivalent to applying `inner` then
// `outer`: outer ++ {k: v.Apply(outer) for k,v in inner}.
func compose(outer, inner Subst) Subst {
	out := Subst{}
	for k, v := range inner {
		out[k] = v.Apply(outer)
	}
	for k, v := range outer {
		if _, exists := out[k]; !exists {
			out[k] = v
		}
	}
	return out
}

// Unify attempts to find a substitution making t1 and t2 structurally equal,
// per spec.md §4.1's algorithm: TypeVar binds with an occurs check,
// structural decomposition for Lambda/Array/Class/Ref, ClassTypeVar
// predicate discharge, and constructor equality for ground types.
func Unify(t1, t2 Type) (Subst, error) {
	return unify(t1, t2, token.Span{})
}

func unify(t1, t2 Type, span token.Span) (Subst, error) {
	if tv, ok := t1.(TypeVar); ok {
		return bind(tv, t2, span)
	}
	if tv, ok := t2.(TypeVar); ok {
		return bind(tv, t1, span)
	}

	switch a := t1.(type) {
	case Ground:
		b, ok := t2.(Ground)
		if !ok || a != b {
			return nil, newUnifyErr(span, "type mismatch: %s vs %s", t1, t2)
		}
		return Subst{}, nil

	case Array:
		b, ok := t2.(Array)
		if !ok {
			return nil, newUnifyErr(span, "type mismatch: %s vs %s", t1, t2)
		}
		return unify(a.Elem, b.Elem, span)

	case Lambda:
		b, ok := t2.(Lambda)
		if !ok {
			return nil, newUnifyErr(span, "type mismatch: %s vs %s", t1, t2)
		}
		if len(a.Params) != len(b.Params) {
			return nil, newUnifyErr(span, "arity mismatch: %d vs %d parameters", len(a.Params), len(b.Params))
		}
		sub := Subst{}
		for i := range a.Params {
			s2, err := unify(a.Params[i].Apply(sub), b.Params[i].Apply(sub), span)
			if err != nil {
				return nil, err
			}
			sub = compose(s2, sub)
		}
		s2, err := unify(a.Ret.Apply(sub), b.Ret.Apply(sub), span)
		if err != nil {
			return nil, err
		}
		return compose(s2, sub), nil

	case Class:
		b, ok := t2.(Class)
		if ok {
			if a.Def == b.Def {
				return Subst{}, nil
			}
			return nil, newUnifyErr(span, "class mismatch: %s vs %s", a.Def.Name, b.Def.Name)
		}
		if ctv, ok := t2.(ClassTypeVar); ok {
			return dischargePredicates(a, ctv, span)
		}
		return nil, newUnifyErr(span, "type mismatch: %s vs %s", t1, t2)

	case ClassTypeVar:
		if b, ok := t2.(Class); ok {
			return dischargePredicates(b, a, span)
		}
		if _, ok := t2.(ClassTypeVar); ok {
			// Both sides are open class variables over the same
			// currently-being-checked class; their predicate lists live
			// on the analyzer's per-class accumulator (see
			// analyzer.classCtx), not in the substitution, so there is
			// nothing further to record here — discharge happens once
			// when the class is sealed to a concrete Class.
			return Subst{}, nil
		}
		return nil, newUnifyErr(span, "type mismatch: %s vs %s", t1, t2)

	case Ref:
		b, ok := t2.(Ref)
		if !ok {
			return nil, newUnifyErr(span, "internal error: Ref unified against non-Ref %s", t2)
		}
		return unify(a.Inner, b.Inner, span)

	case SymbolType:
		return unify(Resolve(a), t2, span)

	default:
		if b, ok := t2.(SymbolType); ok {
			return unify(t1, Resolve(b), span)
		}
		return nil, newUnifyErr(span, "unsupported type pair: %T vs %T", t1, t2)
	}
}

// dischargePredicates checks that every HasMember predicate accumulated on
// ctv is satisfiable against class's now-known members: the name must
// exist and its type must unify.
func dischargePredicates(class Class, ctv ClassTypeVar, span token.Span) (Subst, error) {
	sub := Subst{}
	for _, pred := range ctv.Predicates {
		m, ok := class.Def.Member(pred.Name)
		if !ok {
			return nil, newUnifyErr(span, "class %s has no member %q", class.Def.Name, pred.Name)
		}
		s2, err := unify(pred.Type.Apply(sub), m.Type.Apply(sub), span)
		if err != nil {
			return nil, err
		}
		sub = compose(s2, sub)
	}
	return sub, nil
}

// bind binds a type variable tv to t, performing the occurs check and
// short-circuiting a trivial tv = tv equation.
func bind(tv TypeVar, t Type, span token.Span) (Subst, error) {
	if other, ok := t.(TypeVar); ok && other.ID == tv.ID {
		return Subst{}, nil
	}
	for _, fv := range t.FreeTypeVars() {
		if fv.ID == tv.ID {
			return nil, newUnifyErr(span, "infinite type: %s occurs in %s", tv, t)
		}
	}
	return Subst{tv.ID: t}, nil
}
