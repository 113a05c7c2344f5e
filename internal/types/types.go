// Package types implements the type representation of spec.md §3.2: ground
// types, arrays, lambdas, classes (both the closed Class form and the open
// ClassTypeVar form used while a class body is still being checked),
// unification variables, symbol-name type references, and the Ref l-value
// wrapper.
//
// Grounded on internal/typesystem/types.go and internal/typesystem/kinds.go:
// a closed Type interface implemented by small value types, each knowing how
// to apply a substitution and report its free type variables. Where the
// teacher supports higher-kinded application and row polymorphism for a much
// larger language, this package keeps only the eight forms spec.md names.
package types

import (
	"fmt"
	"sort"
	"strings"
)

// Type is the interface every type representation implements.
type Type interface {
	String() string
	Apply(Subst) Type
	FreeTypeVars() []TypeVar
}

// Subst maps type-variable ids (TypeVar.ID) to the Type they were unified
// to.
type Subst map[string]Type

// ---- Ground types ----

type Ground int

const (
	Int Ground = iota
	Float
	Bool
	String
	UnitT
)

func (g Ground) String() string {
	switch g {
	case Int:
		return "Int"
	case Float:
		return "Float"
	case Bool:
		return "Boolean"
	case String:
		return "String"
	case UnitT:
		return "Unit"
	default:
		return "<bad ground>"
	}
}
func (g Ground) Apply(Subst) Type            { return g }
func (g Ground) FreeTypeVars() []TypeVar     { return nil }

// ---- Array ----

type Array struct{ Elem Type }

func (a Array) String() string { return "Array[" + a.Elem.String() + "]" }
func (a Array) Apply(s Subst) Type {
	return Array{Elem: a.Elem.Apply(s)}
}
func (a Array) FreeTypeVars() []TypeVar { return a.Elem.FreeTypeVars() }

// ---- Lambda ----

type Lambda struct {
	Params []Type
	Ret    Type
}

func (l Lambda) String() string {
	parts := make([]string, len(l.Params))
	for i, p := range l.Params {
		parts[i] = p.String()
	}
	return "(" + strings.Join(parts, ", ") + ") => " + l.Ret.String()
}
func (l Lambda) Apply(s Subst) Type {
	params := make([]Type, len(l.Params))
	for i, p := range l.Params {
		params[i] = p.Apply(s)
	}
	return Lambda{Params: params, Ret: l.Ret.Apply(s)}
}
func (l Lambda) FreeTypeVars() []TypeVar {
	var out []TypeVar
	for _, p := range l.Params {
		out = append(out, p.FreeTypeVars()...)
	}
	out = append(out, l.Ret.FreeTypeVars()...)
	return out
}

// ---- Class (closed) / Member / ClassDef ----

// Member describes one class member's slot once it is known.
type Member struct {
	Name    string
	Type    Type
	Mutable bool
}

// ClassDef is the shared, mutable definition a Class and a ClassTypeVar
// point at. Node is an opaque payload (normally *ast.ClassDecl) so this
// package never imports ast. ClassDef identity (pointer equality) is what
// Unify uses to decide whether two Class values name the same class.
type ClassDef struct {
	Name    string
	Members []Member
	Node    interface{}
	// CtorParams is resolved in a header pass before any class body is
	// typed, so `new C(...)` sites can check arity/types against a class
	// whose own body has not been checked yet (mutual construction across
	// class declarations).
	CtorParams []Type
}

func (c *ClassDef) Member(name string) (Member, bool) {
	for _, m := range c.Members {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}

type Class struct{ Def *ClassDef }

func (c Class) String() string           { return c.Def.Name }
func (c Class) Apply(Subst) Type         { return c }
func (c Class) FreeTypeVars() []TypeVar  { return nil }

// HasMember is a predicate accumulated against a ClassTypeVar: "this
// not-yet-sealed class must have a member named Name of type Type".
type HasMember struct {
	Name string
	Type Type
}

// ClassTypeVar is the open form of a class type, used only while its class
// body is being checked (spec.md §3.2 invariant: it must collapse to Class
// before the typed tree leaves the checker).
type ClassTypeVar struct {
	Def        *ClassDef
	Predicates []HasMember
}

func (c ClassTypeVar) String() string {
	return c.Def.Name + "?"
}
func (c ClassTypeVar) Apply(s Subst) Type {
	preds := make([]HasMember, len(c.Predicates))
	for i, p := range c.Predicates {
		preds[i] = HasMember{Name: p.Name, Type: p.Type.Apply(s)}
	}
	return ClassTypeVar{Def: c.Def, Predicates: preds}
}
func (c ClassTypeVar) FreeTypeVars() []TypeVar {
	var out []TypeVar
	for _, p := range c.Predicates {
		out = append(out, p.Type.FreeTypeVars()...)
	}
	return out
}

// ---- TypeVar (unification variable) ----

var counter int

// NextID returns a fresh, process-wide-unique numeric suffix. Kept separate
// from internal/names' compilation-facing uniqueName service: this one is
// purely for TypeVar identity inside a single typing pass and is reset
// alongside it (see analyzer.Analyzer.Reset).
func NextID() int {
	counter++
	return counter
}

// ResetIDs clears the type-variable counter. Exposed for tests and for a
// fresh top-level compilation (spec.md §5: "unique-name counter... process-
// wide monotonic integer; resettable between compilations").
func ResetIDs() { counter = 0 }

// TypeVar is a unification variable. Prefix is "T" for ordinary expression
// variables and "X" for the forward-declaration variables of a recursive
// group; it carries no semantic weight, only diagnostics.
type TypeVar struct {
	ID     string
	Prefix string
	Origin fmt.Stringer // optional source position, for diagnostics only
}

// NewTypeVar allocates a fresh expression-level ("T") type variable.
func NewTypeVar(origin fmt.Stringer) TypeVar {
	return TypeVar{ID: fmt.Sprintf("t%d", NextID()), Prefix: "T", Origin: origin}
}

// NewForwardVar allocates a fresh recursive-group ("X") type variable.
func NewForwardVar(origin fmt.Stringer) TypeVar {
	return TypeVar{ID: fmt.Sprintf("x%d", NextID()), Prefix: "X", Origin: origin}
}

func (t TypeVar) String() string { return t.Prefix + t.ID }
func (t TypeVar) Apply(s Subst) Type {
	if repl, ok := s[t.ID]; ok {
		if repl == nil {
			return t
		}
		if rv, ok := repl.(TypeVar); ok && rv.ID == t.ID {
			return t
		}
		return repl.Apply(s)
	}
	return t
}
func (t TypeVar) FreeTypeVars() []TypeVar { return []TypeVar{t} }

// ---- SymbolType ----

// SymbolRef is the minimal read-only view of a symbol SymbolType needs:
// resolving a bare type identifier (e.g. a class name in an annotation) to
// a concrete type by looking at what its dealias slot currently holds.
// The symbols package implements this trivially; kept as an interface here
// so types need not import symbols.
type SymbolRef interface {
	// ResolvedType returns the type the referenced symbol currently stands
	// for (its class definition, most commonly), or false if it cannot yet
	// be resolved.
	ResolvedType() (Type, bool)
	Name() string
}

// SymbolType is a type written as a bare identifier in source (a class
// name in a parameter annotation, say); it is resolved lazily by looking up
// the symbol it names.
type SymbolType struct {
	Ref SymbolRef
}

func (s SymbolType) String() string {
	if s.Ref == nil {
		return "<unresolved>"
	}
	return s.Ref.Name()
}
func (s SymbolType) Apply(sub Subst) Type { return s }
func (s SymbolType) FreeTypeVars() []TypeVar { return nil }

// Resolve follows a SymbolType to its concrete type, or returns t unchanged
// (not a SymbolType) if t is not one.
func Resolve(t Type) Type {
	if st, ok := t.(SymbolType); ok {
		if rt, ok := st.Ref.ResolvedType(); ok {
			return Resolve(rt)
		}
	}
	return t
}

// ---- Ref (l-value wrapper) ----

// Ref marks a typed node as an l-value whose value-type is Inner. It is
// never itself the subject of a unification equation (spec.md §3.2
// invariant); Solver.AddEquality strips it from both sides before recording
// an equality, and the typer re-applies it to the result as needed.
type Ref struct{ Inner Type }

func (r Ref) String() string           { return "&" + r.Inner.String() }
func (r Ref) Apply(s Subst) Type       { return Ref{Inner: r.Inner.Apply(s)} }
func (r Ref) FreeTypeVars() []TypeVar  { return r.Inner.FreeTypeVars() }

// Deref strips a Ref wrapper if present.
func Deref(t Type) Type {
	if r, ok := t.(Ref); ok {
		return r.Inner
	}
	return t
}

// SortedSubstKeys is a small test/debugging helper producing deterministic
// iteration order over a Subst.
func SortedSubstKeys(s Subst) []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
