// Package symbols implements the lexically nested symbol table described in
// spec.md §3.1: insertion-ordered scope frames, forward-declaration
// placeholders, and the mutable "dealias" slot that lets a symbol bound
// during recursive typing point first at a placeholder and later at its
// final typed definition.
//
// Grounded on the teacher's internal/symbols/symbol_table_core.go: a Symbol
// struct carrying a Kind, a Type and definition-site bookkeeping, looked up
// through scope-stack walking rather than dynamic dispatch.
package symbols

import (
	"github.com/featherscala/fsc/internal/token"
	"github.com/featherscala/fsc/internal/types"
)

// DealiasKind tags what a Symbol's dealias slot currently holds.
type DealiasKind int

const (
	// DealiasPlaceholder means the symbol was pre-declared for a recursive
	// group and has not yet been typed; Placeholder carries the fresh
	// X-prefixed type variable standing in for its eventual type.
	DealiasPlaceholder DealiasKind = iota
	// DealiasTyped means the symbol resolves to a finished typed
	// expression node (a val/var binding's body).
	DealiasTyped
	// DealiasLambdaParam means the symbol is a lambda parameter.
	DealiasLambdaParam
	// DealiasClassDef means the symbol names a class definition.
	DealiasClassDef
	// DealiasBuiltin means the symbol names one of the primitive bindings
	// of spec.md §6 (readInt, printlnInt, ...): Node holds the fixed C
	// runtime function name the code generator emits a call to, rather
	// than an ast node to lower.
	DealiasBuiltin
)

// Dealias is the mutable slot every Symbol carries. Node is an opaque
// payload (normally an *ast node) so that this package never imports ast —
// ast imports symbols, not the reverse. Callers type-assert Node against
// the concrete node type they expect for the given Kind.
type Dealias struct {
	Kind        DealiasKind
	Placeholder types.TypeVar
	Node        interface{}
}

// Symbol is a single named binding: a local, a lambda parameter, a class
// member, or a class definition.
type Symbol struct {
	Name    string
	Dealias *Dealias
	// Type is the symbol's current type, kept in lock-step with Dealias:
	// a fresh variable while Dealias.Kind is DealiasPlaceholder, the
	// binding body's type once resolved, a parameter's type, or
	// types.Class{Def} for a class definition symbol.
	Type    types.Type
	Mutable bool
	Pos     token.Span
	// IsMember is set for class members, so free-name tracking can tell a
	// member access apart from a genuinely captured outer local (members
	// are excluded from closure capture; reached through `self` instead).
	IsMember bool
}

// NewPlaceholder creates a symbol pre-declared for a recursive group.
func NewPlaceholder(name string, tv types.TypeVar, pos token.Span) *Symbol {
	return &Symbol{
		Name: name,
		Dealias: &Dealias{
			Kind:        DealiasPlaceholder,
			Placeholder: tv,
		},
		Type: tv,
		Pos:  pos,
	}
}

// NewResolved creates a symbol that is already bound to a node (a lambda
// parameter or a class definition) with a known type.
func NewResolved(name string, kind DealiasKind, node interface{}, t types.Type, pos token.Span) *Symbol {
	return &Symbol{
		Name:    name,
		Dealias: &Dealias{Kind: kind, Node: node},
		Type:    t,
		Pos:     pos,
	}
}

// Resolve overwrites the dealias slot in place, flipping a placeholder to
// its final typed definition, and updates Type to match. Every
// pre-existing pointer to this Symbol observes the update, which is what
// lets mutually recursive lambda bodies reference each other before either
// is fully typed.
func (s *Symbol) Resolve(node interface{}, t types.Type) {
	s.Dealias.Kind = DealiasTyped
	s.Dealias.Node = node
	s.Type = t
}

// Frame is one lexical scope level: an insertion-ordered name -> symbol map.
type Frame struct {
	names   []string
	symbols map[string]*Symbol
}

func newFrame() *Frame {
	return &Frame{symbols: make(map[string]*Symbol)}
}

// Ordered returns the symbols declared in this frame in declaration order.
func (f *Frame) Ordered() []*Symbol {
	out := make([]*Symbol, 0, len(f.names))
	for _, n := range f.names {
		out = append(out, f.symbols[n])
	}
	return out
}

// Table is the scope stack: a stack of Frames. The bottom frame is the
// global/prelude scope; Locate pushes a new frame, Relocate pops it.
type Table struct {
	frames []*Frame
}

// NewTable creates a scope stack with a single (global) frame.
func NewTable() *Table {
	return &Table{frames: []*Frame{newFrame()}}
}

// Locate pushes a fresh lexical frame (entering a block, lambda body, or
// class body).
func (t *Table) Locate() {
	t.frames = append(t.frames, newFrame())
}

// Relocate pops the innermost frame.
func (t *Table) Relocate() {
	if len(t.frames) == 0 {
		return
	}
	t.frames = t.frames[:len(t.frames)-1]
}

// Depth reports how many frames are currently pushed.
func (t *Table) Depth() int { return len(t.frames) }

// AddSymbol inserts sym into the current (innermost) frame.
func (t *Table) AddSymbol(sym *Symbol) {
	f := t.frames[len(t.frames)-1]
	if _, exists := f.symbols[sym.Name]; !exists {
		f.names = append(f.names, sym.Name)
	}
	f.symbols[sym.Name] = sym
}

// FindSymHere looks up name in the current frame only.
func (t *Table) FindSymHere(name string) (*Symbol, bool) {
	f := t.frames[len(t.frames)-1]
	sym, ok := f.symbols[name]
	return sym, ok
}

// FindSym walks outward from the innermost frame to the global frame and
// returns the innermost binding of name. It does not report which frame
// the binding was found in; callers that need that for free-name tracking
// use FindSymDepth instead.
func (t *Table) FindSym(name string) (*Symbol, bool) {
	for i := len(t.frames) - 1; i >= 0; i-- {
		if sym, ok := t.frames[i].symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// FindSymDepth is FindSym but additionally reports the index (0 = global)
// of the frame the binding was found in, so free-name tracking can compare
// it against the frame index of the enclosing lambda/member.
func (t *Table) FindSymDepth(name string) (*Symbol, int, bool) {
	for i := len(t.frames) - 1; i >= 0; i-- {
		if sym, ok := t.frames[i].symbols[name]; ok {
			return sym, i, true
		}
	}
	return nil, -1, false
}

// CurrentFrame returns the innermost frame, whose Ordered method lists its
// symbols in declaration order.
func (t *Table) CurrentFrame() *Frame {
	return t.frames[len(t.frames)-1]
}
