// Package analyzer implements the typer of spec.md §4.2: it walks the
// untyped tree produced by the parser, emits equality constraints against a
// types.Solver, and periodically forces a frame to a fully-instantiated
// substitution before it can leave scope.
//
// Grounded on the teacher's internal/analyzer/inference.go (an
// InferenceContext threading a monotonically increasing type-variable
// counter and a symbol table through a big per-construct switch) and
// internal/analyzer/analyzer.go's notion of a typing pass that periodically
// "force instantiates" in-flight nodes. The teacher's analyzer targets a
// much richer language (traits, generics, modules); this one keeps its
// shape — one function per syntactic construct, a shared mutable context,
// typed errors instead of panics — for spec.md's much smaller surface.
package analyzer

import (
	"github.com/featherscala/fsc/internal/ast"
	"github.com/featherscala/fsc/internal/config"
	"github.com/featherscala/fsc/internal/diagnostics"
	"github.com/featherscala/fsc/internal/symbols"
	"github.com/featherscala/fsc/internal/token"
	"github.com/featherscala/fsc/internal/types"
)

// Info is the typing side-table: every expression node the analyzer visits
// gets an entry here once typed, exactly spec.md §3.3's "each expression is
// wrapped with its inferred type". Keyed by node identity (every ast.Expr
// implementation is used through a pointer) rather than embedding a Type
// field in every node struct — the same technique go/types uses for its own
// Info.Types map.
type Info struct {
	Types map[ast.Expr]types.Type
}

func newInfo() *Info { return &Info{Types: make(map[ast.Expr]types.Type)} }

// TypeOf returns the previously recorded type of e, or nil if e was never
// typed.
func (i *Info) TypeOf(e ast.Expr) types.Type { return i.Types[e] }

// frame is a typing frame: every node typed since the frame was pushed,
// retained so a later force-instantiate pass can rewrite all of them at
// once (spec.md §4.2, GLOSSARY "Typing frame").
type frame struct {
	nodes []ast.Expr
}

// classCtx accumulates the HasMember predicates discovered on a class's
// ClassTypeVar while that class's body is still being checked, and
// remembers the class's own definition so member/select typing can find it.
type classCtx struct {
	def        *types.ClassDef
	predicates []types.HasMember
}

// Analyzer is the typer. One Analyzer checks one compilation unit.
type Analyzer struct {
	Scope  *symbols.Table
	Solver *types.Solver
	Info   *Info

	frames     []*frame
	classStack []*classCtx

	// rowDefs maps a structurally-inferred receiver's type-variable id to
	// the synthetic ClassDef created for it the first time it was
	// selected upon (spec.md §3.2 ClassTypeVar, used here for the
	// "class-as-row predicate" path on an un-annotated receiver).
	rowDefs map[string]*types.ClassDef

	// symbolDepth records the scope depth every symbol was declared at,
	// independent of whether a reference to it later arrives pre-resolved
	// (Ident.Sym already set) or is looked up fresh by name — both paths
	// need the same depth to decide free-name capture.
	symbolDepth map[*symbols.Symbol]int

	// lambdaStack tracks the lambdas currently being typed, innermost
	// last, so every Ident reference can credit itself to every enclosing
	// lambda it escapes (spec.md §4.2 "Free-name tracking").
	lambdaStack []*lambdaFrame
}

// lambdaFrame accumulates one lambda's free-name set while its body is
// being typed.
type lambdaFrame struct {
	threshold int // scope depth of the lambda's own parameter frame
	seen      map[*symbols.Symbol]bool
	free      []*symbols.Symbol
}

// New creates an Analyzer with an empty global scope and a fresh solver.
func New() *Analyzer {
	a := &Analyzer{
		Scope:       symbols.NewTable(),
		Solver:      types.NewSolver(),
		Info:        newInfo(),
		rowDefs:     make(map[string]*types.ClassDef),
		symbolDepth: make(map[*symbols.Symbol]int),
	}
	declareBuiltins(a.Scope)
	return a
}

// declareBuiltins predeclares spec.md §6's primitive bindings into the
// global frame: readInt/readFloat take no arguments and read a line of
// stdin, printlnInt/printlnFloat take one argument and write it followed
// by a newline. Each resolves to a fixed C runtime function name rather
// than a lowered lambda body (internal/codegen emits their definitions
// once per translation unit).
func declareBuiltins(scope *symbols.Table) {
	builtins := []struct {
		name  string
		cName string
		t     types.Type
	}{
		{config.ReadIntFuncName, "fsc_read_int", types.Lambda{Ret: types.Int}},
		{config.ReadFloatFuncName, "fsc_read_float", types.Lambda{Ret: types.Float}},
		{config.PrintlnIntFuncName, "fsc_println_int", types.Lambda{Params: []types.Type{types.Int}, Ret: types.UnitT}},
		{config.PrintlnFloatFuncName, "fsc_println_float", types.Lambda{Params: []types.Type{types.Float}, Ret: types.UnitT}},
	}
	for _, b := range builtins {
		sym := symbols.NewResolved(b.name, symbols.DealiasBuiltin, b.cName, b.t, token.Span{})
		scope.AddSymbol(sym)
	}
}

// Reset clears the type-variable counter and starts a fresh scope/solver,
// used between independent compilations (spec.md §5: "unique-name
// counter... resettable between compilations").
func (a *Analyzer) Reset() {
	types.ResetIDs()
	a.Scope = symbols.NewTable()
	declareBuiltins(a.Scope)
	a.Solver = types.NewSolver()
	a.Info = newInfo()
	a.frames = nil
	a.classStack = nil
	a.rowDefs = make(map[string]*types.ClassDef)
	a.symbolDepth = make(map[*symbols.Symbol]int)
	a.lambdaStack = nil
}

// declareSymbol adds sym to the current (innermost) scope frame and
// remembers the depth it was declared at, for free-name tracking.
func (a *Analyzer) declareSymbol(sym *symbols.Symbol) {
	a.Scope.AddSymbol(sym)
	a.symbolDepth[sym] = a.Scope.Depth() - 1
}

// creditFreeName marks sym as referenced at the given declaration depth
// against every currently open lambda whose parameter frame sits deeper
// than that depth — i.e. every lambda sym escapes out of. Class members are
// never captured as free names; they are reached through the receiver
// instead (spec.md GLOSSARY "Free name").
func (a *Analyzer) creditFreeName(sym *symbols.Symbol) {
	if sym.IsMember || len(a.lambdaStack) == 0 {
		return
	}
	depth, ok := a.symbolDepth[sym]
	if !ok {
		return
	}
	for _, lf := range a.lambdaStack {
		if depth >= lf.threshold {
			continue
		}
		if lf.seen[sym] {
			continue
		}
		lf.seen[sym] = true
		lf.free = append(lf.free, sym)
	}
}

func (a *Analyzer) pushFrame() { a.frames = append(a.frames, &frame{}) }
func (a *Analyzer) popFrame() *frame {
	f := a.frames[len(a.frames)-1]
	a.frames = a.frames[:len(a.frames)-1]
	return f
}

// pushScope pushes both the lexical symbol scope and a typing frame in
// lock-step (spec.md §4.2: "Typing scopes are pushed/popped in lock-step
// with lexical scopes plus around class bodies").
func (a *Analyzer) pushScope() {
	a.Scope.Locate()
	a.pushFrame()
}

func (a *Analyzer) popScope() *frame {
	a.Scope.Relocate()
	return a.popFrame()
}

// record stores t as e's type and appends e to the current typing frame.
func (a *Analyzer) record(e ast.Expr, t types.Type) types.Type {
	a.Info.Types[e] = t
	if n := len(a.frames); n > 0 {
		a.frames[n-1].nodes = append(a.frames[n-1].nodes, e)
	}
	return t
}

func (a *Analyzer) freshVar(span token.Span) types.TypeVar {
	return types.NewTypeVar(span)
}

func (a *Analyzer) freshForwardVar(span token.Span) types.TypeVar {
	return types.NewForwardVar(span)
}

// instantiate applies the solver's current (possibly partial)
// substitution to t and resolves any SymbolType, matching the repeated
// "typeOf(e) after instantiation" phrasing of spec.md §4.2.
func (a *Analyzer) instantiate(t types.Type) types.Type {
	sub, err := a.Solver.Solve()
	if err != nil {
		return types.Resolve(t)
	}
	return types.Resolve(t.Apply(sub))
}

// forceInstantiate implements spec.md §4.2 step 4: solve every constraint
// recorded so far, then rewrite every node in the current typing frame
// in place, failing if any TypeVar survives.
func (a *Analyzer) forceInstantiate(errSpan token.Span) error {
	f := a.frames[len(a.frames)-1]
	sub, err := a.Solver.Solve()
	if err != nil {
		return wrapUnifyErr(err, errSpan)
	}
	for _, node := range f.nodes {
		t := a.Info.Types[node]
		resolved := types.Resolve(t.Apply(sub))
		if fvs := resolved.FreeTypeVars(); len(fvs) > 0 {
			return diagnostics.NewTypeError(node.Span(),
				"could not fully infer the type of this expression (left with %s)", fvs[0])
		}
		if _, ok := resolved.(types.ClassTypeVar); ok {
			return diagnostics.NewTypeError(node.Span(), "could not resolve this expression to a concrete class")
		}
		a.Info.Types[node] = resolved
	}
	return nil
}

func wrapUnifyErr(err error, fallback token.Span) *diagnostics.TypeError {
	if ue, ok := err.(*types.UnifyError); ok {
		te := diagnostics.NewTypeError(ue.Span, "%s", ue.Msg)
		if ue.HasLHS {
			te = te.WithSecondary(ue.LHSSpan)
		}
		if ue.HasRHS {
			te = te.WithSecondary(ue.RHSSpan)
		}
		return te
	}
	return diagnostics.NewTypeError(fallback, "%s", err.Error())
}
