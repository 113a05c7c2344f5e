package analyzer

import (
	"reflect"

	"github.com/featherscala/fsc/internal/ast"
	"github.com/featherscala/fsc/internal/diagnostics"
	"github.com/featherscala/fsc/internal/symbols"
	"github.com/featherscala/fsc/internal/types"
)

// predeclareBinding implements spec.md §4.2 block-step 2 for one binding: a
// fresh forward ("X") type variable stands in for the binding until its
// body is typed, letting sibling definitions in the same recursive group
// reference it first. An ascription is folded in immediately as an
// equality rather than used as the placeholder's type directly, so every
// binding goes through the same force-instantiate path regardless of
// whether it carries one.
func (a *Analyzer) predeclareBinding(b *ast.Binding) (*symbols.Symbol, error) {
	tv := a.freshForwardVar(b.Pos)
	sym := symbols.NewPlaceholder(b.Name, tv, b.Pos)
	sym.Mutable = b.Mutable
	if b.Ann != nil {
		t, err := a.resolveTypeAnn(b.Ann)
		if err != nil {
			return nil, err
		}
		a.Solver.AddEquality(tv, t, b.Pos)
	}
	a.declareSymbol(sym)
	return sym, nil
}

// typeBindingValue types a pre-declared binding's value expression and
// equates it with the placeholder reserved for it.
func (a *Analyzer) typeBindingValue(b *ast.Binding, sym *symbols.Symbol, recursive bool) error {
	bodyT, err := a.TypeExpr(b.Value, recursive)
	if err != nil {
		return err
	}
	a.Solver.AddEquality(sym.Type, bodyT, b.Pos, b.Value.Span())
	return nil
}

// typeNew implements spec.md §4.2's `new C(args)` rule. The referenced
// class may still be mid-typing (its symbol holds an open ClassTypeVar
// rather than a sealed Class) when constructors reference each other
// across class declarations; constructor parameter types are resolved in
// a header pass before any class body is typed (see typeClassHeader) so
// this always has a concrete parameter list to check against.
func (a *Analyzer) typeNew(n *ast.NewExpr, recursive bool) (types.Type, error) {
	sym := n.ClassSym
	if sym == nil {
		found, ok := a.Scope.FindSym(n.ClassName)
		if !ok {
			return nil, diagnostics.NewTypeError(n.Pos, "unknown class %q", n.ClassName)
		}
		sym = found
		n.ClassSym = sym
	}

	inst := a.instantiate(sym.Type)
	var def *types.ClassDef
	switch ct := inst.(type) {
	case types.Class:
		def = ct.Def
	case types.ClassTypeVar:
		def = ct.Def
	default:
		return nil, diagnostics.NewTypeError(n.Pos, "%q is not a class", n.ClassName)
	}

	if len(n.Args) != len(def.CtorParams) {
		return nil, diagnostics.NewTypeError(n.Pos,
			"class %s expects %d constructor argument(s), got %d", def.Name, len(def.CtorParams), len(n.Args))
	}
	for i, arg := range n.Args {
		argT, err := a.TypeExpr(arg, recursive)
		if err != nil {
			return nil, err
		}
		a.Solver.AddEquality(def.CtorParams[i], argT, arg.Span())
	}
	return a.record(n, types.Class{Def: def}), nil
}

// typeAssignSym implements spec.md §4.2's symbol-assignment rule: the
// target must be mutable; the value either unifies (inside a still-open
// recursive group) or must already match exactly (outside one). A target
// resolving outside the current lexical frame is additionally credited as
// a free name of every lambda it escapes.
func (a *Analyzer) typeAssignSym(n *ast.AssignSymExpr, recursive bool) (types.Type, error) {
	sym := n.Sym
	if sym == nil {
		found, ok := a.Scope.FindSym(n.Name)
		if !ok {
			return nil, diagnostics.NewTypeError(n.Pos, "unknown identifier %q", n.Name)
		}
		sym = found
		n.Sym = sym
	}
	if !sym.Mutable {
		return nil, diagnostics.NewTypeError(n.Pos, "can not assign to immutable %q", n.Name)
	}
	a.creditFreeName(sym)

	valT, err := a.TypeExpr(n.Value, recursive)
	if err != nil {
		return nil, err
	}
	if recursive {
		a.Solver.AddEquality(sym.Type, valT, n.Pos, n.Value.Span())
	} else {
		lhs := a.instantiate(sym.Type)
		rhs := a.instantiate(valT)
		if !reflect.DeepEqual(lhs, rhs) {
			return nil, diagnostics.NewTypeError(n.Pos, "assignment type mismatch: %s vs %s", lhs, rhs)
		}
	}
	return a.record(n, types.UnitT), nil
}

// typeAssignLValue implements spec.md §4.2's l-value assignment rule.
func (a *Analyzer) typeAssignLValue(n *ast.AssignLValueExpr, recursive bool) (types.Type, error) {
	lvT, err := a.TypeExpr(n.LValue, recursive)
	if err != nil {
		return nil, err
	}
	inst := a.instantiate(lvT)
	ref, ok := inst.(types.Ref)
	if !ok {
		return nil, diagnostics.NewTypeError(n.Pos, "assignment target is not an l-value (got %s)", inst)
	}
	valT, err := a.TypeExpr(n.Value, recursive)
	if err != nil {
		return nil, err
	}
	a.Solver.AddEquality(ref.Inner, valT, n.Pos, n.LValue.Span(), n.Value.Span())
	return a.record(n, types.UnitT), nil
}

// typeClassHeader resolves constructor parameter types only, without
// opening the class's own scope. Running this for every class before any
// class body is typed lets classes reference each other's constructors in
// either declaration order.
func (a *Analyzer) typeClassHeader(cd *ast.ClassDecl, def *types.ClassDef) error {
	params := make([]types.Type, len(cd.CtorParams))
	for i := range cd.CtorParams {
		p := &cd.CtorParams[i]
		if p.Ann != nil {
			t, err := a.resolveTypeAnn(p.Ann)
			if err != nil {
				return err
			}
			params[i] = t
		} else {
			params[i] = a.freshVar(p.Pos)
		}
	}
	def.CtorParams = params
	return nil
}

// abortClassBody unwinds the class scope/stack on an error path.
func (a *Analyzer) abortClassBody(err error) error {
	a.classStack = a.classStack[:len(a.classStack)-1]
	a.popScope()
	return err
}

// typeClassBody implements spec.md §4.2's class rule: open scope, add
// constructor parameters, pre-declare all members so bodies may
// forward-reference each other, type each body, force-instantiate,
// discharge any predicates accumulated from external selects against the
// now-known members, then seal the class's own symbol from ClassTypeVar to
// Class.
func (a *Analyzer) typeClassBody(cd *ast.ClassDecl, sym *symbols.Symbol, def *types.ClassDef) error {
	a.pushScope()
	ctx := &classCtx{def: def}
	a.classStack = append(a.classStack, ctx)

	for i := range cd.CtorParams {
		p := &cd.CtorParams[i]
		psym := symbols.NewResolved(p.Name, symbols.DealiasLambdaParam, p, def.CtorParams[i], p.Pos)
		p.Sym = psym
		a.declareSymbol(psym)
	}

	memberSyms := make([]*symbols.Symbol, len(cd.Members))
	for i, m := range cd.Members {
		tv := a.freshForwardVar(m.Pos)
		msym := symbols.NewPlaceholder(m.Name, tv, m.Pos)
		msym.Mutable = m.Mutable
		msym.IsMember = true
		if m.Ann != nil {
			t, err := a.resolveTypeAnn(m.Ann)
			if err != nil {
				return a.abortClassBody(err)
			}
			a.Solver.AddEquality(tv, t, m.Pos)
		}
		a.declareSymbol(msym)
		memberSyms[i] = msym
	}

	for i, m := range cd.Members {
		bodyT, err := a.TypeExpr(m.Value, true)
		if err != nil {
			return a.abortClassBody(err)
		}
		a.Solver.AddEquality(memberSyms[i].Type, bodyT, m.Pos, m.Value.Span())
	}

	if err := a.forceInstantiate(cd.Pos); err != nil {
		return a.abortClassBody(err)
	}

	def.Members = def.Members[:0]
	for i, m := range cd.Members {
		finalT := a.Info.Types[m.Value]
		memberSyms[i].Resolve(m, finalT)
		m.Sym = memberSyms[i]
		def.Members = append(def.Members, types.Member{Name: m.Name, Type: finalT, Mutable: m.Mutable})
	}

	for _, pred := range ctx.predicates {
		mem, ok := def.Member(pred.Name)
		if !ok {
			return a.abortClassBody(diagnostics.NewTypeError(cd.Pos, "class %s has no member %q", def.Name, pred.Name))
		}
		a.Solver.AddEquality(pred.Type, mem.Type, cd.Pos)
	}
	if _, err := a.Solver.Solve(); err != nil {
		return a.abortClassBody(wrapUnifyErr(err, cd.Pos))
	}

	a.classStack = a.classStack[:len(a.classStack)-1]
	a.popScope()

	sym.Resolve(cd, types.Class{Def: def})
	cd.Sym = sym
	return nil
}
