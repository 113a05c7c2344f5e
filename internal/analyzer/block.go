package analyzer

import (
	"github.com/featherscala/fsc/internal/ast"
	"github.com/featherscala/fsc/internal/config"
	"github.com/featherscala/fsc/internal/diagnostics"
	"github.com/featherscala/fsc/internal/symbols"
	"github.com/featherscala/fsc/internal/token"
	"github.com/featherscala/fsc/internal/types"
)

// typeBlock implements spec.md §4.2's recursive-group block rule. The
// surface grammar only ever produces this recursive form (see spec.md §9's
// note on the non-recursive variant being internal-only), so every
// BlockExpr is typed as one.
//
// The trailing expression is typed, then force-instantiated, in a second
// pass after the definitions' own force-instantiate: this keeps every
// node this frame ever records — definitions and trailing expression alike
// — fully substituted by the time the scope closes, rather than only the
// nodes that existed at the moment the definitions settled.
func (a *Analyzer) typeBlock(n *ast.BlockExpr) (types.Type, error) {
	a.pushScope()

	syms := make([]*symbols.Symbol, len(n.Defs))
	for i, d := range n.Defs {
		sym, err := a.predeclareBinding(d)
		if err != nil {
			a.popScope()
			return nil, err
		}
		syms[i] = sym
	}

	for i, d := range n.Defs {
		if err := a.typeBindingValue(d, syms[i], true); err != nil {
			a.popScope()
			return nil, err
		}
	}

	if err := a.forceInstantiate(n.Pos); err != nil {
		a.popScope()
		return nil, err
	}
	for i, d := range n.Defs {
		finalT := a.Info.Types[d.Value]
		syms[i].Resolve(d, finalT)
		d.Sym = syms[i]
	}

	if _, err := a.TypeExpr(n.Body, false); err != nil {
		a.popScope()
		return nil, err
	}
	if err := a.forceInstantiate(n.Pos); err != nil {
		a.popScope()
		return nil, err
	}
	bodyT := a.Info.Types[n.Body]

	a.popScope()
	return a.record(n, bodyT), nil
}

// Check types an entire compilation unit: spec.md §4.2's recursive-group
// algorithm applied at top level, with class declarations pre-declared
// alongside value bindings so classes and top-level values may reference
// each other in any order. Unlike a nested BlockExpr, a Program has no
// trailing expression — it instead requires a top-level `main` binding
// (spec.md §6).
func (a *Analyzer) Check(p *ast.Program) error {
	a.pushFrame()

	defs := make([]*types.ClassDef, len(p.Classes))
	classSyms := make([]*symbols.Symbol, len(p.Classes))
	for i, cd := range p.Classes {
		def := &types.ClassDef{Name: cd.Name}
		sym := symbols.NewResolved(cd.Name, symbols.DealiasClassDef, cd, types.ClassTypeVar{Def: def}, cd.Pos)
		cd.Sym = sym
		a.declareSymbol(sym)
		defs[i] = def
		classSyms[i] = sym
	}

	for i, cd := range p.Classes {
		if err := a.typeClassHeader(cd, defs[i]); err != nil {
			a.popFrame()
			return err
		}
	}

	bindSyms := make([]*symbols.Symbol, len(p.Bindings))
	for i, b := range p.Bindings {
		sym, err := a.predeclareBinding(b)
		if err != nil {
			a.popFrame()
			return err
		}
		bindSyms[i] = sym
	}

	for i, cd := range p.Classes {
		if err := a.typeClassBody(cd, classSyms[i], defs[i]); err != nil {
			a.popFrame()
			return err
		}
	}

	for i, b := range p.Bindings {
		if err := a.typeBindingValue(b, bindSyms[i], true); err != nil {
			a.popFrame()
			return err
		}
	}

	progSpan := token.Span{File: p.File}
	if err := a.forceInstantiate(progSpan); err != nil {
		a.popFrame()
		return err
	}
	for i, b := range p.Bindings {
		finalT := a.Info.Types[b.Value]
		bindSyms[i].Resolve(b, finalT)
		b.Sym = bindSyms[i]
	}
	a.popFrame()

	if _, ok := a.Scope.FindSymHere(config.MainFuncName); !ok {
		return diagnostics.NewTypeError(progSpan, "program must declare a top-level %q binding", config.MainFuncName)
	}
	return nil
}
