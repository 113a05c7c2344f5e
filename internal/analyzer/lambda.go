package analyzer

import (
	"github.com/featherscala/fsc/internal/ast"
	"github.com/featherscala/fsc/internal/diagnostics"
	"github.com/featherscala/fsc/internal/symbols"
	"github.com/featherscala/fsc/internal/types"
)

// resolveTypeAnn turns a surface type annotation into a types.Type. A bare
// name is first tried against the ground-type keywords, then against the
// enclosing scope (a class name); anything else found is wrapped as a
// SymbolType and resolved lazily once that symbol is sealed.
func (a *Analyzer) resolveTypeAnn(ann ast.TypeAnn) (types.Type, error) {
	switch t := ann.(type) {
	case *ast.NamedType:
		switch t.Name {
		case "Int":
			return types.Int, nil
		case "Float":
			return types.Float, nil
		case "Boolean", "Bool":
			return types.Bool, nil
		case "String":
			return types.String, nil
		case "Unit":
			return types.UnitT, nil
		}
		sym, ok := a.Scope.FindSym(t.Name)
		if !ok {
			return nil, diagnostics.NewTypeError(t.Pos, "unknown type %q", t.Name)
		}
		return types.SymbolType{Ref: symbolRef{sym}}, nil
	case *ast.ArrayTypeAnn:
		elem, err := a.resolveTypeAnn(t.Elem)
		if err != nil {
			return nil, err
		}
		return types.Array{Elem: elem}, nil
	case *ast.LambdaTypeAnn:
		params := make([]types.Type, len(t.Params))
		for i, p := range t.Params {
			pt, err := a.resolveTypeAnn(p)
			if err != nil {
				return nil, err
			}
			params[i] = pt
		}
		ret, err := a.resolveTypeAnn(t.Ret)
		if err != nil {
			return nil, err
		}
		return types.Lambda{Params: params, Ret: ret}, nil
	default:
		return nil, diagnostics.NewTypeError(ann.Span(), "internal error: unknown type annotation %T", ann)
	}
}

// symbolRef adapts a *symbols.Symbol to types.SymbolRef without types
// needing to import symbols.
type symbolRef struct{ sym *symbols.Symbol }

func (r symbolRef) Name() string { return r.sym.Name }
func (r symbolRef) ResolvedType() (types.Type, bool) {
	if r.sym.Dealias.Kind == symbols.DealiasPlaceholder {
		return nil, false
	}
	return r.sym.Type, true
}

// typeLambda implements spec.md §4.2's lambda rule: type each parameter
// (annotated or fresh), open a scope, type the body, and record every name
// the body references that resolves outside the lambda's own parameter
// frame as a free name for closure conversion to capture.
func (a *Analyzer) typeLambda(n *ast.LambdaExpr, recursive bool) (types.Type, error) {
	paramTypes := make([]types.Type, len(n.Params))

	a.pushScope()
	threshold := a.Scope.Depth() - 1
	lf := &lambdaFrame{threshold: threshold, seen: make(map[*symbols.Symbol]bool)}
	a.lambdaStack = append(a.lambdaStack, lf)

	for i := range n.Params {
		p := &n.Params[i]
		var pt types.Type
		if p.Ann != nil {
			t, err := a.resolveTypeAnn(p.Ann)
			if err != nil {
				a.lambdaStack = a.lambdaStack[:len(a.lambdaStack)-1]
				a.popScope()
				return nil, err
			}
			pt = t
		} else {
			pt = a.freshVar(p.Pos)
		}
		sym := symbols.NewResolved(p.Name, symbols.DealiasLambdaParam, p, pt, p.Pos)
		p.Sym = sym
		a.declareSymbol(sym)
		paramTypes[i] = pt
	}

	bodyT, err := a.TypeExpr(n.Body, recursive)
	if err != nil {
		a.lambdaStack = a.lambdaStack[:len(a.lambdaStack)-1]
		a.popScope()
		return nil, err
	}

	var retT types.Type = bodyT
	if n.RetAnn != nil {
		declared, err := a.resolveTypeAnn(n.RetAnn)
		if err != nil {
			a.lambdaStack = a.lambdaStack[:len(a.lambdaStack)-1]
			a.popScope()
			return nil, err
		}
		a.Solver.AddEquality(bodyT, declared, n.RetAnn.Span(), n.Body.Span())
		retT = declared
	}

	a.lambdaStack = a.lambdaStack[:len(a.lambdaStack)-1]
	inner := a.popScope()
	if k := len(a.frames); k > 0 {
		a.frames[k-1].nodes = append(a.frames[k-1].nodes, inner.nodes...)
	}
	n.FreeNames = lf.free

	return a.record(n, types.Lambda{Params: paramTypes, Ret: retT}), nil
}
