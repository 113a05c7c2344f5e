package analyzer

import (
	"reflect"

	"github.com/featherscala/fsc/internal/ast"
	"github.com/featherscala/fsc/internal/diagnostics"
	"github.com/featherscala/fsc/internal/types"
)

// TypeExpr is the typer's main dispatch: one case per expression kind, each
// implementing the matching bullet of spec.md §4.2. recursive selects
// recursive-group semantics for the handful of constructs that behave
// differently inside a block/program's pre-declared definitions (val/var
// bodies, symbol assignment).
func (a *Analyzer) TypeExpr(e ast.Expr, recursive bool) (types.Type, error) {
	switch n := e.(type) {
	case *ast.IntLit:
		return a.record(n, types.Int), nil
	case *ast.FloatLit:
		return a.record(n, types.Float), nil
	case *ast.BoolLit:
		return a.record(n, types.Bool), nil
	case *ast.StringLit:
		return a.record(n, types.String), nil
	case *ast.ArrayLitExpr:
		return a.typeArrayLit(n, recursive)
	case *ast.Ident:
		return a.typeIdent(n)
	case *ast.SelectExpr:
		return a.typeSelect(n, recursive)
	case *ast.ApplyExpr:
		return a.typeApply(n, recursive)
	case *ast.IfExpr:
		return a.typeIf(n, recursive)
	case *ast.WhileExpr:
		return a.typeWhile(n, recursive)
	case *ast.BinOpExpr:
		return a.typeBinOp(n, recursive)
	case *ast.UnaryOpExpr:
		return a.typeUnaryOp(n, recursive)
	case *ast.LambdaExpr:
		return a.typeLambda(n, recursive)
	case *ast.BlockExpr:
		return a.typeBlock(n)
	case *ast.NewExpr:
		return a.typeNew(n, recursive)
	case *ast.AssignSymExpr:
		return a.typeAssignSym(n, recursive)
	case *ast.AssignLValueExpr:
		return a.typeAssignLValue(n, recursive)
	default:
		return nil, diagnostics.NewTypeError(e.Span(), "internal error: unknown expression node %T", e)
	}
}

func (a *Analyzer) typeArrayLit(n *ast.ArrayLitExpr, recursive bool) (types.Type, error) {
	lenT, err := a.TypeExpr(n.Length, recursive)
	if err != nil {
		return nil, err
	}
	a.Solver.AddEquality(lenT, types.Int, n.Length.Span())
	elem := a.freshVar(n.Pos)
	return a.record(n, types.Array{Elem: elem}), nil
}

func (a *Analyzer) typeIdent(n *ast.Ident) (types.Type, error) {
	sym := n.Sym
	if sym == nil {
		found, ok := a.Scope.FindSym(n.Name)
		if !ok {
			return nil, diagnostics.NewTypeError(n.Pos, "unknown identifier %q", n.Name)
		}
		sym = found
		n.Sym = sym
	}
	a.creditFreeName(sym)
	t := sym.Type
	if sym.Mutable {
		t = types.Ref{Inner: t}
	}
	return a.record(n, t), nil
}

func (a *Analyzer) findClassCtx(def *types.ClassDef) *classCtx {
	for i := len(a.classStack) - 1; i >= 0; i-- {
		if a.classStack[i].def == def {
			return a.classStack[i]
		}
	}
	return nil
}

func (a *Analyzer) typeSelect(n *ast.SelectExpr, recursive bool) (types.Type, error) {
	recvT, err := a.TypeExpr(n.Recv, recursive)
	if err != nil {
		return nil, err
	}
	inst := types.Deref(a.instantiate(recvT))

	switch rt := inst.(type) {
	case types.Class:
		m, ok := rt.Def.Member(n.Member)
		if !ok {
			return nil, diagnostics.NewTypeError(n.Pos, "class %s has no member %q", rt.Def.Name, n.Member)
		}
		t := m.Type
		if m.Mutable {
			t = types.Ref{Inner: t}
		}
		return a.record(n, t), nil

	case types.ClassTypeVar:
		fresh := a.freshVar(n.Pos)
		if ctx := a.findClassCtx(rt.Def); ctx != nil {
			ctx.predicates = append(ctx.predicates, types.HasMember{Name: n.Member, Type: fresh})
		}
		return a.record(n, fresh), nil

	case types.TypeVar:
		// Structurally-inferred receiver (spec.md §3.2 "class-as-row
		// predicates"): the first select on an un-annotated type variable
		// promotes it to an open ClassTypeVar over a synthetic class
		// definition; later selects on the same variable extend that
		// same definition's predicate list.
		def, existed := a.rowDefs[rt.ID]
		if !existed {
			def = &types.ClassDef{Name: "<row " + rt.ID + ">"}
			a.rowDefs[rt.ID] = def
		}
		fresh := a.freshVar(n.Pos)
		ctv := types.ClassTypeVar{Def: def, Predicates: []types.HasMember{{Name: n.Member, Type: fresh}}}
		a.Solver.AddEquality(rt, ctv, n.Pos)
		return a.record(n, fresh), nil

	default:
		return nil, diagnostics.NewTypeError(n.Pos, "select on non-class receiver of type %s", inst)
	}
}

func (a *Analyzer) typeApply(n *ast.ApplyExpr, recursive bool) (types.Type, error) {
	fnT, err := a.TypeExpr(n.Fn, recursive)
	if err != nil {
		return nil, err
	}
	inst := types.Deref(a.instantiate(fnT))

	switch ft := inst.(type) {
	case types.Array:
		if len(n.Args) != 1 {
			return nil, diagnostics.NewTypeError(n.Pos, "array index requires exactly 1 argument, got %d", len(n.Args))
		}
		argT, err := a.TypeExpr(n.Args[0], recursive)
		if err != nil {
			return nil, err
		}
		a.Solver.AddEquality(argT, types.Int, n.Args[0].Span())
		return a.record(n, types.Ref{Inner: ft.Elem}), nil

	case types.Lambda:
		if len(ft.Params) != len(n.Args) {
			return nil, diagnostics.NewTypeError(n.Pos, "arity mismatch: expected %d arguments, got %d", len(ft.Params), len(n.Args))
		}
		for i, arg := range n.Args {
			argT, err := a.TypeExpr(arg, recursive)
			if err != nil {
				return nil, err
			}
			param := types.Resolve(ft.Params[i])
			a.Solver.AddEquality(param, argT, arg.Span())
		}
		return a.record(n, ft.Ret), nil

	default:
		argTs := make([]types.Type, len(n.Args))
		for i, arg := range n.Args {
			t, err := a.TypeExpr(arg, recursive)
			if err != nil {
				return nil, err
			}
			argTs[i] = t
		}
		ret := a.freshVar(n.Pos)
		a.Solver.AddEquality(fnT, types.Lambda{Params: argTs, Ret: ret}, n.Pos)
		return a.record(n, ret), nil
	}
}

func (a *Analyzer) typeIf(n *ast.IfExpr, recursive bool) (types.Type, error) {
	condT, err := a.TypeExpr(n.Cond, recursive)
	if err != nil {
		return nil, err
	}
	a.Solver.AddEquality(condT, types.Bool, n.Cond.Span())

	thenT, err := a.TypeExpr(n.Then, recursive)
	if err != nil {
		return nil, err
	}
	elseT, err := a.TypeExpr(n.Else, recursive)
	if err != nil {
		return nil, err
	}

	it := a.instantiate(thenT)
	ie := a.instantiate(elseT)
	if len(it.FreeTypeVars()) == 0 && len(ie.FreeTypeVars()) == 0 {
		if !reflect.DeepEqual(it, ie) {
			return nil, diagnostics.NewTypeError(n.Pos, "branches of if have different types: %s vs %s", it, ie).
				WithSecondary(n.Then.Span(), n.Else.Span())
		}
		return a.record(n, it), nil
	}
	a.Solver.AddEquality(thenT, elseT, n.Pos, n.Then.Span(), n.Else.Span())
	return a.record(n, thenT), nil
}

func (a *Analyzer) typeWhile(n *ast.WhileExpr, recursive bool) (types.Type, error) {
	condT, err := a.TypeExpr(n.Cond, recursive)
	if err != nil {
		return nil, err
	}
	a.Solver.AddEquality(condT, types.Bool, n.Cond.Span())
	if _, err := a.TypeExpr(n.Body, recursive); err != nil {
		return nil, err
	}
	return a.record(n, types.UnitT), nil
}

func (a *Analyzer) typeBinOp(n *ast.BinOpExpr, recursive bool) (types.Type, error) {
	lt, err := a.TypeExpr(n.L, recursive)
	if err != nil {
		return nil, err
	}
	rt, err := a.TypeExpr(n.R, recursive)
	if err != nil {
		return nil, err
	}

	if equalityOps[n.Op] {
		a.Solver.AddEquality(lt, rt, n.OpSpan, n.L.Span(), n.R.Span())
		return a.record(n, types.Bool), nil
	}

	sigs, ok := binTable[n.Op]
	if !ok {
		return nil, diagnostics.NewTypeError(n.OpSpan, "unknown operator %q", n.Op)
	}
	il := types.Deref(a.instantiate(lt))
	ir := types.Deref(a.instantiate(rt))
	_, lIsVar := il.(types.TypeVar)
	_, rIsVar := ir.(types.TypeVar)

	for _, sig := range sigs {
		lMatches := reflect.DeepEqual(il, sig.L)
		rMatches := reflect.DeepEqual(ir, sig.R)
		switch {
		case lMatches && rMatches:
			return a.record(n, sig.Ret), nil
		case lMatches && rIsVar:
			a.Solver.AddEquality(rt, sig.R, n.R.Span())
			return a.record(n, sig.Ret), nil
		case rMatches && lIsVar:
			a.Solver.AddEquality(lt, sig.L, n.L.Span())
			return a.record(n, sig.Ret), nil
		}
	}
	return nil, diagnostics.NewTypeError(n.OpSpan, "no overload of %q accepts (%s, %s)", n.Op, il, ir)
}

func (a *Analyzer) typeUnaryOp(n *ast.UnaryOpExpr, recursive bool) (types.Type, error) {
	xt, err := a.TypeExpr(n.X, recursive)
	if err != nil {
		return nil, err
	}
	sigs, ok := unaryTable[n.Op]
	if !ok {
		return nil, diagnostics.NewTypeError(n.OpSpan, "unknown unary operator %q", n.Op)
	}
	ix := a.instantiate(xt)

	if _, isVar := ix.(types.TypeVar); isVar {
		if len(sigs) == 1 {
			a.Solver.AddEquality(xt, sigs[0].X, n.OpSpan)
			return a.record(n, sigs[0].Ret), nil
		}
		return nil, diagnostics.NewTypeError(n.OpSpan,
			"ambiguous operand type for unary %q; an explicit annotation is required", n.Op)
	}
	for _, sig := range sigs {
		if reflect.DeepEqual(ix, sig.X) {
			return a.record(n, sig.Ret), nil
		}
	}
	return nil, diagnostics.NewTypeError(n.OpSpan, "unary %q does not accept %s", n.Op, ix)
}
