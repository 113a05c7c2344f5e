package codegen

import (
	"github.com/featherscala/fsc/internal/ast"
	"github.com/featherscala/fsc/internal/codegen/cast"
	"github.com/featherscala/fsc/internal/diagnostics"
	"github.com/featherscala/fsc/internal/types"
)

// lowerExpr is the main dispatch of spec.md §4.3: every typed expression
// node becomes a Bundle, the shape of which (PureExpr, Block, ...) depends
// on whether producing it needs statements of its own.
func (g *Generator) lowerExpr(e ast.Expr) (Bundle, error) {
	switch n := e.(type) {
	case *ast.IntLit:
		return PureExpr{E: cast.IntLit{Value: n.Value}}, nil
	case *ast.FloatLit:
		return PureExpr{E: cast.FloatLit{Value: n.Value}}, nil
	case *ast.BoolLit:
		return PureExpr{E: cast.BoolLit{Value: n.Value}}, nil
	case *ast.StringLit:
		return PureExpr{E: cast.StringLit{Value: n.Value}}, nil
	case *ast.ArrayLitExpr:
		return g.lowerArrayLit(n)
	case *ast.Ident:
		return g.lowerIdent(n)
	case *ast.SelectExpr:
		return g.lowerSelect(n)
	case *ast.ApplyExpr:
		return g.lowerApply(n)
	case *ast.IfExpr:
		return g.lowerIf(n)
	case *ast.WhileExpr:
		return g.lowerWhile(n)
	case *ast.BinOpExpr:
		return g.lowerBinOp(n)
	case *ast.UnaryOpExpr:
		return g.lowerUnaryOp(n)
	case *ast.LambdaExpr:
		return g.lowerLambda(n)
	case *ast.BlockExpr:
		return g.lowerBlock(n)
	case *ast.NewExpr:
		return g.lowerNew(n)
	case *ast.AssignSymExpr:
		return g.lowerAssignSym(n)
	case *ast.AssignLValueExpr:
		return g.lowerAssignLValue(n)
	default:
		return nil, diagnostics.NewCodeGenError(e.Span(), "internal error: unknown expression node")
	}
}

func (g *Generator) lowerArrayLit(n *ast.ArrayLitExpr) (Bundle, error) {
	arrT, _ := types.Resolve(g.typeOf(n)).(types.Array)
	elemT := g.cType(arrT.Elem)
	lenBundle, err := g.lowerExpr(n.Length)
	if err != nil {
		return nil, err
	}
	lenExpr, stmts := lenBundle.AsExpr(g)
	result := cast.Cast{
		To: cast.PointerType{Elem: elemT},
		X: cast.Call{
			Fn: cast.Ident{Name: "malloc"},
			Args: []cast.Expr{
				cast.BinOp{Op: "*", L: lenExpr, R: cast.SizeOf{Of: elemT}},
			},
		},
	}
	if len(stmts) == 0 {
		return PureExpr{E: result}, nil
	}
	return Block{Stmts: stmts, Result: result}, nil
}

func (g *Generator) lowerIdent(n *ast.Ident) (Bundle, error) {
	return PureExpr{E: g.resolveIdent(n.Sym)}, nil
}

// lowerSelect lowers a class member read to a direct struct field load.
// The receiver is always a Class by the time codegen runs (spec.md §3.2's
// invariant that ClassTypeVar never survives past the typer).
func (g *Generator) lowerSelect(n *ast.SelectExpr) (Bundle, error) {
	recvB, err := g.lowerExpr(n.Recv)
	if err != nil {
		return nil, err
	}
	recvE, stmts := recvB.AsExpr(g)
	field := cast.Field{Recv: recvE, Member: sanitizedMember(n.Member), Arrow: true}
	if len(stmts) == 0 {
		return PureExpr{E: field}, nil
	}
	return Block{Stmts: stmts, Result: field}, nil
}

// sanitizedMember keeps member names stable without going through the
// per-compile unique-name counter: class layouts are fixed at compile time,
// so two classes' same-named members may legitimately share the literal
// field name without colliding (each lives in its own struct).
func sanitizedMember(name string) string { return sanitizeIdent(name) }

// lowerApply handles both call forms spec.md §4.3 distinguishes: indexing
// an Array value (`arr(i)`, Fn's type is Array) and invoking a lambda value
// through its closure struct's function pointer.
func (g *Generator) lowerApply(n *ast.ApplyExpr) (Bundle, error) {
	fnB, err := g.lowerExpr(n.Fn)
	if err != nil {
		return nil, err
	}
	fnE, stmts := fnB.AsExpr(g)

	if _, isArray := types.Resolve(g.typeOf(n.Fn)).(types.Array); isArray {
		idxB, err := g.lowerExpr(n.Args[0])
		if err != nil {
			return nil, err
		}
		idxE, idxStmts := idxB.AsExpr(g)
		stmts = append(stmts, idxStmts...)
		result := cast.UnaryOp{Op: "*", X: cast.BinOp{Op: "+", L: fnE, R: idxE}}
		if len(stmts) == 0 {
			return PureExpr{E: result}, nil
		}
		return Block{Stmts: stmts, Result: result}, nil
	}

	argEs := make([]cast.Expr, len(n.Args))
	for i, a := range n.Args {
		ab, err := g.lowerExpr(a)
		if err != nil {
			return nil, err
		}
		ae, as := ab.AsExpr(g)
		stmts = append(stmts, as...)
		argEs[i] = ae
	}

	// A SimpleFunc callee (no captures, a real top-level C function) is
	// called directly by name; anything else is a closure struct value and
	// is called through its `.fn` pointer with `.env` prepended.
	if id, ok := fnE.(cast.Ident); ok && g.topFuncNames[id.Name] {
		result := cast.Call{Fn: fnE, Args: argEs}
		if len(stmts) == 0 {
			return PureExpr{E: result}, nil
		}
		return Block{Stmts: stmts, Result: result}, nil
	}

	closureVar := g.names.UniqueCName("callee")
	lt, _ := types.Resolve(g.typeOf(n.Fn)).(types.Lambda)
	closureType := g.closureTypeFor(lt)
	stmts = append(stmts, cast.VarDecl{Type: cast.StructType{Name: closureType}, Name: closureVar, Init: fnE})

	callArgs := append([]cast.Expr{cast.Field{Recv: cast.Ident{Name: closureVar}, Member: "env"}}, argEs...)
	result := cast.Call{Fn: cast.Field{Recv: cast.Ident{Name: closureVar}, Member: "fn"}, Args: callArgs}
	return Block{Stmts: stmts, Result: result}, nil
}

func (g *Generator) lowerIf(n *ast.IfExpr) (Bundle, error) {
	condB, err := g.lowerExpr(n.Cond)
	if err != nil {
		return nil, err
	}
	condE, condStmts := condB.AsExpr(g)

	thenB, err := g.lowerExpr(n.Then)
	if err != nil {
		return nil, err
	}
	elseB, err := g.lowerExpr(n.Else)
	if err != nil {
		return nil, err
	}

	resultT := g.typeOf(n)
	if isUnitType(resultT) {
		stmts := append(condStmts, cast.IfStmt{
			Cond: condE,
			Then: thenB.AsStatements(g),
			Else: elseB.AsStatements(g),
		})
		return PureBlock{Stmts: stmts}, nil
	}

	resultVar := g.names.UniqueCName("ifres")
	thenE, thenStmts := thenB.AsExpr(g)
	elseE, elseStmts := elseB.AsExpr(g)
	thenStmts = append(thenStmts, cast.Assign{Target: cast.Ident{Name: resultVar}, Value: thenE})
	elseStmts = append(elseStmts, cast.Assign{Target: cast.Ident{Name: resultVar}, Value: elseE})

	stmts := append(append([]cast.Statement{}, condStmts...), cast.VarDecl{Type: g.cType(resultT), Name: resultVar})
	stmts = append(stmts, cast.IfStmt{Cond: condE, Then: thenStmts, Else: elseStmts})
	return Block{Stmts: stmts, Result: cast.Ident{Name: resultVar}}, nil
}

func isUnitType(t types.Type) bool {
	gt, ok := types.Resolve(t).(types.Ground)
	return ok && gt == types.UnitT
}

func (g *Generator) lowerWhile(n *ast.WhileExpr) (Bundle, error) {
	condB, err := g.lowerExpr(n.Cond)
	if err != nil {
		return nil, err
	}
	bodyB, err := g.lowerExpr(n.Body)
	if err != nil {
		return nil, err
	}

	condE, condStmts := condB.AsExpr(g)
	if len(condStmts) == 0 {
		return PureBlock{Stmts: []cast.Statement{
			cast.WhileStmt{Cond: condE, Body: bodyB.AsStatements(g)},
		}}, nil
	}
	// A condition with its own setup statements must re-run them on every
	// iteration, so the loop is rewritten `while (1) { <setup>; if (!c)
	// break; <body>; }`.
	loopBody := append(append([]cast.Statement{}, condStmts...),
		cast.IfStmt{Cond: cast.UnaryOp{Op: "!", X: condE}, Then: []cast.Statement{cast.BreakStmt{}}})
	loopBody = append(loopBody, bodyB.AsStatements(g)...)
	return PureBlock{Stmts: []cast.Statement{
		cast.WhileStmt{Cond: cast.BoolLit{Value: true}, Body: loopBody},
	}}, nil
}

func (g *Generator) lowerBinOp(n *ast.BinOpExpr) (Bundle, error) {
	lb, err := g.lowerExpr(n.L)
	if err != nil {
		return nil, err
	}
	rb, err := g.lowerExpr(n.R)
	if err != nil {
		return nil, err
	}
	le, lstmts := lb.AsExpr(g)
	re, rstmts := rb.AsExpr(g)
	stmts := append(lstmts, rstmts...)
	op := n.Op
	if op == "==" {
		if strT, ok := types.Resolve(g.typeOf(n.L)).(types.Ground); ok && strT == types.String {
			result := cast.BinOp{Op: "==", L: cast.Call{Fn: cast.Ident{Name: "strcmp"}, Args: []cast.Expr{le, re}}, R: cast.IntLit{Value: 0}}
			if len(stmts) == 0 {
				return PureExpr{E: result}, nil
			}
			return Block{Stmts: stmts, Result: result}, nil
		}
	}
	result := cast.BinOp{Op: op, L: le, R: re}
	if len(stmts) == 0 {
		return PureExpr{E: result}, nil
	}
	return Block{Stmts: stmts, Result: result}, nil
}

func (g *Generator) lowerUnaryOp(n *ast.UnaryOpExpr) (Bundle, error) {
	xb, err := g.lowerExpr(n.X)
	if err != nil {
		return nil, err
	}
	xe, stmts := xb.AsExpr(g)
	result := cast.UnaryOp{Op: n.Op, X: xe}
	if len(stmts) == 0 {
		return PureExpr{E: result}, nil
	}
	return Block{Stmts: stmts, Result: result}, nil
}

// lowerBlock implements the statement-flattening half of spec.md §4.3: a
// recursive local group lowers to declarations-first C statements
// (variables declared with their final storage type up front), definitions
// assigned in order, and the trailing expression's value threaded out as
// the Bundle's result.
func (g *Generator) lowerBlock(n *ast.BlockExpr) (Bundle, error) {
	var stmts []cast.Statement

	// A val/var bound to a lambda has its captured fields filled in only
	// after every def in the block has assigned its own closure value
	// (lowerBoundLambda/fillPendingClosures). That lets a lambda capture a
	// sibling defined later in the same block (mutual recursion, spec.md
	// §4.3's block rule and GLOSSARY "Rec"): by the time any env's fields
	// are patched, every sibling's own closure variable already holds a
	// valid value, even though none of their bodies have actually run yet.
	var pending []pendingClosureFill

	for _, d := range n.Defs {
		// A Unit-typed def (the `val _ = while (...) (...)` idiom used to
		// smuggle a side-effecting statement into a block, since the surface
		// grammar has no statement-sequencing operator) has no C storage to
		// declare: `void x;` isn't legal C, and there's nothing to assign.
		// Its value is lowered purely for the statements it produces.
		if gt, ok := types.Resolve(d.Sym.Type).(types.Ground); ok && gt == types.UnitT {
			b, err := g.lowerExpr(d.Value)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, b.AsStatements(g)...)
			continue
		}

		ct := g.cType(d.Sym.Type)
		name := g.mangleSymbol(d.Sym)
		stmts = append(stmts, cast.VarDecl{Type: ct, Name: name})

		if lam, ok := d.Value.(*ast.LambdaExpr); ok {
			lamStmts, pe, err := g.lowerBoundLambda(d.Pos, name, lam)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, lamStmts...)
			if pe != nil {
				pending = append(pending, *pe)
			}
			continue
		}

		b, err := g.lowerExpr(d.Value)
		if err != nil {
			return nil, err
		}
		e, s := b.AsExpr(g)
		stmts = append(stmts, s...)
		stmts = append(stmts, cast.Assign{Target: cast.Ident{Name: name}, Value: e})
	}

	stmts = append(stmts, fillPendingClosures(pending)...)

	bodyB, err := g.lowerExpr(n.Body)
	if err != nil {
		return nil, err
	}
	if isUnitType(g.typeOf(n.Body)) {
		stmts = append(stmts, bodyB.AsStatements(g)...)
		return PureBlock{Stmts: stmts}, nil
	}
	bodyE, bodyStmts := bodyB.AsExpr(g)
	stmts = append(stmts, bodyStmts...)
	return Block{Stmts: stmts, Result: bodyE}, nil
}

func (g *Generator) lowerNew(n *ast.NewExpr) (Bundle, error) {
	classT, _ := types.Resolve(g.typeOf(n)).(types.Class)
	ctorName, ok := g.ctors[classT.Def]
	if !ok {
		return nil, diagnostics.NewCodeGenError(n.Pos, "internal error: class %q has no generated constructor", classT.Def.Name)
	}
	var stmts []cast.Statement
	argEs := make([]cast.Expr, len(n.Args))
	for i, a := range n.Args {
		ab, err := g.lowerExpr(a)
		if err != nil {
			return nil, err
		}
		ae, as := ab.AsExpr(g)
		stmts = append(stmts, as...)
		argEs[i] = ae
	}
	result := cast.Call{Fn: cast.Ident{Name: ctorName}, Args: argEs}
	if len(stmts) == 0 {
		return PureExpr{E: result}, nil
	}
	return Block{Stmts: stmts, Result: result}, nil
}

func (g *Generator) lowerAssignSym(n *ast.AssignSymExpr) (Bundle, error) {
	vb, err := g.lowerExpr(n.Value)
	if err != nil {
		return nil, err
	}
	ve, stmts := vb.AsExpr(g)
	stmts = append(stmts, cast.Assign{Target: g.resolveIdent(n.Sym), Value: ve})
	return PureBlock{Stmts: stmts}, nil
}

func (g *Generator) lowerAssignLValue(n *ast.AssignLValueExpr) (Bundle, error) {
	apply, ok := n.LValue.(*ast.ApplyExpr)
	if !ok {
		return nil, diagnostics.NewCodeGenError(n.Pos, "internal error: l-value assignment target is not an array index")
	}
	arrB, err := g.lowerExpr(apply.Fn)
	if err != nil {
		return nil, err
	}
	idxB, err := g.lowerExpr(apply.Args[0])
	if err != nil {
		return nil, err
	}
	valB, err := g.lowerExpr(n.Value)
	if err != nil {
		return nil, err
	}
	arrE, s1 := arrB.AsExpr(g)
	idxE, s2 := idxB.AsExpr(g)
	valE, s3 := valB.AsExpr(g)
	stmts := append(append(append([]cast.Statement{}, s1...), s2...), s3...)
	target := cast.UnaryOp{Op: "*", X: cast.BinOp{Op: "+", L: arrE, R: idxE}}
	stmts = append(stmts, cast.Assign{Target: target, Value: valE})
	return PureBlock{Stmts: stmts}, nil
}
