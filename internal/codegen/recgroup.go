package codegen

import (
	"github.com/featherscala/fsc/internal/ast"
	"github.com/featherscala/fsc/internal/codegen/cast"
	"github.com/featherscala/fsc/internal/diagnostics"
	"github.com/featherscala/fsc/internal/token"
)

// pendingClosureFill is returned by lowerBoundLambda so the caller (a block
// or the top-level program) can defer populating a just-allocated lambda
// binding's captured fields until every sibling definition in the same
// recursive group has likewise been given its own closure value. Deferring
// the fill, rather than doing it inline, is what lets two mutually
// recursive lambda bindings close over each other (spec.md §4.3's block
// rule; GLOSSARY "Rec" — here realized directly against the malloc'd env
// rather than through a separate placeholder bundle).
type pendingClosureFill struct {
	envVar string
	c      Closure
}

// lowerBoundLambda lowers a `val/var name = lambda` definition's value into
// the statements that declare and partially initialize name's closure
// value (function pointer always, and a freshly malloc'd env pointer when
// the lambda captures anything). The env's captured fields are left
// unfilled; the caller applies them via fillPendingClosures once every
// sibling in the recursive group has reached this same point.
func (g *Generator) lowerBoundLambda(pos token.Span, name string, lam *ast.LambdaExpr) ([]cast.Statement, *pendingClosureFill, error) {
	b, err := g.lowerLambda(lam)
	if err != nil {
		return nil, nil, err
	}
	switch bb := b.(type) {
	case SimpleFunc:
		stmts := []cast.Statement{
			cast.Assign{Target: cast.Field{Recv: cast.Ident{Name: name}, Member: "fn"}, Value: cast.Ident{Name: bb.FuncName}},
			cast.Assign{Target: cast.Field{Recv: cast.Ident{Name: name}, Member: "env"}, Value: cast.Cast{To: cast.VoidP, X: cast.NullLit{}}},
		}
		return stmts, nil, nil
	case Closure:
		envVar := g.names.UniqueCName("env")
		stmts := []cast.Statement{
			cast.VarDecl{
				Type: cast.PointerType{Elem: cast.StructType{Name: bb.EnvStructName}},
				Name: envVar,
				Init: cast.Cast{
					To: cast.PointerType{Elem: cast.StructType{Name: bb.EnvStructName}},
					X: cast.Call{
						Fn:   cast.Ident{Name: "malloc"},
						Args: []cast.Expr{cast.SizeOf{Of: cast.StructType{Name: bb.EnvStructName}}},
					},
				},
			},
			cast.Assign{Target: cast.Field{Recv: cast.Ident{Name: name}, Member: "fn"}, Value: cast.Ident{Name: bb.FuncName}},
			cast.Assign{Target: cast.Field{Recv: cast.Ident{Name: name}, Member: "env"}, Value: cast.Cast{To: cast.VoidP, X: cast.Ident{Name: envVar}}},
		}
		return stmts, &pendingClosureFill{envVar: envVar, c: bb}, nil
	default:
		return nil, nil, diagnostics.NewCodeGenError(pos, "internal error: lambda binding lowered to unexpected bundle shape")
	}
}

// fillPendingClosures emits the deferred capture-field assignments for a
// completed recursive group of lambda bindings.
func fillPendingClosures(pending []pendingClosureFill) []cast.Statement {
	var stmts []cast.Statement
	for _, pe := range pending {
		for _, cap := range pe.c.Captures {
			stmts = append(stmts, cast.Assign{
				Target: cast.Field{Recv: cast.Ident{Name: pe.envVar}, Member: cap.Name, Arrow: true},
				Value:  cap.Expr,
			})
		}
	}
	return stmts
}
