package parser

import (
	"testing"

	"github.com/featherscala/fsc/internal/ast"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, errs := Parse("test.fsc", src)
	if len(errs) != 0 {
		t.Fatalf("Parse(%q) errors: %v", src, errs)
	}
	return prog
}

func TestParseTopLevelValBinding(t *testing.T) {
	prog := mustParse(t, "val x = 1")
	if len(prog.Bindings) != 1 {
		t.Fatalf("Bindings = %d, want 1", len(prog.Bindings))
	}
	b := prog.Bindings[0]
	if b.Name != "x" || b.Mutable {
		t.Errorf("binding = %+v, want immutable x", b)
	}
	if _, ok := b.Value.(*ast.IntLit); !ok {
		t.Errorf("Value = %T, want *ast.IntLit", b.Value)
	}
}

func TestParseVarBindingIsMutable(t *testing.T) {
	prog := mustParse(t, "var x = 1")
	if !prog.Bindings[0].Mutable {
		t.Error("var binding Mutable = false, want true")
	}
}

func TestParseBindingWithTypeAnnotation(t *testing.T) {
	prog := mustParse(t, "val x: Int = 1")
	named, ok := prog.Bindings[0].Ann.(*ast.NamedType)
	if !ok || named.Name != "Int" {
		t.Errorf("Ann = %+v, want NamedType Int", prog.Bindings[0].Ann)
	}
}

func TestParseLambdaTypeAnnotation(t *testing.T) {
	prog := mustParse(t, "val f: (Int, Int) => Int = (x: Int, y: Int) => x + y")
	lt, ok := prog.Bindings[0].Ann.(*ast.LambdaTypeAnn)
	if !ok {
		t.Fatalf("Ann = %T, want *ast.LambdaTypeAnn", prog.Bindings[0].Ann)
	}
	if len(lt.Params) != 2 {
		t.Errorf("lambda type params = %d, want 2", len(lt.Params))
	}
}

func TestParseArrayTypeAnnotation(t *testing.T) {
	prog := mustParse(t, "val xs: Array[Int] = Array[5]")
	at, ok := prog.Bindings[0].Ann.(*ast.ArrayTypeAnn)
	if !ok {
		t.Fatalf("Ann = %T, want *ast.ArrayTypeAnn", prog.Bindings[0].Ann)
	}
	if _, ok := at.Elem.(*ast.NamedType); !ok {
		t.Errorf("Elem = %T, want *ast.NamedType", at.Elem)
	}
	lit, ok := prog.Bindings[0].Value.(*ast.ArrayLitExpr)
	if !ok {
		t.Fatalf("Value = %T, want *ast.ArrayLitExpr", prog.Bindings[0].Value)
	}
	if _, ok := lit.Length.(*ast.IntLit); !ok {
		t.Errorf("Length = %T, want *ast.IntLit", lit.Length)
	}
}

func TestParseClassDeclRequiresParens(t *testing.T) {
	prog := mustParse(t, "class Empty() { val x = 1 }")
	if len(prog.Classes) != 1 {
		t.Fatalf("Classes = %d, want 1", len(prog.Classes))
	}
	cd := prog.Classes[0]
	if cd.Name != "Empty" || len(cd.CtorParams) != 0 {
		t.Errorf("class decl = %+v, want empty ctor params", cd)
	}
	if len(cd.Members) != 1 || cd.Members[0].Name != "x" {
		t.Errorf("members = %+v, want one member x", cd.Members)
	}
}

func TestParseClassDeclWithCtorParams(t *testing.T) {
	prog := mustParse(t, "class Point(x: Int, y: Int) { val sum = x }")
	cd := prog.Classes[0]
	if len(cd.CtorParams) != 2 || cd.CtorParams[0].Name != "x" || cd.CtorParams[1].Name != "y" {
		t.Errorf("CtorParams = %+v, want [x, y]", cd.CtorParams)
	}
}

func TestParseIfRequiresParensAroundCond(t *testing.T) {
	prog := mustParse(t, "val x = if (true) 1 else 2")
	ifE, ok := prog.Bindings[0].Value.(*ast.IfExpr)
	if !ok {
		t.Fatalf("Value = %T, want *ast.IfExpr", prog.Bindings[0].Value)
	}
	if _, ok := ifE.Cond.(*ast.BoolLit); !ok {
		t.Errorf("Cond = %T, want *ast.BoolLit", ifE.Cond)
	}
}

func TestParseIfWithOptionalThen(t *testing.T) {
	prog := mustParse(t, "val x = if (true) then 1 else 2")
	if _, ok := prog.Bindings[0].Value.(*ast.IfExpr); !ok {
		t.Fatalf("Value = %T, want *ast.IfExpr", prog.Bindings[0].Value)
	}
}

func TestParseWhileWithOptionalDo(t *testing.T) {
	prog := mustParse(t, "val x = while (true) do 1")
	if _, ok := prog.Bindings[0].Value.(*ast.WhileExpr); !ok {
		t.Fatalf("Value = %T, want *ast.WhileExpr", prog.Bindings[0].Value)
	}
}

func TestParseLambdaParamsAlwaysParenthesized(t *testing.T) {
	prog := mustParse(t, "val inc = (x: Int) => x + 1")
	lam, ok := prog.Bindings[0].Value.(*ast.LambdaExpr)
	if !ok {
		t.Fatalf("Value = %T, want *ast.LambdaExpr", prog.Bindings[0].Value)
	}
	if len(lam.Params) != 1 || lam.Params[0].Name != "x" {
		t.Errorf("Params = %+v, want [x]", lam.Params)
	}
}

func TestParseParenExprVsLambdaDisambiguation(t *testing.T) {
	prog := mustParse(t, "val x = (1 + 2)")
	if _, ok := prog.Bindings[0].Value.(*ast.BinOpExpr); !ok {
		t.Errorf("Value = %T, want *ast.BinOpExpr (plain parenthesized expr)", prog.Bindings[0].Value)
	}
}

func TestParseNestedLambdaCurrying(t *testing.T) {
	prog := mustParse(t, "val adder = (x: Int) => (y: Int) => x + y")
	outer, ok := prog.Bindings[0].Value.(*ast.LambdaExpr)
	if !ok {
		t.Fatalf("Value = %T, want *ast.LambdaExpr", prog.Bindings[0].Value)
	}
	if _, ok := outer.Body.(*ast.LambdaExpr); !ok {
		t.Errorf("outer.Body = %T, want *ast.LambdaExpr", outer.Body)
	}
}

func TestParseBlockDefsAndTrailingExpr(t *testing.T) {
	prog := mustParse(t, "val r = { val a = 1; val b = 2; a + b }")
	block, ok := prog.Bindings[0].Value.(*ast.BlockExpr)
	if !ok {
		t.Fatalf("Value = %T, want *ast.BlockExpr", prog.Bindings[0].Value)
	}
	if len(block.Defs) != 2 {
		t.Fatalf("Defs = %d, want 2", len(block.Defs))
	}
	if _, ok := block.Body.(*ast.BinOpExpr); !ok {
		t.Errorf("Body = %T, want *ast.BinOpExpr", block.Body)
	}
}

func TestParseNewExprWithArgs(t *testing.T) {
	prog := mustParse(t, "val p = new Point(1, 2)")
	ne, ok := prog.Bindings[0].Value.(*ast.NewExpr)
	if !ok {
		t.Fatalf("Value = %T, want *ast.NewExpr", prog.Bindings[0].Value)
	}
	if ne.ClassName != "Point" || len(ne.Args) != 2 {
		t.Errorf("NewExpr = %+v, want Point with 2 args", ne)
	}
}

func TestParseSelectAndApplyChain(t *testing.T) {
	prog := mustParse(t, "val r = app.fact(5)")
	apply, ok := prog.Bindings[0].Value.(*ast.ApplyExpr)
	if !ok {
		t.Fatalf("Value = %T, want *ast.ApplyExpr", prog.Bindings[0].Value)
	}
	sel, ok := apply.Fn.(*ast.SelectExpr)
	if !ok || sel.Member != "fact" {
		t.Errorf("Fn = %+v, want SelectExpr .fact", apply.Fn)
	}
}

func TestParseAssignSymExpr(t *testing.T) {
	prog := mustParse(t, "val main = (x: Int) => { var y = 1; y = 2 }")
	lam := prog.Bindings[0].Value.(*ast.LambdaExpr)
	block := lam.Body.(*ast.BlockExpr)
	assign, ok := block.Body.(*ast.AssignSymExpr)
	if !ok {
		t.Fatalf("Body = %T, want *ast.AssignSymExpr", block.Body)
	}
	if assign.Name != "y" {
		t.Errorf("AssignSymExpr.Name = %q, want y", assign.Name)
	}
}

func TestOperatorPrecedence(t *testing.T) {
	prog := mustParse(t, "val r = 1 + 2 * 3")
	bin, ok := prog.Bindings[0].Value.(*ast.BinOpExpr)
	if !ok || bin.Op != "+" {
		t.Fatalf("top expr = %+v, want top-level +", prog.Bindings[0].Value)
	}
	rhs, ok := bin.R.(*ast.BinOpExpr)
	if !ok || rhs.Op != "*" {
		t.Errorf("rhs = %+v, want nested * (higher precedence binds tighter)", bin.R)
	}
}

func TestUnaryMinusAndNot(t *testing.T) {
	prog := mustParse(t, "val r = !true")
	un, ok := prog.Bindings[0].Value.(*ast.UnaryOpExpr)
	if !ok || un.Op != "!" {
		t.Fatalf("Value = %+v, want unary !", prog.Bindings[0].Value)
	}
	prog = mustParse(t, "val s = -1")
	un, ok = prog.Bindings[0].Value.(*ast.UnaryOpExpr)
	if !ok || un.Op != "-" {
		t.Fatalf("Value = %+v, want unary -", prog.Bindings[0].Value)
	}
}

func TestSemicolonsOptionalBetweenTopLevelBindings(t *testing.T) {
	prog := mustParse(t, "val a = 1\nval b = 2")
	if len(prog.Bindings) != 2 {
		t.Fatalf("Bindings = %d, want 2 (newline alone separates)", len(prog.Bindings))
	}
}

func TestParseErrorOnUnexpectedTopLevelToken(t *testing.T) {
	_, errs := Parse("test.fsc", "1 + 1")
	if len(errs) == 0 {
		t.Fatal("Parse of a bare expression at top level succeeded, want an error")
	}
}
