package cast

import (
	"strings"
	"testing"
)

func TestPrintIncludesPreamble(t *testing.T) {
	got := Print([]string{"<stdio.h>", "<stdlib.h>"}, nil)
	want := "#include <stdio.h>\n#include <stdlib.h>\n\n"
	if got != want {
		t.Errorf("Print() = %q, want %q", got, want)
	}
}

func TestPrintNoIncludesNoBlankLine(t *testing.T) {
	got := Print(nil, []TopLevel{GlobalDecl{Field: Field2{Type: Int, Name: "x"}}})
	if strings.HasPrefix(got, "\n") {
		t.Errorf("Print() with no includes started with a blank line: %q", got)
	}
}

func TestPrintStructDef(t *testing.T) {
	got := Print(nil, []TopLevel{StructDef{Name: "env_0", Fields: []Field2{
		{Type: Int, Name: "x"},
		{Type: PointerType{Elem: BaseType{Name: "char"}}, Name: "s"},
	}}})
	want := "struct env_0 {\n    int x;\n    char *s;\n};\n"
	if got != want {
		t.Errorf("Print(StructDef) = %q, want %q", got, want)
	}
}

func TestPrintForwardDecl(t *testing.T) {
	got := Print(nil, []TopLevel{ForwardDecl{Name: "fsc_f_1", Params: []Field2{{Type: Int, Name: "n"}}, Ret: Int}})
	want := "int fsc_f_1(int n);\n"
	if got != want {
		t.Errorf("Print(ForwardDecl) = %q, want %q", got, want)
	}
}

func TestPrintForwardDeclNoParamsUsesVoid(t *testing.T) {
	got := Print(nil, []TopLevel{ForwardDecl{Name: "fsc_init", Params: nil, Ret: Void}})
	want := "void fsc_init(void);\n"
	if got != want {
		t.Errorf("Print(ForwardDecl, no params) = %q, want %q", got, want)
	}
}

func TestPrintFuncDefWithIfElse(t *testing.T) {
	fn := FuncDef{
		Name: "fsc_abs_1",
		Ret:  Int,
		Params: []Field2{{Type: Int, Name: "x"}},
		Body: []Statement{
			IfStmt{
				Cond: BinOp{Op: "<", L: Ident{Name: "x"}, R: IntLit{Value: 0}},
				Then: []Statement{ReturnStmt{Value: UnaryOp{Op: "-", X: Ident{Name: "x"}}}},
				Else: []Statement{ReturnStmt{Value: Ident{Name: "x"}}},
			},
		},
	}
	got := Print(nil, []TopLevel{fn})
	want := "int fsc_abs_1(int x) {\n" +
		"    if ((x < 0)) {\n" +
		"        return (-x);\n" +
		"    } else {\n" +
		"        return x;\n" +
		"    }\n" +
		"}\n"
	if got != want {
		t.Errorf("Print(FuncDef) =\n%q\nwant\n%q", got, want)
	}
}

func TestPrintWhileStmt(t *testing.T) {
	fn := FuncDef{
		Name: "fsc_loop",
		Ret:  Void,
		Body: []Statement{
			WhileStmt{
				Cond: BoolLit{Value: true},
				Body: []Statement{BreakStmt{}},
			},
		},
	}
	got := Print(nil, []TopLevel{fn})
	if !strings.Contains(got, "while (1) {\n        break;\n    }\n") {
		t.Errorf("Print(WhileStmt) = %q, want a while(1) block containing break", got)
	}
}

func TestPrintCallAndFieldAccess(t *testing.T) {
	e := Call{
		Fn: Field{Recv: Ident{Name: "envp"}, Member: "fn", Arrow: true},
		Args: []Expr{Field{Recv: Ident{Name: "envp"}, Member: "x", Arrow: true}},
	}
	got := printExpr(e)
	want := "envp->fn(envp->x)"
	if got != want {
		t.Errorf("printExpr(Call) = %q, want %q", got, want)
	}
}

func TestPrintPointerDeclStarBindsToName(t *testing.T) {
	got := declString(PointerType{Elem: StructType{Name: "env_0"}}, "e")
	want := "struct env_0 *e"
	if got != want {
		t.Errorf("declString(pointer) = %q, want %q", got, want)
	}
}

func TestPrintSizeOfAndCast(t *testing.T) {
	e := Cast{To: PointerType{Elem: StructType{Name: "env_0"}}, X: Call{
		Fn:   Ident{Name: "malloc"},
		Args: []Expr{SizeOf{Of: StructType{Name: "env_0"}}},
	}}
	got := printExpr(e)
	want := "((struct env_0 *)malloc(sizeof(struct env_0)))"
	if got != want {
		t.Errorf("printExpr(cast+sizeof) = %q, want %q", got, want)
	}
}

func TestPrintStringAndCharLit(t *testing.T) {
	if got := printExpr(StringLit{Value: "hi\n"}); got != `"hi\n"` {
		t.Errorf("printExpr(StringLit) = %q, want %q", got, `"hi\n"`)
	}
	if got := printExpr(CharLit{Value: 'a'}); got != "'a'" {
		t.Errorf("printExpr(CharLit) = %q, want 'a'", got)
	}
}

func TestPrintBoolLitAsIntLiteral(t *testing.T) {
	if got := printExpr(BoolLit{Value: true}); got != "1" {
		t.Errorf("printExpr(true) = %q, want 1", got)
	}
	if got := printExpr(BoolLit{Value: false}); got != "0" {
		t.Errorf("printExpr(false) = %q, want 0", got)
	}
}

func TestPrintMultipleTopLevelsSeparatedByBlankLine(t *testing.T) {
	got := Print(nil, []TopLevel{
		GlobalDecl{Field: Field2{Type: Int, Name: "a"}},
		GlobalDecl{Field: Field2{Type: Int, Name: "b"}},
	})
	want := "int a;\n\nint b;\n"
	if got != want {
		t.Errorf("Print(multiple decls) = %q, want %q", got, want)
	}
}
