package analyzer

import (
	"strings"
	"testing"

	"github.com/featherscala/fsc/internal/config"
	"github.com/featherscala/fsc/internal/parser"
	"github.com/featherscala/fsc/internal/types"
)

func checkSource(t *testing.T, src string) (*Analyzer, error) {
	t.Helper()
	prog, errs := parser.Parse("test.fsc", src)
	if len(errs) != 0 {
		t.Fatalf("parse errors for %q: %v", src, errs)
	}
	a := New()
	return a, a.Check(prog)
}

func TestCheckRequiresTopLevelMain(t *testing.T) {
	_, err := checkSource(t, "val x = 1")
	if err == nil {
		t.Fatal("Check() succeeded without a main binding, want error")
	}
	if !strings.Contains(err.Error(), "main") {
		t.Errorf("error = %q, want it to mention main", err.Error())
	}
}

func TestCheckSimpleMainTypesInt(t *testing.T) {
	a, err := checkSource(t, "val main: () => Unit = () => printlnInt(1)")
	if err != nil {
		t.Fatalf("Check() = %v, want success", err)
	}
	if a == nil {
		t.Fatal("expected a non-nil analyzer")
	}
}

func TestCheckTypeMismatchFails(t *testing.T) {
	_, err := checkSource(t, `
val main: () => Unit = () => printlnInt(true)
`)
	if err == nil {
		t.Fatal("Check() succeeded on printlnInt(true), want a type error")
	}
}

func TestCheckMutualRecursionInBlock(t *testing.T) {
	_, err := checkSource(t, `
val main: () => Unit = () => {
    val isEven: (Int) => Int = (n: Int) => if (n == 0) 1 else isOdd(n - 1)
    val isOdd: (Int) => Int = (n: Int) => if (n == 0) 0 else isEven(n - 1)
    printlnInt(isEven(4))
}
`)
	if err != nil {
		t.Fatalf("Check() = %v, want success on mutually recursive block bindings", err)
	}
}

func TestCheckTopLevelMutualRecursion(t *testing.T) {
	_, err := checkSource(t, `
val f: (Int) => Int = (n: Int) => if (n == 0) 1 else g(n - 1)
val g = (n: Int) => f(n - 1)

val main: () => Unit = () => printlnInt(f(3))
`)
	if err != nil {
		t.Fatalf("Check() = %v, want success on mutually recursive top-level bindings", err)
	}
}

func TestCheckImmutableReassignmentFails(t *testing.T) {
	_, err := checkSource(t, `
val main: () => Unit = () => {
    val x = 1
    x = 2
}
`)
	if err == nil {
		t.Fatal("Check() succeeded reassigning an immutable val, want error")
	}
	if !strings.Contains(err.Error(), "can not assign to immutable") {
		t.Errorf("error = %q, want the immutable-reassignment message", err.Error())
	}
}

func TestCheckMutableReassignmentSucceeds(t *testing.T) {
	_, err := checkSource(t, `
val main: () => Unit = () => {
    var x = 1
    val _ = x = 2
    printlnInt(x)
}
`)
	if err != nil {
		t.Fatalf("Check() = %v, want success reassigning a var", err)
	}
}

func TestCheckClassMemberSelfReference(t *testing.T) {
	_, err := checkSource(t, `
class Main() {
    val fact: (Int) => Int = (n: Int) => if (n <= 1) 1 else n * fact(n - 1)
}

val app = new Main()
val main: () => Unit = () => printlnInt(app.fact(5))
`)
	if err != nil {
		t.Fatalf("Check() = %v, want success on class self-recursion", err)
	}
}

func TestCheckUndeclaredIdentFails(t *testing.T) {
	_, err := checkSource(t, `
val main: () => Unit = () => printlnInt(undeclaredName)
`)
	if err == nil {
		t.Fatal("Check() succeeded referencing an undeclared name, want error")
	}
}

func TestCheckLambdaCaptureInfersClosureType(t *testing.T) {
	a, err := checkSource(t, `
val adder: (Int) => (Int) => Int = (x: Int) => (y: Int) => x + y
val add3 = adder(3)

val main: () => Unit = () => printlnInt(add3(4))
`)
	if err != nil {
		t.Fatalf("Check() = %v, want success", err)
	}
	sym, ok := a.Scope.FindSym("add3")
	if !ok {
		t.Fatal("add3 not found in the global scope")
	}
	want := types.Lambda{Params: []types.Type{types.Int}, Ret: types.Int}
	if got := a.instantiate(sym.Type); got.String() != want.String() {
		t.Errorf("add3 has type %s, want %s", got, want)
	}
}

func TestResetClearsState(t *testing.T) {
	a := New()
	prog, errs := parser.Parse("test.fsc", "val main: () => Unit = () => printlnInt(1)")
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	if err := a.Check(prog); err != nil {
		t.Fatalf("Check() = %v", err)
	}
	a.Reset()
	if len(a.Info.Types) != 0 {
		t.Errorf("Info.Types after Reset = %d entries, want 0", len(a.Info.Types))
	}
	if _, ok := a.Scope.FindSym(config.MainFuncName); ok {
		t.Errorf("Reset left a stale %q binding in scope", config.MainFuncName)
	}
}
