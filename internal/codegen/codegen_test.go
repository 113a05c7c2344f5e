package codegen_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/featherscala/fsc/internal/analyzer"
	"github.com/featherscala/fsc/internal/codegen"
	"github.com/featherscala/fsc/internal/parser"
)

func generate(t *testing.T, src string) string {
	t.Helper()
	prog, errs := parser.Parse("test.fsc", src)
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	a := analyzer.New()
	if err := a.Check(prog); err != nil {
		t.Fatalf("Check() = %v", err)
	}
	out, err := codegen.Generate(prog, a.Info)
	if err != nil {
		t.Fatalf("Generate() = %v", err)
	}
	return out
}

func TestGenerateEmitsRuntimeHelpers(t *testing.T) {
	out := generate(t, "val main: () => Unit = () => printlnInt(readInt())")
	for _, want := range []string{"fsc_read_int", "fsc_println_int", "fsc_println_float", "fsc_read_float"} {
		if !strings.Contains(out, want) {
			t.Errorf("generated C missing runtime helper %q", want)
		}
	}
}

func TestGenerateClassSelfRecursionReachesMemberThroughEnv(t *testing.T) {
	out := generate(t, `
class Main() {
    val fact: (Int) => Int = (n: Int) => if (n <= 1) 1 else n * fact(n - 1)
}

val app = new Main()
val main: () => Unit = () => printlnInt(app.fact(5))
`)
	if !strings.Contains(out, "self") {
		t.Errorf("self-recursive method body has no self-env reference:\n%s", out)
	}
	if !strings.Contains(out, "malloc(sizeof(struct") {
		t.Errorf("class instantiation did not allocate an environment:\n%s", out)
	}
}

func TestGenerateBlockMutualRecursionDeferredCapture(t *testing.T) {
	out := generate(t, `
val main: () => Unit = () => {
    val isEven: (Int) => Int = (n: Int) => if (n == 0) 1 else isOdd(n - 1)
    val isOdd: (Int) => Int = (n: Int) => if (n == 0) 0 else isEven(n - 1)
    printlnInt(isEven(4))
}
`)
	if !strings.Contains(out, ".fn =") && !strings.Contains(out, "->fn =") {
		t.Errorf("mutually recursive closures missing a .fn assignment:\n%s", out)
	}
}

func TestGenerateTopLevelMutualRecursionGetsForwardDeclared(t *testing.T) {
	out := generate(t, `
val f: (Int) => Int = (n: Int) => if (n == 0) 1 else g(n - 1)
val g = (n: Int) => f(n - 1)

val main: () => Unit = () => printlnInt(f(3))
`)
	// f's body calls g, so g's bare prototype line ending in ");" must
	// appear before f's function body "{" in the output. The runtime helpers
	// emitted ahead of both are not part of this check.
	protoLoc := regexp.MustCompile(`int fsc_g_\d+\(int fsc_n_\d+\);\n`).FindStringIndex(out)
	bodyLoc := regexp.MustCompile(`int fsc_f_\d+\(int fsc_n_\d+\) \{\n`).FindStringIndex(out)
	if protoLoc == nil || bodyLoc == nil || protoLoc[0] > bodyLoc[0] {
		t.Errorf("expected a forward declaration of g before f's function body:\n%s", out)
	}
}

func TestGenerateUnitBindingProducesNoVoidDeclaration(t *testing.T) {
	out := generate(t, `
val adder: (Int) => (Int) => Int = (x: Int) => (y: Int) => x + y

val main: () => Unit = () => {
    var guess: Int = 1
    val _ = printlnInt(guess)
    printlnInt(guess)
}
`)
	if strings.Contains(out, "void ") && strings.Contains(out, " _;") {
		t.Errorf("Unit-typed binding declared illegal C storage:\n%s", out)
	}
	for _, bad := range []string{"void _;", "void _ ="} {
		if strings.Contains(out, bad) {
			t.Errorf("generated C contains illegal void declaration %q:\n%s", bad, out)
		}
	}
}

func TestGenerateFloatPrintlnBranchesOnIntegralValue(t *testing.T) {
	out := generate(t, "val main: () => Unit = () => printlnFloat(2.0)")
	if !strings.Contains(out, "%.1f") {
		t.Errorf("fsc_println_float runtime helper missing the integral-value branch:\n%s", out)
	}
	if !strings.Contains(out, "%g") {
		t.Errorf("fsc_println_float runtime helper missing the general-case branch:\n%s", out)
	}
}

func TestGenerateLambdaCaptureAllocatesEnv(t *testing.T) {
	out := generate(t, `
val adder: (Int) => (Int) => Int = (x: Int) => (y: Int) => x + y
val add3 = adder(3)

val main: () => Unit = () => printlnInt(add3(4))
`)
	if !strings.Contains(out, "malloc(sizeof(struct") {
		t.Errorf("currying a lambda did not allocate a capture environment:\n%s", out)
	}
	if !strings.Contains(out, ".env") && !strings.Contains(out, "->env") {
		t.Errorf("generated closure missing an env field reference:\n%s", out)
	}
}

func TestGenerateProgramWithoutMainFailsAtCheckNotCodegen(t *testing.T) {
	prog, errs := parser.Parse("test.fsc", "val x = 1")
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	a := analyzer.New()
	if err := a.Check(prog); err == nil {
		t.Fatal("Check() succeeded without a main binding, want error before codegen ever runs")
	}
}
