package types

import "testing"

func TestGroundString(t *testing.T) {
	cases := []struct {
		g    Ground
		want string
	}{
		{Int, "Int"},
		{Float, "Float"},
		{Bool, "Boolean"},
		{String, "String"},
		{UnitT, "Unit"},
	}
	for _, c := range cases {
		if got := c.g.String(); got != c.want {
			t.Errorf("Ground(%d).String() = %q, want %q", c.g, got, c.want)
		}
	}
}

func TestLambdaString(t *testing.T) {
	l := Lambda{Params: []Type{Int, Float}, Ret: Bool}
	want := "(Int, Float) => Boolean"
	if got := l.String(); got != want {
		t.Errorf("Lambda.String() = %q, want %q", got, want)
	}
}

func TestArrayApplySubstitutesElem(t *testing.T) {
	tv := NewTypeVar(nil)
	a := Array{Elem: tv}
	sub := Subst{tv.ID: Int}
	got := a.Apply(sub)
	want := Array{Elem: Int}
	if got != want {
		t.Errorf("Array.Apply = %v, want %v", got, want)
	}
}

func TestTypeVarApplyLeavesSelfBindingAlone(t *testing.T) {
	tv := NewTypeVar(nil)
	sub := Subst{tv.ID: tv}
	if got := tv.Apply(sub); got != tv {
		t.Errorf("TypeVar.Apply(self-bound) = %v, want %v unchanged", got, tv)
	}
}

func TestTypeVarApplyChasesChain(t *testing.T) {
	a := NewTypeVar(nil)
	b := NewTypeVar(nil)
	sub := Subst{a.ID: b, b.ID: Int}
	if got := a.Apply(sub); got != Int {
		t.Errorf("chained Apply = %v, want Int", got)
	}
}

func TestLambdaFreeTypeVars(t *testing.T) {
	a := NewTypeVar(nil)
	b := NewTypeVar(nil)
	l := Lambda{Params: []Type{a}, Ret: b}
	fvs := l.FreeTypeVars()
	if len(fvs) != 2 {
		t.Fatalf("FreeTypeVars() = %v, want 2 entries", fvs)
	}
}

func TestClassDefMember(t *testing.T) {
	def := &ClassDef{Name: "Point", Members: []Member{
		{Name: "x", Type: Int},
		{Name: "y", Type: Int, Mutable: true},
	}}
	m, ok := def.Member("y")
	if !ok || m.Type != Int || !m.Mutable {
		t.Errorf("Member(y) = %+v, %v, want mutable Int member", m, ok)
	}
	if _, ok := def.Member("z"); ok {
		t.Errorf("Member(z) found, want not found")
	}
}

func TestClassTypeVarApplySubstitutesPredicates(t *testing.T) {
	def := &ClassDef{Name: "Pair"}
	tv := NewTypeVar(nil)
	ctv := ClassTypeVar{Def: def, Predicates: []HasMember{{Name: "fst", Type: tv}}}
	got := ctv.Apply(Subst{tv.ID: Int}).(ClassTypeVar)
	if got.Predicates[0].Type != Int {
		t.Errorf("predicate type = %v, want Int", got.Predicates[0].Type)
	}
}

type fakeSymbolRef struct {
	name string
	t    Type
	ok   bool
}

func (f fakeSymbolRef) ResolvedType() (Type, bool) { return f.t, f.ok }
func (f fakeSymbolRef) Name() string               { return f.name }

func TestResolveFollowsSymbolType(t *testing.T) {
	inner := SymbolType{Ref: fakeSymbolRef{name: "Inner", t: Int, ok: true}}
	outer := SymbolType{Ref: fakeSymbolRef{name: "Outer", t: inner, ok: true}}
	if got := Resolve(outer); got != Int {
		t.Errorf("Resolve(chained SymbolType) = %v, want Int", got)
	}
}

func TestResolveUnresolvedSymbolTypeIsUnchanged(t *testing.T) {
	st := SymbolType{Ref: fakeSymbolRef{name: "Pending", ok: false}}
	if got := Resolve(st); got != st {
		t.Errorf("Resolve(unresolved) = %v, want unchanged %v", got, st)
	}
}

func TestRefDeref(t *testing.T) {
	r := Ref{Inner: Int}
	if got := Deref(r); got != Int {
		t.Errorf("Deref(Ref{Int}) = %v, want Int", got)
	}
	if got := Deref(Int); got != Int {
		t.Errorf("Deref(Int) = %v, want Int unchanged", got)
	}
}

func TestRefStringAndFreeTypeVars(t *testing.T) {
	tv := NewTypeVar(nil)
	r := Ref{Inner: tv}
	if r.String() != "&"+tv.String() {
		t.Errorf("Ref.String() = %q, want %q", r.String(), "&"+tv.String())
	}
	if len(r.FreeTypeVars()) != 1 {
		t.Errorf("Ref.FreeTypeVars() = %v, want 1 entry", r.FreeTypeVars())
	}
}

func TestResetIDsRestartsCounter(t *testing.T) {
	ResetIDs()
	first := NewTypeVar(nil)
	ResetIDs()
	second := NewTypeVar(nil)
	if first.ID != second.ID {
		t.Errorf("ResetIDs did not restart counter: %s vs %s", first.ID, second.ID)
	}
}

func TestNewForwardVarUsesXPrefix(t *testing.T) {
	fv := NewForwardVar(nil)
	if fv.Prefix != "X" {
		t.Errorf("NewForwardVar().Prefix = %q, want X", fv.Prefix)
	}
}
