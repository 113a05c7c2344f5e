package codegen

import (
	"github.com/featherscala/fsc/internal/ast"
	"github.com/featherscala/fsc/internal/codegen/cast"
	"github.com/featherscala/fsc/internal/types"
)

// lowerClass implements spec.md §4.3.2: a class becomes a heap-allocated C
// struct (one field per constructor parameter plus one per member, members
// stored as their already-evaluated value rather than recomputed per
// access since FeatherScala members are bound once at construction), a
// constructor function that allocates and initializes one, and the class
// members are evaluated inline in the constructor rather than becoming
// separate accessor functions — a `select` on a class value just reads the
// struct field directly (see lowerSelect in expressions.go).
func (g *Generator) lowerClass(cd *ast.ClassDecl) error {
	def, ok := types.Resolve(cd.Sym.Type).(types.Class)
	if !ok {
		return nil
	}
	structName := g.structFor(def.Def)

	fields := make([]cast.Field2, 0, len(cd.CtorParams)+len(cd.Members))
	for i := range cd.CtorParams {
		p := &cd.CtorParams[i]
		fields = append(fields, cast.Field2{Type: g.cType(p.Sym.Type), Name: g.mangleSymbol(p.Sym)})
	}
	for _, m := range cd.Members {
		fields = append(fields, cast.Field2{Type: g.cType(m.Sym.Type), Name: g.mangleSymbol(m.Sym)})
	}
	g.emit(cast.StructDef{Name: structName, Fields: fields})

	ctorName := g.names.UniqueCName("new_" + sanitizeIdent(cd.Name))
	g.ctorFor(def.Def, ctorName)

	ctorParams := make([]cast.Field2, len(cd.CtorParams))
	for i := range cd.CtorParams {
		p := &cd.CtorParams[i]
		ctorParams[i] = cast.Field2{Type: g.cType(p.Sym.Type), Name: g.mangleSymbol(p.Sym)}
	}

	selfVar := "fsc_self"
	var body []cast.Statement
	body = append(body, cast.VarDecl{
		Type: cast.PointerType{Elem: cast.StructType{Name: structName}},
		Name: selfVar,
		Init: cast.Cast{
			To: cast.PointerType{Elem: cast.StructType{Name: structName}},
			X: cast.Call{
				Fn:   cast.Ident{Name: "malloc"},
				Args: []cast.Expr{cast.SizeOf{Of: cast.StructType{Name: structName}}},
			},
		},
	})
	for i := range cd.CtorParams {
		p := &cd.CtorParams[i]
		body = append(body, cast.Assign{
			Target: cast.Field{Recv: cast.Ident{Name: selfVar}, Member: g.mangleSymbol(p.Sym), Arrow: true},
			Value:  cast.Ident{Name: g.mangleSymbol(p.Sym)},
		})
	}

	// Members see the constructor parameters and each other as plain C
	// struct fields through self, so member bodies referencing a ctor
	// param or an earlier member compile the same way a select on an
	// explicit receiver would; push capture-alias-style substitutions for
	// the duration of lowering each member body. A lambda-valued member
	// (a method) is lowered separately through lowerMethod, which injects
	// self into every method's own environment so self- and
	// forward-referencing member calls resolve regardless of declaration
	// order (spec.md §4.3.2 step 2); plain-valued members keep reading
	// earlier siblings directly off self here, in declaration order.
	aliasBase := len(g.captureAliases)
	for i := range cd.CtorParams {
		p := &cd.CtorParams[i]
		g.captureAliases = append(g.captureAliases, captureAlias{
			sym:  p.Sym,
			expr: cast.Ident{Name: g.mangleSymbol(p.Sym)},
		})
	}
	selfPtrT := cast.PointerType{Elem: cast.StructType{Name: structName}}
	for _, m := range cd.Members {
		var bundle Bundle
		var err error
		if lam, ok := m.Value.(*ast.LambdaExpr); ok {
			bundle, err = g.lowerMethod(selfVar, selfPtrT, cd.Members, lam)
		} else {
			bundle, err = g.lowerExpr(m.Value)
		}
		if err != nil {
			return err
		}
		expr, stmts := bundle.AsExpr(g)
		body = append(body, stmts...)
		body = append(body, cast.Assign{
			Target: cast.Field{Recv: cast.Ident{Name: selfVar}, Member: g.mangleSymbol(m.Sym), Arrow: true},
			Value:  expr,
		})
		g.captureAliases = append(g.captureAliases, captureAlias{
			sym:  m.Sym,
			expr: cast.Field{Recv: cast.Ident{Name: selfVar}, Member: g.mangleSymbol(m.Sym), Arrow: true},
		})
	}
	g.captureAliases = g.captureAliases[:aliasBase]

	body = append(body, cast.ReturnStmt{Value: cast.Ident{Name: selfVar}})
	g.emit(cast.FuncDef{
		Name:   ctorName,
		Params: ctorParams,
		Ret:    cast.PointerType{Elem: cast.StructType{Name: structName}},
		Body:   body,
	})
	return nil
}

// ctorFor records the constructor function name generated for a class so
// `new C(...)` call sites can find it.
func (g *Generator) ctorFor(def *types.ClassDef, name string) { g.ctors[def] = name }

// lowerMethod lowers a lambda-valued class member (spec.md §4.3.2 step 2):
// unlike an ordinary lambda, a method always closes over self, even when it
// captures nothing else, so that a reference to a sibling member (including
// itself, for a recursive method) compiles to `self->member` regardless of
// whether that sibling was declared earlier or later in the class body.
// Genuinely free names found by the typer (e.g. a captured constructor
// parameter) ride in the same environment alongside self.
func (g *Generator) lowerMethod(selfVarName string, selfPtrT cast.Type, allMembers []*ast.Binding, lam *ast.LambdaExpr) (Bundle, error) {
	envName := g.names.UniqueCName("env_t")
	fields := make([]cast.Field2, 0, len(lam.FreeNames)+1)
	fields = append(fields, cast.Field2{Type: selfPtrT, Name: "self"})
	for _, sym := range lam.FreeNames {
		fields = append(fields, cast.Field2{Type: g.cType(sym.Type), Name: g.mangleSymbol(sym)})
	}
	g.emit(cast.StructDef{Name: envName, Fields: fields})

	// Capture-site expressions are resolved against the constructor's own
	// alias table, before the method body's own self/env aliases shadow it.
	captures := make([]CaptureField, 0, len(lam.FreeNames)+1)
	captures = append(captures, CaptureField{Name: "self", Expr: cast.Ident{Name: selfVarName}})
	for _, sym := range lam.FreeNames {
		captures = append(captures, CaptureField{Name: g.mangleSymbol(sym), Expr: g.resolveIdent(sym)})
	}

	fnName := g.names.UniqueCName("fn")
	envVar := "fsc_envp"
	selfExpr := cast.Field{Recv: cast.Ident{Name: envVar}, Member: "self", Arrow: true}

	base := len(g.captureAliases)
	for _, m := range allMembers {
		g.captureAliases = append(g.captureAliases, captureAlias{
			sym:  m.Sym,
			expr: cast.Field{Recv: selfExpr, Member: g.mangleSymbol(m.Sym), Arrow: true},
		})
	}
	for _, sym := range lam.FreeNames {
		g.captureAliases = append(g.captureAliases, captureAlias{
			sym:  sym,
			expr: cast.Field{Recv: cast.Ident{Name: envVar}, Member: g.mangleSymbol(sym), Arrow: true},
		})
	}

	params := make([]cast.Field2, 0, len(lam.Params)+1)
	params = append(params, cast.Field2{Type: cast.VoidP, Name: "fsc_env"})
	for i := range lam.Params {
		p := &lam.Params[i]
		params = append(params, cast.Field2{Type: g.cType(p.Sym.Type), Name: g.mangleSymbol(p.Sym)})
	}
	prelude := cast.VarDecl{
		Type: cast.PointerType{Elem: cast.StructType{Name: envName}},
		Name: envVar,
		Init: cast.Cast{
			To: cast.PointerType{Elem: cast.StructType{Name: envName}},
			X:  cast.Ident{Name: "fsc_env"},
		},
	}

	bundle, err := g.lowerExpr(lam.Body)
	g.captureAliases = g.captureAliases[:base]
	if err != nil {
		return nil, err
	}

	bodyT := g.typeOf(lam.Body)
	retT := g.cType(bodyT)
	body := []cast.Statement{prelude}
	if gt, ok := types.Resolve(bodyT).(types.Ground); ok && gt == types.UnitT {
		body = append(body, bundle.AsStatements(g)...)
	} else {
		expr, stmts := bundle.AsExpr(g)
		body = append(body, stmts...)
		body = append(body, cast.ReturnStmt{Value: expr})
	}
	g.emit(cast.FuncDef{Name: fnName, Params: params, Ret: retT, Body: body})

	lt, _ := types.Resolve(g.typeOf(lam)).(types.Lambda)
	closureType := g.closureTypeFor(lt)

	return Closure{EnvStructName: envName, FuncName: fnName, ClosureType: closureType, Captures: captures}, nil
}
