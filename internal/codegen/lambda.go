package codegen

import (
	"github.com/featherscala/fsc/internal/ast"
	"github.com/featherscala/fsc/internal/codegen/cast"
	"github.com/featherscala/fsc/internal/symbols"
	"github.com/featherscala/fsc/internal/types"
)

// lowerTopLevelLambda lowers a top-level `val f = (params) => body` binding
// straight into a named C function. A top-level lambda may list sibling
// top-level bindings as free names (the typer's free-name tracking doesn't
// special-case program scope), but none of them need capturing: every
// top-level binding is already reachable as a plain global or function by
// its mangled name (resolveIdent falls back to that name when no capture
// alias shadows the symbol), so no environment struct is built here. The
// binding's own mangled name is used directly as the C function name
// rather than minting a fresh one, and lowerProgram forward-declares every
// top-level function ahead of the bodies so mutual calls between them
// still compile.
func (g *Generator) lowerTopLevelLambda(sym *symbols.Symbol, lam *ast.LambdaExpr) (SimpleFunc, error) {
	fnName := g.mangleSymbol(sym)
	if err := g.emitFunc(fnName, lam, nil); err != nil {
		return SimpleFunc{}, err
	}
	g.topFuncNames[fnName] = true
	return SimpleFunc{FuncName: fnName}, nil
}

// lowerLambda implements spec.md §4.3.1's closure conversion for a lambda
// appearing in expression position. A lambda with no free names compiles
// to a plain top-level function and is referenced by address (SimpleFunc);
// one with free names gets an environment struct holding a copy of each
// captured name's current value, and the call site allocates and
// populates that struct (Closure).
func (g *Generator) lowerLambda(lam *ast.LambdaExpr) (Bundle, error) {
	if len(lam.FreeNames) == 0 {
		fnName := g.names.UniqueCName("fn")
		if err := g.emitFunc(fnName, lam, nil); err != nil {
			return nil, err
		}
		g.topFuncNames[fnName] = true
		return SimpleFunc{FuncName: fnName}, nil
	}

	envName := g.names.UniqueCName("env_t")
	fields := make([]cast.Field2, len(lam.FreeNames))
	for i, sym := range lam.FreeNames {
		fields[i] = cast.Field2{Type: g.cType(sym.Type), Name: g.mangleSymbol(sym)}
	}
	g.emit(cast.StructDef{Name: envName, Fields: fields})

	fnName := g.names.UniqueCName("fn")
	if err := g.emitFunc(fnName, lam, &envBinding{structName: envName, captures: lam.FreeNames}); err != nil {
		return nil, err
	}

	lt, _ := types.Resolve(g.typeOf(lam)).(types.Lambda)
	closureType := g.closureTypeFor(lt)

	captures := make([]CaptureField, len(lam.FreeNames))
	for i, sym := range lam.FreeNames {
		captures[i] = CaptureField{Name: g.mangleSymbol(sym), Expr: cast.Ident{Name: g.mangleSymbol(sym)}}
	}
	return Closure{
		EnvStructName: envName,
		FuncName:      fnName,
		ClosureType:   closureType,
		Captures:      captures,
	}, nil
}

// envBinding tells emitFunc that the function it's building needs an extra
// `void *env` parameter, cast to structName and made available so
// references to a captured name compile to a field load off it instead of
// a direct C variable reference.
type envBinding struct {
	structName string
	captures   []*symbols.Symbol
}

// emitFunc builds and emits the C function for one lambda body. When env is
// non-nil the generated function takes an extra `void *fsc_env` parameter,
// immediately cast to `struct <env> *`, and env.captures are pushed onto
// the generator's capture-alias table so the body's free-name references
// resolve to field loads instead of C-local references.
func (g *Generator) emitFunc(fnName string, lam *ast.LambdaExpr, env *envBinding) error {
	params := make([]cast.Field2, 0, len(lam.Params)+1)
	if env != nil {
		params = append(params, cast.Field2{Type: cast.VoidP, Name: "fsc_env"})
	}
	for i := range lam.Params {
		p := &lam.Params[i]
		params = append(params, cast.Field2{Type: g.cType(p.Sym.Type), Name: g.mangleSymbol(p.Sym)})
	}

	var prelude []cast.Statement
	if env != nil {
		envVar := "fsc_envp"
		prelude = append(prelude, cast.VarDecl{
			Type: cast.PointerType{Elem: cast.StructType{Name: env.structName}},
			Name: envVar,
			Init: cast.Cast{
				To: cast.PointerType{Elem: cast.StructType{Name: env.structName}},
				X:  cast.Ident{Name: "fsc_env"},
			},
		})
		for _, sym := range env.captures {
			g.captureAliases = append(g.captureAliases, captureAlias{
				sym:  sym,
				expr: cast.Field{Recv: cast.Ident{Name: envVar}, Member: g.mangleSymbol(sym), Arrow: true},
			})
		}
	}

	bundle, err := g.lowerExpr(lam.Body)
	if err != nil {
		if env != nil {
			g.captureAliases = g.captureAliases[:len(g.captureAliases)-len(env.captures)]
		}
		return err
	}
	if env != nil {
		g.captureAliases = g.captureAliases[:len(g.captureAliases)-len(env.captures)]
	}

	bodyT := g.typeOf(lam.Body)
	retT := g.cType(bodyT)
	var body []cast.Statement
	body = append(body, prelude...)
	if gt, ok := types.Resolve(bodyT).(types.Ground); ok && gt == types.UnitT {
		body = append(body, bundle.AsStatements(g)...)
	} else {
		expr, stmts := bundle.AsExpr(g)
		body = append(body, stmts...)
		body = append(body, cast.ReturnStmt{Value: expr})
	}

	g.emit(cast.FuncDef{Name: fnName, Params: params, Ret: retT, Body: body})
	return nil
}
