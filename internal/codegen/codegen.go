// Package codegen implements spec.md §4.3: lowering a fully-typed
// FeatherScala tree into the cast package's C AST, performing closure
// conversion (escape analysis was already done by the analyzer's free-name
// tracking; this package turns that into environment structs and function
// pointers), class lowering (a class becomes a heap-allocated C struct plus
// a constructor that initializes every member; lambda-valued members also
// get their own C function), name mangling, and block flattening
// (declarations first, in the C90 style the teacher's own generated output
// favors — see internal/vm's bytecode chunk layout for the analogous
// "declare slots up front" approach.
//
// Grounded on internal/vm/compiler.go's Upvalue{Index uint8; IsLocal bool}
// closure-capture bookkeeping: a lambda's free names play the role the
// compiler's upvalue list plays there, captured once and threaded through
// an environment rather than re-resolved at every reference.
package codegen

import (
	"github.com/featherscala/fsc/internal/analyzer"
	"github.com/featherscala/fsc/internal/ast"
	"github.com/featherscala/fsc/internal/codegen/cast"
	"github.com/featherscala/fsc/internal/diagnostics"
	"github.com/featherscala/fsc/internal/names"
	"github.com/featherscala/fsc/internal/symbols"
	"github.com/featherscala/fsc/internal/token"
	"github.com/featherscala/fsc/internal/types"
)

// Generator lowers one fully-typed Program to a C translation unit.
type Generator struct {
	info  *analyzer.Info
	names *names.Gen

	mangled map[*symbols.Symbol]string
	structs map[*types.ClassDef]string
	ctors   map[*types.ClassDef]string
	// topFuncNames marks mangled names that are real top-level C functions
	// (from a SimpleFunc lambda with no captures), as opposed to a
	// closure-struct-typed variable holding one — a call site needs to
	// know which so it can call the name directly rather than through a
	// `.fn` field.
	topFuncNames map[string]bool
	// closureTypes memoizes the two-field {fn, env} struct typedef minted
	// for each distinct lambda C type, keyed by its rendered signature so
	// two lambdas of the same shape share one typedef.
	closureTypes map[string]string

	// captureAliases is a stack of symbol -> env-field-load substitutions
	// active while lowering the body of a closure-converted lambda: a
	// reference to a captured free name compiles to a load off the
	// function's environment parameter instead of a direct C variable
	// reference. Pushed/popped around emitFunc's call to lowerExpr.
	captureAliases []captureAlias

	decls []cast.TopLevel
}

type captureAlias struct {
	sym  *symbols.Symbol
	expr cast.Expr
}

// resolveIdent returns the C expression a reference to sym compiles to:
// the innermost active capture alias for sym if one is pushed, else its
// plain mangled C name.
func (g *Generator) resolveIdent(sym *symbols.Symbol) cast.Expr {
	for i := len(g.captureAliases) - 1; i >= 0; i-- {
		if g.captureAliases[i].sym == sym {
			return g.captureAliases[i].expr
		}
	}
	return cast.Ident{Name: g.mangleSymbol(sym)}
}

// New creates a Generator sharing info with the Analyzer that produced it.
func New(info *analyzer.Info) *Generator {
	return &Generator{
		info:         info,
		names:        names.New(),
		mangled:      make(map[*symbols.Symbol]string),
		structs:      make(map[*types.ClassDef]string),
		ctors:        make(map[*types.ClassDef]string),
		topFuncNames: make(map[string]bool),
		closureTypes: make(map[string]string),
	}
}

// Generate lowers p and renders the resulting translation unit as C source.
func Generate(p *ast.Program, info *analyzer.Info) (string, error) {
	g := New(info)
	g.emitRuntime()
	if err := g.lowerProgram(p); err != nil {
		return "", err
	}
	includes := []string{"<stdio.h>", "<stdlib.h>", "<string.h>"}
	return cast.Print(includes, g.decls), nil
}

// emitRuntime emits the small C support functions backing spec.md §6's
// primitive bindings (readInt, readFloat, printlnInt, printlnFloat), ahead
// of any user declaration, under the fixed names declareBuiltins wires
// every reference to in the analyzer.
func (g *Generator) emitRuntime() {
	g.emit(cast.FuncDef{
		Name: "fsc_read_int",
		Ret:  cast.Int,
		Body: []cast.Statement{
			cast.VarDecl{Type: cast.Int, Name: "v"},
			cast.ExprStmt{X: cast.Call{
				Fn:   cast.Ident{Name: "scanf"},
				Args: []cast.Expr{cast.StringLit{Value: "%d"}, cast.UnaryOp{Op: "&", X: cast.Ident{Name: "v"}}},
			}},
			cast.ReturnStmt{Value: cast.Ident{Name: "v"}},
		},
	})
	g.emit(cast.FuncDef{
		Name: "fsc_read_float",
		Ret:  cast.Double,
		Body: []cast.Statement{
			cast.VarDecl{Type: cast.Double, Name: "v"},
			cast.ExprStmt{X: cast.Call{
				Fn:   cast.Ident{Name: "scanf"},
				Args: []cast.Expr{cast.StringLit{Value: "%lf"}, cast.UnaryOp{Op: "&", X: cast.Ident{Name: "v"}}},
			}},
			cast.ReturnStmt{Value: cast.Ident{Name: "v"}},
		},
	})
	g.emit(cast.FuncDef{
		Name:   "fsc_println_int",
		Ret:    cast.Void,
		Params: []cast.Field2{{Type: cast.Int, Name: "v"}},
		Body: []cast.Statement{
			cast.ExprStmt{X: cast.Call{
				Fn:   cast.Ident{Name: "printf"},
				Args: []cast.Expr{cast.StringLit{Value: "%d\n"}, cast.Ident{Name: "v"}},
			}},
		},
	})
	// %g alone would print a whole value like 2.0 as "2", losing the
	// decimal point FeatherScala's Float literals always carry; print with
	// %g's compact significant-digit form, but fall back to one decimal
	// place when the value is exactly integral.
	g.emit(cast.FuncDef{
		Name:   "fsc_println_float",
		Ret:    cast.Void,
		Params: []cast.Field2{{Type: cast.Double, Name: "v"}},
		Body: []cast.Statement{
			cast.IfStmt{
				Cond: cast.BinOp{
					Op: "==",
					L:  cast.Ident{Name: "v"},
					R:  cast.Cast{To: cast.Double, X: cast.Cast{To: cast.BaseType{Name: "long long"}, X: cast.Ident{Name: "v"}}},
				},
				Then: []cast.Statement{
					cast.ExprStmt{X: cast.Call{
						Fn:   cast.Ident{Name: "printf"},
						Args: []cast.Expr{cast.StringLit{Value: "%.1f\n"}, cast.Ident{Name: "v"}},
					}},
				},
				Else: []cast.Statement{
					cast.ExprStmt{X: cast.Call{
						Fn:   cast.Ident{Name: "printf"},
						Args: []cast.Expr{cast.StringLit{Value: "%g\n"}, cast.Ident{Name: "v"}},
					}},
				},
			},
		},
	})
}

func (g *Generator) typeOf(e ast.Expr) types.Type { return g.info.TypeOf(e) }

func (g *Generator) emit(d cast.TopLevel) { g.decls = append(g.decls, d) }

// mangleSymbol returns the stable C identifier for sym, minting one the
// first time it's seen (spec.md §4.3's name-mangling rule: every symbol,
// including two same-named locals in sibling scopes, gets a distinct C
// name).
func (g *Generator) mangleSymbol(sym *symbols.Symbol) string {
	if n, ok := g.mangled[sym]; ok {
		return n
	}
	var n string
	if sym.Dealias.Kind == symbols.DealiasBuiltin {
		n = sym.Dealias.Node.(string)
		g.topFuncNames[n] = true
	} else if sym.IsMember {
		n = sanitizedMember(sym.Name)
	} else {
		n = g.names.UniqueCName(sanitizeIdent(sym.Name))
	}
	g.mangled[sym] = n
	return n
}

func sanitizeIdent(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "v"
	}
	return string(out)
}

// structFor returns the mangled struct tag for a class, minting one (and
// its struct definition) the first time it's needed.
func (g *Generator) structFor(def *types.ClassDef) string {
	if n, ok := g.structs[def]; ok {
		return n
	}
	n := g.names.UniqueCName("class_" + sanitizeIdent(def.Name))
	g.structs[def] = n
	return n
}

// cType lowers a spec.md §3.2 Type to its C representation: Int -> int,
// Float -> double, Boolean -> int, Unit -> void, String -> char*, Array[T]
// -> T*, a class -> a pointer to its generated struct, and a lambda -> the
// memoized two-field closure struct for its shape.
func (g *Generator) cType(t types.Type) cast.Type {
	switch tt := types.Resolve(t).(type) {
	case types.Ground:
		switch tt {
		case types.Int:
			return cast.Int
		case types.Float:
			return cast.Double
		case types.Bool:
			return cast.Bool
		case types.UnitT:
			return cast.Void
		case types.String:
			return cast.PointerType{Elem: cast.Char}
		}
	case types.Array:
		return cast.PointerType{Elem: g.cType(tt.Elem)}
	case types.Class:
		return cast.PointerType{Elem: cast.StructType{Name: g.structFor(tt.Def)}}
	case types.Lambda:
		return cast.StructType{Name: g.closureTypeFor(tt)}
	case types.Ref:
		return cast.PointerType{Elem: g.cType(tt.Inner)}
	}
	return cast.VoidP
}

// closureTypeFor returns the name of the {fn, env} struct typedef used to
// represent every lambda of shape lt, minting it on first use.
func (g *Generator) closureTypeFor(lt types.Lambda) string {
	key := lt.String()
	if n, ok := g.closureTypes[key]; ok {
		return n
	}
	name := g.names.UniqueCName("closure_t")
	params := make([]cast.Type, 0, len(lt.Params)+1)
	params = append(params, cast.VoidP) // env
	for _, p := range lt.Params {
		params = append(params, g.cType(p))
	}
	fnType := cast.FuncType{Params: params, Ret: g.cType(lt.Ret)}
	g.emit(cast.StructDef{
		Name: name,
		Fields: []cast.Field2{
			{Type: fnType, Name: "fn"},
			{Type: cast.VoidP, Name: "env"},
		},
	})
	g.closureTypes[key] = name
	return name
}

// lowerProgram implements spec.md §4.3's top-level lowering: classes become
// struct + constructor + member-function definitions, each top-level
// binding with a lambda value becomes a plain C function, and every other
// top-level binding becomes a global initialized from a generated
// `fsc_init` function that C `main` calls first; the `main` binding's body
// is then lowered inline into C `main`.
func (g *Generator) lowerProgram(p *ast.Program) error {
	for _, cd := range p.Classes {
		if err := g.lowerClass(cd); err != nil {
			return err
		}
	}

	var globals []cast.Field2
	var initStmts []cast.Statement
	var mainFn *ast.Binding

	// Two top-level lambdas may call each other (spec.md §4.3's block rule
	// applies at the program level too: Check predeclares every top-level
	// binding before typing any of their values, so a forward or mutual
	// reference between top-level functions is well-typed). Unlike a
	// block-local capture, a top-level call compiles to a direct C function
	// call rather than an indirect one through a closure struct, so C needs
	// every callee's prototype in scope before any body that calls it is
	// emitted — a forward declaration pass ahead of lowering the bodies
	// covers both the forward and the mutually-recursive case.
	for _, b := range p.Bindings {
		if b.Name == "main" {
			continue
		}
		lam, ok := b.Value.(*ast.LambdaExpr)
		if !ok {
			continue
		}
		lt, ok := types.Resolve(b.Sym.Type).(types.Lambda)
		if !ok {
			continue
		}
		params := make([]cast.Field2, len(lam.Params))
		for i := range lam.Params {
			p := &lam.Params[i]
			params[i] = cast.Field2{Type: g.cType(p.Sym.Type), Name: g.mangleSymbol(p.Sym)}
		}
		g.emit(cast.ForwardDecl{Name: g.mangleSymbol(b.Sym), Params: params, Ret: g.cType(lt.Ret)})
		g.topFuncNames[g.mangleSymbol(b.Sym)] = true
	}

	for _, b := range p.Bindings {
		if b.Name == "main" {
			mainFn = b
			continue
		}
		if lam, ok := b.Value.(*ast.LambdaExpr); ok {
			if _, err := g.lowerTopLevelLambda(b.Sym, lam); err != nil {
				return err
			}
			continue
		}
		bundle, err := g.lowerExpr(b.Value)
		if err != nil {
			return err
		}
		if gt, ok := types.Resolve(g.typeOf(b.Value)).(types.Ground); ok && gt == types.UnitT {
			initStmts = append(initStmts, bundle.AsStatements(g)...)
			continue
		}
		ct := g.cType(g.typeOf(b.Value))
		name := g.mangleSymbol(b.Sym)
		globals = append(globals, cast.Field2{Type: ct, Name: name})
		expr, stmts := bundle.AsExpr(g)
		initStmts = append(initStmts, stmts...)
		initStmts = append(initStmts, cast.Assign{Target: cast.Ident{Name: name}, Value: expr})
	}
	for _, fld := range globals {
		g.emit(cast.GlobalDecl{Field: fld})
	}

	g.emit(cast.FuncDef{Name: "fsc_init", Params: nil, Ret: cast.Void, Body: initStmts})

	progSpan := token.Span{File: p.File}
	if mainFn == nil {
		return diagnostics.NewTypeError(progSpan, "internal error: program must declare a top-level \"main\" binding")
	}
	lam, ok := mainFn.Value.(*ast.LambdaExpr)
	if !ok {
		return diagnostics.NewTypeError(mainFn.Pos, "top-level \"main\" must be a lambda")
	}
	mainBody := []cast.Statement{
		cast.ExprStmt{X: cast.Call{Fn: cast.Ident{Name: "fsc_init"}}},
	}
	if len(lam.Params) != 0 {
		return diagnostics.NewTypeError(mainFn.Pos, "top-level \"main\" must take no parameters")
	}
	bundle, err := g.lowerExpr(lam.Body)
	if err != nil {
		return err
	}
	expr, stmts := bundle.AsExpr(g)
	mainBody = append(mainBody, stmts...)
	mainBody = append(mainBody, cast.ExprStmt{X: expr}, cast.ReturnStmt{Value: cast.IntLit{Value: 0}})
	g.emit(cast.FuncDef{Name: "main", Ret: cast.Int, Body: mainBody})
	return nil
}

