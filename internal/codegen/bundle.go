package codegen

import "github.com/featherscala/fsc/internal/codegen/cast"

// Bundle is the intermediate form every typed expression lowers to before
// it is dropped into either an expression position or a statement list.
// Some source expressions translate straight into a C expression; others
// (an if, a while, a block with definitions) need one or more C statements
// executed first. Keeping both shapes alive until the call site is known,
// rather than flattening eagerly, is what lets a single lowering of, say,
// an if-expression serve both `f(if (c) a else b)` (needs a temp) and a
// bare statement-position if (doesn't).
//
// Grounded on the ast package's own tagged-union-of-small-structs style;
// the seven variants below play the role spec.md's closure-conversion pass
// assigns to bundles, with each corresponding to one of the shapes a typed
// FeatherScala expression can take once its free names are known.
type Bundle interface {
	// AsExpr returns a cast.Expr usable directly in expression position,
	// plus any statements that must run first to produce it.
	AsExpr(g *Generator) (cast.Expr, []cast.Statement)
	// AsStatements flattens the bundle into statements for a position where
	// its value (if any) is discarded.
	AsStatements(g *Generator) []cast.Statement
}

// PureExpr is a bundle with no side effects: it is already a valid C
// expression wherever one is needed.
type PureExpr struct{ E cast.Expr }

func (p PureExpr) AsExpr(*Generator) (cast.Expr, []cast.Statement) { return p.E, nil }
func (p PureExpr) AsStatements(*Generator) []cast.Statement {
	return []cast.Statement{cast.ExprStmt{X: p.E}}
}

// Block is a sequence of statements that must run before Result is usable.
// Used for if/while lowering and for the trailing value of a local block
// with definitions.
type Block struct {
	Stmts  []cast.Statement
	Result cast.Expr // nil for Unit-typed blocks
}

func (b Block) AsExpr(g *Generator) (cast.Expr, []cast.Statement) {
	if b.Result == nil {
		return cast.IntLit{Value: 0}, b.Stmts
	}
	return b.Result, b.Stmts
}
func (b Block) AsStatements(*Generator) []cast.Statement {
	if b.Result == nil {
		return b.Stmts
	}
	return append(append([]cast.Statement{}, b.Stmts...), cast.ExprStmt{X: b.Result})
}

// PureBlock is a Block known at lowering time to be Unit-typed: its
// statements are executed purely for effect and it contributes no value.
type PureBlock struct{ Stmts []cast.Statement }

func (p PureBlock) AsExpr(*Generator) (cast.Expr, []cast.Statement) {
	return cast.IntLit{Value: 0}, p.Stmts
}
func (p PureBlock) AsStatements(*Generator) []cast.Statement { return p.Stmts }

// Variable names a local or parameter C variable already in scope: a
// reference to it has no setup statements of its own.
type Variable struct{ Name string }

func (v Variable) AsExpr(*Generator) (cast.Expr, []cast.Statement) {
	return cast.Ident{Name: v.Name}, nil
}
func (v Variable) AsStatements(*Generator) []cast.Statement { return nil }

// Closure is a lambda whose free-name set is non-empty: at the call site it
// heap-allocates an environment struct instance populating one field per
// captured name, and yields the closure struct value pairing its generated
// function pointer with that environment, per spec.md §4.3.1.
type Closure struct {
	EnvStructName string
	FuncName      string
	ClosureType   string // name of the two-field {fn, env} struct typedef
	Captures      []CaptureField
}

type CaptureField struct {
	Name string
	Expr cast.Expr
}

func (c Closure) AsExpr(g *Generator) (cast.Expr, []cast.Statement) {
	envVar := g.names.UniqueCName("env")
	closureVar := g.names.UniqueCName("closure")
	var stmts []cast.Statement
	stmts = append(stmts, cast.VarDecl{
		Type: cast.PointerType{Elem: cast.StructType{Name: c.EnvStructName}},
		Name: envVar,
		Init: cast.Cast{
			To: cast.PointerType{Elem: cast.StructType{Name: c.EnvStructName}},
			X: cast.Call{
				Fn:   cast.Ident{Name: "malloc"},
				Args: []cast.Expr{cast.SizeOf{Of: cast.StructType{Name: c.EnvStructName}}},
			},
		},
	})
	for _, cap := range c.Captures {
		stmts = append(stmts, cast.Assign{
			Target: cast.Field{Recv: cast.Ident{Name: envVar}, Member: cap.Name, Arrow: true},
			Value:  cap.Expr,
		})
	}
	stmts = append(stmts, cast.VarDecl{
		Type: cast.StructType{Name: c.ClosureType},
		Name: closureVar,
	})
	stmts = append(stmts,
		cast.Assign{
			Target: cast.Field{Recv: cast.Ident{Name: closureVar}, Member: "fn"},
			Value:  cast.Ident{Name: c.FuncName},
		},
		cast.Assign{
			Target: cast.Field{Recv: cast.Ident{Name: closureVar}, Member: "env"},
			Value:  cast.Cast{To: cast.VoidP, X: cast.Ident{Name: envVar}},
		},
	)
	return cast.Ident{Name: closureVar}, stmts
}
func (c Closure) AsStatements(g *Generator) []cast.Statement {
	_, stmts := c.AsExpr(g)
	return stmts
}

// SimpleFunc is a lambda with an empty free-name set: it lowers straight to
// a top-level C function and needs no environment allocation at its use
// site, so referencing it as a value is just taking its address.
type SimpleFunc struct{ FuncName string }

func (s SimpleFunc) AsExpr(*Generator) (cast.Expr, []cast.Statement) {
	return cast.Ident{Name: s.FuncName}, nil
}
func (s SimpleFunc) AsStatements(*Generator) []cast.Statement { return nil }

// Rec wraps the bundle for a recursive value group's trailing use, carrying
// the set of local declarations the group's members were flattened into so
// a caller assembling an enclosing block can splice them in ahead of the
// inner bundle's own statements.
type Rec struct {
	Decls []cast.Statement
	Inner Bundle
}

func (r Rec) AsExpr(g *Generator) (cast.Expr, []cast.Statement) {
	e, stmts := r.Inner.AsExpr(g)
	return e, append(append([]cast.Statement{}, r.Decls...), stmts...)
}
func (r Rec) AsStatements(g *Generator) []cast.Statement {
	return append(append([]cast.Statement{}, r.Decls...), r.Inner.AsStatements(g)...)
}
