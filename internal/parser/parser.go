// Package parser is the packrat/recursive-descent parser of spec.md §6: an
// external collaborator that turns a token.Token stream into the untyped
// ast tree the analyzer consumes. It never resolves symbols (every Sym
// field it leaves nil) and never checks types.
//
// Grounded on the teacher's internal/parser/processor.go (there, a two-token
// cur/peek lookahead over the lexer): a single Parser struct advanced by
// next(), with one parse method per grammar production and a Pratt
// expression parser keyed by operator precedence. Adapted from Funxy's
// statement-oriented grammar (packages, traits, extensions) to Featherweight
// Scala's pure expression grammar: a program is a sequence of class
// declarations and val/var bindings, the body of a def is always a single
// expression.
package parser

import (
	"fmt"

	"github.com/featherscala/fsc/internal/ast"
	"github.com/featherscala/fsc/internal/lexer"
	"github.com/featherscala/fsc/internal/token"
)

// Parser operates over a fully pre-scanned token slice rather than a live
// lexer stream: the grammar's one ambiguity (a parenthesized expression vs.
// a lambda parameter list) is resolved by scanning ahead for a matching
// `)` followed by `=>`, which is a simple index save/restore against a
// slice but would need awkward token replay against a live, non-rewindable
// lexer.
type Parser struct {
	file string
	toks []token.Token
	pos  int
	errs []error
}

func New(file, src string) *Parser {
	p := &Parser{file: file}
	lx := lexer.New(file, src)
	for {
		t := lx.NextToken()
		p.toks = append(p.toks, t)
		if t.Kind == token.EOF {
			break
		}
	}
	return p
}

func (p *Parser) cur() token.Token {
	return p.toks[p.pos]
}

func (p *Parser) next() {
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
}

func (p *Parser) errorf(span token.Span, format string, args ...interface{}) {
	p.errs = append(p.errs, fmt.Errorf("%s: %s", span, fmt.Sprintf(format, args...)))
}

func (p *Parser) expect(k token.Kind, what string) token.Token {
	if p.cur().Kind != k {
		p.errorf(p.cur().Span, "expected %s, got %q", what, p.cur().Lexeme)
		return p.cur()
	}
	t := p.cur()
	p.next()
	return t
}

func (p *Parser) at(k token.Kind) bool { return p.cur().Kind == k }

// Parse consumes the full token stream and returns the program it
// describes; a non-nil error slice means the tree may be partial.
func Parse(file, src string) (*ast.Program, []error) {
	p := New(file, src)
	prog := p.parseProgram()
	return prog, p.errs
}

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{File: p.file}
	for !p.at(token.EOF) {
		switch p.cur().Kind {
		case token.CLASS:
			prog.Classes = append(prog.Classes, p.parseClassDecl())
		case token.VAL, token.VAR:
			prog.Bindings = append(prog.Bindings, p.parseBinding())
		default:
			p.errorf(p.cur().Span, "expected a class or val/var declaration, got %q", p.cur().Lexeme)
			p.next()
		}
		for p.at(token.SEMI) {
			p.next()
		}
	}
	return prog
}

// parseBinding parses `val|var name [: Type] = expr`, used both at top
// level and for a BlockExpr's definitions.
func (p *Parser) parseBinding() *ast.Binding {
	start := p.cur().Span
	mutable := p.cur().Kind == token.VAR
	p.next() // val/var
	nameTok := p.expect(token.IDENT, "identifier")
	b := &ast.Binding{Pos: start, Name: nameTok.Lexeme, Mutable: mutable}
	if p.at(token.COLON) {
		p.next()
		b.Ann = p.parseTypeAnn()
	}
	p.expect(token.ASSIGN, "'='")
	b.Value = p.parseExpr()
	return b
}

// parseClassDecl parses `class Name(params) { members }`.
func (p *Parser) parseClassDecl() *ast.ClassDecl {
	start := p.cur().Span
	p.next() // class
	nameTok := p.expect(token.IDENT, "class name")
	cd := &ast.ClassDecl{Pos: start, Name: nameTok.Lexeme}

	p.expect(token.LPAREN, "'('")
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		cd.CtorParams = append(cd.CtorParams, p.parseParam())
		if p.at(token.COMMA) {
			p.next()
		} else {
			break
		}
	}
	p.expect(token.RPAREN, "')'")

	p.expect(token.LBRACE, "'{'")
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		if p.at(token.VAL) || p.at(token.VAR) {
			cd.Members = append(cd.Members, p.parseBinding())
		} else {
			p.errorf(p.cur().Span, "expected a val/var member, got %q", p.cur().Lexeme)
			p.next()
		}
		for p.at(token.SEMI) {
			p.next()
		}
	}
	p.expect(token.RBRACE, "'}'")
	return cd
}

func (p *Parser) parseParam() ast.Param {
	start := p.cur().Span
	nameTok := p.expect(token.IDENT, "parameter name")
	param := ast.Param{Pos: start, Name: nameTok.Lexeme}
	if p.at(token.COLON) {
		p.next()
		param.Ann = p.parseTypeAnn()
	}
	return param
}
