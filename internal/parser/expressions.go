package parser

import (
	"github.com/featherscala/fsc/internal/ast"
	"github.com/featherscala/fsc/internal/lexer"
	"github.com/featherscala/fsc/internal/token"
)

// precedence is the Pratt-parser binding-power table for spec.md §4.4's
// fourteen binary operators (assignment is handled by parseAssign), lowest
// to highest: or, and, equality, relational,
// additive, multiplicative, power.
const (
	precNone = iota
	precOr
	precAnd
	precEquality
	precRelational
	precAdditive
	precMultiplicative
	precPower
)

func precedenceOf(k token.Kind) int {
	switch k {
	case token.OR:
		return precOr
	case token.AND:
		return precAnd
	case token.EQ, token.NE:
		return precEquality
	case token.LT, token.LE, token.GT, token.GE:
		return precRelational
	case token.PLUS, token.MINUS:
		return precAdditive
	case token.STAR, token.SLASH, token.PERCENT:
		return precMultiplicative
	case token.CARET:
		return precPower
	default:
		return precNone
	}
}

// parseExpr is the entry point for any expression, including the surface
// forms (if/while/block/new/lambda) that sit above the binary-operator
// grammar.
func (p *Parser) parseExpr() ast.Expr {
	return p.parseAssign()
}

// parseAssign handles the two assignment forms (`x = e`, `lv = e`) by first
// parsing a full binary expression, then reinterpreting it as an
// assignment target if `=` follows. This mirrors the teacher's own
// expressions_assign.go technique of parsing the left-hand side once and
// only then deciding whether it was actually an assignment.
func (p *Parser) parseAssign() ast.Expr {
	left := p.parseBinary(precNone + 1)
	if p.at(token.ASSIGN) {
		eqSpan := p.cur().Span
		p.next()
		value := p.parseAssign()
		if id, ok := left.(*ast.Ident); ok {
			return &ast.AssignSymExpr{Pos: id.Pos, Name: id.Name, Value: value}
		}
		return &ast.AssignLValueExpr{Pos: eqSpan, LValue: left, Value: value}
	}
	return left
}

func (p *Parser) parseBinary(minPrec int) ast.Expr {
	left := p.parseUnary()
	for {
		prec := precedenceOf(p.cur().Kind)
		if prec < minPrec || prec == precNone {
			break
		}
		opTok := p.cur()
		p.next()
		right := p.parseBinary(prec + 1)
		left = &ast.BinOpExpr{Pos: left.Span(), Op: opTok.Lexeme, L: left, R: right, OpSpan: opTok.Span}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	if p.at(token.NOT) || p.at(token.MINUS) {
		opTok := p.cur()
		p.next()
		x := p.parseUnary()
		return &ast.UnaryOpExpr{Pos: opTok.Span, Op: opTok.Lexeme, X: x, OpSpan: opTok.Span}
	}
	return p.parsePostfix()
}

// parsePostfix handles select (`.member`) and apply (`(args)`) chains.
func (p *Parser) parsePostfix() ast.Expr {
	e := p.parsePrimary()
	for {
		switch p.cur().Kind {
		case token.DOT:
			p.next()
			memberTok := p.expect(token.IDENT, "member name")
			e = &ast.SelectExpr{Pos: e.Span(), Recv: e, Member: memberTok.Lexeme}
		case token.LPAREN:
			p.next()
			var args []ast.Expr
			for !p.at(token.RPAREN) && !p.at(token.EOF) {
				args = append(args, p.parseExpr())
				if p.at(token.COMMA) {
					p.next()
				} else {
					break
				}
			}
			p.expect(token.RPAREN, "')'")
			e = &ast.ApplyExpr{Pos: e.Span(), Fn: e, Args: args}
		default:
			return e
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	start := p.cur().Span
	switch p.cur().Kind {
	case token.INT:
		lit := p.cur().Lexeme
		p.next()
		v, err := lexer.ParseIntLiteral(lit)
		if err != nil {
			p.errorf(start, "invalid integer literal %q", lit)
		}
		return &ast.IntLit{Pos: start, Value: v}
	case token.FLOAT:
		lit := p.cur().Lexeme
		p.next()
		v, err := lexer.ParseFloatLiteral(lit)
		if err != nil {
			p.errorf(start, "invalid float literal %q", lit)
		}
		return &ast.FloatLit{Pos: start, Value: v}
	case token.TRUE:
		p.next()
		return &ast.BoolLit{Pos: start, Value: true}
	case token.FALSE:
		p.next()
		return &ast.BoolLit{Pos: start, Value: false}
	case token.STRING:
		lit := p.cur().Lexeme
		p.next()
		return &ast.StringLit{Pos: start, Value: lit}
	case token.IDENT:
		name := p.cur().Lexeme
		p.next()
		if name == "Array" && p.at(token.LBRACKET) {
			p.next()
			length := p.parseExpr()
			p.expect(token.RBRACKET, "']'")
			return &ast.ArrayLitExpr{Pos: start, Length: length}
		}
		return &ast.Ident{Pos: start, Name: name}
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.NEW:
		return p.parseNew()
	case token.LBRACE:
		return p.parseBlock()
	case token.LPAREN:
		return p.parseParenOrLambda()
	default:
		p.errorf(start, "unexpected token %q in expression", p.cur().Lexeme)
		p.next()
		return &ast.IntLit{Pos: start, Value: 0}
	}
}

func (p *Parser) parseIf() ast.Expr {
	start := p.cur().Span
	p.next() // if
	p.expect(token.LPAREN, "'('")
	cond := p.parseExpr()
	p.expect(token.RPAREN, "')'")
	if p.at(token.THEN) {
		p.next()
	}
	thenE := p.parseExpr()
	p.expect(token.ELSE, "'else'")
	elseE := p.parseExpr()
	return &ast.IfExpr{Pos: start, Cond: cond, Then: thenE, Else: elseE}
}

func (p *Parser) parseWhile() ast.Expr {
	start := p.cur().Span
	p.next() // while
	p.expect(token.LPAREN, "'('")
	cond := p.parseExpr()
	p.expect(token.RPAREN, "')'")
	if p.at(token.DO) {
		p.next()
	}
	body := p.parseExpr()
	return &ast.WhileExpr{Pos: start, Cond: cond, Body: body}
}

func (p *Parser) parseNew() ast.Expr {
	start := p.cur().Span
	p.next() // new
	nameTok := p.expect(token.IDENT, "class name")
	p.expect(token.LPAREN, "'('")
	var args []ast.Expr
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		args = append(args, p.parseExpr())
		if p.at(token.COMMA) {
			p.next()
		} else {
			break
		}
	}
	p.expect(token.RPAREN, "')'")
	return &ast.NewExpr{Pos: start, ClassName: nameTok.Lexeme, Args: args}
}

// parseBlock parses `{ d1; ...; dn; e }`: zero or more val/var definitions
// followed by a trailing expression (spec.md §4.2's only surface block
// form, always typed in recursive mode).
func (p *Parser) parseBlock() ast.Expr {
	start := p.cur().Span
	p.next() // {
	var defs []*ast.Binding
	for p.at(token.VAL) || p.at(token.VAR) {
		defs = append(defs, p.parseBinding())
		for p.at(token.SEMI) {
			p.next()
		}
	}
	body := p.parseExpr()
	for p.at(token.SEMI) {
		p.next()
	}
	p.expect(token.RBRACE, "'}'")
	return &ast.BlockExpr{Pos: start, Defs: defs, Body: body}
}

// parseParenOrLambda disambiguates `(expr)` from a lambda `(params) => body`
// by scanning ahead, from the token slice already fully in hand, for this
// paren group's matching `)` and checking whether `=>` follows it.
func (p *Parser) parseParenOrLambda() ast.Expr {
	if p.lookaheadIsLambda() {
		return p.parseLambda()
	}
	p.next() // (
	e := p.parseExpr()
	p.expect(token.RPAREN, "')'")
	return e
}

// lookaheadIsLambda scans forward from the current `(` for its matching
// `)`, without moving p.pos, and reports whether `=>` immediately follows.
func (p *Parser) lookaheadIsLambda() bool {
	depth := 0
	for i := p.pos; i < len(p.toks); i++ {
		switch p.toks[i].Kind {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth == 0 {
				return i+1 < len(p.toks) && p.toks[i+1].Kind == token.ARROW
			}
		case token.EOF:
			return false
		}
	}
	return false
}

func (p *Parser) parseLambda() ast.Expr {
	start := p.cur().Span
	p.expect(token.LPAREN, "'('")
	var params []ast.Param
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		params = append(params, p.parseParam())
		if p.at(token.COMMA) {
			p.next()
		} else {
			break
		}
	}
	p.expect(token.RPAREN, "')'")
	p.expect(token.ARROW, "'=>'")
	body := p.parseExpr()
	return &ast.LambdaExpr{Pos: start, Params: params, Body: body}
}
