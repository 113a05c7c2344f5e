package parser

import "github.com/featherscala/fsc/internal/ast"
import "github.com/featherscala/fsc/internal/token"

// parseTypeAnn parses a surface type: a bare name, `Array[T]`, or a lambda
// type `(T1, T2) => R`.
func (p *Parser) parseTypeAnn() ast.TypeAnn {
	start := p.cur().Span
	if p.at(token.LPAREN) {
		p.next()
		var params []ast.TypeAnn
		for !p.at(token.RPAREN) && !p.at(token.EOF) {
			params = append(params, p.parseTypeAnn())
			if p.at(token.COMMA) {
				p.next()
			} else {
				break
			}
		}
		p.expect(token.RPAREN, "')'")
		p.expect(token.ARROW, "'=>'")
		ret := p.parseTypeAnn()
		return &ast.LambdaTypeAnn{Pos: start, Params: params, Ret: ret}
	}

	nameTok := p.expect(token.IDENT, "type name")
	if nameTok.Lexeme == "Array" && p.at(token.LBRACKET) {
		p.next()
		elem := p.parseTypeAnn()
		p.expect(token.RBRACKET, "']'")
		return &ast.ArrayTypeAnn{Pos: start, Elem: elem}
	}
	return &ast.NamedType{Pos: start, Name: nameTok.Lexeme}
}
