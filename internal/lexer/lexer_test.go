package lexer

import (
	"testing"

	"github.com/featherscala/fsc/internal/token"
)

func scanAll(t *testing.T, input string) []token.Token {
	t.Helper()
	l := New("test.fsc", input)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestNextTokenPunctuationAndOperators(t *testing.T) {
	toks := scanAll(t, "(){}[],.:;+-*/^% == => = != ! <= < >= > && ||")
	want := []token.Kind{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE,
		token.LBRACKET, token.RBRACKET, token.COMMA, token.DOT,
		token.COLON, token.SEMI, token.PLUS, token.MINUS, token.STAR,
		token.SLASH, token.CARET, token.PERCENT, token.EQ, token.ARROW,
		token.ASSIGN, token.NE, token.NOT, token.LE, token.LT, token.GE,
		token.GT, token.AND, token.OR, token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d kind = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNextTokenKeywordsVsIdent(t *testing.T) {
	toks := scanAll(t, "class val var if then else while do new true false foo")
	want := []token.Kind{
		token.CLASS, token.VAL, token.VAR, token.IF, token.THEN, token.ELSE,
		token.WHILE, token.DO, token.NEW, token.TRUE, token.FALSE, token.IDENT,
		token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d kind = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNextTokenIntAndFloatLiterals(t *testing.T) {
	toks := scanAll(t, "42 3.14 7")
	if toks[0].Kind != token.INT || toks[0].Lexeme != "42" {
		t.Errorf("token 0 = %+v, want INT 42", toks[0])
	}
	if toks[1].Kind != token.FLOAT || toks[1].Lexeme != "3.14" {
		t.Errorf("token 1 = %+v, want FLOAT 3.14", toks[1])
	}
	if toks[2].Kind != token.INT || toks[2].Lexeme != "7" {
		t.Errorf("token 2 = %+v, want INT 7", toks[2])
	}
}

func TestNextTokenDotAfterIntIsNotConsumedWithoutFollowingDigit(t *testing.T) {
	// "1." is not a float literal in this grammar (no trailing-dot floats);
	// the dot is a separate DOT token, e.g. for a hypothetical `1.toString`.
	toks := scanAll(t, "1.toString")
	if toks[0].Kind != token.INT || toks[0].Lexeme != "1" {
		t.Fatalf("token 0 = %+v, want INT 1", toks[0])
	}
	if toks[1].Kind != token.DOT {
		t.Errorf("token 1 kind = %v, want DOT", toks[1].Kind)
	}
	if toks[2].Kind != token.IDENT || toks[2].Lexeme != "toString" {
		t.Errorf("token 2 = %+v, want IDENT toString", toks[2])
	}
}

func TestNextTokenStringEscapes(t *testing.T) {
	toks := scanAll(t, `"hi\n\t\"end\\"`)
	want := "hi\n\t\"end\\"
	if toks[0].Kind != token.STRING || toks[0].Lexeme != want {
		t.Errorf("token 0 = %+v, want STRING %q", toks[0], want)
	}
}

func TestNextTokenSkipsLineAndBlockComments(t *testing.T) {
	toks := scanAll(t, "1 // a comment\n/* block\ncomment */ 2")
	if toks[0].Kind != token.INT || toks[0].Lexeme != "1" {
		t.Fatalf("token 0 = %+v, want INT 1", toks[0])
	}
	if toks[1].Kind != token.INT || toks[1].Lexeme != "2" {
		t.Fatalf("token 1 = %+v, want INT 2", toks[1])
	}
}

func TestNextTokenIllegalCharacter(t *testing.T) {
	toks := scanAll(t, "@")
	if toks[0].Kind != token.ILLEGAL || toks[0].Lexeme != "@" {
		t.Errorf("token 0 = %+v, want ILLEGAL @", toks[0])
	}
}

func TestNextTokenTracksLineAndColumn(t *testing.T) {
	toks := scanAll(t, "a\nb")
	if toks[0].Span.Start.Line != 1 {
		t.Errorf("token 0 line = %d, want 1", toks[0].Span.Start.Line)
	}
	if toks[1].Span.Start.Line != 2 {
		t.Errorf("token 1 line = %d, want 2", toks[1].Span.Start.Line)
	}
}

func TestParseIntAndFloatLiteral(t *testing.T) {
	iv, err := ParseIntLiteral("42")
	if err != nil || iv != 42 {
		t.Errorf("ParseIntLiteral(42) = %d, %v, want 42, nil", iv, err)
	}
	fv, err := ParseFloatLiteral("3.5")
	if err != nil || fv != 3.5 {
		t.Errorf("ParseFloatLiteral(3.5) = %v, %v, want 3.5, nil", fv, err)
	}
}
