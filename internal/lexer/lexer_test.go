package lexer

import (
	"testing"

	"github.com/juanco-itmu/arkaan-taal/internal/token"
)

func TestNextTokenOperators(t *testing.T) {
	input := `laat x = 1 + 2 * 3 <= 4 && 5 != 6 => druk(x)`

	want := []token.Kind{
		token.LAAT, token.IDENT, token.ASSIGN, token.INT, token.PLUS, token.INT,
		token.STAR, token.INT, token.LTE, token.INT, token.AND, token.INT,
		token.NOT_EQ, token.INT, token.ARROW_EQ, token.DRUK, token.LPAREN,
		token.IDENT, token.RPAREN, token.EOF,
	}

	l := New(input)
	for i, k := range want {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("token %d: unexpected error: %v", i, err)
		}
		if tok.Kind != k {
			t.Fatalf("token %d: got %s, want %s (lexeme %q)", i, tok.Kind, k, tok.Lexeme)
		}
	}
}

func TestNextTokenStringEscapes(t *testing.T) {
	toks, err := Tokenize(`"hallo\nwereld"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].Kind != token.STRING || toks[0].Literal != "hallo\nwereld" {
		t.Fatalf("got %#v", toks[0])
	}
}

func TestUnterminatedString(t *testing.T) {
	_, err := Tokenize(`"onvoltooid`)
	if err == nil {
		t.Fatal("expected an error for unterminated string")
	}
}

func TestInvalidEscape(t *testing.T) {
	_, err := Tokenize(`"bad \q escape"`)
	if err == nil {
		t.Fatal("expected an error for invalid escape")
	}
}

func TestNumbers(t *testing.T) {
	toks, err := Tokenize("42 3.14")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].Kind != token.INT || toks[0].Lexeme != "42" {
		t.Fatalf("got %#v", toks[0])
	}
	if toks[1].Kind != token.FLOAT || toks[1].Lexeme != "3.14" {
		t.Fatalf("got %#v", toks[1])
	}
}

func TestWildcardVsIdentifier(t *testing.T) {
	toks, err := Tokenize("_ _resto")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].Kind != token.UNDERSCORE {
		t.Fatalf("got %#v", toks[0])
	}
	if toks[1].Kind != token.IDENT || toks[1].Lexeme != "_resto" {
		t.Fatalf("got %#v", toks[1])
	}
}

func TestLineComment(t *testing.T) {
	toks, err := Tokenize("1 // dit is kommentaar\n2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(toks) != 3 || toks[0].Lexeme != "1" || toks[1].Lexeme != "2" {
		t.Fatalf("got %#v", toks)
	}
}

func TestUnicodeIdentifier(t *testing.T) {
	toks, err := Tokenize("laat naïef = 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[1].Kind != token.IDENT || toks[1].Lexeme != "naïef" {
		t.Fatalf("got %#v", toks[1])
	}
}
