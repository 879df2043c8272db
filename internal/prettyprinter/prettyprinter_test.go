package prettyprinter

import (
	"testing"

	"github.com/juanco-itmu/arkaan-taal/internal/lexer"
	"github.com/juanco-itmu/arkaan-taal/internal/parser"
	"github.com/juanco-itmu/arkaan-taal/internal/token"
)

func kinds(t *testing.T, src string) []token.Kind {
	t.Helper()
	toks, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize(%q): %v", src, err)
	}
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestRoundTripTokenStream(t *testing.T) {
	cases := []string{
		`laat x = 1 + 2 * 3`,
		`druk(kaart([1, 2, 3], fn(x) x * x))`,
		`funksie fakulteit(n) { as n <= 1 { gee 1 } gee n * fakulteit(n - 1) }`,
		`tipe Opsie { Niks  Sommige(w) }`,
		`laat mk = fn(n) fn(x) x + n`,
	}

	for _, src := range cases {
		prog, err := parser.ParseProgram(src)
		if err != nil {
			t.Fatalf("ParseProgram(%q): %v", src, err)
		}
		printed := Print(prog)

		want := kinds(t, src)
		got := kinds(t, printed)
		if len(want) != len(got) {
			t.Fatalf("source %q: token count mismatch\n  original: %v\n  printed:  %q -> %v", src, want, printed, got)
		}
		for i := range want {
			if want[i] != got[i] {
				t.Fatalf("source %q: token %d mismatch: want %s got %s (printed: %q)", src, i, want[i], got[i], printed)
			}
		}
	}
}
