package vm

import (
	"testing"

	"github.com/juanco-itmu/arkaan-taal/internal/errs"
	"github.com/juanco-itmu/arkaan-taal/internal/parser"
)

func runExpectRuntimeErr(t *testing.T, src string, wantKind errs.RuntimeKind) {
	t.Helper()
	prog, err := parser.ParseProgram(src)
	if err != nil {
		t.Fatalf("ParseProgram(%q): %v", src, err)
	}
	top, err := Compile(prog, NewGlobalScope())
	if err != nil {
		t.Fatalf("Compile(%q): %v", src, err)
	}
	m := New()
	RegisterBuiltins(m)
	_, err = m.Run(top)
	if err == nil {
		t.Fatalf("Run(%q): expected a RuntimeError, got none", src)
	}
	re, ok := err.(*errs.RuntimeError)
	if !ok {
		t.Fatalf("Run(%q): got %T (%v), want *errs.RuntimeError", src, err, err)
	}
	if re.Kind != wantKind {
		t.Fatalf("Run(%q): got kind %s, want %s", src, re.Kind, wantKind)
	}
}

func TestCallingANonCallableIsTypeError(t *testing.T) {
	runExpectRuntimeErr(t, `laat x = 5  x(1)`, errs.TypeError)
}

func TestWrongArityIsArityError(t *testing.T) {
	runExpectRuntimeErr(t, `
funksie f(a, b) { gee a + b }
f(1)`, errs.ArityError)
}

func TestIndexOutOfBoundsIsIndexError(t *testing.T) {
	runExpectRuntimeErr(t, `[1,2,3][10]`, errs.IndexError)
}

func TestNegativeIndexStillOutOfBoundsIsIndexError(t *testing.T) {
	runExpectRuntimeErr(t, `[1,2,3][-10]`, errs.IndexError)
}

func TestKopOfEmptyListIsIndexError(t *testing.T) {
	runExpectRuntimeErr(t, `kop([])`, errs.IndexError)
}

func TestStertOfEmptyListIsIndexError(t *testing.T) {
	runExpectRuntimeErr(t, `stert([])`, errs.IndexError)
}

func TestUndefinedGlobalIsNameError(t *testing.T) {
	runExpectRuntimeErr(t, `onbekende_naam`, errs.NameError)
}

func TestUnmatchedPatternIsMatchError(t *testing.T) {
	runExpectRuntimeErr(t, `
tipe Opsie { Niks  Sommige(w) }
pas(Niks) { geval Sommige(x) => x }`, errs.MatchError)
}

func TestDivisionByZeroIsDivByZero(t *testing.T) {
	runExpectRuntimeErr(t, `1 / 0`, errs.DivByZero)
}

func TestModuloByZeroIsDivByZero(t *testing.T) {
	runExpectRuntimeErr(t, `1 % 0`, errs.DivByZero)
}

func TestAddingIncompatibleTypesIsTypeError(t *testing.T) {
	runExpectRuntimeErr(t, `1 + "two"`, errs.TypeError)
}

func TestDeepNonTailRecursionOverflowsStack(t *testing.T) {
	runExpectRuntimeErr(t, `
funksie soom(n) {
	as (n <= 0) { gee 0 }
	gee n + soom(n - 1)
}
soom(100000)`, errs.StackOverflow)
}
