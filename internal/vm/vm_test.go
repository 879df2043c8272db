package vm

import (
	"bytes"
	"testing"

	"github.com/juanco-itmu/arkaan-taal/internal/parser"
)

// runSrc compiles and runs src against a fresh VM, returning the
// top-level result and anything written via druk.
func runSrc(t *testing.T, src string) (Value, string) {
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
	var out bytes.Buffer
	m.Stdout = &out
	result, err := m.Run(top)
	if err != nil {
		t.Fatalf("Run(%q): %v", src, err)
	}
	return result, out.String()
}

func TestArithmeticPrecedence(t *testing.T) {
	result, _ := runSrc(t, "1 + 2 * 3")
	if !result.IsInt() || result.AsInt() != 7 {
		t.Fatalf("got %v, want 7", result.Inspect())
	}
}

func TestDrukWritesToStdout(t *testing.T) {
	_, out := runSrc(t, `druk("hallo")`)
	if out != "hallo\n" {
		t.Fatalf("got %q", out)
	}
}

func TestFactorialRecursion(t *testing.T) {
	src := `
funksie fakulteit(n) {
	as (n <= 1) { gee 1 }
	gee n * fakulteit(n - 1)
}
fakulteit(10)`
	result, _ := runSrc(t, src)
	if !result.IsInt() || result.AsInt() != 3628800 {
		t.Fatalf("got %v, want 3628800", result.Inspect())
	}
}

// TestDeepTailRecursionDoesNotOverflow exercises tail-call optimization:
// without frame reuse this would exceed MaxFrameCount and raise a
// StackOverflow RuntimeError.
func TestDeepTailRecursionDoesNotOverflow(t *testing.T) {
	src := `
funksie tel_af(n, acc) {
	as (n <= 0) { gee acc }
	gee tel_af(n - 1, acc + 1)
}
tel_af(100000, 0)`
	result, _ := runSrc(t, src)
	if !result.IsInt() || result.AsInt() != 100000 {
		t.Fatalf("got %v, want 100000", result.Inspect())
	}
}

func TestClosureCapturesEnclosingLocal(t *testing.T) {
	src := `
funksie mk(n) {
	gee fn(x) x + n
}
laat plus5 = mk(5)
plus5(10)`
	result, _ := runSrc(t, src)
	if !result.IsInt() || result.AsInt() != 15 {
		t.Fatalf("got %v, want 15", result.Inspect())
	}
}

func TestClosuresShareUpvalueAcrossCalls(t *testing.T) {
	src := `
funksie teller() {
	stel n = 0
	gee fn() { n = n + 1  gee n }
}
laat volgende = teller()
volgende()
volgende()
volgende()`
	result, _ := runSrc(t, src)
	if !result.IsInt() || result.AsInt() != 3 {
		t.Fatalf("got %v, want 3", result.Inspect())
	}
}

func TestADTConstructAndMatch(t *testing.T) {
	src := `
tipe Opsie { Niks  Sommige(w) }
druk(pas(Sommige(42)) { geval Sommige(x) => x * 2  geval Niks => 0 })
pas(Sommige(42)) { geval Sommige(x) => x * 2  geval Niks => 0 }`
	result, out := runSrc(t, src)
	if out != "84\n" {
		t.Fatalf("got %q", out)
	}
	if !result.IsInt() || result.AsInt() != 84 {
		t.Fatalf("got %v, want 84", result.Inspect())
	}
}

func TestMatchFallsThroughToSecondArm(t *testing.T) {
	src := `
tipe Opsie { Niks  Sommige(w) }
pas(Niks) { geval Sommige(x) => x * 2  geval Niks => -1 }`
	result, _ := runSrc(t, src)
	if !result.IsInt() || result.AsInt() != -1 {
		t.Fatalf("got %v, want -1", result.Inspect())
	}
}

func TestKaartMapsOverList(t *testing.T) {
	src := `kaart([1,2,3], fn(x) x * x)`
	result, _ := runSrc(t, src)
	l, ok := result.Obj.(*ListObj)
	if !ok || !result.IsObj() || len(l.Elements) != 3 {
		t.Fatalf("got %v", result.Inspect())
	}
	want := []int64{1, 4, 9}
	for i, w := range want {
		if l.Elements[i].AsInt() != w {
			t.Fatalf("element %d: got %d, want %d", i, l.Elements[i].AsInt(), w)
		}
	}
}

func TestFilterKeepsMatchingElements(t *testing.T) {
	src := `filter([1,2,3,4,5,6], fn(x) x > 3)`
	result, _ := runSrc(t, src)
	l := result.Obj.(*ListObj)
	if len(l.Elements) != 3 || l.Elements[0].AsInt() != 4 {
		t.Fatalf("got %v", result.Inspect())
	}
}

func TestVouFoldsFromInitial(t *testing.T) {
	src := `vou([1,2,3,4], 0, fn(acc, x) acc + x)`
	result, _ := runSrc(t, src)
	if !result.IsInt() || result.AsInt() != 10 {
		t.Fatalf("got %v, want 10", result.Inspect())
	}
}

func TestVirElkCallsForSideEffectOnly(t *testing.T) {
	_, out := runSrc(t, `vir_elk([1,2,3], fn(x) druk(x))`)
	if out != "1\n2\n3\n" {
		t.Fatalf("got %q", out)
	}
}

func TestNegativeListIndexing(t *testing.T) {
	result, _ := runSrc(t, `[10,20,30][-1]`)
	if !result.IsInt() || result.AsInt() != 30 {
		t.Fatalf("got %v, want 30", result.Inspect())
	}
}

func TestWhileLoopAccumulates(t *testing.T) {
	src := `
stel i = 0
stel acc = 0
terwyl (i < 5) {
	acc = acc + i
	i = i + 1
}
acc`
	result, _ := runSrc(t, src)
	if !result.IsInt() || result.AsInt() != 10 {
		t.Fatalf("got %v, want 10", result.Inspect())
	}
}

func TestGlobalsPersistAcrossSeparateCompiles(t *testing.T) {
	globals := NewGlobalScope()
	m := New()
	RegisterBuiltins(m)

	run := func(src string) Value {
		prog, err := parser.ParseProgram(src)
		if err != nil {
			t.Fatalf("ParseProgram(%q): %v", src, err)
		}
		top, err := Compile(prog, globals)
		if err != nil {
			t.Fatalf("Compile(%q): %v", src, err)
		}
		result, err := m.Run(top)
		if err != nil {
			t.Fatalf("Run(%q): %v", src, err)
		}
		return result
	}

	run(`laat x = 40`)
	result := run(`x + 2`)
	if !result.IsInt() || result.AsInt() != 42 {
		t.Fatalf("got %v, want 42", result.Inspect())
	}
}
