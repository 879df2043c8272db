package vm

import (
	"strings"
	"testing"

	"github.com/juanco-itmu/arkaan-taal/internal/parser"
)

func TestDisassembleRendersConstantsAndReturn(t *testing.T) {
	prog, err := parser.ParseProgram("1 + 2")
	if err != nil {
		t.Fatalf("ParseProgram: %v", err)
	}
	top, err := Compile(prog, NewGlobalScope())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	out := Disassemble(top.Chunk, "<top-level>")
	for _, want := range []string{"== <top-level> ==", "CONST", "ADD", "HALT"} {
		if !strings.Contains(out, want) {
			t.Fatalf("Disassemble output missing %q:\n%s", want, out)
		}
	}
}

func TestDisassembleNestedClosure(t *testing.T) {
	prog, err := parser.ParseProgram(`
funksie mk(n) {
	gee fn(x) x + n
}
mk(1)`)
	if err != nil {
		t.Fatalf("ParseProgram: %v", err)
	}
	top, err := Compile(prog, NewGlobalScope())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	out := Disassemble(top.Chunk, "<top-level>")
	if !strings.Contains(out, "MAKE_CLOSURE") {
		t.Fatalf("expected MAKE_CLOSURE in disassembly:\n%s", out)
	}
}
