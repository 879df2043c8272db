package vm

import (
	"testing"

	"github.com/juanco-itmu/arkaan-taal/internal/errs"
	"github.com/juanco-itmu/arkaan-taal/internal/parser"
)

func mustCompileErr(t *testing.T, src string) *errs.CompileError {
	t.Helper()
	prog, err := parser.ParseProgram(src)
	if err != nil {
		t.Fatalf("ParseProgram(%q): %v", src, err)
	}
	_, err = Compile(prog, NewGlobalScope())
	if err == nil {
		t.Fatalf("Compile(%q): expected a CompileError, got none", src)
	}
	ce, ok := err.(*errs.CompileError)
	if !ok {
		t.Fatalf("Compile(%q): got %T (%v), want *errs.CompileError", src, err, err)
	}
	return ce
}

func TestReassignImmutableBindingIsCompileError(t *testing.T) {
	mustCompileErr(t, `
laat x = 1
x = 2`)
}

func TestReassignImmutableLocalIsCompileError(t *testing.T) {
	mustCompileErr(t, `
funksie f() {
	laat x = 1
	x = 2
	gee x
}`)
}

func TestSelfReferenceInOwnInitializerIsCompileError(t *testing.T) {
	mustCompileErr(t, `
funksie f() {
	laat x = x + 1
	gee x
}`)
}

func TestIndexAssignmentIsCompileError(t *testing.T) {
	mustCompileErr(t, `
laat xs = [1,2,3]
xs[0] = 9`)
}

func TestAssignToUnknownNameIsCompileError(t *testing.T) {
	mustCompileErr(t, `y = 5`)
}

func TestStelReassignmentCompilesFine(t *testing.T) {
	prog, err := parser.ParseProgram(`
stel x = 1
x = 2
x`)
	if err != nil {
		t.Fatalf("ParseProgram: %v", err)
	}
	if _, err := Compile(prog, NewGlobalScope()); err != nil {
		t.Fatalf("Compile: unexpected error %v", err)
	}
}
