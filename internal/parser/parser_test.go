package parser

import (
	"testing"

	"github.com/juanco-itmu/arkaan-taal/internal/ast"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := ParseProgram(src)
	if err != nil {
		t.Fatalf("ParseProgram(%q): %v", src, err)
	}
	return prog
}

func TestParseLetAndPrint(t *testing.T) {
	prog := mustParse(t, `laat x = 1 + 2 * 3
druk(x)`)
	if len(prog.Statements) != 2 {
		t.Fatalf("got %d statements, want 2", len(prog.Statements))
	}
	let, ok := prog.Statements[0].(*ast.LetStmt)
	if !ok || let.Mutable || let.Name != "x" {
		t.Fatalf("got %#v", prog.Statements[0])
	}
	bin, ok := let.Value.(*ast.BinaryExpr)
	if !ok || bin.Operator != "+" {
		t.Fatalf("got %#v", let.Value)
	}
}

func TestOperatorPrecedence(t *testing.T) {
	prog := mustParse(t, "1 + 2 * 3")
	got := prog.Statements[0].String()
	want := "(1 + (2 * 3))"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFunctionDecl(t *testing.T) {
	prog := mustParse(t, `funksie fakulteit(n){ as (n<=1){ gee 1 } gee n*fakulteit(n-1) }`)
	fn, ok := prog.Statements[0].(*ast.FuncDecl)
	if !ok || fn.Name != "fakulteit" || len(fn.Params) != 1 {
		t.Fatalf("got %#v", prog.Statements[0])
	}
}

func TestLambdaSingleExpr(t *testing.T) {
	prog := mustParse(t, "laat mk = fn(n) fn(x) x+n  laat p5 = mk(5)  druk(p5(10))")
	if len(prog.Statements) != 3 {
		t.Fatalf("got %d statements", len(prog.Statements))
	}
	lambda, ok := prog.Statements[0].(*ast.LetStmt).Value.(*ast.Lambda)
	if !ok || len(lambda.Block.Stmts) != 1 {
		t.Fatalf("got %#v", prog.Statements[0])
	}
}

func TestIfElseExpression(t *testing.T) {
	prog := mustParse(t, `as n<=0 { gee "klaar" } anders { gee tel_af(n-1) }`)
	ifExpr, ok := prog.Statements[0].(*ast.ExprStmt).Expr.(*ast.IfExpr)
	if !ok {
		t.Fatalf("got %#v", prog.Statements[0])
	}
	if ifExpr.Else == nil {
		t.Fatal("expected an anders clause")
	}
}

func TestTypeDecl(t *testing.T) {
	prog := mustParse(t, "tipe Opsie { Niks  Sommige(w) }")
	decl, ok := prog.Statements[0].(*ast.TypeDecl)
	if !ok || decl.Name != "Opsie" || len(decl.Variants) != 2 {
		t.Fatalf("got %#v", prog.Statements[0])
	}
	if decl.Variants[0].Name != "Niks" || len(decl.Variants[0].Fields) != 0 {
		t.Fatalf("got %#v", decl.Variants[0])
	}
	if decl.Variants[1].Name != "Sommige" || len(decl.Variants[1].Fields) != 1 {
		t.Fatalf("got %#v", decl.Variants[1])
	}
}

func TestMatchExpr(t *testing.T) {
	prog := mustParse(t, `druk(pas(Sommige(42)){ geval Sommige(x)=>x*2  geval Niks=>0 })`)
	call := prog.Statements[0].(*ast.ExprStmt).Expr.(*ast.CallExpr)
	match, ok := call.Args[0].(*ast.MatchExpr)
	if !ok || len(match.Arms) != 2 {
		t.Fatalf("got %#v", call.Args[0])
	}
	ctorPat, ok := match.Arms[0].Pattern.(*ast.ConstructorPattern)
	if !ok || ctorPat.Name != "Sommige" || len(ctorPat.Fields) != 1 {
		t.Fatalf("got %#v", match.Arms[0].Pattern)
	}
}

func TestWildcardAndIdentPatterns(t *testing.T) {
	prog := mustParse(t, `pas(x){ geval _=>1 geval y=>y }`)
	match := prog.Statements[0].(*ast.ExprStmt).Expr.(*ast.MatchExpr)
	if _, ok := match.Arms[0].Pattern.(*ast.WildcardPattern); !ok {
		t.Fatalf("got %#v", match.Arms[0].Pattern)
	}
	if ip, ok := match.Arms[1].Pattern.(*ast.IdentPattern); !ok || ip.Name != "y" {
		t.Fatalf("got %#v", match.Arms[1].Pattern)
	}
}

func TestListLiteral(t *testing.T) {
	prog := mustParse(t, "druk(kaart([1,2,3], fn(x) x*x))")
	call := prog.Statements[0].(*ast.ExprStmt).Expr.(*ast.CallExpr)
	inner := call.Args[0].(*ast.CallExpr)
	list, ok := inner.Args[0].(*ast.ListLiteral)
	if !ok || len(list.Elements) != 3 {
		t.Fatalf("got %#v", inner.Args[0])
	}
	lambda, ok := inner.Args[1].(*ast.Lambda)
	if !ok || len(lambda.Params) != 1 {
		t.Fatalf("got %#v", inner.Args[1])
	}
}

func TestParseErrorReportsFirstFailure(t *testing.T) {
	_, err := ParseProgram("laat x = ")
	if err == nil {
		t.Fatal("expected a parse error")
	}
}
