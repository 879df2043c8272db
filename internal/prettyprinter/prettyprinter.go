// Package prettyprinter renders an ast.Program back to Arkaan source
// text. Unlike ast.Node.String() (a debug form that parenthesizes every
// binary/unary expression to make structure unambiguous), this package
// only emits parentheses where precedence would otherwise change the
// parse — which is what makes tokenize→parse→print→tokenize a round
// trip (§8 of the language spec).
package prettyprinter

import (
	"strings"

	"github.com/juanco-itmu/arkaan-taal/internal/ast"
)

// Print renders prog as Arkaan source text.
func Print(prog *ast.Program) string {
	var sb strings.Builder
	for i, s := range prog.Statements {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(printStmt(s))
	}
	return sb.String()
}

func printStmt(s ast.Stmt) string {
	switch n := s.(type) {
	case *ast.LetStmt:
		kw := "laat"
		if n.Mutable {
			kw = "stel"
		}
		return kw + " " + n.Name + " = " + printExpr(n.Value, 0)
	case *ast.AssignStmt:
		return printExpr(n.Target, 0) + " = " + printExpr(n.Value, 0)
	case *ast.FuncDecl:
		return "funksie " + n.Name + "(" + strings.Join(n.Params, ", ") + ") " + printBlock(n.Block)
	case *ast.TypeDecl:
		return n.String()
	case *ast.WhileStmt:
		return "terwyl " + printExpr(n.Cond, 0) + " " + printBlock(n.Block)
	case *ast.ReturnStmt:
		return "gee " + printExpr(n.Value, 0)
	case *ast.ExprStmt:
		return printExpr(n.Expr, 0)
	default:
		return s.String()
	}
}

func printBlock(b *ast.BlockExpr) string {
	var sb strings.Builder
	sb.WriteString("{ ")
	for i, s := range b.Stmts {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(printStmt(s))
	}
	sb.WriteString(" }")
	return sb.String()
}

// binaryPrecedence mirrors parser.precedences without importing the
// parser package, so prettyprinter stays a leaf dependency.
var binaryPrecedence = map[string]int{
	"||": 1, "&&": 2,
	"==": 3, "!=": 3,
	"<": 4, "<=": 4, ">": 4, ">=": 4,
	"+": 5, "-": 5,
	"*": 6, "/": 6, "%": 6,
}

func printExpr(e ast.Expr, parentPrec int) string {
	switch n := e.(type) {
	case *ast.BinaryExpr:
		prec := binaryPrecedence[n.Operator]
		s := printExpr(n.Left, prec) + " " + n.Operator + " " + printExpr(n.Right, prec+1)
		if prec < parentPrec {
			return "(" + s + ")"
		}
		return s
	case *ast.UnaryExpr:
		s := n.Operator + printExpr(n.Right, 7)
		if 7 < parentPrec {
			return "(" + s + ")"
		}
		return s
	case *ast.CallExpr:
		parts := make([]string, len(n.Args))
		for i, a := range n.Args {
			parts[i] = printExpr(a, 0)
		}
		return printExpr(n.Callee, 8) + "(" + strings.Join(parts, ", ") + ")"
	case *ast.IndexExpr:
		return printExpr(n.Left, 8) + "[" + printExpr(n.Index, 0) + "]"
	case *ast.ListLiteral:
		parts := make([]string, len(n.Elements))
		for i, el := range n.Elements {
			parts[i] = printExpr(el, 0)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *ast.Lambda:
		prefix := "fn(" + strings.Join(n.Params, ", ") + ") "
		if len(n.Block.Stmts) == 1 {
			if exprStmt, ok := n.Block.Stmts[0].(*ast.ExprStmt); ok {
				return prefix + printExpr(exprStmt.Expr, 0)
			}
		}
		return prefix + printBlock(n.Block)
	case *ast.IfExpr:
		s := "as " + printExpr(n.Cond, 0) + " " + printBlock(n.Then)
		if n.Else != nil {
			s += " anders " + printBlock(n.Else)
		}
		return s
	case *ast.MatchExpr:
		var sb strings.Builder
		sb.WriteString("pas(" + printExpr(n.Scrutinee, 0) + ") { ")
		for _, arm := range n.Arms {
			sb.WriteString("geval " + arm.Pattern.String() + " => " + printExpr(arm.Body, 0) + " ")
		}
		sb.WriteString("}")
		return sb.String()
	case *ast.ConstructExpr, *ast.Identifier, *ast.IntegerLiteral, *ast.FloatLiteral,
		*ast.StringLiteral, *ast.BoolLiteral, *ast.NilLiteral:
		return n.String()
	default:
		return e.String()
	}
}
