// Package parser implements a recursive-descent, Pratt-precedence
// parser that turns a token stream into an ast.Program.
package parser

import (
	"fmt"
	"strconv"

	"github.com/juanco-itmu/arkaan-taal/internal/ast"
	"github.com/juanco-itmu/arkaan-taal/internal/errs"
	"github.com/juanco-itmu/arkaan-taal/internal/lexer"
	"github.com/juanco-itmu/arkaan-taal/internal/token"
)

// precedence levels, lowest to highest.
const (
	_ int = iota
	LOWEST
	OR_PREC
	AND_PREC
	EQUALITY
	COMPARISON
	SUM
	PRODUCT
	UNARY
	CALL
)

var precedences = map[token.Kind]int{
	token.OR:     OR_PREC,
	token.AND:    AND_PREC,
	token.EQ:     EQUALITY,
	token.NOT_EQ: EQUALITY,
	token.LT:     COMPARISON,
	token.LTE:    COMPARISON,
	token.GT:     COMPARISON,
	token.GTE:    COMPARISON,
	token.PLUS:   SUM,
	token.MINUS:  SUM,
	token.STAR:   PRODUCT,
	token.SLASH:  PRODUCT,
	token.PERCENT: PRODUCT,
	token.LPAREN: CALL,
	token.LBRACKET: CALL,
}

// Parser consumes a token stream and builds an ast.Program. It reports
// the first error encountered and stops.
type Parser struct {
	lex *lexer.Lexer

	curTok  token.Token
	peekTok token.Token
}

// New creates a Parser over source text.
func New(source string) (*Parser, error) {
	p := &Parser{lex: lexer.New(source)}
	if err := p.next(); err != nil {
		return nil, err
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) next() error {
	p.curTok = p.peekTok
	tok, err := p.lex.NextToken()
	if err != nil {
		return err
	}
	p.peekTok = tok
	return nil
}

func (p *Parser) curIs(k token.Kind) bool  { return p.curTok.Kind == k }
func (p *Parser) peekIs(k token.Kind) bool { return p.peekTok.Kind == k }

func (p *Parser) expect(k token.Kind) error {
	if !p.curIs(k) {
		return &errs.ParseError{Line: p.curTok.Line, Expected: string(k), Found: string(p.curTok.Kind)}
	}
	return p.next()
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekTok.Kind]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curTok.Kind]; ok {
		return pr
	}
	return LOWEST
}

// ParseProgram parses the entire token stream into a Program, stopping
// at the first error.
func ParseProgram(source string) (*ast.Program, error) {
	p, err := New(source)
	if err != nil {
		return nil, err
	}
	prog := &ast.Program{}
	for !p.curIs(token.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, stmt)
	}
	return prog, nil
}

func (p *Parser) parseStatement() (ast.Stmt, error) {
	switch p.curTok.Kind {
	case token.LAAT:
		return p.parseLetStmt(false)
	case token.STEL:
		return p.parseLetStmt(true)
	case token.FUNKSIE:
		return p.parseFuncDecl()
	case token.TIPE:
		return p.parseTypeDecl()
	case token.TERWYL:
		return p.parseWhileStmt()
	case token.GEE:
		return p.parseReturnStmt()
	default:
		return p.parseExprOrAssignStmt()
	}
}

func (p *Parser) parseLetStmt(mutable bool) (ast.Stmt, error) {
	line := p.curTok.Line
	if err := p.next(); err != nil {
		return nil, err
	}
	if !p.curIs(token.IDENT) {
		return nil, &errs.ParseError{Line: p.curTok.Line, Expected: "identifier", Found: string(p.curTok.Kind)}
	}
	name := p.curTok.Lexeme
	if err := p.next(); err != nil {
		return nil, err
	}
	if err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	value, err := p.parseExpr(LOWEST)
	if err != nil {
		return nil, err
	}
	return &ast.LetStmt{Ln: line, Mutable: mutable, Name: name, Value: value}, nil
}

func (p *Parser) parseWhileStmt() (ast.Stmt, error) {
	line := p.curTok.Line
	if err := p.next(); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr(LOWEST)
	if err != nil {
		return nil, err
	}
	block, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Ln: line, Cond: cond, Block: block}, nil
}

func (p *Parser) parseReturnStmt() (ast.Stmt, error) {
	line := p.curTok.Line
	if err := p.next(); err != nil {
		return nil, err
	}
	value, err := p.parseExpr(LOWEST)
	if err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{Ln: line, Value: value}, nil
}

func (p *Parser) parseFuncDecl() (ast.Stmt, error) {
	line := p.curTok.Line
	if err := p.next(); err != nil {
		return nil, err
	}
	if !p.curIs(token.IDENT) {
		return nil, &errs.ParseError{Line: p.curTok.Line, Expected: "function name", Found: string(p.curTok.Kind)}
	}
	name := p.curTok.Lexeme
	if err := p.next(); err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	block, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FuncDecl{Ln: line, Name: name, Params: params, Block: block}, nil
}

func (p *Parser) parseParamList() ([]string, error) {
	if err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var params []string
	for !p.curIs(token.RPAREN) {
		if !p.curIs(token.IDENT) {
			return nil, &errs.ParseError{Line: p.curTok.Line, Expected: "parameter name", Found: string(p.curTok.Kind)}
		}
		params = append(params, p.curTok.Lexeme)
		if err := p.next(); err != nil {
			return nil, err
		}
		if p.curIs(token.COMMA) {
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.next(); err != nil { // consume ')'
		return nil, err
	}
	return params, nil
}

// parseBlock parses `{ stmt* }`. A trailing expression-statement with
// no further statements after it is the block's value.
func (p *Parser) parseBlock() (*ast.BlockExpr, error) {
	line := p.curTok.Line
	if err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	block := &ast.BlockExpr{Ln: line}
	for !p.curIs(token.RBRACE) {
		if p.curIs(token.EOF) {
			return nil, &errs.ParseError{Line: p.curTok.Line, Expected: "}", Found: string(token.EOF)}
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	if err := p.next(); err != nil { // consume '}'
		return nil, err
	}
	return block, nil
}

func (p *Parser) parseTypeDecl() (ast.Stmt, error) {
	line := p.curTok.Line
	if err := p.next(); err != nil {
		return nil, err
	}
	if !p.curIs(token.IDENT) {
		return nil, &errs.ParseError{Line: p.curTok.Line, Expected: "type name", Found: string(p.curTok.Kind)}
	}
	name := p.curTok.Lexeme
	if err := p.next(); err != nil {
		return nil, err
	}
	if err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	decl := &ast.TypeDecl{Ln: line, Name: name}
	for !p.curIs(token.RBRACE) {
		if !p.curIs(token.IDENT) {
			return nil, &errs.ParseError{Line: p.curTok.Line, Expected: "variant name", Found: string(p.curTok.Kind)}
		}
		variant := ast.VariantDecl{Name: p.curTok.Lexeme}
		if err := p.next(); err != nil {
			return nil, err
		}
		if p.curIs(token.LPAREN) {
			fields, err := p.parseParamList()
			if err != nil {
				return nil, err
			}
			variant.Fields = fields
		}
		decl.Variants = append(decl.Variants, variant)
	}
	if err := p.next(); err != nil { // consume '}'
		return nil, err
	}
	return decl, nil
}

// parseExprOrAssignStmt handles `{ ... }` / `as ... { }` used as bare
// statements, plain expression statements, and assignment statements
// (`target = value`).
func (p *Parser) parseExprOrAssignStmt() (ast.Stmt, error) {
	line := p.curTok.Line
	if p.curIs(token.LBRACE) {
		block, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return blockAsExprStmt(line, block), nil
	}
	expr, err := p.parseExpr(LOWEST)
	if err != nil {
		return nil, err
	}
	if p.curIs(token.ASSIGN) {
		switch expr.(type) {
		case *ast.Identifier, *ast.IndexExpr:
		default:
			return nil, &errs.ParseError{Line: line, Expected: "assignable target", Found: expr.String()}
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		value, err := p.parseExpr(LOWEST)
		if err != nil {
			return nil, err
		}
		return &ast.AssignStmt{Ln: line, Target: expr, Value: value}, nil
	}
	return &ast.ExprStmt{Ln: line, Expr: expr}, nil
}

// blockAsExprStmt wraps a lone block appearing in statement position so
// it still composes as a Stmt.
func blockAsExprStmt(line int, block *ast.BlockExpr) ast.Stmt {
	return &ast.ExprStmt{Ln: line, Expr: block}
}

// ---- Pratt expression parsing ----

func (p *Parser) parseExpr(precedence int) (ast.Expr, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for !p.curIs(token.EOF) && precedence < p.curPrecedenceForInfix() {
		switch p.curTok.Kind {
		case token.LPAREN:
			left, err = p.parseCall(left)
		case token.LBRACKET:
			left, err = p.parseIndex(left)
		default:
			left, err = p.parseBinary(left)
		}
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

// curPrecedenceForInfix is curPrecedence, named for readability at call
// sites that drive the infix loop.
func (p *Parser) curPrecedenceForInfix() int { return p.curPrecedence() }

func (p *Parser) parsePrefix() (ast.Expr, error) {
	tok := p.curTok
	switch tok.Kind {
	case token.INT:
		v, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, &errs.ParseError{Line: tok.Line, Expected: "integer", Found: tok.Lexeme}
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.IntegerLiteral{Ln: tok.Line, Value: v}, nil
	case token.FLOAT:
		v, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, &errs.ParseError{Line: tok.Line, Expected: "float", Found: tok.Lexeme}
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.FloatLiteral{Ln: tok.Line, Value: v}, nil
	case token.STRING:
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.StringLiteral{Ln: tok.Line, Value: tok.Literal.(string)}, nil
	case token.TRUE:
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.BoolLiteral{Ln: tok.Line, Value: true}, nil
	case token.FALSE:
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.BoolLiteral{Ln: tok.Line, Value: false}, nil
	case token.NIL:
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.NilLiteral{Ln: tok.Line}, nil
	case token.IDENT:
		return p.parseIdentOrConstruct()
	case token.LPAREN:
		if err := p.next(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr(LOWEST)
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return inner, nil
	case token.LBRACKET:
		return p.parseListLiteral()
	case token.BANG, token.MINUS:
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseExpr(UNARY)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Ln: tok.Line, Operator: string(tok.Kind), Right: right}, nil
	case token.FN:
		return p.parseLambda()
	case token.AS:
		return p.parseIfExpr()
	case token.PAS:
		return p.parseMatchExpr()
	case token.DRUK:
		// `druk` is lexed as a keyword but is called like any builtin.
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.Identifier{Ln: tok.Line, Value: tok.Lexeme}, nil
	default:
		return nil, &errs.ParseError{Line: tok.Line, Expected: "expression", Found: string(tok.Kind)}
	}
}

// parseIdentOrConstruct distinguishes a bare identifier from a zero-arg
// or applied constructor: an uppercase-leading name is a Constructor
// application; an applied uppercase name with arguments parses as a
// ConstructExpr rather than a CallExpr.
func (p *Parser) parseIdentOrConstruct() (ast.Expr, error) {
	tok := p.curTok
	if err := p.next(); err != nil {
		return nil, err
	}
	if isUpper(tok.Lexeme) && p.curIs(token.LPAREN) {
		if err := p.next(); err != nil {
			return nil, err
		}
		var fields []ast.Expr
		for !p.curIs(token.RPAREN) {
			f, err := p.parseExpr(LOWEST)
			if err != nil {
				return nil, err
			}
			fields = append(fields, f)
			if p.curIs(token.COMMA) {
				if err := p.next(); err != nil {
					return nil, err
				}
			}
		}
		if err := p.next(); err != nil { // consume ')'
			return nil, err
		}
		return &ast.ConstructExpr{Ln: tok.Line, Name: tok.Lexeme, Fields: fields}, nil
	}
	if isUpper(tok.Lexeme) {
		return &ast.ConstructExpr{Ln: tok.Line, Name: tok.Lexeme}, nil
	}
	return &ast.Identifier{Ln: tok.Line, Value: tok.Lexeme}, nil
}

func isUpper(s string) bool {
	if s == "" {
		return false
	}
	r := rune(s[0])
	return r >= 'A' && r <= 'Z'
}

func (p *Parser) parseListLiteral() (ast.Expr, error) {
	line := p.curTok.Line
	if err := p.next(); err != nil {
		return nil, err
	}
	lit := &ast.ListLiteral{Ln: line}
	for !p.curIs(token.RBRACKET) {
		el, err := p.parseExpr(LOWEST)
		if err != nil {
			return nil, err
		}
		lit.Elements = append(lit.Elements, el)
		if p.curIs(token.COMMA) {
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.next(); err != nil { // consume ']'
		return nil, err
	}
	return lit, nil
}

func (p *Parser) parseCall(callee ast.Expr) (ast.Expr, error) {
	line := p.curTok.Line
	if err := p.next(); err != nil {
		return nil, err
	}
	var args []ast.Expr
	for !p.curIs(token.RPAREN) {
		a, err := p.parseExpr(LOWEST)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.curIs(token.COMMA) {
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.next(); err != nil { // consume ')'
		return nil, err
	}
	return &ast.CallExpr{Ln: line, Callee: callee, Args: args}, nil
}

func (p *Parser) parseIndex(left ast.Expr) (ast.Expr, error) {
	line := p.curTok.Line
	if err := p.next(); err != nil {
		return nil, err
	}
	idx, err := p.parseExpr(LOWEST)
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	return &ast.IndexExpr{Ln: line, Left: left, Index: idx}, nil
}

func (p *Parser) parseBinary(left ast.Expr) (ast.Expr, error) {
	tok := p.curTok
	precedence := p.curPrecedence()
	if err := p.next(); err != nil {
		return nil, err
	}
	right, err := p.parseExpr(precedence)
	if err != nil {
		return nil, err
	}
	return &ast.BinaryExpr{Ln: tok.Line, Operator: string(tok.Kind), Left: left, Right: right}, nil
}

// parseLambda parses `fn(params) expr` or `fn(params) { stmts }`.
func (p *Parser) parseLambda() (ast.Expr, error) {
	line := p.curTok.Line
	if err := p.next(); err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	if p.curIs(token.LBRACE) {
		block, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ast.Lambda{Ln: line, Params: params, Block: block}, nil
	}
	body, err := p.parseExpr(LOWEST)
	if err != nil {
		return nil, err
	}
	block := &ast.BlockExpr{Ln: body.Line(), Stmts: []ast.Stmt{&ast.ExprStmt{Ln: body.Line(), Expr: body}}}
	return &ast.Lambda{Ln: line, Params: params, Block: block}, nil
}

// parseIfExpr parses `as cond { ... } anders { ... }`. A dangling
// `anders` binds to the nearest enclosing `as`: since this call only
// ever consumes the `anders` immediately following its own `then`
// block, there is no ambiguity to resolve at a higher level — the
// nearest-enclosing behavior falls out of the recursive-descent
// structure itself.
func (p *Parser) parseIfExpr() (ast.Expr, error) {
	line := p.curTok.Line
	if err := p.next(); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr(LOWEST)
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	ifExpr := &ast.IfExpr{Ln: line, Cond: cond, Then: then}
	if p.curIs(token.ANDERS) {
		if err := p.next(); err != nil {
			return nil, err
		}
		if p.curIs(token.AS) {
			nested, err := p.parseIfExpr()
			if err != nil {
				return nil, err
			}
			ifExpr.Else = &ast.BlockExpr{Ln: nested.Line(), Stmts: []ast.Stmt{&ast.ExprStmt{Ln: nested.Line(), Expr: nested}}}
		} else {
			elseBlock, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			ifExpr.Else = elseBlock
		}
	}
	return ifExpr, nil
}

func (p *Parser) parseMatchExpr() (ast.Expr, error) {
	line := p.curTok.Line
	if err := p.next(); err != nil {
		return nil, err
	}
	if err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	scrutinee, err := p.parseExpr(LOWEST)
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	match := &ast.MatchExpr{Ln: line, Scrutinee: scrutinee}
	for !p.curIs(token.RBRACE) {
		if err := p.expect(token.GEVAL); err != nil {
			return nil, err
		}
		pat, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.ARROW_EQ); err != nil {
			return nil, err
		}
		body, err := p.parseExpr(LOWEST)
		if err != nil {
			return nil, err
		}
		match.Arms = append(match.Arms, ast.MatchArm{Pattern: pat, Body: body})
	}
	if err := p.next(); err != nil { // consume '}'
		return nil, err
	}
	if len(match.Arms) == 0 {
		return nil, &errs.ParseError{Line: line, Expected: "at least one geval arm", Found: "}"}
	}
	return match, nil
}

func (p *Parser) parsePattern() (ast.Pattern, error) {
	tok := p.curTok
	switch tok.Kind {
	case token.UNDERSCORE:
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.WildcardPattern{Ln: tok.Line}, nil
	case token.INT:
		v, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, &errs.ParseError{Line: tok.Line, Expected: "integer", Found: tok.Lexeme}
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.LiteralPattern{Ln: tok.Line, Value: &ast.IntegerLiteral{Ln: tok.Line, Value: v}}, nil
	case token.FLOAT:
		v, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, &errs.ParseError{Line: tok.Line, Expected: "float", Found: tok.Lexeme}
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.LiteralPattern{Ln: tok.Line, Value: &ast.FloatLiteral{Ln: tok.Line, Value: v}}, nil
	case token.STRING:
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.LiteralPattern{Ln: tok.Line, Value: &ast.StringLiteral{Ln: tok.Line, Value: tok.Literal.(string)}}, nil
	case token.TRUE, token.FALSE:
		val := tok.Kind == token.TRUE
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.LiteralPattern{Ln: tok.Line, Value: &ast.BoolLiteral{Ln: tok.Line, Value: val}}, nil
	case token.NIL:
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.LiteralPattern{Ln: tok.Line, Value: &ast.NilLiteral{Ln: tok.Line}}, nil
	case token.IDENT:
		if err := p.next(); err != nil {
			return nil, err
		}
		if isUpper(tok.Lexeme) {
			cp := &ast.ConstructorPattern{Ln: tok.Line, Name: tok.Lexeme}
			if p.curIs(token.LPAREN) {
				if err := p.next(); err != nil {
					return nil, err
				}
				for !p.curIs(token.RPAREN) {
					field, err := p.parsePattern()
					if err != nil {
						return nil, err
					}
					cp.Fields = append(cp.Fields, field)
					if p.curIs(token.COMMA) {
						if err := p.next(); err != nil {
							return nil, err
						}
					}
				}
				if err := p.next(); err != nil { // consume ')'
					return nil, err
				}
			}
			return cp, nil
		}
		return &ast.IdentPattern{Ln: tok.Line, Name: tok.Lexeme}, nil
	default:
		return nil, &errs.ParseError{Line: tok.Line, Expected: "pattern", Found: fmt.Sprintf("%q", tok.Lexeme)}
	}
}
