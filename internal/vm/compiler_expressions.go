package vm

import (
	"github.com/juanco-itmu/arkaan-taal/internal/ast"
	"github.com/juanco-itmu/arkaan-taal/internal/errs"
)

var binaryOpcodes = map[string]OpCode{
	"+": OpAdd, "-": OpSub, "*": OpMul, "/": OpDiv, "%": OpMod,
	"==": OpEq, "!=": OpNe, "<": OpLt, "<=": OpLe, ">": OpGt, ">=": OpGe,
}

func (c *Compiler) compileExpr(expr ast.Expr) error {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		c.emitConstant(IntVal(e.Value), e.Line())
		return nil
	case *ast.FloatLiteral:
		c.emitConstant(FloatVal(e.Value), e.Line())
		return nil
	case *ast.StringLiteral:
		c.emitConstant(NewString(e.Value), e.Line())
		return nil
	case *ast.BoolLiteral:
		if e.Value {
			c.emit(OpTrue, e.Line())
		} else {
			c.emit(OpFalse, e.Line())
		}
		return nil
	case *ast.NilLiteral:
		c.emit(OpNil, e.Line())
		return nil
	case *ast.Identifier:
		return c.compileIdentifier(e)
	case *ast.ListLiteral:
		return c.compileListLiteral(e)
	case *ast.UnaryExpr:
		return c.compileUnaryExpr(e)
	case *ast.BinaryExpr:
		return c.compileBinaryExpr(e)
	case *ast.CallExpr:
		return c.compileCallExpr(e)
	case *ast.IndexExpr:
		return c.compileIndexExpr(e)
	case *ast.Lambda:
		return c.compileLambda(e)
	case *ast.BlockExpr:
		return c.compileBlock(e)
	case *ast.IfExpr:
		return c.compileIfExprNode(e)
	case *ast.MatchExpr:
		return c.compileMatchExpr(e)
	case *ast.ConstructExpr:
		return c.compileConstructExpr(e)
	default:
		return &errs.CompileError{Line: expr.Line(), Message: "unknown expression type"}
	}
}

func (c *Compiler) compileIdentifier(e *ast.Identifier) error {
	line := e.Line()
	if idx, found, initOK := c.resolveLocal(e.Value); found {
		if !initOK {
			return &errs.CompileError{Line: line, Message: "cannot reference '" + e.Value + "' in its own initializer"}
		}
		c.emit(OpGetLocal, line)
		c.emitByte(byte(c.locals[idx].Slot), line)
		return nil
	}
	if up := c.resolveUpvalue(e.Value); up != -1 {
		c.emit(OpGetUpvalue, line)
		c.emitByte(byte(up), line)
		return nil
	}
	nameIdx := c.chunk.AddConstant(NewString(e.Value))
	c.emit(OpGetGlobal, line)
	c.emitByte(byte(nameIdx>>8), line)
	c.emitByte(byte(nameIdx), line)
	return nil
}

func (c *Compiler) compileListLiteral(e *ast.ListLiteral) error {
	wasTail := c.inTailPosition
	c.inTailPosition = false
	for _, el := range e.Elements {
		if err := c.compileExpr(el); err != nil {
			return err
		}
	}
	c.inTailPosition = wasTail
	c.emit(OpMakeList, e.Line())
	c.chunk.WriteUint16(len(e.Elements), e.Line())
	return nil
}

func (c *Compiler) compileUnaryExpr(e *ast.UnaryExpr) error {
	wasTail := c.inTailPosition
	c.inTailPosition = false
	if err := c.compileExpr(e.Right); err != nil {
		return err
	}
	c.inTailPosition = wasTail
	switch e.Operator {
	case "-":
		c.emit(OpNeg, e.Line())
	case "!":
		c.emit(OpNot, e.Line())
	default:
		return &errs.CompileError{Line: e.Line(), Message: "unknown unary operator '" + e.Operator + "'"}
	}
	return nil
}

func (c *Compiler) compileBinaryExpr(e *ast.BinaryExpr) error {
	line := e.Line()
	wasTail := c.inTailPosition
	c.inTailPosition = false
	defer func() { c.inTailPosition = wasTail }()

	switch e.Operator {
	case "&&":
		if err := c.compileExpr(e.Left); err != nil {
			return err
		}
		endJump := c.emitJump(OpJumpIfFalse, line)
		c.emit(OpPop, line)
		if err := c.compileExpr(e.Right); err != nil {
			return err
		}
		return c.patchJump(endJump)
	case "||":
		if err := c.compileExpr(e.Left); err != nil {
			return err
		}
		elseJump := c.emitJump(OpJumpIfFalse, line)
		endJump := c.emitJump(OpJump, line)
		if err := c.patchJump(elseJump); err != nil {
			return err
		}
		c.emit(OpPop, line)
		if err := c.compileExpr(e.Right); err != nil {
			return err
		}
		return c.patchJump(endJump)
	}

	if err := c.compileExpr(e.Left); err != nil {
		return err
	}
	if err := c.compileExpr(e.Right); err != nil {
		return err
	}
	op, ok := binaryOpcodes[e.Operator]
	if !ok {
		return &errs.CompileError{Line: line, Message: "unknown operator '" + e.Operator + "'"}
	}
	c.emit(op, line)
	return nil
}

func (c *Compiler) compileCallExpr(e *ast.CallExpr) error {
	line := e.Line()
	wasTail := c.inTailPosition
	isTail := wasTail && c.isFunction
	c.inTailPosition = false

	if err := c.compileExpr(e.Callee); err != nil {
		return err
	}
	for _, a := range e.Args {
		if err := c.compileExpr(a); err != nil {
			return err
		}
	}
	if len(e.Args) > 255 {
		return &errs.CompileError{Line: line, Message: "too many arguments in call"}
	}
	if isTail {
		c.emit(OpTailCall, line)
	} else {
		c.emit(OpCall, line)
	}
	c.emitByte(byte(len(e.Args)), line)
	c.inTailPosition = wasTail
	return nil
}

func (c *Compiler) compileIndexExpr(e *ast.IndexExpr) error {
	wasTail := c.inTailPosition
	c.inTailPosition = false
	if err := c.compileExpr(e.Left); err != nil {
		return err
	}
	if err := c.compileExpr(e.Index); err != nil {
		return err
	}
	c.inTailPosition = wasTail
	c.emit(OpIndex, e.Line())
	return nil
}

func (c *Compiler) compileLambda(e *ast.Lambda) error {
	fn, err := c.compileFunctionBody("", e.Params, e.Block, e.Line())
	if err != nil {
		return err
	}
	c.emitMakeClosure(fn, e.Line())
	return nil
}

// compileFunctionBody compiles a function/lambda body in a fresh nested
// Compiler and returns the resulting CompiledFunction (not yet turned
// into a closure — the caller emits OpMakeClosure).
func (c *Compiler) compileFunctionBody(name string, params []string, block *ast.BlockExpr, line int) (*CompiledFunction, error) {
	nested := &Compiler{enclosing: c, chunk: NewChunk(), globals: c.globals, funcName: name, isFunction: true}
	for _, p := range params {
		nested.declareLocal(p, false)
		nested.markInitialized()
	}
	if err := nested.compileBlock(block); err != nil {
		return nil, err
	}
	nested.emit(OpReturn, line)

	ups := make([]UpvalueDescriptor, len(nested.upvalues))
	for i, u := range nested.upvalues {
		ups[i] = UpvalueDescriptor{Index: u.Index, IsLocal: u.IsLocal}
	}
	return &CompiledFunction{
		Name:       name,
		Arity:      len(params),
		Chunk:      nested.chunk,
		Upvalues:   ups,
		LocalCount: nested.slotCount,
	}, nil
}

func (c *Compiler) emitMakeClosure(fn *CompiledFunction, line int) {
	idx := c.chunk.AddConstant(ObjVal(fn))
	c.emit(OpMakeClosure, line)
	c.emitByte(byte(idx>>8), line)
	c.emitByte(byte(idx), line)
	c.emitByte(byte(len(fn.Upvalues)), line)
	for _, u := range fn.Upvalues {
		if u.IsLocal {
			c.emitByte(1, line)
		} else {
			c.emitByte(0, line)
		}
		c.emitByte(byte(u.Index), line)
	}
}

func (c *Compiler) compileIfExprNode(e *ast.IfExpr) error {
	line := e.Line()
	wasTail := c.inTailPosition

	c.inTailPosition = false
	if err := c.compileExpr(e.Cond); err != nil {
		return err
	}

	thenJump := c.emitJump(OpJumpIfFalse, line)
	c.emit(OpPop, line)
	if err := c.compileIfBranch(e.Then, wasTail); err != nil {
		return err
	}
	elseJump := c.emitJump(OpJump, line)

	if err := c.patchJump(thenJump); err != nil {
		return err
	}
	c.emit(OpPop, line)
	if e.Else != nil {
		if err := c.compileIfBranch(e.Else, wasTail); err != nil {
			return err
		}
	} else {
		c.emit(OpNil, line)
	}
	if err := c.patchJump(elseJump); err != nil {
		return err
	}
	c.inTailPosition = wasTail
	return nil
}

func (c *Compiler) compileConstructExpr(e *ast.ConstructExpr) error {
	line := e.Line()
	wasTail := c.inTailPosition
	c.inTailPosition = false
	for _, f := range e.Fields {
		if err := c.compileExpr(f); err != nil {
			return err
		}
	}
	c.inTailPosition = wasTail
	nameIdx := c.chunk.AddConstant(NewString(e.Name))
	c.emit(OpConstruct, line)
	c.emitByte(byte(nameIdx>>8), line)
	c.emitByte(byte(nameIdx), line)
	c.emitByte(byte(len(e.Fields)), line)
	return nil
}

// ---- pattern matching ----

type patternCheck struct {
	path    []int
	literal ast.Expr // set for a literal-equality check
	variant string   // set for a constructor-tag check
}

type patternBind struct {
	path []int
	name string
}

func collectChecks(p ast.Pattern, path []int) []patternCheck {
	switch pat := p.(type) {
	case *ast.WildcardPattern, *ast.IdentPattern:
		return nil
	case *ast.LiteralPattern:
		return []patternCheck{{path: path, literal: pat.Value}}
	case *ast.ConstructorPattern:
		checks := []patternCheck{{path: path, variant: pat.Name}}
		for i, fp := range pat.Fields {
			sub := append(append([]int{}, path...), i)
			checks = append(checks, collectChecks(fp, sub)...)
		}
		return checks
	default:
		return nil
	}
}

func collectBindings(p ast.Pattern, path []int) []patternBind {
	switch pat := p.(type) {
	case *ast.IdentPattern:
		return []patternBind{{path: path, name: pat.Name}}
	case *ast.ConstructorPattern:
		var binds []patternBind
		for i, fp := range pat.Fields {
			sub := append(append([]int{}, path...), i)
			binds = append(binds, collectBindings(fp, sub)...)
		}
		return binds
	default:
		return nil
	}
}

// pushValueAtPath pushes the value reached from the scrutinee slot by
// following path, a sequence of constructor field indices.
func (c *Compiler) pushValueAtPath(path []int, scrutineeSlot int, line int) {
	c.emit(OpGetLocal, line)
	c.emitByte(byte(scrutineeSlot), line)
	for _, idx := range path {
		c.emit(OpGetField, line)
		c.emitByte(byte(idx), line)
	}
}

func (c *Compiler) compileMatchExpr(e *ast.MatchExpr) error {
	line := e.Line()
	wasTail := c.inTailPosition

	c.inTailPosition = false
	if err := c.compileExpr(e.Scrutinee); err != nil {
		return err
	}

	c.beginScope()
	scrutineeSlot := c.declareLocal("<scrutinee>", false)
	c.markInitialized()

	var endJumps []int
	for _, arm := range e.Arms {
		checks := collectChecks(arm.Pattern, nil)
		var failJumps []int
		for _, chk := range checks {
			c.pushValueAtPath(chk.path, scrutineeSlot, line)
			if chk.variant != "" {
				variantIdx := c.chunk.AddConstant(NewString(chk.variant))
				c.emit(OpCheckTag, line)
				c.emitByte(byte(variantIdx>>8), line)
				c.emitByte(byte(variantIdx), line)
			} else {
				if err := c.compileExpr(chk.literal); err != nil {
					return err
				}
				c.emit(OpEq, line)
			}
			failJumps = append(failJumps, c.emitJump(OpJumpIfFalse, line))
			c.emit(OpPop, line)
		}

		c.beginScope()
		for _, b := range collectBindings(arm.Pattern, nil) {
			c.pushValueAtPath(b.path, scrutineeSlot, line)
			c.declareLocal(b.name, false)
			c.markInitialized()
		}
		c.inTailPosition = wasTail
		if err := c.compileExpr(arm.Body); err != nil {
			return err
		}
		c.inTailPosition = false
		c.endScope(line)

		endJumps = append(endJumps, c.emitJump(OpJump, line))

		for _, fj := range failJumps {
			if err := c.patchJump(fj); err != nil {
				return err
			}
		}
		if len(failJumps) > 0 {
			c.emit(OpPop, line)
		}
	}

	c.emit(OpNoMatch, line)

	for _, ej := range endJumps {
		if err := c.patchJump(ej); err != nil {
			return err
		}
	}
	c.inTailPosition = wasTail
	c.endScope(line)
	return nil
}
