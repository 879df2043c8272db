package vm

import (
	"github.com/juanco-itmu/arkaan-taal/internal/ast"
	"github.com/juanco-itmu/arkaan-taal/internal/errs"
)

func (c *Compiler) compileStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		return c.compileLetStmt(s)
	case *ast.AssignStmt:
		return c.compileAssignStmt(s)
	case *ast.FuncDecl:
		return c.compileFuncDecl(s)
	case *ast.TypeDecl:
		return c.compileTypeDecl(s)
	case *ast.WhileStmt:
		return c.compileWhileStmt(s)
	case *ast.ReturnStmt:
		return c.compileReturnStmt(s)
	case *ast.ExprStmt:
		wasTail := c.inTailPosition
		if err := c.compileExpr(s.Expr); err != nil {
			return err
		}
		c.inTailPosition = wasTail
		return nil
	default:
		return &errs.CompileError{Message: "unknown statement type"}
	}
}

// compileLetStmt handles both `laat` (immutable) and `stel` (mutable)
// bindings. At block scope it always declares a fresh local, shadowing
// any outer binding of the same name. At top (global) scope, `stel` on
// an existing mutable global mutates it in place; anything else
// declares or redeclares it.
func (c *Compiler) compileLetStmt(s *ast.LetStmt) error {
	line := s.Line()
	if c.scopeDepth > 0 {
		c.declareLocal(s.Name, s.Mutable)
		wasTail := c.inTailPosition
		c.inTailPosition = false
		if err := c.compileExpr(s.Value); err != nil {
			return err
		}
		c.inTailPosition = wasTail
		c.markInitialized()
		return nil
	}

	wasTail := c.inTailPosition
	c.inTailPosition = false
	if err := c.compileExpr(s.Value); err != nil {
		return err
	}
	c.inTailPosition = wasTail

	nameIdx := c.chunk.AddConstant(NewString(s.Name))
	c.globals.declare(s.Name, s.Mutable)
	c.emit(OpDefGlobal, line)
	c.emitByte(byte(nameIdx>>8), line)
	c.emitByte(byte(nameIdx), line)
	return nil
}

func (c *Compiler) compileAssignStmt(s *ast.AssignStmt) error {
	line := s.Line()
	ident, ok := s.Target.(*ast.Identifier)
	if !ok {
		return c.compileIndexAssign(s)
	}

	wasTail := c.inTailPosition
	c.inTailPosition = false
	if err := c.compileExpr(s.Value); err != nil {
		return err
	}
	c.inTailPosition = wasTail

	if idx, found, _ := c.resolveLocal(ident.Value); found {
		if !c.locals[idx].Mutable {
			return &errs.CompileError{Line: line, Message: "cannot reassign immutable binding '" + ident.Value + "' (declared with laat)"}
		}
		c.emit(OpSetLocal, line)
		c.emitByte(byte(c.locals[idx].Slot), line)
		return nil
	}
	if up := c.resolveUpvalue(ident.Value); up != -1 {
		if !c.upvalues[up].Mutable {
			return &errs.CompileError{Line: line, Message: "cannot reassign immutable binding '" + ident.Value + "' (declared with laat)"}
		}
		c.emit(OpSetUpvalue, line)
		c.emitByte(byte(up), line)
		return nil
	}
	if mutable, ok := c.globals.has(ident.Value); ok {
		if !mutable {
			return &errs.CompileError{Line: line, Message: "cannot reassign immutable binding '" + ident.Value + "' (declared with laat)"}
		}
		nameIdx := c.chunk.AddConstant(NewString(ident.Value))
		c.emit(OpSetGlobal, line)
		c.emitByte(byte(nameIdx>>8), line)
		c.emitByte(byte(nameIdx), line)
		return nil
	}
	return &errs.CompileError{Line: line, Message: "assignment to unknown name '" + ident.Value + "'"}
}

func (c *Compiler) compileIndexAssign(s *ast.AssignStmt) error {
	idxExpr, ok := s.Target.(*ast.IndexExpr)
	if !ok {
		return &errs.CompileError{Line: s.Line(), Message: "invalid assignment target"}
	}
	// Lists are immutable in Arkaan; index-assignment has no backing
	// opcode. Surface this at compile time rather than silently no-oping.
	_ = idxExpr
	return &errs.CompileError{Line: s.Line(), Message: "lists are immutable; index assignment is not supported"}
}

func (c *Compiler) compileFuncDecl(s *ast.FuncDecl) error {
	line := s.Line()

	if c.scopeDepth > 0 {
		c.declareLocal(s.Name, false)
		c.markInitialized()
	} else {
		c.globals.declare(s.Name, false)
	}

	fn, err := c.compileFunctionBody(s.Name, s.Params, s.Block, line)
	if err != nil {
		return err
	}
	// The local slot for s.Name was already reserved above (depth > 0
	// case), so this push lands exactly there — the same
	// reserve-then-push trick compileLetStmt uses, which is what lets a
	// recursive funksie's body resolve its own name via an upvalue into
	// a slot that isn't populated yet at compile time but will be by
	// the time the closure is ever invoked.
	c.emitMakeClosure(fn, line)

	if c.scopeDepth > 0 {
		return nil
	}

	nameIdx := c.chunk.AddConstant(NewString(s.Name))
	c.emit(OpDefGlobal, line)
	c.emitByte(byte(nameIdx>>8), line)
	c.emitByte(byte(nameIdx), line)
	return nil
}

func (c *Compiler) compileTypeDecl(s *ast.TypeDecl) error {
	line := s.Line()
	for _, v := range s.Variants {
		typeIdx := c.chunk.AddConstant(NewString(s.Name))
		variantIdx := c.chunk.AddConstant(NewString(v.Name))
		fieldsIdx := c.chunk.AddConstant(fieldNamesValue(v.Fields))

		c.emit(OpMakeConstructor, line)
		c.emitByte(byte(typeIdx>>8), line)
		c.emitByte(byte(typeIdx), line)
		c.emitByte(byte(variantIdx>>8), line)
		c.emitByte(byte(variantIdx), line)
		c.emitByte(byte(fieldsIdx>>8), line)
		c.emitByte(byte(fieldsIdx), line)
		c.emitByte(byte(len(v.Fields)), line)

		nameIdx := c.chunk.AddConstant(NewString(v.Name))
		c.emit(OpDefGlobal, line)
		c.emitByte(byte(nameIdx>>8), line)
		c.emitByte(byte(nameIdx), line)
		c.globals.declare(v.Name, false)
	}
	return nil
}

func fieldNamesValue(fields []string) Value {
	elems := make([]Value, len(fields))
	for i, f := range fields {
		elems[i] = NewString(f)
	}
	return NewList(elems)
}

func (c *Compiler) compileWhileStmt(s *ast.WhileStmt) error {
	line := s.Line()
	loopStart := c.chunk.Len()

	wasTail := c.inTailPosition
	c.inTailPosition = false
	if err := c.compileExpr(s.Cond); err != nil {
		return err
	}
	// OpJumpIfFalse only peeks; both paths below must discard the
	// condition value themselves.
	exitJump := c.emitJump(OpJumpIfFalse, line)
	c.emit(OpPop, line)

	if err := c.compileBlockDiscardingValue(s.Block); err != nil {
		return err
	}

	if err := c.emitLoop(loopStart, line); err != nil {
		return err
	}
	if err := c.patchJump(exitJump); err != nil {
		return err
	}
	c.emit(OpPop, line)
	// terwyl itself leaves nothing on the stack (net 0); compileBlock
	// supplies an explicit niks when a loop ends a value-producing block.
	c.inTailPosition = wasTail
	return nil
}

// compileBlockDiscardingValue compiles a block used as a statement (the
// body of `terwyl`): it is compiled like a value-producing block but its
// resulting value is popped, since `terwyl` itself yields niks.
func (c *Compiler) compileBlockDiscardingValue(b *ast.BlockExpr) error {
	wasTail := c.inTailPosition
	c.inTailPosition = false
	if err := c.compileBlock(b); err != nil {
		return err
	}
	c.emit(OpPop, b.Line())
	c.inTailPosition = wasTail
	return nil
}

func (c *Compiler) compileIfBranch(b *ast.BlockExpr, wasTail bool) error {
	c.inTailPosition = wasTail
	return c.compileBlock(b)
}

func (c *Compiler) compileReturnStmt(s *ast.ReturnStmt) error {
	line := s.Line()
	if !c.isFunction {
		return &errs.CompileError{Line: line, Message: "gee used outside of a function body"}
	}

	wasTail := c.inTailPosition
	c.inTailPosition = true
	if err := c.compileExpr(s.Value); err != nil {
		return err
	}
	c.inTailPosition = wasTail

	c.emit(OpReturn, line)
	return nil
}

// compileBlock compiles a BlockExpr's statements, leaving exactly one
// value on the stack: the last statement's expression value if it is an
// ExprStmt, or niks otherwise. Tail position propagates only into the
// final ExprStmt, matching the propagation scheme used for `gee`.
func (c *Compiler) compileBlock(b *ast.BlockExpr) error {
	c.beginScope()
	outerTail := c.inTailPosition
	for i, stmt := range b.Stmts {
		isLast := i == len(b.Stmts)-1
		if !isLast {
			c.inTailPosition = false
			if err := c.compileStmt(stmt); err != nil {
				return err
			}
			if _, ok := stmt.(*ast.ExprStmt); ok {
				c.emit(OpPop, stmt.Line())
			}
			continue
		}
		if exprStmt, ok := stmt.(*ast.ExprStmt); ok {
			c.inTailPosition = outerTail
			if err := c.compileExpr(exprStmt.Expr); err != nil {
				return err
			}
		} else {
			c.inTailPosition = false
			if err := c.compileStmt(stmt); err != nil {
				return err
			}
			c.emit(OpNil, stmt.Line())
		}
	}
	if len(b.Stmts) == 0 {
		c.emit(OpNil, b.Line())
	}
	c.inTailPosition = outerTail
	// endScope runs after the trailing value (always exactly one) is
	// already on the stack, and slides it down past this block's own
	// locals — see the comment on endScope.
	c.endScope(b.Line())
	return nil
}
