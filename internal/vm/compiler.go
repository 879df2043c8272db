package vm

import (
	"github.com/juanco-itmu/arkaan-taal/internal/ast"
	"github.com/juanco-itmu/arkaan-taal/internal/errs"
)

// Local is one entry in a Compiler's local-variable table.
type Local struct {
	Name        string
	Depth       int
	Slot        int
	Mutable     bool
	Initialized bool // false while compiling its own initializer (letrec guard)
	Captured    bool
}

// upvalueSlot is one entry in a Compiler's upvalue table.
type upvalueSlot struct {
	Index   int
	IsLocal bool
	Mutable bool
}

// GlobalScope tracks, at compile time, which global names exist and
// whether they are mutable. It is threaded across successive top-level
// compiles so a REPL session's globals persist across inputs.
type GlobalScope struct {
	mutable map[string]bool
}

// NewGlobalScope creates an empty global compile-time table, pre-seeded
// with the fixed builtin names (read-only).
func NewGlobalScope() *GlobalScope {
	g := &GlobalScope{mutable: make(map[string]bool)}
	for _, name := range builtinNames() {
		g.mutable[name] = false
	}
	return g
}

func (g *GlobalScope) declare(name string, mutable bool) {
	g.mutable[name] = mutable
}

func (g *GlobalScope) has(name string) (mutable bool, ok bool) {
	m, ok := g.mutable[name]
	return m, ok
}

// Compiler walks an AST and emits bytecode into a Chunk, one Compiler
// instance per function/lambda being compiled (plus one for the
// top-level program), chained through enclosing.
type Compiler struct {
	enclosing *Compiler

	chunk      *Chunk
	globals    *GlobalScope
	funcName   string
	isFunction bool // false only for the implicit top-level compiler

	locals     []Local
	slotCount  int
	scopeDepth int

	upvalues []upvalueSlot

	inTailPosition bool // true while compiling the direct operand of `gee`
}

// Compile compiles a full program into an implicit top-level function
// of zero arity, the way a REPL line or a whole source file is always
// wrapped for execution.
func Compile(prog *ast.Program, globals *GlobalScope) (*CompiledFunction, error) {
	c := &Compiler{chunk: NewChunk(), globals: globals, funcName: "<top-level>"}
	for i, stmt := range prog.Statements {
		isLast := i == len(prog.Statements)-1
		if err := c.compileStmt(stmt); err != nil {
			return nil, err
		}
		if _, ok := stmt.(*ast.ExprStmt); ok {
			if !isLast {
				c.emit(OpPop, stmt.Line())
			}
			continue
		}
		if isLast {
			c.emit(OpNil, stmt.Line())
		}
	}
	if len(prog.Statements) == 0 {
		c.emit(OpNil, 0)
	}
	c.emit(OpHalt, 0)
	return &CompiledFunction{Name: c.funcName, Arity: 0, Chunk: c.chunk, LocalCount: c.slotCount}, nil
}

func (c *Compiler) currentChunk() *Chunk { return c.chunk }

func (c *Compiler) emit(op OpCode, line int) { c.chunk.WriteOp(op, line) }

func (c *Compiler) emitByte(b byte, line int) { c.chunk.Write(b, line) }

func (c *Compiler) emitConstant(v Value, line int) { c.chunk.WriteConstant(v, line) }

func (c *Compiler) emitJump(op OpCode, line int) int {
	c.emit(op, line)
	c.chunk.Write(0xff, line)
	c.chunk.Write(0xff, line)
	return c.chunk.Len() - 2
}

func (c *Compiler) patchJump(offset int) error {
	jump := c.chunk.Len() - offset - 2
	if jump > 0xffff {
		return &errs.CompileError{Message: "jump too far to encode"}
	}
	c.chunk.Code[offset] = byte(jump >> 8)
	c.chunk.Code[offset+1] = byte(jump)
	return nil
}

func (c *Compiler) emitLoop(loopStart int, line int) error {
	c.emit(OpLoop, line)
	offset := c.chunk.Len() - loopStart + 2
	if offset > 0xffff {
		return &errs.CompileError{Message: "loop body too large to encode"}
	}
	c.chunk.Write(byte(offset>>8), line)
	c.chunk.Write(byte(offset), line)
	return nil
}

// ---- scope management ----

func (c *Compiler) beginScope() { c.scopeDepth++ }

// endScope discards every local declared at the scope being closed.
// Every block in Arkaan is an expression, so by the time endScope runs
// there is always exactly one pending value sitting above those locals
// (the block's trailing value) that must survive the cleanup. Captured
// locals are first closed in place via a slot-addressed OpCloseUpvalue
// (which does not touch the stack), then the whole run of locals is
// discarded by sliding the trailing value down over them: store it into
// the first local's slot, then pop the rest.
func (c *Compiler) endScope(line int) {
	c.scopeDepth--
	n := 0
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].Depth > c.scopeDepth {
		last := c.locals[len(c.locals)-1]
		if last.Captured {
			c.emit(OpCloseUpvalue, line)
			c.emitByte(byte(last.Slot), line)
		}
		c.locals = c.locals[:len(c.locals)-1]
		n++
	}
	if n == 0 {
		return
	}
	firstSlot := c.slotCount - n
	c.emit(OpSetLocal, line)
	c.emitByte(byte(firstSlot), line)
	for i := 0; i < n-1; i++ {
		c.emit(OpPop, line)
	}
	c.slotCount -= n
}

func (c *Compiler) declareLocal(name string, mutable bool) int {
	slot := c.slotCount
	c.locals = append(c.locals, Local{Name: name, Depth: c.scopeDepth, Slot: slot, Mutable: mutable})
	c.slotCount++
	return slot
}

func (c *Compiler) markInitialized() {
	c.locals[len(c.locals)-1].Initialized = true
}

// resolveLocal looks up name in this compiler's own locals,
// innermost-first. initOK reports whether the match has finished its
// initializer; it is false while that local's own initializer is being
// compiled (the letrec guard).
func (c *Compiler) resolveLocal(name string) (idx int, found bool, initOK bool) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].Name == name {
			return i, true, c.locals[i].Initialized
		}
	}
	return -1, false, false
}

// resolveUpvalue looks for name in an enclosing scope, adding upvalue
// descriptors along the way.
func (c *Compiler) resolveUpvalue(name string) int {
	if c.enclosing == nil {
		return -1
	}
	if idx, found, _ := c.enclosing.resolveLocal(name); found {
		c.enclosing.locals[idx].Captured = true
		return c.addUpvalue(c.enclosing.locals[idx].Slot, true, c.enclosing.locals[idx].Mutable)
	}
	if up := c.enclosing.resolveUpvalue(name); up != -1 {
		return c.addUpvalue(up, false, c.enclosing.upvalues[up].Mutable)
	}
	return -1
}

func (c *Compiler) addUpvalue(index int, isLocal bool, mutable bool) int {
	for i, u := range c.upvalues {
		if u.Index == index && u.IsLocal == isLocal {
			return i
		}
	}
	c.upvalues = append(c.upvalues, upvalueSlot{Index: index, IsLocal: isLocal, Mutable: mutable})
	return len(c.upvalues) - 1
}

func builtinNames() []string {
	names := make([]string, 0, len(builtinTable))
	for name := range builtinTable {
		names = append(names, name)
	}
	return names
}
