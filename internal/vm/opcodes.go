package vm

// OpCode is a single VM instruction.
type OpCode byte

const (
	OpConst  OpCode = iota // 2-byte const index; +1
	OpNil                  // +1
	OpTrue                 // +1
	OpFalse                // +1
	OpPop                  // -1
	OpDup                  // +1, duplicate top of stack (not emitted by the compiler; pattern tests re-read the scrutinee with OpGetLocal)

	OpAdd // -1
	OpSub
	OpMul
	OpDiv
	OpMod

	OpEq // -1
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	// && and || are compiled to jumps for short-circuit evaluation (see
	// compiler_expressions.go), so there is no OpAnd/OpOr.
	OpNot // 0
	OpNeg // 0

	OpGetLocal   // 1-byte slot; +1
	OpSetLocal   // 1-byte slot; -1
	OpGetUpvalue // 1-byte index; +1
	OpSetUpvalue // 1-byte index; -1
	OpGetGlobal  // 2-byte name-const; +1
	OpSetGlobal  // 2-byte name-const; -1
	OpDefGlobal  // 2-byte name-const; -1

	OpJump        // 2-byte offset; 0
	OpJumpIfFalse // 2-byte offset; 0 (peeks, does not pop — caller pops explicitly on both paths)
	OpLoop        // 2-byte offset; 0

	OpCall     // 1-byte argc; -argc
	OpTailCall // 1-byte argc; -argc
	OpReturn   // frame pop

	OpMakeList // 2-byte count; -count+1
	OpIndex    // -1

	// Closures: func-const(2B) + upvalueCount(1B) + per-upvalue(isLocal:1B, index:1B)
	OpMakeClosure
	// OpCloseUpvalue takes a 1-byte slot operand (frame-relative). If an
	// open upvalue exists for that slot, it is closed (its value copied
	// out of the stack). It does not itself touch the stack; scope exit
	// combines it with an explicit slide (see compileBlock) so a block's
	// trailing value survives the locals beneath it being discarded.
	OpCloseUpvalue // 1-byte slot; 0

	// ADTs and pattern matching.
	// OpMakeConstructor operands: type-name-const(2B), variant-name-const(2B),
	// field-names-const(2B, a List of Strings), arity(1B); +1
	OpMakeConstructor
	OpConstruct // variant-name-const(2B), argc(1B); -argc+1
	OpCheckTag  // variant-name-const(2B); pops TOS constructor instance, pushes bool
	OpGetField  // 1-byte field index; pops TOS constructor instance, pushes field; 0
	OpNoMatch   // raises MatchError for the current scrutinee

	OpPrint // -1
	OpHalt
)

var opcodeNames = map[OpCode]string{
	OpConst: "CONST", OpNil: "NIL", OpTrue: "TRUE", OpFalse: "FALSE",
	OpPop: "POP", OpDup: "DUP",
	OpAdd: "ADD", OpSub: "SUB", OpMul: "MUL", OpDiv: "DIV", OpMod: "MOD",
	OpEq: "EQ", OpNe: "NE", OpLt: "LT", OpLe: "LE", OpGt: "GT", OpGe: "GE",
	OpNot: "NOT", OpNeg: "NEG",
	OpGetLocal: "GET_LOCAL", OpSetLocal: "SET_LOCAL",
	OpGetUpvalue: "GET_UPVALUE", OpSetUpvalue: "SET_UPVALUE",
	OpGetGlobal: "GET_GLOBAL", OpSetGlobal: "SET_GLOBAL", OpDefGlobal: "DEF_GLOBAL",
	OpJump: "JUMP", OpJumpIfFalse: "JUMP_IF_FALSE", OpLoop: "LOOP",
	OpCall: "CALL", OpTailCall: "TAIL_CALL", OpReturn: "RETURN",
	OpMakeList: "MAKE_LIST", OpIndex: "INDEX",
	OpMakeClosure: "MAKE_CLOSURE", OpCloseUpvalue: "CLOSE_UPVALUE",
	OpMakeConstructor: "MAKE_CONSTRUCTOR", OpConstruct: "CONSTRUCT",
	OpCheckTag: "CHECK_TAG", OpGetField: "GET_FIELD", OpNoMatch: "NO_MATCH",
	OpPrint: "PRINT", OpHalt: "HALT",
}

func (op OpCode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "UNKNOWN"
}
