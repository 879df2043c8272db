package vm

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable rendering of a chunk's bytecode,
// used by tests that pin down the compiler's output shape.
func Disassemble(chunk *Chunk, name string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("== %s ==\n", name))

	offset := 0
	for offset < len(chunk.Code) {
		offset = disassembleInstruction(&sb, chunk, offset)
	}
	return sb.String()
}

func disassembleInstruction(sb *strings.Builder, chunk *Chunk, offset int) int {
	sb.WriteString(fmt.Sprintf("%04d ", offset))

	if offset > 0 && chunk.Lines[offset] == chunk.Lines[offset-1] {
		sb.WriteString("   | ")
	} else {
		sb.WriteString(fmt.Sprintf("%4d ", chunk.Lines[offset]))
	}

	op := OpCode(chunk.Code[offset])

	switch op {
	case OpConst:
		return constantInstruction(sb, op.String(), chunk, offset)

	case OpNil, OpTrue, OpFalse, OpPop, OpDup,
		OpAdd, OpSub, OpMul, OpDiv, OpMod,
		OpEq, OpNe, OpLt, OpLe, OpGt, OpGe,
		OpNot, OpNeg, OpReturn, OpIndex,
		OpNoMatch, OpPrint, OpHalt:
		return simpleInstruction(sb, op.String(), offset)

	case OpGetLocal, OpSetLocal, OpGetUpvalue, OpSetUpvalue,
		OpCall, OpTailCall, OpCloseUpvalue, OpGetField:
		return byteInstruction(sb, op.String(), chunk, offset)

	case OpGetGlobal, OpSetGlobal, OpDefGlobal, OpCheckTag:
		return constantInstruction(sb, op.String(), chunk, offset)

	case OpJump, OpJumpIfFalse:
		return jumpInstruction(sb, op.String(), 1, chunk, offset)
	case OpLoop:
		return jumpInstruction(sb, op.String(), -1, chunk, offset)

	case OpMakeList:
		return uint16Instruction(sb, op.String(), chunk, offset)

	case OpMakeClosure:
		return closureInstruction(sb, op.String(), chunk, offset)

	case OpMakeConstructor:
		return constructorInstruction(sb, chunk, offset)
	case OpConstruct:
		idx := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
		argc := int(chunk.Code[offset+3])
		name := "(invalid)"
		if idx < len(chunk.Constants) {
			name = chunk.Constants[idx].Inspect()
		}
		sb.WriteString(fmt.Sprintf("%-16s %4d '%s' (argc %d)\n", op.String(), idx, name, argc))
		return offset + 4

	default:
		sb.WriteString(fmt.Sprintf("unknown opcode %d\n", op))
		return offset + 1
	}
}

// opWidth is the column a mnemonic is padded to before its operand(s),
// kept as a named constant so the four helpers below agree on layout.
const opWidth = 16

// operand16 decodes the big-endian 16-bit operand that follows an
// opcode byte at offset.
func operand16(chunk *Chunk, offset int) int {
	return int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
}

func simpleInstruction(sb *strings.Builder, mnemonic string, offset int) int {
	fmt.Fprintln(sb, mnemonic)
	return offset + 1
}

func constantInstruction(sb *strings.Builder, mnemonic string, chunk *Chunk, offset int) int {
	idx := operand16(chunk, offset)
	label := "(invalid)"
	if idx < len(chunk.Constants) {
		label = "'" + chunk.Constants[idx].Inspect() + "'"
	}
	fmt.Fprintf(sb, "%-*s %4d %s\n", opWidth, mnemonic, idx, label)
	return offset + 3
}

func uint16Instruction(sb *strings.Builder, name string, chunk *Chunk, offset int) int {
	n := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
	sb.WriteString(fmt.Sprintf("%-16s %4d\n", name, n))
	return offset + 3
}

func byteInstruction(sb *strings.Builder, mnemonic string, chunk *Chunk, offset int) int {
	operand := chunk.Code[offset+1]
	fmt.Fprintf(sb, "%-*s %4d\n", opWidth, mnemonic, operand)
	return offset + 2
}

func jumpInstruction(sb *strings.Builder, mnemonic string, direction int, chunk *Chunk, offset int) int {
	delta := operand16(chunk, offset)
	landing := offset + 3 + direction*delta
	fmt.Fprintf(sb, "%-*s %4d -> %d\n", opWidth, mnemonic, delta, landing)
	return offset + 3
}

func closureInstruction(sb *strings.Builder, name string, chunk *Chunk, offset int) int {
	idx := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
	offset += 3

	if idx >= len(chunk.Constants) {
		sb.WriteString(fmt.Sprintf("%-16s %4d (invalid)\n", name, idx))
		return offset
	}
	fn, ok := chunk.Constants[idx].Obj.(*CompiledFunction)
	if !ok {
		sb.WriteString(fmt.Sprintf("%-16s %4d (not a function)\n", name, idx))
		return offset
	}
	sb.WriteString(fmt.Sprintf("%-16s %4d '%s'\n", name, idx, fn.Inspect()))

	funcDisasm := Disassemble(fn.Chunk, nameOr(fn.Name, "<anoniem>"))
	indented := strings.ReplaceAll(funcDisasm, "\n", "\n    | ")
	sb.WriteString("    | " + indented + "\n")

	upCount := int(chunk.Code[offset])
	offset++
	for i := 0; i < upCount; i++ {
		isLocal := chunk.Code[offset]
		index := chunk.Code[offset+1]
		offset += 2
		kind := "upvalue"
		if isLocal == 1 {
			kind = "local"
		}
		sb.WriteString(fmt.Sprintf("%04d    |                     %s %d\n", offset-2, kind, index))
	}
	return offset
}

func constructorInstruction(sb *strings.Builder, chunk *Chunk, offset int) int {
	typeIdx := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
	variantIdx := int(chunk.Code[offset+3])<<8 | int(chunk.Code[offset+4])
	arity := int(chunk.Code[offset+7])

	typeName, variantName := "(invalid)", "(invalid)"
	if typeIdx < len(chunk.Constants) {
		typeName = chunk.Constants[typeIdx].Inspect()
	}
	if variantIdx < len(chunk.Constants) {
		variantName = chunk.Constants[variantIdx].Inspect()
	}
	sb.WriteString(fmt.Sprintf("%-16s %s.%s (arity %d)\n", "MAKE_CONSTRUCTOR", typeName, variantName, arity))
	return offset + 8
}
