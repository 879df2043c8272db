package vm

import "github.com/juanco-itmu/arkaan-taal/internal/errs"

// exec drives step() until the outermost frame returns or OpHalt runs.
func (vm *VM) exec() (Value, error) {
	for {
		result, done, err := vm.step()
		if err != nil {
			return NilVal(), err
		}
		if done && vm.frame == nil {
			return result, nil
		}
	}
}

// runUntilFrameCount drives step() until the frame stack returns to
// depth target, returning the value the innermost call produced. Used
// by callNoArgs so a builtin like kaart/filter/vou can invoke an
// Arkaan closure without re-entering exec's own call stack.
func (vm *VM) runUntilFrameCount(target int) (Value, error) {
	var last Value
	for len(vm.frames) > target {
		result, _, err := vm.step()
		if err != nil {
			return NilVal(), err
		}
		last = result
	}
	return last, nil
}

// step executes a single instruction. done is true exactly when a
// frame was popped (OpReturn) or the program halted (OpHalt); result
// is only meaningful when done is true.
func (vm *VM) step() (result Value, done bool, err error) {
	op := OpCode(vm.readByte())

	switch op {
	case OpConst:
		err = vm.push(vm.readConstant())

	case OpNil:
		err = vm.push(NilVal())
	case OpTrue:
		err = vm.push(BoolVal(true))
	case OpFalse:
		err = vm.push(BoolVal(false))

	case OpPop:
		vm.pop()
	case OpDup:
		err = vm.push(vm.peek(0))

	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		err = vm.binaryArith(op)

	case OpEq:
		b, a := vm.pop(), vm.pop()
		err = vm.push(BoolVal(a.Equals(b)))
	case OpNe:
		b, a := vm.pop(), vm.pop()
		err = vm.push(BoolVal(!a.Equals(b)))
	case OpLt, OpLe, OpGt, OpGe:
		err = vm.compare(op)

	case OpNot:
		v := vm.pop()
		err = vm.push(BoolVal(!v.Truthy()))
	case OpNeg:
		v := vm.pop()
		switch {
		case v.IsInt():
			err = vm.push(IntVal(-v.AsInt()))
		case v.IsFloat():
			err = vm.push(FloatVal(-v.AsFloat()))
		default:
			err = vm.runtimeError(errs.TypeError, "cannot negate %s", v.TypeName())
		}

	case OpGetLocal:
		slot := int(vm.readByte())
		err = vm.push(vm.stack[vm.frame.base+slot])
	case OpSetLocal:
		slot := int(vm.readByte())
		vm.stack[vm.frame.base+slot] = vm.pop()

	case OpGetUpvalue:
		idx := int(vm.readByte())
		up := vm.frame.closure.Upvalues[idx]
		if up.Location >= 0 {
			err = vm.push(vm.stack[up.Location])
		} else {
			err = vm.push(up.Closed)
		}
	case OpSetUpvalue:
		idx := int(vm.readByte())
		up := vm.frame.closure.Upvalues[idx]
		if up.Location >= 0 {
			vm.stack[up.Location] = vm.pop()
		} else {
			up.Closed = vm.pop()
		}

	case OpGetGlobal:
		name := vm.readConstant().Obj.(*StringObj).Value
		v, ok := vm.globals[name]
		if !ok {
			err = vm.runtimeError(errs.NameError, "undefined name '%s'", name)
			break
		}
		err = vm.push(v)
	case OpSetGlobal:
		name := vm.readConstant().Obj.(*StringObj).Value
		if _, ok := vm.globals[name]; !ok {
			err = vm.runtimeError(errs.NameError, "undefined name '%s'", name)
			break
		}
		vm.globals[name] = vm.pop()
	case OpDefGlobal:
		name := vm.readConstant().Obj.(*StringObj).Value
		vm.globals[name] = vm.pop()

	case OpJump:
		offset := vm.readUint16()
		vm.frame.ip += offset
	case OpJumpIfFalse:
		offset := vm.readUint16()
		if !vm.peek(0).Truthy() {
			vm.frame.ip += offset
		}
	case OpLoop:
		offset := vm.readUint16()
		vm.frame.ip -= offset

	case OpCall:
		argCount := int(vm.readByte())
		err = vm.callValue(vm.peek(argCount), argCount)
	case OpTailCall:
		argCount := int(vm.readByte())
		err = vm.tailCallValue(vm.peek(argCount), argCount)

	case OpReturn:
		result = vm.pop()
		base := vm.frame.base
		vm.closeUpvaluesFrom(base)
		// A called frame's callee value sits just below its base and is
		// discarded with the frame; only the top-level frame (base 0)
		// has no callee beneath it.
		if base > 0 {
			base--
		}
		vm.stack = vm.stack[:base]
		vm.popFrame()
		done = true
		if vm.frame != nil {
			err = vm.push(result)
		}

	case OpMakeList:
		count := vm.readUint16()
		start := len(vm.stack) - count
		elems := make([]Value, count)
		copy(elems, vm.stack[start:])
		vm.stack = vm.stack[:start]
		err = vm.push(NewList(elems))
	case OpIndex:
		err = vm.index()

	case OpMakeClosure:
		fn := vm.readConstant().Obj.(*CompiledFunction)
		closure := &Closure{Function: fn, Upvalues: make([]*Upvalue, len(fn.Upvalues))}
		upCount := int(vm.readByte())
		for i := 0; i < upCount; i++ {
			isLocal := vm.readByte()
			index := int(vm.readByte())
			if isLocal == 1 {
				closure.Upvalues[i] = vm.captureUpvalue(vm.frame.base + index)
			} else {
				closure.Upvalues[i] = vm.frame.closure.Upvalues[index]
			}
		}
		err = vm.push(ObjVal(closure))
	case OpCloseUpvalue:
		slot := int(vm.readByte())
		vm.closeUpvalueAt(vm.frame.base + slot)

	case OpMakeConstructor:
		typeName := vm.readConstant().Obj.(*StringObj).Value
		variantName := vm.readConstant().Obj.(*StringObj).Value
		fieldsList := vm.readConstant().Obj.(*ListObj)
		vm.readByte() // arity; redundant with len(fields), kept for disasm symmetry
		fields := make([]string, len(fieldsList.Elements))
		for i, fv := range fieldsList.Elements {
			fields[i] = fv.Obj.(*StringObj).Value
		}
		ctor := &Constructor{TypeName_: typeName, VariantName: variantName, FieldNames: fields}
		err = vm.push(ObjVal(ctor))
	case OpConstruct:
		variantName := vm.readConstant().Obj.(*StringObj).Value
		argCount := int(vm.readByte())
		global, ok := vm.globals[variantName]
		var ctor *Constructor
		if ok {
			ctor, ok = global.Obj.(*Constructor)
		}
		if !ok {
			err = vm.runtimeError(errs.NameError, "unknown constructor '%s'", variantName)
			break
		}
		err = vm.constructInstance(ctor, argCount)
	case OpCheckTag:
		variantName := vm.readConstant().Obj.(*StringObj).Value
		v := vm.pop()
		inst, ok := v.Obj.(*ConstructorInstance)
		matched := ok && v.IsObj() && inst.Ctor.VariantName == variantName
		err = vm.push(BoolVal(matched))
	case OpGetField:
		idx := int(vm.readByte())
		v := vm.pop()
		inst, ok := v.Obj.(*ConstructorInstance)
		if !ok || !v.IsObj() || idx >= len(inst.Fields) {
			err = vm.runtimeError(errs.TypeError, "cannot read field of %s", v.TypeName())
			break
		}
		err = vm.push(inst.Fields[idx])
	case OpNoMatch:
		err = vm.runtimeError(errs.MatchError, "no pattern matched the value")

	case OpPrint:
		vm.printValue(vm.pop())

	case OpHalt:
		done = true
		if len(vm.stack) > 0 {
			result = vm.pop()
		}
		vm.frame = nil

	default:
		err = vm.runtimeError(errs.TypeError, "unknown opcode %d", op)
	}

	return result, done, err
}
