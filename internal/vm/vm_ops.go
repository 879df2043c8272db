package vm

import "github.com/juanco-itmu/arkaan-taal/internal/errs"

func (vm *VM) binaryArith(op OpCode) error {
	b := vm.pop()
	a := vm.pop()

	if op == OpAdd {
		if as, ok := a.Obj.(*StringObj); ok && a.IsObj() {
			bs, ok := b.Obj.(*StringObj)
			if !ok {
				return vm.typeError(a, b)
			}
			return vm.push(NewString(as.Value + bs.Value))
		}
		if al, ok := a.Obj.(*ListObj); ok && a.IsObj() {
			bl, ok := b.Obj.(*ListObj)
			if !ok {
				return vm.typeError(a, b)
			}
			merged := make([]Value, 0, len(al.Elements)+len(bl.Elements))
			merged = append(merged, al.Elements...)
			merged = append(merged, bl.Elements...)
			return vm.push(NewList(merged))
		}
	}

	if !a.IsNumber() || !b.IsNumber() {
		return vm.typeError(a, b)
	}

	if a.IsInt() && b.IsInt() {
		x, y := a.AsInt(), b.AsInt()
		switch op {
		case OpAdd:
			return vm.push(IntVal(x + y))
		case OpSub:
			return vm.push(IntVal(x - y))
		case OpMul:
			return vm.push(IntVal(x * y))
		case OpDiv:
			if y == 0 {
				return vm.runtimeError(errs.DivByZero, "division by zero")
			}
			return vm.push(IntVal(x / y))
		case OpMod:
			if y == 0 {
				return vm.runtimeError(errs.DivByZero, "division by zero")
			}
			return vm.push(IntVal(x % y))
		}
	}

	x, y := a.AsNumberFloat(), b.AsNumberFloat()
	switch op {
	case OpAdd:
		return vm.push(FloatVal(x + y))
	case OpSub:
		return vm.push(FloatVal(x - y))
	case OpMul:
		return vm.push(FloatVal(x * y))
	case OpDiv:
		if y == 0 {
			return vm.runtimeError(errs.DivByZero, "division by zero")
		}
		return vm.push(FloatVal(x / y))
	case OpMod:
		return vm.runtimeError(errs.TypeError, "'%%' requires two Heelgetal operands")
	}
	return vm.runtimeError(errs.TypeError, "unsupported arithmetic operator")
}

func (vm *VM) typeError(a, b Value) error {
	return vm.runtimeError(errs.TypeError, "cannot apply operator to %s and %s", a.TypeName(), b.TypeName())
}

func (vm *VM) compare(op OpCode) error {
	b := vm.pop()
	a := vm.pop()
	if !a.IsNumber() || !b.IsNumber() {
		return vm.typeError(a, b)
	}
	x, y := a.AsNumberFloat(), b.AsNumberFloat()
	var result bool
	switch op {
	case OpLt:
		result = x < y
	case OpLe:
		result = x <= y
	case OpGt:
		result = x > y
	case OpGe:
		result = x >= y
	}
	return vm.push(BoolVal(result))
}

func (vm *VM) index() error {
	idxVal := vm.pop()
	target := vm.pop()
	list, ok := target.Obj.(*ListObj)
	if !ok || !target.IsObj() {
		return vm.runtimeError(errs.TypeError, "cannot index into %s", target.TypeName())
	}
	if !idxVal.IsInt() {
		return vm.runtimeError(errs.TypeError, "list index must be Heelgetal, got %s", idxVal.TypeName())
	}
	i := idxVal.AsInt()
	n := int64(len(list.Elements))
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return vm.runtimeError(errs.IndexError, "index %d out of bounds for list of length %d", idxVal.AsInt(), n)
	}
	return vm.push(list.Elements[i])
}
