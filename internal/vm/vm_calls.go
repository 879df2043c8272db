package vm

import "github.com/juanco-itmu/arkaan-taal/internal/errs"

// callValue dispatches a call based on the callee's runtime type: a
// user closure, a native builtin, or an ADT constructor. Anything else
// is a TypeError.
func (vm *VM) callValue(callee Value, argCount int) error {
	if !callee.IsObj() {
		return vm.runtimeError(errs.TypeError, "cannot call a value of type %s", callee.TypeName())
	}
	switch fn := callee.Obj.(type) {
	case *Closure:
		return vm.callClosure(fn, argCount)
	case *CompiledFunction:
		return vm.callClosure(&Closure{Function: fn}, argCount)
	case *Builtin:
		return vm.callBuiltin(fn, argCount)
	case *Constructor:
		return vm.callConstructor(fn, argCount)
	default:
		return vm.runtimeError(errs.TypeError, "cannot call a value of type %s", callee.TypeName())
	}
}

// callClosure pushes a new frame over the already-on-stack arguments.
func (vm *VM) callClosure(closure *Closure, argCount int) error {
	fn := closure.Function
	if argCount != fn.Arity {
		return vm.runtimeError(errs.ArityError, "%s expects %d argument(s), got %d", nameOr(fn.Name, "funksie"), fn.Arity, argCount)
	}
	base := len(vm.stack) - argCount
	return vm.pushFrame(closure, base)
}

// tailCallValue dispatches a tail-position call. Only a Closure callee
// can be turned into a genuine in-place frame reuse; every other
// callee (builtin, constructor) falls back to an ordinary call, and
// the compiler's always-emitted trailing OpReturn after the call
// unwinds it normally in that case.
func (vm *VM) tailCallValue(callee Value, argCount int) error {
	if callee.IsObj() {
		if closure, ok := callee.Obj.(*Closure); ok {
			return vm.tailCallClosure(closure, argCount)
		}
		if fn, ok := callee.Obj.(*CompiledFunction); ok {
			return vm.tailCallClosure(&Closure{Function: fn}, argCount)
		}
	}
	return vm.callValue(callee, argCount)
}

// tailCallClosure reuses the current frame instead of pushing a new
// one: it closes any upvalues captured from the frame being discarded,
// slides the new arguments down to the frame's base, truncates the
// stack, and rewinds ip to the callee's own chunk. The trailing
// OpReturn the compiler always emits after a tail call is then dead
// code on this path — it is never reached, because execution has
// moved into a different chunk entirely.
func (vm *VM) tailCallClosure(closure *Closure, argCount int) error {
	fn := closure.Function
	if argCount != fn.Arity {
		return vm.runtimeError(errs.ArityError, "%s expects %d argument(s), got %d", nameOr(fn.Name, "funksie"), fn.Arity, argCount)
	}

	base := vm.frame.base
	vm.closeUpvaluesFrom(base)

	argStart := len(vm.stack) - argCount
	for i := 0; i < argCount; i++ {
		vm.stack[base+i] = vm.stack[argStart+i]
	}
	vm.stack = vm.stack[:base+argCount]

	vm.frame.closure = closure
	vm.frame.ip = 0
	return nil
}

// callBuiltin invokes a native Go function. Builtins consume their
// arguments directly off the stack rather than through a frame.
func (vm *VM) callBuiltin(b *Builtin, argCount int) error {
	argStart := len(vm.stack) - argCount
	args := make([]Value, argCount)
	copy(args, vm.stack[argStart:])
	vm.stack = vm.stack[:argStart-1] // also discard the Builtin value itself

	result, err := b.Fn(vm, args)
	if err != nil {
		return err
	}
	return vm.push(result)
}

// callConstructor applies an ADT constructor to its field values,
// producing a ConstructorInstance. Constructors are not closures and
// so cannot be tail-called; tailCallValue falls back to this same
// path.
func (vm *VM) callConstructor(ctor *Constructor, argCount int) error {
	if err := vm.constructInstance(ctor, argCount); err != nil {
		return err
	}
	instance := vm.pop()
	vm.pop() // discard the Constructor value itself
	return vm.push(instance)
}

// constructInstance pops argCount field values already on top of the
// stack and pushes the resulting ConstructorInstance, without
// disturbing anything below them. Used directly by OpConstruct (whose
// operand names the constructor, so no callee value is on the stack)
// and, via callConstructor, by an ordinary OpCall to a Constructor
// value (where the callee still needs popping).
func (vm *VM) constructInstance(ctor *Constructor, argCount int) error {
	if argCount != len(ctor.FieldNames) {
		return vm.runtimeError(errs.ArityError, "%s expects %d argument(s), got %d", ctor.VariantName, len(ctor.FieldNames), argCount)
	}
	argStart := len(vm.stack) - argCount
	fields := make([]Value, argCount)
	copy(fields, vm.stack[argStart:])
	vm.stack = vm.stack[:argStart]

	return vm.push(ObjVal(&ConstructorInstance{Ctor: ctor, Fields: fields}))
}

// captureUpvalue returns the open upvalue cell for the given absolute
// stack location, reusing one already open there so multiple closures
// capturing the same local share a cell.
func (vm *VM) captureUpvalue(location int) *Upvalue {
	var prev *Upvalue
	up := vm.openUpvalues
	for up != nil && up.Location > location {
		prev = up
		up = up.Next
	}
	if up != nil && up.Location == location {
		return up
	}
	created := &Upvalue{Location: location, Next: up}
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.Next = created
	}
	return created
}

// closeUpvaluesFrom closes every open upvalue at or above lastSlot,
// used when a frame is discarded (return, or tail call reusing it).
func (vm *VM) closeUpvaluesFrom(lastSlot int) {
	for vm.openUpvalues != nil && vm.openUpvalues.Location >= lastSlot {
		up := vm.openUpvalues
		up.Closed = vm.stack[up.Location]
		up.Location = -1
		vm.openUpvalues = up.Next
	}
}

// callNoArgs invokes fn with the given arguments and runs the VM until
// that call's frame (and only that frame) has returned, yielding its
// result. Builtins like kaart/filter/vou use this to invoke a callback
// without re-entering exec's outer dispatch loop from the outside.
func (vm *VM) callNoArgs(fn Value, args ...Value) (Value, error) {
	framesBefore := len(vm.frames)
	if err := vm.push(fn); err != nil {
		return NilVal(), err
	}
	for _, a := range args {
		if err := vm.push(a); err != nil {
			return NilVal(), err
		}
	}
	if err := vm.callValue(fn, len(args)); err != nil {
		return NilVal(), err
	}
	if len(vm.frames) <= framesBefore {
		// callValue resolved to a builtin or constructor and already
		// left its result on the stack without pushing a frame.
		return vm.pop(), nil
	}
	// runUntilFrameCount drives execution through popFrame, which
	// already repoints vm.frame at the live vm.frames backing array as
	// frames are popped; no manual save/restore is needed (and holding
	// a *CallFrame across further pushFrame calls here would risk
	// aliasing a since-reallocated backing array).
	result, err := vm.runUntilFrameCount(framesBefore)
	if err != nil {
		return NilVal(), err
	}
	// OpReturn pushed the result onto the caller's stack; take it back
	// off, as the builtin branch above does.
	vm.pop()
	return result, nil
}

// closeUpvalueAt closes the single open upvalue at the given absolute
// stack location, if any. Used by OpCloseUpvalue, whose slot operand
// addresses one local leaving scope without disturbing the stack.
func (vm *VM) closeUpvalueAt(location int) {
	var prev *Upvalue
	up := vm.openUpvalues
	for up != nil && up.Location > location {
		prev = up
		up = up.Next
	}
	if up == nil || up.Location != location {
		return
	}
	up.Closed = vm.stack[up.Location]
	up.Location = -1
	if prev == nil {
		vm.openUpvalues = up.Next
	} else {
		prev.Next = up.Next
	}
}
