package vm

import (
	"fmt"
	"math"
)

// Kind identifies the tag of a Value.
type Kind uint8

const (
	KindNil Kind = iota
	KindInt
	KindFloat
	KindBool
	KindObj // heap object: String, List, Closure, Builtin, Constructor, ConstructorInstance
)

// Value is a stack-allocated tagged union, avoiding heap allocation for
// the small primitive cases. Obj holds a reference for the KindObj case;
// Go's own garbage collector handles the shared ownership that
// reference implies, so copying a Value never deep-copies its Obj.
type Value struct {
	Kind Kind
	Data uint64
	Obj  Object
}

func NilVal() Value             { return Value{Kind: KindNil} }
func IntVal(v int64) Value      { return Value{Kind: KindInt, Data: uint64(v)} }
func FloatVal(v float64) Value  { return Value{Kind: KindFloat, Data: math.Float64bits(v)} }
func ObjVal(o Object) Value     { return Value{Kind: KindObj, Obj: o} }

func BoolVal(v bool) Value {
	var d uint64
	if v {
		d = 1
	}
	return Value{Kind: KindBool, Data: d}
}

func (v Value) AsInt() int64     { return int64(v.Data) }
func (v Value) AsFloat() float64 { return math.Float64frombits(v.Data) }
func (v Value) AsBool() bool     { return v.Data == 1 }

func (v Value) IsNil() bool   { return v.Kind == KindNil }
func (v Value) IsInt() bool   { return v.Kind == KindInt }
func (v Value) IsFloat() bool { return v.Kind == KindFloat }
func (v Value) IsBool() bool  { return v.Kind == KindBool }
func (v Value) IsObj() bool   { return v.Kind == KindObj }

// IsNumber reports whether v is an Int or a Float.
func (v Value) IsNumber() bool { return v.Kind == KindInt || v.Kind == KindFloat }

// AsNumberFloat widens an Int or Float value to float64.
func (v Value) AsNumberFloat() float64 {
	if v.Kind == KindInt {
		return float64(v.AsInt())
	}
	return v.AsFloat()
}

// Truthy applies Arkaan's truthiness rule: everything but Nil and false
// is truthy.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNil:
		return false
	case KindBool:
		return v.AsBool()
	default:
		return true
	}
}

// Equals implements structural equality for primitives, lists, and
// constructor instances, and reference equality for functions/closures.
func (v Value) Equals(other Value) bool {
	if v.Kind != other.Kind {
		if v.Kind == KindInt && other.Kind == KindFloat {
			return float64(v.AsInt()) == other.AsFloat()
		}
		if v.Kind == KindFloat && other.Kind == KindInt {
			return v.AsFloat() == float64(other.AsInt())
		}
		return false
	}
	switch v.Kind {
	case KindNil:
		return true
	case KindBool, KindInt:
		return v.Data == other.Data
	case KindFloat:
		return v.AsFloat() == other.AsFloat()
	case KindObj:
		return objectsEqual(v.Obj, other.Obj)
	default:
		return false
	}
}

// Inspect renders v for druk/REPL output.
func (v Value) Inspect() string {
	switch v.Kind {
	case KindNil:
		return "niks"
	case KindBool:
		if v.AsBool() {
			return "waar"
		}
		return "onwaar"
	case KindInt:
		return fmt.Sprintf("%d", v.AsInt())
	case KindFloat:
		return fmt.Sprintf("%g", v.AsFloat())
	case KindObj:
		if v.Obj == nil {
			return "niks"
		}
		return v.Obj.Inspect()
	default:
		return "<?>"
	}
}

// TypeName returns the runtime type name used in error messages.
func (v Value) TypeName() string {
	switch v.Kind {
	case KindNil:
		return "Niks"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Heelgetal"
	case KindFloat:
		return "Dryfpunt"
	case KindObj:
		if v.Obj == nil {
			return "Niks"
		}
		return v.Obj.TypeName()
	default:
		return "?"
	}
}

func objectsEqual(a, b Object) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch av := a.(type) {
	case *StringObj:
		bv, ok := b.(*StringObj)
		return ok && av.Value == bv.Value
	case *ListObj:
		bv, ok := b.(*ListObj)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !av.Elements[i].Equals(bv.Elements[i]) {
				return false
			}
		}
		return true
	case *ConstructorInstance:
		bv, ok := b.(*ConstructorInstance)
		if !ok || av.Ctor.VariantName != bv.Ctor.VariantName || av.Ctor.TypeName_ != bv.Ctor.TypeName_ {
			return false
		}
		if len(av.Fields) != len(bv.Fields) {
			return false
		}
		for i := range av.Fields {
			if !av.Fields[i].Equals(bv.Fields[i]) {
				return false
			}
		}
		return true
	default:
		// Functions, closures, and builtins compare by identity.
		return a == b
	}
}
