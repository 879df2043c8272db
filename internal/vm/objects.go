package vm

import (
	"fmt"
	"strings"
)

// Object is implemented by every heap-allocated runtime value.
type Object interface {
	TypeName() string
	Inspect() string
}

// StringObj is an immutable string. Assignment copies the handle, not
// the backing bytes.
type StringObj struct {
	Value string
}

func (s *StringObj) TypeName() string { return "String" }
func (s *StringObj) Inspect() string  { return s.Value }

func NewString(s string) Value { return ObjVal(&StringObj{Value: s}) }

// ListObj is an immutable sequence of values.
type ListObj struct {
	Elements []Value
}

func (l *ListObj) TypeName() string { return "Lys" }
func (l *ListObj) Inspect() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.Inspect()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func NewList(elems []Value) Value { return ObjVal(&ListObj{Elements: elems}) }

// UpvalueDescriptor records how a MakeClosure instruction should
// populate one captured upvalue cell: from the enclosing frame's locals
// (IsLocal) or from the enclosing closure's own upvalues.
type UpvalueDescriptor struct {
	Index   int
	IsLocal bool
}

// CompiledFunction is the product of compiling a function or lambda
// body: its own Chunk plus the upvalue descriptors needed to build a
// Closure over it.
type CompiledFunction struct {
	Name       string
	Arity      int
	Chunk      *Chunk
	Upvalues   []UpvalueDescriptor
	LocalCount int
}

func (f *CompiledFunction) TypeName() string { return "Funksie" }
func (f *CompiledFunction) Inspect() string  { return fmt.Sprintf("<fn %s>", nameOr(f.Name, "<anoniem>")) }

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

// Upvalue is a cell referring to a variable captured from an enclosing
// scope. Open: Location is an index into the VM's value stack. Closed:
// Location is -1 and Closed owns the value.
type Upvalue struct {
	Location int
	Closed   Value
	Next     *Upvalue // VM's open-upvalue list, sorted by Location descending
}

// Closure pairs a CompiledFunction with its captured upvalue cells.
type Closure struct {
	Function *CompiledFunction
	Upvalues []*Upvalue
}

func (c *Closure) TypeName() string { return "Funksie" }
func (c *Closure) Inspect() string {
	return fmt.Sprintf("<closure %s>", nameOr(c.Function.Name, "<anoniem>"))
}

// Builtin wraps a native Go function as a callable Arkaan value.
type Builtin struct {
	Name string
	Fn   func(vm *VM, args []Value) (Value, error)
}

func (b *Builtin) TypeName() string { return "Ingeboude" }
func (b *Builtin) Inspect() string  { return "<ingeboude " + b.Name + ">" }

// Constructor is the callable template for one variant of an ADT,
// registered as a global when its `tipe` declaration is compiled.
type Constructor struct {
	TypeName_   string
	VariantName string
	FieldNames  []string
}

func (c *Constructor) TypeName() string { return "Konstruktor" }
func (c *Constructor) Inspect() string {
	if len(c.FieldNames) == 0 {
		return c.VariantName
	}
	return fmt.Sprintf("<konstruktor %s/%d>", c.VariantName, len(c.FieldNames))
}

// ConstructorInstance is a value produced by applying a Constructor to
// its field values.
type ConstructorInstance struct {
	Ctor   *Constructor
	Fields []Value
}

func (c *ConstructorInstance) TypeName() string { return c.Ctor.TypeName_ }
func (c *ConstructorInstance) Inspect() string {
	if len(c.Fields) == 0 {
		return c.Ctor.VariantName
	}
	parts := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		parts[i] = f.Inspect()
	}
	return c.Ctor.VariantName + "(" + strings.Join(parts, ", ") + ")"
}
