package vm

import (
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/juanco-itmu/arkaan-taal/internal/errs"
)

// builtinTable is the fixed set of native functions every Arkaan
// program sees pre-bound as immutable globals. compiler.go's
// NewGlobalScope seeds the compile-time name table from it as read-only
// names, so assigning to a builtin name is a CompileError; a laat/stel
// declaration of the same name still redeclares or shadows it.
var builtinTable = map[string]*Builtin{
	"druk":     {Name: "druk", Fn: builtinDruk},
	"lengte":   {Name: "lengte", Fn: builtinLengte},
	"kop":      {Name: "kop", Fn: builtinKop},
	"stert":    {Name: "stert", Fn: builtinStert},
	"leeg":     {Name: "leeg", Fn: builtinLeeg},
	"voeg_by":  {Name: "voeg_by", Fn: builtinVoegBy},
	"heg_aan":  {Name: "heg_aan", Fn: builtinHegAan},
	"ketting":  {Name: "ketting", Fn: builtinKetting},
	"omgekeer": {Name: "omgekeer", Fn: builtinOmgekeer},
	"kaart":    {Name: "kaart", Fn: builtinKaart},
	"filter":   {Name: "filter", Fn: builtinFilter},
	"vou":      {Name: "vou", Fn: builtinVou},
	"vir_elk":  {Name: "vir_elk", Fn: builtinVirElk},

	// Host-facing id and serialization builtins.
	"id_nuut":       {Name: "id_nuut", Fn: builtinIDNuut},
	"yaml_enkodeer": {Name: "yaml_enkodeer", Fn: builtinYamlEnkodeer},
	"yaml_dekodeer": {Name: "yaml_dekodeer", Fn: builtinYamlDekodeer},
}

// RegisterBuiltins installs every builtin as an immutable global on a
// freshly created VM, before any user code runs.
func RegisterBuiltins(vm *VM) {
	for name, b := range builtinTable {
		vm.DefineGlobal(name, ObjVal(b))
	}
}

func (vm *VM) arityError(name string, want, got int) error {
	return vm.runtimeError(errs.ArityError, "%s expects %d argument(s), got %d", name, want, got)
}

func (vm *VM) wantList(name string, v Value) (*ListObj, error) {
	l, ok := v.Obj.(*ListObj)
	if !ok || !v.IsObj() {
		return nil, vm.runtimeError(errs.TypeError, "%s expects a Lys, got %s", name, v.TypeName())
	}
	return l, nil
}

func builtinDruk(vm *VM, args []Value) (Value, error) {
	if len(args) != 1 {
		return NilVal(), vm.arityError("druk", 1, len(args))
	}
	vm.printValue(args[0])
	return NilVal(), nil
}

func builtinLengte(vm *VM, args []Value) (Value, error) {
	if len(args) != 1 {
		return NilVal(), vm.arityError("lengte", 1, len(args))
	}
	l, err := vm.wantList("lengte", args[0])
	if err != nil {
		return NilVal(), err
	}
	return IntVal(int64(len(l.Elements))), nil
}

func builtinKop(vm *VM, args []Value) (Value, error) {
	if len(args) != 1 {
		return NilVal(), vm.arityError("kop", 1, len(args))
	}
	l, err := vm.wantList("kop", args[0])
	if err != nil {
		return NilVal(), err
	}
	if len(l.Elements) == 0 {
		return NilVal(), vm.runtimeError(errs.IndexError, "kop: empty list")
	}
	return l.Elements[0], nil
}

func builtinStert(vm *VM, args []Value) (Value, error) {
	if len(args) != 1 {
		return NilVal(), vm.arityError("stert", 1, len(args))
	}
	l, err := vm.wantList("stert", args[0])
	if err != nil {
		return NilVal(), err
	}
	if len(l.Elements) == 0 {
		return NilVal(), vm.runtimeError(errs.IndexError, "stert: empty list")
	}
	rest := make([]Value, len(l.Elements)-1)
	copy(rest, l.Elements[1:])
	return NewList(rest), nil
}

func builtinLeeg(vm *VM, args []Value) (Value, error) {
	if len(args) != 1 {
		return NilVal(), vm.arityError("leeg", 1, len(args))
	}
	l, err := vm.wantList("leeg", args[0])
	if err != nil {
		return NilVal(), err
	}
	return BoolVal(len(l.Elements) == 0), nil
}

func builtinVoegBy(vm *VM, args []Value) (Value, error) {
	if len(args) != 2 {
		return NilVal(), vm.arityError("voeg_by", 2, len(args))
	}
	l, err := vm.wantList("voeg_by", args[1])
	if err != nil {
		return NilVal(), err
	}
	out := make([]Value, 0, len(l.Elements)+1)
	out = append(out, args[0])
	out = append(out, l.Elements...)
	return NewList(out), nil
}

func builtinHegAan(vm *VM, args []Value) (Value, error) {
	if len(args) != 2 {
		return NilVal(), vm.arityError("heg_aan", 2, len(args))
	}
	l, err := vm.wantList("heg_aan", args[0])
	if err != nil {
		return NilVal(), err
	}
	out := make([]Value, 0, len(l.Elements)+1)
	out = append(out, l.Elements...)
	out = append(out, args[1])
	return NewList(out), nil
}

func builtinKetting(vm *VM, args []Value) (Value, error) {
	if len(args) != 2 {
		return NilVal(), vm.arityError("ketting", 2, len(args))
	}
	a, err := vm.wantList("ketting", args[0])
	if err != nil {
		return NilVal(), err
	}
	b, err := vm.wantList("ketting", args[1])
	if err != nil {
		return NilVal(), err
	}
	out := make([]Value, 0, len(a.Elements)+len(b.Elements))
	out = append(out, a.Elements...)
	out = append(out, b.Elements...)
	return NewList(out), nil
}

func builtinOmgekeer(vm *VM, args []Value) (Value, error) {
	if len(args) != 1 {
		return NilVal(), vm.arityError("omgekeer", 1, len(args))
	}
	l, err := vm.wantList("omgekeer", args[0])
	if err != nil {
		return NilVal(), err
	}
	out := make([]Value, len(l.Elements))
	for i, v := range l.Elements {
		out[len(out)-1-i] = v
	}
	return NewList(out), nil
}

func builtinKaart(vm *VM, args []Value) (Value, error) {
	if len(args) != 2 {
		return NilVal(), vm.arityError("kaart", 2, len(args))
	}
	l, err := vm.wantList("kaart", args[0])
	if err != nil {
		return NilVal(), err
	}
	out := make([]Value, len(l.Elements))
	for i, v := range l.Elements {
		r, err := vm.callNoArgs(args[1], v)
		if err != nil {
			return NilVal(), err
		}
		out[i] = r
	}
	return NewList(out), nil
}

func builtinFilter(vm *VM, args []Value) (Value, error) {
	if len(args) != 2 {
		return NilVal(), vm.arityError("filter", 2, len(args))
	}
	l, err := vm.wantList("filter", args[0])
	if err != nil {
		return NilVal(), err
	}
	var out []Value
	for _, v := range l.Elements {
		r, err := vm.callNoArgs(args[1], v)
		if err != nil {
			return NilVal(), err
		}
		if r.Truthy() {
			out = append(out, v)
		}
	}
	return NewList(out), nil
}

func builtinVou(vm *VM, args []Value) (Value, error) {
	if len(args) != 3 {
		return NilVal(), vm.arityError("vou", 3, len(args))
	}
	l, err := vm.wantList("vou", args[0])
	if err != nil {
		return NilVal(), err
	}
	acc := args[1]
	for _, v := range l.Elements {
		acc, err = vm.callNoArgs(args[2], acc, v)
		if err != nil {
			return NilVal(), err
		}
	}
	return acc, nil
}

func builtinVirElk(vm *VM, args []Value) (Value, error) {
	if len(args) != 2 {
		return NilVal(), vm.arityError("vir_elk", 2, len(args))
	}
	l, err := vm.wantList("vir_elk", args[0])
	if err != nil {
		return NilVal(), err
	}
	for _, v := range l.Elements {
		if _, err := vm.callNoArgs(args[1], v); err != nil {
			return NilVal(), err
		}
	}
	return NilVal(), nil
}

// builtinIDNuut generates a v4 UUID for programs that need a unique
// tag for a constructed value without a state-carrying RNG builtin.
func builtinIDNuut(vm *VM, args []Value) (Value, error) {
	if len(args) != 0 {
		return NilVal(), vm.arityError("id_nuut", 0, len(args))
	}
	return NewString(uuid.NewString()), nil
}

// builtinYamlEnkodeer encodes a Value tree (Nil/Bool/Int/Float/String/
// List) to a YAML document.
func builtinYamlEnkodeer(vm *VM, args []Value) (Value, error) {
	if len(args) != 1 {
		return NilVal(), vm.arityError("yaml_enkodeer", 1, len(args))
	}
	out, err := yaml.Marshal(valueToYAML(args[0]))
	if err != nil {
		return NilVal(), vm.runtimeError(errs.TypeError, "yaml_enkodeer: %v", err)
	}
	return NewString(string(out)), nil
}

// builtinYamlDekodeer parses YAML text back into a Value tree.
func builtinYamlDekodeer(vm *VM, args []Value) (Value, error) {
	if len(args) != 1 {
		return NilVal(), vm.arityError("yaml_dekodeer", 1, len(args))
	}
	s, ok := args[0].Obj.(*StringObj)
	if !ok || !args[0].IsObj() {
		return NilVal(), vm.runtimeError(errs.TypeError, "yaml_dekodeer expects a String")
	}
	var data interface{}
	if err := yaml.Unmarshal([]byte(s.Value), &data); err != nil {
		return NilVal(), vm.runtimeError(errs.TypeError, "yaml_dekodeer: %v", err)
	}
	return yamlToValue(data), nil
}

func valueToYAML(v Value) interface{} {
	switch {
	case v.IsNil():
		return nil
	case v.IsBool():
		return v.AsBool()
	case v.IsInt():
		return v.AsInt()
	case v.IsFloat():
		return v.AsFloat()
	case v.IsObj():
		switch o := v.Obj.(type) {
		case *StringObj:
			return o.Value
		case *ListObj:
			out := make([]interface{}, len(o.Elements))
			for i, e := range o.Elements {
				out[i] = valueToYAML(e)
			}
			return out
		}
	}
	return nil
}

func yamlToValue(data interface{}) Value {
	switch v := data.(type) {
	case nil:
		return NilVal()
	case bool:
		return BoolVal(v)
	case int:
		return IntVal(int64(v))
	case int64:
		return IntVal(v)
	case float64:
		if v == float64(int64(v)) {
			return IntVal(int64(v))
		}
		return FloatVal(v)
	case string:
		return NewString(v)
	case []interface{}:
		elems := make([]Value, len(v))
		for i, e := range v {
			elems[i] = yamlToValue(e)
		}
		return NewList(elems)
	default:
		return NilVal()
	}
}
