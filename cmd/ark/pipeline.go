package main

import (
	"github.com/juanco-itmu/arkaan-taal/internal/parser"
	"github.com/juanco-itmu/arkaan-taal/internal/vm"
)

// session bundles the compile-time global table and the VM instance
// across successive top-level compiles, so a REPL's bindings persist
// from one input to the next.
type session struct {
	globals *vm.GlobalScope
	machine *vm.VM
}

func newSession() *session {
	m := vm.New()
	vm.RegisterBuiltins(m)
	return &session{globals: vm.NewGlobalScope(), machine: m}
}

// run compiles and executes one chunk of source against the session,
// returning the value the top-level implicitly produced.
func (s *session) run(src string) (vm.Value, error) {
	prog, err := parser.ParseProgram(src)
	if err != nil {
		return vm.NilVal(), err
	}
	top, err := vm.Compile(prog, s.globals)
	if err != nil {
		return vm.NilVal(), err
	}
	return s.machine.Run(top)
}

// evalSource runs src once in a throwaway session, used for `ark
// file.ark`. Errors from any stage (parse/compile/runtime) are
// returned verbatim; the VM's own druk calls have already written any
// program output by the time this returns.
func evalSource(src string) error {
	_, err := newSession().run(src)
	return err
}
