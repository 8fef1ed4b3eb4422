package vm

import (
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"strange/internal/ir"
	"strange/internal/runtime"
	"strange/internal/value"
)

var log = commonlog.GetLogger("strange.vm")

// errExit is returned by the exit opcode. Run turns it into a normal
// return with Exited() set.
var errExit = errors.New("exit")

// VM is a stack-based virtual machine for reordered opcode streams.
type VM struct {
	data Stack
	ret  Stack // reserved; no opcode uses it yet
	ip   int   // Instruction pointer: index into code
	code []ir.OpCode

	vars map[string]value.Value
	ops  map[string]Op

	env    *runtime.Env
	sink   runtime.TextSink
	cursor *runtime.Cursor

	exited bool
	runID  string
	log    commonlog.Logger
}

// Option configures a VM at construction.
type Option func(*VM)

// WithTextSink attaches a text sink and unlocks the data opcodes.
func WithTextSink(s runtime.TextSink) Option {
	return func(vm *VM) {
		vm.sink = s
	}
}

// WithCursor attaches a query cursor. It unlocks no opcodes; the handle
// is only kept on the VM.
func WithCursor(c *runtime.Cursor) Option {
	return func(vm *VM) {
		vm.cursor = c
	}
}

// NewVM creates a VM for the given code.
func NewVM(code []ir.OpCode, env *runtime.Env, opts ...Option) *VM {
	if env == nil {
		env = runtime.DefaultEnv()
	}
	vm := &VM{
		data: make(Stack, 0, 64),
		code: code,
		vars: make(map[string]value.Value),
		env:  env,
	}
	for _, opt := range opts {
		opt(vm)
	}

	vm.ops = make(map[string]Op, len(baseOps)+len(dataOps))
	for name, op := range baseOps {
		vm.ops[name] = op
	}
	if vm.sink != nil {
		for name, op := range dataOps {
			vm.ops[name] = op
		}
	}

	vm.runID = uuid.New().String()
	vm.log = commonlog.NewKeyValueLogger(log, "run", vm.runID)
	return vm
}

// Run executes from the current instruction pointer until the end of the
// code, an exit opcode, or the first error.
func (vm *VM) Run() error {
	vm.log.Infof("start at %d of %d opcodes", vm.ip, len(vm.code))
	debug := vm.log.AllowLevel(commonlog.Debug)

	for vm.ip < len(vm.code) {
		addr := vm.ip
		op := vm.code[addr]
		// increment first so jmp can overwrite the pointer
		vm.ip++

		if debug {
			vm.log.Debugf("%04d %s depth=%d", addr, op, vm.data.Len())
		}

		if err := vm.dispatch(op); err != nil {
			if errors.Is(err, errExit) {
				vm.exited = true
				vm.log.Info("exit")
				return nil
			}
			rerr := wrapError(err, op, addr)
			vm.log.Debugf("aborted: %s", rerr)
			return rerr
		}
	}

	vm.log.Infof("finished, stack depth %d", vm.data.Len())
	return nil
}

// Exec replaces the code, rewinds the instruction pointer and runs it.
// The data stack and the variables carry over from earlier runs.
func (vm *VM) Exec(code []ir.OpCode) error {
	vm.code = code
	vm.ip = 0
	vm.exited = false
	return vm.Run()
}

func (vm *VM) dispatch(op ir.OpCode) error {
	switch op.Kind {
	case ir.OpNamed:
		impl, ok := vm.ops[op.Name]
		if !ok {
			return fail(ErrUnknownOpcode, "%q is not an available operation", op.Name)
		}
		return impl.Call(vm)
	case ir.OpLiteral:
		if !op.Lit.IsValid() {
			return fail(ErrUnknownOpcode, "literal of kind %s", op.Lit.Kind)
		}
		vm.data.Push(op.Lit)
		return nil
	default:
		return fail(ErrUnknownOpcode, "opcode kind %d", op.Kind)
	}
}

func wrapError(err error, op ir.OpCode, addr int) *Error {
	e := &Error{Op: op.String(), IP: addr}
	var oe *opError
	if errors.As(err, &oe) {
		e.Kind = oe.kind
		e.Detail = oe.detail
		e.Err = oe.err
		return e
	}
	e.Kind = ErrIO
	e.Err = err
	return e
}

// Exited reports whether the last run ended through the exit opcode.
func (vm *VM) Exited() bool {
	return vm.exited
}

// IP returns the instruction pointer.
func (vm *VM) IP() int {
	return vm.ip
}

// Stack returns a copy of the data stack, bottom first.
func (vm *VM) Stack() []value.Value {
	out := make([]value.Value, len(vm.data))
	copy(out, vm.data)
	return out
}

// Lookup returns the value bound to name by the = opcode.
func (vm *VM) Lookup(name string) (value.Value, bool) {
	v, ok := vm.vars[name]
	return v, ok
}

// Cursor returns the attached query cursor, or nil.
func (vm *VM) Cursor() *runtime.Cursor {
	return vm.cursor
}

// RunID identifies this VM in log output.
func (vm *VM) RunID() string {
	return vm.runID
}

// HasOp reports whether name resolves in this VM's dispatch table.
func (vm *VM) HasOp(name string) bool {
	_, ok := vm.ops[name]
	return ok
}

// Ops lists the operations available in this VM, sorted by name.
func (vm *VM) Ops() []Meta {
	out := make([]Meta, 0, len(vm.ops))
	for _, op := range vm.ops {
		out = append(out, op.Meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
