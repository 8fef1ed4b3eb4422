package vm

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"strange/internal/value"
)

// Set names the table an operation belongs to.
type Set int

const (
	SetBase Set = iota // always available
	SetData            // only with a text sink attached
)

func (s Set) String() string {
	if s == SetData {
		return "data"
	}
	return "base"
}

// Meta describes an operation for listings.
type Meta struct {
	Name  string
	Set   Set
	Stack string // stack effect, top of stack on the right
	Doc   string
}

// Op is one entry of a dispatch table.
type Op struct {
	Meta
	Call func(vm *VM) error
}

var baseOps = table(SetBase, []Op{
	arith("+", "add", addInt),
	arith("-", "subtract", subInt),
	arith("*", "multiply", mulInt),
	arith("/", "floored quotient", func(a, b int64) (int64, error) {
		if b == 0 {
			return 0, fail(ErrDivisionByZero, "%d / 0", a)
		}
		if a == math.MinInt64 && b == -1 {
			return 0, fail(ErrOverflow, "%d / %d", a, b)
		}
		return floorDiv(a, b), nil
	}),
	arith("%", "floored remainder, sign of the divisor", func(a, b int64) (int64, error) {
		if b == 0 {
			return 0, fail(ErrDivisionByZero, "%d %% 0", a)
		}
		return floorMod(a, b), nil
	}),
	{Meta{Name: "==", Stack: "a b -- bool", Doc: "structural equality"}, opEq},
	{Meta{Name: "dup", Stack: "a -- a a", Doc: "duplicate top"}, opDup},
	{Meta{Name: "over", Stack: "a b -- a b a", Doc: "copy second onto top"}, opOver},
	{Meta{Name: "drop", Stack: "a --", Doc: "discard top"}, opDrop},
	{Meta{Name: "swap", Stack: "a b -- b a", Doc: "exchange top two"}, opSwap},
	{Meta{Name: "if", Stack: "test t f -- t|f", Doc: "select t when test is truthy, else f"}, opIf},
	{Meta{Name: "jmp", Stack: "addr --", Doc: "continue at absolute address"}, opJmp},
	{Meta{Name: "cast_int", Stack: "a -- int", Doc: "convert to int"}, opCastInt},
	{Meta{Name: "cast_str", Stack: "a -- string", Doc: "convert to string"}, opCastStr},
	{Meta{Name: "print", Stack: "a --", Doc: "write to stdout"}, opPrint},
	{Meta{Name: "println", Stack: "a --", Doc: "write to stdout with newline"}, opPrintln},
	{Meta{Name: "read", Stack: "-- string", Doc: "read one line of input"}, opRead},
	{Meta{Name: "stack", Stack: "--", Doc: "dump the data stack, top first"}, opStack},
	{Meta{Name: "exit", Stack: "--", Doc: "stop successfully"}, opExit},
})

var dataOps = table(SetData, []Op{
	{Meta{Name: "=", Stack: "name v --", Doc: "bind name to v"}, opBind},
	{Meta{Name: "show", Stack: "name --", Doc: "print the value bound to name"}, opShow},
	{Meta{Name: "save", Stack: "v --", Doc: "write v to the sink"}, opSave},
	{Meta{Name: "use", Stack: "--", Doc: "reserved"}, opUse},
})

func table(set Set, ops []Op) map[string]Op {
	m := make(map[string]Op, len(ops))
	for _, op := range ops {
		if _, dup := m[op.Name]; dup {
			panic(fmt.Sprintf("vm: duplicate operation %q", op.Name))
		}
		op.Set = set
		m[op.Name] = op
	}
	return m
}

// Catalog lists every operation across both tables, base first.
func Catalog() []Meta {
	var out []Meta
	for _, tbl := range []map[string]Op{baseOps, dataOps} {
		start := len(out)
		for _, op := range tbl {
			out = append(out, op.Meta)
		}
		part := out[start:]
		sort.Slice(part, func(i, j int) bool { return part[i].Name < part[j].Name })
	}
	return out
}

// Arithmetic

func arith(name, doc string, f func(a, b int64) (int64, error)) Op {
	return Op{
		Meta: Meta{Name: name, Stack: "a b -- int", Doc: doc},
		Call: func(vm *VM) error {
			a, b, err := vm.data.Pop2()
			if err != nil {
				return err
			}
			if a.Kind != value.KindInt || b.Kind != value.KindInt {
				return fail(ErrTypeMismatch, "%s expects (int, int), got (%s, %s)", name, a.Kind, b.Kind)
			}
			r, err := f(a.Int, b.Int)
			if err != nil {
				return err
			}
			vm.data.Push(value.Int(r))
			return nil
		},
	}
}

func addInt(a, b int64) (int64, error) {
	r := a + b
	if (b > 0 && r < a) || (b < 0 && r > a) {
		return 0, fail(ErrOverflow, "%d + %d", a, b)
	}
	return r, nil
}

func subInt(a, b int64) (int64, error) {
	r := a - b
	if (b > 0 && r > a) || (b < 0 && r < a) {
		return 0, fail(ErrOverflow, "%d - %d", a, b)
	}
	return r, nil
}

func mulInt(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	r := a * b
	// r/b == a misses MinInt64 * -1, which wraps back to MinInt64
	if r/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, fail(ErrOverflow, "%d * %d", a, b)
	}
	return r, nil
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	m := a % b
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}

func opEq(vm *VM) error {
	a, b, err := vm.data.Pop2()
	if err != nil {
		return err
	}
	vm.data.Push(value.Bool(a.Equal(b)))
	return nil
}

// Stack shuffling

func opDup(vm *VM) error {
	v, err := vm.data.Top()
	if err != nil {
		return err
	}
	vm.data.Push(v)
	return nil
}

func opOver(vm *VM) error {
	a, b, err := vm.data.Pop2()
	if err != nil {
		return err
	}
	vm.data.Push(a)
	vm.data.Push(b)
	vm.data.Push(a)
	return nil
}

func opDrop(vm *VM) error {
	_, err := vm.data.Pop()
	return err
}

func opSwap(vm *VM) error {
	a, b, err := vm.data.Pop2()
	if err != nil {
		return err
	}
	vm.data.Push(b)
	vm.data.Push(a)
	return nil
}

// Control

// opIf selects between two values already on the stack. It never runs code.
func opIf(vm *VM) error {
	falseClause, err := vm.data.Pop()
	if err != nil {
		return err
	}
	trueClause, err := vm.data.Pop()
	if err != nil {
		return err
	}
	test, err := vm.data.Pop()
	if err != nil {
		return err
	}
	if test.Truthy() {
		vm.data.Push(trueClause)
	} else {
		vm.data.Push(falseClause)
	}
	return nil
}

// opJmp accepts targets in [0, len(code)]; len(code) ends the run.
func opJmp(vm *VM) error {
	addr, err := vm.data.Pop()
	if err != nil {
		return err
	}
	if addr.Kind != value.KindInt {
		return fail(ErrInvalidJumpTarget, "address must be int, got %s %s", addr.Kind, addr.GoString())
	}
	if addr.Int < 0 || addr.Int > int64(len(vm.code)) {
		return fail(ErrInvalidJumpTarget, "address %d outside [0, %d]", addr.Int, len(vm.code))
	}
	vm.ip = int(addr.Int)
	return nil
}

func opExit(vm *VM) error {
	return errExit
}

// Conversions

func opCastInt(vm *VM) error {
	v, err := vm.data.Pop()
	if err != nil {
		return err
	}
	r, err := value.ToInt(v)
	if err != nil {
		return fail(ErrTypeMismatch, "%s", err)
	}
	vm.data.Push(r)
	return nil
}

func opCastStr(vm *VM) error {
	v, err := vm.data.Pop()
	if err != nil {
		return err
	}
	r, err := value.ToStr(v)
	if err != nil {
		return fail(ErrTypeMismatch, "%s", err)
	}
	vm.data.Push(r)
	return nil
}

// Console

func (vm *VM) write(s string) error {
	if err := vm.env.IO().Write(s); err != nil {
		return failIO(err)
	}
	return nil
}

func opPrint(vm *VM) error {
	v, err := vm.data.Pop()
	if err != nil {
		return err
	}
	return vm.write(v.String())
}

func opPrintln(vm *VM) error {
	v, err := vm.data.Pop()
	if err != nil {
		return err
	}
	return vm.write(v.String() + "\n")
}

func opRead(vm *VM) error {
	line, err := vm.env.IO().ReadLine()
	if err != nil {
		return failIO(err)
	}
	vm.data.Push(value.Str(line))
	return nil
}

func opStack(vm *VM) error {
	var b strings.Builder
	b.WriteString("Data stack (top first):\n")
	for i := len(vm.data) - 1; i >= 0; i-- {
		v := vm.data[i]
		fmt.Fprintf(&b, " - type %s, value '%s'\n", v.TypeName(), v.String())
	}
	return vm.write(b.String())
}

// Data

func opBind(vm *VM) error {
	v, err := vm.data.Pop()
	if err != nil {
		return err
	}
	name, err := vm.data.Pop()
	if err != nil {
		return err
	}
	if name.Kind != value.KindString || name.Str == "" {
		return fail(ErrTypeMismatch, "variable name must be a non-empty string, got %s %s", name.Kind, name.GoString())
	}
	if !v.IsValid() {
		return fail(ErrTypeMismatch, "cannot bind %s to %s", name.Str, v.Kind)
	}
	vm.vars[name.Str] = v
	return nil
}

func opShow(vm *VM) error {
	name, err := vm.data.Pop()
	if err != nil {
		return err
	}
	if name.Kind != value.KindString {
		return fail(ErrTypeMismatch, "variable name must be a string, got %s", name.Kind)
	}
	v, ok := vm.vars[name.Str]
	if !ok {
		return fail(ErrUndefinedVariable, "%s", name.Str)
	}
	return vm.write(v.String() + "\n")
}

func opSave(vm *VM) error {
	v, err := vm.data.Pop()
	if err != nil {
		return err
	}
	if err := vm.sink.WriteText(v.String()); err != nil {
		return failIO(err)
	}
	return nil
}

// opUse is reserved and does nothing.
func opUse(vm *VM) error {
	return nil
}
