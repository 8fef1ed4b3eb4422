package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the type of a value at runtime.
type Kind int

const (
	KindInvalid Kind = iota
	KindInt
	KindString
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	default:
		return "invalid"
	}
}

// Value is a universal value for the VM and the opcode stream.
// Values are never mutated once built; ops create new ones.
type Value struct {
	Kind Kind   `cbor:"k"`
	Int  int64  `cbor:"i,omitempty"`
	Str  string `cbor:"s,omitempty"`
	Bool bool   `cbor:"b,omitempty"`
}

func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindString:
		return v.Str
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	default:
		return "<invalid>"
	}
}

// GoString renders the value the way it would be written in source.
func (v Value) GoString() string {
	if v.Kind == KindString {
		return strconv.Quote(v.Str)
	}
	return v.String()
}

// TypeName is the kind name shown in stack dumps.
func (v Value) TypeName() string {
	return v.Kind.String()
}

// Truthy reports whether v selects the true branch of `if`.
// false, 0 and "" are falsy; every other valid value is truthy.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindInt:
		return v.Int != 0
	case KindString:
		return v.Str != ""
	case KindBool:
		return v.Bool
	default:
		return false
	}
}

// Equal compares structurally. Values of different kinds are never equal.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindInt:
		return v.Int == other.Int
	case KindString:
		return v.Str == other.Str
	case KindBool:
		return v.Bool == other.Bool
	default:
		return true
	}
}

// IsValid reports whether v holds one of the runtime kinds.
func (v Value) IsValid() bool {
	return v.Kind == KindInt || v.Kind == KindString || v.Kind == KindBool
}

// Helpers

func Int(v int64) Value {
	return Value{Kind: KindInt, Int: v}
}

func Str(s string) Value {
	return Value{Kind: KindString, Str: s}
}

func Bool(v bool) Value {
	return Value{Kind: KindBool, Bool: v}
}

// ToInt converts v to an integer: ints pass through, strings are parsed
// as base-10 and bools become 1 or 0.
func ToInt(v Value) (Value, error) {
	switch v.Kind {
	case KindInt:
		return v, nil
	case KindBool:
		if v.Bool {
			return Int(1), nil
		}
		return Int(0), nil
	case KindString:
		n, err := strconv.ParseInt(strings.TrimSpace(v.Str), 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("cannot convert %q to int", v.Str)
		}
		return Int(n), nil
	default:
		return Value{}, fmt.Errorf("cannot convert %s to int", v.TypeName())
	}
}

// ToStr converts v to its textual form.
func ToStr(v Value) (Value, error) {
	if !v.IsValid() {
		return Value{}, fmt.Errorf("cannot convert %s to string", v.TypeName())
	}
	return Str(v.String()), nil
}
