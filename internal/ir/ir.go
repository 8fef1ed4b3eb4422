package ir

import (
	"strings"

	"strange/internal/value"
)

// OpKind tells a literal push apart from a named operation.
type OpKind uint8

const (
	OpInvalid OpKind = iota
	OpLiteral        // push Lit
	OpNamed          // resolve Name through the dispatch table
)

// OpCode is one entry of a token or opcode stream.
// Raw tokens produced by the lexer and the reordered program share this type.
type OpCode struct {
	Kind OpKind      `cbor:"o"`
	Name string      `cbor:"n,omitempty"`
	Lit  value.Value `cbor:"v,omitempty"`
}

// Lit builds a literal opcode.
func Lit(v value.Value) OpCode {
	return OpCode{Kind: OpLiteral, Lit: v}
}

// Int, Str and Bool are shorthands for literal opcodes.
func Int(n int64) OpCode  { return Lit(value.Int(n)) }
func Str(s string) OpCode { return Lit(value.Str(s)) }
func Bool(b bool) OpCode  { return Lit(value.Bool(b)) }

// Named builds an operation reference.
func Named(name string) OpCode {
	return OpCode{Kind: OpNamed, Name: name}
}

// IsNamed reports whether op refers to an operation by name.
func (op OpCode) IsNamed() bool {
	return op.Kind == OpNamed
}

func (op OpCode) String() string {
	switch op.Kind {
	case OpNamed:
		return op.Name
	case OpLiteral:
		return op.Lit.GoString()
	default:
		return "<invalid>"
	}
}

// Program is a reordered opcode sequence ready to run.
type Program struct {
	Code []OpCode `cbor:"code"`
}

// Format renders a stream on one line, separated by spaces.
func Format(code []OpCode) string {
	var b strings.Builder
	for i, op := range code {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(op.String())
	}
	return b.String()
}
