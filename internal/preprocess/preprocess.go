// Package preprocess turns a flat infix token stream into the postfix
// opcode order the VM executes.
//
// Only one binary expression is reordered at a time: a single pending
// operator slot waits for its right-hand operand. Chained or nested
// expressions such as `3 + 4 * 2` are not supported and come out in an
// order that rarely means what the source intended.
package preprocess

import (
	"fmt"
	"strings"

	"strange/internal/ir"
)

// Classifier answers keyword membership questions. config.Keywords
// satisfies it.
type Classifier interface {
	IsKeyword(w string) bool
	IsBinary(w string) bool
	IsDeferred(w string) bool
}

// Issue describes one place where the input used a shape the reordering
// does not support.
type Issue struct {
	Index int // token index in the input stream, or len(tokens) for end of input
	Msg   string
}

func (i Issue) String() string {
	return fmt.Sprintf("token %d: %s", i.Index, i.Msg)
}

// Diagnostic is returned by ReorderStrict when at least one Issue was found.
type Diagnostic struct {
	Issues []Issue
}

func (d *Diagnostic) Error() string {
	parts := make([]string, len(d.Issues))
	for i, is := range d.Issues {
		parts[i] = is.String()
	}
	return "unsupported expression: " + strings.Join(parts, "; ")
}

// Reorder converts tokens to postfix in one forward pass:
//
//   - with an operator pending, emit the buffered operands, the token
//     itself and the operator, then clear both buffers;
//   - a deferred terminal is queued until the end of the stream;
//   - a binary operator becomes the pending operator;
//   - any other keyword is emitted in place;
//   - everything else is buffered as an operand.
//
// Operands still buffered and an operator still pending when the input
// runs out are not emitted.
func Reorder(tokens []ir.OpCode, kw Classifier) []ir.OpCode {
	out, _ := reorder(tokens, kw, false)
	return out
}

// ReorderStrict produces the same output as Reorder but also reports
// every spot where tokens were reordered in a way the flat
// single-operator form does not cover.
func ReorderStrict(tokens []ir.OpCode, kw Classifier) ([]ir.OpCode, error) {
	out, issues := reorder(tokens, kw, true)
	if len(issues) > 0 {
		return out, &Diagnostic{Issues: issues}
	}
	return out, nil
}

func reorder(tokens []ir.OpCode, kw Classifier, diagnose bool) ([]ir.OpCode, []Issue) {
	out := make([]ir.OpCode, 0, len(tokens))
	var (
		operands []ir.OpCode
		pending  *ir.OpCode
		tail     []ir.OpCode
		issues   []Issue
	)
	report := func(i int, format string, args ...any) {
		if diagnose {
			issues = append(issues, Issue{Index: i, Msg: fmt.Sprintf(format, args...)})
		}
	}

	for i, t := range tokens {
		isKeyword := t.IsNamed() && kw.IsKeyword(t.Name)

		switch {
		case pending != nil:
			if isKeyword {
				report(i, "keyword %s used as right-hand operand of %s", t.Name, pending.Name)
			}
			out = append(out, operands...)
			out = append(out, t, *pending)
			operands = operands[:0]
			pending = nil
		case isKeyword && kw.IsDeferred(t.Name):
			tail = append(tail, t)
		case isKeyword && kw.IsBinary(t.Name):
			op := t
			pending = &op
		case isKeyword:
			if len(operands) > 0 {
				report(i, "%d operand(s) held back past %s", len(operands), t.Name)
			}
			out = append(out, t)
		default:
			operands = append(operands, t)
		}
	}

	if pending != nil {
		report(len(tokens), "operator %s has no right-hand operand", pending.Name)
	}
	if len(operands) > 0 {
		report(len(tokens), "%d operand(s) never emitted: %s", len(operands), ir.Format(operands))
	}

	return append(out, tail...), issues
}
