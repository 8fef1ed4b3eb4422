package preprocess_test

import (
	"errors"
	"strings"
	"testing"

	"strange/internal/config"
	"strange/internal/ir"
	"strange/internal/preprocess"
)

func assertCode(t *testing.T, got, want []ir.OpCode) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected [%s], got [%s]", ir.Format(want), ir.Format(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected [%s], got [%s]", ir.Format(want), ir.Format(got))
		}
	}
}

func TestReorder(t *testing.T) {
	kw := config.DefaultKeywords()
	add, mul, eq := ir.Named("+"), ir.Named("*"), ir.Named("==")
	pln, dup, exit, stack := ir.Named("println"), ir.Named("dup"), ir.Named("exit"), ir.Named("stack")

	tests := []struct {
		name string
		in   []ir.OpCode
		want []ir.OpCode
	}{
		{
			name: "infix to postfix",
			in:   []ir.OpCode{ir.Int(1), add, ir.Int(2)},
			want: []ir.OpCode{ir.Int(1), ir.Int(2), add},
		},
		{
			name: "string equality",
			in:   []ir.OpCode{ir.Str("a"), eq, ir.Str("b")},
			want: []ir.OpCode{ir.Str("a"), ir.Str("b"), eq},
		},
		{
			name: "keyword after expression emitted in place",
			in:   []ir.OpCode{ir.Int(1), add, ir.Int(2), pln},
			want: []ir.OpCode{ir.Int(1), ir.Int(2), add, pln},
		},
		{
			name: "all buffered operands precede the right operand",
			in:   []ir.OpCode{ir.Int(1), ir.Int(2), ir.Int(3), mul, ir.Int(4)},
			want: []ir.OpCode{ir.Int(1), ir.Int(2), ir.Int(3), ir.Int(4), mul},
		},
		{
			name: "deferred terminal moves to the end",
			in:   []ir.OpCode{exit, ir.Int(1), add, ir.Int(2), pln},
			want: []ir.OpCode{ir.Int(1), ir.Int(2), add, pln, exit},
		},
		{
			name: "keyword as right operand",
			in:   []ir.OpCode{ir.Int(5), add, dup},
			want: []ir.OpCode{ir.Int(5), dup, add},
		},
		{
			name: "operands without operator are never emitted",
			in:   []ir.OpCode{ir.Str("hi"), pln},
			want: []ir.OpCode{pln},
		},
		{
			name: "dangling operator is dropped",
			in:   []ir.OpCode{ir.Int(1), add},
			want: []ir.OpCode{},
		},
		{
			name: "unknown name is an operand",
			in:   []ir.OpCode{ir.Named("nope"), add, ir.Int(1)},
			want: []ir.OpCode{ir.Named("nope"), ir.Int(1), add},
		},
		{
			name: "empty input",
			in:   nil,
			want: []ir.OpCode{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertCode(t, preprocess.Reorder(tt.in, kw), tt.want)
		})
	}

	// deferred terminals keep their relative order
	kw2, err := config.NewKeywords(kw.All, kw.Binary, []string{"stack", "exit"})
	if err != nil {
		t.Fatal(err)
	}
	got := preprocess.Reorder([]ir.OpCode{exit, stack, dup}, kw2)
	assertCode(t, got, []ir.OpCode{dup, exit, stack})
}

// [3 4 + 2 *] chains two operators. 2 is taken as the right-hand operand
// of `+`, then `*` becomes the pending operator and is never committed.
// Written infix, the same chain happens to come out left-to-right.
func TestReorder_ChainedOperators(t *testing.T) {
	in := []ir.OpCode{ir.Int(3), ir.Int(4), ir.Named("+"), ir.Int(2), ir.Named("*")}
	got := preprocess.Reorder(in, config.DefaultKeywords())
	assertCode(t, got, []ir.OpCode{ir.Int(3), ir.Int(4), ir.Int(2), ir.Named("+")})

	in = []ir.OpCode{ir.Int(3), ir.Named("+"), ir.Int(4), ir.Named("*"), ir.Int(2)}
	got = preprocess.Reorder(in, config.DefaultKeywords())
	assertCode(t, got, []ir.OpCode{ir.Int(3), ir.Int(4), ir.Named("+"), ir.Int(2), ir.Named("*")})
}

func TestReorder_Deterministic(t *testing.T) {
	in := []ir.OpCode{ir.Int(1), ir.Named("-"), ir.Int(2), ir.Named("println"), ir.Named("exit")}
	kw := config.DefaultKeywords()
	a := preprocess.Reorder(in, kw)
	b := preprocess.Reorder(in, kw)
	assertCode(t, a, b)
}

func TestReorderStrict(t *testing.T) {
	kw := config.DefaultKeywords()

	out, err := preprocess.ReorderStrict([]ir.OpCode{ir.Int(1), ir.Named("+"), ir.Int(2), ir.Named("println")}, kw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertCode(t, out, []ir.OpCode{ir.Int(1), ir.Int(2), ir.Named("+"), ir.Named("println")})

	tests := []struct {
		name string
		in   []ir.OpCode
		want string
	}{
		{"chained", []ir.OpCode{ir.Int(3), ir.Named("+"), ir.Named("*"), ir.Int(2)}, "keyword * used as right-hand operand of +"},
		{"dangling", []ir.OpCode{ir.Int(3), ir.Int(4), ir.Named("+"), ir.Int(2), ir.Named("*")}, "operator * has no right-hand operand"},
		{"held back", []ir.OpCode{ir.Str("hi"), ir.Named("println")}, "1 operand(s) held back past println"},
		{"leftover", []ir.OpCode{ir.Int(1)}, "1 operand(s) never emitted: 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lenient := preprocess.Reorder(tt.in, kw)
			out, err := preprocess.ReorderStrict(tt.in, kw)
			var diag *preprocess.Diagnostic
			if !errors.As(err, &diag) {
				t.Fatalf("expected *Diagnostic, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
			assertCode(t, out, lenient)
		})
	}
}
