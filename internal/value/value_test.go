package value

import "testing"

func TestTruthy(t *testing.T) {
	tests := []struct {
		v    Value
		want bool
	}{
		{Int(0), false},
		{Int(-1), true},
		{Str(""), false},
		{Str("0"), true},
		{Bool(false), false},
		{Bool(true), true},
		{Value{}, false},
	}
	for _, tt := range tests {
		if got := tt.v.Truthy(); got != tt.want {
			t.Errorf("%#v: expected %v, got %v", tt.v, tt.want, got)
		}
	}
}

func TestEqual(t *testing.T) {
	if !Int(3).Equal(Int(3)) {
		t.Error("3 == 3")
	}
	if Int(1).Equal(Bool(true)) {
		t.Error("kinds differ, must not be equal")
	}
	if Str("1").Equal(Int(1)) {
		t.Error("kinds differ, must not be equal")
	}
	if !Str("a").Equal(Str("a")) || Str("a").Equal(Str("b")) {
		t.Error("string equality")
	}
}

func TestToInt(t *testing.T) {
	tests := []struct {
		in      Value
		want    int64
		wantErr bool
	}{
		{Int(7), 7, false},
		{Str(" 42\n"), 42, false},
		{Str("-5"), -5, false},
		{Bool(true), 1, false},
		{Bool(false), 0, false},
		{Str("abc"), 0, true},
		{Str(""), 0, true},
		{Value{}, 0, true},
	}
	for _, tt := range tests {
		got, err := ToInt(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%#v: expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("%#v: %v", tt.in, err)
			continue
		}
		if got.Kind != KindInt || got.Int != tt.want {
			t.Errorf("%#v: expected %d, got %#v", tt.in, tt.want, got)
		}
	}
}

func TestToStr(t *testing.T) {
	for in, want := range map[Value]string{
		Int(-12):    "-12",
		Bool(true):  "true",
		Bool(false): "false",
		Str("x y"):  "x y",
	} {
		got, err := ToStr(in)
		if err != nil {
			t.Fatal(err)
		}
		if got.Kind != KindString || got.Str != want {
			t.Errorf("%#v: expected %q, got %#v", in, want, got)
		}
	}
	if _, err := ToStr(Value{}); err == nil {
		t.Error("expected error for invalid value")
	}
}

func TestGoString(t *testing.T) {
	if got := Str(`a"b`).GoString(); got != `"a\"b"` {
		t.Errorf("got %s", got)
	}
	if got := Int(3).GoString(); got != "3" {
		t.Errorf("got %s", got)
	}
}
