package ir_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"strange/internal/ir"
)

func sampleProgram() *ir.Program {
	return &ir.Program{Code: []ir.OpCode{
		ir.Str("x"),
		ir.Int(0),
		ir.Int(-42),
		ir.Bool(false),
		ir.Str(""),
		ir.Named("="),
		ir.Named("println"),
	}}
}

func TestProgramRoundTrip(t *testing.T) {
	p := sampleProgram()

	var buf bytes.Buffer
	if err := ir.WriteProgram(&buf, p); err != nil {
		t.Fatalf("WriteProgram error: %v", err)
	}
	got, err := ir.ReadProgram(&buf)
	if err != nil {
		t.Fatalf("ReadProgram error: %v", err)
	}

	if len(got.Code) != len(p.Code) {
		t.Fatalf("expected %d opcodes, got %d", len(p.Code), len(got.Code))
	}
	for i := range p.Code {
		if got.Code[i] != p.Code[i] {
			t.Errorf("opcode %d: expected %s, got %s", i, p.Code[i], got.Code[i])
		}
	}
}

func TestProgramFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.fsc")
	p := sampleProgram()
	if err := ir.WriteProgramToFile(path, p); err != nil {
		t.Fatalf("WriteProgramToFile error: %v", err)
	}
	got, err := ir.ReadProgramFromFile(path)
	if err != nil {
		t.Fatalf("ReadProgramFromFile error: %v", err)
	}
	if ir.Format(got.Code) != ir.Format(p.Code) {
		t.Fatalf("expected %s, got %s", ir.Format(p.Code), ir.Format(got.Code))
	}
}

func TestReadProgram_DetectsCorruption(t *testing.T) {
	var buf bytes.Buffer
	if err := ir.WriteProgram(&buf, sampleProgram()); err != nil {
		t.Fatalf("WriteProgram error: %v", err)
	}
	data := buf.Bytes()
	data[len(data)-1] ^= 0xFF

	_, err := ir.ReadProgram(bytes.NewReader(data))
	if err == nil || !strings.Contains(err.Error(), "checksum mismatch") {
		t.Fatalf("expected checksum mismatch, got %v", err)
	}
}

func TestReadProgram_BadMagic(t *testing.T) {
	_, err := ir.ReadProgram(strings.NewReader("AVC2...................................."))
	if err == nil || !strings.Contains(err.Error(), "invalid magic") {
		t.Fatalf("expected invalid magic error, got %v", err)
	}
}

func TestWriteProgram_RejectsInvalidOpcode(t *testing.T) {
	p := &ir.Program{Code: []ir.OpCode{ir.Int(1), {}}}
	var buf bytes.Buffer
	if err := ir.WriteProgram(&buf, p); err == nil {
		t.Fatal("expected error for invalid opcode")
	}
}

func TestFormat(t *testing.T) {
	code := []ir.OpCode{ir.Int(3), ir.Str("a b"), ir.Bool(true), ir.Named("+")}
	want := `3 "a b" true +`
	if got := ir.Format(code); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
