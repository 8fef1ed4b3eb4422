package ir

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

var magicV1 = [4]byte{'F', 'S', 'C', '1'}

// maxPayload bounds the payload length read from a header.
const maxPayload = 64 << 20

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("ir: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

func WriteProgramToFile(filename string, p *Program) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := WriteProgram(f, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func ReadProgramFromFile(filename string) (*Program, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadProgram(f)
}

// WriteProgram writes p as: magic | blake2b-256(payload) | uint32 len | CBOR payload.
func WriteProgram(w io.Writer, p *Program) error {
	for i, op := range p.Code {
		if err := checkOp(op); err != nil {
			return fmt.Errorf("opcode %d: %w", i, err)
		}
	}
	payload, err := cborEncMode.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode program: %w", err)
	}
	sum := blake2b.Sum256(payload)

	if _, err := w.Write(magicV1[:]); err != nil {
		return err
	}
	if _, err := w.Write(sum[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(payload))); err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

func ReadProgram(r io.Reader) (*Program, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	if hdr != magicV1 {
		return nil, fmt.Errorf("invalid magic header: %q", string(hdr[:]))
	}

	var sum [blake2b.Size256]byte
	if _, err := io.ReadFull(r, sum[:]); err != nil {
		return nil, err
	}

	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	if n > maxPayload {
		return nil, fmt.Errorf("payload too large: %d bytes", n)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}

	got := blake2b.Sum256(payload)
	if !bytes.Equal(got[:], sum[:]) {
		return nil, fmt.Errorf("checksum mismatch: program is corrupt")
	}

	var p Program
	if err := cbor.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}
	for i, op := range p.Code {
		if err := checkOp(op); err != nil {
			return nil, fmt.Errorf("opcode %d: %w", i, err)
		}
	}
	return &p, nil
}

func checkOp(op OpCode) error {
	switch op.Kind {
	case OpNamed:
		if op.Name == "" {
			return fmt.Errorf("empty operation name")
		}
	case OpLiteral:
		if !op.Lit.IsValid() {
			return fmt.Errorf("unknown literal kind %d", op.Lit.Kind)
		}
	default:
		return fmt.Errorf("unknown opcode kind %d", op.Kind)
	}
	return nil
}
