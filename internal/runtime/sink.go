package runtime

import (
	"fmt"
	"io"
	"os"
)

// TextSink is a text-writable external sink. Attaching one to the VM
// unlocks the variable opcodes (= show save use).
type TextSink interface {
	// WriteText writes s. The underlying resource is only held for the
	// duration of the call.
	WriteText(s string) error
}

// WriterSink adapts an already open io.Writer.
type WriterSink struct {
	w io.Writer
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) WriteText(str string) error {
	_, err := io.WriteString(s.w, str)
	return err
}

// FileSink appends to a file that is opened and closed around every write.
type FileSink struct {
	Path string
}

func NewFileSink(path string) *FileSink {
	return &FileSink{Path: path}
}

func (s *FileSink) WriteText(str string) error {
	f, err := os.OpenFile(s.Path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open sink %s: %w", s.Path, err)
	}
	if _, err := f.WriteString(str); err != nil {
		f.Close()
		return fmt.Errorf("write sink %s: %w", s.Path, err)
	}
	return f.Close()
}
