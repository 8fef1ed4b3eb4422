package runtime

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// IO is the line-oriented console used by the VM.
type IO interface {
	// ReadLine blocks for one line and returns it without its terminator.
	// At end of input it returns "" and a nil error.
	ReadLine() (string, error)
	// Write writes s and flushes it.
	Write(s string) error
}

// Env aggregates host services used by the VM (console IO for now).
type Env struct {
	ioService IO
}

// IO returns the IO service.
func (e *Env) IO() IO {
	return e.ioService
}

// streamIO is the default IO implementation for CLI/console.
type streamIO struct {
	reader *bufio.Reader
	writer *bufio.Writer
}

// NewStreamIO builds an IO over arbitrary streams.
func NewStreamIO(in io.Reader, out io.Writer) IO {
	return &streamIO{
		reader: bufio.NewReader(in),
		writer: bufio.NewWriter(out),
	}
}

func (s *streamIO) Write(str string) error {
	if _, err := s.writer.WriteString(str); err != nil {
		return err
	}
	return s.writer.Flush()
}

func (s *streamIO) ReadLine() (string, error) {
	line, err := s.reader.ReadString('\n')
	if err != nil {
		// Handle EOF - io.EOF is returned when stdin is closed
		if errors.Is(err, io.EOF) {
			return trimEOL(line), nil
		}
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return trimEOL(line), nil
}

func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

// DefaultEnv returns an Env with standard implementations
// (reading stdin, printing to stdout).
func DefaultEnv() *Env {
	return &Env{
		ioService: NewStreamIO(os.Stdin, os.Stdout),
	}
}

// NewEnv creates a new Env with the given IO service.
// This is useful for tests that need to provide a custom IO implementation.
func NewEnv(io IO) *Env {
	return &Env{
		ioService: io,
	}
}
