package runtime

import (
	"errors"
	"fmt"
	"io"

	"github.com/chzyer/readline"
)

// ReadlineIO is an interactive console with line editing and history.
type ReadlineIO struct {
	rl     *readline.Instance
	prompt string
}

// NewReadlineIO starts a line editor with the given prompt. An empty
// historyFile disables history.
func NewReadlineIO(prompt, historyFile string) (*ReadlineIO, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}
	return &ReadlineIO{rl: rl, prompt: prompt}, nil
}

// Prompt reads one line at the REPL prompt. It returns io.EOF when the
// user ends the session.
func (r *ReadlineIO) Prompt() (string, error) {
	line, err := r.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		if line == "" {
			return "", io.EOF
		}
		return "", nil
	}
	return line, err
}

// ReadLine answers the `read` opcode with an empty prompt.
func (r *ReadlineIO) ReadLine() (string, error) {
	r.rl.SetPrompt("")
	defer r.rl.SetPrompt(r.prompt)

	line, err := r.rl.Readline()
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return line, nil
}

func (r *ReadlineIO) Write(s string) error {
	_, err := io.WriteString(r.rl.Stdout(), s)
	return err
}

func (r *ReadlineIO) Close() error {
	return r.rl.Close()
}
