package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"strange/internal/runtime"
	"strange/internal/vm"
)

const prompt = "strange> "

func cmdRepl(args []string) error {
	o, _, err := parseFlags("repl", args, false)
	if err != nil {
		return err
	}

	history := ""
	if home, err := os.UserHomeDir(); err == nil {
		history = filepath.Join(home, ".strange_history")
	}
	rl, err := runtime.NewReadlineIO(prompt, history)
	if err != nil {
		return err
	}
	defer rl.Close()

	vmOpts, closeSink, err := openSink(o.cfg.Sink)
	if err != nil {
		return err
	}
	defer closeSink()

	m := vm.NewVM(nil, runtime.NewEnv(rl), vmOpts...)
	for {
		line, err := rl.Prompt()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case ":quit", ":q":
			return nil
		case ":ops":
			for _, op := range m.Ops() {
				rl.Write(fmt.Sprintf("%-10s %s\n", op.Name, op.Stack))
			}
			continue
		}

		code, err := compile(line, o)
		if err != nil {
			rl.Write(fmt.Sprintf("error: %s\n", err))
			continue
		}
		if err := m.Exec(code); err != nil {
			rl.Write(fmt.Sprintf("error: %s\n", err))
			continue
		}
		if m.Exited() {
			return nil
		}
	}
}
