package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"strange/internal/config"
	"strange/internal/ir"
	"strange/internal/lexer"
	"strange/internal/preprocess"
	"strange/internal/runtime"
	"strange/internal/vm"
)

const version = "0.1.0"

var log = commonlog.GetLogger("strange.cli")

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]

	var err error
	switch cmd {
	case "run":
		err = cmdRun(os.Args[2:])
	case "build":
		err = cmdBuild(os.Args[2:])
	case "tokens":
		err = cmdTokens(os.Args[2:])
	case "repl":
		err = cmdRepl(os.Args[2:])
	case "ops":
		cmdOps()
	case "help", "-h", "--help":
		usage()
	case "version", "-v", "--version":
		fmt.Println("strange", version)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`strange scripting engine

Usage:
  strange run [flags] <file.fs|file.fsc>
  strange build [flags] <file.fs> [-o out.fsc]
  strange tokens [flags] <file.fs>
  strange repl [flags]

Commands:
  run      Reorder and run .fs source, or run a .fsc program
  build    Reorder .fs source into a .fsc program file
  tokens   Print the reordered opcode stream
  repl     Interactive session; variables survive between lines
  ops      List operations
  version  Print version

Flags:
  -config   strange.toml with keyword tables, sink and log settings
  -sink     text sink file (unlocks = show save use)
  -db       query cursor as driver:dsn (sqlite, postgres)
  -strict   fail on expressions the reordering does not support
  -postfix  treat source as already reordered
  -v        log verbosity (-4 none .. 2 debug)
  -log      log file (default stderr)`)
}

// options are the flags shared by all commands.
type options struct {
	configPath string
	sinkFile   string
	db         string
	strict     bool
	postfix    bool
	verbosity  int
	logFile    string
	out        string

	cfg *config.Config
}

func parseFlags(name string, args []string, withOut bool) (*options, *flag.FlagSet, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	o := &options{}
	fs.StringVar(&o.configPath, "config", "", "configuration file")
	fs.StringVar(&o.sinkFile, "sink", "", "text sink file")
	fs.StringVar(&o.db, "db", "", "query cursor as driver:dsn")
	fs.BoolVar(&o.strict, "strict", false, "fail on unsupported expressions")
	fs.BoolVar(&o.postfix, "postfix", false, "source is already in postfix order")
	fs.IntVar(&o.verbosity, "v", 0, "log verbosity")
	fs.StringVar(&o.logFile, "log", "", "log file")
	if withOut {
		fs.StringVar(&o.out, "o", "", "output file (default: <input>.fsc)")
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, nil, err
		}
	}
	// flags win over the file
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["v"] {
		cfg.Log.Verbosity = o.verbosity
	}
	if set["log"] {
		cfg.Log.File = o.logFile
	}
	if set["strict"] {
		cfg.Preprocess.Strict = o.strict
	}
	if set["sink"] {
		cfg.Sink = config.Sink{File: o.sinkFile}
	}
	if set["db"] {
		driver, dsn, err := runtime.ParseDSN(o.db)
		if err != nil {
			return nil, nil, err
		}
		cfg.Sink = config.Sink{Driver: driver, DSN: dsn}
	}
	if set["sink"] && set["db"] {
		return nil, nil, fmt.Errorf("-sink and -db are mutually exclusive")
	}
	o.cfg = cfg

	if cfg.Log.File != "" {
		commonlog.Configure(cfg.Log.Verbosity, &cfg.Log.File)
	} else {
		commonlog.Configure(cfg.Log.Verbosity, nil)
	}
	return o, fs, nil
}

// -------------- RUN --------------

func cmdRun(args []string) error {
	o, fs, err := parseFlags("run", args, false)
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("run: missing input file")
	}

	code, err := loadProgram(fs.Arg(0), o)
	if err != nil {
		return err
	}

	vmOpts, closeSink, err := openSink(o.cfg.Sink)
	if err != nil {
		return err
	}
	defer closeSink()

	m := vm.NewVM(code, runtime.DefaultEnv(), vmOpts...)
	if err := m.Run(); err != nil {
		return err
	}
	if m.Exited() {
		closeSink()
		os.Exit(0)
	}
	return nil
}

// openSink turns the sink settings into VM options. The returned close
// function is safe to call more than once.
func openSink(s config.Sink) ([]vm.Option, func(), error) {
	switch {
	case s.File != "":
		return []vm.Option{vm.WithTextSink(runtime.NewFileSink(s.File))}, func() {}, nil
	case s.Driver != "":
		c, err := runtime.OpenCursor(context.Background(), s.Driver, s.DSN)
		if err != nil {
			return nil, nil, err
		}
		log.Infof("query cursor open on %s", c.Driver)
		closed := false
		return []vm.Option{vm.WithCursor(c)}, func() {
			if !closed {
				closed = true
				commonlog.CallAndLogError(c.Close, "close cursor", log)
			}
		}, nil
	default:
		return nil, func() {}, nil
	}
}

// -------------- BUILD --------------

func cmdBuild(args []string) error {
	o, fs, err := parseFlags("build", args, true)
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("build: missing input file")
	}
	input := fs.Arg(0)

	if filepath.Ext(input) != ".fs" {
		return fmt.Errorf("build: input must be .fs source file")
	}

	out := o.out
	if out == "" {
		base := input[:len(input)-len(filepath.Ext(input))]
		out = base + ".fsc"
	}

	code, err := loadProgram(input, o)
	if err != nil {
		return err
	}

	if err := ir.WriteProgramToFile(out, &ir.Program{Code: code}); err != nil {
		return fmt.Errorf("failed to write program: %w", err)
	}
	log.Infof("wrote %d opcodes to %s", len(code), out)
	return nil
}

// -------------- TOKENS --------------

func cmdTokens(args []string) error {
	o, fs, err := parseFlags("tokens", args, false)
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("tokens: missing input file")
	}
	code, err := loadProgram(fs.Arg(0), o)
	if err != nil {
		return err
	}
	for i, op := range code {
		fmt.Printf("%04d %s\n", i, op)
	}
	return nil
}

// -------------- OPS --------------

func cmdOps() {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSET\tSTACK\tDESCRIPTION")
	for _, m := range vm.Catalog() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.Name, m.Set, m.Stack, m.Doc)
	}
	w.Flush()
}

// -------------- Pipeline: source -> tokens -> reordered code --------------

func loadProgram(path string, o *options) ([]ir.OpCode, error) {
	if filepath.Ext(path) == ".fsc" {
		p, err := ir.ReadProgramFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read program: %w", err)
		}
		return p.Code, nil
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return compile(string(src), o)
}

func compile(src string, o *options) ([]ir.OpCode, error) {
	tokens, err := lexer.Tokens(src, o.cfg.Keywords)
	if err != nil {
		return nil, err
	}
	if o.postfix {
		return tokens, nil
	}

	code, err := preprocess.ReorderStrict(tokens, o.cfg.Keywords)
	if err != nil {
		if o.cfg.Preprocess.Strict {
			return nil, err
		}
		log.Warningf("%s", err)
	}
	return code, nil
}
