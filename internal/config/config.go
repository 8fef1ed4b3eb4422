// Package config handles strange.toml configuration: keyword
// classification tables, logging and the external sink.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the full configuration for one engine invocation.
type Config struct {
	Keywords   Keywords   `toml:"keywords"`
	Log        Log        `toml:"log"`
	Sink       Sink       `toml:"sink"`
	Preprocess Preprocess `toml:"preprocess"`
}

// Keywords holds the three classification tables used by the lexer
// and the preprocessor. Binary and Deferred are subsets of All.
type Keywords struct {
	All      []string `toml:"all"`
	Binary   []string `toml:"binary"`
	Deferred []string `toml:"deferred"`

	all      map[string]bool
	binary   map[string]bool
	deferred map[string]bool
}

// Log configures commonlog.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Sink selects the external sink attached to the VM. File unlocks the
// variable opcodes; Driver/DSN open a query cursor instead.
type Sink struct {
	File   string `toml:"file"`
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

// Preprocess toggles reporting of unsupported expression shapes.
type Preprocess struct {
	Strict bool `toml:"strict"`
}

var baseKeywords = []string{
	"%", "*", "+", "-", "/", "==", "cast_int", "cast_str", "drop", "dup", "exit", "if", "jmp", "over",
	"print", "println", "read", "stack", "swap",
}

var dataKeywords = []string{"=", "show", "save", "use"}

// DefaultKeywords returns the built-in classification tables.
func DefaultKeywords() Keywords {
	all := append(append([]string{}, baseKeywords...), dataKeywords...)
	kw, err := NewKeywords(all, []string{"+", "-", "*", "/", "=="}, []string{"exit"})
	if err != nil {
		panic(fmt.Sprintf("config: invalid default keywords: %v", err))
	}
	return kw
}

// NewKeywords validates and indexes the given tables.
func NewKeywords(all, binary, deferred []string) (Keywords, error) {
	kw := Keywords{All: all, Binary: binary, Deferred: deferred}
	if err := kw.index(); err != nil {
		return Keywords{}, err
	}
	return kw, nil
}

func (k *Keywords) index() error {
	k.all = make(map[string]bool, len(k.All))
	for _, w := range k.All {
		if w == "" {
			return fmt.Errorf("keywords: empty keyword")
		}
		k.all[w] = true
	}
	k.binary = make(map[string]bool, len(k.Binary))
	for _, w := range k.Binary {
		if !k.all[w] {
			return fmt.Errorf("keywords: binary operator %q is not a keyword", w)
		}
		k.binary[w] = true
	}
	k.deferred = make(map[string]bool, len(k.Deferred))
	for _, w := range k.Deferred {
		if !k.all[w] {
			return fmt.Errorf("keywords: deferred terminal %q is not a keyword", w)
		}
		if k.binary[w] {
			return fmt.Errorf("keywords: %q is both binary and deferred", w)
		}
		k.deferred[w] = true
	}
	return nil
}

// IsKeyword reports whether w is in the recognized keyword set.
func (k Keywords) IsKeyword(w string) bool { return k.all[w] }

// IsBinary reports whether w is a pending (binary) operator.
func (k Keywords) IsBinary(w string) bool { return k.binary[w] }

// IsDeferred reports whether w is emitted only after the whole stream.
func (k Keywords) IsDeferred(w string) bool { return k.deferred[w] }

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{Keywords: DefaultKeywords()}
}

// Load reads a TOML file and overlays it on the defaults. Keyword tables
// missing from the file keep their default contents.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML configuration text.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	if err := cfg.Keywords.index(); err != nil {
		return nil, err
	}
	if cfg.Sink.File != "" && cfg.Sink.Driver != "" {
		return nil, fmt.Errorf("sink: file and driver are mutually exclusive")
	}
	if (cfg.Sink.Driver == "") != (cfg.Sink.DSN == "") {
		return nil, fmt.Errorf("sink: driver and dsn must be set together")
	}
	return cfg, nil
}
