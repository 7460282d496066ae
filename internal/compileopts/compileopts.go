// Package compileopts collects the CLI/environment-configurable options
// shared by the compiler phases, tagged for github.com/caarlos0/env/v6 the
// same way lang/gc.Options is, so a host process can override any of them
// from the environment instead of only a flag-parsed struct literal
// (spec.md §6's CLI options, generalized into the ambient config story
// SPEC_FULL.md asks every package to carry).
package compileopts

import (
	"os"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

// CompileOptions configures every phase from tokenize through bytecode
// generation. Not every field applies to every phase: SyntaxOnly stops
// after parsing, DumpAST after resolving, and so on; internal/maincmd's
// commands each read only the fields relevant to the phase they run.
type CompileOptions struct {
	// Encoding names the source encoding lang/source should decode from
	// (e.g. "utf-8", "utf-16le", "euc-kr"); empty lets lang/source sniff a
	// byte-order mark and fall back to UTF-8.
	Encoding string `env:"ENCODING" envDefault:"" yaml:"encoding"`

	// TabSize is loaded from the environment or config but is not read by
	// any phase: line:col positions (token.File.Position, token.FormatPos)
	// count a tab as a single column.
	TabSize int `env:"TAB_SIZE" envDefault:"8" yaml:"tab_size"`

	// OptimizeLevel selects how much of lang/optimize's pass pipeline runs;
	// 0 disables it entirely. Mirrors optimize.Level's values positionally.
	OptimizeLevel int `env:"OPTIMIZE_LEVEL" envDefault:"0" yaml:"optimize_level"`

	// SyntaxOnly stops the pipeline after a successful parse: no resolving,
	// no IR generation.
	SyntaxOnly bool `env:"SYNTAX_ONLY" envDefault:"false" yaml:"syntax_only"`

	// DumpAST prints the parsed (and, unless SyntaxOnly, resolved) AST
	// instead of continuing to IR generation.
	DumpAST bool `env:"DUMP_AST" envDefault:"false" yaml:"dump_ast"`

	// DumpIR prints each code unit's IR (lang/ir.Dump) after generation,
	// after optimization if OptimizeLevel is non-zero.
	DumpIR bool `env:"DUMP_IR" envDefault:"false" yaml:"dump_ir"`

	// DumpBytecode prints each code unit in the target bytecode encoding
	// instead of (or in addition to) running it. Reserved for the
	// bytecode-emission phase; unused while that phase only builds IR.
	DumpBytecode bool `env:"DUMP_BYTECODE" envDefault:"false" yaml:"dump_bytecode"`

	// GenerateDebugInfo keeps source-position metadata attached to IR and
	// bytecode for symbolicated stack traces and a source-level debugger,
	// at the cost of larger compiled output.
	GenerateDebugInfo bool `env:"GENERATE_DEBUG_INFO" envDefault:"true" yaml:"generate_debug_info"`

	// WithComments parses and attaches comments to the AST; only useful
	// together with DumpAST.
	WithComments bool `env:"WITH_COMMENTS" envDefault:"false" yaml:"with_comments"`
}

// Default returns CompileOptions populated with their struct-tag defaults.
func Default() CompileOptions {
	var o CompileOptions
	// env.Parse never fails against a zero-value struct with only
	// envDefault tags and no required fields; the error is only possible
	// when a tagged field can't be parsed from an actual environment
	// variable, which Parse (called by callers wanting live overrides)
	// handles separately.
	_ = env.Parse(&o)
	return o
}

// Load returns CompileOptions with defaults applied, then overridden by
// any matching environment variables (all prefixed, per env.Options below).
func Load() (CompileOptions, error) {
	var o CompileOptions
	err := env.ParseWithOptions(&o, env.Options{Prefix: "BUILDSCRIPT_"})
	return o, err
}

// LoadFile reads CompileOptions from a YAML config file (e.g.
// "buildscript.yaml"), layered over the struct-tag defaults: a key the
// file omits keeps its Default() value, since yaml.Unmarshal only touches
// fields present in the document. Environment overrides are intentionally
// not reapplied here, since caarlos0/env can't distinguish "the file set
// this bool to false" from "the file didn't mention it"; callers that want
// both layer Load's env.ParseWithOptions on top of LoadFile's result
// themselves, accepting that an explicit env var always wins.
func LoadFile(path string) (CompileOptions, error) {
	o := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return CompileOptions{}, err
	}
	if err := yaml.Unmarshal(raw, &o); err != nil {
		return CompileOptions{}, err
	}
	return o, nil
}
