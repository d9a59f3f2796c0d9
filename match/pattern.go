// Package match implements the Orchestrator of spec §4.9 and the public
// compiled-pattern facade, grounded on regex.go's Compile/MustCompile/
// CompileWithConfig API and meta/engine.go's strategy-dispatch shape
// (Engine.find picks a strategy, runs it, converts to indices).
package match

import (
	"github.com/coregx/reflexgrep/asm"
	"github.com/coregx/reflexgrep/dfa/core"
	"github.com/coregx/reflexgrep/parser"
	"github.com/coregx/reflexgrep/predictor"
	"github.com/coregx/reflexgrep/prefilter"
	"github.com/coregx/reflexgrep/vm"
)

// Config configures pattern compilation, mirroring meta/config.go's plain
// Config-struct-plus-DefaultConfig() convention.
type Config struct {
	Parser    parser.Options
	DFA       core.Config
	Predictor predictor.Config
}

// DefaultConfig returns sensible defaults for every compilation stage.
func DefaultConfig() Config {
	return Config{
		Parser:    parser.DefaultOptions(),
		DFA:       core.DefaultConfig(),
		Predictor: predictor.DefaultConfig(),
	}
}

// Pattern is a fully compiled pattern: parsed position automaton, subset
// construction, assembled bytecode, predictor tables, and the reusable
// Prefilter built from them.
type Pattern struct {
	Source    string
	Parsed    *parser.Result
	DFA       *core.DFA
	Program   *asm.Program
	Tables    *predictor.Tables
	Prefilter prefilter.Prefilter
	interp    *vm.Interpreter
}

// Compile runs the full pipeline of spec §4.1-§4.5 over pattern.
func Compile(pattern string, cfg Config) (*Pattern, error) {
	parsed, err := parser.Parse(pattern, cfg.Parser)
	if err != nil {
		return nil, err
	}
	d, err := core.Build(parsed, cfg.DFA)
	if err != nil {
		return nil, err
	}
	prog := asm.New(d).Assemble()
	tables := predictor.Analyze(d, cfg.Predictor)

	p := &Pattern{
		Source:  pattern,
		Parsed:  parsed,
		DFA:     d,
		Program: prog,
		Tables:  tables,
		interp:  vm.New(prog),
	}
	p.Prefilter = prefilter.NewFromTables(tables)
	return p, nil
}

// MustCompile is Compile, panicking on error.
func MustCompile(pattern string, cfg Config) *Pattern {
	p, err := Compile(pattern, cfg)
	if err != nil {
		panic("match: Compile(" + pattern + "): " + err.Error())
	}
	return p
}
