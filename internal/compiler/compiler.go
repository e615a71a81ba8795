// Package compiler runs the whole pipeline on one source file: lexing,
// parsing, type checking with imports, code generation and, optionally,
// verification of the emitted IR.
package compiler

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	"ember/internal/ast"
	"ember/internal/codegen"
	"ember/internal/errors"
	"ember/internal/irtext"
	"ember/internal/lexer"
	"ember/internal/parser"
	"ember/internal/semantic"
)

var log = commonlog.GetLogger("ember.compiler")

// Stage names the last pipeline stage a Result reached.
type Stage int

const (
	StageLex Stage = iota
	StageParse
	StageCheck
	StageGenerate
	StageVerify
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageLex:
		return "lex"
	case StageParse:
		return "parse"
	case StageCheck:
		return "check"
	case StageGenerate:
		return "generate"
	case StageVerify:
		return "verify"
	}
	return "done"
}

type Options struct {
	// TargetTriple is written into the module header when set.
	TargetTriple string
	// Verify re-reads the generated IR and checks its structure.
	Verify bool
	// ReadFile loads imported modules; os.ReadFile when nil.
	ReadFile func(path string) ([]byte, error)
}

// Result holds everything one compilation produced. Each stage's output is
// set once that stage succeeded; Stage is where the pipeline stopped.
type Result struct {
	Path     string
	Source   string
	Stage    Stage
	Tokens   []lexer.Token
	Program  *ast.Program
	Modules  []semantic.Module
	IR       string
	Errors   []*errors.CompilerError
	Warnings []*errors.CompilerError
}

// OK reports whether the compilation produced IR without errors.
func (r *Result) OK() bool {
	return len(r.Errors) == 0 && r.Stage == StageDone
}

// Imports lists the paths of every module the program imported, directly or
// not.
func (r *Result) Imports() []string {
	var paths []string
	for i, m := range r.Modules {
		if i < len(r.Modules)-1 {
			paths = append(paths, m.Path)
		}
	}
	return paths
}

// Compile runs the pipeline on source. Every call uses fresh lexer, parser,
// checker and generator state.
func Compile(path, source string, opts Options) *Result {
	r := &Result{Path: path, Source: source}
	log.Debugf("compiling %s", path)

	tokens, lexErrors := lexer.ScanTokens(source, path)
	r.Tokens = tokens
	if len(lexErrors) > 0 {
		r.Errors = lexErrors
		return r
	}

	r.Stage = StageParse
	prog, err := parser.Parse(path, tokens)
	if err != nil {
		r.fail(err)
		return r
	}
	r.Program = prog

	r.Stage = StageCheck
	var checkerOpts []semantic.Option
	if opts.ReadFile != nil {
		checkerOpts = append(checkerOpts, semantic.WithReadFile(opts.ReadFile))
	}
	checker := semantic.NewChecker(checkerOpts...)
	err = checker.CheckProgram(prog)
	r.Warnings = checker.Warnings()
	if err != nil {
		r.fail(err)
		return r
	}
	r.Modules = checker.Modules()

	r.Stage = StageGenerate
	gen := &codegen.Generator{TargetTriple: opts.TargetTriple}
	for _, m := range r.Modules[:len(r.Modules)-1] {
		gen.Imports = append(gen.Imports, m.Program)
	}
	out, err := gen.Generate(prog)
	if err != nil {
		r.fail(err)
		return r
	}
	r.IR = out

	if opts.Verify {
		r.Stage = StageVerify
		if err := irtext.Verify(path+".ll", out); err != nil {
			r.fail(fmt.Errorf("generated IR is malformed: %w", err))
			return r
		}
	}

	r.Stage = StageDone
	log.Debugf("compiled %s with %d warnings", path, len(r.Warnings))
	return r
}

// CompileFile reads path and compiles it.
func CompileFile(path string, opts Options) (*Result, error) {
	read := opts.ReadFile
	if read == nil {
		read = os.ReadFile
	}
	source, err := read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Compile(path, string(source), opts), nil
}

// fail records err as a diagnostic. Errors that are not diagnostics already
// are internal failures.
func (r *Result) fail(err error) {
	var ce *errors.CompilerError
	if !stderrors.As(err, &ce) {
		ce = errors.Internal(err.Error(), errors.Span{File: r.Path})
	}
	r.Errors = append(r.Errors, ce)
}
