// SPDX-License-Identifier: Apache-2.0
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"ember/internal/ast"
	"ember/internal/compiler"
	"ember/internal/errors"
)

type config struct {
	output string
	tokens bool
	ast    bool
	opts   compiler.Options
}

func main() {
	var cfg config
	flag.StringVar(&cfg.output, "o", "", "write IR here (default: source name with .ll, - for stdout)")
	flag.BoolVar(&cfg.tokens, "tokens", false, "print the token stream")
	flag.BoolVar(&cfg.ast, "ast", false, "print the parsed program")
	flag.BoolVar(&cfg.opts.Verify, "verify", true, "check the structure of the generated IR")
	flag.StringVar(&cfg.opts.TargetTriple, "triple", "", "target triple written into the module")
	watch := flag.Bool("watch", false, "recompile whenever the source or its imports change")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: emberc [flags] <file.em>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	verbosity := 0
	if *verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	path := flag.Arg(0)
	if *watch {
		if err := watchAndBuild(path, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "watch failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if _, ok := build(path, cfg); !ok {
		os.Exit(1)
	}
}

// build compiles path once, reports diagnostics and writes the IR. The result
// is returned even on failure so the watcher can follow imports.
func build(path string, cfg config) (*compiler.Result, bool) {
	startTime := time.Now()

	result, err := compiler.CompileFile(path, cfg.opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, false
	}

	if cfg.tokens {
		for _, tok := range result.Tokens {
			fmt.Printf("%d:%d\t%-14s %q\n", tok.Pos.Line, tok.Pos.Column, tok.Type, tok.Lexeme)
		}
	}
	if cfg.ast && result.Program != nil {
		fmt.Println(ast.Print(result.Program))
	}

	report(result, result.Warnings)
	report(result, result.Errors)

	duration := time.Since(startTime)
	formattedDuration := formatDuration(duration)

	if !result.OK() {
		color.Red("Compilation failed at %s after %s", result.Stage, formattedDuration)
		return result, false
	}

	out := outputPath(path, cfg.output)
	if out == "-" {
		fmt.Print(result.IR)
	} else if err := os.WriteFile(out, []byte(result.IR), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", out, err)
		return result, false
	}

	color.Green("Successfully compiled %s in %s", path, formattedDuration)
	return result, true
}

// report prints diagnostics against the file they belong to, which for
// imported modules is not the file being compiled.
func report(result *compiler.Result, errs []*errors.CompilerError) {
	reporters := map[string]*errors.ErrorReporter{}
	for _, err := range errs {
		file := err.Span.File
		if file == "" {
			file = result.Path
		}
		reporter, ok := reporters[file]
		if !ok {
			source := result.Source
			if file != result.Path {
				if data, readErr := os.ReadFile(file); readErr == nil {
					source = string(data)
				} else {
					source = ""
				}
			}
			reporter = errors.NewErrorReporter(file, source)
			reporters[file] = reporter
		}
		fmt.Fprint(os.Stderr, reporter.FormatError(err))
	}
}

func outputPath(path, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".ll"
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return fmt.Sprintf("%.2fmin", d.Minutes())
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1000000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
