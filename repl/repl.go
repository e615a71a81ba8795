// Package repl SPDX-License-Identifier: Apache-2.0
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/tliron/commonlog"

	"ember/internal/ast"
	"ember/internal/compiler"
	"ember/internal/errors"
	"ember/internal/lexer"
)

const (
	PROMPT      = ">> "
	CONTINUE    = ".. "
	sessionFile = "<repl>"
)

var log = commonlog.GetLogger("ember.repl")

// Session accumulates declarations. Every entry is compiled together with
// everything accepted before it and kept only if the whole program still
// compiles.
type Session struct {
	entries []string
	count   int
	last    *compiler.Result
}

// Eval compiles input on top of the session. On failure the session is left
// unchanged.
func (s *Session) Eval(input string) (*compiler.Result, []ast.Stmt) {
	source := strings.Join(append(append([]string{}, s.entries...), input), "\n")
	r := compiler.Compile(sessionFile, source, compiler.Options{Verify: true})
	if !r.OK() {
		return r, nil
	}

	s.entries = append(s.entries, input)
	added := r.Program.Body[s.count:]
	s.count = len(r.Program.Body)
	s.last = r
	return r, added
}

// Source returns the accepted program text.
func (s *Session) Source() string {
	return strings.Join(s.entries, "\n")
}

// IR returns the IR of the accepted program.
func (s *Session) IR() string {
	if s.last == nil {
		return ""
	}
	return s.last.IR
}

func (s *Session) Reset() {
	*s = Session{}
}

// Start reads entries from in until it is exhausted or :quit is entered. An
// entry spans lines until its braces balance.
func Start(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	session := &Session{}

	var pending []string
	for {
		if len(pending) == 0 {
			fmt.Fprint(out, PROMPT)
		} else {
			fmt.Fprint(out, CONTINUE)
		}
		if !scanner.Scan() {
			return
		}

		line := scanner.Text()
		if len(pending) == 0 && strings.HasPrefix(strings.TrimSpace(line), ":") {
			if !command(session, strings.TrimSpace(line), out) {
				return
			}
			continue
		}

		pending = append(pending, line)
		input := strings.Join(pending, "\n")
		if depth(input) > 0 {
			continue
		}
		pending = nil
		if strings.TrimSpace(input) == "" {
			continue
		}

		r, added := session.Eval(input)
		if !r.OK() {
			reporter := errors.NewErrorReporter(sessionFile, r.Source)
			fmt.Fprint(out, reporter.FormatAll(r.Errors))
			continue
		}
		for _, stmt := range added {
			fmt.Fprintln(out, ast.Print(stmt))
		}
		for _, w := range r.Warnings {
			fmt.Fprint(out, errors.NewErrorReporter(sessionFile, r.Source).FormatError(w))
		}
	}
}

// command runs a colon command and reports whether the loop continues.
func command(s *Session, cmd string, out io.Writer) bool {
	switch cmd {
	case ":quit", ":q":
		return false
	case ":ir":
		fmt.Fprint(out, s.IR())
	case ":source":
		fmt.Fprintln(out, s.Source())
	case ":reset":
		s.Reset()
		color.New(color.FgGreen).Fprintln(out, "session cleared")
	case ":help":
		fmt.Fprintln(out, ":ir      print the IR of the session")
		fmt.Fprintln(out, ":source  print the accepted declarations")
		fmt.Fprintln(out, ":reset   forget every declaration")
		fmt.Fprintln(out, ":quit    leave")
	default:
		color.New(color.FgRed).Fprintf(out, "unknown command %s\n", cmd)
	}
	return true
}

// depth is the number of braces left open in input.
func depth(input string) int {
	tokens, _ := lexer.ScanTokens(input, sessionFile)
	n := 0
	for _, tok := range tokens {
		switch tok.Type {
		case lexer.LEFT_BRACE:
			n++
		case lexer.RIGHT_BRACE:
			n--
		}
	}
	log.Debugf("open braces: %d", n)
	return n
}
