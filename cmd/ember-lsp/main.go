// SPDX-License-Identifier: Apache-2.0
package main

import (
	"flag"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"ember/internal/lsp"
)

const lsName = "ember" // Name identifier for the language server

var (
	version = "0.1.0"
	handler protocol.Handler
)

func main() {
	verbosity := flag.Int("v", 1, "log verbosity (0 is quiet)")
	logFile := flag.String("log", "", "write logs to this file instead of stderr")
	flag.Parse()

	var path *string
	if *logFile != "" {
		path = logFile
	}
	commonlog.Configure(*verbosity, path)

	log := commonlog.GetLogger("ember.lsp.main")

	emberHandler := lsp.NewEmberHandler()

	handler = protocol.Handler{
		Initialize:                     emberHandler.Initialize,
		Initialized:                    emberHandler.Initialized,
		Shutdown:                       emberHandler.Shutdown,
		SetTrace:                       emberHandler.SetTrace,
		TextDocumentDidOpen:            emberHandler.TextDocumentDidOpen,
		TextDocumentDidClose:           emberHandler.TextDocumentDidClose,
		TextDocumentDidChange:          emberHandler.TextDocumentDidChange,
		TextDocumentCompletion:         emberHandler.TextDocumentCompletion,
		TextDocumentSemanticTokensFull: emberHandler.TextDocumentSemanticTokensFull,
	}

	// debug=false keeps glsp's own message tracing off
	s := server.NewServer(&handler, lsName, false)

	log.Infof("starting ember LSP server %s", version)

	if err := s.RunStdio(); err != nil {
		log.Errorf("error running ember LSP server: %s", err)
		os.Exit(1)
	}
}
