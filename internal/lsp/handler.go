package lsp

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"ember/internal/ast"
	"ember/internal/builtins"
	"ember/internal/compiler"
	"ember/internal/lexer"
)

var log = commonlog.GetLogger("ember.lsp")

// Define the set of supported semantic token types (as required by the LSP spec)
var SemanticTokenTypes = []string{
	"namespace",
	"type",
	"typeParameter",
	"function",
	"variable",
	"parameter",
	"property",
	"keyword",
	"number",
	"operator",
	"modifier",
	"string",
}

// Define the set of supported semantic token modifiers (for extra tagging like declaration, readonly, etc.)
var SemanticTokenModifiers = []string{
	"declaration",
	"definition",
	"readonly",
	"static",
	"deprecated",
	"abstract",
}

// EmberHandler implements the LSP server handlers for ember. Open documents
// are kept in memory and recompiled on every change; imports resolve against
// open buffers before the file system.
type EmberHandler struct {
	mu      sync.RWMutex
	content map[string]string
	results map[string]*compiler.Result
}

// NewEmberHandler creates and returns a new EmberHandler instance
func NewEmberHandler() *EmberHandler {
	return &EmberHandler{
		content: make(map[string]string),
		results: make(map[string]*compiler.Result),
	}
}

// Initialize responds to the LSP client's initialize request and advertises the server's capabilities
func (h *EmberHandler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Info("LSP Initialize called")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true), // notify on open/close events
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
			CompletionProvider: &protocol.CompletionOptions{
				ResolveProvider: ptrBool(false),
			},
			SemanticTokensProvider: &protocol.SemanticTokensOptions{
				Legend: protocol.SemanticTokensLegend{
					TokenTypes:     SemanticTokenTypes,
					TokenModifiers: SemanticTokenModifiers,
				},
				Full: ptrBool(true), // support full-document semantic token requests
			},
		},
	}, nil
}

// Initialized is called after the client receives the server's capabilities and completes initialization
func (h *EmberHandler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Info("ember LSP initialized")
	return nil
}

// Shutdown handles the LSP shutdown request
func (h *EmberHandler) Shutdown(ctx *glsp.Context) error {
	log.Info("ember LSP shutdown")
	return nil
}

func (h *EmberHandler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	log.Debugf("trace set to %s", params.Value)
	return nil
}

// TextDocumentDidOpen handles file open notifications from the editor
func (h *EmberHandler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	log.Infof("opened file: %s", params.TextDocument.URI)

	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.content[path] = params.TextDocument.Text
	h.mu.Unlock()

	return h.refresh(ctx, params.TextDocument.URI)
}

// TextDocumentDidClose handles file close notifications from the editor
func (h *EmberHandler) TextDocumentDidClose(context *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	log.Infof("closed file: %s", params.TextDocument.URI)

	rawURI := params.TextDocument.URI

	path, err := uriToPath(rawURI)
	if err != nil {
		return fmt.Errorf("failed to convert URI %s: %w", rawURI, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.content, path)
	delete(h.results, path)

	return nil
}

// TextDocumentDidChange handles file change notifications from the editor.
// Only full-document sync is advertised, so the last change carries the
// whole text.
func (h *EmberHandler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	log.Debugf("changed file: %s", params.TextDocument.URI)

	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}

	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			h.setContent(path, c.Text)
		case protocol.TextDocumentContentChangeEvent:
			if c.Range == nil {
				h.setContent(path, c.Text)
			}
		}
	}

	return h.refresh(ctx, params.TextDocument.URI)
}

// TextDocumentCompletion offers keywords, builtin types and the top-level
// names of the document.
func (h *EmberHandler) TextDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (interface{}, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	result, err := h.getOrCompile(ctx, path, params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	return &protocol.CompletionList{
		IsIncomplete: false,
		Items:        completionItems(result.Program),
	}, nil
}

// TextDocumentSemanticTokensFull handles semantic token requests for the entire document
func (h *EmberHandler) TextDocumentSemanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	log.Debugf("semantic tokens requested for %s", params.TextDocument.URI)

	rawURI := params.TextDocument.URI

	path, err := uriToPath(rawURI)
	if err != nil {
		return nil, fmt.Errorf("failed to convert URI %s: %w", rawURI, err)
	}

	result, err := h.getOrCompile(ctx, path, rawURI)
	if err != nil {
		return nil, err
	}

	tokens := collectSemanticTokens(result.Tokens, result.Program)

	var data []uint32
	var prevLine, prevStart uint32

	// Encode tokens into LSP wire format (using delta-line, delta-start compression)
	for _, token := range tokens {
		deltaLine := token.Line - prevLine
		var deltaStart uint32
		if deltaLine == 0 {
			deltaStart = token.StartChar - prevStart
		} else {
			deltaStart = token.StartChar
		}

		data = append(data, deltaLine, deltaStart, token.Length, uint32(token.TokenType), uint32(token.TokenModifiers))

		prevLine = token.Line
		prevStart = token.StartChar
	}

	return &protocol.SemanticTokens{
		Data: data,
	}, nil
}

func (h *EmberHandler) setContent(path, text string) {
	h.mu.Lock()
	h.content[path] = text
	h.mu.Unlock()
}

func (h *EmberHandler) getOrCompile(ctx *glsp.Context, path string, rawURI protocol.DocumentUri) (*compiler.Result, error) {
	h.mu.RLock()
	result, ok := h.results[path]
	h.mu.RUnlock()

	if !ok {
		if err := h.refresh(ctx, rawURI); err != nil {
			return nil, err
		}

		h.mu.RLock()
		result = h.results[path]
		h.mu.RUnlock()
	}

	return result, nil
}

// refresh recompiles the document and publishes its diagnostics. An empty
// list is published too, so fixed problems disappear from the editor.
func (h *EmberHandler) refresh(ctx *glsp.Context, rawURI protocol.DocumentUri) error {
	path, err := uriToPath(rawURI)
	if err != nil {
		return fmt.Errorf("failed to convert URI %s: %w", rawURI, err)
	}

	source, err := h.readFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}

	result := compiler.Compile(path, string(source), compiler.Options{ReadFile: h.readFile})

	h.mu.Lock()
	h.results[path] = result
	h.mu.Unlock()

	diagnostics := ConvertErrors(result.Errors)
	diagnostics = append(diagnostics, ConvertErrors(result.Warnings)...)
	sendDiagnosticNotification(ctx, rawURI, diagnostics)
	return nil
}

// readFile prefers the editor's buffer over the file on disk.
func (h *EmberHandler) readFile(path string) ([]byte, error) {
	h.mu.RLock()
	text, ok := h.content[path]
	h.mu.RUnlock()
	if ok {
		return []byte(text), nil
	}
	return os.ReadFile(path)
}

func completionItems(prog *ast.Program) []protocol.CompletionItem {
	items := []protocol.CompletionItem{}

	keywords := make([]string, 0, len(lexer.KEYWORDS))
	for word := range lexer.KEYWORDS {
		keywords = append(keywords, word)
	}
	sort.Strings(keywords)
	for _, word := range keywords {
		items = append(items, completion(word, protocol.CompletionItemKindKeyword, ""))
	}

	typeNames := make([]string, 0, len(builtins.BuiltinTypes))
	for name := range builtins.BuiltinTypes {
		typeNames = append(typeNames, name)
	}
	sort.Strings(typeNames)
	for _, name := range typeNames {
		items = append(items, completion(name, protocol.CompletionItemKindClass, "builtin"))
	}

	if prog == nil {
		return items
	}
	for _, stmt := range prog.Body {
		decl, _ := ast.Unwrap(stmt)
		switch d := decl.(type) {
		case *ast.FunctionDecl:
			items = append(items, completion(d.Name.Value, protocol.CompletionItemKindFunction, signature(d)))
		case *ast.Extern:
			items = append(items, completion(d.Fn.Name.Value, protocol.CompletionItemKindFunction, signature(d.Fn)))
		case *ast.StructDecl:
			items = append(items, completion(d.Name.Value, protocol.CompletionItemKindStruct, "struct"))
		case *ast.TypeAlias:
			items = append(items, completion(d.Name.Value, protocol.CompletionItemKindClass, ast.TypeString(d.Target)))
		case *ast.VariableDecl:
			var detail string
			if d.Type != nil {
				detail = ast.TypeString(d.Type)
			}
			for _, name := range d.Names {
				items = append(items, completion(name.Value, protocol.CompletionItemKindVariable, detail))
			}
		}
	}
	return items
}

func completion(label string, kind protocol.CompletionItemKind, detail string) protocol.CompletionItem {
	item := protocol.CompletionItem{Label: label, Kind: &kind}
	if detail != "" {
		item.Detail = &detail
	}
	return item
}

func signature(f *ast.FunctionDecl) string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Name.Value + ": " + ast.TypeString(p.Type)
	}
	if f.Variadic {
		params = append(params, "...")
	}
	sig := "frame " + f.Name.Value + "(" + strings.Join(params, ", ") + ")"
	if f.Return != nil {
		sig += " ret " + ast.TypeString(f.Return)
	}
	return sig
}

// Convert URI to platform-local file path
func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}

	path := u.Path

	// On Windows, remove leading slash (e.g., /C:/...) → C:/...
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}

	return filepath.FromSlash(path), nil
}

func sendDiagnosticNotification(ctx *glsp.Context, uri protocol.URI, diagnostics []protocol.Diagnostic) {
	if ctx == nil || ctx.Notify == nil {
		return
	}

	if log.AllowLevel(commonlog.Debug) {
		diagnosticsJSON, err := json.MarshalIndent(diagnostics, "", "  ")
		if err != nil {
			log.Errorf("failed to marshal diagnostics: %s", err)
			return
		}
		log.Debugf("sending diagnostics: %s", diagnosticsJSON)
	}

	if diagnostics == nil {
		diagnostics = []protocol.Diagnostic{}
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func ptrBool(b bool) *bool {
	return &b
}

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
