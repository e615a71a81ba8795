package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"ember/internal/errors"
)

// ConvertErrors transforms compiler diagnostics from any stage into LSP
// diagnostics. Spans are 1-based and inclusive of their start; LSP ranges are
// 0-based.
func ConvertErrors(errs []*errors.CompilerError) []protocol.Diagnostic {
	var diagnostics []protocol.Diagnostic

	for _, err := range errs {
		span := err.Span

		startLine, startChar := zeroBased(span.StartLine), zeroBased(span.StartColumn)
		endLine, endChar := zeroBased(span.EndLine), zeroBased(span.EndColumn)
		if span.EndLine == 0 || endLine < startLine || (endLine == startLine && endChar <= startChar) {
			// Rough span for visibility
			endLine, endChar = startLine, startChar+1
		}

		message := err.Message
		if err.Hint != "" {
			message += "\n" + err.Hint
		}

		severity := protocol.DiagnosticSeverityError
		if err.Level == errors.Warning {
			severity = protocol.DiagnosticSeverityWarning
		}

		diagnostic := protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: startLine, Character: startChar},
				End:   protocol.Position{Line: endLine, Character: endChar},
			},
			Severity: ptrSeverity(severity),
			Source:   ptrString("ember"),
			Message:  message,
		}
		if err.Code != "" {
			diagnostic.Code = &protocol.IntegerOrString{Value: err.Code}
		}
		diagnostics = append(diagnostics, diagnostic)
	}

	return diagnostics
}

func zeroBased(n int) uint32 {
	if n <= 1 {
		return 0
	}
	return uint32(n - 1)
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func ptrString(s string) *string {
	return &s
}
