package lexer

var KEYWORDS = map[string]TokenType{
	"frame":    FRAME,
	"static":   STATIC,
	"ret":      RET,
	"return":   RETURN,
	"local":    LOCAL,
	"struct":   STRUCT,
	"type":     TYPE,
	"import":   IMPORT,
	"export":   EXPORT,
	"extern":   EXTERN,
	"from":     FROM,
	"asm":      ASM,
	"if":       IF,
	"else":     ELSE,
	"loop":     LOOP,
	"break":    BREAK,
	"continue": CONTINUE,
	"try":      TRY,
	"catch":    CATCH,
	"throw":    THROW,
	"switch":   SWITCH,
	"case":     CASE,
	"default":  DEFAULT,
	"match":    MATCH,
	"cast":     CAST,
	"sizeof":   SIZEOF,
	"true":     TRUE,
	"false":    FALSE,
	"nullptr":  NULLPTR,
	"this":     THIS,
}

func lookupIdentifier(text string) TokenType {
	if tt, ok := KEYWORDS[text]; ok {
		return tt
	}
	return IDENTIFIER
}

// IsKeyword reports whether tt is a reserved word.
func IsKeyword(tt TokenType) bool {
	return tt >= FRAME && tt <= THIS
}
