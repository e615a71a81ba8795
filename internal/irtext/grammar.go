package irtext

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// IRLexer tokenizes the textual IR. Newlines are significant: every
// top-level entity and every instruction ends a line.
var IRLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `;[^\n]*`, nil},
		{"EOL", `\n`, nil},
		{"Whitespace", `[ \t\r]+`, nil},

		// c"..." constants and plain quoted strings
		{"String", `c?"[^"\n]*"`, nil},

		{"Global", `@[-a-zA-Z$._0-9]+`, nil},
		{"Local", `%[-a-zA-Z$._0-9]+`, nil},

		// Block labels, before identifiers
		{"Label", `[a-zA-Z$._][-a-zA-Z$._0-9]*:`, nil},

		{"Ellipsis", `\.\.\.`, nil},
		{"Hex", `0x[0-9A-Fa-f]+`, nil},
		{"Int", `-?[0-9]+`, nil},
		{"Ident", `[a-zA-Z_$.][a-zA-Z0-9_$.]*`, nil},
		{"Punct", `[{}()\[\],=*]`, nil},
	},
})

type Module struct {
	Items []*Item `EOL* @@*`
}

type Item struct {
	Header  *Header  `  @@`
	Global  *Global  `| @@`
	TypeDef *TypeDef `| @@`
	Declare *Declare `| @@`
	Define  *Define  `| @@`
}

type Header struct {
	Source string `(  "source_filename" "=" @String`
	Triple string ` | "target" "triple" "=" @String ) EOL+`
}

// Global keeps its initializer as raw tokens; constant expressions are not
// interpreted.
type Global struct {
	Pos   lexer.Position
	Name  string   `@Global "="`
	Flags []string `@("private" | "internal" | "unnamed_addr" | "external" | "linkonce_odr")*`
	Kind  string   `@("global" | "constant")`
	Type  *Type    `@@`
	Init  []string `@~EOL* EOL+`
}

type TypeDef struct {
	Name string `@Local "=" "type"`
	Type *Type  `@@ EOL+`
}

type Declare struct {
	Return *Type    `"declare" @@`
	Name   string   `@Global`
	Params []*Param `"(" ( @@ ( "," @@ )* )? ")" EOL+`
}

type Define struct {
	Pos     lexer.Position
	Linkage string   `"define" @("linkonce_odr" | "internal" | "private" | "weak")?`
	Return  *Type    `@@`
	Name    string   `@Global`
	Params  []*Param `"(" ( @@ ( "," @@ )* )? ")" "{" EOL+`
	Blocks  []*Block `@@* "}" EOL*`
}

type Block struct {
	Pos          lexer.Position
	Label        string         `@Label EOL+`
	Instructions []*Instruction `@@*`
}

// Instruction records the defined register, the opcode and the raw operand
// tokens.
type Instruction struct {
	Pos      lexer.Position
	Result   string   `( @Local "=" )?`
	Op       string   `@Ident`
	Operands []string `@~EOL* EOL+`
}

// Param is a parameter of a definition, a declaration or a function type.
type Param struct {
	Variadic bool   `  @"..."`
	Type     *Type  `| @@`
	Name     string `  @Local?`
}

type Type struct {
	Base     *BaseType `@@`
	Suffixes []*Suffix `@@*`
}

type Suffix struct {
	Pointer bool     `  @"*"`
	Func    bool     `| @"("`
	Params  []*Param `  ( @@ ( "," @@ )* )? ")"`
}

type BaseType struct {
	Name   string     `  @Ident`
	Named  string     `| @Local`
	Array  *ArrayType `| "[" @@ "]"`
	Struct bool       `| @"{"`
	Fields []*Type    `  ( @@ ( "," @@ )* )? "}"`
}

type ArrayType struct {
	Len  int   `@Int "x"`
	Elem *Type `@@`
}

func (h *Header) value() string {
	if h.Source != "" {
		return strings.Trim(h.Source, `"`)
	}
	return strings.Trim(h.Triple, `"`)
}

func (t *Type) String() string {
	s := t.Base.String()
	for _, suf := range t.Suffixes {
		if suf.Pointer {
			s += "*"
			continue
		}
		s += " (" + paramString(suf.Params) + ")"
	}
	return s
}

func (b *BaseType) String() string {
	switch {
	case b.Named != "":
		return b.Named
	case b.Array != nil:
		return "[" + strconv.Itoa(b.Array.Len) + " x " + b.Array.Elem.String() + "]"
	case b.Struct:
		if len(b.Fields) == 0 {
			return "{}"
		}
		parts := make([]string, len(b.Fields))
		for i, f := range b.Fields {
			parts[i] = f.String()
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	}
	return b.Name
}

func paramString(params []*Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		if p.Variadic {
			parts[i] = "..."
		} else {
			parts[i] = p.Type.String()
		}
	}
	return strings.Join(parts, ", ")
}
