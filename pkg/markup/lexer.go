package markup

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// MarkupLexer tokenizes microcontroller markup.
// Two states: Root covers character data between tags, Tag covers the inside
// of a start or end tag.
var MarkupLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		// Declaration and comments are kept whole
		{Name: "Decl", Pattern: `<\?[\s\S]*?\?>`},
		{Name: "Comment", Pattern: `<!--[\s\S]*?-->`},

		{Name: "CloseTag", Pattern: `</`, Action: lexer.Push("Tag")},
		{Name: "OpenTag", Pattern: `<`, Action: lexer.Push("Tag")},

		// Character data up to the next tag
		{Name: "Text", Pattern: `[^<]+`},
	},
	"Tag": {
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "Name", Pattern: `[A-Za-z_:][-A-Za-z0-9_:.]*`},
		{Name: "Equals", Pattern: `=`},
		{Name: "String", Pattern: `"[^"<]*"|'[^'<]*'`},
		{Name: "SelfClose", Pattern: `/>`, Action: lexer.Pop()},
		{Name: "TagEnd", Pattern: `>`, Action: lexer.Pop()},
	},
})

// Token types resolved once from the lexer's symbol table
var (
	tokDecl       lexer.TokenType
	tokComment    lexer.TokenType
	tokCloseTag   lexer.TokenType
	tokOpenTag    lexer.TokenType
	tokText       lexer.TokenType
	tokWhitespace lexer.TokenType
	tokName       lexer.TokenType
	tokEquals     lexer.TokenType
	tokString     lexer.TokenType
	tokSelfClose  lexer.TokenType
	tokTagEnd     lexer.TokenType
)

func init() {
	symbols := MarkupLexer.Symbols()
	tokDecl = symbols["Decl"]
	tokComment = symbols["Comment"]
	tokCloseTag = symbols["CloseTag"]
	tokOpenTag = symbols["OpenTag"]
	tokText = symbols["Text"]
	tokWhitespace = symbols["Whitespace"]
	tokName = symbols["Name"]
	tokEquals = symbols["Equals"]
	tokString = symbols["String"]
	tokSelfClose = symbols["SelfClose"]
	tokTagEnd = symbols["TagEnd"]
}
