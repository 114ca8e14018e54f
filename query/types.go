package query

import "fmt"

// TokenType represents the type of a token
type TokenType int

const (
	// Keywords
	TokenSelect TokenType = iota
	TokenDelete
	TokenFrom
	TokenWhere
	TokenAnd
	TokenOr
	TokenNot
	TokenOrder
	TokenBy
	TokenAsc
	TokenDesc
	TokenSkip
	TokenLimit
	TokenIn
	TokenLike
	TokenBetween
	TokenConvert

	// Operators
	TokenEqual        // =
	TokenLess         // <
	TokenGreater      // >
	TokenLessEqual    // <=
	TokenGreaterEqual // >=

	// Literals
	TokenString
	TokenNumber
	TokenIdent
	TokenBool
	TokenParam // @name

	// Delimiters
	TokenComma        // ,
	TokenColon        // :
	TokenLeftParen    // (
	TokenRightParen   // )
	TokenLeftBrace    // {
	TokenRightBrace   // }
	TokenLeftBracket  // [
	TokenRightBracket // ]
	TokenStar         // *

	// Special
	TokenEOF
	TokenError
)

var tokenNames = map[TokenType]string{
	TokenSelect:       "SELECT",
	TokenDelete:       "DELETE",
	TokenFrom:         "FROM",
	TokenWhere:        "WHERE",
	TokenAnd:          "AND",
	TokenOr:           "OR",
	TokenNot:          "NOT",
	TokenOrder:        "ORDER",
	TokenBy:           "BY",
	TokenAsc:          "ASC",
	TokenDesc:         "DESC",
	TokenSkip:         "SKIP",
	TokenLimit:        "LIMIT",
	TokenIn:           "IN",
	TokenLike:         "LIKE",
	TokenBetween:      "BETWEEN",
	TokenConvert:      "CONVERT",
	TokenEqual:        "'='",
	TokenLess:         "'<'",
	TokenGreater:      "'>'",
	TokenLessEqual:    "'<='",
	TokenGreaterEqual: "'>='",
	TokenString:       "string",
	TokenNumber:       "number",
	TokenIdent:        "identifier",
	TokenBool:         "boolean",
	TokenParam:        "parameter",
	TokenComma:        "','",
	TokenColon:        "':'",
	TokenLeftParen:    "'('",
	TokenRightParen:   "')'",
	TokenLeftBrace:    "'{'",
	TokenRightBrace:   "'}'",
	TokenLeftBracket:  "'['",
	TokenRightBracket: "']'",
	TokenStar:         "'*'",
	TokenEOF:          "end of query",
	TokenError:        "invalid token",
}

// String returns a human readable token type name used in error messages
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value string
	Pos   int // byte offset of the token in the query text
}
