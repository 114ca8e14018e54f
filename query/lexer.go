package query

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes query strings
type Lexer struct {
	input string
	pos   int // offset of the next rune to read
	start int // offset of ch
	ch    rune
	eof   bool // ch is past the end of input; a NUL inside the input is not EOF
}

// NewLexer creates a new lexer
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// readChar reads the next character
func (l *Lexer) readChar() {
	l.start = l.pos
	if l.pos >= len(l.input) {
		l.ch = 0
		l.eof = true
		l.pos++
		return
	}
	r, width := utf8.DecodeRuneInString(l.input[l.pos:])
	l.ch = r
	l.pos += width
}

// peekChar looks at the next character without advancing
func (l *Lexer) peekChar() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return r
}

// skipWhitespace skips whitespace characters
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// readString reads a quoted string. The second result is false when the
// closing quote is missing.
func (l *Lexer) readString(quote rune) (string, bool) {
	var result strings.Builder
	l.readChar() // skip opening quote

	for !l.eof && l.ch != quote && l.ch != 0 {
		if l.ch == '\\' {
			l.readChar()
			if l.eof || l.ch == 0 {
				return result.String(), false
			}
			switch l.ch {
			case 'n':
				result.WriteRune('\n')
			case 't':
				result.WriteRune('\t')
			case '\\':
				result.WriteRune('\\')
			default:
				result.WriteRune(l.ch)
			}
		} else {
			result.WriteRune(l.ch)
		}
		l.readChar()
	}

	if l.eof || l.ch != quote {
		return result.String(), false
	}
	l.readChar() // skip closing quote
	return result.String(), true
}

// readNumber reads an integer or decimal number with an optional sign
func (l *Lexer) readNumber() string {
	var result strings.Builder

	if l.ch == '-' || l.ch == '+' {
		result.WriteRune(l.ch)
		l.readChar()
	}

	for unicode.IsDigit(l.ch) || l.ch == '.' {
		result.WriteRune(l.ch)
		l.readChar()
	}
	return result.String()
}

// readIdentifier reads an identifier or keyword. Dots are kept so that
// qualified type names such as time.Duration read as one token.
func (l *Lexer) readIdentifier() string {
	var result strings.Builder
	for unicode.IsLetter(l.ch) || unicode.IsDigit(l.ch) || l.ch == '_' || l.ch == '.' {
		result.WriteRune(l.ch)
		l.readChar()
	}
	return result.String()
}

// NextToken returns the next token
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	tok := Token{Pos: l.start}

	if l.eof {
		tok.Type = TokenEOF
		return tok
	}

	switch l.ch {
	case 0:
		tok.Type, tok.Value = TokenError, "\x00"
		l.readChar()
	case '=':
		tok.Type, tok.Value = TokenEqual, "="
		l.readChar()
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Value = TokenLessEqual, "<="
		} else {
			tok.Type, tok.Value = TokenLess, "<"
		}
		l.readChar()
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Value = TokenGreaterEqual, ">="
		} else {
			tok.Type, tok.Value = TokenGreater, ">"
		}
		l.readChar()
	case '\'', '"':
		value, ok := l.readString(l.ch)
		switch {
		case ok:
			tok.Type, tok.Value = TokenString, value
		case !l.eof && l.ch == 0:
			tok.Type, tok.Value = TokenError, "\x00"
		default:
			tok.Type, tok.Value = TokenError, "unterminated string"
		}
	case '@':
		l.readChar()
		if !unicode.IsLetter(l.ch) && l.ch != '_' {
			tok.Type, tok.Value = TokenError, "@"
			break
		}
		tok.Type, tok.Value = TokenParam, l.readIdentifier()
	case '*':
		tok.Type, tok.Value = TokenStar, "*"
		l.readChar()
	case ',':
		tok.Type, tok.Value = TokenComma, ","
		l.readChar()
	case ':':
		tok.Type, tok.Value = TokenColon, ":"
		l.readChar()
	case '(':
		tok.Type, tok.Value = TokenLeftParen, "("
		l.readChar()
	case ')':
		tok.Type, tok.Value = TokenRightParen, ")"
		l.readChar()
	case '{':
		tok.Type, tok.Value = TokenLeftBrace, "{"
		l.readChar()
	case '}':
		tok.Type, tok.Value = TokenRightBrace, "}"
		l.readChar()
	case '[':
		tok.Type, tok.Value = TokenLeftBracket, "["
		l.readChar()
	case ']':
		tok.Type, tok.Value = TokenRightBracket, "]"
		l.readChar()
	default:
		if unicode.IsDigit(l.ch) || l.ch == '-' || l.ch == '+' {
			value := l.readNumber()
			// a lone sign is not a number
			if value == "-" || value == "+" {
				tok.Type, tok.Value = TokenError, value
			} else {
				tok.Type, tok.Value = TokenNumber, value
			}
		} else if unicode.IsLetter(l.ch) || l.ch == '_' {
			value := l.readIdentifier()
			tok.Type, tok.Value = identifierType(value), value
		} else {
			tok.Type, tok.Value = TokenError, string(l.ch)
			l.readChar()
		}
	}

	return tok
}

var keywords = map[string]TokenType{
	"select":  TokenSelect,
	"delete":  TokenDelete,
	"from":    TokenFrom,
	"where":   TokenWhere,
	"and":     TokenAnd,
	"or":      TokenOr,
	"not":     TokenNot,
	"order":   TokenOrder,
	"by":      TokenBy,
	"asc":     TokenAsc,
	"desc":    TokenDesc,
	"skip":    TokenSkip,
	"limit":   TokenLimit,
	"in":      TokenIn,
	"like":    TokenLike,
	"between": TokenBetween,
	"convert": TokenConvert,
	"true":    TokenBool,
	"false":   TokenBool,
}

// identifierType determines if an identifier is a keyword. Keywords are
// case-insensitive.
func identifierType(ident string) TokenType {
	if tokType, ok := keywords[strings.ToLower(ident)]; ok {
		return tokType
	}
	return TokenIdent
}

// Tokenize returns all tokens from the input. The last token is always
// TokenEOF or TokenError.
func Tokenize(input string) []Token {
	lexer := NewLexer(input)
	var tokens []Token

	for {
		tok := lexer.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			break
		}
	}

	return tokens
}
