package query

import (
	"strconv"
	"strings"
)

// parseValue parses a right-hand side: a literal or an @name placeholder
func (p *Parser) parseValue() (Value, error) {
	tok := p.current()
	if tok.Type == TokenParam {
		if err := ValidateName(tok.Value); err != nil {
			return Value{}, err
		}
		p.advance()
		return p.params.Add(tok.Value), nil
	}
	return p.parseLiteral()
}

// parseLiteral parses: string | number | bool | array | map | convert
func (p *Parser) parseLiteral() (Value, error) {
	tok := p.current()
	switch tok.Type {
	case TokenString:
		p.advance()
		return ValueOf(tok.Value), nil
	case TokenNumber:
		v, err := parseNumber(tok)
		if err != nil {
			return Value{}, err
		}
		p.advance()
		return v, nil
	case TokenBool:
		p.advance()
		return ValueOf(strings.EqualFold(tok.Value, "true")), nil
	case TokenLeftBracket:
		return p.parseArray()
	case TokenLeftBrace:
		return p.parseMap()
	case TokenConvert:
		return p.parseConvert()
	default:
		return Value{}, p.unexpected("value")
	}
}

// parseNumber reads integers as int64 and everything else as float64
func parseNumber(tok Token) (Value, error) {
	if n, err := strconv.ParseInt(tok.Value, 10, 64); err == nil {
		return ValueOf(n), nil
	}
	if f, err := strconv.ParseFloat(tok.Value, 64); err == nil {
		return ValueOf(f), nil
	}
	return Value{}, syntaxError("invalid number %q at position %d", tok.Value, tok.Pos)
}

// parseArray parses: "[" [value ("," value)*] "]"
func (p *Parser) parseArray() (Value, error) {
	if err := p.depth.enter(); err != nil {
		return Value{}, err
	}
	defer p.depth.exit()
	p.advance() // [

	items := []Value{}
	if p.current().Type == TokenRightBracket {
		p.advance()
		return ValueOf(items), nil
	}
	for {
		v, err := p.parseValue()
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)

		if p.current().Type == TokenComma {
			p.advance()
			continue
		}
		if err := p.expect(TokenRightBracket, "',' or ']' in array"); err != nil {
			return Value{}, err
		}
		return ValueOf(items), nil
	}
}

// parseMap parses: "{" [key ":" value ("," key ":" value)*] "}"
// Keys are strings or bare identifiers; entry order is preserved.
func (p *Parser) parseMap() (Value, error) {
	if err := p.depth.enter(); err != nil {
		return Value{}, err
	}
	defer p.depth.exit()
	p.advance() // {

	columns := []Column{}
	if p.current().Type == TokenRightBrace {
		p.advance()
		return ValueOf(columns), nil
	}
	for {
		key := p.current()
		if key.Type != TokenString && key.Type != TokenIdent {
			return Value{}, p.unexpected("map key")
		}
		p.advance()
		if err := p.expect(TokenColon, "':' after map key"); err != nil {
			return Value{}, err
		}
		v, err := p.parseValue()
		if err != nil {
			return Value{}, err
		}
		columns = append(columns, Column{Name: key.Value, Value: v})

		if p.current().Type == TokenComma {
			p.advance()
			continue
		}
		if err := p.expect(TokenRightBrace, "',' or '}' in map"); err != nil {
			return Value{}, err
		}
		return ValueOf(columns), nil
	}
}

// parseConvert parses: "convert" "(" literal "," type ")"
func (p *Parser) parseConvert() (Value, error) {
	p.advance() // CONVERT
	if err := p.expect(TokenLeftParen, "'(' after CONVERT"); err != nil {
		return Value{}, err
	}
	v, err := p.parseLiteral()
	if err != nil {
		return Value{}, err
	}
	if err := p.expect(TokenComma, "',' before conversion type"); err != nil {
		return Value{}, err
	}

	tok := p.current()
	if tok.Type != TokenIdent {
		return Value{}, p.unexpected("conversion type")
	}
	if !p.converters.Has(tok.Value) {
		return Value{}, syntaxError("unknown conversion type %q at position %d", tok.Value, tok.Pos)
	}
	p.advance()

	if err := p.expect(TokenRightParen, "')' after conversion type"); err != nil {
		return Value{}, err
	}
	return Typed(v, tok.Value), nil
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

// ParseLiteral parses text holding a single literal, as it would appear on
// the right-hand side of a condition. Placeholders are rejected.
func ParseLiteral(text string) (Value, error) {
	if err := ValidateQuery(text); err != nil {
		return Value{}, err
	}
	p := NewParser(Tokenize(text), nil, nil)
	v, err := p.parseLiteral()
	if err != nil {
		return Value{}, err
	}
	if p.current().Type != TokenEOF {
		return Value{}, p.unexpected("end of literal")
	}
	if p.params.Len() > 0 {
		return Value{}, unboundError(p.params.ParameterNames())
	}
	return v, nil
}
