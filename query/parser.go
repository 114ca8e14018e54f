package query

import "strconv"

// Parser turns a token stream into a Statement and its parameter table
type Parser struct {
	tokens     []Token
	pos        int
	params     *Params
	observer   Observer
	converters *ConverterRegistry
	depth      *depthCounter
	entity     string // source name as written in the query
}

// NewParser creates a new parser. A nil observer leaves names unchanged and
// a nil registry selects DefaultConverters.
func NewParser(tokens []Token, observer Observer, converters *ConverterRegistry) *Parser {
	if observer == nil {
		observer = NoopObserver{}
	}
	if converters == nil {
		converters = DefaultConverters()
	}
	return &Parser{
		tokens:     tokens,
		params:     NewParams(),
		observer:   observer,
		converters: converters,
		depth:      newDepthCounter(),
	}
}

// current returns the current token
func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

// peek returns the next token without advancing
func (p *Parser) peek() Token {
	if p.pos+1 >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos+1]
}

// advance moves to the next token
func (p *Parser) advance() {
	p.pos++
}

// expect checks if current token matches expected type and advances
func (p *Parser) expect(tokType TokenType, what string) error {
	if p.current().Type != tokType {
		return p.unexpected(what)
	}
	p.advance()
	return nil
}

// unexpected builds the syntax error for the current token
func (p *Parser) unexpected(expected string) error {
	tok := p.current()
	switch tok.Type {
	case TokenError:
		if tok.Value == "unterminated string" {
			return syntaxError("unterminated string starting at position %d", tok.Pos)
		}
		return syntaxError("invalid character %q at position %d", tok.Value, tok.Pos)
	case TokenEOF:
		return syntaxError("expected %s, got end of query", expected)
	default:
		return syntaxError("expected %s, got %s %q at position %d", expected, tok.Type, tok.Value, tok.Pos)
	}
}

// Parse parses query text with the default converters
func Parse(text string, observer Observer) (Statement, *Params, error) {
	if err := ValidateQuery(text); err != nil {
		return nil, nil, err
	}
	return ParseTokens(Tokenize(text), observer, nil)
}

// ParseTokens parses an already tokenized query
func ParseTokens(tokens []Token, observer Observer, converters *ConverterRegistry) (Statement, *Params, error) {
	if err := ValidateTokens(tokens); err != nil {
		return nil, nil, err
	}

	p := NewParser(tokens, observer, converters)
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, nil, err
	}

	if tok := p.current(); tok.Type != TokenEOF {
		if tok.Type == TokenError {
			return nil, nil, p.unexpected("end of query")
		}
		return nil, nil, syntaxError("unexpected %s %q at position %d after end of statement", tok.Type, tok.Value, tok.Pos)
	}
	return stmt, p.params, nil
}

// parseStatement parses: select ... | delete ...
func (p *Parser) parseStatement() (Statement, error) {
	switch p.current().Type {
	case TokenSelect:
		return p.parseSelect()
	case TokenDelete:
		return p.parseDelete()
	default:
		return nil, p.unexpected("SELECT or DELETE")
	}
}

// parseSelect parses:
//
//	select [* | name, ...] from source [where cond] [order by name [asc|desc], ...] [skip n] [limit n]
func (p *Parser) parseSelect() (*SelectQuery, error) {
	p.advance() // SELECT

	columns, err := p.parseProjection()
	if err != nil {
		return nil, err
	}
	if err := p.parseSource(); err != nil {
		return nil, err
	}

	fields := make([]string, len(columns))
	for i, column := range columns {
		fields[i] = p.field(column)
	}
	b := Select(fields...).From(p.observer.FireEntity(p.entity))

	if p.current().Type == TokenWhere {
		p.advance()
		cond, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		b.Where(cond)
	}

	if p.current().Type == TokenOrder {
		p.advance()
		if err := p.expect(TokenBy, "BY after ORDER"); err != nil {
			return nil, err
		}
		sorts, err := p.parseSorts()
		if err != nil {
			return nil, err
		}
		b.OrderBy(sorts...)
	}

	if p.current().Type == TokenSkip {
		p.advance()
		n, err := p.parseBound("SKIP")
		if err != nil {
			return nil, err
		}
		b.Skip(n)
	}

	if p.current().Type == TokenLimit {
		p.advance()
		n, err := p.parseBound("LIMIT")
		if err != nil {
			return nil, err
		}
		b.Limit(n)
	}

	return b.Build()
}

// parseDelete parses: delete [name, ...] from source [where cond]
func (p *Parser) parseDelete() (*DeleteQuery, error) {
	p.advance() // DELETE

	// a delete may name columns; they carry no meaning for the statement
	if _, err := p.parseProjection(); err != nil {
		return nil, err
	}
	if err := p.parseSource(); err != nil {
		return nil, err
	}

	b := Delete().From(p.observer.FireEntity(p.entity))
	if p.current().Type == TokenWhere {
		p.advance()
		cond, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		b.Where(cond)
	}
	return b.Build()
}

// parseProjection parses the optional column list before FROM
func (p *Parser) parseProjection() ([]string, error) {
	switch p.current().Type {
	case TokenStar:
		p.advance()
		return nil, nil
	case TokenFrom:
		return nil, nil
	}

	var columns []string
	for {
		tok := p.current()
		if tok.Type != TokenIdent {
			return nil, p.unexpected("column name")
		}
		if err := ValidateName(tok.Value); err != nil {
			return nil, err
		}
		columns = append(columns, tok.Value)
		p.advance()

		if p.current().Type != TokenComma {
			return columns, nil
		}
		p.advance()
	}
}

// parseSource parses: from identifier
func (p *Parser) parseSource() error {
	if err := p.expect(TokenFrom, "FROM"); err != nil {
		return err
	}
	tok := p.current()
	if tok.Type != TokenIdent {
		return p.unexpected("source name after FROM")
	}
	if err := ValidateName(tok.Value); err != nil {
		return err
	}
	p.entity = tok.Value
	p.advance()
	return nil
}

// parseSorts parses: name [asc|desc] ([,] name [asc|desc])*
func (p *Parser) parseSorts() ([]Sort, error) {
	var sorts []Sort
	for {
		tok := p.current()
		if tok.Type != TokenIdent {
			return nil, p.unexpected("sort attribute")
		}
		if err := ValidateName(tok.Value); err != nil {
			return nil, err
		}
		p.advance()

		s := SortAsc(p.field(tok.Value))
		switch p.current().Type {
		case TokenAsc:
			p.advance()
		case TokenDesc:
			s.Direction = Desc
			p.advance()
		}
		sorts = append(sorts, s)

		if p.current().Type == TokenComma {
			p.advance()
			continue
		}
		if p.current().Type != TokenIdent {
			return sorts, nil
		}
	}
}

// parseBound parses the non-negative integer of SKIP or LIMIT
func (p *Parser) parseBound(clause string) (int64, error) {
	tok := p.current()
	if tok.Type != TokenNumber {
		return 0, p.unexpected("integer after " + clause)
	}
	n, err := strconv.ParseInt(tok.Value, 10, 64)
	if err != nil || n < 0 {
		return 0, syntaxError("%s requires a non-negative integer, got %q at position %d", clause, tok.Value, tok.Pos)
	}
	p.advance()
	return n, nil
}

// field maps an attribute name through the observer
func (p *Parser) field(name string) string {
	return p.observer.FireField(p.entity, name)
}
