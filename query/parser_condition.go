package query

var comparisonTypes = map[TokenType]ConditionType{
	TokenEqual:        Equals,
	TokenGreater:      GreaterThan,
	TokenGreaterEqual: GreaterEqualsThan,
	TokenLess:         LesserThan,
	TokenLessEqual:    LesserEqualsThan,
}

// parseCondition parses: term (("and" | "or") term)*
//
// Connectors fold left in reading order. A run of the same connector is
// flattened into one node, and switching connector wraps everything so far
// as the first child of a new node:
//
//	a and b and c       AND[a, b, c]
//	a and b or c        OR[AND[a, b], c]
//	a or b and c        AND[OR[a, b], c]
//	a and (b or c)      AND[a, OR[b, c]]
func (p *Parser) parseCondition() (Condition, error) {
	if err := p.depth.enter(); err != nil {
		return Condition{}, err
	}
	defer p.depth.exit()

	root, err := p.parseTerm()
	if err != nil {
		return Condition{}, err
	}

	var (
		op       ConditionType
		children []Condition
	)
	for {
		var next ConditionType
		switch p.current().Type {
		case TokenAnd:
			next = And
		case TokenOr:
			next = Or
		default:
			if children != nil {
				root = composite(op, children)
			}
			return root, nil
		}
		p.advance()

		right, err := p.parseTerm()
		if err != nil {
			return Condition{}, err
		}

		if children != nil && next == op {
			children = append(children, right)
			continue
		}
		if children != nil {
			root = composite(op, children)
		}
		op = next
		children = []Condition{root, right}
	}
}

func composite(op ConditionType, children []Condition) Condition {
	if op == Or {
		return OrOf(children...)
	}
	return AndOf(children...)
}

// parseTerm parses: "not" term | "(" condition ")" | comparison
func (p *Parser) parseTerm() (Condition, error) {
	switch p.current().Type {
	case TokenNot:
		p.advance()
		if err := p.depth.enter(); err != nil {
			return Condition{}, err
		}
		defer p.depth.exit()
		inner, err := p.parseTerm()
		if err != nil {
			return Condition{}, err
		}
		return NotOf(inner), nil
	case TokenLeftParen:
		open := p.current()
		p.advance()
		c, err := p.parseCondition()
		if err != nil {
			return Condition{}, err
		}
		if p.current().Type != TokenRightParen {
			if p.current().Type == TokenEOF {
				return Condition{}, syntaxError("unterminated group opened at position %d", open.Pos)
			}
			return Condition{}, p.unexpected("')' to close group opened at position " + itoa(open.Pos))
		}
		p.advance()
		return c, nil
	case TokenIdent:
		return p.parseComparison()
	default:
		return Condition{}, p.unexpected("condition")
	}
}

// parseComparison parses: name op value | name [not] between|in|like ...
func (p *Parser) parseComparison() (Condition, error) {
	tok := p.current()
	if err := ValidateName(tok.Value); err != nil {
		return Condition{}, err
	}
	name := p.field(tok.Value)
	p.advance()

	op := p.current()
	if typ, ok := comparisonTypes[op.Type]; ok {
		p.advance()
		v, err := p.parseValue()
		if err != nil {
			return Condition{}, err
		}
		return leaf(typ, name, v), nil
	}

	if op.Type == TokenNot {
		p.advance()
		switch p.current().Type {
		case TokenBetween, TokenIn, TokenLike:
		default:
			return Condition{}, p.unexpected("BETWEEN, IN or LIKE after NOT")
		}
		c, err := p.parseSpecial(name)
		if err != nil {
			return Condition{}, err
		}
		return NotOf(c), nil
	}

	return p.parseSpecial(name)
}

// parseSpecial parses the BETWEEN, IN and LIKE forms after the attribute name
func (p *Parser) parseSpecial(name string) (Condition, error) {
	switch p.current().Type {
	case TokenBetween:
		p.advance()
		low, err := p.parseValue()
		if err != nil {
			return Condition{}, err
		}
		if err := p.expect(TokenAnd, "AND between BETWEEN bounds"); err != nil {
			return Condition{}, err
		}
		high, err := p.parseValue()
		if err != nil {
			return Condition{}, err
		}
		return leaf(Between, name, []Value{low, high}), nil

	case TokenIn:
		p.advance()
		values, err := p.parseInList()
		if err != nil {
			return Condition{}, err
		}
		return leaf(In, name, values), nil

	case TokenLike:
		p.advance()
		tok := p.current()
		if tok.Type != TokenString && tok.Type != TokenParam {
			return Condition{}, p.unexpected("string pattern or parameter after LIKE")
		}
		v, err := p.parseValue()
		if err != nil {
			return Condition{}, err
		}
		return leaf(Like, name, v), nil

	default:
		return Condition{}, p.unexpected("comparison operator")
	}
}

// parseInList parses: "(" value ("," value)* ")"
func (p *Parser) parseInList() ([]Value, error) {
	if err := p.expect(TokenLeftParen, "'(' after IN"); err != nil {
		return nil, err
	}
	if p.current().Type == TokenRightParen {
		return nil, syntaxError("IN list at position %d must not be empty", p.current().Pos)
	}

	var values []Value
	for {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		values = append(values, v)

		if p.current().Type == TokenComma {
			p.advance()
			continue
		}
		if err := p.expect(TokenRightParen, "',' or ')' in IN list"); err != nil {
			return nil, err
		}
		return values, nil
	}
}
