package query

import (
	"errors"
	"fmt"
)

// Validation limits guarding the parser against oversized input
const (
	// MaxQueryLength is the maximum allowed query string length (1MB)
	MaxQueryLength = 1024 * 1024

	// MaxTokens is the maximum number of tokens in a query
	MaxTokens = 10000

	// MaxConditionDepth is the maximum nesting depth for conditions
	MaxConditionDepth = 100

	// MaxConditionTreeDepth bounds the depth of a condition tree. Folding a
	// flat AND/OR chain adds one level per connector, so it follows MaxTokens.
	MaxConditionTreeDepth = MaxTokens

	// MaxNameLength is the maximum length for an attribute or source name
	MaxNameLength = 256
)

var (
	// ErrQueryTooLong is returned when query exceeds MaxQueryLength
	ErrQueryTooLong = errors.New("query too long")

	// ErrTooManyTokens is returned when query has too many tokens
	ErrTooManyTokens = errors.New("too many tokens in query")

	// ErrConditionTooDeep is returned when condition nesting exceeds limit
	ErrConditionTooDeep = errors.New("condition nesting too deep")

	// ErrNameTooLong is returned when an attribute or source name is too long
	ErrNameTooLong = errors.New("name too long")

	// ErrEmptyName is returned when a source or attribute name is empty
	ErrEmptyName = errors.New("name cannot be empty")
)

func invalid(err error) error {
	return &QueryError{Kind: KindSyntax, Msg: "invalid query", Err: err}
}

// ValidateQuery performs size validation on query input
func ValidateQuery(query string) error {
	if len(query) > MaxQueryLength {
		return invalid(fmt.Errorf("%w: %d bytes (max %d)", ErrQueryTooLong, len(query), MaxQueryLength))
	}
	return nil
}

// ValidateName validates a source or attribute name
func ValidateName(name string) error {
	if name == "" {
		return invalid(ErrEmptyName)
	}
	if len(name) > MaxNameLength {
		return invalid(fmt.Errorf("%w: %d chars (max %d)", ErrNameTooLong, len(name), MaxNameLength))
	}
	return nil
}

// ValidateTokens validates token count
func ValidateTokens(tokens []Token) error {
	if len(tokens) > MaxTokens {
		return invalid(fmt.Errorf("%w: %d tokens (max %d)", ErrTooManyTokens, len(tokens), MaxTokens))
	}
	return nil
}

// depthCounter tracks condition nesting depth
type depthCounter struct {
	depth    int
	maxDepth int
}

func newDepthCounter() *depthCounter {
	return &depthCounter{maxDepth: MaxConditionDepth}
}

// enter increments depth and returns error if limit exceeded
func (c *depthCounter) enter() error {
	c.depth++
	if c.depth > c.maxDepth {
		return invalid(fmt.Errorf("%w: %d (max %d)", ErrConditionTooDeep, c.depth, c.maxDepth))
	}
	return nil
}

func (c *depthCounter) exit() {
	c.depth--
}
