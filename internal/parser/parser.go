// Package parser dispatches notification messages to the first parser that claims them.
package parser

import (
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/tally/internal/message"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

// Parser recognises and parses one family of notifications.
// Accepts must be cheap and side-effect free; Parse is only called after Accepts
// returned true. Implementations must be safe for concurrent use.
type Parser interface {
	Name() string
	Accepts(m message.Message) bool
	Parse(m message.Message) (transaction.Transaction, error)
}

var ErrNoParser = errors.New("no parser accepts message")

// ParseError reports that an accepting parser could not extract a transaction.
type ParseError struct {
	Parser    string
	MessageID string
	Err       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parser %s: message %s: %v", e.Parser, e.MessageID, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type Status int

const (
	StatusParsed Status = iota
	StatusNoMatch
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusParsed:
		return "parsed"
	case StatusNoMatch:
		return "no_match"
	case StatusFailed:
		return "failed"
	}

	return fmt.Sprintf("status(%d)", int(s))
}

// Outcome is the result of processing one message.
type Outcome struct {
	Message     message.Message
	Status      Status
	Parser      string
	Transaction transaction.Transaction
	Err         error
}
