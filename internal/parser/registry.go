package parser

import (
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/tally/internal/message"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

// Registry holds parsers in priority order. It is read-only after construction.
type Registry struct {
	parsers []Parser
}

// NewRegistry builds a registry that tries parsers in the given order.
// More specific parsers should come first to avoid false matches.
func NewRegistry(parsers ...Parser) (*Registry, error) {
	seen := make(map[string]struct{}, len(parsers))

	for i, p := range parsers {
		if p == nil {
			return nil, fmt.Errorf("parser %d is nil", i)
		}

		name := strings.ToLower(p.Name())
		if name == "" {
			return nil, fmt.Errorf("parser %d has no name", i)
		}

		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate parser name %q", p.Name())
		}

		seen[name] = struct{}{}
	}

	return &Registry{parsers: append([]Parser(nil), parsers...)}, nil
}

// Names returns the parser names in dispatch order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.parsers))
	for i, p := range r.parsers {
		names[i] = p.Name()
	}

	return names
}

// Dispatch returns the first parser that accepts m.
func (r *Registry) Dispatch(m message.Message) (Parser, bool) {
	for _, p := range r.parsers {
		if p.Accepts(m) {
			return p, true
		}
	}

	return nil, false
}

// Process dispatches m and parses it. A panicking parser is reported as a failure.
func (r *Registry) Process(m message.Message) Outcome {
	p, ok := r.Dispatch(m)
	if !ok {
		return Outcome{Message: m, Status: StatusNoMatch, Err: ErrNoParser}
	}

	tx, err := parse(p, m)
	if err != nil {
		return Outcome{
			Message: m,
			Status:  StatusFailed,
			Parser:  p.Name(),
			Err:     &ParseError{Parser: p.Name(), MessageID: m.ID, Err: err},
		}
	}

	tx.Parser = p.Name()
	tx.MessageID = m.ID
	tx.Source = m.Source
	tx.ImportID = transaction.ImportID(m.Source, m.ID)

	return Outcome{Message: m, Status: StatusParsed, Parser: p.Name(), Transaction: tx}
}

func parse(p Parser, m message.Message) (tx transaction.Transaction, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	return p.Parse(m)
}

// Overlap lists the parsers, in dispatch order, that all accept one message.
type Overlap struct {
	MessageID string
	Parsers   []string
}

// Overlaps reports every message accepted by more than one parser. Only the first
// would ever be used; the list helps keep parser order honest.
func (r *Registry) Overlaps(msgs []message.Message) []Overlap {
	var overlaps []Overlap

	for _, m := range msgs {
		var names []string

		for _, p := range r.parsers {
			if p.Accepts(m) {
				names = append(names, p.Name())
			}
		}

		if len(names) > 1 {
			overlaps = append(overlaps, Overlap{MessageID: m.ID, Parsers: names})
		}
	}

	return overlaps
}
