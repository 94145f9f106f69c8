// Package template implements notification parsers described as data: an ordered list
// of regular expressions with named groups, tried in turn against the message text.
package template

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/tally/internal/message"
	"github.com/MrJamesThe3rd/tally/internal/normalize"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

var (
	ErrNoTemplate  = errors.New("no template matches")
	ErrMissingDate = errors.New("no date in message")
)

// Group names a template may capture.
const (
	GroupAmount    = "amount"
	GroupCurrency  = "currency"
	GroupDate      = "date"
	GroupPayee     = "payee"
	GroupAccount   = "account"
	GroupDirection = "direction"
)

// Template describes one message layout.
// Pattern must capture GroupAmount. Optional patterns fill groups that Pattern left
// empty and may be absent from the message.
type Template struct {
	Name     string
	Pattern  *regexp.Regexp
	Optional []*regexp.Regexp

	// Direction fixes the sign. When unknown, the direction group and then the
	// parser's keywords over the whole text decide.
	Direction normalize.Direction

	DateLayouts []string
	// UseReceivedDate falls back to the message's received time when no date is captured.
	UseReceivedDate bool

	Format       normalize.AmountFormat
	Strip        []*regexp.Regexp
	DefaultPayee string
	Cleared      bool
}

// Config describes a bank.
type Config struct {
	Name string
	// Bank prefixes account references ("cgd:1234").
	Bank string
	// Senders are matched case-insensitively as substrings of the message sender.
	Senders []string
	// Marker is a coarse check on the message text.
	Marker    *regexp.Regexp
	Keywords  normalize.Keywords
	Templates []Template
}

// Parser is a stateless parser built from a Config. Safe for concurrent use.
type Parser struct {
	cfg Config
}

func New(cfg Config) *Parser {
	senders := make([]string, len(cfg.Senders))
	for i, s := range cfg.Senders {
		senders[i] = strings.ToLower(s)
	}

	cfg.Senders = senders

	return &Parser{cfg: cfg}
}

func (p *Parser) Name() string {
	return p.cfg.Name
}

// Accepts requires every configured check to pass: a known sender and the marker.
// A parser with neither check accepts nothing.
func (p *Parser) Accepts(m message.Message) bool {
	if len(p.cfg.Senders) == 0 && p.cfg.Marker == nil {
		return false
	}

	if len(p.cfg.Senders) > 0 && !p.fromSender(m.From) {
		return false
	}

	if p.cfg.Marker != nil && !p.cfg.Marker.MatchString(m.Text()) {
		return false
	}

	return true
}

func (p *Parser) fromSender(from string) bool {
	from = strings.ToLower(from)

	for _, s := range p.cfg.Senders {
		if strings.Contains(from, s) {
			return true
		}
	}

	return false
}

// Parse extracts a transaction using the first template whose Pattern matches.
func (p *Parser) Parse(m message.Message) (transaction.Transaction, error) {
	text := m.Text()

	for i := range p.cfg.Templates {
		t := &p.cfg.Templates[i]

		fields, ok := capture(t.Pattern, text)
		if !ok {
			continue
		}

		for _, re := range t.Optional {
			extra, ok := capture(re, text)
			if !ok {
				continue
			}

			for k, v := range extra {
				if fields[k] == "" {
					fields[k] = v
				}
			}
		}

		tx, err := p.build(t, fields, m)
		if err != nil {
			return transaction.Transaction{}, fmt.Errorf("template %s: %w", t.Name, err)
		}

		return tx, nil
	}

	return transaction.Transaction{}, fmt.Errorf("%w in %s", ErrNoTemplate, p.cfg.Name)
}

func (p *Parser) build(t *Template, fields map[string]string, m message.Message) (transaction.Transaction, error) {
	dir := t.Direction
	if dir == normalize.DirectionUnknown && fields[GroupDirection] != "" {
		dir = normalize.DirectionOf(fields[GroupDirection], p.cfg.Keywords)
	}

	if dir == normalize.DirectionUnknown {
		dir = normalize.DirectionOf(m.Text(), p.cfg.Keywords)
	}

	rawAmount := fields[GroupAmount]
	if cur := fields[GroupCurrency]; cur != "" {
		rawAmount = cur + " " + rawAmount
	}

	money, err := normalize.ParseAmount(rawAmount, dir, t.Format)
	if err != nil {
		return transaction.Transaction{}, fmt.Errorf("parsing amount %q: %w", rawAmount, err)
	}

	date, err := p.date(t, fields[GroupDate], m)
	if err != nil {
		return transaction.Transaction{}, err
	}

	rawPayee := strings.TrimSpace(fields[GroupPayee])

	payee := t.DefaultPayee
	if rawPayee != "" {
		payee = normalize.CleanPayee(rawPayee, t.Strip...)
	}

	return transaction.Transaction{
		Date:     date,
		Amount:   money.Minor,
		Currency: money.Currency,
		Payee:    payee,
		RawPayee: rawPayee,
		Memo:     t.Name,
		Account:  normalize.AccountRef(p.cfg.Bank, fields[GroupAccount]),
		Cleared:  t.Cleared,
	}, nil
}

func (p *Parser) date(t *Template, raw string, m message.Message) (date time.Time, err error) {
	if raw != "" {
		date, err = normalize.ParseDate(raw, t.DateLayouts...)
		if err != nil {
			return date, fmt.Errorf("parsing date: %w", err)
		}

		return date, nil
	}

	if t.UseReceivedDate && !m.ReceivedAt.IsZero() {
		return normalize.DateOf(m.ReceivedAt), nil
	}

	return date, ErrMissingDate
}

// capture returns the non-empty named groups of the first match of re in text.
func capture(re *regexp.Regexp, text string) (map[string]string, bool) {
	if re == nil {
		return nil, false
	}

	match := re.FindStringSubmatch(text)
	if match == nil {
		return nil, false
	}

	fields := make(map[string]string)

	for i, name := range re.SubexpNames() {
		if name == "" || match[i] == "" {
			continue
		}

		fields[name] = strings.TrimSpace(match[i])
	}

	return fields, true
}
