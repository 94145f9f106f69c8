// Package chase parses Chase (US) account alert e-mails.
package chase

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/MrJamesThe3rd/tally/internal/message"
	"github.com/MrJamesThe3rd/tally/internal/normalize"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

const Name = "chase"

var ErrUnsupportedAlert = errors.New("unsupported chase alert")

var (
	senderDomain = "chase.com"
	marker       = regexp.MustCompile(`(?i)has\s+been\s+authorized|direct\s+deposit`)

	// "A charge of ($USD) 1,234.56 at STARBUCKS has been authorized on Oct 5, 2023 at 7:41 PM ET."
	authorization = regexp.MustCompile(`(?is)a\s+charge\s+of\s+\(\$?([A-Z]{3})\)\s+([\d,]+(?:\.\d+)?)\s+at\s+(.+?)\s+has\s+been\s+authorized\s+on\s+([A-Za-z]{3,9}\.?\s+\d{1,2},\s+\d{4})`)
	// "Your direct deposit of $2,500.00 from ACME CORP PAYROLL posted on Oct 5, 2023."
	deposit = regexp.MustCompile(`(?is)your\s+direct\s+deposit\s+of\s+(\$[\d,]+(?:\.\d+)?)\s+from\s+(.+?)\s+(?:posted|was\s+posted)\s+on\s+([A-Za-z]{3,9}\.?\s+\d{1,2},\s+\d{4})`)

	accountRe = regexp.MustCompile(`(?i)ending\s+in\s+(\d{4})`)

	dateLayouts = []string{"Jan 2, 2006", "January 2, 2006", "Jan. 2, 2006"}
	usd         = normalize.AmountFormat{Currency: "USD"}
)

type Parser struct{}

func New() *Parser {
	return &Parser{}
}

func (p *Parser) Name() string {
	return Name
}

func (p *Parser) Accepts(m message.Message) bool {
	fromChase := strings.Contains(strings.ToLower(m.From), senderDomain)

	return fromChase && marker.MatchString(m.Text())
}

func (p *Parser) Parse(m message.Message) (transaction.Transaction, error) {
	text := m.Text()

	var tx transaction.Transaction

	switch {
	case authorization.MatchString(text):
		match := authorization.FindStringSubmatch(text)

		money, err := normalize.ParseAmount(match[1]+" "+match[2], normalize.DirectionDebit, usd)
		if err != nil {
			return tx, fmt.Errorf("parsing amount: %w", err)
		}

		date, err := normalize.ParseDate(match[4], dateLayouts...)
		if err != nil {
			return tx, fmt.Errorf("parsing date: %w", err)
		}

		tx = transaction.Transaction{
			Date:     date,
			Amount:   money.Minor,
			Currency: money.Currency,
			Payee:    normalize.CleanPayee(match[3]),
			RawPayee: strings.TrimSpace(match[3]),
			Memo:     "authorization",
		}
	case deposit.MatchString(text):
		match := deposit.FindStringSubmatch(text)

		money, err := normalize.ParseAmount(match[1], normalize.DirectionCredit, usd)
		if err != nil {
			return tx, fmt.Errorf("parsing amount: %w", err)
		}

		date, err := normalize.ParseDate(match[3], dateLayouts...)
		if err != nil {
			return tx, fmt.Errorf("parsing date: %w", err)
		}

		tx = transaction.Transaction{
			Date:     date,
			Amount:   money.Minor,
			Currency: money.Currency,
			Payee:    normalize.CleanPayee(match[2]),
			RawPayee: strings.TrimSpace(match[2]),
			Memo:     "direct deposit",
			// Deposits are only announced once posted.
			Cleared: true,
		}
	default:
		return tx, ErrUnsupportedAlert
	}

	if m := accountRe.FindStringSubmatch(text); m != nil {
		tx.Account = normalize.AccountRef(Name, m[1])
	}

	return tx, nil
}
