// Package generic is the catch-all parser for alerts no bank-specific parser claims.
package generic

import (
	"regexp"

	"github.com/MrJamesThe3rd/tally/internal/message"
	"github.com/MrJamesThe3rd/tally/internal/normalize"
	"github.com/MrJamesThe3rd/tally/internal/parser/template"
)

const (
	Name = "generic"

	UnknownPayee = "Unknown"
)

var (
	amountRe = regexp.MustCompile(`(?i)(?P<amount>(?:Rs\.?|INR|USD|EUR|GBP|US\$|[₹$€£])\s*\d[\d,]*(?:\.\d+)?)`)
	dateRe   = regexp.MustCompile(`(?i)\bon\s+(?P<date>\d{4}-\d{2}-\d{2}|\d{1,2}[-/]\d{1,2}[-/]\d{2,4}|\d{1,2}-[A-Za-z]{3}-\d{2,4}|[A-Za-z]{3,9}\.?\s+\d{1,2},?\s+\d{4})`)
	payeeRe  = regexp.MustCompile(`(?i)\b(?:at|to|from|by)\s+(?P<payee>[\p{L}\d&'.*@ _-]{2,}?)(?:\s+on\b|\s+using\b|\s+via\b|\s+ref\b|[.,;(]|$)`)

	dateLayouts = []string{
		"2006-01-02",
		"02-01-2006", "02/01/2006", "2-1-2006", "2/1/2006",
		"02-01-06", "02/01/06",
		"02-Jan-06", "02-Jan-2006",
		"Jan 2, 2006", "January 2, 2006", "Jan 2 2006",
	}
)

// Parser accepts any text with a currency amount and a debit or credit keyword.
type Parser struct {
	*template.Parser

	keywords normalize.Keywords
}

func New() *Parser {
	return &Parser{
		Parser: template.New(template.Config{
			Name:     Name,
			Bank:     Name,
			Marker:   amountRe,
			Keywords: normalize.EnglishKeywords,
			Templates: []template.Template{
				{
					Name:            Name,
					Pattern:         amountRe,
					Optional:        []*regexp.Regexp{dateRe, payeeRe},
					DateLayouts:     dateLayouts,
					UseReceivedDate: true,
					DefaultPayee:    UnknownPayee,
				},
			},
		}),
		keywords: normalize.EnglishKeywords,
	}
}

func (p *Parser) Accepts(m message.Message) bool {
	if !p.Parser.Accepts(m) {
		return false
	}

	return normalize.DirectionOf(m.Text(), p.keywords) != normalize.DirectionUnknown
}
