// Package hdfc parses HDFC Bank (India) transaction SMS.
package hdfc

import (
	"regexp"

	"github.com/MrJamesThe3rd/tally/internal/normalize"
	"github.com/MrJamesThe3rd/tally/internal/parser/template"
)

const Name = "hdfc"

var (
	// SMS headers look like "VM-HDFCBK" or "AD-HDFCBN".
	senders = []string{"hdfcbk", "hdfcbn", "hdfcbank"}
	marker  = regexp.MustCompile(`(?i)\b(?:debited|credited|sent)\b`)

	format      = normalize.AmountFormat{Currency: "INR"}
	dateLayouts = []string{"02-01-06", "02/01/06", "02-01-2006", "02/01/2006", "02-Jan-06"}

	upiRef = regexp.MustCompile(`(?i)\s*\(?UPI\s+Ref\.?\s*(?:No\.?)?\s*\d+\)?`)
)

const (
	amountExpr  = `(?P<amount>(?:Rs\.?|INR|₹)\s*[\d,]+(?:\.\d{1,2})?)`
	accountExpr = `(?P<account>[*Xx]*\d{3,4})`
	payeeEnd    = `(?:\s*\(|\.\s|\.?\s*$|\s+Ref\b|\s+Not\s+you)`
)

var templates = []template.Template{
	{
		Name: "upi-sent",
		Pattern: regexp.MustCompile(`(?is)sent\s+` + amountExpr + `\s+from\s+HDFC\s+Bank\s+A/?C\s+` + accountExpr +
			`\s+to\s+(?P<payee>.+?)\s+on\s+(?P<date>\d{2}/\d{2}/\d{2})`),
		Direction:   normalize.DirectionDebit,
		DateLayouts: dateLayouts,
		Format:      format,
		Cleared:     true,
	},
	{
		Name: "debit",
		Pattern: regexp.MustCompile(`(?is)` + amountExpr + `\s+(?:has\s+been\s+)?debited\s+from\s+a/?c\s+` + accountExpr +
			`\s+on\s+(?P<date>\d{2}[-/]\w{2,3}[-/]\d{2,4})\s+(?:to|towards)\s+(?P<payee>.+?)` + payeeEnd),
		Direction:   normalize.DirectionDebit,
		DateLayouts: dateLayouts,
		Format:      format,
		Strip:       []*regexp.Regexp{upiRef},
		Cleared:     true,
	},
	{
		Name: "credit",
		Pattern: regexp.MustCompile(`(?is)` + amountExpr + `\s+(?:is\s+|has\s+been\s+)?credited\s+to\s+a/?c\s+` + accountExpr +
			`\s+on\s+(?P<date>\d{2}[-/]\w{2,3}[-/]\d{2,4})\s+by\s+(?:a/c\s+linked\s+to\s+)?(?P<payee>.+?)` + payeeEnd),
		Direction:   normalize.DirectionCredit,
		DateLayouts: dateLayouts,
		Format:      format,
		Strip:       []*regexp.Regexp{upiRef},
		Cleared:     true,
	},
}

func New() *template.Parser {
	return template.New(template.Config{
		Name:      Name,
		Bank:      Name,
		Senders:   senders,
		Marker:    marker,
		Keywords:  normalize.EnglishKeywords,
		Templates: templates,
	})
}
