package cgd

import (
	"regexp"

	"github.com/MrJamesThe3rd/tally/internal/normalize"
	"github.com/MrJamesThe3rd/tally/internal/parser/template"
)

var (
	format      = normalize.AmountFormat{Decimal: ',', Currency: "EUR"}
	dateLayouts = []string{"02-01-2006", "02/01/2006"}

	// terminalRef drops the POS terminal suffix CGD appends to merchant names.
	terminalRef = regexp.MustCompile(`(?i)\s+TPA\s*\d+$`)
)

// amount and date fragments shared by every layout.
const (
	amountExpr = `(?P<amount>\d[\d.]*(?:,\d{2})?)\s*(?P<currency>EUR|€)?`
	dateExpr   = `(?P<date>\d{2}[-/]\d{2}[-/]\d{4})`
)

// templates is the ordered list of CGD alert layouts.
// More specific templates should come first to avoid false matches.
var templates = []template.Template{
	{
		Name: "compra",
		Pattern: regexp.MustCompile(`(?is)compra\s+de\s+` + amountExpr +
			`\s+(?:em|no|na)\s+(?P<payee>.+?)\s+com\s+o\s+cart[aã]o\s+(?P<account>[*\d]+)\s+(?:em|a)\s+` + dateExpr),
		Direction:   normalize.DirectionDebit,
		DateLayouts: dateLayouts,
		Format:      format,
		Strip:       []*regexp.Regexp{terminalRef},
	},
	{
		Name: "levantamento",
		Pattern: regexp.MustCompile(`(?is)levantamento\s+de\s+` + amountExpr +
			`\s+(?:em|no|na)\s+(?P<payee>.+?)\s+com\s+o\s+cart[aã]o\s+(?P<account>[*\d]+)\s+(?:em|a)\s+` + dateExpr),
		Direction:    normalize.DirectionDebit,
		DateLayouts:  dateLayouts,
		Format:       format,
		DefaultPayee: "Levantamento",
		Cleared:      true,
	},
	{
		Name: "transferencia-recebida",
		Pattern: regexp.MustCompile(`(?is)transfer[eê]ncia\s+recebida\s+de\s+` + amountExpr +
			`\s+de\s+(?P<payee>.+?)\s+na\s+conta\s+(?P<account>[*\d]+)\s+(?:em|a)\s+` + dateExpr),
		Direction:   normalize.DirectionCredit,
		DateLayouts: dateLayouts,
		Format:      format,
		Cleared:     true,
	},
	{
		Name: "transferencia-enviada",
		Pattern: regexp.MustCompile(`(?is)transfer[eê]ncia\s+enviada\s+de\s+` + amountExpr +
			`\s+para\s+(?P<payee>.+?)\s+da\s+conta\s+(?P<account>[*\d]+)\s+(?:em|a)\s+` + dateExpr),
		Direction:   normalize.DirectionDebit,
		DateLayouts: dateLayouts,
		Format:      format,
		Cleared:     true,
	},
}
