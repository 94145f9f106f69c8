package normalize

import (
	"regexp"
	"strings"
)

// Direction is the flow of money relative to the account holder.
type Direction int

const (
	DirectionUnknown Direction = iota
	DirectionDebit
	DirectionCredit
)

func (d Direction) String() string {
	switch d {
	case DirectionDebit:
		return "debit"
	case DirectionCredit:
		return "credit"
	}

	return "unknown"
}

// Keywords holds the words a bank uses for outgoing and incoming money.
type Keywords struct {
	debit  *regexp.Regexp
	credit *regexp.Regexp
}

func NewKeywords(debit, credit []string) Keywords {
	return Keywords{debit: wordsPattern(debit), credit: wordsPattern(credit)}
}

var (
	EnglishKeywords = NewKeywords(
		[]string{"debited", "debit", "spent", "withdrawn", "withdrawal", "paid", "sent", "purchase", "charge", "charged"},
		[]string{"credited", "credit", "received", "deposited", "deposit", "refund", "refunded", "reversed"},
	)
	PortugueseKeywords = NewKeywords(
		[]string{"compra", "débito", "debito", "levantamento", "pagamento", "transferência enviada", "transferencia enviada"},
		[]string{"crédito", "credito", "transferência recebida", "transferencia recebida", "reembolso", "depósito", "deposito"},
	)
)

func wordsPattern(words []string) *regexp.Regexp {
	if len(words) == 0 {
		return nil
	}

	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(strings.ToLower(w))
	}

	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// DirectionOf returns the direction implied by the first keyword found in text.
// "spent on your Credit Card" is a debit because "spent" comes first.
func DirectionOf(text string, k Keywords) Direction {
	debitAt := firstIndex(k.debit, text)
	creditAt := firstIndex(k.credit, text)

	switch {
	case debitAt < 0 && creditAt < 0:
		return DirectionUnknown
	case creditAt < 0, debitAt >= 0 && debitAt < creditAt:
		return DirectionDebit
	default:
		return DirectionCredit
	}
}

func firstIndex(re *regexp.Regexp, text string) int {
	if re == nil {
		return -1
	}

	loc := re.FindStringIndex(text)
	if loc == nil {
		return -1
	}

	return loc[0]
}
