package normalize

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrUnknownCurrency = errors.New("unknown currency")
)

// AmountFormat describes how a bank writes numbers.
type AmountFormat struct {
	// Decimal is the decimal separator, '.' or ','. Zero means '.'.
	Decimal rune
	// Currency is the ISO code used when the text carries no symbol or code.
	Currency string
}

// Money is an amount in minor units of an ISO 4217 currency.
type Money struct {
	Minor    int64
	Currency string
}

// currencySymbols is checked in order, longer symbols first.
var currencySymbols = []struct {
	symbol string
	code   string
}{
	{"US$", "USD"},
	{"R$", "BRL"},
	{"Rs.", "INR"},
	{"Rs", "INR"},
	{"₹", "INR"},
	{"€", "EUR"},
	{"£", "GBP"},
	{"¥", "JPY"},
	{"$", "USD"},
}

var (
	isoPrefix  = regexp.MustCompile(`^([A-Za-z]{3})\s*([-+(−]?\d.*)$`)
	isoSuffix  = regexp.MustCompile(`^(.*\d\)?)\s*([A-Za-z]{3})$`)
	signSuffix = regexp.MustCompile(`(?i)([\d\s)])\s*(DR|CR)\.?$`)

	dotDecimal   = regexp.MustCompile(`^(?:\d+|\d{1,3}(?:[,' \x{00a0}\x{202f}]\d{3})+|\d{1,2}(?:,\d{2})+,\d{3})(?:\.\d+)?$`)
	commaDecimal = regexp.MustCompile(`^(?:\d+|\d{1,3}(?:[.' \x{00a0}\x{202f}]\d{3})+)(?:,\d+)?$`)

	groupSeparators = strings.NewReplacer(" ", "", "'", "", "\u00a0", "", "\u202f", "")
)

// ParseAmount converts a raw amount such as "Rs.1,234.56", "-588,74 EUR" or "(12.00)" into
// signed minor units. A known direction decides the sign; otherwise explicit markers do
// ("-", "+", parentheses, trailing DR/CR) and an unmarked amount is positive.
func ParseAmount(raw string, dir Direction, f AmountFormat) (Money, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Money{}, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}

	s, marker := stripSign(s)

	s, code, err := stripCurrency(s)
	if err != nil {
		return Money{}, err
	}

	s, inner := stripSign(s)
	if marker == DirectionUnknown {
		marker = inner
	}

	value, err := parseNumber(s, f.Decimal)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}

	if code == "" {
		code = strings.ToUpper(f.Currency)
	}

	if code == "" {
		return Money{}, fmt.Errorf("%w: no currency in %q", ErrUnknownCurrency, raw)
	}

	unit, err := currency.ParseISO(code)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}

	scale, _ := currency.Standard.Rounding(unit)

	minor := value.Shift(int32(scale))
	if !minor.IsInteger() {
		return Money{}, fmt.Errorf("%w: %q has more decimals than %s allows", ErrInvalidAmount, raw, unit)
	}

	if minor.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return Money{}, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, raw)
	}

	n := minor.IntPart()

	sign := dir
	if sign == DirectionUnknown {
		sign = marker
	}

	if sign == DirectionDebit {
		n = -n
	}

	return Money{Minor: n, Currency: unit.String()}, nil
}

// stripSign removes sign markers and reports the direction they imply.
func stripSign(s string) (string, Direction) {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		return strings.TrimSpace(s[1 : len(s)-1]), DirectionDebit
	}

	// DR or CR must follow the number itself, so codes like IDR and XDR are left alone.
	if m := signSuffix.FindStringSubmatch(s); m != nil {
		rest := strings.TrimSpace(s[:len(s)-len(m[0])+len(m[1])])
		if strings.EqualFold(m[2], "DR") {
			return rest, DirectionDebit
		}

		return rest, DirectionCredit
	}

	switch {
	case strings.HasPrefix(s, "-"):
		return strings.TrimSpace(s[1:]), DirectionDebit
	case strings.HasPrefix(s, "−"):
		return strings.TrimSpace(s[len("−"):]), DirectionDebit
	case strings.HasPrefix(s, "+"):
		return strings.TrimSpace(s[1:]), DirectionCredit
	case strings.HasSuffix(s, "-"):
		return strings.TrimSpace(s[:len(s)-1]), DirectionDebit
	}

	return s, DirectionUnknown
}

// stripCurrency removes a leading or trailing currency symbol or ISO code.
func stripCurrency(s string) (string, string, error) {
	for _, c := range currencySymbols {
		if len(s) < len(c.symbol) {
			continue
		}

		head, tail := s[len(c.symbol):], s[:len(s)-len(c.symbol)]

		if strings.EqualFold(s[:len(c.symbol)], c.symbol) && !startsWithLetter(head) {
			return strings.TrimSpace(head), c.code, nil
		}

		if strings.EqualFold(s[len(s)-len(c.symbol):], c.symbol) && !endsWithLetter(tail) {
			return strings.TrimSpace(tail), c.code, nil
		}
	}

	if m := isoPrefix.FindStringSubmatch(s); m != nil {
		return checkISO(m[2], m[1])
	}

	if m := isoSuffix.FindStringSubmatch(s); m != nil {
		return checkISO(m[1], m[2])
	}

	return s, "", nil
}

// startsWithLetter keeps a symbol such as "Rs" from matching the start of a code like RSD.
func startsWithLetter(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLetter(r)
}

func endsWithLetter(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsLetter(r)
}

func checkISO(rest, code string) (string, string, error) {
	code = strings.ToUpper(code)
	if _, err := currency.ParseISO(code); err != nil {
		return "", "", fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}

	return strings.TrimSpace(rest), code, nil
}

func parseNumber(s string, dec rune) (decimal.Decimal, error) {
	var clean string

	switch dec {
	case ',':
		if !commaDecimal.MatchString(s) {
			return decimal.Decimal{}, ErrInvalidAmount
		}

		clean = groupSeparators.Replace(s)
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	default:
		if !dotDecimal.MatchString(s) {
			return decimal.Decimal{}, ErrInvalidAmount
		}

		clean = groupSeparators.Replace(s)
		clean = strings.ReplaceAll(clean, ",", "")
	}

	return decimal.NewFromString(clean)
}
