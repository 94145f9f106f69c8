package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MaxPayeeLen bounds payee text, in runes.
const MaxPayeeLen = 100

var (
	payeePrefix  = regexp.MustCompile(`(?i)^(?:at|to|from|by|vpa)\s+`)
	leadingJunk  = regexp.MustCompile(`^[\s.,;:*/-]+`)
	trailingJunk = regexp.MustCompile(`[\s.,;:*/-]+$`)
)

// CleanPayee turns the merchant/memo part of a notification into a payee name.
// strip patterns are removed before the generic clean-up. It never fails: when nothing
// is left it falls back to the trimmed raw text.
func CleanPayee(raw string, strip ...*regexp.Regexp) string {
	s := norm.NFC.String(raw)

	for _, re := range strip {
		s = re.ReplaceAllString(s, " ")
	}

	s = strings.Join(strings.Fields(s), " ")
	s = leadingJunk.ReplaceAllString(s, "")
	s = payeePrefix.ReplaceAllString(s, "")
	s = trailingJunk.ReplaceAllString(s, "")

	if s == "" {
		s = strings.Join(strings.Fields(norm.NFC.String(raw)), " ")
	}

	return truncate(s, MaxPayeeLen)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return strings.TrimSpace(string(runes[:n]))
}
