package normalize

import (
	"regexp"
	"strings"
)

var accountDigits = regexp.MustCompile(`(\d{3,4})\D*$`)

// AccountRef turns a masked account or card number ("**1234", "XX1234", "****8016")
// into a "bank:1234" reference keyed on its last four digits. Empty input gives an
// empty reference.
func AccountRef(bank, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if m := accountDigits.FindStringSubmatch(raw); m != nil {
		return bank + ":" + m[1]
	}

	return bank + ":" + raw
}
