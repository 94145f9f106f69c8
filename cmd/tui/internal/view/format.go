package view

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/text/currency"
)

const dbTimeout = 5 * time.Second

// FormatAmount renders minor units using the currency's standard decimals, e.g. -123456 USD as "-1234.56 USD".
func FormatAmount(minor int64, code string) string {
	scale := 2

	if unit, err := currency.ParseISO(code); err == nil {
		scale, _ = currency.Standard.Rounding(unit)
	}

	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}

	digits := strconv.FormatInt(minor, 10)

	if scale > 0 {
		for len(digits) <= scale {
			digits = "0" + digits
		}

		digits = digits[:len(digits)-scale] + "." + digits[len(digits)-scale:]
	}

	if code == "" {
		return sign + digits
	}

	return sign + digits + " " + code
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
