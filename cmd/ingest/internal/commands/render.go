package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/currency"

	"github.com/MrJamesThe3rd/tally/internal/ingest"
	"github.com/MrJamesThe3rd/tally/internal/parser"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	failedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	missStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func renderSummary(s ingest.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d messages: %d parsed, %d unmatched, %d failed\n", s.Messages, s.Parsed, s.Unmatched, s.Failed)

	if s.DryRun {
		fmt.Fprintf(&b, "dry run: %d transactions not written", s.Attempted)
	} else {
		fmt.Fprintf(&b, "%d written, %d already imported", s.Written, s.Duplicates)
	}

	return b.String()
}

func renderOutcomes(outcomes []parser.Outcome) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("MESSAGE", "PARSER", "DATE", "AMOUNT", "PAYEE", "ACCOUNT").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			if row < 0 || row >= len(outcomes) {
				return lipgloss.NewStyle()
			}

			switch outcomes[row].Status {
			case parser.StatusFailed:
				return failedStyle
			case parser.StatusNoMatch:
				return missStyle
			}

			return lipgloss.NewStyle()
		})

	for _, o := range outcomes {
		switch o.Status {
		case parser.StatusParsed:
			tx := o.Transaction
			t.Row(o.Message.ID, o.Parser, tx.Date.Format(time.DateOnly), formatMinor(tx.Amount, tx.Currency), tx.Payee, tx.Account)
		case parser.StatusFailed:
			t.Row(o.Message.ID, o.Parser, "", "", o.Err.Error(), "")
		default:
			t.Row(o.Message.ID, "-", "", "", o.Message.Preview(), "")
		}
	}

	return t.Render()
}

// formatMinor renders minor units with the currency's standard number of decimals.
func formatMinor(minor int64, code string) string {
	scale := 2

	if unit, err := currency.ParseISO(code); err == nil {
		scale, _ = currency.Standard.Rounding(unit)
	}

	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}

	s := strconv.FormatInt(minor, 10)
	if scale > 0 {
		for len(s) <= scale {
			s = "0" + s
		}

		s = s[:len(s)-scale] + "." + s[len(s)-scale:]
	}

	return sign + s + " " + code
}
