// Package cgd parses Caixa Geral de Depósitos SMS and e-mail alerts.
package cgd

import (
	"regexp"

	"github.com/MrJamesThe3rd/tally/internal/normalize"
	"github.com/MrJamesThe3rd/tally/internal/parser/template"
)

const Name = "cgd"

var (
	senders = []string{"cgd", "caixa"}
	marker  = regexp.MustCompile(`(?i)\b(?:compra|levantamento|transfer[eê]ncia)\b`)
)

func New() *template.Parser {
	return template.New(template.Config{
		Name:      Name,
		Bank:      Name,
		Senders:   senders,
		Marker:    marker,
		Keywords:  normalize.PortugueseKeywords,
		Templates: templates,
	})
}
