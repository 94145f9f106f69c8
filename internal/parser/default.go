package parser

import (
	"github.com/MrJamesThe3rd/tally/internal/parser/cgd"
	"github.com/MrJamesThe3rd/tally/internal/parser/chase"
	"github.com/MrJamesThe3rd/tally/internal/parser/generic"
	"github.com/MrJamesThe3rd/tally/internal/parser/hdfc"
)

// Default returns the built-in parsers, bank-specific ones first and the generic
// fallback last.
func Default() *Registry {
	r, err := NewRegistry(
		cgd.New(),
		chase.New(),
		hdfc.New(),
		generic.New(),
	)
	if err != nil {
		panic(err)
	}

	return r
}
