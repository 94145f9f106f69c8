package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var errOverlap = errors.New("messages accepted by more than one parser")

func newOverlapsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "overlaps [file or directory...]",
		Short: "Report messages that more than one parser would accept",
		Long: "Every parser's acceptance check is run against every message. Only the first " +
			"accepting parser is used at runtime, so an overlap means the result depends on order.",
		RunE: func(cmd *cobra.Command, args []string) error {
			srcs, err := a.sources(cmd.Context(), args, false)
			if err != nil {
				return err
			}

			_, msgs, err := a.fetch(cmd.Context(), srcs)
			if err != nil {
				return err
			}

			overlaps := a.registry.Overlaps(msgs)
			if len(overlaps) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no overlaps in %d messages\n", len(msgs))
				return nil
			}

			for _, o := range overlaps {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", o.MessageID, strings.Join(o.Parsers, ", "))
			}

			return fmt.Errorf("%w: %d of %d", errOverlap, len(overlaps), len(msgs))
		},
	}
}
