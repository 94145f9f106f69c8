package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/tally/internal/parser"
)

func newPreviewCommand(a *app) *cobra.Command {
	var withGmail bool

	cmd := &cobra.Command{
		Use:   "preview [file or directory...]",
		Short: "Show what each message parses to without writing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			srcs, err := a.sources(cmd.Context(), args, withGmail)
			if err != nil {
				return err
			}

			_, msgs, err := a.fetch(cmd.Context(), srcs)
			if err != nil {
				return err
			}

			outcomes := make([]parser.Outcome, len(msgs))
			for i, m := range msgs {
				outcomes[i] = a.registry.Process(m)
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderOutcomes(outcomes))

			return nil
		},
	}

	cmd.Flags().BoolVar(&withGmail, "gmail", false, "also read the Gmail inbox")

	return cmd
}
