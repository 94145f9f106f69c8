package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newParsersCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parsers",
		Short: "List parsers in dispatch order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for i, name := range a.registry.Names() {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, name)
			}

			return nil
		},
	}
}
