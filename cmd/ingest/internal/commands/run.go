package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/tally/internal/database"
	"github.com/MrJamesThe3rd/tally/internal/ingest"
	"github.com/MrJamesThe3rd/tally/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/tally/internal/matching/store"
	"github.com/MrJamesThe3rd/tally/internal/message"
	"github.com/MrJamesThe3rd/tally/internal/parser"
	"github.com/MrJamesThe3rd/tally/internal/source"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
	txStore "github.com/MrJamesThe3rd/tally/internal/transaction/store"
)

type runOptions struct {
	dryRun  bool
	workers int
	gmail   bool
	keep    bool
}

func newRunCommand(a *app) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run [file or directory...]",
		Short: "Parse messages and write the transactions to the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("workers") {
				opts.workers = a.cfg.Ingest.Workers
			}

			if !cmd.Flags().Changed("dry-run") {
				opts.dryRun = a.cfg.Ingest.DryRun
			}

			summary, err := a.run(cmd.Context(), args, opts)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary))

			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "parse only, write nothing")
	cmd.Flags().IntVar(&opts.workers, "workers", 4, "parallel parsers")
	cmd.Flags().BoolVar(&opts.gmail, "gmail", false, "also read the Gmail inbox")
	cmd.Flags().BoolVar(&opts.keep, "keep", false, "leave handled messages in the inbox")

	return cmd
}

func (a *app) run(ctx context.Context, paths []string, opts runOptions) (ingest.Summary, error) {
	srcs, err := a.sources(ctx, paths, opts.gmail)
	if err != nil {
		return ingest.Summary{}, err
	}

	perSource, msgs, err := a.fetch(ctx, srcs)
	if err != nil {
		return ingest.Summary{}, err
	}

	driverOpts := []ingest.Option{
		ingest.WithLogger(a.logger),
		ingest.WithWorkers(opts.workers),
		ingest.WithDryRun(opts.dryRun),
	}

	// A dry run never reaches the sink, so no database is needed.
	var sink ingest.Sink

	if !opts.dryRun {
		db, err := database.New(ctx, a.cfg.ConnectionString())
		if err != nil {
			return ingest.Summary{}, fmt.Errorf("connecting to database: %w", err)
		}
		defer db.Close()

		if err := database.Migrate(ctx, db); err != nil {
			return ingest.Summary{}, err
		}

		sink = transaction.NewService(txStore.New(db))
		driverOpts = append(driverOpts, ingest.WithPayeeSuggester(matching.NewService(matchingStore.New(db))))
	}

	summary, err := ingest.NewDriver(a.registry, sink, driverOpts...).Run(ctx, msgs)
	if err != nil {
		return summary, err
	}

	if opts.dryRun || opts.keep {
		return summary, nil
	}

	a.markProcessed(ctx, perSource, summary.Outcomes)

	return summary, nil
}

// markProcessed runs after a successful write. Mail files move out of the inbox and
// Gmail messages are marked read. Messages whose parse failed stay so they can be
// looked at and retried.
func (a *app) markProcessed(ctx context.Context, perSource []fetched, outcomes []parser.Outcome) {
	failed := make(map[string]struct{})

	for _, o := range outcomes {
		if o.Status == parser.StatusFailed {
			failed[o.Message.Source+"\x00"+o.Message.ID] = struct{}{}
		}
	}

	keep := func(m message.Message) bool {
		_, bad := failed[m.Source+"\x00"+m.ID]
		return bad
	}

	for _, f := range perSource {
		if err := source.MarkProcessed(ctx, f.src, f.msgs, keep); err != nil {
			a.logger.Error("failed to mark messages processed", "source", f.src.Name(), "error", err)
		}
	}
}
