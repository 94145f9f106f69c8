// Package ingest runs a batch of messages through the parser registry and hands the
// resulting transactions to a sink in a single call.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/tally/internal/message"
	"github.com/MrJamesThe3rd/tally/internal/parser"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

//go:generate mockgen -source=driver.go -destination=driver_mock.go -package=ingest

// Sink stores a batch of transactions. transaction.Service is the production sink.
type Sink interface {
	WriteBatch(ctx context.Context, txs []transaction.Transaction) (*transaction.ImportResult, error)
}

// PayeeSuggester maps a raw payee seen on an account to a learned preferred name, or ""
// when unknown.
type PayeeSuggester interface {
	Suggest(ctx context.Context, account, rawPayee string) (string, error)
}

// Summary reports a run.
type Summary struct {
	Messages   int  `json:"messages"`
	Parsed     int  `json:"parsed"`
	Unmatched  int  `json:"unmatched"`
	Failed     int  `json:"failed"`
	Attempted  int  `json:"attempted"`
	Written    int  `json:"written"`
	Duplicates int  `json:"duplicates"`
	DryRun     bool `json:"dry_run"`

	Outcomes []parser.Outcome `json:"-"`
}

type Driver struct {
	registry *parser.Registry
	sink     Sink
	logger   *slog.Logger
	workers  int
	payees   PayeeSuggester
	dryRun   bool
}

type Option func(*Driver)

// WithWorkers processes messages on n goroutines. Output order still follows input order.
func WithWorkers(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.workers = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

func WithPayeeSuggester(s PayeeSuggester) Option {
	return func(d *Driver) {
		d.payees = s
	}
}

// WithDryRun parses and reports without calling the sink.
func WithDryRun(dryRun bool) Option {
	return func(d *Driver) {
		d.dryRun = dryRun
	}
}

func NewDriver(registry *parser.Registry, sink Sink, opts ...Option) *Driver {
	d := &Driver{
		registry: registry,
		sink:     sink,
		logger:   slog.Default(),
		workers:  1,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Run processes msgs in order and writes every parsed transaction in one sink call,
// even when the batch is empty. Per-message failures are logged and skipped. A sink
// error is returned along with a summary that still counts the attempted writes.
func (d *Driver) Run(ctx context.Context, msgs []message.Message) (Summary, error) {
	summary := Summary{Messages: len(msgs), DryRun: d.dryRun}

	outcomes, err := d.process(ctx, msgs)
	if err != nil {
		return summary, fmt.Errorf("processing messages: %w", err)
	}

	summary.Outcomes = outcomes

	batch := make([]transaction.Transaction, 0, len(outcomes))

	for _, out := range outcomes {
		switch out.Status {
		case parser.StatusParsed:
			summary.Parsed++

			batch = append(batch, out.Transaction)
		case parser.StatusNoMatch:
			summary.Unmatched++

			d.logger.Warn("no parser matched",
				"message_id", out.Message.ID,
				"source", out.Message.Source,
				"preview", out.Message.Preview(),
			)
		case parser.StatusFailed:
			summary.Failed++

			d.logger.Error("parse failure",
				"message_id", out.Message.ID,
				"parser", out.Parser,
				"error", out.Err,
			)
		}
	}

	batch = d.renamePayees(ctx, batch)
	summary.Attempted = len(batch)

	if d.dryRun {
		d.logSummary(summary)
		return summary, nil
	}

	result, err := d.sink.WriteBatch(ctx, batch)
	if err != nil {
		d.logger.Error("failed to write batch", "error", err, "attempted", summary.Attempted)
		d.logSummary(summary)

		return summary, fmt.Errorf("write batch: %w", err)
	}

	if result != nil {
		summary.Written = len(result.Imported)
		summary.Duplicates = len(result.Skipped)
	}

	d.logSummary(summary)

	return summary, nil
}

func (d *Driver) process(ctx context.Context, msgs []message.Message) ([]parser.Outcome, error) {
	outcomes := make([]parser.Outcome, len(msgs))

	if d.workers <= 1 {
		for i, m := range msgs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			outcomes[i] = d.registry.Process(m)
		}

		return outcomes, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)

	for i, m := range msgs {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			outcomes[i] = d.registry.Process(m)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return outcomes, nil
}

// renamePayees replaces payees with learned names. Lookup errors keep the parsed payee.
func (d *Driver) renamePayees(ctx context.Context, batch []transaction.Transaction) []transaction.Transaction {
	if d.payees == nil {
		return batch
	}

	for i := range batch {
		preferred, err := d.payees.Suggest(ctx, batch[i].Account, batch[i].RawPayee)
		if err != nil {
			d.logger.Warn("payee lookup failed", "message_id", batch[i].MessageID, "error", err)
			continue
		}

		if preferred != "" {
			batch[i].Payee = preferred
		}
	}

	return batch
}

func (d *Driver) logSummary(s Summary) {
	d.logger.Info("batch summary",
		"messages", s.Messages,
		"parsed", s.Parsed,
		"unmatched", s.Unmatched,
		"failed", s.Failed,
		"attempted", s.Attempted,
		"written", s.Written,
		"duplicates", s.Duplicates,
		"dry_run", s.DryRun,
	)
}
