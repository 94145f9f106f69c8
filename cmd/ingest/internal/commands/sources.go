package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/tally/internal/message"
	"github.com/MrJamesThe3rd/tally/internal/source"
	"github.com/MrJamesThe3rd/tally/internal/source/gmail"
	"github.com/MrJamesThe3rd/tally/internal/source/local"
	"github.com/MrJamesThe3rd/tally/internal/source/maildir"
	"github.com/MrJamesThe3rd/tally/internal/source/smsfile"
)

var errNoSource = errors.New("no message source: pass a file or directory, or set INGEST_SMS_FILE, INGEST_MAIL_DIR or GMAIL_ENABLED")

// sources returns a source per path argument. Without arguments the configured
// sources are used instead.
func (a *app) sources(ctx context.Context, paths []string, withGmail bool) ([]source.Source, error) {
	var srcs []source.Source

	for _, p := range paths {
		src, err := local.Open(p, a.logger)
		if err != nil {
			return nil, err
		}

		srcs = append(srcs, src)
	}

	if len(paths) == 0 {
		if a.cfg.Ingest.SMSFile != "" {
			srcs = append(srcs, smsfile.New(a.cfg.Ingest.SMSFile))
		}

		if a.cfg.Ingest.MailDir != "" {
			srcs = append(srcs, maildir.New(a.cfg.Ingest.MailDir, a.logger))
		}
	}

	if withGmail || (len(paths) == 0 && a.cfg.Gmail.Enabled) {
		g, err := gmail.New(ctx, gmail.Config{
			CredentialsFile: a.cfg.Gmail.CredentialsFile,
			TokenFile:       a.cfg.Gmail.TokenFile,
			Query:           a.cfg.Gmail.Query,
			MaxResults:      a.cfg.Gmail.MaxResults,
			MarkRead:        a.cfg.Gmail.MarkRead,
		})
		if err != nil {
			return nil, fmt.Errorf("gmail: %w", err)
		}

		srcs = append(srcs, g)
	}

	if len(srcs) == 0 {
		return nil, errNoSource
	}

	return srcs, nil
}

type fetched struct {
	src  source.Source
	msgs []message.Message
}

// fetch collects each source separately so processed mail can be moved afterwards.
func (a *app) fetch(ctx context.Context, srcs []source.Source) ([]fetched, []message.Message, error) {
	var (
		perSource []fetched
		all       []message.Message
	)

	for _, src := range srcs {
		msgs, err := source.Collect(ctx, a.logger, src)
		if err != nil {
			return nil, nil, err
		}

		perSource = append(perSource, fetched{src: src, msgs: msgs})
		all = append(all, msgs...)
	}

	return perSource, all, nil
}
