// Package source defines where notification messages come from.
package source

import (
	"context"
	"log/slog"

	"github.com/MrJamesThe3rd/tally/internal/message"
)

// Source fetches pending messages.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]message.Message, error)
}

// Collect fetches from each source in order. A failing source is logged and skipped so
// the others still contribute to the batch.
func Collect(ctx context.Context, logger *slog.Logger, sources ...Source) ([]message.Message, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var msgs []message.Message

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fetched, err := src.Fetch(ctx)
		if err != nil {
			logger.Error("failed to fetch messages", "source", src.Name(), "error", err)
			continue
		}

		logger.Info("fetched messages", "source", src.Name(), "count", len(fetched))

		msgs = append(msgs, fetched...)
	}

	return msgs, nil
}

// Marker is implemented by sources that can hide handled messages from later fetches.
type Marker interface {
	MarkProcessed(ctx context.Context, ids ...string) error
}

// MarkProcessed marks the messages fetched from src, except those keep reports true for,
// once they have been written. It is a no-op for sources that are not a Marker.
func MarkProcessed(ctx context.Context, src Source, msgs []message.Message, keep func(message.Message) bool) error {
	marker, ok := src.(Marker)
	if !ok {
		return nil
	}

	var ids []string

	for _, m := range msgs {
		if keep != nil && keep(m) {
			continue
		}

		ids = append(ids, m.ID)
	}

	if len(ids) == 0 {
		return nil
	}

	return marker.MarkProcessed(ctx, ids...)
}
