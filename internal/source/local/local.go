// Package local picks a source for a path on disk.
package local

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/MrJamesThe3rd/tally/internal/message"
	"github.com/MrJamesThe3rd/tally/internal/source"
	"github.com/MrJamesThe3rd/tally/internal/source/maildir"
	"github.com/MrJamesThe3rd/tally/internal/source/smsfile"
)

// Open returns a maildir source for a directory, an SMS export source for a .json file,
// and a single e-mail source for anything else. logger receives files a directory
// source skips.
func Open(path string, logger *slog.Logger) (source.Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	switch {
	case info.IsDir():
		return maildir.New(path, logger), nil
	case strings.EqualFold(filepath.Ext(path), ".json"):
		return smsfile.New(path), nil
	default:
		return &emailFile{path: path}, nil
	}
}

type emailFile struct {
	path string
}

func (f *emailFile) Name() string {
	return maildir.Name
}

func (f *emailFile) Fetch(ctx context.Context) ([]message.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := maildir.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.path, err)
	}

	return []message.Message{m}, nil
}
