// Package maildir reads alert e-mails saved as individual RFC 5322 files.
package maildir

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"os"
	"path/filepath"
	"strings"

	"github.com/MrJamesThe3rd/tally/internal/encoding"
	"github.com/MrJamesThe3rd/tally/internal/message"
)

const (
	Name = "maildir"

	ProcessedDir = "processed"
)

var errNoTextPart = errors.New("no text/plain part")

var wordDecoder = &mime.WordDecoder{
	CharsetReader: func(charset string, input io.Reader) (io.Reader, error) {
		return encoding.NewUTF8Reader(input, charset)
	},
}

// Source reads every regular file in a directory. The file name is the message id.
type Source struct {
	dir    string
	logger *slog.Logger
}

// New returns a source for dir. Files that cannot be read are reported to logger,
// which may be nil.
func New(dir string, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Source{dir: dir, logger: logger}
}

func (s *Source) Name() string {
	return Name
}

// Fetch reads the directory in name order. Files in ProcessedDir are not revisited.
// A file that cannot be parsed is skipped and left in place.
func (s *Source) Fetch(ctx context.Context) ([]message.Message, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading mail dir: %w", err)
	}

	var msgs []message.Message

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}

		m, err := s.readFile(e)
		if err != nil {
			s.logger.Warn("skipping unreadable mail file", "dir", s.dir, "file", e.Name(), "error", err)
			continue
		}

		msgs = append(msgs, m)
	}

	return msgs, nil
}

func (s *Source) readFile(e os.DirEntry) (message.Message, error) {
	return ReadFile(filepath.Join(s.dir, e.Name()))
}

// ReadFile parses a single saved e-mail. The file name becomes the message id and the
// modification time stands in for a missing Date header.
func ReadFile(path string) (message.Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return message.Message{}, err
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return message.Message{}, err
	}

	m.ID = filepath.Base(path)

	if m.ReceivedAt.IsZero() {
		if info, err := f.Stat(); err == nil {
			m.ReceivedAt = info.ModTime().UTC()
		}
	}

	return m, nil
}

// MarkProcessed moves the given messages into ProcessedDir so the next Fetch skips them.
func (s *Source) MarkProcessed(ctx context.Context, ids ...string) error {
	dst := filepath.Join(s.dir, ProcessedDir)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}

		if id != filepath.Base(id) {
			return fmt.Errorf("invalid message id %q", id)
		}

		if err := os.Rename(filepath.Join(s.dir, id), filepath.Join(dst, id)); err != nil {
			return fmt.Errorf("moving %s: %w", id, err)
		}
	}

	return nil
}

// Parse reads one e-mail. The result has no ID.
func Parse(r io.Reader) (message.Message, error) {
	msg, err := mail.ReadMessage(r)
	if err != nil {
		return message.Message{}, fmt.Errorf("parsing message: %w", err)
	}

	m := message.Message{
		Source:  Name,
		From:    decodeHeader(msg.Header.Get("From")),
		Subject: decodeHeader(msg.Header.Get("Subject")),
	}

	if date, err := msg.Header.Date(); err == nil {
		m.ReceivedAt = date.UTC()
	}

	body, err := textBody(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body)
	if err != nil {
		return message.Message{}, err
	}

	m.Body = body

	return m, nil
}

func decodeHeader(v string) string {
	decoded, err := wordDecoder.DecodeHeader(v)
	if err != nil {
		return v
	}

	return decoded
}

// textBody returns the first text/plain part, decoded to UTF-8.
func textBody(contentType, transferEncoding string, body io.Reader) (string, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType, params = "text/plain", map[string]string{}
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		mr := multipart.NewReader(body, params["boundary"])

		for {
			part, err := mr.NextPart()
			if errors.Is(err, io.EOF) {
				return "", errNoTextPart
			}

			if err != nil {
				return "", fmt.Errorf("reading multipart: %w", err)
			}

			text, err := textBody(part.Header.Get("Content-Type"), part.Header.Get("Content-Transfer-Encoding"), part)
			if errors.Is(err, errNoTextPart) {
				continue
			}

			return text, err
		}
	}

	if mediaType != "text/plain" {
		return "", errNoTextPart
	}

	decoded, err := encoding.NewUTF8Reader(transferDecoder(transferEncoding, body), params["charset"])
	if err != nil {
		return "", fmt.Errorf("decoding charset: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, decoded); err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}

	return strings.TrimSpace(buf.String()), nil
}

func transferDecoder(cte string, r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(cte)) {
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	}

	return r
}
