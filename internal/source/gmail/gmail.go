// Package gmail reads bank alerts from a Gmail inbox.
package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/MrJamesThe3rd/tally/internal/message"
)

const (
	Name = "gmail"

	user         = "me"
	DefaultQuery = "is:unread in:inbox"
	unreadLabel  = "UNREAD"

	// maxBatchModify is the API limit on ids per batchModify call.
	maxBatchModify = 1000
)

type Config struct {
	CredentialsFile string
	TokenFile       string
	Query           string
	MaxResults      int64
	// MarkRead lets MarkProcessed remove the UNREAD label from handled messages.
	MarkRead bool
}

type Source struct {
	srv *gmail.Service
	cfg Config
}

// New builds a source from an OAuth client secret and a previously saved token.
// No interactive authorization is attempted.
func New(ctx context.Context, cfg Config) (*Source, error) {
	b, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading client secret file: %w", err)
	}

	scope := gmail.GmailReadonlyScope
	if cfg.MarkRead {
		scope = gmail.GmailModifyScope
	}

	oauthConfig, err := google.ConfigFromJSON(b, scope)
	if err != nil {
		return nil, fmt.Errorf("parsing client secret file: %w", err)
	}

	tok, err := tokenFromFile(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(oauthConfig.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("creating gmail service: %w", err)
	}

	return NewWithService(srv, cfg), nil
}

func NewWithService(srv *gmail.Service, cfg Config) *Source {
	if cfg.Query == "" {
		cfg.Query = DefaultQuery
	}

	return &Source{srv: srv, cfg: cfg}
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, err
	}

	return tok, nil
}

func (s *Source) Name() string {
	return Name
}

// Fetch returns the messages matching the configured query, oldest first.
func (s *Source) Fetch(ctx context.Context) ([]message.Message, error) {
	var ids []string

	call := s.srv.Users.Messages.List(user).Q(s.cfg.Query)
	if s.cfg.MaxResults > 0 {
		call = call.MaxResults(s.cfg.MaxResults)
	}

	err := call.Pages(ctx, func(page *gmail.ListMessagesResponse) error {
		for _, m := range page.Messages {
			ids = append(ids, m.Id)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}

	msgs := make([]message.Message, 0, len(ids))

	// The API lists newest first.
	for i := len(ids) - 1; i >= 0; i-- {
		full, err := s.srv.Users.Messages.Get(user, ids[i]).Format("full").Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("getting message %s: %w", ids[i], err)
		}

		msgs = append(msgs, toMessage(full))
	}

	return msgs, nil
}

// MarkProcessed removes the UNREAD label from the given messages so an unread query no
// longer returns them. It does nothing unless MarkRead is set.
func (s *Source) MarkProcessed(ctx context.Context, ids ...string) error {
	if !s.cfg.MarkRead {
		return nil
	}

	for start := 0; start < len(ids); start += maxBatchModify {
		chunk := ids[start:min(start+maxBatchModify, len(ids))]

		req := &gmail.BatchModifyMessagesRequest{Ids: chunk, RemoveLabelIds: []string{unreadLabel}}
		if err := s.srv.Users.Messages.BatchModify(user, req).Context(ctx).Do(); err != nil {
			return fmt.Errorf("marking %d messages read: %w", len(chunk), err)
		}
	}

	return nil
}

func toMessage(msg *gmail.Message) message.Message {
	m := message.Message{
		ID:         msg.Id,
		Source:     Name,
		ReceivedAt: time.UnixMilli(msg.InternalDate).UTC(),
	}

	if msg.Payload == nil {
		m.Body = msg.Snippet
		return m
	}

	for _, h := range msg.Payload.Headers {
		switch strings.ToLower(h.Name) {
		case "subject":
			m.Subject = h.Value
		case "from":
			m.From = h.Value
		}
	}

	m.Body = plainTextBody(msg.Payload)
	if m.Body == "" {
		m.Body = msg.Snippet
	}

	return m
}

// plainTextBody returns the first text/plain part, depth first.
func plainTextBody(part *gmail.MessagePart) string {
	mimeType := strings.ToLower(part.MimeType)

	if mimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
		data, err := decodeBody(part.Body.Data)
		if err == nil {
			return string(data)
		}
	}

	for _, p := range part.Parts {
		if body := plainTextBody(p); body != "" {
			return body
		}
	}

	return ""
}

// decodeBody accepts padded and unpadded base64url.
func decodeBody(data string) ([]byte, error) {
	if b, err := base64.URLEncoding.DecodeString(data); err == nil {
		return b, nil
	}

	return base64.RawURLEncoding.DecodeString(data)
}
