// Package smsfile reads SMS exported from a phone as JSON.
package smsfile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/message"
)

const Name = "sms"

// record is one SMS in the export. Backup apps write the date as epoch milliseconds,
// either as a number or as a string.
type record struct {
	ID      json.Number `json:"_id"`
	Address string      `json:"address"`
	Date    json.Number `json:"date"`
	Body    string      `json:"body"`
}

type Source struct {
	path string
}

func New(path string) *Source {
	return &Source{path: path}
}

func (s *Source) Name() string {
	return Name
}

func (s *Source) Fetch(ctx context.Context) ([]message.Message, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening sms export: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode reads an SMS export. Messages without an id get one derived from their
// content, so the id survives the export growing or being reordered.
func Decode(r io.Reader) ([]message.Message, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var records []record
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding sms export: %w", err)
	}

	msgs := make([]message.Message, 0, len(records))

	for _, rec := range records {
		id := rec.ID.String()
		if id == "" {
			id = contentID(rec)
		}

		var received time.Time

		if rec.Date != "" {
			ms, err := rec.Date.Int64()
			if err != nil {
				return nil, fmt.Errorf("sms %s: invalid date %q: %w", id, rec.Date, err)
			}

			received = time.UnixMilli(ms).UTC()
		}

		msgs = append(msgs, message.Message{
			ID:         id,
			Source:     Name,
			ReceivedAt: received,
			From:       rec.Address,
			Body:       rec.Body,
		})
	}

	return msgs, nil
}

func contentID(rec record) string {
	name := rec.Address + "\x00" + rec.Date.String() + "\x00" + rec.Body
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}
