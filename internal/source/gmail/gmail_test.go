package gmail_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/MrJamesThe3rd/tally/internal/source/gmail"
)

type fakeGmail struct {
	mu       sync.Mutex
	modified []string
	query    string
}

func (f *fakeGmail) handler(t *testing.T) http.Handler {
	body := base64.URLEncoding.EncodeToString([]byte("A charge of ($USD) 5.00 at CAFE has been authorized on Oct 5, 2023."))

	messages := map[string]*gmailapi.Message{
		"new": {
			Id:           "new",
			InternalDate: time.Date(2023, 10, 6, 12, 0, 0, 0, time.UTC).UnixMilli(),
			Payload: &gmailapi.MessagePart{
				MimeType: "multipart/alternative",
				Headers: []*gmailapi.MessagePartHeader{
					{Name: "From", Value: "Chase <no.reply.alerts@chase.com>"},
					{Name: "Subject", Value: "Your $5.00 transaction"},
				},
				Parts: []*gmailapi.MessagePart{
					{MimeType: "text/html", Body: &gmailapi.MessagePartBody{Data: base64.URLEncoding.EncodeToString([]byte("<p>html</p>"))}},
					{MimeType: "text/plain", Body: &gmailapi.MessagePartBody{Data: body}},
				},
			},
		},
		"old": {
			Id:           "old",
			InternalDate: time.Date(2023, 10, 5, 12, 0, 0, 0, time.UTC).UnixMilli(),
			Snippet:      "snippet only",
			Payload:      &gmailapi.MessagePart{MimeType: "text/html"},
		},
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /gmail/v1/users/me/messages", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.query = r.URL.Query().Get("q")
		f.mu.Unlock()

		writeJSON(t, w, &gmailapi.ListMessagesResponse{Messages: []*gmailapi.Message{{Id: "new"}, {Id: "old"}}})
	})

	mux.HandleFunc("GET /gmail/v1/users/me/messages/{id}", func(w http.ResponseWriter, r *http.Request) {
		msg, ok := messages[r.PathValue("id")]
		if !ok {
			http.NotFound(w, r)
			return
		}

		writeJSON(t, w, msg)
	})

	mux.HandleFunc("POST /gmail/v1/users/me/messages/batchModify", func(w http.ResponseWriter, r *http.Request) {
		var req gmailapi.BatchModifyMessagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"UNREAD"}, req.RemoveLabelIds)

		f.mu.Lock()
		f.modified = append(f.modified, req.Ids...)
		f.mu.Unlock()

		w.WriteHeader(http.StatusNoContent)
	})

	return mux
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func newSource(t *testing.T, f *fakeGmail, cfg gmail.Config) *gmail.Source {
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)

	svc, err := gmailapi.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)

	return gmail.NewWithService(svc, cfg)
}

func TestSource_Fetch(t *testing.T) {
	f := &fakeGmail{}
	src := newSource(t, f, gmail.Config{})

	msgs, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, gmail.DefaultQuery, f.query)
	assert.Empty(t, f.modified)

	assert.Equal(t, "old", msgs[0].ID)
	assert.Equal(t, "snippet only", msgs[0].Body)

	newest := msgs[1]
	assert.Equal(t, "new", newest.ID)
	assert.Equal(t, gmail.Name, newest.Source)
	assert.Equal(t, "Chase <no.reply.alerts@chase.com>", newest.From)
	assert.Equal(t, "Your $5.00 transaction", newest.Subject)
	assert.True(t, strings.HasPrefix(newest.Body, "A charge of ($USD) 5.00"))
	assert.Equal(t, time.Date(2023, 10, 6, 12, 0, 0, 0, time.UTC), newest.ReceivedAt)
}

func TestSource_MarkProcessed(t *testing.T) {
	f := &fakeGmail{}
	src := newSource(t, f, gmail.Config{Query: "from:chase.com is:unread", MarkRead: true})

	msgs, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, "from:chase.com is:unread", f.query)
	assert.Empty(t, f.modified, "fetching must not mark anything read")

	require.NoError(t, src.MarkProcessed(context.Background(), "new"))
	assert.Equal(t, []string{"new"}, f.modified)
}

func TestSource_MarkProcessed_Disabled(t *testing.T) {
	f := &fakeGmail{}
	src := newSource(t, f, gmail.Config{})

	require.NoError(t, src.MarkProcessed(context.Background(), "new", "old"))
	assert.Empty(t, f.modified)
}
