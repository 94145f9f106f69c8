package messages_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tally/internal/http/messages"
	"github.com/MrJamesThe3rd/tally/internal/ingest"
	"github.com/MrJamesThe3rd/tally/internal/parser"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

const body = `{"messages":[
	{"id":"1","from":"VM-HDFCBK","body":"Rs.250.00 debited from a/c **1234 on 05-10-23 to VPA shop@upi (UPI Ref No 1)."},
	{"id":"2","from":"VM-HDFCBK","body":"Your OTP is 123456"}
]}`

type outcome struct {
	MessageID   string `json:"message_id"`
	Status      string `json:"status"`
	Parser      string `json:"parser"`
	Error       string `json:"error"`
	Transaction *struct {
		Date     string `json:"date"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Payee    string `json:"payee"`
		Account  string `json:"account"`
	} `json:"transaction"`
}

type ingestResponse struct {
	Summary  ingest.Summary `json:"summary"`
	Outcomes []outcome      `json:"outcomes"`
	Error    string         `json:"error"`
}

func newServer(t *testing.T, sink ingest.Sink) *httptest.Server {
	t.Helper()

	reg := parser.Default()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := messages.NewHandler(ingest.NewDriver(reg, sink, ingest.WithLogger(logger)), reg)

	r := chi.NewRouter()
	h.Routes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return srv
}

func post(t *testing.T, url, payload string) *http.Response {
	t.Helper()

	resp, err := http.Post(url, "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func TestHandler_Ingest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sink := ingest.NewMockSink(ctrl)
	sink.EXPECT().WriteBatch(gomock.Any(), gomock.Len(1)).
		DoAndReturn(func(_ context.Context, txs []transaction.Transaction) (*transaction.ImportResult, error) {
			assert.Equal(t, int64(-25000), txs[0].Amount)
			assert.Equal(t, "api", txs[0].Source)

			return &transaction.ImportResult{Imported: []*transaction.Record{{Transaction: txs[0]}}}, nil
		})

	srv := newServer(t, sink)

	resp := post(t, srv.URL+"/", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got ingestResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))

	assert.Equal(t, 2, got.Summary.Messages)
	assert.Equal(t, 1, got.Summary.Parsed)
	assert.Equal(t, 1, got.Summary.Unmatched)
	assert.Equal(t, 1, got.Summary.Written)
	assert.Empty(t, got.Error)

	require.Len(t, got.Outcomes, 2)
	assert.Equal(t, "parsed", got.Outcomes[0].Status)
	assert.Equal(t, "hdfc", got.Outcomes[0].Parser)
	require.NotNil(t, got.Outcomes[0].Transaction)
	assert.Equal(t, "2023-10-05", got.Outcomes[0].Transaction.Date)
	assert.Equal(t, "INR", got.Outcomes[0].Transaction.Currency)
	assert.Equal(t, "no_match", got.Outcomes[1].Status)
	assert.Nil(t, got.Outcomes[1].Transaction)
}

func TestHandler_Ingest_SinkFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sink := ingest.NewMockSink(ctrl)
	sink.EXPECT().WriteBatch(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))

	srv := newServer(t, sink)

	resp := post(t, srv.URL+"/", body)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var got ingestResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))

	assert.Equal(t, 1, got.Summary.Attempted)
	assert.Equal(t, 0, got.Summary.Written)
	assert.Contains(t, got.Error, "connection refused")
}

func TestHandler_Ingest_BadRequest(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "malformed json", payload: `{"messages":`},
		{name: "missing id", payload: `{"messages":[{"body":"Rs.1 debited"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			srv := newServer(t, ingest.NewMockSink(ctrl))

			resp := post(t, srv.URL+"/", tt.payload)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestHandler_Preview_DoesNotWrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	srv := newServer(t, ingest.NewMockSink(ctrl))

	resp := post(t, srv.URL+"/preview", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []outcome
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))

	require.Len(t, got, 2)
	assert.Equal(t, "parsed", got[0].Status)
	assert.Equal(t, int64(-25000), got[0].Transaction.Amount)
	assert.Equal(t, "shop@upi", got[0].Transaction.Payee)
	assert.Equal(t, "hdfc:1234", got[0].Transaction.Account)
	assert.Equal(t, "no_match", got[1].Status)
}

func TestHandler_Parsers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	srv := newServer(t, ingest.NewMockSink(ctrl))

	resp, err := http.Get(srv.URL + "/parsers")
	require.NoError(t, err)
	defer resp.Body.Close()

	var names []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&names))

	assert.Equal(t, []string{"cgd", "chase", "hdfc", "generic"}, names)
}

func TestHandler_Ingest_TooManyMessages(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	srv := newServer(t, ingest.NewMockSink(ctrl))

	var buf bytes.Buffer
	buf.WriteString(`{"messages":[`)

	for i := range 1001 {
		if i > 0 {
			buf.WriteString(",")
		}

		buf.WriteString(`{"id":"x","body":""}`)
	}

	buf.WriteString(`]}`)

	resp := post(t, srv.URL+"/", buf.String())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
