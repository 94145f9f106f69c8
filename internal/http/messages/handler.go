package messages

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/tally/internal/ingest"
	"github.com/MrJamesThe3rd/tally/internal/message"
	"github.com/MrJamesThe3rd/tally/internal/parser"
)

// maxBatch bounds a single request.
const maxBatch = 1000

const defaultSource = "api"

type Handler struct {
	driver   *ingest.Driver
	registry *parser.Registry
}

func NewHandler(driver *ingest.Driver, registry *parser.Registry) *Handler {
	return &Handler{driver: driver, registry: registry}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.ingest)
	r.Post("/preview", h.preview)
	r.Get("/parsers", h.parsers)
}

type messageDTO struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	ReceivedAt time.Time `json:"received_at"`
	From       string    `json:"from"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
}

type ingestRequest struct {
	Messages []messageDTO `json:"messages"`
}

type transactionDTO struct {
	ImportID string `json:"import_id"`
	Date     string `json:"date"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Payee    string `json:"payee"`
	RawPayee string `json:"raw_payee,omitempty"`
	Memo     string `json:"memo,omitempty"`
	Account  string `json:"account,omitempty"`
	Cleared  bool   `json:"cleared"`
}

type outcomeDTO struct {
	MessageID   string          `json:"message_id"`
	Status      string          `json:"status"`
	Parser      string          `json:"parser,omitempty"`
	Error       string          `json:"error,omitempty"`
	Transaction *transactionDTO `json:"transaction,omitempty"`
}

type ingestResponse struct {
	Summary  ingest.Summary `json:"summary"`
	Outcomes []outcomeDTO   `json:"outcomes"`
	Error    string         `json:"error,omitempty"`
}

func (h *Handler) ingest(w http.ResponseWriter, r *http.Request) {
	msgs, err := decodeMessages(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	summary, err := h.driver.Run(r.Context(), msgs)

	resp := ingestResponse{Summary: summary, Outcomes: toOutcomes(summary.Outcomes)}
	status := http.StatusOK

	if err != nil {
		resp.Error = err.Error()
		status = http.StatusBadGateway
	}

	writeJSON(w, status, resp)
}

// preview parses without writing anything.
func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	msgs, err := decodeMessages(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	outcomes := make([]parser.Outcome, len(msgs))
	for i, m := range msgs {
		outcomes[i] = h.registry.Process(m)
	}

	writeJSON(w, http.StatusOK, toOutcomes(outcomes))
}

func (h *Handler) parsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.Names())
}

func decodeMessages(r *http.Request) ([]message.Message, error) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}

	if len(req.Messages) > maxBatch {
		return nil, fmt.Errorf("at most %d messages per request", maxBatch)
	}

	msgs := make([]message.Message, 0, len(req.Messages))

	for i, m := range req.Messages {
		if m.ID == "" {
			return nil, fmt.Errorf("message %d: id is required", i)
		}

		source := m.Source
		if source == "" {
			source = defaultSource
		}

		msgs = append(msgs, message.Message{
			ID:         m.ID,
			Source:     source,
			ReceivedAt: m.ReceivedAt,
			From:       m.From,
			Subject:    m.Subject,
			Body:       m.Body,
		})
	}

	return msgs, nil
}

func toOutcomes(outcomes []parser.Outcome) []outcomeDTO {
	resp := make([]outcomeDTO, 0, len(outcomes))

	for _, o := range outcomes {
		dto := outcomeDTO{
			MessageID: o.Message.ID,
			Status:    o.Status.String(),
			Parser:    o.Parser,
		}

		if o.Err != nil {
			dto.Error = o.Err.Error()
		}

		if o.Status == parser.StatusParsed {
			tx := o.Transaction
			dto.Transaction = &transactionDTO{
				ImportID: tx.ImportID,
				Date:     tx.Date.Format(time.DateOnly),
				Amount:   tx.Amount,
				Currency: tx.Currency,
				Payee:    tx.Payee,
				RawPayee: tx.RawPayee,
				Memo:     tx.Memo,
				Account:  tx.Account,
				Cleared:  tx.Cleared,
			}
		}

		resp = append(resp, dto)
	}

	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
