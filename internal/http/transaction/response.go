package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

type transactionResponse struct {
	ID        uuid.UUID        `json:"id"`
	ImportID  string           `json:"import_id"`
	Date      string           `json:"date"`
	Amount    int64            `json:"amount"`
	Currency  string           `json:"currency"`
	Type      transaction.Type `json:"type"`
	Payee     string           `json:"payee"`
	RawPayee  string           `json:"raw_payee,omitempty"`
	Memo      string           `json:"memo,omitempty"`
	Account   string           `json:"account,omitempty"`
	Cleared   bool             `json:"cleared"`
	MessageID string           `json:"message_id,omitempty"`
	Source    string           `json:"source,omitempty"`
	Parser    string           `json:"parser,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt *time.Time       `json:"updated_at,omitempty"`
}

func toResponse(r *transaction.Record) transactionResponse {
	return transactionResponse{
		ID:        r.ID,
		ImportID:  r.ImportID,
		Date:      r.Date.Format(time.DateOnly),
		Amount:    r.Amount,
		Currency:  r.Currency,
		Type:      r.Type(),
		Payee:     r.Payee,
		RawPayee:  r.RawPayee,
		Memo:      r.Memo,
		Account:   r.Account,
		Cleared:   r.Cleared,
		MessageID: r.MessageID,
		Source:    r.Source,
		Parser:    r.Parser,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toResponseList(records []*transaction.Record) []transactionResponse {
	resp := make([]transactionResponse, len(records))
	for i, r := range records {
		resp[i] = toResponse(r)
	}

	return resp
}
