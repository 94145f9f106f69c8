package transaction

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("transaction not found")

// Type represents the direction of a transaction (income or expense).
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// importNamespace scopes import ids generated for ingested messages.
var importNamespace = uuid.MustParse("6f1d8a52-3c5e-4b8e-9a4f-2d7c1e0b9a11")

// Transaction is a transaction extracted from a single notification.
type Transaction struct {
	Date     time.Time // Calendar date at 00:00 UTC
	Amount   int64     // Signed, in minor units of Currency; negative is an outflow
	Currency string    // ISO 4217 code
	Payee    string
	RawPayee string
	Memo     string
	Account  string // Originating account reference, e.g. "hdfc:1234"
	Cleared  bool

	ImportID  string
	MessageID string
	Source    string
	Parser    string
}

// Type derives income/expense from the amount sign.
func (t Transaction) Type() Type {
	if t.Amount < 0 {
		return TypeExpense
	}

	return TypeIncome
}

// ImportID returns a stable id for a message so that ingesting it twice is a no-op at the sink.
func ImportID(source, messageID string) string {
	return uuid.NewSHA1(importNamespace, []byte(source+"\x00"+messageID)).String()
}

// Record is a transaction as stored in the ledger.
type Record struct {
	Transaction

	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
}
