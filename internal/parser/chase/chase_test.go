package chase_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/message"
	"github.com/MrJamesThe3rd/tally/internal/parser/chase"
)

const (
	authorizationBody = `Your Chase Sapphire card ending in 8016

A charge of ($USD) 1,234.56 at STARBUCKS STORE 1234 has been authorized on Oct 5, 2023 at 7:41 PM ET.

Do not reply to this Alert.`

	depositBody = `Your direct deposit of $2,500.00 from ACME CORP PAYROLL posted on October 6, 2023.
Account ending in 4402.`
)

func TestParser_Parse_Authorization(t *testing.T) {
	p := chase.New()
	msg := message.Message{ID: "a1", From: "Chase <no.reply.alerts@chase.com>", Subject: "Your $1,234.56 transaction", Body: authorizationBody}

	require.True(t, p.Accepts(msg))

	tx, err := p.Parse(msg)
	require.NoError(t, err)

	assert.Equal(t, int64(-123456), tx.Amount)
	assert.Equal(t, "USD", tx.Currency)
	assert.Equal(t, time.Date(2023, 10, 5, 0, 0, 0, 0, time.UTC), tx.Date)
	assert.Equal(t, "STARBUCKS STORE 1234", tx.Payee)
	assert.Equal(t, "chase:8016", tx.Account)
	assert.False(t, tx.Cleared)
}

func TestParser_Parse_DirectDeposit(t *testing.T) {
	p := chase.New()
	msg := message.Message{ID: "d1", From: "no.reply.alerts@chase.com", Subject: "Direct deposit posted", Body: depositBody}

	require.True(t, p.Accepts(msg))

	tx, err := p.Parse(msg)
	require.NoError(t, err)

	assert.Equal(t, int64(250000), tx.Amount)
	assert.Equal(t, time.Date(2023, 10, 6, 0, 0, 0, 0, time.UTC), tx.Date)
	assert.Equal(t, "ACME CORP PAYROLL", tx.Payee)
	assert.Equal(t, "chase:4402", tx.Account)
	assert.True(t, tx.Cleared)
}

func TestParser_Accepts(t *testing.T) {
	p := chase.New()

	assert.False(t, p.Accepts(message.Message{From: "someone@example.com", Body: authorizationBody}))
	assert.False(t, p.Accepts(message.Message{From: "alerts@chase.com", Body: "Your statement is ready"}))
}

func TestParser_Parse_Unsupported(t *testing.T) {
	_, err := chase.New().Parse(message.Message{From: "alerts@chase.com", Body: "Your direct deposit is on its way"})

	assert.ErrorIs(t, err, chase.ErrUnsupportedAlert)
}
