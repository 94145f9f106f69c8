package smsfile_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/source/smsfile"
)

const export = `[
  {"_id": 101, "address": "VM-HDFCBK", "date": 1696500000000, "body": "Rs.10.00 debited from a/c **1234 on 05-10-23 to VPA a@b"},
  {"_id": "102", "address": "CGD", "date": "1696586400000", "body": "Compra de 1,00 EUR"},
  {"address": "Mom", "body": "call me"}
]`

func TestDecode(t *testing.T) {
	msgs, err := smsfile.Decode(strings.NewReader(export))
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	assert.Equal(t, "101", msgs[0].ID)
	assert.Equal(t, smsfile.Name, msgs[0].Source)
	assert.Equal(t, "VM-HDFCBK", msgs[0].From)
	assert.Equal(t, time.UnixMilli(1696500000000).UTC(), msgs[0].ReceivedAt)

	assert.Equal(t, "102", msgs[1].ID)
	assert.Equal(t, time.UnixMilli(1696586400000).UTC(), msgs[1].ReceivedAt)

	assert.NotEmpty(t, msgs[2].ID)
	assert.True(t, msgs[2].ReceivedAt.IsZero())
}

func TestDecode_IDWithoutField(t *testing.T) {
	first, err := smsfile.Decode(strings.NewReader(`[
		{"address": "VM-HDFCBK", "date": 1696500000000, "body": "Rs.10.00 debited"},
		{"address": "VM-HDFCBK", "date": 1696500000000, "body": "Rs.20.00 debited"}
	]`))
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.NotEqual(t, first[0].ID, first[1].ID)

	// A newer export puts another SMS first and keeps the older ones.
	grown, err := smsfile.Decode(strings.NewReader(`[
		{"address": "VM-HDFCBK", "date": 1696600000000, "body": "Rs.30.00 debited"},
		{"address": "VM-HDFCBK", "date": 1696500000000, "body": "Rs.20.00 debited"},
		{"address": "VM-HDFCBK", "date": 1696500000000, "body": "Rs.10.00 debited"}
	]`))
	require.NoError(t, err)
	require.Len(t, grown, 3)

	assert.Equal(t, first[1].ID, grown[1].ID)
	assert.Equal(t, first[0].ID, grown[2].ID)
	assert.NotEqual(t, first[0].ID, grown[0].ID)
	assert.NotEqual(t, first[1].ID, grown[0].ID)
}

func TestDecode_Invalid(t *testing.T) {
	_, err := smsfile.Decode(strings.NewReader(`{"not": "a list"}`))
	assert.Error(t, err)

	_, err = smsfile.Decode(strings.NewReader(`[{"_id": 1, "date": "yesterday"}]`))
	assert.Error(t, err)
}

func TestSource_Fetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sms.json")
	require.NoError(t, os.WriteFile(path, []byte(export), 0o600))

	msgs, err := smsfile.New(path).Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, msgs, 3)

	_, err = smsfile.New(filepath.Join(t.TempDir(), "missing.json")).Fetch(context.Background())
	assert.Error(t, err)
}
