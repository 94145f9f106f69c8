package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/normalize"
)

func TestParseAmount(t *testing.T) {
	usd := normalize.AmountFormat{Currency: "USD"}
	eur := normalize.AmountFormat{Decimal: ',', Currency: "EUR"}
	inr := normalize.AmountFormat{Currency: "INR"}

	type testCase struct {
		name     string
		raw      string
		dir      normalize.Direction
		format   normalize.AmountFormat
		want     int64
		wantCode string
	}

	tests := []testCase{
		{name: "US debit with grouping", raw: "1,234.56", dir: normalize.DirectionDebit, format: usd, want: -123456, wantCode: "USD"},
		{name: "US credit", raw: "500.00", dir: normalize.DirectionCredit, format: usd, want: 50000, wantCode: "USD"},
		{name: "Dollar symbol", raw: "$2,500.00", format: usd, want: 250000, wantCode: "USD"},
		{name: "Rupee prefix", raw: "Rs.1,234.56", dir: normalize.DirectionDebit, format: inr, want: -123456, wantCode: "INR"},
		{name: "Rupee sign", raw: "₹ 99", format: inr, want: 9900, wantCode: "INR"},
		{name: "Lakh grouping", raw: "INR 1,00,000.00", format: inr, want: 10000000, wantCode: "INR"},
		{name: "European negative with code", raw: "-588,74 EUR", format: eur, want: -58874, wantCode: "EUR"},
		{name: "European grouping", raw: "1.234,56", format: eur, want: 123456, wantCode: "EUR"},
		{name: "Euro symbol suffix", raw: "12,50 €", format: eur, want: 1250, wantCode: "EUR"},
		{name: "Parentheses are a debit", raw: "(12.00)", format: usd, want: -1200, wantCode: "USD"},
		{name: "Trailing DR", raw: "250.00 DR", format: usd, want: -25000, wantCode: "USD"},
		{name: "Trailing CR", raw: "250.00 Cr.", format: usd, want: 25000, wantCode: "USD"},
		{name: "Leading plus", raw: "+7.10", format: usd, want: 710, wantCode: "USD"},
		{name: "Direction wins over marker", raw: "-5.00", dir: normalize.DirectionCredit, format: usd, want: 500, wantCode: "USD"},
		{name: "Yen has no minor unit", raw: "¥1,200", format: usd, want: 1200, wantCode: "JPY"},
		{name: "Three decimal currency", raw: "KWD 1.500", format: usd, want: 1500, wantCode: "KWD"},
		{name: "Code overrides format currency", raw: "GBP 3,20", format: eur, want: 320, wantCode: "GBP"},
		{name: "Integer amount", raw: "40", dir: normalize.DirectionDebit, format: usd, want: -4000, wantCode: "USD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalize.ParseAmount(tt.raw, tt.dir, tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Minor)
			assert.Equal(t, tt.wantCode, got.Currency)
		})
	}
}

func TestParseAmount_Errors(t *testing.T) {
	usd := normalize.AmountFormat{Currency: "USD"}

	type testCase struct {
		name    string
		raw     string
		format  normalize.AmountFormat
		wantErr error
	}

	tests := []testCase{
		{name: "Empty", raw: "  ", format: usd, wantErr: normalize.ErrInvalidAmount},
		{name: "Not a number", raw: "lots", format: usd, wantErr: normalize.ErrInvalidAmount},
		{name: "Bad grouping", raw: "1,23.45", format: usd, wantErr: normalize.ErrInvalidAmount},
		{name: "Too many decimals", raw: "12.345", format: usd, wantErr: normalize.ErrInvalidAmount},
		{name: "Unknown code", raw: "12.00 QQQ", format: usd, wantErr: normalize.ErrUnknownCurrency},
		{name: "No currency anywhere", raw: "12.00", format: normalize.AmountFormat{}, wantErr: normalize.ErrUnknownCurrency},
		{name: "Overflow", raw: "99999999999999999999.00", format: usd, wantErr: normalize.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := normalize.ParseAmount(tt.raw, normalize.DirectionUnknown, tt.format)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseAmount_CodesThatLookLikeMarkers(t *testing.T) {
	usd := normalize.AmountFormat{Currency: "USD"}

	type testCase struct {
		name     string
		raw      string
		wantCode string
	}

	tests := []testCase{
		{name: "Rupiah suffix", raw: "50000 IDR", wantCode: "IDR"},
		{name: "Rupiah prefix", raw: "IDR 50000", wantCode: "IDR"},
		{name: "SDR suffix", raw: "100 XDR", wantCode: "XDR"},
		{name: "Serbian dinar prefix", raw: "RSD 100", wantCode: "RSD"},
		{name: "Serbian dinar suffix", raw: "100 RSD", wantCode: "RSD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalize.ParseAmount(tt.raw, normalize.DirectionUnknown, usd)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, got.Currency)
			assert.Positive(t, got.Minor)
		})
	}
}

func TestParseAmount_MarkerAfterCode(t *testing.T) {
	got, err := normalize.ParseAmount("IDR 50000 DR", normalize.DirectionUnknown, normalize.AmountFormat{})
	require.NoError(t, err)

	assert.Equal(t, "IDR", got.Currency)
	assert.Negative(t, got.Minor)
}
