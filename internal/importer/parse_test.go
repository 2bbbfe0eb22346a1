package importer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{in: "", want: "0"},
		{in: "-", want: "0"},
		{in: "25000", want: "25000"},
		{in: "12.5", want: "12.5"},
		{in: "12,5", want: "12.5"},
		{in: "1.500.000", want: "1500000"},
		{in: "1,500,000", want: "1500000"},
		{in: "1.500.000,50", want: "1500000.5"},
		{in: "1,500,000.50", want: "1500000.5"},
		{in: "Rp 7.500.000", want: "7500000"},
		{in: "IDR 10", want: "10"},
		{in: " 3 000 ", want: "3000"},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseAmount(tc.in)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "got %s", got)
		})
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	_, err := parseAmount("dua ribu")
	assert.Error(t, err)
}

func TestDetectDelimiter(t *testing.T) {
	assert.Equal(t, ';', detectDelimiter("Tanggal;Akun;Debit"))
	assert.Equal(t, ',', detectDelimiter("Date,Account,Debit"))
	assert.Equal(t, ',', detectDelimiter(""))
}
