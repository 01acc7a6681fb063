package ingestion

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWholeQuantity(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain integer", input: "120", want: "120"},
		{name: "BR grouped thousands", input: "1.234,56", want: "1235"},
		{name: "US grouped thousands", input: "1,234.56", want: "1235"},
		{name: "comma decimal mark", input: "10,4", want: "10"},
		{name: "dot decimal mark", input: "10.6", want: "11"},
		{name: "surrounding whitespace", input: "  42 ", want: "42"},
		{name: "multiple BR groups", input: "1.234.567", want: "1234567"},
		{name: "trailing garbage falls back to first number", input: "12a", want: "12"},
		{name: "leading garbage falls back to first number", input: "qty:7,5kg", want: "8"},
		{name: "negative clamps to zero", input: "-5", want: "0"},
		{name: "empty fails", input: "", wantErr: true},
		{name: "no digits fails", input: "abc", wantErr: true},
		{name: "separators only fails", input: ",.", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWholeQuantity(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoDigits)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseQuantity_PreservesFractions(t *testing.T) {
	// The document path supports fractional quantities for goods sold by
	// weight or volume; nothing is rounded here.
	tests := []struct {
		input string
		want  string
	}{
		{input: "0,750", want: "0.75"},
		{input: "2.5", want: "2.5"},
		{input: "1.234,56", want: "1234.56"},
		{input: "1,234.56", want: "1234.56"},
		{input: "3", want: "3"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseQuantity(tt.input)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"got %s, want %s", got, tt.want)
		})
	}
}
