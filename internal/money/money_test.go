package money

import (
	"encoding/json"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2.4", "2.40"},
		{"0.125", "0.13"},
		{"0.124", "0.12"},
		{"-0.125", "-0.13"},
		{"10", "10.00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Round(decimal.RequireFromString(tt.in))
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestNumericRoundTrip(t *testing.T) {
	n := ToNumeric(decimal.RequireFromString("14.4"))
	require.True(t, n.Valid)
	assert.True(t, FromNumeric(n).Equal(decimal.RequireFromString("14.40")))
}

func TestFromNumericNull(t *testing.T) {
	assert.True(t, FromNumeric(pgtype.Numeric{}).IsZero())
}

func TestJSONEncodesNumber(t *testing.T) {
	out, err := json.Marshal(map[string]any{"total": JSON(decimal.RequireFromString("12"))})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total": 12.00}`, string(out))
	assert.Contains(t, string(out), "12.00")
}
