// Package money holds the decimal helpers shared by orders, bills and stock.
// Amounts are carried as shopspring decimals with a fixed scale of 2 and
// stored as PostgreSQL NUMERIC.
package money

import (
	"encoding/json"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places kept for every amount.
const Scale = 2

// MaxAmount is the largest magnitude a stored NUMERIC(12,2) amount holds.
var MaxAmount = decimal.RequireFromString("9999999999.99")

// InRange reports whether d, already rounded, fits a stored amount.
func InRange(d decimal.Decimal) bool {
	return d.Abs().LessThanOrEqual(MaxAmount)
}

// TaxRate is the flat sales tax applied to bills.
var TaxRate = decimal.RequireFromString("0.20")

// Round rounds d half away from zero to Scale places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// FromNumeric converts a pgtype.Numeric into a decimal. NULL and
// unparseable values yield zero.
func FromNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	s, ok := val.(string)
	if !ok {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ToNumeric converts d into a pgtype.Numeric rounded to Scale places.
func ToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(Scale))
	return n
}

// JSON renders d as a JSON number with exactly two decimals.
func JSON(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(Scale))
}

// NumericJSON is JSON applied to a stored numeric.
func NumericJSON(n pgtype.Numeric) json.Number {
	return JSON(FromNumeric(n))
}
