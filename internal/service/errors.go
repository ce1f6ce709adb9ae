package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/brewline/coffee-pos/internal/money"
)

// Error kinds. Every error returned by a service wraps exactly one of these,
// and the HTTP layer maps kinds to status codes.
var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidID         = errors.New("invalid identifier")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid value")
	ErrPrecondition      = errors.New("precondition failed")
	ErrStorage           = errors.New("storage failure")
)

// Errors returned by the order, bill and stock services.
var (
	ErrOrderNotFound        = fmt.Errorf("order %w", ErrNotFound)
	ErrBillNotFound         = fmt.Errorf("bill %w", ErrNotFound)
	ErrStockItemNotFound    = fmt.Errorf("stock item %w", ErrNotFound)
	ErrInvalidOrderStatus   = fmt.Errorf("%w: status must be one of pending, preparing, ready, completed", ErrInvalidTransition)
	ErrInvalidPaymentStatus = fmt.Errorf("%w: paymentStatus must be one of pending, paid, refunded", ErrInvalidTransition)
	ErrInvalidPaymentMethod = fmt.Errorf("%w: paymentMethod must be one of cash, card, mobile, check", ErrInvalidTransition)
	ErrNegativeDiscount     = fmt.Errorf("%w: discount must be >= 0", ErrValidation)
	ErrAmountOutOfRange     = fmt.Errorf("%w: amounts must be between -9999999999.99 and 9999999999.99", ErrValidation)
	ErrOrderNotBillable     = fmt.Errorf("%w: order must be ready or completed to create a bill", ErrPrecondition)
	ErrOrderNotPending      = fmt.Errorf("%w: only pending orders can be deleted", ErrPrecondition)
	ErrOrderHasBills        = fmt.Errorf("%w: order has bills", ErrPrecondition)
	ErrBillNotPending       = fmt.Errorf("%w: only bills with pending payment can be deleted", ErrPrecondition)
	ErrDuplicateProductID   = fmt.Errorf("%w: productId already exists", ErrPrecondition)
)

// ParseID parses a UUID path or body parameter.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return id, nil
}

func validationError(err error) error {
	return fmt.Errorf("%w: %s", ErrValidation, err.Error())
}

// checkAmounts rejects amounts too large to store.
func checkAmounts(amounts ...decimal.Decimal) error {
	for _, d := range amounts {
		if !money.InRange(d) {
			return ErrAmountOutOfRange
		}
	}
	return nil
}

// storageError tags a driver error with ErrStorage and the failing operation.
func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == constraint
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}
