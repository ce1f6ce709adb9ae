package service

import (
	"context"
	"errors"
	"time"

	"github.com/brewline/coffee-pos/internal/database"
	"github.com/brewline/coffee-pos/internal/money"
	"github.com/brewline/coffee-pos/internal/numbering"
	"github.com/brewline/coffee-pos/internal/pricing"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const billNumberConstraint = "bills_bill_number_key"

// BillStore defines the DB methods the bill service needs.
// Satisfied by *database.Queries (and its WithTx variant).
type BillStore interface {
	GetOrderForShare(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	CreateBill(ctx context.Context, arg database.CreateBillParams) (database.Bill, error)
	CreateBillItem(ctx context.Context, arg database.CreateBillItemParams) (database.BillItem, error)
	GetBill(ctx context.Context, id uuid.UUID) (database.Bill, error)
	GetBillByNumber(ctx context.Context, billNumber string) (database.Bill, error)
	GetBillForUpdate(ctx context.Context, id uuid.UUID) (database.Bill, error)
	ListBills(ctx context.Context, arg database.ListBillsParams) ([]database.Bill, error)
	ListBillsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.Bill, error)
	ListBillItemsByBill(ctx context.Context, billID uuid.UUID) ([]database.BillItem, error)
	ListBillItemsByBills(ctx context.Context, billIDs []uuid.UUID) ([]database.BillItem, error)
	UpdateBillAmounts(ctx context.Context, arg database.UpdateBillAmountsParams) (database.Bill, error)
	UpdateBillPayment(ctx context.Context, arg database.UpdateBillPaymentParams) (database.Bill, error)
	UpdateBillPaymentMethod(ctx context.Context, arg database.UpdateBillPaymentMethodParams) (database.Bill, error)
	DeletePendingBill(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	GetBillStats(ctx context.Context) (database.GetBillStatsRow, error)
	GetPaidBillsByMethod(ctx context.Context) ([]database.GetPaidBillsByMethodRow, error)
}

// NewBillStore creates a BillStore from a DBTX (pool or tx).
type NewBillStore func(db database.DBTX) BillStore

// BillDetail is a bill with its item snapshot.
type BillDetail struct {
	Bill  database.Bill
	Items []database.BillItem
}

// BillFilter narrows ListBills.
type BillFilter struct {
	PaymentStatus string
	Limit         int
}

// MethodTotal is the paid count and amount for one payment method.
type MethodTotal struct {
	Count  int64
	Amount decimal.Decimal
}

// BillStats summarises all bills. Revenue, tax and the average cover paid
// bills; discounts cover every bill.
type BillStats struct {
	Total             int64
	Pending           int64
	Paid              int64
	Refunded          int64
	TotalRevenue      decimal.Decimal
	TotalTax          decimal.Decimal
	TotalDiscounts    decimal.Decimal
	AverageBillAmount decimal.Decimal
	PaymentMethods    map[string]MethodTotal
}

// BillService handles billing business logic.
type BillService struct {
	pool     TxBeginner
	store    BillStore
	newStore NewBillStore
	numbers  *numbering.Generator
	now      func() time.Time
}

// NewBillService creates a new BillService.
func NewBillService(pool TxBeginner, store BillStore, newStore NewBillStore, numbers *numbering.Generator) *BillService {
	return &BillService{
		pool:     pool,
		store:    store,
		newStore: newStore,
		numbers:  numbers,
		now:      time.Now,
	}
}

// CreateFromOrder bills a ready or completed order. The order row is share
// locked for the whole transaction so its status cannot change between the
// check and the insert.
func (s *BillService) CreateFromOrder(ctx context.Context, orderID, cashier string) (*BillDetail, error) {
	oid, err := ParseID(orderID)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < maxNumberRetries; attempt++ {
		result, err := s.createFromOrderTx(ctx, oid, cashier)
		if err == nil {
			return result, nil
		}
		if isUniqueViolation(err, billNumberConstraint) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, storageError("create bill", lastErr)
}

func (s *BillService) createFromOrderTx(ctx context.Context, orderID uuid.UUID, cashier string) (*BillDetail, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, storageError("begin tx", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetOrderForShare(ctx, orderID)
	if err != nil {
		return nil, orderLookupError(err)
	}
	if order.Status != database.OrderStatusReady && order.Status != database.OrderStatusCompleted {
		return nil, ErrOrderNotBillable
	}

	orderItems, err := store.ListOrderItemsByOrder(ctx, orderID)
	if err != nil {
		return nil, storageError("list order items", err)
	}

	lines := make([]pricing.Line, len(orderItems))
	for i, it := range orderItems {
		lines[i] = pricing.Line{Quantity: it.Quantity, UnitPrice: money.FromNumeric(it.Price)}
	}
	amounts := pricing.Bill(pricing.Sum(lines), decimal.Zero)
	if err := checkAmounts(amounts.Subtotal, amounts.Tax, amounts.Total); err != nil {
		return nil, err
	}

	bill, err := store.CreateBill(ctx, database.CreateBillParams{
		BillNumber:    s.numbers.Next(),
		OrderID:       order.ID,
		CustomerName:  order.CustomerName,
		Subtotal:      money.ToNumeric(amounts.Subtotal),
		Discount:      money.ToNumeric(amounts.Discount),
		Tax:           money.ToNumeric(amounts.Tax),
		TotalAmount:   money.ToNumeric(amounts.Total),
		PaymentStatus: database.PaymentStatusPending,
		BillDate:      s.now().UTC(),
		Cashier:       cashier,
	})
	if err != nil {
		if isUniqueViolation(err, billNumberConstraint) {
			return nil, err
		}
		return nil, storageError("create bill", err)
	}

	items := make([]database.BillItem, 0, len(orderItems))
	for i, it := range orderItems {
		item, err := store.CreateBillItem(ctx, database.CreateBillItemParams{
			BillID:      bill.ID,
			Position:    int32(i),
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   money.ToNumeric(lines[i].UnitPrice),
			TotalPrice:  money.ToNumeric(lines[i].Total()),
		})
		if err != nil {
			return nil, storageError("create bill item", err)
		}
		items = append(items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storageError("commit tx", err)
	}

	return &BillDetail{Bill: bill, Items: items}, nil
}

// ApplyDiscount replaces the bill's discount and recomputes tax and total
// under a row lock. Discounts above the subtotal are accepted and yield a
// negative total.
func (s *BillService) ApplyDiscount(ctx context.Context, id string, discount decimal.Decimal) (*BillDetail, error) {
	bid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	if discount.IsNegative() {
		return nil, ErrNegativeDiscount
	}
	discount = money.Round(discount)
	if err := checkAmounts(discount); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, storageError("begin tx", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	bill, err := store.GetBillForUpdate(ctx, bid)
	if err != nil {
		return nil, billLookupError(err)
	}

	amounts := pricing.Bill(money.FromNumeric(bill.Subtotal), discount)
	if err := checkAmounts(amounts.Tax, amounts.Total); err != nil {
		return nil, err
	}
	bill, err = store.UpdateBillAmounts(ctx, database.UpdateBillAmountsParams{
		ID:          bid,
		Discount:    money.ToNumeric(amounts.Discount),
		Tax:         money.ToNumeric(amounts.Tax),
		TotalAmount: money.ToNumeric(amounts.Total),
	})
	if err != nil {
		return nil, storageError("update bill amounts", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storageError("commit tx", err)
	}

	return s.withItems(ctx, bill)
}

// SetPaymentMethod records how the bill is (to be) paid.
func (s *BillService) SetPaymentMethod(ctx context.Context, id, method string) (*BillDetail, error) {
	bid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	pm, err := parsePaymentMethod(method)
	if err != nil {
		return nil, err
	}
	bill, err := s.store.UpdateBillPaymentMethod(ctx, database.UpdateBillPaymentMethodParams{
		ID:            bid,
		PaymentMethod: database.NullPaymentMethod{PaymentMethod: pm, Valid: true},
	})
	if err != nil {
		return nil, billLookupError(err)
	}
	return s.withItems(ctx, bill)
}

// UpdatePaymentStatus sets the payment status and, when method is non-empty,
// the payment method. Both values are checked against their vocabularies.
// Repeating the same call leaves the bill unchanged.
func (s *BillService) UpdatePaymentStatus(ctx context.Context, id, status, method string) (*BillDetail, error) {
	bid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	ps, err := parsePaymentStatus(status)
	if err != nil {
		return nil, err
	}
	params := database.UpdateBillPaymentParams{ID: bid, PaymentStatus: ps}
	if method != "" {
		pm, err := parsePaymentMethod(method)
		if err != nil {
			return nil, err
		}
		params.PaymentMethod = database.NullPaymentMethod{PaymentMethod: pm, Valid: true}
	}

	bill, err := s.store.UpdateBillPayment(ctx, params)
	if err != nil {
		return nil, billLookupError(err)
	}
	return s.withItems(ctx, bill)
}

// DeleteBill removes a bill whose payment is still pending, in a single
// conditional statement.
func (s *BillService) DeleteBill(ctx context.Context, id string) error {
	bid, err := ParseID(id)
	if err != nil {
		return err
	}

	_, err = s.store.DeletePendingBill(ctx, bid)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return storageError("delete bill", err)
	}

	if _, err := s.store.GetBill(ctx, bid); err != nil {
		return billLookupError(err)
	}
	return ErrBillNotPending
}

// GetBill returns a bill by id.
func (s *BillService) GetBill(ctx context.Context, id string) (*BillDetail, error) {
	bid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	bill, err := s.store.GetBill(ctx, bid)
	if err != nil {
		return nil, billLookupError(err)
	}
	return s.withItems(ctx, bill)
}

// GetBillByNumber returns a bill by its BILL- number.
func (s *BillService) GetBillByNumber(ctx context.Context, number string) (*BillDetail, error) {
	bill, err := s.store.GetBillByNumber(ctx, number)
	if err != nil {
		return nil, billLookupError(err)
	}
	return s.withItems(ctx, bill)
}

// ListBills returns bills newest first.
func (s *BillService) ListBills(ctx context.Context, f BillFilter) ([]BillDetail, error) {
	params := database.ListBillsParams{}
	if f.PaymentStatus != "" {
		ps, err := parsePaymentStatus(f.PaymentStatus)
		if err != nil {
			return nil, err
		}
		params.PaymentStatus = database.NullPaymentStatus{PaymentStatus: ps, Valid: true}
	}
	limit, err := listLimit(f.Limit)
	if err != nil {
		return nil, err
	}
	params.Limit = limit

	bills, err := s.store.ListBills(ctx, params)
	if err != nil {
		return nil, storageError("list bills", err)
	}
	return s.attachItems(ctx, bills)
}

// ListBillsByOrder returns every bill created from an order.
func (s *BillService) ListBillsByOrder(ctx context.Context, orderID string) ([]BillDetail, error) {
	oid, err := ParseID(orderID)
	if err != nil {
		return nil, err
	}
	bills, err := s.store.ListBillsByOrder(ctx, oid)
	if err != nil {
		return nil, storageError("list bills by order", err)
	}
	return s.attachItems(ctx, bills)
}

// Stats summarises bills by payment status and method.
func (s *BillService) Stats(ctx context.Context) (*BillStats, error) {
	row, err := s.store.GetBillStats(ctx)
	if err != nil {
		return nil, storageError("bill stats", err)
	}
	methods, err := s.store.GetPaidBillsByMethod(ctx)
	if err != nil {
		return nil, storageError("bill stats by method", err)
	}

	revenue := money.FromNumeric(row.PaidRevenue)
	stats := &BillStats{
		Total:             row.Total,
		Pending:           row.Pending,
		Paid:              row.Paid,
		Refunded:          row.Refunded,
		TotalRevenue:      revenue,
		TotalTax:          money.FromNumeric(row.PaidTax),
		TotalDiscounts:    money.FromNumeric(row.TotalDiscounts),
		AverageBillAmount: average(revenue, row.Paid),
		PaymentMethods:    make(map[string]MethodTotal, len(methods)),
	}
	for _, m := range methods {
		stats.PaymentMethods[m.PaymentMethod] = MethodTotal{
			Count:  m.BillCount,
			Amount: money.FromNumeric(m.TotalAmount),
		}
	}
	return stats, nil
}

func (s *BillService) withItems(ctx context.Context, bill database.Bill) (*BillDetail, error) {
	items, err := s.store.ListBillItemsByBill(ctx, bill.ID)
	if err != nil {
		return nil, storageError("list bill items", err)
	}
	return &BillDetail{Bill: bill, Items: items}, nil
}

func (s *BillService) attachItems(ctx context.Context, bills []database.Bill) ([]BillDetail, error) {
	if len(bills) == 0 {
		return []BillDetail{}, nil
	}
	ids := make([]uuid.UUID, len(bills))
	for i, b := range bills {
		ids[i] = b.ID
	}
	items, err := s.store.ListBillItemsByBills(ctx, ids)
	if err != nil {
		return nil, storageError("list bill items", err)
	}
	byBill := make(map[uuid.UUID][]database.BillItem, len(bills))
	for _, it := range items {
		byBill[it.BillID] = append(byBill[it.BillID], it)
	}

	result := make([]BillDetail, len(bills))
	for i, b := range bills {
		its := byBill[b.ID]
		if its == nil {
			its = []database.BillItem{}
		}
		result[i] = BillDetail{Bill: b, Items: its}
	}
	return result, nil
}

func billLookupError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrBillNotFound
	}
	return storageError("get bill", err)
}

func parsePaymentStatus(s string) (database.PaymentStatus, error) {
	switch ps := database.PaymentStatus(s); ps {
	case database.PaymentStatusPending, database.PaymentStatusPaid, database.PaymentStatusRefunded:
		return ps, nil
	}
	return "", ErrInvalidPaymentStatus
}

func parsePaymentMethod(s string) (database.PaymentMethod, error) {
	switch pm := database.PaymentMethod(s); pm {
	case database.PaymentMethodCash, database.PaymentMethodCard,
		database.PaymentMethodMobile, database.PaymentMethodCheck:
		return pm, nil
	}
	return "", ErrInvalidPaymentMethod
}
