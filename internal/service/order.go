package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brewline/coffee-pos/internal/database"
	"github.com/brewline/coffee-pos/internal/money"
	"github.com/brewline/coffee-pos/internal/numbering"
	"github.com/brewline/coffee-pos/internal/pricing"
	"github.com/brewline/coffee-pos/internal/validate"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const (
	// maxNumberRetries bounds retries after an order_number or bill_number
	// unique violation.
	maxNumberRetries = 3

	defaultListLimit = 50
	maxListLimit     = 1000

	orderNumberConstraint = "orders_order_number_key"
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods the order service needs.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (database.Order, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	ListOrderItemsByOrders(ctx context.Context, orderIDs []uuid.UUID) ([]database.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	DeletePendingOrder(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	GetOrderStats(ctx context.Context) (database.GetOrderStatsRow, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// CreateOrderRequest is the input for creating an order.
type CreateOrderRequest struct {
	CustomerName string           `json:"customerName" validate:"required"`
	Items        []OrderItemInput `json:"items" validate:"min=1,dive"`
	Notes        string           `json:"notes"`
}

// OrderItemInput is one requested line.
type OrderItemInput struct {
	ProductName    string          `json:"productName" validate:"required"`
	Quantity       int32           `json:"quantity" validate:"min=1"`
	Price          decimal.Decimal `json:"price" validate:"gte=0,lte=9999999999.99"`
	Customizations []string        `json:"customizations"`
}

// OrderDetail is an order with its items.
type OrderDetail struct {
	Order database.Order
	Items []database.OrderItem
}

// OrderFilter narrows List. An empty Status means any status; a zero Limit
// means the default.
type OrderFilter struct {
	Status string
	Limit  int
}

// OrderStats summarises all orders. Revenue counts completed orders only.
type OrderStats struct {
	Total             int64
	Pending           int64
	Preparing         int64
	Ready             int64
	Completed         int64
	TotalRevenue      decimal.Decimal
	AverageOrderValue decimal.Decimal
}

// OrderService handles order business logic.
type OrderService struct {
	pool     TxBeginner
	store    OrderStore
	newStore NewOrderStore
	numbers  *numbering.Generator
	now      func() time.Time
}

// NewOrderService creates a new OrderService. store serves reads and
// single-statement writes; newStore builds a store bound to a transaction.
func NewOrderService(pool TxBeginner, store OrderStore, newStore NewOrderStore, numbers *numbering.Generator) *OrderService {
	return &OrderService{
		pool:     pool,
		store:    store,
		newStore: newStore,
		numbers:  numbers,
		now:      time.Now,
	}
}

// CreateOrder validates req and stores a pending order with its items.
// The total and estimated time are fixed here and never recomputed.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderDetail, error) {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	for i := range req.Items {
		req.Items[i].ProductName = strings.TrimSpace(req.Items[i].ProductName)
	}
	if err := validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	if err := checkAmounts(pricing.Sum(orderLines(req.Items))); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < maxNumberRetries; attempt++ {
		result, err := s.createOrderTx(ctx, req)
		if err == nil {
			return result, nil
		}
		if isUniqueViolation(err, orderNumberConstraint) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, storageError("create order", lastErr)
}

func orderLines(items []OrderItemInput) []pricing.Line {
	lines := make([]pricing.Line, len(items))
	for i, item := range items {
		lines[i] = pricing.Line{Quantity: item.Quantity, UnitPrice: money.Round(item.Price)}
	}
	return lines
}

func (s *OrderService) createOrderTx(ctx context.Context, req CreateOrderRequest) (*OrderDetail, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, storageError("begin tx", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	lines := orderLines(req.Items)

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		OrderNumber:   s.numbers.Next(),
		CustomerName:  req.CustomerName,
		TotalAmount:   money.ToNumeric(pricing.Sum(lines)),
		Status:        database.OrderStatusPending,
		OrderDate:     s.now().UTC(),
		EstimatedTime: pricing.EstimatedTime(len(lines)),
		Notes:         req.Notes,
	})
	if err != nil {
		if isUniqueViolation(err, orderNumberConstraint) {
			return nil, err
		}
		return nil, storageError("create order", err)
	}

	items := make([]database.OrderItem, 0, len(req.Items))
	for i, in := range req.Items {
		customizations := in.Customizations
		if customizations == nil {
			customizations = []string{}
		}
		item, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:        order.ID,
			Position:       int32(i),
			ProductName:    in.ProductName,
			Quantity:       in.Quantity,
			Price:          money.ToNumeric(lines[i].UnitPrice),
			Customizations: customizations,
		})
		if err != nil {
			return nil, storageError("create order item", err)
		}
		items = append(items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storageError("commit tx", err)
	}

	return &OrderDetail{Order: order, Items: items}, nil
}

// GetOrder returns an order by id.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*OrderDetail, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	order, err := s.store.GetOrder(ctx, oid)
	if err != nil {
		return nil, orderLookupError(err)
	}
	return s.withItems(ctx, order)
}

// GetOrderByNumber returns an order by its ORD- number.
func (s *OrderService) GetOrderByNumber(ctx context.Context, number string) (*OrderDetail, error) {
	order, err := s.store.GetOrderByNumber(ctx, number)
	if err != nil {
		return nil, orderLookupError(err)
	}
	return s.withItems(ctx, order)
}

// ListOrders returns orders newest first.
func (s *OrderService) ListOrders(ctx context.Context, f OrderFilter) ([]OrderDetail, error) {
	params := database.ListOrdersParams{}
	if f.Status != "" {
		status, err := parseOrderStatus(f.Status)
		if err != nil {
			return nil, err
		}
		params.Status = database.NullOrderStatus{OrderStatus: status, Valid: true}
	}
	limit, err := listLimit(f.Limit)
	if err != nil {
		return nil, err
	}
	params.Limit = limit

	orders, err := s.store.ListOrders(ctx, params)
	if err != nil {
		return nil, storageError("list orders", err)
	}
	if len(orders) == 0 {
		return []OrderDetail{}, nil
	}

	ids := make([]uuid.UUID, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	items, err := s.store.ListOrderItemsByOrders(ctx, ids)
	if err != nil {
		return nil, storageError("list order items", err)
	}
	byOrder := make(map[uuid.UUID][]database.OrderItem, len(orders))
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}

	result := make([]OrderDetail, len(orders))
	for i, o := range orders {
		its := byOrder[o.ID]
		if its == nil {
			its = []database.OrderItem{}
		}
		result[i] = OrderDetail{Order: o, Items: its}
	}
	return result, nil
}

// UpdateStatus moves an order to any status in the vocabulary. No ordering
// between statuses is enforced.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*OrderDetail, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	st, err := parseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	order, err := s.store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{ID: oid, Status: st})
	if err != nil {
		return nil, orderLookupError(err)
	}
	return s.withItems(ctx, order)
}

// DeleteOrder removes a pending order. The status check and the delete are
// one statement; a miss is then classified as not-found or not-pending.
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}

	_, err = s.store.DeletePendingOrder(ctx, oid)
	if err == nil {
		return nil
	}
	if isForeignKeyViolation(err) {
		return ErrOrderHasBills
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return storageError("delete order", err)
	}

	if _, err := s.store.GetOrder(ctx, oid); err != nil {
		return orderLookupError(err)
	}
	return ErrOrderNotPending
}

// Stats counts orders per status and sums completed revenue.
func (s *OrderService) Stats(ctx context.Context) (*OrderStats, error) {
	row, err := s.store.GetOrderStats(ctx)
	if err != nil {
		return nil, storageError("order stats", err)
	}
	revenue := money.FromNumeric(row.CompletedRevenue)
	return &OrderStats{
		Total:             row.Total,
		Pending:           row.Pending,
		Preparing:         row.Preparing,
		Ready:             row.Ready,
		Completed:         row.Completed,
		TotalRevenue:      revenue,
		AverageOrderValue: average(revenue, row.Completed),
	}, nil
}

func (s *OrderService) withItems(ctx context.Context, order database.Order) (*OrderDetail, error) {
	items, err := s.store.ListOrderItemsByOrder(ctx, order.ID)
	if err != nil {
		return nil, storageError("list order items", err)
	}
	return &OrderDetail{Order: order, Items: items}, nil
}

// --- Helpers ---

func orderLookupError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrOrderNotFound
	}
	return storageError("get order", err)
}

func parseOrderStatus(s string) (database.OrderStatus, error) {
	switch st := database.OrderStatus(s); st {
	case database.OrderStatusPending, database.OrderStatusPreparing,
		database.OrderStatusReady, database.OrderStatusCompleted:
		return st, nil
	}
	return "", ErrInvalidOrderStatus
}

func listLimit(n int) (int32, error) {
	switch {
	case n == 0:
		return defaultListLimit, nil
	case n < 0:
		return 0, fmt.Errorf("%w: limit must be >= 1", ErrValidation)
	case n > maxListLimit:
		return maxListLimit, nil
	}
	return int32(n), nil
}

func average(sum decimal.Decimal, count int64) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return money.Round(sum.Div(decimal.NewFromInt(count)))
}
