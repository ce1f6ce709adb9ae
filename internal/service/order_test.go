package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/brewline/coffee-pos/internal/database"
)

// mockOrderStore implements OrderStore with configurable behavior.
type mockOrderStore struct {
	createOrderFn            func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	createOrderItemFn        func(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	getOrderFn               func(ctx context.Context, id uuid.UUID) (database.Order, error)
	getOrderByNumberFn       func(ctx context.Context, number string) (database.Order, error)
	listOrdersFn             func(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	listOrderItemsByOrderFn  func(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	listOrderItemsByOrdersFn func(ctx context.Context, ids []uuid.UUID) ([]database.OrderItem, error)
	updateOrderStatusFn      func(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	deletePendingOrderFn     func(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	getOrderStatsFn          func(ctx context.Context) (database.GetOrderStatsRow, error)
}

func (m *mockOrderStore) CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
	return m.createOrderFn(ctx, arg)
}
func (m *mockOrderStore) CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
	return m.createOrderItemFn(ctx, arg)
}
func (m *mockOrderStore) GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error) {
	return m.getOrderFn(ctx, id)
}
func (m *mockOrderStore) GetOrderByNumber(ctx context.Context, number string) (database.Order, error) {
	return m.getOrderByNumberFn(ctx, number)
}
func (m *mockOrderStore) ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
	return m.listOrdersFn(ctx, arg)
}
func (m *mockOrderStore) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error) {
	return m.listOrderItemsByOrderFn(ctx, orderID)
}
func (m *mockOrderStore) ListOrderItemsByOrders(ctx context.Context, ids []uuid.UUID) ([]database.OrderItem, error) {
	return m.listOrderItemsByOrdersFn(ctx, ids)
}
func (m *mockOrderStore) UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
	return m.updateOrderStatusFn(ctx, arg)
}
func (m *mockOrderStore) DeletePendingOrder(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	return m.deletePendingOrderFn(ctx, id)
}
func (m *mockOrderStore) GetOrderStats(ctx context.Context) (database.GetOrderStatsRow, error) {
	return m.getOrderStatsFn(ctx)
}

// defaultOrderStore keeps orders in memory so create, read, update and
// delete can be chained in one test.
func defaultOrderStore() *mockOrderStore {
	orders := map[uuid.UUID]database.Order{}
	items := map[uuid.UUID][]database.OrderItem{}

	get := func(_ context.Context, id uuid.UUID) (database.Order, error) {
		o, ok := orders[id]
		if !ok {
			return database.Order{}, pgx.ErrNoRows
		}
		return o, nil
	}

	return &mockOrderStore{
		createOrderFn: func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
			o := database.Order{
				ID:            uuid.New(),
				OrderNumber:   arg.OrderNumber,
				CustomerName:  arg.CustomerName,
				TotalAmount:   arg.TotalAmount,
				Status:        arg.Status,
				OrderDate:     arg.OrderDate,
				EstimatedTime: arg.EstimatedTime,
				Notes:         arg.Notes,
			}
			orders[o.ID] = o
			return o, nil
		},
		createOrderItemFn: func(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
			it := database.OrderItem{
				ID:             uuid.New(),
				OrderID:        arg.OrderID,
				Position:       arg.Position,
				ProductName:    arg.ProductName,
				Quantity:       arg.Quantity,
				Price:          arg.Price,
				Customizations: arg.Customizations,
			}
			items[arg.OrderID] = append(items[arg.OrderID], it)
			return it, nil
		},
		getOrderFn: get,
		getOrderByNumberFn: func(ctx context.Context, number string) (database.Order, error) {
			for _, o := range orders {
				if o.OrderNumber == number {
					return o, nil
				}
			}
			return database.Order{}, pgx.ErrNoRows
		},
		listOrdersFn: func(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
			var out []database.Order
			for _, o := range orders {
				if !arg.Status.Valid || o.Status == arg.Status.OrderStatus {
					out = append(out, o)
				}
			}
			return out, nil
		},
		listOrderItemsByOrderFn: func(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error) {
			return items[orderID], nil
		},
		listOrderItemsByOrdersFn: func(ctx context.Context, ids []uuid.UUID) ([]database.OrderItem, error) {
			var out []database.OrderItem
			for _, id := range ids {
				out = append(out, items[id]...)
			}
			return out, nil
		},
		updateOrderStatusFn: func(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
			o, ok := orders[arg.ID]
			if !ok {
				return database.Order{}, pgx.ErrNoRows
			}
			o.Status = arg.Status
			orders[arg.ID] = o
			return o, nil
		},
		deletePendingOrderFn: func(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
			o, ok := orders[id]
			if !ok || o.Status != database.OrderStatusPending {
				return uuid.Nil, pgx.ErrNoRows
			}
			delete(orders, id)
			delete(items, id)
			return id, nil
		},
		getOrderStatsFn: func(ctx context.Context) (database.GetOrderStatsRow, error) {
			return database.GetOrderStatsRow{}, nil
		},
	}
}

// newTestOrderService wires store both as the pool-level store and as the
// store returned for transactions.
func newTestOrderService(store *mockOrderStore) (*OrderService, *mockTxBeginner) {
	pool := &mockTxBeginner{tx: &mockTx{}}
	newStore := func(db database.DBTX) OrderStore { return store }
	svc := NewOrderService(pool, store, newStore, testNumbers("ORD"))
	svc.now = func() time.Time { return fixedNow }
	return svc, pool
}

func latteMuffinReq() CreateOrderRequest {
	return CreateOrderRequest{
		CustomerName: "Sam",
		Items: []OrderItemInput{
			{ProductName: "Latte", Quantity: 2, Price: dec("4.50"), Customizations: []string{"oat milk"}},
			{ProductName: "Muffin", Quantity: 1, Price: dec("3.00")},
		},
	}
}

// =====================
// Create
// =====================

func TestCreateOrder_TotalsAndEstimate(t *testing.T) {
	svc, pool := newTestOrderService(defaultOrderStore())

	result, err := svc.CreateOrder(context.Background(), latteMuffinReq())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	o := result.Order
	if !numericEquals(o.TotalAmount, "12.00") {
		t.Errorf("total: got %v, want 12.00", o.TotalAmount)
	}
	if o.EstimatedTime != 11 {
		t.Errorf("estimated time: got %d, want 11", o.EstimatedTime)
	}
	if o.Status != database.OrderStatusPending {
		t.Errorf("status: got %s, want pending", o.Status)
	}
	if o.OrderNumber != "ORD-20260301093000-001" {
		t.Errorf("order number: got %s", o.OrderNumber)
	}
	if !o.OrderDate.Equal(fixedNow) {
		t.Errorf("order date: got %v", o.OrderDate)
	}
	if len(result.Items) != 2 {
		t.Fatalf("items: got %d, want 2", len(result.Items))
	}
	if result.Items[0].Position != 0 || result.Items[1].Position != 1 {
		t.Error("items should keep request order")
	}
	if result.Items[1].Customizations == nil {
		t.Error("customizations should default to an empty list")
	}
	if !pool.tx.committed {
		t.Error("transaction not committed")
	}
}

func TestCreateOrder_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateOrderRequest)
		msg    string
	}{
		{"blank customer", func(r *CreateOrderRequest) { r.CustomerName = "   " }, "customerName is required"},
		{"no items", func(r *CreateOrderRequest) { r.Items = nil }, "items"},
		{"zero quantity", func(r *CreateOrderRequest) { r.Items[0].Quantity = 0 }, "items[0].quantity"},
		{"negative price", func(r *CreateOrderRequest) { r.Items[1].Price = dec("-1") }, "items[1].price"},
		{"blank product", func(r *CreateOrderRequest) { r.Items[0].ProductName = "" }, "items[0].productName"},
		{"price too large", func(r *CreateOrderRequest) { r.Items[0].Price = dec("10000000000") }, "items[0].price must be <= 9999999999.99"},
		{"total too large", func(r *CreateOrderRequest) {
			r.Items[0].Price = dec("9999999999.99")
			r.Items[0].Quantity = 2
		}, "amounts must be between"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, pool := newTestOrderService(defaultOrderStore())
			req := latteMuffinReq()
			tt.mutate(&req)

			_, err := svc.CreateOrder(context.Background(), req)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got: %v", err)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q should mention %q", err, tt.msg)
			}
			if pool.begun != 0 {
				t.Error("no transaction should start for invalid input")
			}
		})
	}
}

func TestCreateOrder_PriceAtUpperBound(t *testing.T) {
	svc, _ := newTestOrderService(defaultOrderStore())
	req := latteMuffinReq()
	req.Items = req.Items[:1]
	req.Items[0].Quantity = 1
	req.Items[0].Price = dec("9999999999.99")

	result, err := svc.CreateOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !numericEquals(result.Order.TotalAmount, "9999999999.99") {
		t.Errorf("total: got %v, want 9999999999.99", result.Order.TotalAmount)
	}
}

func TestCreateOrder_FreeItemAllowed(t *testing.T) {
	svc, _ := newTestOrderService(defaultOrderStore())
	req := latteMuffinReq()
	req.Items[1].Price = dec("0")

	result, err := svc.CreateOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !numericEquals(result.Order.TotalAmount, "9.00") {
		t.Errorf("total: got %v, want 9.00", result.Order.TotalAmount)
	}
}

func TestCreateOrder_RetryOnUniqueViolation(t *testing.T) {
	store := defaultOrderStore()
	create := store.createOrderFn
	var numbers []string
	store.createOrderFn = func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
		numbers = append(numbers, arg.OrderNumber)
		if len(numbers) == 1 {
			return database.Order{}, uniqueViolation(orderNumberConstraint)
		}
		return create(ctx, arg)
	}

	svc, pool := newTestOrderService(store)
	result, err := svc.CreateOrder(context.Background(), latteMuffinReq())
	if err != nil {
		t.Fatalf("unexpected error after retry: %v", err)
	}
	if len(numbers) != 2 {
		t.Fatalf("expected 2 CreateOrder calls, got %d", len(numbers))
	}
	if numbers[0] == numbers[1] {
		t.Error("retry should use a fresh order number")
	}
	if result.Order.OrderNumber != numbers[1] {
		t.Errorf("order number: got %s, want %s", result.Order.OrderNumber, numbers[1])
	}
	if pool.begun != 2 {
		t.Errorf("expected one transaction per attempt, got %d", pool.begun)
	}
}

func TestCreateOrder_RetryExhausted(t *testing.T) {
	store := defaultOrderStore()
	store.createOrderFn = func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
		return database.Order{}, uniqueViolation(orderNumberConstraint)
	}

	svc, pool := newTestOrderService(store)
	_, err := svc.CreateOrder(context.Background(), latteMuffinReq())
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage after exhausting retries, got: %v", err)
	}
	if pool.begun != maxNumberRetries {
		t.Errorf("expected %d attempts, got %d", maxNumberRetries, pool.begun)
	}
}

func TestCreateOrder_OtherUniqueViolationNotRetried(t *testing.T) {
	store := defaultOrderStore()
	calls := 0
	store.createOrderFn = func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
		calls++
		return database.Order{}, uniqueViolation("some_other_key")
	}

	svc, _ := newTestOrderService(store)
	_, err := svc.CreateOrder(context.Background(), latteMuffinReq())
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestCreateOrder_ItemInsertFails(t *testing.T) {
	store := defaultOrderStore()
	store.createOrderItemFn = func(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
		return database.OrderItem{}, errors.New("disk full")
	}

	svc, pool := newTestOrderService(store)
	_, err := svc.CreateOrder(context.Background(), latteMuffinReq())
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got: %v", err)
	}
	if pool.tx.committed {
		t.Error("transaction must not commit when an item fails")
	}
}

func TestCreateOrder_BeginFails(t *testing.T) {
	svc, pool := newTestOrderService(defaultOrderStore())
	pool.err = errors.New("pool closed")

	_, err := svc.CreateOrder(context.Background(), latteMuffinReq())
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got: %v", err)
	}
}

// =====================
// Read
// =====================

func TestGetOrder(t *testing.T) {
	svc, _ := newTestOrderService(defaultOrderStore())
	created, _ := svc.CreateOrder(context.Background(), latteMuffinReq())

	got, err := svc.GetOrder(context.Background(), created.Order.ID.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Order.ID != created.Order.ID || len(got.Items) != 2 {
		t.Errorf("unexpected order: %+v", got)
	}

	byNumber, err := svc.GetOrderByNumber(context.Background(), created.Order.OrderNumber)
	if err != nil {
		t.Fatalf("by number: %v", err)
	}
	if byNumber.Order.ID != created.Order.ID {
		t.Error("lookup by number returned a different order")
	}
}

func TestGetOrder_Errors(t *testing.T) {
	svc, _ := newTestOrderService(defaultOrderStore())

	if _, err := svc.GetOrder(context.Background(), "not-a-uuid"); !errors.Is(err, ErrInvalidID) {
		t.Errorf("expected ErrInvalidID, got: %v", err)
	}
	if _, err := svc.GetOrder(context.Background(), uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
	if _, err := svc.GetOrderByNumber(context.Background(), "ORD-missing"); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got: %v", err)
	}
}

func TestListOrders(t *testing.T) {
	store := defaultOrderStore()
	svc, _ := newTestOrderService(store)
	a, _ := svc.CreateOrder(context.Background(), latteMuffinReq())
	svc.CreateOrder(context.Background(), latteMuffinReq())
	svc.UpdateStatus(context.Background(), a.Order.ID.String(), "ready")

	var gotLimit int32
	list := store.listOrdersFn
	store.listOrdersFn = func(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
		gotLimit = arg.Limit
		return list(ctx, arg)
	}

	all, err := svc.ListOrders(context.Background(), OrderFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 || gotLimit != defaultListLimit {
		t.Errorf("got %d orders with limit %d", len(all), gotLimit)
	}
	for _, o := range all {
		if len(o.Items) != 2 {
			t.Errorf("order %s: got %d items", o.Order.OrderNumber, len(o.Items))
		}
	}

	ready, err := svc.ListOrders(context.Background(), OrderFilter{Status: "ready", Limit: 5000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ready) != 1 || ready[0].Order.ID != a.Order.ID {
		t.Errorf("status filter: got %d orders", len(ready))
	}
	if gotLimit != maxListLimit {
		t.Errorf("limit should be capped at %d, got %d", maxListLimit, gotLimit)
	}
}

func TestListOrders_BadInput(t *testing.T) {
	svc, _ := newTestOrderService(defaultOrderStore())

	if _, err := svc.ListOrders(context.Background(), OrderFilter{Status: "cancelled"}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got: %v", err)
	}
	if _, err := svc.ListOrders(context.Background(), OrderFilter{Limit: -1}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got: %v", err)
	}
}

func TestListOrders_Empty(t *testing.T) {
	store := defaultOrderStore()
	store.listOrderItemsByOrdersFn = func(ctx context.Context, ids []uuid.UUID) ([]database.OrderItem, error) {
		t.Fatal("items should not be loaded for an empty page")
		return nil, nil
	}
	svc, _ := newTestOrderService(store)

	got, err := svc.ListOrders(context.Background(), OrderFilter{})
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list, got %v, %v", got, err)
	}
}

// =====================
// Status updates
// =====================

func TestUpdateStatus_AnyOrder(t *testing.T) {
	svc, _ := newTestOrderService(defaultOrderStore())
	created, _ := svc.CreateOrder(context.Background(), latteMuffinReq())
	id := created.Order.ID.String()

	for _, st := range []string{"completed", "pending", "ready", "preparing"} {
		got, err := svc.UpdateStatus(context.Background(), id, st)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", st, err)
		}
		if string(got.Order.Status) != st {
			t.Errorf("status: got %s, want %s", got.Order.Status, st)
		}
		if !numericEquals(got.Order.TotalAmount, "12.00") || got.Order.EstimatedTime != 11 {
			t.Error("status change must not touch total or estimate")
		}
	}
}

func TestUpdateStatus_Errors(t *testing.T) {
	svc, _ := newTestOrderService(defaultOrderStore())
	created, _ := svc.CreateOrder(context.Background(), latteMuffinReq())

	tests := []struct {
		name   string
		id     string
		status string
		want   error
	}{
		{"unknown status", created.Order.ID.String(), "served", ErrInvalidTransition},
		{"case sensitive", created.Order.ID.String(), "Ready", ErrInvalidTransition},
		{"bad id", "123", "ready", ErrInvalidID},
		{"missing", uuid.NewString(), "ready", ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateStatus(context.Background(), tt.id, tt.status)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got: %v", tt.want, err)
			}
		})
	}
}

// =====================
// Delete
// =====================

func TestDeleteOrder_Pending(t *testing.T) {
	svc, _ := newTestOrderService(defaultOrderStore())
	created, _ := svc.CreateOrder(context.Background(), latteMuffinReq())

	if err := svc.DeleteOrder(context.Background(), created.Order.ID.String()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GetOrder(context.Background(), created.Order.ID.String()); !errors.Is(err, ErrNotFound) {
		t.Errorf("order should be gone, got: %v", err)
	}
}

func TestDeleteOrder_NotPending(t *testing.T) {
	svc, _ := newTestOrderService(defaultOrderStore())
	created, _ := svc.CreateOrder(context.Background(), latteMuffinReq())
	svc.UpdateStatus(context.Background(), created.Order.ID.String(), "preparing")

	err := svc.DeleteOrder(context.Background(), created.Order.ID.String())
	if !errors.Is(err, ErrPrecondition) {
		t.Fatalf("expected ErrPrecondition, got: %v", err)
	}
	if _, err := svc.GetOrder(context.Background(), created.Order.ID.String()); err != nil {
		t.Errorf("order should still exist: %v", err)
	}
}

func TestDeleteOrder_Missing(t *testing.T) {
	svc, _ := newTestOrderService(defaultOrderStore())
	if err := svc.DeleteOrder(context.Background(), uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
	if err := svc.DeleteOrder(context.Background(), "nope"); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got: %v", err)
	}
}

func TestDeleteOrder_ReferencedByBill(t *testing.T) {
	store := defaultOrderStore()
	store.deletePendingOrderFn = func(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
		return uuid.Nil, &pgconn.PgError{Code: "23503", ConstraintName: "bills_order_id_fkey"}
	}
	svc, _ := newTestOrderService(store)

	err := svc.DeleteOrder(context.Background(), uuid.NewString())
	if !errors.Is(err, ErrOrderHasBills) || !errors.Is(err, ErrPrecondition) {
		t.Fatalf("expected ErrOrderHasBills, got: %v", err)
	}
}

// =====================
// Stats
// =====================

func TestOrderStats(t *testing.T) {
	store := defaultOrderStore()
	store.getOrderStatsFn = func(ctx context.Context) (database.GetOrderStatsRow, error) {
		return database.GetOrderStatsRow{
			Total: 6, Pending: 1, Preparing: 1, Ready: 1, Completed: 3,
			CompletedRevenue: makeNumeric("40.00"),
		}, nil
	}
	svc, _ := newTestOrderService(store)

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Total != 6 || stats.Completed != 3 {
		t.Errorf("counts: %+v", stats)
	}
	if !stats.TotalRevenue.Equal(dec("40")) {
		t.Errorf("revenue: got %s", stats.TotalRevenue)
	}
	if !stats.AverageOrderValue.Equal(dec("13.33")) {
		t.Errorf("average: got %s, want 13.33", stats.AverageOrderValue)
	}
}

func TestOrderStats_NoCompletedOrders(t *testing.T) {
	svc, _ := newTestOrderService(defaultOrderStore())
	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stats.AverageOrderValue.IsZero() {
		t.Errorf("average should be zero, got %s", stats.AverageOrderValue)
	}
}

func TestOrderStats_StorageFailure(t *testing.T) {
	store := defaultOrderStore()
	store.getOrderStatsFn = func(ctx context.Context) (database.GetOrderStatsRow, error) {
		return database.GetOrderStatsRow{}, errors.New("connection reset")
	}
	svc, _ := newTestOrderService(store)

	if _, err := svc.Stats(context.Background()); !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got: %v", err)
	}
}
