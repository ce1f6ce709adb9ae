package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createOrder = `
INSERT INTO orders (order_number, customer_name, total_amount, status, order_date, estimated_time, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, order_number, customer_name, total_amount, status, order_date, estimated_time, notes
`

type CreateOrderParams struct {
	OrderNumber   string
	CustomerName  string
	TotalAmount   pgtype.Numeric
	Status        OrderStatus
	OrderDate     time.Time
	EstimatedTime int32
	Notes         string
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.OrderNumber,
		arg.CustomerName,
		arg.TotalAmount,
		arg.Status,
		arg.OrderDate,
		arg.EstimatedTime,
		arg.Notes,
	)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.OrderNumber,
		&i.CustomerName,
		&i.TotalAmount,
		&i.Status,
		&i.OrderDate,
		&i.EstimatedTime,
		&i.Notes,
	)
	return i, err
}

const createOrderItem = `
INSERT INTO order_items (order_id, position, product_name, quantity, price, customizations)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, order_id, position, product_name, quantity, price, customizations
`

type CreateOrderItemParams struct {
	OrderID        uuid.UUID
	Position       int32
	ProductName    string
	Quantity       int32
	Price          pgtype.Numeric
	Customizations []string
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID,
		arg.Position,
		arg.ProductName,
		arg.Quantity,
		arg.Price,
		arg.Customizations,
	)
	var i OrderItem
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.Position,
		&i.ProductName,
		&i.Quantity,
		&i.Price,
		&i.Customizations,
	)
	return i, err
}

const deletePendingOrder = `
DELETE FROM orders
WHERE id = $1 AND status = 'pending'
RETURNING id
`

func (q *Queries) DeletePendingOrder(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deletePendingOrder, id)
	err := row.Scan(&id)
	return id, err
}

const getOrder = `
SELECT id, order_number, customer_name, total_amount, status, order_date, estimated_time, notes
FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, getOrder, id)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.OrderNumber,
		&i.CustomerName,
		&i.TotalAmount,
		&i.Status,
		&i.OrderDate,
		&i.EstimatedTime,
		&i.Notes,
	)
	return i, err
}

const getOrderByNumber = `
SELECT id, order_number, customer_name, total_amount, status, order_date, estimated_time, notes
FROM orders
WHERE order_number = $1
`

func (q *Queries) GetOrderByNumber(ctx context.Context, orderNumber string) (Order, error) {
	row := q.db.QueryRow(ctx, getOrderByNumber, orderNumber)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.OrderNumber,
		&i.CustomerName,
		&i.TotalAmount,
		&i.Status,
		&i.OrderDate,
		&i.EstimatedTime,
		&i.Notes,
	)
	return i, err
}

const getOrderForShare = `
SELECT id, order_number, customer_name, total_amount, status, order_date, estimated_time, notes
FROM orders
WHERE id = $1
FOR SHARE
`

func (q *Queries) GetOrderForShare(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, getOrderForShare, id)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.OrderNumber,
		&i.CustomerName,
		&i.TotalAmount,
		&i.Status,
		&i.OrderDate,
		&i.EstimatedTime,
		&i.Notes,
	)
	return i, err
}

const getOrderStats = `
SELECT
    COUNT(*)::bigint AS total,
    COUNT(*) FILTER (WHERE status = 'pending')::bigint AS pending,
    COUNT(*) FILTER (WHERE status = 'preparing')::bigint AS preparing,
    COUNT(*) FILTER (WHERE status = 'ready')::bigint AS ready,
    COUNT(*) FILTER (WHERE status = 'completed')::bigint AS completed,
    COALESCE(SUM(total_amount) FILTER (WHERE status = 'completed'), 0)::numeric AS completed_revenue
FROM orders
`

type GetOrderStatsRow struct {
	Total            int64
	Pending          int64
	Preparing        int64
	Ready            int64
	Completed        int64
	CompletedRevenue pgtype.Numeric
}

func (q *Queries) GetOrderStats(ctx context.Context) (GetOrderStatsRow, error) {
	row := q.db.QueryRow(ctx, getOrderStats)
	var i GetOrderStatsRow
	err := row.Scan(
		&i.Total,
		&i.Pending,
		&i.Preparing,
		&i.Ready,
		&i.Completed,
		&i.CompletedRevenue,
	)
	return i, err
}

const listOrderItemsByOrder = `
SELECT id, order_id, position, product_name, quantity, price, customizations
FROM order_items
WHERE order_id = $1
ORDER BY position
`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OrderItem{}
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.Position,
			&i.ProductName,
			&i.Quantity,
			&i.Price,
			&i.Customizations,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listOrderItemsByOrders = `
SELECT id, order_id, position, product_name, quantity, price, customizations
FROM order_items
WHERE order_id = ANY($1::uuid[])
ORDER BY order_id, position
`

// ListOrderItemsByOrders loads the items of several orders in one query.
func (q *Queries) ListOrderItemsByOrders(ctx context.Context, orderIDs []uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrders, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OrderItem{}
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.Position,
			&i.ProductName,
			&i.Quantity,
			&i.Price,
			&i.Customizations,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listOrders = `
SELECT id, order_number, customer_name, total_amount, status, order_date, estimated_time, notes
FROM orders
WHERE ($1::order_status IS NULL OR status = $1::order_status)
ORDER BY order_date DESC
LIMIT $2
`

type ListOrdersParams struct {
	Status NullOrderStatus
	Limit  int32
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders, arg.Status, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Order{}
	for rows.Next() {
		var i Order
		if err := rows.Scan(
			&i.ID,
			&i.OrderNumber,
			&i.CustomerName,
			&i.TotalAmount,
			&i.Status,
			&i.OrderDate,
			&i.EstimatedTime,
			&i.Notes,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateOrderStatus = `
UPDATE orders
SET status = $2
WHERE id = $1
RETURNING id, order_number, customer_name, total_amount, status, order_date, estimated_time, notes
`

type UpdateOrderStatusParams struct {
	ID     uuid.UUID
	Status OrderStatus
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.Status)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.OrderNumber,
		&i.CustomerName,
		&i.TotalAmount,
		&i.Status,
		&i.OrderDate,
		&i.EstimatedTime,
		&i.Notes,
	)
	return i, err
}
