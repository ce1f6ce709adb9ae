package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const createBill = `
INSERT INTO bills (bill_number, order_id, customer_name, subtotal, discount, tax, total_amount, payment_status, bill_date, cashier)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id, bill_number, order_id, customer_name, subtotal, discount, tax, total_amount, payment_method, payment_status, bill_date, cashier
`

type CreateBillParams struct {
	BillNumber    string
	OrderID       uuid.UUID
	CustomerName  string
	Subtotal      pgtype.Numeric
	Discount      pgtype.Numeric
	Tax           pgtype.Numeric
	TotalAmount   pgtype.Numeric
	PaymentStatus PaymentStatus
	BillDate      time.Time
	Cashier       string
}

func (q *Queries) CreateBill(ctx context.Context, arg CreateBillParams) (Bill, error) {
	row := q.db.QueryRow(ctx, createBill,
		arg.BillNumber,
		arg.OrderID,
		arg.CustomerName,
		arg.Subtotal,
		arg.Discount,
		arg.Tax,
		arg.TotalAmount,
		arg.PaymentStatus,
		arg.BillDate,
		arg.Cashier,
	)
	return scanBill(row)
}

const createBillItem = `
INSERT INTO bill_items (bill_id, position, product_name, quantity, unit_price, total_price)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, bill_id, position, product_name, quantity, unit_price, total_price
`

type CreateBillItemParams struct {
	BillID      uuid.UUID
	Position    int32
	ProductName string
	Quantity    int32
	UnitPrice   pgtype.Numeric
	TotalPrice  pgtype.Numeric
}

func (q *Queries) CreateBillItem(ctx context.Context, arg CreateBillItemParams) (BillItem, error) {
	row := q.db.QueryRow(ctx, createBillItem,
		arg.BillID,
		arg.Position,
		arg.ProductName,
		arg.Quantity,
		arg.UnitPrice,
		arg.TotalPrice,
	)
	var i BillItem
	err := row.Scan(
		&i.ID,
		&i.BillID,
		&i.Position,
		&i.ProductName,
		&i.Quantity,
		&i.UnitPrice,
		&i.TotalPrice,
	)
	return i, err
}

const deletePendingBill = `
DELETE FROM bills
WHERE id = $1 AND payment_status = 'pending'
RETURNING id
`

func (q *Queries) DeletePendingBill(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deletePendingBill, id)
	err := row.Scan(&id)
	return id, err
}

const getBill = `
SELECT id, bill_number, order_id, customer_name, subtotal, discount, tax, total_amount, payment_method, payment_status, bill_date, cashier
FROM bills
WHERE id = $1
`

func (q *Queries) GetBill(ctx context.Context, id uuid.UUID) (Bill, error) {
	row := q.db.QueryRow(ctx, getBill, id)
	return scanBill(row)
}

const getBillByNumber = `
SELECT id, bill_number, order_id, customer_name, subtotal, discount, tax, total_amount, payment_method, payment_status, bill_date, cashier
FROM bills
WHERE bill_number = $1
`

func (q *Queries) GetBillByNumber(ctx context.Context, billNumber string) (Bill, error) {
	row := q.db.QueryRow(ctx, getBillByNumber, billNumber)
	return scanBill(row)
}

const getBillForUpdate = `
SELECT id, bill_number, order_id, customer_name, subtotal, discount, tax, total_amount, payment_method, payment_status, bill_date, cashier
FROM bills
WHERE id = $1
FOR NO KEY UPDATE
`

func (q *Queries) GetBillForUpdate(ctx context.Context, id uuid.UUID) (Bill, error) {
	row := q.db.QueryRow(ctx, getBillForUpdate, id)
	return scanBill(row)
}

const getBillStats = `
SELECT
    COUNT(*)::bigint AS total,
    COUNT(*) FILTER (WHERE payment_status = 'pending')::bigint AS pending,
    COUNT(*) FILTER (WHERE payment_status = 'paid')::bigint AS paid,
    COUNT(*) FILTER (WHERE payment_status = 'refunded')::bigint AS refunded,
    COALESCE(SUM(total_amount) FILTER (WHERE payment_status = 'paid'), 0)::numeric AS paid_revenue,
    COALESCE(SUM(tax) FILTER (WHERE payment_status = 'paid'), 0)::numeric AS paid_tax,
    COALESCE(SUM(discount), 0)::numeric AS total_discounts
FROM bills
`

type GetBillStatsRow struct {
	Total          int64
	Pending        int64
	Paid           int64
	Refunded       int64
	PaidRevenue    pgtype.Numeric
	PaidTax        pgtype.Numeric
	TotalDiscounts pgtype.Numeric
}

func (q *Queries) GetBillStats(ctx context.Context) (GetBillStatsRow, error) {
	row := q.db.QueryRow(ctx, getBillStats)
	var i GetBillStatsRow
	err := row.Scan(
		&i.Total,
		&i.Pending,
		&i.Paid,
		&i.Refunded,
		&i.PaidRevenue,
		&i.PaidTax,
		&i.TotalDiscounts,
	)
	return i, err
}

const getPaidBillsByMethod = `
SELECT
    COALESCE(payment_method::text, 'unknown')::text AS payment_method,
    COUNT(*)::bigint AS bill_count,
    COALESCE(SUM(total_amount), 0)::numeric AS total_amount
FROM bills
WHERE payment_status = 'paid'
GROUP BY 1
ORDER BY 1
`

type GetPaidBillsByMethodRow struct {
	PaymentMethod string
	BillCount     int64
	TotalAmount   pgtype.Numeric
}

func (q *Queries) GetPaidBillsByMethod(ctx context.Context) ([]GetPaidBillsByMethodRow, error) {
	rows, err := q.db.Query(ctx, getPaidBillsByMethod)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []GetPaidBillsByMethodRow{}
	for rows.Next() {
		var i GetPaidBillsByMethodRow
		if err := rows.Scan(&i.PaymentMethod, &i.BillCount, &i.TotalAmount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listBillItemsByBill = `
SELECT id, bill_id, position, product_name, quantity, unit_price, total_price
FROM bill_items
WHERE bill_id = $1
ORDER BY position
`

func (q *Queries) ListBillItemsByBill(ctx context.Context, billID uuid.UUID) ([]BillItem, error) {
	rows, err := q.db.Query(ctx, listBillItemsByBill, billID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []BillItem{}
	for rows.Next() {
		var i BillItem
		if err := rows.Scan(
			&i.ID,
			&i.BillID,
			&i.Position,
			&i.ProductName,
			&i.Quantity,
			&i.UnitPrice,
			&i.TotalPrice,
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

const listBillItemsByBills = `
SELECT id, bill_id, position, product_name, quantity, unit_price, total_price
FROM bill_items
WHERE bill_id = ANY($1::uuid[])
ORDER BY bill_id, position
`

// ListBillItemsByBills loads the items of several bills in one query.
func (q *Queries) ListBillItemsByBills(ctx context.Context, billIDs []uuid.UUID) ([]BillItem, error) {
	rows, err := q.db.Query(ctx, listBillItemsByBills, billIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []BillItem{}
	for rows.Next() {
		var i BillItem
		if err := rows.Scan(
			&i.ID,
			&i.BillID,
			&i.Position,
			&i.ProductName,
			&i.Quantity,
			&i.UnitPrice,
			&i.TotalPrice,
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

const listBills = `
SELECT id, bill_number, order_id, customer_name, subtotal, discount, tax, total_amount, payment_method, payment_status, bill_date, cashier
FROM bills
WHERE ($1::payment_status IS NULL OR payment_status = $1::payment_status)
ORDER BY bill_date DESC
LIMIT $2
`

type ListBillsParams struct {
	PaymentStatus NullPaymentStatus
	Limit         int32
}

func (q *Queries) ListBills(ctx context.Context, arg ListBillsParams) ([]Bill, error) {
	rows, err := q.db.Query(ctx, listBills, arg.PaymentStatus, arg.Limit)
	if err != nil {
		return nil, err
	}
	return collectBills(rows)
}

const listBillsByOrder = `
SELECT id, bill_number, order_id, customer_name, subtotal, discount, tax, total_amount, payment_method, payment_status, bill_date, cashier
FROM bills
WHERE order_id = $1
ORDER BY bill_date DESC
`

func (q *Queries) ListBillsByOrder(ctx context.Context, orderID uuid.UUID) ([]Bill, error) {
	rows, err := q.db.Query(ctx, listBillsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	return collectBills(rows)
}

const updateBillAmounts = `
UPDATE bills
SET discount = $2, tax = $3, total_amount = $4
WHERE id = $1
RETURNING id, bill_number, order_id, customer_name, subtotal, discount, tax, total_amount, payment_method, payment_status, bill_date, cashier
`

type UpdateBillAmountsParams struct {
	ID          uuid.UUID
	Discount    pgtype.Numeric
	Tax         pgtype.Numeric
	TotalAmount pgtype.Numeric
}

func (q *Queries) UpdateBillAmounts(ctx context.Context, arg UpdateBillAmountsParams) (Bill, error) {
	row := q.db.QueryRow(ctx, updateBillAmounts,
		arg.ID,
		arg.Discount,
		arg.Tax,
		arg.TotalAmount,
	)
	return scanBill(row)
}

const updateBillPayment = `
UPDATE bills
SET payment_status = $1,
    payment_method = COALESCE($2::payment_method, payment_method)
WHERE id = $3
RETURNING id, bill_number, order_id, customer_name, subtotal, discount, tax, total_amount, payment_method, payment_status, bill_date, cashier
`

type UpdateBillPaymentParams struct {
	PaymentStatus PaymentStatus
	PaymentMethod NullPaymentMethod
	ID            uuid.UUID
}

func (q *Queries) UpdateBillPayment(ctx context.Context, arg UpdateBillPaymentParams) (Bill, error) {
	row := q.db.QueryRow(ctx, updateBillPayment, arg.PaymentStatus, arg.PaymentMethod, arg.ID)
	return scanBill(row)
}

const updateBillPaymentMethod = `
UPDATE bills
SET payment_method = $2
WHERE id = $1
RETURNING id, bill_number, order_id, customer_name, subtotal, discount, tax, total_amount, payment_method, payment_status, bill_date, cashier
`

type UpdateBillPaymentMethodParams struct {
	ID            uuid.UUID
	PaymentMethod NullPaymentMethod
}

func (q *Queries) UpdateBillPaymentMethod(ctx context.Context, arg UpdateBillPaymentMethodParams) (Bill, error) {
	row := q.db.QueryRow(ctx, updateBillPaymentMethod, arg.ID, arg.PaymentMethod)
	return scanBill(row)
}

func scanBill(row pgx.Row) (Bill, error) {
	var i Bill
	err := row.Scan(
		&i.ID,
		&i.BillNumber,
		&i.OrderID,
		&i.CustomerName,
		&i.Subtotal,
		&i.Discount,
		&i.Tax,
		&i.TotalAmount,
		&i.PaymentMethod,
		&i.PaymentStatus,
		&i.BillDate,
		&i.Cashier,
	)
	return i, err
}

func collectBills(rows pgx.Rows) ([]Bill, error) {
	defer rows.Close()
	items := []Bill{}
	for rows.Next() {
		i, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
