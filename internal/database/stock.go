package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const stockItemColumns = `id, product_id, product_name, description, category, current_stock, min_stock, max_stock, unit, unit_cost, supplier, expiry_date, status, created_at, updated_at`

const createStockItem = `
INSERT INTO stock_items (product_id, product_name, description, category, current_stock, min_stock, max_stock, unit, unit_cost, supplier, expiry_date, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + stockItemColumns

type CreateStockItemParams struct {
	ProductID    string
	ProductName  string
	Description  string
	Category     StockCategory
	CurrentStock int32
	MinStock     int32
	MaxStock     int32
	Unit         string
	UnitCost     pgtype.Numeric
	Supplier     string
	ExpiryDate   pgtype.Timestamptz
	Status       StockStatus
}

func (q *Queries) CreateStockItem(ctx context.Context, arg CreateStockItemParams) (StockItem, error) {
	row := q.db.QueryRow(ctx, createStockItem,
		arg.ProductID,
		arg.ProductName,
		arg.Description,
		arg.Category,
		arg.CurrentStock,
		arg.MinStock,
		arg.MaxStock,
		arg.Unit,
		arg.UnitCost,
		arg.Supplier,
		arg.ExpiryDate,
		arg.Status,
	)
	return scanStockItem(row)
}

const getStockItem = `
SELECT ` + stockItemColumns + `
FROM stock_items
WHERE id = $1`

func (q *Queries) GetStockItem(ctx context.Context, id uuid.UUID) (StockItem, error) {
	row := q.db.QueryRow(ctx, getStockItem, id)
	return scanStockItem(row)
}

const getStockItemForUpdate = `
SELECT ` + stockItemColumns + `
FROM stock_items
WHERE id = $1
FOR NO KEY UPDATE`

func (q *Queries) GetStockItemForUpdate(ctx context.Context, id uuid.UUID) (StockItem, error) {
	row := q.db.QueryRow(ctx, getStockItemForUpdate, id)
	return scanStockItem(row)
}

// Filters shared by ListStockItems and CountStockItems. Search matches
// name, description and product id case-insensitively.
const stockItemFilter = `
WHERE ($1::stock_category IS NULL OR category = $1::stock_category)
  AND ($2::stock_status IS NULL OR status = $2::stock_status)
  AND ($3::text IS NULL
       OR product_name ILIKE '%' || $3::text || '%'
       OR description ILIKE '%' || $3::text || '%'
       OR product_id ILIKE '%' || $3::text || '%')`

const listStockItems = `
SELECT ` + stockItemColumns + `
FROM stock_items` + stockItemFilter + `
ORDER BY product_name, id
LIMIT $4 OFFSET $5`

type ListStockItemsParams struct {
	Category NullStockCategory
	Status   NullStockStatus
	Search   pgtype.Text
	Limit    int32
	Offset   int32
}

func (q *Queries) ListStockItems(ctx context.Context, arg ListStockItemsParams) ([]StockItem, error) {
	rows, err := q.db.Query(ctx, listStockItems,
		arg.Category,
		arg.Status,
		arg.Search,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	return collectStockItems(rows)
}

const countStockItems = `
SELECT COUNT(*)::bigint
FROM stock_items` + stockItemFilter

type CountStockItemsParams struct {
	Category NullStockCategory
	Status   NullStockStatus
	Search   pgtype.Text
}

func (q *Queries) CountStockItems(ctx context.Context, arg CountStockItemsParams) (int64, error) {
	row := q.db.QueryRow(ctx, countStockItems, arg.Category, arg.Status, arg.Search)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const updateStockItem = `
UPDATE stock_items
SET product_id = $2,
    product_name = $3,
    description = $4,
    category = $5,
    current_stock = $6,
    min_stock = $7,
    max_stock = $8,
    unit = $9,
    unit_cost = $10,
    supplier = $11,
    expiry_date = $12,
    status = $13,
    updated_at = now()
WHERE id = $1
RETURNING ` + stockItemColumns

type UpdateStockItemParams struct {
	ID           uuid.UUID
	ProductID    string
	ProductName  string
	Description  string
	Category     StockCategory
	CurrentStock int32
	MinStock     int32
	MaxStock     int32
	Unit         string
	UnitCost     pgtype.Numeric
	Supplier     string
	ExpiryDate   pgtype.Timestamptz
	Status       StockStatus
}

func (q *Queries) UpdateStockItem(ctx context.Context, arg UpdateStockItemParams) (StockItem, error) {
	row := q.db.QueryRow(ctx, updateStockItem,
		arg.ID,
		arg.ProductID,
		arg.ProductName,
		arg.Description,
		arg.Category,
		arg.CurrentStock,
		arg.MinStock,
		arg.MaxStock,
		arg.Unit,
		arg.UnitCost,
		arg.Supplier,
		arg.ExpiryDate,
		arg.Status,
	)
	return scanStockItem(row)
}

const deleteStockItem = `
DELETE FROM stock_items
WHERE id = $1`

func (q *Queries) DeleteStockItem(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteStockItem, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listLowStockItems = `
SELECT ` + stockItemColumns + `
FROM stock_items
WHERE status IN ('low_stock', 'out_of_stock')
ORDER BY current_stock, product_name`

func (q *Queries) ListLowStockItems(ctx context.Context) ([]StockItem, error) {
	rows, err := q.db.Query(ctx, listLowStockItems)
	if err != nil {
		return nil, err
	}
	return collectStockItems(rows)
}

const listStockCategories = `
SELECT DISTINCT category
FROM stock_items
ORDER BY category`

func (q *Queries) ListStockCategories(ctx context.Context) ([]StockCategory, error) {
	rows, err := q.db.Query(ctx, listStockCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []StockCategory{}
	for rows.Next() {
		var category StockCategory
		if err := rows.Scan(&category); err != nil {
			return nil, err
		}
		items = append(items, category)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanStockItem(row pgx.Row) (StockItem, error) {
	var i StockItem
	err := row.Scan(
		&i.ID,
		&i.ProductID,
		&i.ProductName,
		&i.Description,
		&i.Category,
		&i.CurrentStock,
		&i.MinStock,
		&i.MaxStock,
		&i.Unit,
		&i.UnitCost,
		&i.Supplier,
		&i.ExpiryDate,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func collectStockItems(rows pgx.Rows) ([]StockItem, error) {
	defer rows.Close()
	items := []StockItem{}
	for rows.Next() {
		i, err := scanStockItem(rows)
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
