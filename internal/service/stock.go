package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/brewline/coffee-pos/internal/database"
	"github.com/brewline/coffee-pos/internal/inventory"
	"github.com/brewline/coffee-pos/internal/money"
	"github.com/brewline/coffee-pos/internal/validate"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const (
	defaultStockPageSize = 20
	maxStockPageSize     = 100

	productIDConstraint = "stock_items_product_id_key"
)

// StockStore defines the DB methods the stock service needs.
type StockStore interface {
	CreateStockItem(ctx context.Context, arg database.CreateStockItemParams) (database.StockItem, error)
	GetStockItem(ctx context.Context, id uuid.UUID) (database.StockItem, error)
	GetStockItemForUpdate(ctx context.Context, id uuid.UUID) (database.StockItem, error)
	ListStockItems(ctx context.Context, arg database.ListStockItemsParams) ([]database.StockItem, error)
	CountStockItems(ctx context.Context, arg database.CountStockItemsParams) (int64, error)
	UpdateStockItem(ctx context.Context, arg database.UpdateStockItemParams) (database.StockItem, error)
	DeleteStockItem(ctx context.Context, id uuid.UUID) (int64, error)
	ListLowStockItems(ctx context.Context) ([]database.StockItem, error)
	ListStockCategories(ctx context.Context) ([]database.StockCategory, error)
}

// NewStockStore creates a StockStore from a DBTX (pool or tx).
type NewStockStore func(db database.DBTX) StockStore

// StockInput is the full set of writable stock fields.
type StockInput struct {
	ProductID    string          `json:"productId" validate:"required,max=64"`
	ProductName  string          `json:"productName" validate:"required"`
	Description  string          `json:"description"`
	Category     string          `json:"category" validate:"required,oneof=coffee pastry equipment supplies"`
	CurrentStock int32           `json:"currentStock" validate:"gte=0"`
	MinStock     int32           `json:"minStock" validate:"gte=0"`
	MaxStock     int32           `json:"maxStock" validate:"gte=0,gtefield=MinStock"`
	Unit         string          `json:"unit" validate:"required"`
	UnitCost     decimal.Decimal `json:"unitCost" validate:"gte=0,lte=9999999999.99"`
	Supplier     string          `json:"supplier"`
	ExpiryDate   *time.Time      `json:"expiryDate"`
}

// StockPatch updates only the fields that are set. ClearExpiry removes the
// expiry date.
type StockPatch struct {
	ProductID    *string          `json:"productId"`
	ProductName  *string          `json:"productName"`
	Description  *string          `json:"description"`
	Category     *string          `json:"category"`
	CurrentStock *int32           `json:"currentStock"`
	MinStock     *int32           `json:"minStock"`
	MaxStock     *int32           `json:"maxStock"`
	Unit         *string          `json:"unit"`
	UnitCost     *decimal.Decimal `json:"unitCost"`
	Supplier     *string          `json:"supplier"`
	ExpiryDate   *time.Time       `json:"expiryDate"`
	ClearExpiry  bool             `json:"clearExpiry"`
}

// StockFilter narrows ListStock. Page is 1-based.
type StockFilter struct {
	Category string
	Status   string
	Search   string
	Page     int
	Limit    int
}

// StockPage is one page of stock items.
type StockPage struct {
	Items []database.StockItem
	Page  int
	Limit int
	Total int64
}

// StockWrite is the stored item plus whether this write moved it into a
// low or out-of-stock state.
type StockWrite struct {
	Item      database.StockItem
	BecameLow bool
}

// StockService manages inventory records.
type StockService struct {
	pool     TxBeginner
	store    StockStore
	newStore NewStockStore
	now      func() time.Time
}

// NewStockService creates a new StockService. store serves reads and
// single-statement writes; newStore builds a store bound to a transaction.
func NewStockService(pool TxBeginner, store StockStore, newStore NewStockStore) *StockService {
	return &StockService{pool: pool, store: store, newStore: newStore, now: time.Now}
}

// CreateStock stores a new item with its derived status.
func (s *StockService) CreateStock(ctx context.Context, in StockInput) (*StockWrite, error) {
	in = normalizeStock(in)
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	status := inventory.Status(in.CurrentStock, in.MinStock, in.ExpiryDate, s.now())
	item, err := s.store.CreateStockItem(ctx, database.CreateStockItemParams{
		ProductID:    in.ProductID,
		ProductName:  in.ProductName,
		Description:  in.Description,
		Category:     database.StockCategory(in.Category),
		CurrentStock: in.CurrentStock,
		MinStock:     in.MinStock,
		MaxStock:     in.MaxStock,
		Unit:         in.Unit,
		UnitCost:     money.ToNumeric(in.UnitCost),
		Supplier:     in.Supplier,
		ExpiryDate:   timestamptz(in.ExpiryDate),
		Status:       status,
	})
	if err != nil {
		if isUniqueViolation(err, productIDConstraint) {
			return nil, ErrDuplicateProductID
		}
		return nil, storageError("create stock item", err)
	}
	return &StockWrite{Item: item, BecameLow: inventory.NeedsAttention(status)}, nil
}

// UpdateStock applies patch to an item under a row lock and re-derives its
// status.
func (s *StockService) UpdateStock(ctx context.Context, id string, patch StockPatch) (*StockWrite, error) {
	sid, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, storageError("begin tx", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	current, err := store.GetStockItemForUpdate(ctx, sid)
	if err != nil {
		return nil, stockLookupError(err)
	}

	in := normalizeStock(applyPatch(stockInputFrom(current), patch))
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	status := inventory.Status(in.CurrentStock, in.MinStock, in.ExpiryDate, s.now())
	item, err := store.UpdateStockItem(ctx, database.UpdateStockItemParams{
		ID:           sid,
		ProductID:    in.ProductID,
		ProductName:  in.ProductName,
		Description:  in.Description,
		Category:     database.StockCategory(in.Category),
		CurrentStock: in.CurrentStock,
		MinStock:     in.MinStock,
		MaxStock:     in.MaxStock,
		Unit:         in.Unit,
		UnitCost:     money.ToNumeric(in.UnitCost),
		Supplier:     in.Supplier,
		ExpiryDate:   timestamptz(in.ExpiryDate),
		Status:       status,
	})
	if err != nil {
		if isUniqueViolation(err, productIDConstraint) {
			return nil, ErrDuplicateProductID
		}
		return nil, storageError("update stock item", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storageError("commit tx", err)
	}

	return &StockWrite{
		Item:      item,
		BecameLow: status != current.Status && inventory.NeedsAttention(status),
	}, nil
}

// GetStock returns one item.
func (s *StockService) GetStock(ctx context.Context, id string) (*database.StockItem, error) {
	sid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	item, err := s.store.GetStockItem(ctx, sid)
	if err != nil {
		return nil, stockLookupError(err)
	}
	return &item, nil
}

// ListStock returns a filtered page of items ordered by name.
func (s *StockService) ListStock(ctx context.Context, f StockFilter) (*StockPage, error) {
	count := database.CountStockItemsParams{}
	if f.Category != "" {
		if !validCategory(f.Category) {
			return nil, validationError(errors.New("category must be one of [coffee pastry equipment supplies]"))
		}
		count.Category = database.NullStockCategory{StockCategory: database.StockCategory(f.Category), Valid: true}
	}
	if f.Status != "" {
		if !validStockStatus(f.Status) {
			return nil, validationError(errors.New("status must be one of [available low_stock out_of_stock expired]"))
		}
		count.Status = database.NullStockStatus{StockStatus: database.StockStatus(f.Status), Valid: true}
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		count.Search = pgtype.Text{String: escapeLike(search), Valid: true}
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	switch {
	case limit < 1:
		limit = defaultStockPageSize
	case limit > maxStockPageSize:
		limit = maxStockPageSize
	}
	if maxPage := math.MaxInt32/limit + 1; page > maxPage {
		return nil, validationError(fmt.Errorf("page must be <= %d", maxPage))
	}

	total, err := s.store.CountStockItems(ctx, count)
	if err != nil {
		return nil, storageError("count stock items", err)
	}
	items, err := s.store.ListStockItems(ctx, database.ListStockItemsParams{
		Category: count.Category,
		Status:   count.Status,
		Search:   count.Search,
		Limit:    int32(limit),
		Offset:   int32((page - 1) * limit),
	})
	if err != nil {
		return nil, storageError("list stock items", err)
	}
	return &StockPage{Items: items, Page: page, Limit: limit, Total: total}, nil
}

// DeleteStock removes an item.
func (s *StockService) DeleteStock(ctx context.Context, id string) error {
	sid, err := ParseID(id)
	if err != nil {
		return err
	}
	n, err := s.store.DeleteStockItem(ctx, sid)
	if err != nil {
		return storageError("delete stock item", err)
	}
	if n == 0 {
		return ErrStockItemNotFound
	}
	return nil
}

// LowStock lists items that are low or out of stock.
func (s *StockService) LowStock(ctx context.Context) ([]database.StockItem, error) {
	items, err := s.store.ListLowStockItems(ctx)
	if err != nil {
		return nil, storageError("list low stock", err)
	}
	return items, nil
}

// Categories lists the categories currently in use.
func (s *StockService) Categories(ctx context.Context) ([]database.StockCategory, error) {
	cats, err := s.store.ListStockCategories(ctx)
	if err != nil {
		return nil, storageError("list stock categories", err)
	}
	return cats, nil
}

func stockLookupError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrStockItemNotFound
	}
	return storageError("get stock item", err)
}

func normalizeStock(in StockInput) StockInput {
	in.ProductID = strings.TrimSpace(in.ProductID)
	in.ProductName = strings.TrimSpace(in.ProductName)
	in.Unit = strings.TrimSpace(in.Unit)
	in.UnitCost = money.Round(in.UnitCost)
	return in
}

func stockInputFrom(item database.StockItem) StockInput {
	in := StockInput{
		ProductID:    item.ProductID,
		ProductName:  item.ProductName,
		Description:  item.Description,
		Category:     string(item.Category),
		CurrentStock: item.CurrentStock,
		MinStock:     item.MinStock,
		MaxStock:     item.MaxStock,
		Unit:         item.Unit,
		UnitCost:     money.FromNumeric(item.UnitCost),
		Supplier:     item.Supplier,
	}
	if item.ExpiryDate.Valid {
		t := item.ExpiryDate.Time
		in.ExpiryDate = &t
	}
	return in
}

func applyPatch(in StockInput, p StockPatch) StockInput {
	if p.ProductID != nil {
		in.ProductID = *p.ProductID
	}
	if p.ProductName != nil {
		in.ProductName = *p.ProductName
	}
	if p.Description != nil {
		in.Description = *p.Description
	}
	if p.Category != nil {
		in.Category = *p.Category
	}
	if p.CurrentStock != nil {
		in.CurrentStock = *p.CurrentStock
	}
	if p.MinStock != nil {
		in.MinStock = *p.MinStock
	}
	if p.MaxStock != nil {
		in.MaxStock = *p.MaxStock
	}
	if p.Unit != nil {
		in.Unit = *p.Unit
	}
	if p.UnitCost != nil {
		in.UnitCost = *p.UnitCost
	}
	if p.Supplier != nil {
		in.Supplier = *p.Supplier
	}
	if p.ExpiryDate != nil {
		in.ExpiryDate = p.ExpiryDate
	}
	if p.ClearExpiry {
		in.ExpiryDate = nil
	}
	return in
}

func timestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: t.UTC(), Valid: true}
}

func validCategory(s string) bool {
	switch database.StockCategory(s) {
	case database.StockCategoryCoffee, database.StockCategoryPastry,
		database.StockCategoryEquipment, database.StockCategorySupplies:
		return true
	}
	return false
}

func validStockStatus(s string) bool {
	switch database.StockStatus(s) {
	case database.StockStatusAvailable, database.StockStatusLowStock,
		database.StockStatusOutOfStock, database.StockStatusExpired:
		return true
	}
	return false
}

// escapeLike makes s match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
