package database

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusCompleted OrderStatus = "completed"
)

func (e *OrderStatus) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = OrderStatus(s)
	case string:
		*e = OrderStatus(s)
	default:
		return fmt.Errorf("unsupported scan type for OrderStatus: %T", src)
	}
	return nil
}

type NullOrderStatus struct {
	OrderStatus OrderStatus
	Valid       bool // Valid is true if OrderStatus is not NULL
}

// Scan implements the Scanner interface.
func (ns *NullOrderStatus) Scan(value interface{}) error {
	if value == nil {
		ns.OrderStatus, ns.Valid = "", false
		return nil
	}
	ns.Valid = true
	return ns.OrderStatus.Scan(value)
}

// Value implements the driver Valuer interface.
func (ns NullOrderStatus) Value() (driver.Value, error) {
	if !ns.Valid {
		return nil, nil
	}
	return string(ns.OrderStatus), nil
}

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodMobile PaymentMethod = "mobile"
	PaymentMethodCheck  PaymentMethod = "check"
)

func (e *PaymentMethod) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = PaymentMethod(s)
	case string:
		*e = PaymentMethod(s)
	default:
		return fmt.Errorf("unsupported scan type for PaymentMethod: %T", src)
	}
	return nil
}

type NullPaymentMethod struct {
	PaymentMethod PaymentMethod
	Valid         bool // Valid is true if PaymentMethod is not NULL
}

// Scan implements the Scanner interface.
func (ns *NullPaymentMethod) Scan(value interface{}) error {
	if value == nil {
		ns.PaymentMethod, ns.Valid = "", false
		return nil
	}
	ns.Valid = true
	return ns.PaymentMethod.Scan(value)
}

// Value implements the driver Valuer interface.
func (ns NullPaymentMethod) Value() (driver.Value, error) {
	if !ns.Valid {
		return nil, nil
	}
	return string(ns.PaymentMethod), nil
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

func (e *PaymentStatus) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = PaymentStatus(s)
	case string:
		*e = PaymentStatus(s)
	default:
		return fmt.Errorf("unsupported scan type for PaymentStatus: %T", src)
	}
	return nil
}

type NullPaymentStatus struct {
	PaymentStatus PaymentStatus
	Valid         bool // Valid is true if PaymentStatus is not NULL
}

// Scan implements the Scanner interface.
func (ns *NullPaymentStatus) Scan(value interface{}) error {
	if value == nil {
		ns.PaymentStatus, ns.Valid = "", false
		return nil
	}
	ns.Valid = true
	return ns.PaymentStatus.Scan(value)
}

// Value implements the driver Valuer interface.
func (ns NullPaymentStatus) Value() (driver.Value, error) {
	if !ns.Valid {
		return nil, nil
	}
	return string(ns.PaymentStatus), nil
}

type StaffRole string

const (
	StaffRoleBARISTA StaffRole = "BARISTA"
	StaffRoleCASHIER StaffRole = "CASHIER"
	StaffRoleMANAGER StaffRole = "MANAGER"
)

func (e *StaffRole) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = StaffRole(s)
	case string:
		*e = StaffRole(s)
	default:
		return fmt.Errorf("unsupported scan type for StaffRole: %T", src)
	}
	return nil
}

type StockCategory string

const (
	StockCategoryCoffee    StockCategory = "coffee"
	StockCategoryPastry    StockCategory = "pastry"
	StockCategoryEquipment StockCategory = "equipment"
	StockCategorySupplies  StockCategory = "supplies"
)

func (e *StockCategory) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = StockCategory(s)
	case string:
		*e = StockCategory(s)
	default:
		return fmt.Errorf("unsupported scan type for StockCategory: %T", src)
	}
	return nil
}

type NullStockCategory struct {
	StockCategory StockCategory
	Valid         bool // Valid is true if StockCategory is not NULL
}

// Scan implements the Scanner interface.
func (ns *NullStockCategory) Scan(value interface{}) error {
	if value == nil {
		ns.StockCategory, ns.Valid = "", false
		return nil
	}
	ns.Valid = true
	return ns.StockCategory.Scan(value)
}

// Value implements the driver Valuer interface.
func (ns NullStockCategory) Value() (driver.Value, error) {
	if !ns.Valid {
		return nil, nil
	}
	return string(ns.StockCategory), nil
}

type StockStatus string

const (
	StockStatusAvailable  StockStatus = "available"
	StockStatusLowStock   StockStatus = "low_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
	StockStatusExpired    StockStatus = "expired"
)

func (e *StockStatus) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = StockStatus(s)
	case string:
		*e = StockStatus(s)
	default:
		return fmt.Errorf("unsupported scan type for StockStatus: %T", src)
	}
	return nil
}

type NullStockStatus struct {
	StockStatus StockStatus
	Valid       bool // Valid is true if StockStatus is not NULL
}

// Scan implements the Scanner interface.
func (ns *NullStockStatus) Scan(value interface{}) error {
	if value == nil {
		ns.StockStatus, ns.Valid = "", false
		return nil
	}
	ns.Valid = true
	return ns.StockStatus.Scan(value)
}

// Value implements the driver Valuer interface.
func (ns NullStockStatus) Value() (driver.Value, error) {
	if !ns.Valid {
		return nil, nil
	}
	return string(ns.StockStatus), nil
}

type Bill struct {
	ID            uuid.UUID
	BillNumber    string
	OrderID       uuid.UUID
	CustomerName  string
	Subtotal      pgtype.Numeric
	Discount      pgtype.Numeric
	Tax           pgtype.Numeric
	TotalAmount   pgtype.Numeric
	PaymentMethod NullPaymentMethod
	PaymentStatus PaymentStatus
	BillDate      time.Time
	Cashier       string
}

type BillItem struct {
	ID          uuid.UUID
	BillID      uuid.UUID
	Position    int32
	ProductName string
	Quantity    int32
	UnitPrice   pgtype.Numeric
	TotalPrice  pgtype.Numeric
}

type Order struct {
	ID            uuid.UUID
	OrderNumber   string
	CustomerName  string
	TotalAmount   pgtype.Numeric
	Status        OrderStatus
	OrderDate     time.Time
	EstimatedTime int32
	Notes         string
}

type OrderItem struct {
	ID             uuid.UUID
	OrderID        uuid.UUID
	Position       int32
	ProductName    string
	Quantity       int32
	Price          pgtype.Numeric
	Customizations []string
}

type Staff struct {
	ID           uuid.UUID
	Email        string
	FullName     string
	PasswordHash string
	Role         StaffRole
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type StockItem struct {
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
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
