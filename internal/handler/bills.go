package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brewline/coffee-pos/internal/database"
	"github.com/brewline/coffee-pos/internal/events"
	"github.com/brewline/coffee-pos/internal/middleware"
	"github.com/brewline/coffee-pos/internal/money"
	"github.com/brewline/coffee-pos/internal/service"
)

// BillServicer defines the service methods needed by bill handlers.
// Satisfied by *service.BillService.
type BillServicer interface {
	CreateFromOrder(ctx context.Context, orderID, cashier string) (*service.BillDetail, error)
	ApplyDiscount(ctx context.Context, id string, discount decimal.Decimal) (*service.BillDetail, error)
	SetPaymentMethod(ctx context.Context, id, method string) (*service.BillDetail, error)
	UpdatePaymentStatus(ctx context.Context, id, status, method string) (*service.BillDetail, error)
	DeleteBill(ctx context.Context, id string) error
	GetBill(ctx context.Context, id string) (*service.BillDetail, error)
	GetBillByNumber(ctx context.Context, number string) (*service.BillDetail, error)
	ListBills(ctx context.Context, f service.BillFilter) ([]service.BillDetail, error)
	ListBillsByOrder(ctx context.Context, orderID string) ([]service.BillDetail, error)
	Stats(ctx context.Context) (*service.BillStats, error)
}

// BillHandler handles bill endpoints.
type BillHandler struct {
	svc      BillServicer
	notifier Notifier
}

// NewBillHandler creates a new BillHandler. A nil notifier disables events.
func NewBillHandler(svc BillServicer, notifier Notifier) *BillHandler {
	return &BillHandler{svc: svc, notifier: notifierOrNop(notifier)}
}

// RegisterRoutes registers bill endpoints. Expected to be mounted at /api/bills.
func (h *BillHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/stats", h.Stats)
	r.Get("/number/{billNumber}", h.GetByNumber)
	r.Get("/order/{orderId}", h.ListByOrder)
	r.Post("/from-order/{orderId}", h.CreateFromOrder)
	r.Get("/{id}", h.Get)
	r.Put("/{id}/payment", h.UpdatePayment)
	r.Put("/{id}/method", h.SetMethod)
	r.Put("/{id}/discount", h.ApplyDiscount)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type createBillRequest struct {
	Cashier string `json:"cashier"`
}

type updatePaymentRequest struct {
	PaymentStatus string `json:"paymentStatus"`
	PaymentMethod string `json:"paymentMethod"`
}

type setMethodRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

// discountRequest takes discountAmount; discount is accepted as an alias.
type discountRequest struct {
	DiscountAmount *decimal.Decimal `json:"discountAmount"`
	Discount       *decimal.Decimal `json:"discount"`
}

func (r discountRequest) amount() *decimal.Decimal {
	if r.DiscountAmount != nil {
		return r.DiscountAmount
	}
	return r.Discount
}

type billResponse struct {
	ID            uuid.UUID          `json:"id"`
	BillNumber    string             `json:"billNumber"`
	OrderID       uuid.UUID          `json:"orderId"`
	CustomerName  string             `json:"customerName"`
	Items         []billItemResponse `json:"items"`
	Subtotal      json.Number        `json:"subtotal"`
	Tax           json.Number        `json:"tax"`
	Discount      json.Number        `json:"discount"`
	TotalAmount   json.Number        `json:"totalAmount"`
	PaymentMethod string             `json:"paymentMethod"`
	PaymentStatus string             `json:"paymentStatus"`
	BillDate      time.Time          `json:"billDate"`
	Cashier       string             `json:"cashier"`
}

type billItemResponse struct {
	ProductName string      `json:"productName"`
	Quantity    int32       `json:"quantity"`
	UnitPrice   json.Number `json:"unitPrice"`
	TotalPrice  json.Number `json:"totalPrice"`
}

type methodTotalResponse struct {
	Count  int64       `json:"count"`
	Amount json.Number `json:"amount"`
}

type billStatsResponse struct {
	Total             int64                          `json:"total"`
	Pending           int64                          `json:"pending"`
	Paid              int64                          `json:"paid"`
	Refunded          int64                          `json:"refunded"`
	TotalRevenue      json.Number                    `json:"totalRevenue"`
	TotalTax          json.Number                    `json:"totalTax"`
	TotalDiscounts    json.Number                    `json:"totalDiscounts"`
	AverageBillAmount json.Number                    `json:"averageBillAmount"`
	PaymentMethods    map[string]methodTotalResponse `json:"paymentMethods"`
}

// --- Handlers ---

// CreateFromOrder handles POST /api/bills/from-order/{orderId}. The body is
// optional; without a cashier the caller's name is recorded.
func (h *BillHandler) CreateFromOrder(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	cashier := strings.TrimSpace(req.Cashier)
	if cashier == "" {
		if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
			cashier = claims.Name
		}
	}

	result, err := h.svc.CreateFromOrder(r.Context(), chi.URLParam(r, "orderId"), cashier)
	if err != nil {
		writeServiceError(w, "create bill", err)
		return
	}

	resp := toBillResponse(result)
	h.notifier.Notify(r.Context(), events.New(events.BillCreated, resp))
	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /api/bills?paymentStatus=&limit=.
func (h *BillHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a number"})
		return
	}

	bills, err := h.svc.ListBills(r.Context(), service.BillFilter{
		PaymentStatus: r.URL.Query().Get("paymentStatus"),
		Limit:         limit,
	})
	if err != nil {
		writeServiceError(w, "list bills", err)
		return
	}
	writeJSON(w, http.StatusOK, toBillResponses(bills))
}

// ListByOrder handles GET /api/bills/order/{orderId}.
func (h *BillHandler) ListByOrder(w http.ResponseWriter, r *http.Request) {
	bills, err := h.svc.ListBillsByOrder(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		writeServiceError(w, "list bills by order", err)
		return
	}
	writeJSON(w, http.StatusOK, toBillResponses(bills))
}

// Get handles GET /api/bills/{id}.
func (h *BillHandler) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetBill(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "get bill", err)
		return
	}
	writeJSON(w, http.StatusOK, toBillResponse(result))
}

// GetByNumber handles GET /api/bills/number/{billNumber}.
func (h *BillHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetBillByNumber(r.Context(), chi.URLParam(r, "billNumber"))
	if err != nil {
		writeServiceError(w, "get bill by number", err)
		return
	}
	writeJSON(w, http.StatusOK, toBillResponse(result))
}

// UpdatePayment handles PUT /api/bills/{id}/payment.
func (h *BillHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	var req updatePaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.PaymentStatus == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "paymentStatus is required"})
		return
	}

	result, err := h.svc.UpdatePaymentStatus(r.Context(), chi.URLParam(r, "id"), req.PaymentStatus, req.PaymentMethod)
	if err != nil {
		writeServiceError(w, "update bill payment", err)
		return
	}
	h.respondUpdated(w, r, result)
}

// SetMethod handles PUT /api/bills/{id}/method.
func (h *BillHandler) SetMethod(w http.ResponseWriter, r *http.Request) {
	var req setMethodRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.PaymentMethod == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "paymentMethod is required"})
		return
	}

	result, err := h.svc.SetPaymentMethod(r.Context(), chi.URLParam(r, "id"), req.PaymentMethod)
	if err != nil {
		writeServiceError(w, "set bill payment method", err)
		return
	}
	h.respondUpdated(w, r, result)
}

// ApplyDiscount handles PUT /api/bills/{id}/discount.
func (h *BillHandler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	var req discountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	discount := req.amount()
	if discount == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "discountAmount is required"})
		return
	}

	result, err := h.svc.ApplyDiscount(r.Context(), chi.URLParam(r, "id"), *discount)
	if err != nil {
		writeServiceError(w, "apply bill discount", err)
		return
	}
	h.respondUpdated(w, r, result)
}

// Delete handles DELETE /api/bills/{id}. Only unpaid bills can go.
func (h *BillHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteBill(r.Context(), id); err != nil {
		writeServiceError(w, "delete bill", err)
		return
	}

	h.notifier.Notify(r.Context(), events.New(events.BillDeleted, map[string]string{"id": id}))
	writeJSON(w, http.StatusOK, map[string]string{"message": "bill deleted"})
}

// Stats handles GET /api/bills/stats.
func (h *BillHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeServiceError(w, "bill stats", err)
		return
	}

	methods := make(map[string]methodTotalResponse, len(stats.PaymentMethods))
	for name, m := range stats.PaymentMethods {
		if name == "" {
			name = "unknown"
		}
		methods[name] = methodTotalResponse{Count: m.Count, Amount: money.JSON(m.Amount)}
	}

	writeJSON(w, http.StatusOK, billStatsResponse{
		Total:             stats.Total,
		Pending:           stats.Pending,
		Paid:              stats.Paid,
		Refunded:          stats.Refunded,
		TotalRevenue:      money.JSON(stats.TotalRevenue),
		TotalTax:          money.JSON(stats.TotalTax),
		TotalDiscounts:    money.JSON(stats.TotalDiscounts),
		AverageBillAmount: money.JSON(stats.AverageBillAmount),
		PaymentMethods:    methods,
	})
}

// --- Helpers ---

func (h *BillHandler) respondUpdated(w http.ResponseWriter, r *http.Request, result *service.BillDetail) {
	resp := toBillResponse(result)
	h.notifier.Notify(r.Context(), events.New(events.BillUpdated, resp))
	writeJSON(w, http.StatusOK, resp)
}

func toBillResponses(bills []service.BillDetail) []billResponse {
	resp := make([]billResponse, len(bills))
	for i := range bills {
		resp[i] = toBillResponse(&bills[i])
	}
	return resp
}

func toBillResponse(d *service.BillDetail) billResponse {
	b := d.Bill
	resp := billResponse{
		ID:            b.ID,
		BillNumber:    b.BillNumber,
		OrderID:       b.OrderID,
		CustomerName:  b.CustomerName,
		Subtotal:      money.NumericJSON(b.Subtotal),
		Tax:           money.NumericJSON(b.Tax),
		Discount:      money.NumericJSON(b.Discount),
		TotalAmount:   money.NumericJSON(b.TotalAmount),
		PaymentStatus: string(b.PaymentStatus),
		BillDate:      b.BillDate.UTC(),
		Cashier:       b.Cashier,
		Items:         make([]billItemResponse, len(d.Items)),
	}
	if b.PaymentMethod.Valid {
		resp.PaymentMethod = string(b.PaymentMethod.PaymentMethod)
	}
	for i, it := range d.Items {
		resp.Items[i] = toBillItemResponse(it)
	}
	return resp
}

func toBillItemResponse(it database.BillItem) billItemResponse {
	return billItemResponse{
		ProductName: it.ProductName,
		Quantity:    it.Quantity,
		UnitPrice:   money.NumericJSON(it.UnitPrice),
		TotalPrice:  money.NumericJSON(it.TotalPrice),
	}
}
