package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brewline/coffee-pos/internal/database"
	"github.com/brewline/coffee-pos/internal/events"
	"github.com/brewline/coffee-pos/internal/money"
	"github.com/brewline/coffee-pos/internal/service"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.OrderDetail, error)
	GetOrder(ctx context.Context, id string) (*service.OrderDetail, error)
	GetOrderByNumber(ctx context.Context, number string) (*service.OrderDetail, error)
	ListOrders(ctx context.Context, f service.OrderFilter) ([]service.OrderDetail, error)
	UpdateStatus(ctx context.Context, id, status string) (*service.OrderDetail, error)
	DeleteOrder(ctx context.Context, id string) error
	Stats(ctx context.Context) (*service.OrderStats, error)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc      OrderServicer
	notifier Notifier
}

// NewOrderHandler creates a new OrderHandler. A nil notifier disables events.
func NewOrderHandler(svc OrderServicer, notifier Notifier) *OrderHandler {
	return &OrderHandler{svc: svc, notifier: notifierOrNop(notifier)}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted at /api/orders.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/stats", h.Stats)
	r.Get("/number/{orderNumber}", h.GetByNumber)
	r.Get("/{id}", h.Get)
	r.Put("/{id}/status", h.UpdateStatus)
	r.Delete("/{id}", h.Delete)
}

// --- Response types ---

type orderResponse struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"orderNumber"`
	CustomerName  string              `json:"customerName"`
	Items         []orderItemResponse `json:"items"`
	TotalAmount   json.Number         `json:"totalAmount"`
	Status        string              `json:"status"`
	OrderDate     time.Time           `json:"orderDate"`
	EstimatedTime int32               `json:"estimatedTime"`
	Notes         string              `json:"notes"`
}

type orderItemResponse struct {
	ProductName    string      `json:"productName"`
	Quantity       int32       `json:"quantity"`
	Price          json.Number `json:"price"`
	Customizations []string    `json:"customizations"`
}

type orderStatsResponse struct {
	Total             int64       `json:"total"`
	Pending           int64       `json:"pending"`
	Preparing         int64       `json:"preparing"`
	Ready             int64       `json:"ready"`
	Completed         int64       `json:"completed"`
	TotalRevenue      json.Number `json:"totalRevenue"`
	AverageOrderValue json.Number `json:"averageOrderValue"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// --- Handlers ---

// Create handles POST /api/orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.CreateOrder(r.Context(), req)
	if err != nil {
		writeServiceError(w, "create order", err)
		return
	}

	resp := toOrderResponse(result)
	h.notifier.Notify(r.Context(), events.New(events.OrderCreated, resp))
	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /api/orders?status=&limit=.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a number"})
		return
	}

	orders, err := h.svc.ListOrders(r.Context(), service.OrderFilter{
		Status: r.URL.Query().Get("status"),
		Limit:  limit,
	})
	if err != nil {
		writeServiceError(w, "list orders", err)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i := range orders {
		resp[i] = toOrderResponse(&orders[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "get order", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(result))
}

// GetByNumber handles GET /api/orders/number/{orderNumber}.
func (h *OrderHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetOrderByNumber(r.Context(), chi.URLParam(r, "orderNumber"))
	if err != nil {
		writeServiceError(w, "get order by number", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(result))
}

// UpdateStatus handles PUT /api/orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	result, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeServiceError(w, "update order status", err)
		return
	}

	resp := toOrderResponse(result)
	h.notifier.Notify(r.Context(), events.New(events.OrderUpdated, resp))
	writeJSON(w, http.StatusOK, resp)
}

// Delete handles DELETE /api/orders/{id}. Only pending orders can go.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteOrder(r.Context(), id); err != nil {
		writeServiceError(w, "delete order", err)
		return
	}

	h.notifier.Notify(r.Context(), events.New(events.OrderDeleted, map[string]string{"id": id}))
	writeJSON(w, http.StatusOK, map[string]string{"message": "order deleted"})
}

// Stats handles GET /api/orders/stats.
func (h *OrderHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeServiceError(w, "order stats", err)
		return
	}
	writeJSON(w, http.StatusOK, orderStatsResponse{
		Total:             stats.Total,
		Pending:           stats.Pending,
		Preparing:         stats.Preparing,
		Ready:             stats.Ready,
		Completed:         stats.Completed,
		TotalRevenue:      money.JSON(stats.TotalRevenue),
		AverageOrderValue: money.JSON(stats.AverageOrderValue),
	})
}

// --- Helpers ---

func toOrderResponse(d *service.OrderDetail) orderResponse {
	o := d.Order
	resp := orderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerName:  o.CustomerName,
		TotalAmount:   money.NumericJSON(o.TotalAmount),
		Status:        string(o.Status),
		OrderDate:     o.OrderDate.UTC(),
		EstimatedTime: o.EstimatedTime,
		Notes:         o.Notes,
		Items:         make([]orderItemResponse, len(d.Items)),
	}
	for i, it := range d.Items {
		resp.Items[i] = toOrderItemResponse(it)
	}
	return resp
}

func toOrderItemResponse(it database.OrderItem) orderItemResponse {
	customizations := it.Customizations
	if customizations == nil {
		customizations = []string{}
	}
	return orderItemResponse{
		ProductName:    it.ProductName,
		Quantity:       it.Quantity,
		Price:          money.NumericJSON(it.Price),
		Customizations: customizations,
	}
}
