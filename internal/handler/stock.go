package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brewline/coffee-pos/internal/database"
	"github.com/brewline/coffee-pos/internal/enum"
	"github.com/brewline/coffee-pos/internal/events"
	"github.com/brewline/coffee-pos/internal/inventory"
	"github.com/brewline/coffee-pos/internal/middleware"
	"github.com/brewline/coffee-pos/internal/money"
	"github.com/brewline/coffee-pos/internal/service"
)

// StockServicer defines the service methods needed by stock handlers.
// Satisfied by *service.StockService.
type StockServicer interface {
	CreateStock(ctx context.Context, in service.StockInput) (*service.StockWrite, error)
	UpdateStock(ctx context.Context, id string, patch service.StockPatch) (*service.StockWrite, error)
	GetStock(ctx context.Context, id string) (*database.StockItem, error)
	ListStock(ctx context.Context, f service.StockFilter) (*service.StockPage, error)
	DeleteStock(ctx context.Context, id string) error
	LowStock(ctx context.Context) ([]database.StockItem, error)
	Categories(ctx context.Context) ([]database.StockCategory, error)
}

// StockHandler handles inventory endpoints.
type StockHandler struct {
	svc      StockServicer
	notifier Notifier
}

// NewStockHandler creates a new StockHandler. A nil notifier disables events.
func NewStockHandler(svc StockServicer, notifier Notifier) *StockHandler {
	return &StockHandler{svc: svc, notifier: notifierOrNop(notifier)}
}

// RegisterRoutes registers stock endpoints. Expected to be mounted at
// /api/stock behind Authenticate; writes additionally need MANAGER.
func (h *StockHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/alerts/low-stock", h.LowStock)
	r.Get("/categories", h.Categories)
	r.Get("/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(enum.RoleManager))
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// --- Response types ---

type stockResponse struct {
	ID              uuid.UUID   `json:"id"`
	ProductID       string      `json:"productId"`
	ProductName     string      `json:"productName"`
	Description     string      `json:"description"`
	Category        string      `json:"category"`
	CurrentStock    int32       `json:"currentStock"`
	MinStock        int32       `json:"minStock"`
	MaxStock        int32       `json:"maxStock"`
	Unit            string      `json:"unit"`
	UnitCost        json.Number `json:"unitCost"`
	Supplier        string      `json:"supplier"`
	ExpiryDate      *time.Time  `json:"expiryDate"`
	Status          string      `json:"status"`
	StockLevel      string      `json:"stockLevel"`
	StockPercentage int         `json:"stockPercentage"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

type paginationResponse struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

type stockListResponse struct {
	Items      []stockResponse    `json:"items"`
	Pagination paginationResponse `json:"pagination"`
}

// --- Handlers ---

// List handles GET /api/stock?category=&status=&search=&page=&limit=.
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	page, ok := queryInt(r, "page")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "page must be a number"})
		return
	}
	limit, ok := queryInt(r, "limit")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a number"})
		return
	}

	q := r.URL.Query()
	result, err := h.svc.ListStock(r.Context(), service.StockFilter{
		Category: q.Get("category"),
		Status:   q.Get("status"),
		Search:   q.Get("search"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		writeServiceError(w, "list stock", err)
		return
	}

	pages := int64(0)
	if result.Limit > 0 {
		pages = (result.Total + int64(result.Limit) - 1) / int64(result.Limit)
	}
	writeJSON(w, http.StatusOK, stockListResponse{
		Items: toStockResponses(result.Items),
		Pagination: paginationResponse{
			Page:  result.Page,
			Limit: result.Limit,
			Total: result.Total,
			Pages: pages,
		},
	})
}

// Get handles GET /api/stock/{id}.
func (h *StockHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.GetStock(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "get stock item", err)
		return
	}
	writeJSON(w, http.StatusOK, toStockResponse(*item))
}

// Create handles POST /api/stock.
func (h *StockHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.StockInput
	if !decodeJSON(w, r, &in) {
		return
	}

	result, err := h.svc.CreateStock(r.Context(), in)
	if err != nil {
		writeServiceError(w, "create stock item", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.afterWrite(r.Context(), result))
}

// Update handles PUT /api/stock/{id}. Absent fields keep their values.
func (h *StockHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch service.StockPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	result, err := h.svc.UpdateStock(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, "update stock item", err)
		return
	}
	writeJSON(w, http.StatusOK, h.afterWrite(r.Context(), result))
}

// Delete handles DELETE /api/stock/{id}.
func (h *StockHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteStock(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, "delete stock item", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "stock item deleted"})
}

// LowStock handles GET /api/stock/alerts/low-stock.
func (h *StockHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.LowStock(r.Context())
	if err != nil {
		writeServiceError(w, "low stock", err)
		return
	}
	writeJSON(w, http.StatusOK, toStockResponses(items))
}

// Categories handles GET /api/stock/categories.
func (h *StockHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.Categories(r.Context())
	if err != nil {
		writeServiceError(w, "stock categories", err)
		return
	}
	resp := make([]string, len(cats))
	for i, c := range cats {
		resp[i] = string(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

// afterWrite emits stock.low when the write moved the item into an alert
// state and returns the response view.
func (h *StockHandler) afterWrite(ctx context.Context, result *service.StockWrite) stockResponse {
	resp := toStockResponse(result.Item)
	if result.BecameLow {
		h.notifier.Notify(ctx, events.New(events.StockLow, resp))
	}
	return resp
}

func toStockResponses(items []database.StockItem) []stockResponse {
	resp := make([]stockResponse, len(items))
	for i, it := range items {
		resp[i] = toStockResponse(it)
	}
	return resp
}

func toStockResponse(it database.StockItem) stockResponse {
	resp := stockResponse{
		ID:              it.ID,
		ProductID:       it.ProductID,
		ProductName:     it.ProductName,
		Description:     it.Description,
		Category:        string(it.Category),
		CurrentStock:    it.CurrentStock,
		MinStock:        it.MinStock,
		MaxStock:        it.MaxStock,
		Unit:            it.Unit,
		UnitCost:        money.NumericJSON(it.UnitCost),
		Supplier:        it.Supplier,
		Status:          string(it.Status),
		StockLevel:      inventory.Level(it.CurrentStock, it.MinStock, it.MaxStock),
		StockPercentage: inventory.Percentage(it.CurrentStock, it.MaxStock),
		CreatedAt:       it.CreatedAt,
		UpdatedAt:       it.UpdatedAt,
	}
	if it.ExpiryDate.Valid {
		t := it.ExpiryDate.Time.UTC()
		resp.ExpiryDate = &t
	}
	return resp
}
