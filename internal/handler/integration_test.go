//go:build integration

package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	"github.com/brewline/coffee-pos/internal/config"
	"github.com/brewline/coffee-pos/internal/database"
	"github.com/brewline/coffee-pos/internal/events"
	"github.com/brewline/coffee-pos/internal/router"
	"github.com/brewline/coffee-pos/internal/ws"
)

// TestIntegrationFlow runs an order through billing and payment against a
// real PostgreSQL database, then exercises stock alerts.
func TestIntegrationFlow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connStr, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	require.NoError(t, database.Migrate(connStr, "../../migrations"))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	cfg := &config.Config{
		Port:           "8081",
		DatabaseURL:    connStr,
		JWTSecret:      "integration-test-secret",
		AllowedOrigins: []string{"*"},
	}

	hub := ws.NewHub()
	go hub.Run(ctx) //nolint:errcheck

	notifier := events.NewNotifier(events.NewHubPublisher(hub))
	server := httptest.NewServer(router.New(cfg, pool, hub, notifier))
	defer server.Close()

	seedStaff(t, ctx, pool, "manager@test.com", "password123", database.StaffRoleMANAGER)
	seedStaff(t, ctx, pool, "barista@test.com", "password123", database.StaffRoleBARISTA)

	token := login(t, server, "Manager@Test.com ", "password123")
	baristaToken := login(t, server, "barista@test.com", "password123")

	// --- Order ---
	status, order := apiCall(t, server, http.MethodPost, "/api/orders", token, map[string]any{
		"customerName": "Sam",
		"items": []map[string]any{
			{"productName": "Latte", "quantity": 2, "price": "4.50", "customizations": []string{"oat milk"}},
			{"productName": "Muffin", "quantity": 1, "price": "3.00"},
		},
	})
	require.Equal(t, http.StatusCreated, status, order)
	assert.Equal(t, json.Number("12.00"), order["totalAmount"])
	assert.Equal(t, json.Number("11"), order["estimatedTime"])
	assert.Equal(t, "pending", order["status"])
	orderID := order["id"].(string)

	status, _ = apiCall(t, server, http.MethodPost, "/api/bills/from-order/"+orderID, token, nil)
	assert.Equal(t, http.StatusConflict, status, "pending order cannot be billed")

	status, order = apiCall(t, server, http.MethodPut, "/api/orders/"+orderID+"/status", token, map[string]any{"status": "ready"})
	require.Equal(t, http.StatusOK, status, order)
	assert.Equal(t, "ready", order["status"])

	status, byNumber := apiCall(t, server, http.MethodGet, "/api/orders/number/"+order["orderNumber"].(string), token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, orderID, byNumber["id"])

	// --- Bill ---
	status, bill := apiCall(t, server, http.MethodPost, "/api/bills/from-order/"+orderID, token, nil)
	require.Equal(t, http.StatusCreated, status, bill)
	assert.Equal(t, json.Number("12.00"), bill["subtotal"])
	assert.Equal(t, json.Number("2.40"), bill["tax"])
	assert.Equal(t, json.Number("14.40"), bill["totalAmount"])
	assert.Equal(t, "pending", bill["paymentStatus"])
	assert.Equal(t, "Shop Manager", bill["cashier"])
	billID := bill["id"].(string)

	status, bill = apiCall(t, server, http.MethodPut, "/api/bills/"+billID+"/discount", token, map[string]any{"discountAmount": 2})
	require.Equal(t, http.StatusOK, status, bill)
	assert.Equal(t, json.Number("2.00"), bill["tax"])
	assert.Equal(t, json.Number("12.00"), bill["totalAmount"])

	status, bill = apiCall(t, server, http.MethodPut, "/api/bills/"+billID+"/payment", token, map[string]any{
		"paymentStatus": "paid",
		"paymentMethod": "card",
	})
	require.Equal(t, http.StatusOK, status, bill)
	assert.Equal(t, "paid", bill["paymentStatus"])
	assert.Equal(t, "card", bill["paymentMethod"])

	status, _ = apiCall(t, server, http.MethodDelete, "/api/bills/"+billID, token, nil)
	assert.Equal(t, http.StatusConflict, status, "paid bill cannot be deleted")

	status, _ = apiCall(t, server, http.MethodDelete, "/api/orders/"+orderID, token, nil)
	assert.Equal(t, http.StatusConflict, status, "ready order cannot be deleted")

	status, stats := apiCall(t, server, http.MethodGet, "/api/bills/stats", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, json.Number("12.00"), stats["totalRevenue"])

	// --- Stock ---
	stockBody := map[string]any{
		"productId":    "BEAN-001",
		"productName":  "House Espresso Beans",
		"category":     "coffee",
		"currentStock": 40,
		"minStock":     10,
		"maxStock":     100,
		"unit":         "kg",
		"unitCost":     "18.50",
	}

	status, _ = apiCall(t, server, http.MethodPost, "/api/stock", baristaToken, stockBody)
	assert.Equal(t, http.StatusForbidden, status, "barista cannot create stock")

	status, item := apiCall(t, server, http.MethodPost, "/api/stock", token, stockBody)
	require.Equal(t, http.StatusCreated, status, item)
	assert.Equal(t, "available", item["status"])
	itemID := item["id"].(string)

	status, _ = apiCall(t, server, http.MethodPost, "/api/stock", token, stockBody)
	assert.Equal(t, http.StatusConflict, status, "duplicate product id")

	status, item = apiCall(t, server, http.MethodPut, "/api/stock/"+itemID, token, map[string]any{"currentStock": 5})
	require.Equal(t, http.StatusOK, status, item)
	assert.Equal(t, "low_stock", item["status"])

	status, alerts := apiCallArray(t, server, "/api/stock/alerts/low-stock", baristaToken)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, alerts, 1)
	assert.Equal(t, "BEAN-001", alerts[0]["productId"])
}

func setupPostgresContainer(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("coffee_pos_test"),
		tcpostgres.WithUsername("pos"),
		tcpostgres.WithPassword("pos"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("get connection string: %v", err)
	}

	cleanup := func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("terminate container: %v", err)
		}
	}
	return connStr, cleanup
}

func seedStaff(t *testing.T, ctx context.Context, pool *pgxpool.Pool, email, password string, role database.StaffRole) {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	name := "Shop Manager"
	if role == database.StaffRoleBARISTA {
		name = "Alex Barista"
	}
	_, err = database.New(pool).CreateStaff(ctx, database.CreateStaffParams{
		Email:        email,
		FullName:     name,
		PasswordHash: string(hashed),
		Role:         role,
	})
	require.NoError(t, err)
}

func login(t *testing.T, server *httptest.Server, email, password string) string {
	t.Helper()
	status, resp := apiCall(t, server, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status, resp)
	token, ok := resp["accessToken"].(string)
	require.True(t, ok && token != "", "no accessToken in response: %+v", resp)
	return token
}

func sendRequest(t *testing.T, server *httptest.Server, method, path, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func apiCall(t *testing.T, server *httptest.Server, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	resp := sendRequest(t, server, method, path, token, body)
	defer resp.Body.Close()

	out := map[string]any{}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	_ = dec.Decode(&out)
	return resp.StatusCode, out
}

func apiCallArray(t *testing.T, server *httptest.Server, path, token string) (int, []map[string]any) {
	t.Helper()
	resp := sendRequest(t, server, http.MethodGet, path, token, nil)
	defer resp.Body.Close()

	var out []map[string]any
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	require.NoError(t, dec.Decode(&out))
	return resp.StatusCode, out
}
