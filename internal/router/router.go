package router

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brewline/coffee-pos/internal/config"
	"github.com/brewline/coffee-pos/internal/database"
	"github.com/brewline/coffee-pos/internal/handler"
	mw "github.com/brewline/coffee-pos/internal/middleware"
	"github.com/brewline/coffee-pos/internal/numbering"
	"github.com/brewline/coffee-pos/internal/service"
	"github.com/brewline/coffee-pos/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// notifier may be nil, in which case no events are emitted.
func New(cfg *config.Config, pool *pgxpool.Pool, hub *ws.Hub, notifier handler.Notifier) chi.Router {
	r := chi.NewRouter()
	queries := database.New(pool)

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/{topic}", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	r.Route("/api", func(r chi.Router) {
		// Public routes
		handler.NewHealthHandler(pool).RegisterRoutes(r)
		handler.NewAuthHandler(queries, cfg.JWTSecret).RegisterRoutes(r)

		// Protected routes (require authentication)
		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate(cfg.JWTSecret))

			orderService := service.NewOrderService(pool, queries,
				func(db database.DBTX) service.OrderStore { return database.New(db) },
				numbering.New("ORD"),
			)
			r.Route("/orders", handler.NewOrderHandler(orderService, notifier).RegisterRoutes)

			billService := service.NewBillService(pool, queries,
				func(db database.DBTX) service.BillStore { return database.New(db) },
				numbering.New("BILL"),
			)
			r.Route("/bills", handler.NewBillHandler(billService, notifier).RegisterRoutes)

			stockService := service.NewStockService(pool, queries,
				func(db database.DBTX) service.StockStore { return database.New(db) },
			)
			r.Route("/stock", handler.NewStockHandler(stockService, notifier).RegisterRoutes)
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}
