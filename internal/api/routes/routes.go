package routes

import (
	"net/http"
	"strings"

	"github.com/jaredmoss/exchange-core/internal/api/handlers"
	"github.com/jaredmoss/exchange-core/internal/api/middleware"
)

// SetupRoutes configures all API routes with middleware.
func SetupRoutes(dh *handlers.DispatchHolder) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/health", handlers.HealthHandler)

	mux.HandleFunc("/api/v1/accounts", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			dh.CreateAccountHandler(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/v1/accounts/summary", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			dh.AccountSummaryHandler(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/v1/orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			dh.SubmitOrderHandler(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/v1/orders/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			dh.CancelOrderHandler(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Read-only market info endpoints (spec.md §4.7 "info" request
	// kind): /api/v1/market/{symbol}/{price|show|history}.
	mux.HandleFunc("/api/v1/market/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		switch {
		case strings.HasSuffix(r.URL.Path, "/price"):
			dh.PriceHandler(w, r)
		case strings.HasSuffix(r.URL.Path, "/show"):
			dh.ShowMarketHandler(w, r)
		case strings.HasSuffix(r.URL.Path, "/history"):
			dh.MarketHistoryHandler(w, r)
		default:
			http.NotFound(w, r)
		}
	})

	// Apply middleware (order matters: Logging -> Recovery -> Handler)
	handler := middleware.Recovery(mux)
	handler = middleware.Logging(handler)

	return handler
}
