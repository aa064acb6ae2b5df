// Package http exposes the counter dashboard as a JSON API.
package http

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"balcao/internal/log"
	"balcao/internal/services"
)

// Server wires the business services into HTTP routes.
type Server struct {
	http.Server

	catalog  *services.CatalogService
	stock    *services.StockService
	checkout *services.CheckoutService
	fiado    *services.FiadoService
	report   *services.ReportService

	// One shared cart per register instance.
	cart *services.Cart

	rateLimiter  *rateLimiter
	logger       *log.Logger
	shutdownOnce sync.Once
}

// Deps collects the services the server routes to.
type Deps struct {
	Catalog  *services.CatalogService
	Stock    *services.StockService
	Checkout *services.CheckoutService
	Fiado    *services.FiadoService
	Report   *services.ReportService
}

// NewServer configures routes and returns a ready-to-run server.
func NewServer(addr string, deps Deps, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		catalog:     deps.Catalog,
		stock:       deps.Stock,
		checkout:    deps.Checkout,
		fiado:       deps.Fiado,
		report:      deps.Report,
		cart:        services.NewCart(),
		rateLimiter: newRateLimiter(),
		logger:      logger.WithComponent(log.ComponentHTTP),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/products", s.handleListProducts)
	mux.HandleFunc("POST /api/products", s.handleSaveProduct)
	mux.HandleFunc("GET /api/suppliers", s.handleListSuppliers)
	mux.HandleFunc("POST /api/suppliers", s.handleSaveSupplier)
	mux.HandleFunc("GET /api/config", s.handleConfig)

	mux.HandleFunc("GET /api/stock", s.handleStockLevels)
	mux.HandleFunc("GET /api/stock/{id}", s.handleStockOne)
	mux.HandleFunc("POST /api/purchases", s.handleRecordPurchase)
	mux.HandleFunc("POST /api/adjustments", s.handleRegisterAdjustment)

	mux.HandleFunc("GET /api/cart", s.handleCartView)
	mux.HandleFunc("POST /api/cart/lines", s.handleCartAddLine)
	mux.HandleFunc("PUT /api/cart/lines/{id}", s.handleCartUpdateQty)
	mux.HandleFunc("DELETE /api/cart/lines/{id}", s.handleCartRemoveLine)
	mux.HandleFunc("DELETE /api/cart", s.handleCartClear)
	mux.HandleFunc("POST /api/checkout", s.handleCheckout)

	mux.HandleFunc("GET /api/fiado", s.handleFiadoBalances)
	mux.HandleFunc("GET /api/fiado/{customer}", s.handleFiadoStatement)
	mux.HandleFunc("POST /api/fiado/payments", s.handleFiadoPayment)

	mux.HandleFunc("GET /api/reports/cash-closing", s.handleCashClosing)
	mux.HandleFunc("GET /api/reports/cash-closing.csv", s.handleClosingCSV)
	mux.HandleFunc("GET /api/reports/sales.csv", s.handleSalesCSV)
	mux.HandleFunc("GET /api/reports/sales.xlsx", s.handleSalesXLSX)

	handler := log.RequestMiddleware(logger)(s.withProtection(mux))
	s.Handler = handler

	return s
}

// withProtection adds baseline security headers and rate-limits writes.
func (s *Server) withProtection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		if r.Method != http.MethodGet && !s.rateLimiter.allow(requestIP(r)) {
			s.logger.WarnContext(r.Context(), "Rate limit exceeded",
				log.FieldClientIP, requestIP(r),
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Shutdown stops the server and its cleanup goroutines once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func requestIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
