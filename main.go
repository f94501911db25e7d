package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/username/networth/backend/src/config"
	"github.com/username/networth/backend/src/database"
	"github.com/username/networth/backend/src/fx"
	"github.com/username/networth/backend/src/handlers"
	"github.com/username/networth/backend/src/logger"
	"github.com/username/networth/backend/src/services"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded", "path", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000": true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("Networth backend server starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	database.RunMigrations(config.Cfg.DatabasePath)

	rateStore := services.NewSQLRateStore(database.DB)
	pricingClient := services.NewPricingClient(
		config.Cfg.PricingServiceBaseURL,
		config.Cfg.PricingPairInterval,
		config.Cfg.PricingRequestTimeout,
		config.Cfg.PricingCacheTTL,
	)

	// Seed the session table from the durable store so months resolved in
	// earlier runs cost no fetch.
	seed := rateStore.SeedRecords(config.Cfg.SnapshotSeedMonths)
	table := fx.NewTable(seed...)
	logger.L.Info("Rate table seeded from store", "months", len(table.Months()))

	resolver := fx.NewResolver(table)
	provider := fx.NewProvider(table, rateStore, pricingClient)
	converter := fx.NewConverter(resolver)
	aggregator := fx.NewAggregator(converter)

	ratesHandler := handlers.NewRatesHandler(table, resolver, provider)
	convertHandler := handlers.NewConvertHandler(provider, converter, aggregator)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(handlers.ContextualLoggerMiddleware)
	r.Use(enableCORS)
	r.Use(rateLimitMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Networth Backend is running"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/rates/ensure", ratesHandler.HandleEnsureRates)
		r.Get("/rates", ratesHandler.HandleGetRate)
		r.Get("/rates/snapshot", ratesHandler.HandleGetSnapshot)

		r.Post("/convert/amount", convertHandler.HandleConvertAmount)
		r.Post("/convert/balances", convertHandler.HandleConvertBalances)
		r.Post("/convert/breakdown", convertHandler.HandleConvertBreakdown)
		r.Post("/convert/summary", convertHandler.HandleConvertSummary)
		r.Post("/convert/series", convertHandler.HandleConvertSeries)
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stdlog.Fatalf("Failed to start server: %v", err)
	}
}
