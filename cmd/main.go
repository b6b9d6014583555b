package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/codexaslam/OstaEasy/internal/client"
	h "github.com/codexaslam/OstaEasy/internal/http"
	"github.com/codexaslam/OstaEasy/internal/session"
)

type Config struct {
	HTTPPort        string
	MarketplaceURL  string
	RedisAddr       string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	SessionTTL      time.Duration
	SecureCookies   bool
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		MarketplaceURL:  getEnv("MARKETPLACE_API_URL", "http://localhost:8000"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		SessionTTL:      12 * time.Hour,
		SecureCookies:   getEnv("GO_ENV", "dev") == "prod",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	// Optional .env for local development
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("skipping .env: %v", err)
	}

	cfg := loadConfig()

	api := client.New(cfg.MarketplaceURL, cfg.RequestTimeout)

	var sessions session.Store
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		sessions = session.NewRedisStore(rdb)
		log.Printf("using redis session store at %s", cfg.RedisAddr)
	} else {
		sessions = session.NewMemoryStore()
		log.Println("using in-memory session store")
	}

	gate := session.NewGate(sessions, "/login")
	runtime := h.NewRuntime(api, api)

	authHandler := h.NewAuthHandler(api, sessions, runtime, cfg.RequestTimeout, cfg.SessionTTL, cfg.SecureCookies)
	itemHandler := h.NewItemHandler(api, cfg.RequestTimeout)
	cartHandler := h.NewCartHandler(runtime, api, cfg.RequestTimeout)
	checkoutHandler := h.NewCheckoutHandler(runtime, cfg.RequestTimeout)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(gate.Authenticate)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/signup", authHandler.Signup)

		r.Get("/items", itemHandler.ListItems)
		r.Get("/items/{item_id}", itemHandler.GetItem)

		r.Group(func(r chi.Router) {
			r.Use(gate.Require)

			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/auth/profile", authHandler.Profile)
			r.Put("/session/currency", authHandler.SetCurrency)

			r.Post("/items", itemHandler.CreateItem)
			r.Put("/items/{item_id}", itemHandler.UpdateItem)
			r.Get("/my-items", itemHandler.MyItems)
			r.Get("/purchases", itemHandler.Purchases)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Post("/items/{item_id}", cartHandler.AddItem)
				r.Delete("/items/{item_id}", cartHandler.RemoveItem)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Post("/", checkoutHandler.Begin)
				r.Get("/", checkoutHandler.Status)
				r.Post("/complete", checkoutHandler.Complete)
				r.Post("/fail", checkoutHandler.Fail)
				r.Post("/cancel", checkoutHandler.Cancel)
			})
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(r, "storefront-gateway"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Storefront gateway starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
